package model

import (
	"math"

	"github.com/BlizzedRu/dragonbones/geom"
)

// BoundingBox is the hit test shape carried by a bounding box display.
// Coordinates are in the parent slot's local space.
type BoundingBox interface {
	Base() *BoundingBoxBase
	ContainsPoint(x, y float64) bool
	IntersectsSegment(xA, yA, xB, yB float64) SegmentIntersection
}

type BoundingBoxBase struct {
	Type   BoundingBoxType
	Color  int
	Width  float64
	Height float64
}

func (b *BoundingBoxBase) Base() *BoundingBoxBase { return b }

// SegmentIntersection reports how a segment crosses a bounding shape.
// Count is -1 when the segment lies fully inside and 0 when it misses;
// 1 means only Near landed on the shape, 2 means only Far did, larger
// counts mean both are set. NormalRadians holds the shape normals at the
// two crossings, packed into a Point.
type SegmentIntersection struct {
	Count         int
	Near          geom.Point
	Far           geom.Point
	NormalRadians geom.Point
}

const (
	outLeft   = 1
	outRight  = 2
	outTop    = 4
	outBottom = 8
)

func rectangleOutCode(x, y, xMin, yMin, xMax, yMax float64) int {
	code := 0
	if x < xMin {
		code |= outLeft
	} else if x > xMax {
		code |= outRight
	}
	if y < yMin {
		code |= outTop
	} else if y > yMax {
		code |= outBottom
	}
	return code
}

// RectangleIntersectsSegment clips the segment AB against an axis aligned
// box using Cohen-Sutherland outcodes.
func RectangleIntersectsSegment(xA, yA, xB, yB, xMin, yMin, xMax, yMax float64) SegmentIntersection {
	var out SegmentIntersection
	inSideA := xA > xMin && xA < xMax && yA > yMin && yA < yMax
	inSideB := xB > xMin && xB < xMax && yB > yMin && yB < yMax
	if inSideA && inSideB {
		out.Count = -1
		return out
	}

	count := 0
	code0 := rectangleOutCode(xA, yA, xMin, yMin, xMax, yMax)
	code1 := rectangleOutCode(xB, yB, xMin, yMin, xMax, yMax)
	for {
		if code0|code1 == 0 {
			count = 2
			break
		}
		if code0&code1 != 0 {
			break
		}

		var x, y, normalRadian float64
		codeOut := code0
		if codeOut == 0 {
			codeOut = code1
		}
		switch {
		case codeOut&outTop != 0:
			x = xA + (xB-xA)*(yMin-yA)/(yB-yA)
			y = yMin
			normalRadian = -math.Pi * 0.5
		case codeOut&outBottom != 0:
			x = xA + (xB-xA)*(yMax-yA)/(yB-yA)
			y = yMax
			normalRadian = math.Pi * 0.5
		case codeOut&outRight != 0:
			y = yA + (yB-yA)*(xMax-xA)/(xB-xA)
			x = xMax
			normalRadian = 0
		case codeOut&outLeft != 0:
			y = yA + (yB-yA)*(xMin-xA)/(xB-xA)
			x = xMin
			normalRadian = math.Pi
		}

		if codeOut == code0 {
			xA, yA = x, y
			code0 = rectangleOutCode(xA, yA, xMin, yMin, xMax, yMax)
			out.NormalRadians.X = normalRadian
		} else {
			xB, yB = x, y
			code1 = rectangleOutCode(xB, yB, xMin, yMin, xMax, yMax)
			out.NormalRadians.Y = normalRadian
		}
	}

	if count > 0 {
		switch {
		case inSideA:
			out.Count = 2
			out.Near = geom.Point{X: xB, Y: yB}
			out.Far = geom.Point{X: xB, Y: yB}
			out.NormalRadians.X = out.NormalRadians.Y + math.Pi
		case inSideB:
			out.Count = 1
			out.Near = geom.Point{X: xA, Y: yA}
			out.Far = geom.Point{X: xA, Y: yA}
			out.NormalRadians.Y = out.NormalRadians.X + math.Pi
		default:
			out.Count = 3
			out.Near = geom.Point{X: xA, Y: yA}
			out.Far = geom.Point{X: xB, Y: yB}
		}
	}
	return out
}

// EllipseIntersectsSegment intersects AB with the ellipse centered at
// (xC, yC) with half extents widthH and heightH. The y axis is scaled so
// the ellipse becomes a circle, the crossings are solved on the circle
// and scaled back.
func EllipseIntersectsSegment(xA, yA, xB, yB, xC, yC, widthH, heightH float64) SegmentIntersection {
	var out SegmentIntersection
	d := widthH / heightH
	dd := d * d

	yA *= d
	yB *= d
	yC *= d

	dX := xB - xA
	dY := yB - yA
	lAB := math.Sqrt(dX*dX + dY*dY)
	xD := dX / lAB
	yD := dY / lAB
	a := (xC-xA)*xD + (yC-yA)*yD
	ee := xA*xA + yA*yA - 2*xA*xC - 2*yA*yC + xC*xC + yC*yC
	dR := widthH*widthH - ee + a*a
	if dR < 0 {
		return out
	}

	dT := math.Sqrt(dR)
	sA := a - dT
	sB := a + dT
	side := func(s float64) int {
		if s < 0 {
			return -1
		}
		if s <= lAB {
			return 0
		}
		return 1
	}
	inSideA := side(sA)
	inSideB := side(sB)
	if inSideA*inSideB < 0 {
		out.Count = -1
		return out
	}
	if inSideA*inSideB > 0 {
		return out
	}

	switch {
	case inSideA == -1:
		out.Count = 2
		xB = xA + sB*xD
		yB = (yA + sB*yD) / d
		out.Near = geom.Point{X: xB, Y: yB}
		out.Far = geom.Point{X: xB, Y: yB}
		out.NormalRadians.X = math.Atan2((yB*d-yC)/dd, xB-xC)
		out.NormalRadians.Y = out.NormalRadians.X + math.Pi
	case inSideB == 1:
		out.Count = 1
		xA = xA + sA*xD
		yA = (yA + sA*yD) / d
		out.Near = geom.Point{X: xA, Y: yA}
		out.Far = geom.Point{X: xA, Y: yA}
		out.NormalRadians.X = math.Atan2((yA*d-yC)/dd, xA-xC)
		out.NormalRadians.Y = out.NormalRadians.X + math.Pi
	default:
		out.Count = 3
		out.Near = geom.Point{X: xA + sA*xD, Y: (yA + sA*yD) / d}
		out.NormalRadians.X = math.Atan2((out.Near.Y*d-yC)/dd, out.Near.X-xC)
		out.Far = geom.Point{X: xA + sB*xD, Y: (yA + sB*yD) / d}
		out.NormalRadians.Y = math.Atan2((out.Far.Y*d-yC)/dd, out.Far.X-xC)
	}
	return out
}

// PolygonIntersectsSegment intersects AB with a closed polygon given as
// interleaved vertex coordinates. Coincident coordinates are nudged apart
// so every edge test divides by a nonzero determinant.
func PolygonIntersectsSegment(xA, yA, xB, yB float64, vertices []float64) SegmentIntersection {
	var out SegmentIntersection
	if len(vertices) < 4 {
		return out
	}
	if xA == xB {
		xA = xB + 0.000001
	}
	if yA == yB {
		yA = yB + 0.000001
	}

	count := len(vertices)
	dXAB := xA - xB
	dYAB := yA - yB
	llAB := xA*yB - yA*xB
	crossings := 0
	xC := vertices[count-2]
	yC := vertices[count-1]
	var dMin, dMax, xMin, yMin, xMax, yMax float64

	for i := 0; i < count; i += 2 {
		xD := vertices[i]
		yD := vertices[i+1]
		if xC == xD {
			xC = xD + 0.0001
		}
		if yC == yD {
			yC = yD + 0.0001
		}

		dXCD := xC - xD
		dYCD := yC - yD
		llCD := xC*yD - yC*xD
		ll := dXAB*dYCD - dYAB*dXCD
		x := (llAB*dXCD - dXAB*llCD) / ll

		if ((x >= xC && x <= xD) || (x >= xD && x <= xC)) && (dXAB == 0 || (x >= xA && x <= xB) || (x >= xB && x <= xA)) {
			y := (llAB*dYCD - dYAB*llCD) / ll
			if ((y >= yC && y <= yD) || (y >= yD && y <= yC)) && (dYAB == 0 || (y >= yA && y <= yB) || (y >= yB && y <= yA)) {
				d := math.Abs(x - xA)
				if crossings == 0 {
					dMin, dMax = d, d
					xMin, yMin = x, y
					xMax, yMax = x, y
					out.NormalRadians.X = math.Atan2(yD-yC, xD-xC) - math.Pi*0.5
					out.NormalRadians.Y = out.NormalRadians.X
				} else {
					if d < dMin {
						dMin = d
						xMin, yMin = x, y
						out.NormalRadians.X = math.Atan2(yD-yC, xD-xC) - math.Pi*0.5
					}
					if d > dMax {
						dMax = d
						xMax, yMax = x, y
						out.NormalRadians.Y = math.Atan2(yD-yC, xD-xC) - math.Pi*0.5
					}
				}
				crossings++
			}
		}

		xC = xD
		yC = yD
	}

	if crossings == 1 {
		out.Count = 1
		out.Near = geom.Point{X: xMin, Y: yMin}
		out.Far = geom.Point{X: xMin, Y: yMin}
		out.NormalRadians.Y = out.NormalRadians.X + math.Pi
	} else if crossings > 1 {
		out.Count = crossings + 1
		out.Near = geom.Point{X: xMin, Y: yMin}
		out.Far = geom.Point{X: xMax, Y: yMax}
	}
	return out
}

type RectangleBoundingBoxData struct {
	BoundingBoxBase
}

func (b *RectangleBoundingBoxData) Clear() {
	*b = RectangleBoundingBoxData{BoundingBoxBase: BoundingBoxBase{Type: BoundingBoxRectangle}}
}

func (b *RectangleBoundingBoxData) ContainsPoint(x, y float64) bool {
	widthH := b.Width * 0.5
	if x >= -widthH && x <= widthH {
		heightH := b.Height * 0.5
		if y >= -heightH && y <= heightH {
			return true
		}
	}
	return false
}

func (b *RectangleBoundingBoxData) IntersectsSegment(xA, yA, xB, yB float64) SegmentIntersection {
	widthH := b.Width * 0.5
	heightH := b.Height * 0.5
	return RectangleIntersectsSegment(xA, yA, xB, yB, -widthH, -heightH, widthH, heightH)
}

type EllipseBoundingBoxData struct {
	BoundingBoxBase
}

func (b *EllipseBoundingBoxData) Clear() {
	*b = EllipseBoundingBoxData{BoundingBoxBase: BoundingBoxBase{Type: BoundingBoxEllipse}}
}

func (b *EllipseBoundingBoxData) ContainsPoint(x, y float64) bool {
	widthH := b.Width * 0.5
	if x >= -widthH && x <= widthH {
		heightH := b.Height * 0.5
		if y >= -heightH && y <= heightH {
			y *= widthH / heightH
			return math.Sqrt(x*x+y*y) <= widthH
		}
	}
	return false
}

func (b *EllipseBoundingBoxData) IntersectsSegment(xA, yA, xB, yB float64) SegmentIntersection {
	return EllipseIntersectsSegment(xA, yA, xB, yB, 0, 0, b.Width*0.5, b.Height*0.5)
}

// PolygonBoundingBoxData keeps its vertices in armature space. X and Y
// hold the min corner of the vertex bounds while the inherited Width and
// Height hold the max corner, not the extent.
type PolygonBoundingBoxData struct {
	BoundingBoxBase
	X, Y     float64
	Vertices []float64
}

func (b *PolygonBoundingBoxData) Clear() {
	*b = PolygonBoundingBoxData{BoundingBoxBase: BoundingBoxBase{Type: BoundingBoxPolygon}}
}

func (b *PolygonBoundingBoxData) ContainsPoint(x, y float64) bool {
	isInSide := false
	if x >= b.X && x <= b.Width && y >= b.Y && y <= b.Height {
		for i, iP := 0, len(b.Vertices)-2; i < len(b.Vertices); i += 2 {
			yA := b.Vertices[iP+1]
			yB := b.Vertices[i+1]
			if (yB < y && yA >= y) || (yA < y && yB >= y) {
				xA := b.Vertices[iP]
				xB := b.Vertices[i]
				if (y-yB)*(xA-xB)/(yA-yB)+xB < x {
					isInSide = !isInSide
				}
			}
			iP = i
		}
	}
	return isInSide
}

func (b *PolygonBoundingBoxData) IntersectsSegment(xA, yA, xB, yB float64) SegmentIntersection {
	if RectangleIntersectsSegment(xA, yA, xB, yB, b.X, b.Y, b.Width, b.Height).Count == 0 {
		return SegmentIntersection{}
	}
	return PolygonIntersectsSegment(xA, yA, xB, yB, b.Vertices)
}
