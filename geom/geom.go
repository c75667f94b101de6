// Package geom provides the 2D affine math shared by the armature model and
// the compiler: matrices in the a/b/c/d/tx/ty form the DragonBones format
// uses, their translation/rotation/skew/scale decomposition, and the
// fixed-point color transform.
package geom

import "math"

const (
	// RadDeg converts radians to degrees.
	RadDeg = 180 / math.Pi
	// DegRad converts degrees to radians.
	DegRad = math.Pi / 180
)

// NormalizeRadian maps an angle to (-π, π].
func NormalizeRadian(value float64) float64 {
	value = math.Mod(value+math.Pi, math.Pi*2)
	if value > 0 {
		value -= math.Pi
	} else {
		value += math.Pi
	}
	return value
}

type Point struct {
	X, Y float64
}

type Rectangle struct {
	X, Y          float64
	Width, Height float64
}

// Matrix is a 2D affine transform. A point (x, y) maps to
// (a*x + c*y + tx, b*x + d*y + ty).
type Matrix struct {
	A, B, C, D float64
	TX, TY     float64
}

var IdentityMatrix = Matrix{A: 1, D: 1}

// Concat returns the matrix that applies m first and then other.
func (m Matrix) Concat(other Matrix) Matrix {
	out := Matrix{
		A:  m.A * other.A,
		D:  m.D * other.D,
		TX: m.TX*other.A + other.TX,
		TY: m.TY*other.D + other.TY,
	}
	if m.B != 0 || m.C != 0 {
		out.A += m.B * other.C
		out.D += m.C * other.B
		out.B += m.B * other.D
		out.C += m.C * other.A
	}
	if other.B != 0 || other.C != 0 {
		out.B += m.A * other.B
		out.C += m.D * other.C
		out.TX += m.TY * other.C
		out.TY += m.TX * other.B
	}
	return out
}

// Invert returns the inverse transform. A zero determinant inverts to an
// identity that undoes only the translation; a matrix with a zero on the
// diagonal and no shear inverts to the zero matrix.
func (m Matrix) Invert() Matrix {
	if m.B == 0 && m.C == 0 {
		if m.A == 0 || m.D == 0 {
			return Matrix{}
		}
		a := 1 / m.A
		d := 1 / m.D
		return Matrix{
			A:  a,
			D:  d,
			TX: -a * m.TX,
			TY: -d * m.TY,
		}
	}

	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{A: 1, D: 1, TX: -m.TX, TY: -m.TY}
	}

	det = 1 / det
	out := Matrix{
		A: m.D * det,
		B: -m.B * det,
		C: -m.C * det,
		D: m.A * det,
	}
	out.TX = -(out.A*m.TX + out.C*m.TY)
	out.TY = -(out.D*m.TY + out.B*m.TX)
	return out
}

// TransformPoint applies the full transform to (x, y).
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.TX, m.B*x + m.D*y + m.TY
}

// TransformVector applies the transform without translation, for deltas.
func (m Matrix) TransformVector(x, y float64) (float64, float64) {
	return m.A*x + m.C*y, m.B*x + m.D*y
}

// Transform is the decomposed form of a Matrix: translate, rotate, skew the
// y axis, then scale.
type Transform struct {
	X, Y     float64
	Rotation float64
	Skew     float64
	ScaleX   float64
	ScaleY   float64
}

var IdentityTransform = Transform{ScaleX: 1, ScaleY: 1}

// Matrix composes the transform.
func (t Transform) Matrix() Matrix {
	var m Matrix
	if t.Rotation == 0 {
		m.A = 1
		m.B = 0
	} else {
		m.A = math.Cos(t.Rotation)
		m.B = math.Sin(t.Rotation)
	}
	if t.Skew == 0 {
		m.C = -m.B
		m.D = m.A
	} else {
		m.C = -math.Sin(t.Skew + t.Rotation)
		m.D = math.Cos(t.Skew + t.Rotation)
	}
	if t.ScaleX != 1 {
		m.A *= t.ScaleX
		m.B *= t.ScaleX
	}
	if t.ScaleY != 1 {
		m.C *= t.ScaleY
		m.D *= t.ScaleY
	}
	m.TX = t.X
	m.TY = t.Y
	return m
}

// FromMatrix decomposes m. The receiver's scale signs pick between the two
// equivalent decompositions, so a transform that was positive-scaled stays
// positive-scaled across a round trip.
func (t Transform) FromMatrix(m Matrix) Transform {
	const piQ = math.Pi / 4

	backupScaleX := t.ScaleX
	backupScaleY := t.ScaleY

	t.X = m.TX
	t.Y = m.TY
	t.Rotation = math.Atan(m.B / m.A)
	skewX := math.Atan(-m.C / m.D)

	if t.Rotation > -piQ && t.Rotation < piQ {
		t.ScaleX = m.A / math.Cos(t.Rotation)
	} else {
		t.ScaleX = m.B / math.Sin(t.Rotation)
	}
	if skewX > -piQ && skewX < piQ {
		t.ScaleY = m.D / math.Cos(skewX)
	} else {
		t.ScaleY = -m.C / math.Sin(skewX)
	}

	if backupScaleX >= 0 && t.ScaleX < 0 {
		t.ScaleX = -t.ScaleX
		t.Rotation -= math.Pi
	}
	if backupScaleY >= 0 && t.ScaleY < 0 {
		t.ScaleY = -t.ScaleY
		skewX -= math.Pi
	}
	t.Skew = skewX - t.Rotation

	return t
}

// Add combines two transforms componentwise, the way pose layers stack.
func (t Transform) Add(other Transform) Transform {
	t.X += other.X
	t.Y += other.Y
	t.Rotation += other.Rotation
	t.Skew += other.Skew
	t.ScaleX *= other.ScaleX
	t.ScaleY *= other.ScaleY
	return t
}

// ColorTransform scales and offsets the four channels. Multipliers are
// normalized (1 is neutral), offsets are in 0..255 channel units.
type ColorTransform struct {
	AlphaMultiplier float64
	RedMultiplier   float64
	GreenMultiplier float64
	BlueMultiplier  float64
	AlphaOffset     int
	RedOffset       int
	GreenOffset     int
	BlueOffset      int
}

var IdentityColor = ColorTransform{
	AlphaMultiplier: 1,
	RedMultiplier:   1,
	GreenMultiplier: 1,
	BlueMultiplier:  1,
}
