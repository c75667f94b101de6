package dragonbones

import "honnef.co/go/curve"

// Tween curves come in two layouts. The full form is 6n+8 values, n >= 0:
// anchor, control, control, anchor, control, control, anchor, ... with both
// end anchors spelled out. The omitted form is 6n+4 values, n >= 0: the
// outer anchors are implied at (0,0) and (1,1) and only the in-between
// points are stored.

func validCurveShape(n int) bool {
	return n >= 4 && n%6 == 4 || n >= 8 && n%6 == 2
}

// samplingEasingCurve fills samples with easing values at evenly spaced
// times along the piecewise cubic. It reports whether the curve used the
// omitted form; the caller encodes that flag as the sign of the sample
// count.
func samplingEasingCurve(controls []float64, samples []float64) bool {
	curveCount := len(controls)

	if curveCount%3 == 1 {
		stepIndex := -2
		for i := range samples {
			t := float64(i+1) / float64(len(samples)+1)
			for nextAnchorX(controls, stepIndex+6) < t {
				stepIndex += 6
			}

			inCurve := stepIndex >= 0 && stepIndex+6 < curveCount
			p0 := curve.Vec(0, 0)
			p3 := curve.Vec(1, 1)
			if inCurve {
				p0 = curve.Vec(controls[stepIndex], controls[stepIndex+1])
				p3 = curve.Vec(controls[stepIndex+6], controls[stepIndex+7])
			}
			p1 := curve.Vec(controls[stepIndex+2], controls[stepIndex+3])
			p2 := curve.Vec(controls[stepIndex+4], controls[stepIndex+5])

			samples[i] = bisectCurveHeight(p0, p1, p2, p3, t)
		}
		return true
	}

	stepIndex := 0
	for i := range samples {
		t := float64(i+1) / float64(len(samples)+1)
		for stepIndex+8 < curveCount && controls[stepIndex+6] < t {
			stepIndex += 6
		}

		p0 := curve.Vec(controls[stepIndex], controls[stepIndex+1])
		p1 := curve.Vec(controls[stepIndex+2], controls[stepIndex+3])
		p2 := curve.Vec(controls[stepIndex+4], controls[stepIndex+5])
		p3 := curve.Vec(controls[stepIndex+6], controls[stepIndex+7])

		samples[i] = bisectCurveHeight(p0, p1, p2, p3, t)
	}
	return false
}

// nextAnchorX is the x of the anchor that would close the segment starting
// at stepIndex, or 1 once the stored points run out (the implied final
// anchor of the omitted form).
func nextAnchorX(controls []float64, index int) float64 {
	if index < len(controls) {
		return controls[index]
	}
	return 1
}

// bisectCurveHeight finds the curve's y at the time whose x equals t, by
// bisecting the parameter until the evaluated x is within 1e-4 of t.
func bisectCurveHeight(p0, p1, p2, p3 curve.Vec2, t float64) float64 {
	lower, higher := 0.0, 1.0
	var point curve.Vec2
	for higher-lower > 0.0001 {
		percentage := (higher + lower) * 0.5
		point = curvePoint(p0, p1, p2, p3, percentage)
		if t-point.X > 0 {
			lower = percentage
		} else {
			higher = percentage
		}
	}
	return point.Y
}

// curvePoint evaluates the cubic through p0..p3 at t by repeated linear
// interpolation.
func curvePoint(p0, p1, p2, p3 curve.Vec2, t float64) curve.Vec2 {
	q0 := p0.Lerp(p1, t)
	q1 := p1.Lerp(p2, t)
	q2 := p2.Lerp(p3, t)
	r0 := q0.Lerp(q1, t)
	r1 := q1.Lerp(q2, t)
	return r0.Lerp(r1, t)
}
