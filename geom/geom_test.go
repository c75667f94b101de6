package geom

import (
	"math"
	"testing"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNormalizeRadian(t *testing.T) {
	for _, tc := range []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{math.Pi * 3, math.Pi},
		{math.Pi * 2.5, math.Pi * 0.5},
		{-math.Pi * 2.5, -math.Pi * 0.5},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
	} {
		if got := NormalizeRadian(tc.in); !closeTo(got, tc.want) {
			t.Errorf("NormalizeRadian(%v)\nhave %v\nwant %v", tc.in, got, tc.want)
		}
	}
}

func TestMatrixTransformPoint(t *testing.T) {
	m := Matrix{A: 2, B: 0, C: 0, D: 3, TX: 10, TY: -5}
	x, y := m.TransformPoint(1, 1)
	if !closeTo(x, 12) || !closeTo(y, -2) {
		t.Fatalf("TransformPoint\nhave (%v, %v)\nwant (12, -2)", x, y)
	}
	x, y = m.TransformVector(1, 1)
	if !closeTo(x, 2) || !closeTo(y, 3) {
		t.Fatalf("TransformVector\nhave (%v, %v)\nwant (2, 3)", x, y)
	}
}

func TestMatrixInvert(t *testing.T) {
	src := Transform{X: 3, Y: -7, Rotation: 0.8, Skew: 0.1, ScaleX: 1.5, ScaleY: 0.75}.Matrix()
	inv := src.Invert()
	id := src.Concat(inv)
	if !closeTo(id.A, 1) || !closeTo(id.B, 0) || !closeTo(id.C, 0) || !closeTo(id.D, 1) ||
		!closeTo(id.TX, 0) || !closeTo(id.TY, 0) {
		t.Fatalf("Invert did not produce an inverse\nhave %+v", id)
	}

	// Diagonal fast path.
	diag := Matrix{A: 2, D: 4, TX: 8, TY: 16}
	inv = diag.Invert()
	if x, y := inv.TransformPoint(8, 16); !closeTo(x, 0) || !closeTo(y, 0) {
		t.Fatalf("diagonal Invert\nhave (%v, %v)\nwant (0, 0)", x, y)
	}

	// Singular matrices stay finite.
	sing := Matrix{A: 1, B: 2, C: 2, D: 4, TX: 5, TY: 6}.Invert()
	if sing.A != 1 || sing.D != 1 || sing.TX != -5 || sing.TY != -6 {
		t.Fatalf("singular Invert\nhave %+v\nwant translation-only inverse", sing)
	}
}

func TestMatrixConcatOrder(t *testing.T) {
	rot := Transform{Rotation: math.Pi / 2, ScaleX: 1, ScaleY: 1}.Matrix()
	move := Matrix{A: 1, D: 1, TX: 10}

	// Rotate first, then translate: (1, 0) -> (0, 1) -> (10, 1).
	x, y := rot.Concat(move).TransformPoint(1, 0)
	if !closeTo(x, 10) || !closeTo(y, 1) {
		t.Fatalf("Concat order\nhave (%v, %v)\nwant (10, 1)", x, y)
	}
}

func TestTransformMatrixRoundTrip(t *testing.T) {
	for _, src := range []Transform{
		{ScaleX: 1, ScaleY: 1},
		{X: 4, Y: -2, Rotation: 0.35, ScaleX: 1, ScaleY: 1},
		{Rotation: -1.2, Skew: 0.25, ScaleX: 2, ScaleY: 0.5},
		{X: -9, Y: 3, Rotation: 2.5, Skew: -0.4, ScaleX: 0.8, ScaleY: 1.6},
	} {
		got := IdentityTransform.FromMatrix(src.Matrix())
		if !closeTo(got.X, src.X) || !closeTo(got.Y, src.Y) ||
			!closeTo(NormalizeRadian(got.Rotation-src.Rotation), 0) ||
			!closeTo(NormalizeRadian(got.Skew-src.Skew), 0) ||
			!closeTo(got.ScaleX, src.ScaleX) || !closeTo(got.ScaleY, src.ScaleY) {
			t.Errorf("FromMatrix(Matrix())\nhave %+v\nwant %+v", got, src)
		}
	}
}

func TestTransformAdd(t *testing.T) {
	a := Transform{X: 1, Y: 2, Rotation: 0.5, ScaleX: 2, ScaleY: 3}
	b := Transform{X: 10, Y: 20, Rotation: 0.25, Skew: 0.1, ScaleX: 0.5, ScaleY: 2}
	got := a.Add(b)
	want := Transform{X: 11, Y: 22, Rotation: 0.75, Skew: 0.1, ScaleX: 1, ScaleY: 6}
	if got != want {
		t.Fatalf("Add\nhave %+v\nwant %+v", got, want)
	}
}
