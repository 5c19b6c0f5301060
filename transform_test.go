package strata

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Transform.Matrix ---

func TestTransformIdentity(t *testing.T) {
	assertMatrix(t, "identity", NewTransform(0, 0).Matrix(), IdentityAffine)
}

func TestTransformZeroScaleIsUnit(t *testing.T) {
	tr := &Transform{Position: Vec2{3, 4}}
	assertMatrix(t, "zero scale", tr.Matrix(), Affine{1, 0, 0, 1, 3, 4})
}

func TestTransformTranslation(t *testing.T) {
	assertMatrix(t, "translate", NewTransform(10, 20).Matrix(), Affine{1, 0, 0, 1, 10, 20})
}

func TestTransformScale(t *testing.T) {
	tr := NewTransform(0, 0)
	tr.Scale = Vec2{2, 3}
	assertMatrix(t, "scale", tr.Matrix(), Affine{2, 0, 0, 3, 0, 0})
}

func TestTransformRotation90(t *testing.T) {
	tr := NewTransform(0, 0)
	tr.Rotation = math.Pi / 2
	x, y := tr.Matrix().Apply(1, 0)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 1)
}

func TestTransformOriginPivotsRotation(t *testing.T) {
	tr := NewTransform(100, 100)
	tr.Origin = Vec2{10, 10}
	tr.Rotation = math.Pi
	// The origin itself lands on Position.
	x, y := tr.Matrix().Apply(10, 10)
	assertNear(t, "x", x, 100)
	assertNear(t, "y", y, 100)
	// The local top-left ends up mirrored through Position.
	x, y = tr.Matrix().Apply(0, 0)
	assertNear(t, "x", x, 110)
	assertNear(t, "y", y, 110)
}

// --- Affine ---

func TestAffineMultiplyOrder(t *testing.T) {
	scale := Affine{2, 0, 0, 2, 0, 0}
	move := TranslateAffine(5, 0)
	// Scale first, then move.
	x, y := move.Multiply(scale).Apply(1, 1)
	assertNear(t, "x", x, 7)
	assertNear(t, "y", y, 2)
	// Move first, then scale.
	x, y = scale.Multiply(move).Apply(1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 2)
}

func TestAffineInvertRoundtrip(t *testing.T) {
	tr := NewTransform(12, -7)
	tr.Rotation = 0.7
	tr.Scale = Vec2{1.5, 0.5}
	m := tr.Matrix()
	assertMatrix(t, "m*inv", m.Multiply(m.Invert()), IdentityAffine)
}

func TestAffineInvertSingular(t *testing.T) {
	assertMatrix(t, "singular", Affine{0, 0, 0, 0, 5, 5}.Invert(), IdentityAffine)
}

func TestAffineAABBRotated(t *testing.T) {
	tr := NewTransform(0, 0)
	tr.Rotation = math.Pi / 4
	r := tr.Matrix().AABB(10, 10)
	d := 10 * math.Sqrt2
	assertNear(t, "width", r.Width, d)
	assertNear(t, "height", r.Height, d)
	assertNear(t, "x", r.X, -d/2)
	assertNear(t, "y", r.Y, 0)
}

func TestAffineGeoM(t *testing.T) {
	m := Affine{1, 2, 3, 4, 5, 6}
	g := m.GeoM()
	x, y := g.Apply(1, 1)
	wx, wy := m.Apply(1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}

// --- Rect / Color ---

func TestRectIntersectsEdge(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if !a.Intersects(Rect{10, 0, 5, 5}) {
		t.Error("edge-touching rects should intersect")
	}
	if a.Intersects(Rect{10.5, 0, 5, 5}) {
		t.Error("separated rects should not intersect")
	}
}

func TestRectUnion(t *testing.T) {
	got := Rect{0, 0, 10, 10}.Union(Rect{5, -5, 10, 10})
	want := Rect{0, -5, 15, 15}
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestRectContainsAndEmpty(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	if !r.Contains(10, 10) {
		t.Error("corner should be contained")
	}
	if r.Contains(11, 5) {
		t.Error("outside point should not be contained")
	}
	if !(Rect{0, 0, 0, 5}).IsEmpty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestColorRGBAPremultiplied(t *testing.T) {
	got := Color{1, 0.5, 0, 0.5}.RGBA()
	if got.R != 128 || got.G != 64 || got.B != 0 || got.A != 128 {
		t.Errorf("RGBA = %v, want {128 64 0 128}", got)
	}
}
