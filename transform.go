package strata

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// TranslateAffine returns a pure translation matrix.
func TranslateAffine(x, y float64) Affine {
	return Affine{1, 0, 0, 1, x, y}
}

// Multiply returns m * o, i.e. o applied first, then m.
func (m Affine) Multiply(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert computes the inverse matrix.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// AABB returns the axis-aligned bounds of the rectangle (0, 0, w, h)
// after transformation by m. Zero allocations.
func (m Affine) AABB(w, h float64) Rect {
	a, b, c, d, tx, ty := m[0], m[2], m[1], m[3], m[4], m[5]
	return boundsOfPoints(
		tx, ty,
		a*w+tx, c*w+ty,
		a*w+b*h+tx, c*w+d*h+ty,
		b*h+tx, d*h+ty,
	)
}

// GeoM converts m into an ebiten.GeoM.
func (m Affine) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// Transform describes the placement of a drawable in world space.
type Transform struct {
	Position Vec2
	// Scale of zero on an axis is treated as 1.
	Scale Vec2
	// Rotation in radians (clockwise).
	Rotation float64
	// Origin is the local pivot for scale and rotation.
	Origin Vec2
	// Skew angles in radians.
	Skew Vec2
}

// NewTransform returns a transform at (x, y) with unit scale.
func NewTransform(x, y float64) *Transform {
	return &Transform{Position: Vec2{x, y}, Scale: Vec2{1, 1}}
}

// Matrix computes the local-to-world matrix.
//
// Composition order:
//
//	Translate(-Origin) -> Scale -> Skew -> Rotate -> Translate(Position)
func (t *Transform) Matrix() Affine {
	sx, sy := t.Scale.X, t.Scale.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	sin, cos := math.Sincos(t.Rotation)

	var tanSkewX, tanSkewY float64
	if t.Skew.X != 0 {
		tanSkewX = math.Tan(t.Skew.X)
	}
	if t.Skew.Y != 0 {
		tanSkewY = math.Tan(t.Skew.Y)
	}

	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px, py := t.Origin.X, t.Origin.Y
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return Affine{ra, rb, rc, rd, rtx + t.Position.X, rty + t.Position.Y}
}
