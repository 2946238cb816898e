package b2d

import "math"

// Transform is a 2x3 affine matrix. The engine only builds rigid ones
// (rotation + translation), so the inverse helpers assume orthonormal columns.
type Transform struct {
	a, b, c, d, tx, ty float64
}

func NewTransformIdentity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

func NewTransformTranspose(a, c, tx, b, d, ty float64) Transform {
	return Transform{a, b, c, d, tx, ty}
}

func NewTransformRigid(translate Vector, radians float64) Transform {
	rot := ForAngle(radians)
	return NewTransformTranspose(
		rot.X, -rot.Y, translate.X,
		rot.Y, rot.X, translate.Y,
	)
}

// Point transforms a point from local space into world space.
func (t Transform) Point(p Vector) Vector {
	return Vector{X: t.a*p.X + t.c*p.Y + t.tx, Y: t.b*p.X + t.d*p.Y + t.ty}
}

// Vect rotates a vector, ignoring the translation.
func (t Transform) Vect(v Vector) Vector {
	return Vector{t.a*v.X + t.c*v.Y, t.b*v.X + t.d*v.Y}
}

// PointT transforms a world point into the local space of a rigid transform.
func (t Transform) PointT(p Vector) Vector {
	return t.VectT(Vector{p.X - t.tx, p.Y - t.ty})
}

// VectT applies the inverse rotation of a rigid transform.
func (t Transform) VectT(v Vector) Vector {
	return Vector{t.a*v.X + t.b*v.Y, t.c*v.X + t.d*v.Y}
}

func (t Transform) Translation() Vector {
	return Vector{t.tx, t.ty}
}

// Rotation returns the first column, cos/sin of the angle.
func (t Transform) Rotation() Vector {
	return Vector{t.a, t.b}
}

func (t Transform) Angle() float64 {
	return math.Atan2(t.b, t.a)
}

// MulT returns inverse(t) * other for rigid transforms, mapping other's local
// space into t's local space.
func (t Transform) MulT(other Transform) Transform {
	col1 := t.VectT(Vector{other.a, other.b})
	col2 := t.VectT(Vector{other.c, other.d})
	p := t.PointT(Vector{other.tx, other.ty})
	return Transform{col1.X, col1.Y, col2.X, col2.Y, p.X, p.Y}
}

func (t Transform) BB(bb BB) BB {
	hw := (bb.R - bb.L) * 0.5
	hh := (bb.T - bb.B) * 0.5

	a := t.a * hw
	b := t.c * hh
	d := t.b * hw
	e := t.d * hh
	hwMax := math.Max(math.Abs(a+b), math.Abs(a-b))
	hhMax := math.Max(math.Abs(d+e), math.Abs(d-e))
	return NewBBForExtents(t.Point(bb.Center()), hwMax, hhMax)
}

// Sweep describes the motion of a body over one step for continuous
// collision. Shapes are positioned relative to the body origin, but the sweep
// tracks the center of mass.
type Sweep struct {
	LocalCenter Vector
	C0, C       Vector
	A0, A       float64
}

// Transform interpolates the sweep at alpha in [0,1].
func (s *Sweep) Transform(alpha float64) Transform {
	c := s.C0.Lerp(s.C, alpha)
	angle := Lerp(s.A0, s.A, alpha)
	xf := NewTransformRigid(Vector{}, angle)
	p := c.Sub(xf.Vect(s.LocalCenter))
	xf.tx, xf.ty = p.X, p.Y
	return xf
}

// Advance moves the start of the sweep forward to alpha.
func (s *Sweep) Advance(alpha float64) {
	s.C0 = s.C0.Lerp(s.C, alpha)
	s.A0 = Lerp(s.A0, s.A, alpha)
}

// Normalize keeps the angles in [-2pi, 2pi] to avoid precision loss.
func (s *Sweep) Normalize() {
	d := 2 * math.Pi * math.Floor(s.A0/(2*math.Pi))
	s.A0 -= d
	s.A -= d
}
