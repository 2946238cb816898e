package b2d

import "github.com/go-gl/mathgl/mgl64"

// TimeStep is the step data handed to joints and contacts.
type TimeStep struct {
	Dt    float64
	InvDt float64
	// DtRatio is dt over the previous dt, used to scale warm start impulses.
	DtRatio float64

	VelocityIterations int
	PositionIterations int
	WarmStarting       bool
}

// Jointer is implemented by every joint type. The island solver only talks
// to joints through it.
type Jointer interface {
	// PreSolve computes effective masses and applies the warm start impulse.
	PreSolve(step *TimeStep)
	SolveVelocity(step *TimeStep)
	// SolvePosition reports whether the joint error is within tolerance.
	SolvePosition(baumgarte float64) bool
	ReactionForce(inv_dt float64) Vector
	ReactionTorque(inv_dt float64) float64
}

type Joint struct {
	Class Jointer
	world *World

	a, b *Body

	collideConnected bool
	enabled          bool
	island           bool

	index int

	UserData interface{}
}

func NewJoint(class Jointer, a, b *Body) *Joint {
	assert(a != b, "A joint needs two different bodies")
	return &Joint{
		Class:   class,
		a:       a,
		b:       b,
		enabled: true,
		index:   -1,
	}
}

func (j *Joint) BodyA() *Body {
	return j.a
}

func (j *Joint) BodyB() *Body {
	return j.b
}

func (j *Joint) Other(body *Body) *Body {
	if j.a == body {
		return j.b
	}
	return j.a
}

func (j *Joint) World() *World {
	return j.world
}

func (j *Joint) ActivateBodies() {
	j.a.Activate()
	j.b.Activate()
}

func (j *Joint) CollideConnected() bool {
	return j.collideConnected
}

// SetCollideConnected refilters the pairs of the two bodies on the next step.
func (j *Joint) SetCollideConnected(collide bool) {
	j.collideConnected = collide
	j.ActivateBodies()
	if j.world != nil {
		j.flagContacts()
	}
}

// flagContacts lets the contact manager look at the pairs between the two
// bodies again.
func (j *Joint) flagContacts() {
	for _, contact := range j.b.contacts {
		if contact.shapeA.body == j.a || contact.shapeB.body == j.a {
			contact.flagForFiltering()
		}
	}
	for _, shape := range j.b.shapes {
		if shape.proxyId != nullNode {
			j.world.contactManager.broadPhase.TouchProxy(shape.proxyId)
		}
	}
}

func (j *Joint) Enabled() bool {
	return j.enabled
}

// SetEnabled takes the joint out of the solver without removing it.
func (j *Joint) SetEnabled(enabled bool) {
	j.enabled = enabled
	j.ActivateBodies()
}

func (j *Joint) ReactionForce(inv_dt float64) Vector {
	return j.Class.ReactionForce(inv_dt)
}

func (j *Joint) ReactionTorque(inv_dt float64) float64 {
	return j.Class.ReactionTorque(inv_dt)
}

// anchor_offset is the world offset of a local anchor from the center of mass.
func anchor_offset(body *Body, anchor Vector) Vector {
	return body.transform.Vect(anchor.Sub(body.sweep.LocalCenter))
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1 := a.v.Add(r1.Perp().Mult(a.w))
	v2 := b.v.Add(r2.Perp().Mult(b.w))
	return v2.Sub(v1)
}

// k_scalar is the effective mass denominator along n.
func k_scalar(a, b *Body, r1, r2, n Vector) float64 {
	rcn1 := r1.Cross(n)
	rcn2 := r2.Cross(n)
	return a.m_inv + b.m_inv + a.i_inv*rcn1*rcn1 + b.i_inv*rcn2*rcn2
}

// k_tensor is the point-to-point effective mass matrix before inversion.
func k_tensor(a, b *Body, r1, r2 Vector) mgl64.Mat2 {
	m_sum := a.m_inv + b.m_inv
	i1, i2 := a.i_inv, b.i_inv

	k11 := m_sum + i1*r1.Y*r1.Y + i2*r2.Y*r2.Y
	k12 := -i1*r1.X*r1.Y - i2*r2.X*r2.Y
	k22 := m_sum + i1*r1.X*r1.X + i2*r2.X*r2.X

	return newMat22(Vector{k11, k12}, Vector{k12, k22})
}

// k_tensor3 adds the angular row to k_tensor.
func k_tensor3(a, b *Body, r1, r2 Vector) mgl64.Mat3 {
	k := k_tensor(a, b, r1, r2)
	i1, i2 := a.i_inv, b.i_inv
	k13 := -r1.Y*i1 - r2.Y*i2
	k23 := r1.X*i1 + r2.X*i2
	return newMat33(
		mgl64.Vec3{k[0], k[1], k13},
		mgl64.Vec3{k[2], k[3], k23},
		mgl64.Vec3{k13, k23, i1 + i2},
	)
}

// apply_impulses applies j at the anchors, negative on a.
func apply_impulses(a, b *Body, r1, r2, j Vector, angular float64) {
	a.setSolverVelocity(a.v.Sub(j.Mult(a.m_inv)), a.w-a.i_inv*(r1.Cross(j)+angular))
	b.setSolverVelocity(b.v.Add(j.Mult(b.m_inv)), b.w+b.i_inv*(r2.Cross(j)+angular))
}

// apply_position_impulses is apply_impulses for the position solver.
func apply_position_impulses(a, b *Body, r1, r2, j Vector, angular float64) {
	a.applySolverPosition(j.Mult(-a.m_inv), -a.i_inv*(r1.Cross(j)+angular))
	b.applySolverPosition(j.Mult(b.m_inv), b.i_inv*(r2.Cross(j)+angular))
}
