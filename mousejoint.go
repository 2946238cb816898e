package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MouseJoint drags a point on body B towards a world target with a soft
// spring. Body A is only there to satisfy the joint interface, usually a
// static ground body.
type MouseJoint struct {
	*Joint
	AnchorB Vector
	target  Vector

	MaxForce     float64
	FrequencyHz  float64
	DampingRatio float64

	r     Vector
	mass  mgl64.Mat2
	C     Vector
	gamma float64
	beta  float64

	impulse Vector
}

func NewMouseJoint(ground, body *Body, target Vector, maxForce float64) *Joint {
	joint := &MouseJoint{
		AnchorB:      body.WorldToLocal(target),
		target:       target,
		MaxForce:     maxForce,
		FrequencyHz:  5,
		DampingRatio: 0.7,
	}
	joint.Joint = NewJoint(joint, ground, body)
	return joint.Joint
}

func (joint *MouseJoint) Target() Vector {
	return joint.target
}

func (joint *MouseJoint) SetTarget(target Vector) {
	joint.b.Activate()
	joint.target = target
}

func (joint *MouseJoint) PreSolve(step *TimeStep) {
	b := joint.b
	mass := b.Mass()

	omega := 2.0 * math.Pi * joint.FrequencyHz
	d := 2.0 * mass * joint.DampingRatio * omega
	k := mass * omega * omega

	dt := step.Dt
	joint.gamma = dt * (d + dt*k)
	if joint.gamma != 0 {
		joint.gamma = 1.0 / joint.gamma
	}
	joint.beta = dt * k * joint.gamma

	joint.r = anchor_offset(b, joint.AnchorB)

	invMass := b.m_inv
	invI := b.i_inv
	r := joint.r
	K := newMat22(
		Vector{invMass + invI*r.Y*r.Y + joint.gamma, -invI * r.X * r.Y},
		Vector{-invI * r.X * r.Y, invMass + invI*r.X*r.X + joint.gamma},
	)
	joint.mass = K.Inv()

	joint.C = b.sweep.C.Add(r).Sub(joint.target)

	// a little extra angular damping keeps dragged bodies from spinning
	w := b.w * 0.98
	v := b.v

	if step.WarmStarting {
		joint.impulse = joint.impulse.Mult(step.DtRatio)
		v = v.Add(joint.impulse.Mult(invMass))
		w += invI * r.Cross(joint.impulse)
	} else {
		joint.impulse = Vector{}
	}
	b.setSolverVelocity(v, w)
}

func (joint *MouseJoint) SolveVelocity(step *TimeStep) {
	b := joint.b
	r := joint.r

	Cdot := b.v.Add(r.Perp().Mult(b.w))
	impulse := mulMat22(joint.mass, Cdot.Add(joint.C.Mult(joint.beta)).Add(joint.impulse.Mult(joint.gamma))).Neg()

	oldImpulse := joint.impulse
	joint.impulse = joint.impulse.Add(impulse).Clamp(step.Dt * joint.MaxForce)
	impulse = joint.impulse.Sub(oldImpulse)

	b.setSolverVelocity(b.v.Add(impulse.Mult(b.m_inv)), b.w+b.i_inv*r.Cross(impulse))
}

func (joint *MouseJoint) SolvePosition(baumgarte float64) bool {
	return true
}

func (joint *MouseJoint) ReactionForce(inv_dt float64) Vector {
	return joint.impulse.Mult(inv_dt)
}

func (joint *MouseJoint) ReactionTorque(inv_dt float64) float64 {
	return 0
}
