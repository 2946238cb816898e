package b2d

import "github.com/go-gl/mathgl/mgl64"

// FrictionJoint resists relative motion, up to MaxForce and MaxTorque. It is
// mostly used for top-down friction against a static ground body.
type FrictionJoint struct {
	*Joint
	AnchorA, AnchorB Vector

	MaxForce  float64
	MaxTorque float64

	r1, r2      Vector
	linearMass  mgl64.Mat2
	angularMass float64

	linearImpulse  Vector
	angularImpulse float64
}

func NewFrictionJoint(a, b *Body, anchor Vector, maxForce, maxTorque float64) *Joint {
	joint := &FrictionJoint{
		AnchorA:   a.WorldToLocal(anchor),
		AnchorB:   b.WorldToLocal(anchor),
		MaxForce:  maxForce,
		MaxTorque: maxTorque,
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

func (joint *FrictionJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.r1 = anchor_offset(a, joint.AnchorA)
	joint.r2 = anchor_offset(b, joint.AnchorB)

	joint.linearMass = k_tensor(a, b, joint.r1, joint.r2).Inv()

	joint.angularMass = a.i_inv + b.i_inv
	if joint.angularMass > 0 {
		joint.angularMass = 1.0 / joint.angularMass
	}

	if step.WarmStarting {
		joint.linearImpulse = joint.linearImpulse.Mult(step.DtRatio)
		joint.angularImpulse *= step.DtRatio
		apply_impulses(a, b, joint.r1, joint.r2, joint.linearImpulse, joint.angularImpulse)
	} else {
		joint.linearImpulse = Vector{}
		joint.angularImpulse = 0
	}
}

func (joint *FrictionJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b

	// angular friction
	{
		Cdot := b.w - a.w
		impulse := -joint.angularMass * Cdot

		oldImpulse := joint.angularImpulse
		maxImpulse := step.Dt * joint.MaxTorque
		joint.angularImpulse = Clamp(joint.angularImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.angularImpulse - oldImpulse

		apply_impulses(a, b, joint.r1, joint.r2, Vector{}, impulse)
	}

	// linear friction
	{
		Cdot := relative_velocity(a, b, joint.r1, joint.r2)
		impulse := mulMat22(joint.linearMass, Cdot).Neg()

		oldImpulse := joint.linearImpulse
		maxImpulse := step.Dt * joint.MaxForce
		joint.linearImpulse = joint.linearImpulse.Add(impulse).Clamp(maxImpulse)
		impulse = joint.linearImpulse.Sub(oldImpulse)

		apply_impulses(a, b, joint.r1, joint.r2, impulse, 0)
	}
}

func (joint *FrictionJoint) SolvePosition(baumgarte float64) bool {
	return true
}

func (joint *FrictionJoint) ReactionForce(inv_dt float64) Vector {
	return joint.linearImpulse.Mult(inv_dt)
}

func (joint *FrictionJoint) ReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.angularImpulse
}
