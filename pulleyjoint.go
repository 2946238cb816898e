package b2d

import "math"

// MinPulleyLength keeps either side of a pulley from collapsing to the ground anchor.
const MinPulleyLength = 2.0

// PulleyJoint hangs two bodies from fixed ground anchors by a rope so that
// lengthA + Ratio * lengthB never exceeds its starting total. Each side can
// also be capped at a maximum length.
type PulleyJoint struct {
	*Joint
	GroundAnchorA, GroundAnchorB Vector
	AnchorA, AnchorB             Vector
	Ratio                        float64

	constant               float64
	maxLengthA, maxLengthB float64

	r1, r2, u1, u2 Vector

	pulleyMass, limitMassA, limitMassB float64

	state                    limitState
	limitStateA, limitStateB limitState

	impulse, limitImpulseA, limitImpulseB float64
}

// NewPulleyJoint connects the world anchors on a and b to the fixed ground anchors.
func NewPulleyJoint(a, b *Body, groundAnchorA, groundAnchorB, anchorA, anchorB Vector, ratio float64) *Joint {
	assert(ratio > Epsilon, "Pulley ratio must be positive")
	joint := &PulleyJoint{
		GroundAnchorA: groundAnchorA,
		GroundAnchorB: groundAnchorB,
		AnchorA:       a.WorldToLocal(anchorA),
		AnchorB:       b.WorldToLocal(anchorB),
		Ratio:         ratio,
	}
	lengthA := anchorA.Distance(groundAnchorA)
	lengthB := anchorB.Distance(groundAnchorB)
	joint.constant = lengthA + ratio*lengthB
	joint.maxLengthA = joint.constant - ratio*MinPulleyLength
	joint.maxLengthB = (joint.constant - MinPulleyLength) / ratio

	joint.Joint = NewJoint(joint, a, b)
	// a pulley is rope, the bodies still collide
	joint.Joint.collideConnected = true
	return joint.Joint
}

func (joint *PulleyJoint) LengthA() float64 {
	return joint.a.LocalToWorld(joint.AnchorA).Distance(joint.GroundAnchorA)
}

func (joint *PulleyJoint) LengthB() float64 {
	return joint.b.LocalToWorld(joint.AnchorB).Distance(joint.GroundAnchorB)
}

// Constant is the total rope length, lengthA + Ratio * lengthB.
func (joint *PulleyJoint) Constant() float64 {
	return joint.constant
}

func (joint *PulleyJoint) MaxLengths() (a, b float64) {
	return joint.maxLengthA, joint.maxLengthB
}

// SetMaxLengths caps each side. The caps never exceed what the rope allows.
func (joint *PulleyJoint) SetMaxLengths(a, b float64) {
	joint.ActivateBodies()
	joint.maxLengthA = math.Min(a, joint.constant-joint.Ratio*MinPulleyLength)
	joint.maxLengthB = math.Min(b, (joint.constant-MinPulleyLength)/joint.Ratio)
}

// ropeDirection is the unit direction from the ground anchor to the body
// anchor, zero when they coincide.
func ropeDirection(body *Body, r, ground Vector) (u Vector, length float64) {
	u = body.sweep.C.Add(r).Sub(ground)
	length = u.Length()
	if length > LinearSlop {
		return u.Mult(1.0 / length), length
	}
	return Vector{}, length
}

func ropeMass(body *Body, r, u Vector) float64 {
	cru := r.Cross(u)
	return body.m_inv + body.i_inv*cru*cru
}

func invertMass(k float64) float64 {
	if k > 0 {
		return 1.0 / k
	}
	return 0
}

// pull applies an impulse along -u at the anchor.
func pull(body *Body, r, u Vector, impulse float64) {
	P := u.Mult(-impulse)
	body.setSolverVelocity(body.v.Add(P.Mult(body.m_inv)), body.w+body.i_inv*r.Cross(P))
}

func pullPosition(body *Body, r, u Vector, impulse float64) {
	P := u.Mult(-impulse)
	body.applySolverPosition(P.Mult(body.m_inv), body.i_inv*r.Cross(P))
}

func (joint *PulleyJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.r1 = anchor_offset(a, joint.AnchorA)
	joint.r2 = anchor_offset(b, joint.AnchorB)

	var lengthA, lengthB float64
	joint.u1, lengthA = ropeDirection(a, joint.r1, joint.GroundAnchorA)
	joint.u2, lengthB = ropeDirection(b, joint.r2, joint.GroundAnchorB)

	if joint.constant-lengthA-joint.Ratio*lengthB > 0 {
		joint.state = LIMIT_INACTIVE
		joint.impulse = 0
	} else {
		joint.state = LIMIT_AT_UPPER
	}

	if lengthA < joint.maxLengthA {
		joint.limitStateA = LIMIT_INACTIVE
		joint.limitImpulseA = 0
	} else {
		joint.limitStateA = LIMIT_AT_UPPER
	}

	if lengthB < joint.maxLengthB {
		joint.limitStateB = LIMIT_INACTIVE
		joint.limitImpulseB = 0
	} else {
		joint.limitStateB = LIMIT_AT_UPPER
	}

	joint.limitMassA = ropeMass(a, joint.r1, joint.u1)
	joint.limitMassB = ropeMass(b, joint.r2, joint.u2)
	joint.pulleyMass = invertMass(joint.limitMassA + joint.Ratio*joint.Ratio*joint.limitMassB)
	joint.limitMassA = invertMass(joint.limitMassA)
	joint.limitMassB = invertMass(joint.limitMassB)

	if step.WarmStarting {
		joint.impulse *= step.DtRatio
		joint.limitImpulseA *= step.DtRatio
		joint.limitImpulseB *= step.DtRatio

		pull(a, joint.r1, joint.u1, joint.impulse+joint.limitImpulseA)
		pull(b, joint.r2, joint.u2, joint.Ratio*joint.impulse+joint.limitImpulseB)
	} else {
		joint.impulse = 0
		joint.limitImpulseA = 0
		joint.limitImpulseB = 0
	}
}

func (joint *PulleyJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b

	if joint.state == LIMIT_AT_UPPER {
		v1 := a.v.Add(joint.r1.Perp().Mult(a.w))
		v2 := b.v.Add(joint.r2.Perp().Mult(b.w))

		Cdot := -joint.u1.Dot(v1) - joint.Ratio*joint.u2.Dot(v2)
		impulse := -joint.pulleyMass * Cdot
		oldImpulse := joint.impulse
		// rope only pulls
		joint.impulse = math.Max(0, joint.impulse+impulse)
		impulse = joint.impulse - oldImpulse

		pull(a, joint.r1, joint.u1, impulse)
		pull(b, joint.r2, joint.u2, joint.Ratio*impulse)
	}

	if joint.limitStateA == LIMIT_AT_UPPER {
		v1 := a.v.Add(joint.r1.Perp().Mult(a.w))
		impulse := joint.limitMassA * joint.u1.Dot(v1)
		oldImpulse := joint.limitImpulseA
		joint.limitImpulseA = math.Max(0, joint.limitImpulseA+impulse)
		pull(a, joint.r1, joint.u1, joint.limitImpulseA-oldImpulse)
	}

	if joint.limitStateB == LIMIT_AT_UPPER {
		v2 := b.v.Add(joint.r2.Perp().Mult(b.w))
		impulse := joint.limitMassB * joint.u2.Dot(v2)
		oldImpulse := joint.limitImpulseB
		joint.limitImpulseB = math.Max(0, joint.limitImpulseB+impulse)
		pull(b, joint.r2, joint.u2, joint.limitImpulseB-oldImpulse)
	}
}

func (joint *PulleyJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	linearError := 0.0

	if joint.state == LIMIT_AT_UPPER {
		r1 := anchor_offset(a, joint.AnchorA)
		r2 := anchor_offset(b, joint.AnchorB)
		u1, lengthA := ropeDirection(a, r1, joint.GroundAnchorA)
		u2, lengthB := ropeDirection(b, r2, joint.GroundAnchorB)

		C := joint.constant - lengthA - joint.Ratio*lengthB
		linearError = math.Max(linearError, -C)

		C = Clamp(C+LinearSlop, -MaxLinearCorrection, 0)
		mass := invertMass(ropeMass(a, r1, u1) + joint.Ratio*joint.Ratio*ropeMass(b, r2, u2))
		impulse := -mass * C

		pullPosition(a, r1, u1, impulse)
		pullPosition(b, r2, u2, joint.Ratio*impulse)
	}

	if joint.limitStateA == LIMIT_AT_UPPER {
		r1 := anchor_offset(a, joint.AnchorA)
		u1, lengthA := ropeDirection(a, r1, joint.GroundAnchorA)

		C := joint.maxLengthA - lengthA
		linearError = math.Max(linearError, -C)

		C = Clamp(C+LinearSlop, -MaxLinearCorrection, 0)
		pullPosition(a, r1, u1, -invertMass(ropeMass(a, r1, u1))*C)
	}

	if joint.limitStateB == LIMIT_AT_UPPER {
		r2 := anchor_offset(b, joint.AnchorB)
		u2, lengthB := ropeDirection(b, r2, joint.GroundAnchorB)

		C := joint.maxLengthB - lengthB
		linearError = math.Max(linearError, -C)

		C = Clamp(C+LinearSlop, -MaxLinearCorrection, 0)
		pullPosition(b, r2, u2, -invertMass(ropeMass(b, r2, u2))*C)
	}

	return linearError < LinearSlop
}

// ReactionForce is the rope tension on B.
func (joint *PulleyJoint) ReactionForce(inv_dt float64) Vector {
	return joint.u2.Mult(-inv_dt * (joint.Ratio*joint.impulse + joint.limitImpulseB))
}

func (joint *PulleyJoint) ReactionTorque(inv_dt float64) float64 {
	return 0
}
