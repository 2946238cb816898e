package b2d

import "math"

// DistanceJoint keeps two anchor points at a fixed distance, like a massless
// rod. With a frequency it becomes a damped spring.
type DistanceJoint struct {
	*Joint
	AnchorA, AnchorB Vector
	Length           float64

	FrequencyHz  float64
	DampingRatio float64

	r1, r2 Vector
	u      Vector
	mass   float64
	gamma  float64
	bias   float64

	impulse float64
}

// NewDistanceJoint takes anchors in world coordinates and uses their current
// distance as the rest length.
func NewDistanceJoint(a, b *Body, anchorA, anchorB Vector) *Joint {
	joint := &DistanceJoint{
		AnchorA: a.WorldToLocal(anchorA),
		AnchorB: b.WorldToLocal(anchorB),
		Length:  anchorB.Distance(anchorA),
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

func (joint *DistanceJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.r1 = anchor_offset(a, joint.AnchorA)
	joint.r2 = anchor_offset(b, joint.AnchorB)

	delta := b.sweep.C.Add(joint.r2).Sub(a.sweep.C).Sub(joint.r1)

	length := delta.Length()
	if length > LinearSlop {
		joint.u = delta.Mult(1.0 / length)
	} else {
		joint.u = Vector{}
	}

	invMass := k_scalar(a, b, joint.r1, joint.r2, joint.u)
	joint.mass = 0
	if invMass != 0 {
		joint.mass = 1.0 / invMass
	}

	joint.gamma = 0
	joint.bias = 0
	if joint.FrequencyHz > 0 {
		C := length - joint.Length

		omega := 2.0 * math.Pi * joint.FrequencyHz
		d := 2.0 * joint.mass * joint.DampingRatio * omega
		k := joint.mass * omega * omega

		dt := step.Dt
		joint.gamma = dt * (d + dt*k)
		if joint.gamma != 0 {
			joint.gamma = 1.0 / joint.gamma
		}
		joint.bias = C * dt * k * joint.gamma

		invMass += joint.gamma
		joint.mass = 0
		if invMass != 0 {
			joint.mass = 1.0 / invMass
		}
	}

	if step.WarmStarting {
		joint.impulse *= step.DtRatio
		apply_impulses(a, b, joint.r1, joint.r2, joint.u.Mult(joint.impulse), 0)
	} else {
		joint.impulse = 0
	}
}

func (joint *DistanceJoint) SolveVelocity(step *TimeStep) {
	Cdot := joint.u.Dot(relative_velocity(joint.a, joint.b, joint.r1, joint.r2))

	impulse := -joint.mass * (Cdot + joint.bias + joint.gamma*joint.impulse)
	joint.impulse += impulse

	apply_impulses(joint.a, joint.b, joint.r1, joint.r2, joint.u.Mult(impulse), 0)
}

func (joint *DistanceJoint) SolvePosition(baumgarte float64) bool {
	// springs are soft on purpose
	if joint.FrequencyHz > 0 {
		return true
	}

	a := joint.a
	b := joint.b

	r1 := anchor_offset(a, joint.AnchorA)
	r2 := anchor_offset(b, joint.AnchorB)

	delta := b.sweep.C.Add(r2).Sub(a.sweep.C).Sub(r1)
	u, length := delta.normalizeLength()
	C := Clamp(length-joint.Length, -MaxLinearCorrection, MaxLinearCorrection)

	impulse := -joint.mass * C
	apply_position_impulses(a, b, r1, r2, u.Mult(impulse), 0)

	return math.Abs(C) < LinearSlop
}

func (joint *DistanceJoint) ReactionForce(inv_dt float64) Vector {
	return joint.u.Mult(inv_dt * joint.impulse)
}

func (joint *DistanceJoint) ReactionTorque(inv_dt float64) float64 {
	return 0
}

// Error is the current distance minus the rest length.
func (joint *DistanceJoint) Error() float64 {
	p1 := joint.a.LocalToWorld(joint.AnchorA)
	p2 := joint.b.LocalToWorld(joint.AnchorB)
	return p2.Distance(p1) - joint.Length
}
