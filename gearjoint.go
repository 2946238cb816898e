package b2d

import "math"

// GearJoint couples the coordinates of two revolute or prismatic joints so
// that coordinate1 + Ratio * coordinate2 stays constant. Both joints must
// hang off a static body, the gear acts between their B bodies.
// Remove the gear before either joint; RemoveJoint does it for you.
type GearJoint struct {
	*Joint
	joint1, joint2 *Joint
	Ratio          float64

	constant float64

	// jacobian
	linearA, linearB   Vector
	angularA, angularB float64

	mass, impulse float64
}

func NewGearJoint(joint1, joint2 *Joint, ratio float64) *Joint {
	assert(isGearable(joint1) && isGearable(joint2), "Gears only couple revolute and prismatic joints")
	assert(joint1.a.bodyType == BODY_STATIC && joint2.a.bodyType == BODY_STATIC, "Geared joints must be attached to a static body")

	joint := &GearJoint{
		joint1: joint1,
		joint2: joint2,
		Ratio:  ratio,
	}
	joint.constant = gearCoordinate(joint1) + ratio*gearCoordinate(joint2)
	joint.Joint = NewJoint(joint, joint1.b, joint2.b)
	return joint.Joint
}

func isGearable(joint *Joint) bool {
	switch joint.Class.(type) {
	case *RevoluteJoint, *PrismaticJoint:
		return true
	}
	return false
}

func gearCoordinate(joint *Joint) float64 {
	switch class := joint.Class.(type) {
	case *RevoluteJoint:
		return class.JointAngle()
	case *PrismaticJoint:
		return class.JointTranslation()
	}
	return 0
}

// gearJacobian is the jacobian row of a geared joint's B body, with the
// effective mass it contributes.
func gearJacobian(joint *Joint, scale float64) (linear Vector, angular, k float64) {
	body := joint.b
	switch class := joint.Class.(type) {
	case *RevoluteJoint:
		return Vector{}, -scale, scale * scale * body.i_inv
	case *PrismaticJoint:
		ug := joint.a.transform.Vect(class.LocalAxis)
		r := anchor_offset(body, class.AnchorB)
		crug := r.Cross(ug)
		return ug.Mult(-scale), -scale * crug, scale * scale * (body.m_inv + body.i_inv*crug*crug)
	}
	return Vector{}, 0, 0
}

func (joint *GearJoint) Joints() (*Joint, *Joint) {
	return joint.joint1, joint.joint2
}

// references reports whether the gear is built on other.
func (joint *GearJoint) references(other *Joint) bool {
	return joint.joint1 == other || joint.joint2 == other
}

func (joint *GearJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	var kA, kB float64
	joint.linearA, joint.angularA, kA = gearJacobian(joint.joint1, 1)
	joint.linearB, joint.angularB, kB = gearJacobian(joint.joint2, joint.Ratio)

	joint.mass = kA + kB
	if joint.mass > 0 {
		joint.mass = 1.0 / joint.mass
	}

	if step.WarmStarting {
		joint.impulse *= step.DtRatio
		joint.apply(a, b, joint.impulse)
	} else {
		joint.impulse = 0
	}
}

func (joint *GearJoint) apply(a, b *Body, impulse float64) {
	a.setSolverVelocity(a.v.Add(joint.linearA.Mult(a.m_inv*impulse)), a.w+a.i_inv*impulse*joint.angularA)
	b.setSolverVelocity(b.v.Add(joint.linearB.Mult(b.m_inv*impulse)), b.w+b.i_inv*impulse*joint.angularB)
}

func (joint *GearJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b

	Cdot := joint.linearA.Dot(a.v) + joint.angularA*a.w + joint.linearB.Dot(b.v) + joint.angularB*b.w
	impulse := -joint.mass * Cdot
	joint.impulse += impulse

	joint.apply(a, b, impulse)
}

func (joint *GearJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	C := joint.constant - (gearCoordinate(joint.joint1) + joint.Ratio*gearCoordinate(joint.joint2))
	impulse := -joint.mass * C

	a.applySolverPosition(joint.linearA.Mult(a.m_inv*impulse), a.i_inv*impulse*joint.angularA)
	b.applySolverPosition(joint.linearB.Mult(b.m_inv*impulse), b.i_inv*impulse*joint.angularB)

	return math.Abs(C) <= LinearSlop
}

func (joint *GearJoint) ReactionForce(inv_dt float64) Vector {
	return joint.linearB.Mult(inv_dt * joint.impulse)
}

func (joint *GearJoint) ReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.impulse * joint.angularB
}
