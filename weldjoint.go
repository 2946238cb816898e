package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WeldJoint glues two bodies together, locking relative position and angle.
type WeldJoint struct {
	*Joint
	AnchorA, AnchorB Vector
	ReferenceAngle   float64

	r1, r2  Vector
	mass    mgl64.Mat3
	impulse mgl64.Vec3
}

func NewWeldJoint(a, b *Body, anchor Vector) *Joint {
	joint := &WeldJoint{
		AnchorA:        a.WorldToLocal(anchor),
		AnchorB:        b.WorldToLocal(anchor),
		ReferenceAngle: b.Angle() - a.Angle(),
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

func (joint *WeldJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.r1 = anchor_offset(a, joint.AnchorA)
	joint.r2 = anchor_offset(b, joint.AnchorB)
	joint.mass = k_tensor3(a, b, joint.r1, joint.r2)

	if step.WarmStarting {
		joint.impulse = joint.impulse.Mul(step.DtRatio)
		P := Vector{joint.impulse[0], joint.impulse[1]}
		apply_impulses(a, b, joint.r1, joint.r2, P, joint.impulse[2])
	} else {
		joint.impulse = mgl64.Vec3{}
	}
}

func (joint *WeldJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b

	Cdot1 := relative_velocity(a, b, joint.r1, joint.r2)
	Cdot2 := b.w - a.w

	impulse := solve33(joint.mass, mgl64.Vec3{-Cdot1.X, -Cdot1.Y, -Cdot2})
	joint.impulse = joint.impulse.Add(impulse)

	apply_impulses(a, b, joint.r1, joint.r2, Vector{impulse[0], impulse[1]}, impulse[2])
}

func (joint *WeldJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	r1 := anchor_offset(a, joint.AnchorA)
	r2 := anchor_offset(b, joint.AnchorB)

	C1 := b.sweep.C.Add(r2).Sub(a.sweep.C).Sub(r1)
	C2 := b.sweep.A - a.sweep.A - joint.ReferenceAngle

	positionError := C1.Length()
	angularError := math.Abs(C2)

	impulse := solve33(k_tensor3(a, b, r1, r2), mgl64.Vec3{-C1.X, -C1.Y, -C2})
	apply_position_impulses(a, b, r1, r2, Vector{impulse[0], impulse[1]}, impulse[2])

	return positionError <= LinearSlop && angularError <= AngularSlop
}

func (joint *WeldJoint) ReactionForce(inv_dt float64) Vector {
	return Vector{joint.impulse[0], joint.impulse[1]}.Mult(inv_dt)
}

func (joint *WeldJoint) ReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.impulse[2]
}
