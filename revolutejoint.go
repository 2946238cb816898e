package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type limitState int

const (
	LIMIT_INACTIVE limitState = iota
	LIMIT_AT_LOWER
	LIMIT_AT_UPPER
	LIMIT_EQUAL
)

// RevoluteJoint pins two bodies together at a point and lets them rotate.
// It can drive the relative rotation with a motor and bound it with limits.
type RevoluteJoint struct {
	*Joint
	AnchorA, AnchorB Vector
	ReferenceAngle   float64

	enableLimit            bool
	lowerAngle, upperAngle float64

	enableMotor    bool
	maxMotorTorque float64
	motorSpeed     float64

	r1, r2    Vector
	mass      mgl64.Mat3
	motorMass float64
	limit     limitState

	impulse      mgl64.Vec3
	motorImpulse float64
}

func NewRevoluteJoint(a, b *Body, pivot Vector) *Joint {
	joint := &RevoluteJoint{
		AnchorA:        a.WorldToLocal(pivot),
		AnchorB:        b.WorldToLocal(pivot),
		ReferenceAngle: b.Angle() - a.Angle(),
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

// JointAngle is the rotation of B relative to A since the joint was created.
func (joint *RevoluteJoint) JointAngle() float64 {
	return joint.b.sweep.A - joint.a.sweep.A - joint.ReferenceAngle
}

func (joint *RevoluteJoint) JointSpeed() float64 {
	return joint.b.w - joint.a.w
}

func (joint *RevoluteJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *RevoluteJoint) Limits() (lower, upper float64) {
	return joint.lowerAngle, joint.upperAngle
}

func (joint *RevoluteJoint) EnableLimit(flag bool) {
	joint.ActivateBodies()
	joint.enableLimit = flag
}

func (joint *RevoluteJoint) SetLimits(lower, upper float64) {
	assert(lower <= upper, "Lower limit is above the upper limit")
	joint.ActivateBodies()
	joint.lowerAngle = lower
	joint.upperAngle = upper
}

func (joint *RevoluteJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *RevoluteJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *RevoluteJoint) MaxMotorTorque() float64 {
	return joint.maxMotorTorque
}

func (joint *RevoluteJoint) EnableMotor(flag bool) {
	joint.ActivateBodies()
	joint.enableMotor = flag
}

func (joint *RevoluteJoint) SetMotorSpeed(speed float64) {
	joint.ActivateBodies()
	joint.motorSpeed = speed
}

func (joint *RevoluteJoint) SetMaxMotorTorque(torque float64) {
	joint.ActivateBodies()
	joint.maxMotorTorque = torque
}

func (joint *RevoluteJoint) MotorTorque(inv_dt float64) float64 {
	return inv_dt * joint.motorImpulse
}

func (joint *RevoluteJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.r1 = anchor_offset(a, joint.AnchorA)
	joint.r2 = anchor_offset(b, joint.AnchorB)

	joint.mass = k_tensor3(a, b, joint.r1, joint.r2)

	joint.motorMass = a.i_inv + b.i_inv
	if joint.motorMass > 0 {
		joint.motorMass = 1.0 / joint.motorMass
	}

	if !joint.enableMotor {
		joint.motorImpulse = 0
	}

	if joint.enableLimit {
		angle := joint.JointAngle()
		switch {
		case math.Abs(joint.upperAngle-joint.lowerAngle) < 2*AngularSlop:
			joint.limit = LIMIT_EQUAL
		case angle <= joint.lowerAngle:
			if joint.limit != LIMIT_AT_LOWER {
				joint.impulse[2] = 0
			}
			joint.limit = LIMIT_AT_LOWER
		case angle >= joint.upperAngle:
			if joint.limit != LIMIT_AT_UPPER {
				joint.impulse[2] = 0
			}
			joint.limit = LIMIT_AT_UPPER
		default:
			joint.limit = LIMIT_INACTIVE
			joint.impulse[2] = 0
		}
	} else {
		joint.limit = LIMIT_INACTIVE
	}

	if step.WarmStarting {
		joint.impulse = joint.impulse.Mul(step.DtRatio)
		joint.motorImpulse *= step.DtRatio

		P := Vector{joint.impulse[0], joint.impulse[1]}
		apply_impulses(a, b, joint.r1, joint.r2, P, joint.motorImpulse+joint.impulse[2])
	} else {
		joint.impulse = mgl64.Vec3{}
		joint.motorImpulse = 0
	}
}

func (joint *RevoluteJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b

	// motor
	if joint.enableMotor && joint.limit != LIMIT_EQUAL {
		Cdot := b.w - a.w - joint.motorSpeed
		impulse := -joint.motorMass * Cdot
		oldImpulse := joint.motorImpulse
		maxImpulse := step.Dt * joint.maxMotorTorque
		joint.motorImpulse = Clamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		apply_impulses(a, b, joint.r1, joint.r2, Vector{}, impulse)
	}

	Cdot1 := relative_velocity(a, b, joint.r1, joint.r2)

	// limit
	if joint.enableLimit && joint.limit != LIMIT_INACTIVE {
		Cdot2 := b.w - a.w
		impulse := solve33(joint.mass, mgl64.Vec3{-Cdot1.X, -Cdot1.Y, -Cdot2})

		switch joint.limit {
		case LIMIT_EQUAL:
			joint.impulse = joint.impulse.Add(impulse)
		case LIMIT_AT_LOWER, LIMIT_AT_UPPER:
			newImpulse := joint.impulse[2] + impulse[2]
			if (joint.limit == LIMIT_AT_LOWER && newImpulse < 0) || (joint.limit == LIMIT_AT_UPPER && newImpulse > 0) {
				// the limit would pull, release it and solve the point only
				reduced := solve33Upper(joint.mass, Cdot1.Neg())
				impulse = mgl64.Vec3{reduced.X, reduced.Y, -joint.impulse[2]}
				joint.impulse[0] += reduced.X
				joint.impulse[1] += reduced.Y
				joint.impulse[2] = 0
			} else {
				joint.impulse = joint.impulse.Add(impulse)
			}
		}

		apply_impulses(a, b, joint.r1, joint.r2, Vector{impulse[0], impulse[1]}, impulse[2])
	} else {
		impulse := solve33Upper(joint.mass, Cdot1.Neg())
		joint.impulse[0] += impulse.X
		joint.impulse[1] += impulse.Y

		apply_impulses(a, b, joint.r1, joint.r2, impulse, 0)
	}
}

func (joint *RevoluteJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	angularError := 0.0

	// limit
	if joint.enableLimit && joint.limit != LIMIT_INACTIVE {
		angle := joint.JointAngle()
		limitImpulse := 0.0

		switch joint.limit {
		case LIMIT_EQUAL:
			C := Clamp(angle-joint.lowerAngle, -MaxAngularCorrection, MaxAngularCorrection)
			limitImpulse = -joint.motorMass * C
			angularError = math.Abs(C)
		case LIMIT_AT_LOWER:
			C := angle - joint.lowerAngle
			angularError = -C
			C = Clamp(C+AngularSlop, -MaxAngularCorrection, 0)
			limitImpulse = -joint.motorMass * C
		case LIMIT_AT_UPPER:
			C := angle - joint.upperAngle
			angularError = C
			C = Clamp(C-AngularSlop, 0, MaxAngularCorrection)
			limitImpulse = -joint.motorMass * C
		}

		a.applySolverPosition(Vector{}, -a.i_inv*limitImpulse)
		b.applySolverPosition(Vector{}, b.i_inv*limitImpulse)
	}

	// point to point
	r1 := anchor_offset(a, joint.AnchorA)
	r2 := anchor_offset(b, joint.AnchorB)

	C := b.sweep.C.Add(r2).Sub(a.sweep.C).Sub(r1)
	positionError := C.Length()

	// pull far apart anchors together with the linear masses first
	const allowedStretch = 10.0 * LinearSlop
	if C.LengthSq() > allowedStretch*allowedStretch {
		k := a.m_inv + b.m_inv
		if k > 0 {
			impulse := C.Mult(-1.0 / k)
			const beta = 0.5
			a.applySolverPosition(impulse.Mult(-beta*a.m_inv), 0)
			b.applySolverPosition(impulse.Mult(beta*b.m_inv), 0)

			C = b.sweep.C.Add(r2).Sub(a.sweep.C).Sub(r1)
		}
	}

	impulse := solve22(k_tensor(a, b, r1, r2), C.Neg())
	apply_position_impulses(a, b, r1, r2, impulse, 0)

	return positionError <= LinearSlop && angularError <= AngularSlop
}

func (joint *RevoluteJoint) ReactionForce(inv_dt float64) Vector {
	return Vector{joint.impulse[0], joint.impulse[1]}.Mult(inv_dt)
}

func (joint *RevoluteJoint) ReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.impulse[2]
}
