package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PrismaticJoint lets B slide along an axis fixed in A and keeps their
// relative rotation. The translation can be bounded with limits and driven
// with a motor.
type PrismaticJoint struct {
	*Joint
	AnchorA, AnchorB Vector
	// LocalAxis is the unit slide direction in A's body space.
	LocalAxis      Vector
	ReferenceAngle float64

	enableLimit                        bool
	lowerTranslation, upperTranslation float64

	enableMotor   bool
	maxMotorForce float64
	motorSpeed    float64

	frame     axisFrame
	mass      mgl64.Mat3
	motorMass float64
	limit     limitState

	// perpendicular, angular and axial
	impulse      mgl64.Vec3
	motorImpulse float64
}

// NewPrismaticJoint creates a slider through anchor along the world axis.
func NewPrismaticJoint(a, b *Body, anchor, axis Vector) *Joint {
	joint := &PrismaticJoint{
		AnchorA:        a.WorldToLocal(anchor),
		AnchorB:        b.WorldToLocal(anchor),
		LocalAxis:      a.transform.VectT(axis.Normalize()),
		ReferenceAngle: b.Angle() - a.Angle(),
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

// axisFrame is the geometry shared by the joints that slide along an axis
// fixed in body A.
type axisFrame struct {
	r1, r2, d  Vector
	axis, perp Vector
	// lever arms of the axis and its perpendicular
	a1, a2, s1, s2 float64
}

func newAxisFrame(a, b *Body, anchorA, anchorB, localAxis Vector) axisFrame {
	f := axisFrame{
		r1: anchor_offset(a, anchorA),
		r2: anchor_offset(b, anchorB),
	}
	f.d = b.sweep.C.Add(f.r2).Sub(a.sweep.C).Sub(f.r1)
	f.axis = a.transform.Vect(localAxis)
	f.perp = f.axis.Perp()

	f.a1 = f.d.Add(f.r1).Cross(f.axis)
	f.a2 = f.r2.Cross(f.axis)
	f.s1 = f.d.Add(f.r1).Cross(f.perp)
	f.s2 = f.r2.Cross(f.perp)
	return f
}

// axisSpeed is the rate of change of the translation.
func (f *axisFrame) axisSpeed(a, b *Body) float64 {
	return f.axis.Dot(b.v.Sub(a.v)) + f.a2*b.w - f.a1*a.w
}

func (f *axisFrame) perpSpeed(a, b *Body) float64 {
	return f.perp.Dot(b.v.Sub(a.v)) + f.s2*b.w - f.s1*a.w
}

// axisMass is the effective mass along the axis before inversion.
func (f *axisFrame) axisMass(a, b *Body) float64 {
	return a.m_inv + b.m_inv + a.i_inv*f.a1*f.a1 + b.i_inv*f.a2*f.a2
}

// applyImpulses applies perpendicular, angular and axial impulses, negative on a.
func (f *axisFrame) applyImpulses(a, b *Body, perp, angular, axial float64) {
	P := f.perp.Mult(perp).Add(f.axis.Mult(axial))
	L1 := perp*f.s1 + angular + axial*f.a1
	L2 := perp*f.s2 + angular + axial*f.a2
	a.setSolverVelocity(a.v.Sub(P.Mult(a.m_inv)), a.w-a.i_inv*L1)
	b.setSolverVelocity(b.v.Add(P.Mult(b.m_inv)), b.w+b.i_inv*L2)
}

func (f *axisFrame) applyPositionImpulses(a, b *Body, perp, angular, axial float64) {
	P := f.perp.Mult(perp).Add(f.axis.Mult(axial))
	L1 := perp*f.s1 + angular + axial*f.a1
	L2 := perp*f.s2 + angular + axial*f.a2
	a.applySolverPosition(P.Mult(-a.m_inv), -a.i_inv*L1)
	b.applySolverPosition(P.Mult(b.m_inv), b.i_inv*L2)
}

// slideLimitState picks the limit state for a translation.
func slideLimitState(translation, lower, upper float64, current limitState) (state limitState, reset bool) {
	switch {
	case math.Abs(upper-lower) < 2*LinearSlop:
		return LIMIT_EQUAL, false
	case translation <= lower:
		return LIMIT_AT_LOWER, current != LIMIT_AT_LOWER
	case translation >= upper:
		return LIMIT_AT_UPPER, current != LIMIT_AT_UPPER
	default:
		return LIMIT_INACTIVE, true
	}
}

// slideLimitError is the clamped position error of a translation limit and
// how far the limit is violated.
func slideLimitError(translation, lower, upper float64) (C, violation float64, active bool) {
	switch {
	case math.Abs(upper-lower) < 2*LinearSlop:
		C = Clamp(translation-lower, -MaxLinearCorrection, MaxLinearCorrection)
		return C, math.Abs(translation - lower), true
	case translation <= lower:
		return Clamp(translation-lower+LinearSlop, -MaxLinearCorrection, 0), lower - translation, true
	case translation >= upper:
		return Clamp(translation-upper-LinearSlop, 0, MaxLinearCorrection), translation - upper, true
	}
	return 0, 0, false
}

// JointTranslation is how far B's anchor has moved from A's along the axis.
func (joint *PrismaticJoint) JointTranslation() float64 {
	a, b := joint.a, joint.b
	d := b.LocalToWorld(joint.AnchorB).Sub(a.LocalToWorld(joint.AnchorA))
	return d.Dot(a.transform.Vect(joint.LocalAxis))
}

func (joint *PrismaticJoint) JointSpeed() float64 {
	f := newAxisFrame(joint.a, joint.b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)
	// the axis turns with A
	return f.d.Dot(f.axis.Perp().Mult(joint.a.w)) + f.axis.Dot(relative_velocity(joint.a, joint.b, f.r1, f.r2))
}

func (joint *PrismaticJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *PrismaticJoint) Limits() (lower, upper float64) {
	return joint.lowerTranslation, joint.upperTranslation
}

func (joint *PrismaticJoint) EnableLimit(flag bool) {
	joint.ActivateBodies()
	joint.enableLimit = flag
}

func (joint *PrismaticJoint) SetLimits(lower, upper float64) {
	assert(lower <= upper, "Lower limit is above the upper limit")
	joint.ActivateBodies()
	joint.lowerTranslation = lower
	joint.upperTranslation = upper
}

func (joint *PrismaticJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *PrismaticJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *PrismaticJoint) MaxMotorForce() float64 {
	return joint.maxMotorForce
}

func (joint *PrismaticJoint) EnableMotor(flag bool) {
	joint.ActivateBodies()
	joint.enableMotor = flag
}

func (joint *PrismaticJoint) SetMotorSpeed(speed float64) {
	joint.ActivateBodies()
	joint.motorSpeed = speed
}

func (joint *PrismaticJoint) SetMaxMotorForce(force float64) {
	joint.ActivateBodies()
	joint.maxMotorForce = force
}

func (joint *PrismaticJoint) MotorForce(inv_dt float64) float64 {
	return inv_dt * joint.motorImpulse
}

// prismatic_mass is the effective mass of the perpendicular, angular and
// axial constraints before inversion.
func prismatic_mass(a, b *Body, f *axisFrame) mgl64.Mat3 {
	m1, m2 := a.m_inv, b.m_inv
	i1, i2 := a.i_inv, b.i_inv

	k11 := m1 + m2 + i1*f.s1*f.s1 + i2*f.s2*f.s2
	k12 := i1*f.s1 + i2*f.s2
	k13 := i1*f.s1*f.a1 + i2*f.s2*f.a2
	k22 := i1 + i2
	if k22 == 0 {
		// two bodies with fixed rotation
		k22 = 1
	}
	k23 := i1*f.a1 + i2*f.a2
	k33 := m1 + m2 + i1*f.a1*f.a1 + i2*f.a2*f.a2

	return newMat33(
		mgl64.Vec3{k11, k12, k13},
		mgl64.Vec3{k12, k22, k23},
		mgl64.Vec3{k13, k23, k33},
	)
}

func (joint *PrismaticJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.frame = newAxisFrame(a, b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)
	f := &joint.frame

	joint.motorMass = f.axisMass(a, b)
	if joint.motorMass > Epsilon {
		joint.motorMass = 1.0 / joint.motorMass
	}
	joint.mass = prismatic_mass(a, b, f)

	if joint.enableLimit {
		var reset bool
		joint.limit, reset = slideLimitState(f.axis.Dot(f.d), joint.lowerTranslation, joint.upperTranslation, joint.limit)
		if reset {
			joint.impulse[2] = 0
		}
	} else {
		joint.limit = LIMIT_INACTIVE
		joint.impulse[2] = 0
	}

	if !joint.enableMotor {
		joint.motorImpulse = 0
	}

	if step.WarmStarting {
		joint.impulse = joint.impulse.Mul(step.DtRatio)
		joint.motorImpulse *= step.DtRatio

		f.applyImpulses(a, b, joint.impulse[0], joint.impulse[1], joint.motorImpulse+joint.impulse[2])
	} else {
		joint.impulse = mgl64.Vec3{}
		joint.motorImpulse = 0
	}
}

func (joint *PrismaticJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b
	f := &joint.frame

	// motor
	if joint.enableMotor && joint.limit != LIMIT_EQUAL {
		Cdot := f.axisSpeed(a, b)
		impulse := joint.motorMass * (joint.motorSpeed - Cdot)
		oldImpulse := joint.motorImpulse
		maxImpulse := step.Dt * joint.maxMotorForce
		joint.motorImpulse = Clamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		f.applyImpulses(a, b, 0, 0, impulse)
	}

	Cdot1 := Vector{f.perpSpeed(a, b), b.w - a.w}

	if joint.enableLimit && joint.limit != LIMIT_INACTIVE {
		Cdot2 := f.axisSpeed(a, b)

		f1 := joint.impulse
		df := solve33(joint.mass, mgl64.Vec3{-Cdot1.X, -Cdot1.Y, -Cdot2})
		joint.impulse = joint.impulse.Add(df)

		switch joint.limit {
		case LIMIT_AT_LOWER:
			joint.impulse[2] = math.Max(joint.impulse[2], 0)
		case LIMIT_AT_UPPER:
			joint.impulse[2] = math.Min(joint.impulse[2], 0)
		}

		// the clamped axial impulse changes what the other two rows need
		k := joint.mass
		rhs := Cdot1.Neg().Sub(Vector{k[6], k[7]}.Mult(joint.impulse[2] - f1[2]))
		f2r := solve33Upper(k, rhs).Add(Vector{f1[0], f1[1]})
		joint.impulse[0] = f2r.X
		joint.impulse[1] = f2r.Y

		df = joint.impulse.Sub(f1)
		f.applyImpulses(a, b, df[0], df[1], df[2])
	} else {
		df := solve33Upper(joint.mass, Cdot1.Neg())
		joint.impulse[0] += df.X
		joint.impulse[1] += df.Y

		f.applyImpulses(a, b, df.X, df.Y, 0)
	}
}

func (joint *PrismaticJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	f := newAxisFrame(a, b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)

	C1 := Vector{f.perp.Dot(f.d), b.sweep.A - a.sweep.A - joint.ReferenceAngle}
	linearError := math.Abs(C1.X)
	angularError := math.Abs(C1.Y)

	var C2 float64
	active := false
	if joint.enableLimit {
		var violation float64
		C2, violation, active = slideLimitError(f.axis.Dot(f.d), joint.lowerTranslation, joint.upperTranslation)
		linearError = math.Max(linearError, violation)
	}

	k := prismatic_mass(a, b, &f)
	if active {
		impulse := solve33(k, mgl64.Vec3{-C1.X, -C1.Y, -C2})
		f.applyPositionImpulses(a, b, impulse[0], impulse[1], impulse[2])
	} else {
		impulse := solve33Upper(k, C1.Neg())
		f.applyPositionImpulses(a, b, impulse.X, impulse.Y, 0)
	}

	return linearError <= LinearSlop && angularError <= AngularSlop
}

func (joint *PrismaticJoint) ReactionForce(inv_dt float64) Vector {
	f := &joint.frame
	return f.perp.Mult(joint.impulse[0]).Add(f.axis.Mult(joint.motorImpulse + joint.impulse[2])).Mult(inv_dt)
}

func (joint *PrismaticJoint) ReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.impulse[1]
}
