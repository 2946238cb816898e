package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LineJoint keeps B's anchor on a line fixed in A. Unlike the prismatic
// joint B is free to rotate. The translation along the line can be limited
// and motorized.
type LineJoint struct {
	*Joint
	AnchorA, AnchorB Vector
	// LocalAxis is the unit line direction in A's body space.
	LocalAxis Vector

	enableLimit                        bool
	lowerTranslation, upperTranslation float64

	enableMotor   bool
	maxMotorForce float64
	motorSpeed    float64

	frame     axisFrame
	mass      mgl64.Mat2
	motorMass float64
	limit     limitState

	// perpendicular and axial
	impulse      Vector
	motorImpulse float64
}

func NewLineJoint(a, b *Body, anchor, axis Vector) *Joint {
	joint := &LineJoint{
		AnchorA:   a.WorldToLocal(anchor),
		AnchorB:   b.WorldToLocal(anchor),
		LocalAxis: a.transform.VectT(axis.Normalize()),
	}
	joint.Joint = NewJoint(joint, a, b)
	return joint.Joint
}

func (joint *LineJoint) JointTranslation() float64 {
	a, b := joint.a, joint.b
	d := b.LocalToWorld(joint.AnchorB).Sub(a.LocalToWorld(joint.AnchorA))
	return d.Dot(a.transform.Vect(joint.LocalAxis))
}

func (joint *LineJoint) JointSpeed() float64 {
	f := newAxisFrame(joint.a, joint.b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)
	return f.d.Dot(f.axis.Perp().Mult(joint.a.w)) + f.axis.Dot(relative_velocity(joint.a, joint.b, f.r1, f.r2))
}

func (joint *LineJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *LineJoint) Limits() (lower, upper float64) {
	return joint.lowerTranslation, joint.upperTranslation
}

func (joint *LineJoint) EnableLimit(flag bool) {
	joint.ActivateBodies()
	joint.enableLimit = flag
}

func (joint *LineJoint) SetLimits(lower, upper float64) {
	assert(lower <= upper, "Lower limit is above the upper limit")
	joint.ActivateBodies()
	joint.lowerTranslation = lower
	joint.upperTranslation = upper
}

func (joint *LineJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *LineJoint) EnableMotor(flag bool) {
	joint.ActivateBodies()
	joint.enableMotor = flag
}

func (joint *LineJoint) SetMotorSpeed(speed float64) {
	joint.ActivateBodies()
	joint.motorSpeed = speed
}

func (joint *LineJoint) SetMaxMotorForce(force float64) {
	joint.ActivateBodies()
	joint.maxMotorForce = force
}

func (joint *LineJoint) MotorForce(inv_dt float64) float64 {
	return inv_dt * joint.motorImpulse
}

func line_mass(a, b *Body, f *axisFrame) mgl64.Mat2 {
	m1, m2 := a.m_inv, b.m_inv
	i1, i2 := a.i_inv, b.i_inv

	k11 := m1 + m2 + i1*f.s1*f.s1 + i2*f.s2*f.s2
	k12 := i1*f.s1*f.a1 + i2*f.s2*f.a2
	k22 := m1 + m2 + i1*f.a1*f.a1 + i2*f.a2*f.a2

	return newMat22(Vector{k11, k12}, Vector{k12, k22})
}

func (joint *LineJoint) PreSolve(step *TimeStep) {
	a := joint.a
	b := joint.b

	joint.frame = newAxisFrame(a, b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)
	f := &joint.frame

	joint.motorMass = f.axisMass(a, b)
	if joint.motorMass > Epsilon {
		joint.motorMass = 1.0 / joint.motorMass
	}
	joint.mass = line_mass(a, b, f)

	if joint.enableLimit {
		var reset bool
		joint.limit, reset = slideLimitState(f.axis.Dot(f.d), joint.lowerTranslation, joint.upperTranslation, joint.limit)
		if reset {
			joint.impulse.Y = 0
		}
	} else {
		joint.limit = LIMIT_INACTIVE
		joint.impulse.Y = 0
	}

	if !joint.enableMotor {
		joint.motorImpulse = 0
	}

	if step.WarmStarting {
		joint.impulse = joint.impulse.Mult(step.DtRatio)
		joint.motorImpulse *= step.DtRatio

		f.applyImpulses(a, b, joint.impulse.X, 0, joint.motorImpulse+joint.impulse.Y)
	} else {
		joint.impulse = Vector{}
		joint.motorImpulse = 0
	}
}

func (joint *LineJoint) SolveVelocity(step *TimeStep) {
	a := joint.a
	b := joint.b
	f := &joint.frame

	if joint.enableMotor && joint.limit != LIMIT_EQUAL {
		Cdot := f.axisSpeed(a, b)
		impulse := joint.motorMass * (joint.motorSpeed - Cdot)
		oldImpulse := joint.motorImpulse
		maxImpulse := step.Dt * joint.maxMotorForce
		joint.motorImpulse = Clamp(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		f.applyImpulses(a, b, 0, 0, impulse)
	}

	Cdot1 := f.perpSpeed(a, b)
	k11, k12 := joint.mass[0], joint.mass[1]

	if joint.enableLimit && joint.limit != LIMIT_INACTIVE {
		Cdot2 := f.axisSpeed(a, b)

		f1 := joint.impulse
		df := solve22(joint.mass, Vector{-Cdot1, -Cdot2})
		joint.impulse = joint.impulse.Add(df)

		switch joint.limit {
		case LIMIT_AT_LOWER:
			joint.impulse.Y = math.Max(joint.impulse.Y, 0)
		case LIMIT_AT_UPPER:
			joint.impulse.Y = math.Min(joint.impulse.Y, 0)
		}

		rhs := -Cdot1 - (joint.impulse.Y-f1.Y)*k12
		if k11 != 0 {
			joint.impulse.X = rhs/k11 + f1.X
		} else {
			joint.impulse.X = f1.X
		}

		df = joint.impulse.Sub(f1)
		f.applyImpulses(a, b, df.X, 0, df.Y)
	} else {
		df := 0.0
		if k11 != 0 {
			df = -Cdot1 / k11
		}
		joint.impulse.X += df

		f.applyImpulses(a, b, df, 0, 0)
	}
}

func (joint *LineJoint) SolvePosition(baumgarte float64) bool {
	a := joint.a
	b := joint.b

	f := newAxisFrame(a, b, joint.AnchorA, joint.AnchorB, joint.LocalAxis)

	C1 := f.perp.Dot(f.d)
	linearError := math.Abs(C1)

	var C2 float64
	active := false
	if joint.enableLimit {
		var violation float64
		C2, violation, active = slideLimitError(f.axis.Dot(f.d), joint.lowerTranslation, joint.upperTranslation)
		linearError = math.Max(linearError, violation)
	}

	k := line_mass(a, b, &f)
	if active {
		impulse := solve22(k, Vector{-C1, -C2})
		f.applyPositionImpulses(a, b, impulse.X, 0, impulse.Y)
	} else if k[0] != 0 {
		f.applyPositionImpulses(a, b, -C1/k[0], 0, 0)
	}

	return linearError <= LinearSlop
}

func (joint *LineJoint) ReactionForce(inv_dt float64) Vector {
	f := &joint.frame
	return f.perp.Mult(joint.impulse.X).Add(f.axis.Mult(joint.motorImpulse + joint.impulse.Y)).Mult(inv_dt)
}

func (joint *LineJoint) ReactionTorque(inv_dt float64) float64 {
	return 0
}
