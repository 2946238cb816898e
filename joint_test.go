package b2d

import (
	"math"
	"testing"
)

func TestDistanceJoint_Chain(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	ground.SetPosition(Vector{0, 10})

	var joints []*DistanceJoint
	prev := ground
	var last *Body
	for i := 1; i <= 10; i++ {
		body := addBall(world, Vector{0, 10 - float64(i)}, 0.1)
		body.SetLinearDamping(1)
		joint := world.AddJoint(NewDistanceJoint(prev, body, prev.Position(), body.Position()))
		joints = append(joints, joint.Class.(*DistanceJoint))
		prev = body
		last = body
	}
	last.SetVelocity(1, 0)

	stepN(world, 1200)

	world.EachBody(func(body *Body) {
		if body.Velocity().Length() > 0.05 {
			t.Error("chain still moving", body, body.Velocity())
		}
	})
	for i, joint := range joints {
		if math.Abs(joint.Error()) >= LinearSlop {
			t.Error("link", i, "stretched by", joint.Error())
		}
	}
}

func TestDistanceJoint_Spring(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	body := addBall(world, Vector{2, 0}, 0.25)
	joint := world.AddJoint(NewDistanceJoint(ground, body, Vector{}, Vector{2, 0})).Class.(*DistanceJoint)
	joint.FrequencyHz = 2
	joint.DampingRatio = 0.5

	body.SetPosition(Vector{3, 0})
	stepN(world, 300)

	if !near(body.Position().X, 2, 0.01) {
		t.Error("spring should settle at its rest length, x =", body.Position().X)
	}
}

func TestRevoluteJoint_Pendulum(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	ground.SetPosition(Vector{0, 10})
	bob := addBox(world, Vector{2, 10}, 0.5, 0.5)
	joint := world.AddJoint(NewRevoluteJoint(ground, bob, Vector{0, 10})).Class.(*RevoluteJoint)

	lowest := bob.Position().Y
	for i := 0; i < 120; i++ {
		world.Step(testDt, 8, 3)
		lowest = math.Min(lowest, bob.Position().Y)
		pA := ground.LocalToWorld(joint.AnchorA)
		pB := bob.LocalToWorld(joint.AnchorB)
		if pA.Distance(pB) > 0.02 {
			t.Fatal("pivot separated by", pA.Distance(pB), "at step", i)
		}
	}
	if lowest > 8.1 {
		t.Error("pendulum should swing through the bottom, lowest y =", lowest)
	}
}

func TestRevoluteJoint_Limit(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	bob := addBox(world, Vector{2, 0}, 0.5, 0.5)
	joint := world.AddJoint(NewRevoluteJoint(ground, bob, Vector{})).Class.(*RevoluteJoint)
	joint.SetLimits(-math.Pi/4, math.Pi/4)
	joint.EnableLimit(true)

	for i := 0; i < 120; i++ {
		world.Step(testDt, 8, 3)
		if joint.JointAngle() < -math.Pi/4-2*AngularSlop {
			t.Fatal("limit exceeded", joint.JointAngle(), "at step", i)
		}
	}
	if !near(joint.JointAngle(), -math.Pi/4, 2*AngularSlop) {
		t.Error("pendulum should rest on its lower limit, angle =", joint.JointAngle())
	}
}

func TestRevoluteJoint_Motor(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	wheel := addBall(world, Vector{}, 1)
	joint := world.AddJoint(NewRevoluteJoint(ground, wheel, Vector{})).Class.(*RevoluteJoint)
	joint.SetMaxMotorTorque(1000)
	joint.SetMotorSpeed(2)
	joint.EnableMotor(true)

	stepN(world, 60)

	if !near(wheel.AngularVelocity(), 2, 1e-6) {
		t.Error("expected the motor speed, got", wheel.AngularVelocity())
	}
	if joint.MotorTorque(1/testDt) > 1000+1e-9 {
		t.Error("motor torque above its maximum", joint.MotorTorque(1/testDt))
	}
}

func TestWeldJoint(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	box := addBox(world, Vector{1, 0}, 1, 0.5)
	world.AddJoint(NewWeldJoint(ground, box, Vector{0.5, 0}))

	stepN(world, 120)

	if !box.Position().Near(Vector{1, 0}, 0.02) {
		t.Error("welded box sagged to", box.Position())
	}
	if math.Abs(box.Angle()) > 2*AngularSlop {
		t.Error("welded box rotated by", box.Angle())
	}
}

func TestFrictionJoint(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	box := addBox(world, Vector{}, 1, 1)
	world.AddJoint(NewFrictionJoint(ground, box, Vector{}, 10, 10))
	box.SetVelocity(5, 0)

	// a unit mass decelerates at 10 m/s^2
	stepN(world, 15)
	if !near(box.Velocity().X, 2.5, 1e-6) {
		t.Error("expected 2.5 m/s, got", box.Velocity().X)
	}

	stepN(world, 30)
	if box.Velocity().Length() > 1e-9 {
		t.Error("friction should stop the box, got", box.Velocity())
	}
}

func TestMouseJoint(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	box := addBox(world, Vector{}, 1, 1)
	joint := world.AddJoint(NewMouseJoint(ground, box, Vector{}, 1000)).Class.(*MouseJoint)
	joint.SetTarget(Vector{2, 1})

	stepN(world, 120)

	if !box.Position().Near(Vector{2, 1}, 0.05) {
		t.Error("box should follow the target, got", box.Position())
	}
}

func TestJointRemove(t *testing.T) {
	world := newTestWorld()
	a := addBox(world, Vector{}, 1, 1)
	b := addBox(world, Vector{2, 0}, 1, 1)
	joint := world.AddJoint(NewDistanceJoint(a, b, a.Position(), b.Position()))

	if world.JointCount() != 1 || len(a.joints) != 1 || len(b.joints) != 1 {
		t.Fatal("joint not registered")
	}

	world.RemoveJoint(joint)
	if world.JointCount() != 0 || len(a.joints) != 0 || len(b.joints) != 0 {
		t.Error("joint not removed")
	}
	if joint.World() != nil {
		t.Error("removed joint still points at the world")
	}

	world.AddJoint(NewDistanceJoint(a, b, a.Position(), b.Position()))
	world.RemoveBody(b)
	if world.JointCount() != 0 || len(a.joints) != 0 {
		t.Error("removing a body must remove its joints")
	}
}

func TestPrismaticJoint_Limit(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	box := addBox(world, Vector{}, 0.5, 0.5)
	axis := Vector{1, 1}.Normalize()
	joint := world.AddJoint(NewPrismaticJoint(ground, box, Vector{}, axis)).Class.(*PrismaticJoint)
	joint.SetLimits(-1, 1)
	joint.EnableLimit(true)

	for i := 0; i < 180; i++ {
		world.Step(testDt, 8, 3)
		if off := math.Abs(box.Position().Cross(axis)); off > 0.01 {
			t.Fatal("box left the axis by", off, "at step", i)
		}
		if math.Abs(box.Angle()) > 0.01 {
			t.Fatal("box rotated to", box.Angle(), "at step", i)
		}
		if joint.JointTranslation() < -1.1 {
			t.Fatal("limit exceeded", joint.JointTranslation(), "at step", i)
		}
	}
	if !near(joint.JointTranslation(), -1, 2*LinearSlop) {
		t.Error("box should rest on its lower limit, translation =", joint.JointTranslation())
	}
}

func TestPrismaticJoint_Motor(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	box := addBox(world, Vector{}, 1, 1)
	joint := world.AddJoint(NewPrismaticJoint(ground, box, Vector{}, Vector{1, 0})).Class.(*PrismaticJoint)
	joint.SetMaxMotorForce(1000)
	joint.SetMotorSpeed(2)
	joint.EnableMotor(true)

	stepN(world, 30)
	if !box.Velocity().Near(Vector{2, 0}, 1e-6) {
		t.Error("expected the motor speed, got", box.Velocity())
	}
	if !near(joint.JointSpeed(), 2, 1e-6) {
		t.Error("joint speed", joint.JointSpeed())
	}

	// a weak motor pushes a unit mass with at most its max force
	box.SetVelocity(0, 0)
	joint.SetMaxMotorForce(1)
	stepN(world, 60)
	if !near(box.Velocity().X, 1, 1e-6) {
		t.Error("expected 1 m/s after a second at 1 N, got", box.Velocity().X)
	}
	if joint.MotorForce(1/testDt) > 1+1e-9 {
		t.Error("motor force above its maximum", joint.MotorForce(1/testDt))
	}
}

func TestLineJoint(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	wheel := addBall(world, Vector{}, 0.5)
	joint := world.AddJoint(NewLineJoint(ground, wheel, Vector{}, Vector{1, 0})).Class.(*LineJoint)
	joint.SetLimits(-1, 1)
	joint.EnableLimit(true)
	wheel.SetVelocity(2, 0)
	wheel.SetAngularVelocity(3)

	stepN(world, 120)

	if !near(wheel.Position().Y, 0, 0.01) {
		t.Error("wheel fell off the line, y =", wheel.Position().Y)
	}
	if !near(wheel.AngularVelocity(), 3, 1e-9) {
		t.Error("the line should leave rotation free, w =", wheel.AngularVelocity())
	}
	if !near(joint.JointTranslation(), 1, 2*LinearSlop) {
		t.Error("wheel should stop at the upper limit, translation =", joint.JointTranslation())
	}
}

func TestGearJoint_Wheels(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	big := addBall(world, Vector{-3, 0}, 1)
	small := addBall(world, Vector{3, 0}, 0.5)
	axle1 := world.AddJoint(NewRevoluteJoint(ground, big, big.Position()))
	axle2 := world.AddJoint(NewRevoluteJoint(ground, small, small.Position()))
	gear := world.AddJoint(NewGearJoint(axle1, axle2, 2))

	driver := axle1.Class.(*RevoluteJoint)
	driver.SetMaxMotorTorque(1000)
	driver.SetMotorSpeed(1)
	driver.EnableMotor(true)

	stepN(world, 60)

	angle1 := axle1.Class.(*RevoluteJoint).JointAngle()
	angle2 := axle2.Class.(*RevoluteJoint).JointAngle()
	if !near(angle1+2*angle2, 0, 0.01) {
		t.Error("gear slipped, angles", angle1, angle2)
	}
	if !near(angle1, 1, 0.05) {
		t.Error("driver should turn about a radian, got", angle1)
	}
	if !near(small.AngularVelocity(), -0.5*big.AngularVelocity(), 1e-3) {
		t.Error("expected half the speed in reverse, got", small.AngularVelocity(), big.AngularVelocity())
	}

	// the gear goes with the joint it is built on
	world.RemoveJoint(axle2)
	if world.JointCount() != 1 || gear.World() != nil {
		t.Error("gear should be removed with its joint, joints left:", world.JointCount())
	}
	if len(big.joints) != 1 || len(small.joints) != 0 {
		t.Error("gear still attached to its bodies")
	}
}

func TestGearJoint_RackAndPinion(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	pinion := addBall(world, Vector{}, 1)
	rack := addBox(world, Vector{0, -1.5}, 4, 0.2)
	axle := world.AddJoint(NewRevoluteJoint(ground, pinion, Vector{}))
	slider := world.AddJoint(NewPrismaticJoint(ground, rack, rack.Position(), Vector{1, 0}))
	world.AddJoint(NewGearJoint(axle, slider, 1))

	driver := axle.Class.(*RevoluteJoint)
	driver.SetMaxMotorTorque(1000)
	driver.SetMotorSpeed(1)
	driver.EnableMotor(true)

	stepN(world, 60)

	angle := driver.JointAngle()
	translation := slider.Class.(*PrismaticJoint).JointTranslation()
	if !near(angle+translation, 0, 0.01) {
		t.Error("rack and pinion out of step", angle, translation)
	}
	if !near(rack.Velocity().X, -pinion.AngularVelocity(), 0.01) {
		t.Error("rack should move at the pinion speed, got", rack.Velocity().X)
	}
	if !near(rack.Position().Y, -1.5, 0.01) || math.Abs(rack.Angle()) > 0.01 {
		t.Error("rack left its slider", rack.Position(), rack.Angle())
	}
}

func TestPulleyJoint(t *testing.T) {
	world := newTestWorld()
	light := addBox(world, Vector{-2, 5}, 1, 1)
	heavy := addBox(world, Vector{2, 5}, 1, 2)
	joint := world.AddJoint(NewPulleyJoint(light, heavy,
		Vector{-2, 10}, Vector{2, 10}, light.Position(), heavy.Position(), 1)).Class.(*PulleyJoint)

	for i := 0; i < 60; i++ {
		world.Step(testDt, 8, 3)
		if total := joint.LengthA() + joint.LengthB(); total > joint.Constant()+0.01 {
			t.Fatal("rope stretched to", total, "at step", i)
		}
	}
	if light.Position().Y < 5.5 || heavy.Position().Y > 4.5 {
		t.Error("heavy side should pull the light side up", light.Position(), heavy.Position())
	}

	stepN(world, 180)

	_, maxB := joint.MaxLengths()
	if !near(joint.LengthB(), maxB, 2*LinearSlop) {
		t.Error("heavy side should hang at its max length", joint.LengthB(), maxB)
	}
	if !near(joint.LengthA()+joint.LengthB(), joint.Constant(), 2*LinearSlop) {
		t.Error("rope should stay taut", joint.LengthA()+joint.LengthB())
	}
}
