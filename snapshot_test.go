package b2d

import (
	"bytes"
	"testing"
)

func snapshotScene() *World {
	world := newTestWorld()
	ground := addGround(world)
	sleeper := addBox(world, Vector{-5, 0.5}, 1, 1)
	sleeper.shapes[0].SetFriction(0.6)

	ball := addBall(world, Vector{3, 4}, 0.5)
	ball.shapes[0].SetRestitution(0.5)
	ball.shapes[0].SetCollisionType(7)

	arm := addBox(world, Vector{1, 6}, 2, 0.2)
	hinge := world.AddJoint(NewRevoluteJoint(ground, arm, Vector{0, 6})).Class.(*RevoluteJoint)
	hinge.SetLimits(-1, 1)
	hinge.EnableLimit(true)
	world.AddJoint(NewDistanceJoint(arm, ball, Vector{2, 6}, Vector{3, 4}))
	return world
}

func TestSnapshot_RoundTrip(t *testing.T) {
	world := snapshotScene()
	stepN(world, 90)

	var buf bytes.Buffer
	if err := Capture(world).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	snapshot, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := snapshot.Restore()
	if err != nil {
		t.Fatal(err)
	}

	if restored.BodyCount() != world.BodyCount() || restored.JointCount() != world.JointCount() {
		t.Fatal("restored world has", restored.BodyCount(), "bodies and", restored.JointCount(), "joints")
	}
	if restored.Settings() != world.Settings() {
		t.Error("settings not restored")
	}

	for i, body := range world.bodies {
		other := restored.bodies[i]
		if other.Type() != body.Type() {
			t.Error("body", i, "type changed")
		}
		if !other.Position().Near(body.Position(), 1e-12) || !near(other.Angle(), body.Angle(), 1e-12) {
			t.Error("body", i, "moved from", body.Position(), "to", other.Position())
		}
		if !other.Velocity().Equal(body.Velocity()) || other.AngularVelocity() != body.AngularVelocity() {
			t.Error("body", i, "velocity not restored")
		}
		if other.IsSleeping() != body.IsSleeping() {
			t.Error("body", i, "sleep state not restored")
		}
		if !near(other.Mass(), body.Mass(), 1e-12) || !near(other.Moment(), body.Moment(), 1e-12) {
			t.Error("body", i, "mass data differs")
		}
		if len(other.shapes) != len(body.shapes) {
			t.Fatal("body", i, "lost shapes")
		}
		for j, shape := range body.shapes {
			restoredShape := other.shapes[j]
			if restoredShape.Friction() != shape.Friction() ||
				restoredShape.Restitution() != shape.Restitution() ||
				restoredShape.CollisionType() != shape.CollisionType() ||
				restoredShape.Filter() != shape.Filter() {
				t.Error("body", i, "shape", j, "material not restored")
			}
		}
	}

	for i, joint := range world.joints {
		other := restored.joints[i]
		if other.BodyA().index != joint.BodyA().index || other.BodyB().index != joint.BodyB().index {
			t.Error("joint", i, "connects the wrong bodies")
		}
	}
	hinge := restored.joints[0].Class.(*RevoluteJoint)
	if lower, upper := hinge.Limits(); !hinge.IsLimitEnabled() || lower != -1 || upper != 1 {
		t.Error("revolute limits not restored")
	}

	// the sleeping box stays asleep and the rest keeps going
	if !restored.bodies[1].IsSleeping() {
		t.Error("resting box should still be asleep")
	}
	stepN(restored, 10)
	if !restored.bodies[1].Position().Near(world.bodies[1].Position(), 1e-9) {
		t.Error("sleeping box moved after restore")
	}
}

func TestSnapshot_BadData(t *testing.T) {
	if _, err := DecodeSnapshot(bytes.NewReader([]byte{0xc1, 0x00})); err == nil {
		t.Error("expected a decode error")
	}

	snapshot := Capture(snapshotScene())
	snapshot.Joints[0].BodyB = 99
	if _, err := snapshot.Restore(); err == nil {
		t.Error("expected an error for a missing body")
	}

	snapshot = Capture(snapshotScene())
	snapshot.Joints[1].Kind = "rope"
	if _, err := snapshot.Restore(); err == nil {
		t.Error("expected an error for an unknown joint")
	}

	snapshot = Capture(snapshotScene())
	snapshot.Bodies[1].Shapes[0].Verts = snapshot.Bodies[1].Shapes[0].Verts[:2]
	if _, err := snapshot.Restore(); err == nil {
		t.Error("expected an error for a degenerate polygon")
	}

	snapshot = Capture(snapshotScene())
	snapshot.Settings.Hz = -1
	if _, err := snapshot.Restore(); err == nil {
		t.Error("expected an error for invalid settings")
	}
}

func TestSnapshot_GearedJoints(t *testing.T) {
	world := NewWorld(Vector{})
	ground := world.AddBody(NewStaticBody())
	pinion := addBall(world, Vector{}, 1)
	rack := addBox(world, Vector{0, -1.5}, 4, 0.2)
	axle := world.AddJoint(NewRevoluteJoint(ground, pinion, Vector{}))
	slider := world.AddJoint(NewPrismaticJoint(ground, rack, rack.Position(), Vector{1, 0}))
	slider.Class.(*PrismaticJoint).SetLimits(-2, 2)
	slider.Class.(*PrismaticJoint).EnableLimit(true)
	world.AddJoint(NewGearJoint(axle, slider, 1))
	pinion.SetAngularVelocity(1)

	light := addBox(world, Vector{-4, 5}, 1, 1)
	heavy := addBox(world, Vector{4, 5}, 1, 2)
	world.AddJoint(NewPulleyJoint(light, heavy, Vector{-4, 10}, Vector{4, 10}, light.Position(), heavy.Position(), 2))
	wheel := addBall(world, Vector{8, 0}, 0.5)
	world.AddJoint(NewLineJoint(ground, wheel, wheel.Position(), Vector{0, 1}))

	stepN(world, 30)

	var buf bytes.Buffer
	if err := Capture(world).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	snapshot, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := snapshot.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if restored.JointCount() != world.JointCount() {
		t.Fatal("restored", restored.JointCount(), "of", world.JointCount(), "joints")
	}

	kinds := map[JointKind]int{}
	for _, js := range Capture(restored).Joints {
		kinds[js.Kind]++
	}
	for _, kind := range []JointKind{JOINT_REVOLUTE, JOINT_PRISMATIC, JOINT_GEAR, JOINT_PULLEY, JOINT_LINE} {
		if kinds[kind] != 1 {
			t.Error("expected one", kind, "joint, got", kinds[kind])
		}
	}

	stepN(world, 30)
	stepN(restored, 30)
	// warm start impulses are not stored
	for i, body := range world.bodies {
		if !restored.bodies[i].Position().Near(body.Position(), 0.01) {
			t.Error("body", i, "diverged after restore", body.Position(), restored.bodies[i].Position())
		}
	}

	snapshot = Capture(world)
	for i := range snapshot.Joints {
		if snapshot.Joints[i].Kind == JOINT_GEAR {
			snapshot.Joints[i].JointB = 42
		}
	}
	if _, err := snapshot.Restore(); err == nil {
		t.Error("expected an error for a gear on a missing joint")
	}
}
