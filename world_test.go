package b2d

import (
	"math"
	"testing"
)

func TestWorld_BoxComesToRest(t *testing.T) {
	world := newTestWorld()
	addGround(world)
	box := addBox(world, Vector{0, 5}, 1, 1)

	stepN(world, 300)

	y := box.Position().Y
	if y < 0.5-LinearSlop || y > 0.5+1e-9 {
		t.Error("box should rest on the ground, y =", y)
	}
	if !box.IsSleeping() {
		t.Error("resting box should be asleep")
	}
}

func TestWorld_ElasticCollision(t *testing.T) {
	world := NewWorld(Vector{})
	a := addBall(world, Vector{-2.05, 0}, 1)
	b := addBall(world, Vector{2.05, 0}, 1)
	a.shapes[0].SetRestitution(1)
	b.shapes[0].SetRestitution(1)
	a.SetVelocity(5, 0)
	b.SetVelocity(-5, 0)

	stepN(world, 30)

	if !near(a.Velocity().X, -5, 1e-6) || !near(b.Velocity().X, 5, 1e-6) {
		t.Error("equal masses should exchange velocities, got", a.Velocity(), b.Velocity())
	}
	if !near(a.Velocity().Y, 0, 1e-9) || !near(b.Velocity().Y, 0, 1e-9) {
		t.Error("head on collision picked up a vertical velocity")
	}
}

func TestWorld_WarmStartedRestingBox(t *testing.T) {
	world := newTestWorld()
	settings := world.Settings()
	settings.AllowSleep = false
	if err := world.SetSettings(settings); err != nil {
		t.Fatal(err)
	}
	addGround(world)
	box := addBox(world, Vector{0, 0.5}, 1, 1)
	stepN(world, 60)

	position := box.Position()
	for i := 0; i < 100; i++ {
		world.Step(testDt, 8, 3)
		if box.Velocity().Length() > 0.01 {
			t.Fatal("resting box is jittering", box.Velocity(), "at step", i)
		}
	}
	if !box.Position().Near(position, 1e-3) {
		t.Error("resting box drifted from", position, "to", box.Position())
	}
	if math.Abs(box.Angle()) > 1e-3 {
		t.Error("resting box tilted", box.Angle())
	}
}

func TestWorld_StackPenetration(t *testing.T) {
	world := newTestWorld()
	settings := world.Settings()
	settings.AllowSleep = false
	if err := world.SetSettings(settings); err != nil {
		t.Fatal(err)
	}
	addGround(world)
	for i := 0; i < 3; i++ {
		addBox(world, Vector{0, 0.5 + float64(i)}, 1, 1)
	}
	stepN(world, 30)

	for i := 0; i < 60; i++ {
		world.Step(testDt, 8, 3)
		world.EachContact(func(contact *Contact) {
			if !contact.IsTouching() {
				return
			}
			wm := contact.WorldManifold()
			for j := 0; j < contact.Manifold().PointCount; j++ {
				if wm.Separations[j] < -LinearSlop-1e-9 {
					t.Error("contact point overlaps by", -wm.Separations[j], "at step", i)
				}
			}
		})
	}
}

func TestWorld_IslandSleepsTogether(t *testing.T) {
	world := newTestWorld()
	addGround(world)

	base := addBox(world, Vector{0, 0.5}, 1, 1)
	wheel := addBall(world, Vector{0, 1.5}, 0.4)
	world.AddJoint(NewRevoluteJoint(base, wheel, Vector{0, 1.5}))
	wheel.SetAngularVelocity(5)

	loner := addBox(world, Vector{5, 0.5}, 1, 1)

	stepN(world, 120)

	if base.IdleTime() < TimeToSleep {
		t.Error("base should be idle, idle time", base.IdleTime())
	}
	if base.IsSleeping() || wheel.IsSleeping() {
		t.Error("a spinning wheel keeps its whole island awake")
	}
	if !loner.IsSleeping() {
		t.Error("idle box on its own should sleep")
	}
}

func TestWorld_LargeIsland(t *testing.T) {
	world := newTestWorld()
	ground := world.AddBody(NewStaticBody())
	ground.SetPosition(Vector{0, -0.5})
	world.AddShape(NewBox(ground, 400, 1))

	const count = 300
	for i := 0; i < count; i++ {
		addBox(world, Vector{float64(i) - count/2, 0.5}, 1, 1)
	}
	world.Step(testDt, 8, 3)

	for _, body := range world.bodies {
		body.island = false
	}
	for _, contact := range world.contactManager.contacts {
		contact.island = false
	}
	islands := world.buildIslands()
	if len(islands) != 1 {
		t.Fatal("expected one island, got", len(islands))
	}
	if islands[0].BodyCount() != count+1 {
		t.Error("expected every box and the ground in the island, got", islands[0].BodyCount())
	}
}

func buildStacks(workers int) *World {
	settings := DefaultSettings()
	settings.Workers = workers
	world := NewWorldWithSettings(settings)
	for s := 0; s < 4; s++ {
		x := float64(s) * 10
		ground := world.AddBody(NewStaticBody())
		ground.SetPosition(Vector{x, -0.5})
		world.AddShape(NewBox(ground, 5, 1))
		for i := 0; i < 5; i++ {
			box := addBox(world, Vector{x + 0.1*float64(i), 0.5 + 1.05*float64(i)}, 1, 1)
			box.SetAngle(0.05 * float64(i))
		}
	}
	return world
}

func TestWorld_ParallelIslandsMatchSequential(t *testing.T) {
	sequential := buildStacks(1)
	parallel := buildStacks(4)

	for i := 0; i < 120; i++ {
		sequential.Step(testDt, 8, 3)
		parallel.Step(testDt, 8, 3)
	}

	for i, body := range sequential.bodies {
		other := parallel.bodies[i]
		if !body.Position().Equal(other.Position()) || body.Angle() != other.Angle() {
			t.Error("body", i, "diverged:", body.Position(), other.Position())
		}
		if !body.Velocity().Equal(other.Velocity()) || body.AngularVelocity() != other.AngularVelocity() {
			t.Error("body", i, "velocity diverged")
		}
	}
}

func TestWorld_ContinuousCollision(t *testing.T) {
	world := NewWorld(Vector{})
	wall := world.AddBody(NewStaticBody())
	world.AddShape(NewBox(wall, 0.1, 10))

	bullet := addBall(world, Vector{-7.5, 0}, 0.1)
	bullet.SetVelocity(300, 0)

	stepN(world, 10)

	if bullet.Position().X >= 0 {
		t.Error("fast body tunneled through the wall, x =", bullet.Position().X)
	}
}

func TestWorld_ContinuousCollisionSpinningBox(t *testing.T) {
	for _, tc := range []struct {
		spin, speed float64
	}{
		{0, 30},
		{20, 30},
		{20, 60},
		{5, 90},
		{-20, 60},
	} {
		world := NewWorld(Vector{})
		wall := world.AddBody(NewStaticBody())
		world.AddShape(NewBox(wall, 0.1, 20))

		box := addBox(world, Vector{-3, 0}, 0.2, 0.2)
		box.SetVelocity(tc.speed, 0)
		box.SetAngularVelocity(tc.spin)

		for i := 0; i < 30; i++ {
			world.Step(testDt, 8, 3)
			if x := box.Position().X; x >= -0.05 {
				t.Fatalf("spin %v speed %v: box went into the wall at step %v, x = %v", tc.spin, tc.speed, i, x)
			}
		}
	}
}

func TestWorld_ContinuousCollisionDisabled(t *testing.T) {
	settings := DefaultSettings()
	settings.Gravity = Vector{}
	settings.ContinuousPhysics = false
	world := NewWorldWithSettings(settings)
	wall := world.AddBody(NewStaticBody())
	world.AddShape(NewBox(wall, 0.1, 10))

	bullet := addBall(world, Vector{-7.5, 0}, 0.1)
	bullet.SetVelocity(300, 0)

	stepN(world, 10)

	if bullet.Position().X <= 0 {
		t.Error("without continuous physics the body should pass the wall, x =", bullet.Position().X)
	}
}

func TestWorld_Queries(t *testing.T) {
	world := newTestWorld()
	addGround(world)
	ball := addBall(world, Vector{0, 5}, 1)
	box := addBox(world, Vector{5, 5}, 1, 1)

	var found []*Shape
	world.QueryPoint(Vector{0, 5.5}, func(shape *Shape) bool {
		found = append(found, shape)
		return true
	})
	if len(found) != 1 || found[0].Body() != ball {
		t.Error("point query should find the ball, got", found)
	}

	found = found[:0]
	world.QueryAABB(NewBB(-10, 4, 10, 6), func(shape *Shape) bool {
		found = append(found, shape)
		return true
	})
	if len(found) != 2 {
		t.Error("box query should find the ball and the box, got", len(found))
	}

	info, ok := world.RayCastClosest(Vector{-10, 5}, Vector{10, 5})
	if !ok || info.Shape.Body() != ball {
		t.Fatal("ray should hit the ball first")
	}
	if !near(info.Fraction, 0.45, 1e-9) || !info.Normal.Near(Vector{-1, 0}, 1e-9) {
		t.Error("unexpected ray hit", info)
	}

	hits := 0
	world.RayCast(Vector{-10, 5}, Vector{10, 5}, func(info RayCastInfo) float64 {
		hits++
		return 1
	})
	if hits != 2 {
		t.Error("unclipped ray should report both shapes, got", hits)
	}

	if _, ok := world.RayCastClosest(Vector{-10, 20}, Vector{10, 20}); ok {
		t.Error("ray above everything hit", box)
	}
}

func TestWorld_PostStepCallback(t *testing.T) {
	world := newTestWorld()
	addGround(world)
	box := addBox(world, Vector{0, 0.5}, 1, 1)

	scheduled := 0
	world.DefaultCollisionHandler().BeginFunc = func(contact *Contact, world *World, _ interface{}) bool {
		remove := func(world *World, key, _ interface{}) {
			world.RemoveBody(key.(*Body))
		}
		if world.AddPostStepCallback(remove, box, nil) {
			scheduled++
		}
		if world.AddPostStepCallback(remove, box, nil) {
			t.Error("a second callback with the same key must be dropped")
		}
		return true
	}

	world.Step(testDt, 8, 3)

	if scheduled != 1 {
		t.Error("expected one scheduled callback, got", scheduled)
	}
	if box.World() != nil || world.BodyCount() != 1 {
		t.Error("box should be removed after the step")
	}
	if world.ContactCount() != 0 {
		t.Error("removed body left contacts behind")
	}

	ran := false
	world.AddPostStepCallback(func(*World, interface{}, interface{}) { ran = true }, "now", nil)
	if !ran {
		t.Error("callbacks outside of a step run right away")
	}
}

func TestWorld_Sensor(t *testing.T) {
	world := newTestWorld()
	zone := world.AddBody(NewStaticBody())
	zone.SetPosition(Vector{0, 2})
	sensor := world.AddShape(NewBox(zone, 4, 1))
	sensor.SetSensor(true)
	ball := addBall(world, Vector{0, 4}, 0.25)

	began, separated := 0, 0
	handler := world.DefaultCollisionHandler()
	handler.BeginFunc = func(contact *Contact, _ *World, _ interface{}) bool {
		if !contact.IsSensor() {
			t.Error("expected a sensor contact")
		}
		began++
		return true
	}
	handler.SeparateFunc = func(*Contact, *World, interface{}) {
		separated++
	}

	stepN(world, 90)

	if began != 1 || separated != 1 {
		t.Error("ball should pass through the sensor once, got", began, separated)
	}
	if ball.Position().Y > 1 {
		t.Error("sensor must not stop the ball, y =", ball.Position().Y)
	}
}

func TestWorld_KinematicBody(t *testing.T) {
	world := newTestWorld()
	platform := world.AddBody(NewKinematicBody())
	world.AddShape(NewBox(platform, 2, 0.2))
	platform.SetVelocity(1, 0)

	stepN(world, 60)

	if !platform.Position().Near(Vector{1, 0}, 1e-9) {
		t.Error("kinematic body should move by its velocity only, got", platform.Position())
	}
	if platform.Mass() != 0 {
		t.Error("kinematic bodies have infinite mass")
	}
}

func TestWorld_SlowKinematicBodyNeverSleeps(t *testing.T) {
	world := newTestWorld()
	platform := world.AddBody(NewKinematicBody())
	world.AddShape(NewBox(platform, 2, 0.2))
	platform.SetVelocity(0.005, 0)

	stepN(world, 120)

	if platform.IsSleeping() {
		t.Error("kinematic body fell asleep")
	}
	if !platform.Velocity().Equal(Vector{0.005, 0}) {
		t.Error("kinematic body lost its velocity", platform.Velocity())
	}
	if !near(platform.Position().X, 0.01, 1e-9) {
		t.Error("kinematic body stopped at", platform.Position())
	}

	platform.Sleep()
	if platform.IsSleeping() {
		t.Error("kinematic bodies can't be put to sleep")
	}
}

func TestWorld_RestingOnStillKinematicBody(t *testing.T) {
	world := newTestWorld()
	platform := world.AddBody(NewKinematicBody())
	world.AddShape(NewBox(platform, 4, 0.2))
	box := addBox(world, Vector{0, 0.6}, 1, 1)

	stepN(world, 180)

	if !box.IsSleeping() {
		t.Error("box on a still platform should sleep")
	}
	if platform.IsSleeping() {
		t.Error("platform should stay awake")
	}

	// moving the platform wakes the box again
	platform.SetVelocity(1, 0)
	stepN(world, 30)
	if box.IsSleeping() {
		t.Error("box should ride the moving platform")
	}
	if box.Position().X <= 0.1 {
		t.Error("box should be carried along, x =", box.Position().X)
	}
}

func TestWorld_RemoveShape(t *testing.T) {
	world := newTestWorld()
	addGround(world)
	box := addBox(world, Vector{0, 0.5}, 1, 1)
	extra := world.AddShape(NewCircle(box, 0.5, Vector{0, 1}))
	stepN(world, 10)

	mass := box.Mass()
	world.RemoveShape(extra)
	if box.Mass() >= mass {
		t.Error("mass should drop with the shape")
	}
	if extra.World() != nil || len(box.shapes) != 1 {
		t.Error("shape not detached")
	}
	if box.IsSleeping() {
		t.Error("removing a shape wakes the body")
	}
}

func TestWorld_SetSettingsRejectsInvalid(t *testing.T) {
	world := newTestWorld()
	settings := world.Settings()
	settings.VelocityIterations = 0
	if err := world.SetSettings(settings); err == nil {
		t.Error("expected an error")
	}
	if world.Settings().VelocityIterations != 8 {
		t.Error("invalid settings must not be applied")
	}
}

func TestWorld_RestitutionThreshold(t *testing.T) {
	for _, tc := range []struct {
		speed, rebound float64
	}{
		{0.5, 0},
		{0.9 * VelocityThreshold, 0},
		{5, 5},
	} {
		world := NewWorld(Vector{})
		addGround(world)
		ball := addBall(world, Vector{0, 1}, 0.5)
		ball.shapes[0].SetRestitution(1)
		ball.SetVelocity(0, -tc.speed)

		stepN(world, 90)

		if v := ball.Velocity(); !near(v.Y, tc.rebound, 1e-6) || !near(v.X, 0, 1e-9) {
			t.Errorf("hitting the ground at %v should leave %v, got %v", tc.speed, tc.rebound, v)
		}
	}
}

func TestWorld_WarmStartingDisabled(t *testing.T) {
	settings := DefaultSettings()
	settings.WarmStarting = false
	settings.AllowSleep = false
	world := NewWorldWithSettings(settings)
	addGround(world)
	var boxes []*Body
	for i := 0; i < 3; i++ {
		boxes = append(boxes, addBox(world, Vector{0, 0.5 + float64(i)}, 1, 1))
	}
	stepN(world, 120)

	for i, box := range boxes {
		expected := 0.5 + float64(i)
		if y := box.Position().Y; !near(y, expected, 4*LinearSlop) {
			t.Error("box", i, "should still be stacked at", expected, "got", y)
		}
	}

	contacts := boxes[0].contacts[:1]
	for _, warm := range []bool{true, false} {
		step := &TimeStep{Dt: testDt, InvDt: 60, DtRatio: 1, WarmStarting: warm}
		solver := NewContactSolver(step, contacts)
		impulse := solver.constraints[0].points[0].normalImpulse
		if warm && impulse <= 0 {
			t.Error("warm starting should seed the carried impulse")
		}
		if !warm && impulse != 0 {
			t.Error("cold start should begin from zero, got", impulse)
		}
	}
}

func TestWorld_PositionCorrectionDisabled(t *testing.T) {
	for _, correct := range []bool{true, false} {
		settings := DefaultSettings()
		settings.Gravity = Vector{}
		settings.AllowSleep = false
		settings.PositionCorrection = correct
		world := NewWorldWithSettings(settings)
		addGround(world)
		box := addBox(world, Vector{0, 0.3}, 1, 1)

		stepN(world, 60)

		y := box.Position().Y
		if correct && y < 0.5-2*LinearSlop {
			t.Error("overlap should be pushed out, y =", y)
		}
		if !correct && y != 0.3 {
			t.Error("without position correction the overlap stays, y =", y)
		}
	}
}
