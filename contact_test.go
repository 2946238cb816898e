package b2d

import "testing"

func TestContact_Lifecycle(t *testing.T) {
	world := NewWorld(Vector{})
	a := addBall(world, Vector{0, 0}, 1)
	b := addBall(world, Vector{1.5, 0}, 1)

	began, separated := 0, 0
	handler := world.DefaultCollisionHandler()
	handler.BeginFunc = func(*Contact, *World, interface{}) bool {
		began++
		return true
	}
	handler.SeparateFunc = func(*Contact, *World, interface{}) {
		separated++
	}

	world.Step(testDt, 8, 3)
	if world.ContactCount() != 1 {
		t.Fatal("expected a contact, got", world.ContactCount())
	}
	contact := world.ContactManager().Contact(a.shapes[0], b.shapes[0])
	if contact == nil || !contact.IsTouching() {
		t.Fatal("expected a touching contact")
	}
	if began != 1 {
		t.Error("expected one begin, got", began)
	}

	b.SetPosition(Vector{10, 0})
	world.Step(testDt, 8, 3)
	if world.ContactCount() != 0 {
		t.Error("contact must be destroyed once the fat boxes stop overlapping")
	}
	if separated != 1 {
		t.Error("expected one separate, got", separated)
	}
	if len(a.contacts) != 0 || len(b.contacts) != 0 {
		t.Error("bodies still reference the contact")
	}
}

func TestContact_ImpulseCarryOver(t *testing.T) {
	world := newTestWorld()
	settings := world.Settings()
	settings.AllowSleep = false
	if err := world.SetSettings(settings); err != nil {
		t.Fatal(err)
	}
	addGround(world)
	addBox(world, Vector{0, 0.5}, 1, 1)
	stepN(world, 30)

	matched := 0
	world.DefaultCollisionHandler().PreSolveFunc = func(contact *Contact, old *Manifold, _ *World, _ interface{}) bool {
		manifold := contact.Manifold()
		for i := 0; i < manifold.PointCount; i++ {
			point := manifold.Points[i]
			for j := 0; j < old.PointCount; j++ {
				if old.Points[j].ID.Key() != point.ID.Key() {
					continue
				}
				if point.NormalImpulse != old.Points[j].NormalImpulse {
					t.Error("impulse not carried over", point.NormalImpulse, old.Points[j].NormalImpulse)
				}
				if point.NormalImpulse <= 0 {
					t.Error("resting contact should push, got", point.NormalImpulse)
				}
				matched++
			}
		}
		return true
	}
	world.Step(testDt, 8, 3)

	if matched != 2 {
		t.Error("expected both points to match, got", matched)
	}
}

func TestContact_PreSolveDisables(t *testing.T) {
	world := newTestWorld()
	addGround(world)
	box := addBox(world, Vector{0, 0.5}, 1, 1)

	world.DefaultCollisionHandler().PreSolveFunc = func(*Contact, *Manifold, *World, interface{}) bool {
		return false
	}
	stepN(world, 30)

	if box.Position().Y > 0 {
		t.Error("disabled contact should let the box fall, y =", box.Position().Y)
	}
}

func TestContact_JointFilter(t *testing.T) {
	world := NewWorld(Vector{})
	a := addBox(world, Vector{0, 0}, 1, 1)
	b := addBox(world, Vector{0.5, 0}, 1, 1)
	joint := world.AddJoint(NewRevoluteJoint(a, b, Vector{0.25, 0}))

	world.Step(testDt, 8, 3)
	if world.ContactCount() != 0 {
		t.Fatal("jointed bodies must not collide")
	}

	joint.SetCollideConnected(true)
	world.Step(testDt, 8, 3)
	if world.ContactCount() != 1 {
		t.Error("expected a contact once connected collision is enabled")
	}

	joint.SetCollideConnected(false)
	world.Step(testDt, 8, 3)
	if world.ContactCount() != 0 {
		t.Error("contact should be filtered out again")
	}
}

func TestContact_ShapeFilter(t *testing.T) {
	world := NewWorld(Vector{})
	a := addBall(world, Vector{0, 0}, 1)
	b := addBall(world, Vector{1, 0}, 1)
	a.shapes[0].SetFilter(NewShapeFilter(1, ALL_CATEGORIES, ALL_CATEGORIES))
	b.shapes[0].SetFilter(NewShapeFilter(1, ALL_CATEGORIES, ALL_CATEGORIES))

	world.Step(testDt, 8, 3)
	if world.ContactCount() != 0 {
		t.Error("shapes in the same group must not collide")
	}
}
