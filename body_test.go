package b2d

import (
	"math"
	"testing"
)

func TestBodyMassData(t *testing.T) {
	world := newTestWorld()
	body := addBox(world, Vector{}, 1, 1)

	if !near(body.Mass(), 1, 1e-12) {
		t.Error("expected mass 1, got", body.Mass())
	}
	if !near(body.Moment(), 1.0/6.0, 1e-12) {
		t.Error("expected moment 1/6, got", body.Moment())
	}
}

func TestBodyOffsetCenter(t *testing.T) {
	world := newTestWorld()
	body := world.AddBody(NewBody())
	body.SetPosition(Vector{2, 0})
	world.AddShape(NewCircle(body, 1, Vector{1, 0}))

	if !body.LocalCenter().Near(Vector{1, 0}, 1e-12) {
		t.Error("expected local center 1,0 got", body.LocalCenter())
	}
	if !body.WorldCenter().Near(Vector{3, 0}, 1e-12) {
		t.Error("expected world center 3,0 got", body.WorldCenter())
	}
	// moment about the center of mass, not the origin
	if !near(body.Moment(), 0.5*math.Pi, 1e-9) {
		t.Error("expected moment pi/2, got", body.Moment())
	}
}

func TestBodyMasslessDefaults(t *testing.T) {
	world := newTestWorld()
	body := world.AddBody(NewBody())
	shape := world.AddShape(NewCircle(body, 1, Vector{}))
	shape.SetDensity(0)

	if body.Mass() != 1 || body.Moment() != 0 {
		t.Error("dynamic body without density gets unit mass and no rotation", body.Mass(), body.Moment())
	}

	static := world.AddBody(NewStaticBody())
	world.AddShape(NewBox(static, 1, 1))
	if static.Mass() != 0 || static.m_inv != 0 {
		t.Error("static bodies have infinite mass")
	}
}

func TestBodyFixedRotation(t *testing.T) {
	world := newTestWorld()
	body := addBox(world, Vector{}, 1, 1)
	body.SetFixedRotation(true)

	body.ApplyImpulseAtWorldPoint(Vector{0, 1}, Vector{0.5, 0})
	if body.AngularVelocity() != 0 {
		t.Error("fixed rotation body must not spin")
	}
}

func TestBodyImpulse(t *testing.T) {
	world := newTestWorld()
	body := addBox(world, Vector{}, 1, 1)

	body.ApplyImpulseAtWorldPoint(Vector{0, 1}, Vector{0.5, 0})
	if !body.Velocity().Near(Vector{0, 1}, 1e-12) {
		t.Error("expected velocity 0,1 got", body.Velocity())
	}
	// r x J = 0.5, w = 0.5 / (1/6)
	if !near(body.AngularVelocity(), 3, 1e-9) {
		t.Error("expected angular velocity 3, got", body.AngularVelocity())
	}
	if !body.VelocityAtWorldPoint(Vector{0.5, 0}).Near(Vector{0, 2.5}, 1e-9) {
		t.Error("unexpected point velocity", body.VelocityAtWorldPoint(Vector{0.5, 0}))
	}
}

func TestBodyFreeFall(t *testing.T) {
	world := newTestWorld()
	body := addBall(world, Vector{0, 100}, 0.5)

	stepN(world, 60)

	// semi-implicit Euler lands a little below the exact 95
	y := body.Position().Y
	if y > 95 || y < 94.8 {
		t.Error("unexpected free fall position", y)
	}
	if !near(body.Velocity().Y, -10, 1e-9) {
		t.Error("expected -10 m/s after a second, got", body.Velocity().Y)
	}
}

func TestBodySetTypeStatic(t *testing.T) {
	world := newTestWorld()
	body := addBox(world, Vector{0, 5}, 1, 1)
	body.SetVelocity(1, 1)
	body.SetType(BODY_STATIC)

	if !body.Velocity().Equal(Vector{}) {
		t.Error("static body keeps no velocity")
	}
	stepN(world, 10)
	if !body.Position().Near(Vector{0, 5}, 1e-12) {
		t.Error("static body moved", body.Position())
	}
}
