package b2d

import (
	"math"
	"testing"
)

func TestShapeCircleMass(t *testing.T) {
	circle := NewCircle(NewBody(), 2, Vector{})

	if circle.Mass() != 4*math.Pi {
		t.Fail()
	}

	circle.SetDensity(0.5)
	if circle.Mass() != 2*math.Pi {
		t.Fail()
	}
}

func TestShapeBoxMass(t *testing.T) {
	box := NewBox(NewBody(), 2, 3)
	info := box.MassInfo()

	if !near(info.area, 6, 1e-12) || !near(info.m, 6, 1e-12) {
		t.Error("expected area and mass of 6, got", info.area, info.m)
	}
	if !near(info.i, 6*(4+9)/12.0, 1e-12) {
		t.Error("unexpected moment", info.i)
	}
	if !info.cog.Near(Vector{}, 1e-12) {
		t.Error("expected centered box, got", info.cog)
	}
}

func TestShapeTestPoint(t *testing.T) {
	body := NewBody()
	body.SetTransform(Vector{5, 0}, math.Pi/4)
	box := NewBox(body, 2, 2)

	if !box.TestPoint(Vector{5, 1.3}) {
		t.Error("point inside the rotated box")
	}
	if box.TestPoint(Vector{6, 1}) {
		t.Error("point outside the rotated box")
	}

	circle := NewCircle(body, 1, Vector{1, 0})
	if !circle.TestPoint(body.LocalToWorld(Vector{1.5, 0})) {
		t.Error("point inside the offset circle")
	}
}

func TestShapeRayCast(t *testing.T) {
	box := NewBox(NewStaticBody(), 2, 2)
	var info RayCastInfo
	if !box.RayCast(Vector{-5, 0}, Vector{5, 0}, 1, &info) {
		t.Fatal("expected a hit")
	}
	if !near(info.Fraction, 0.4, 1e-12) || !info.Normal.Near(Vector{-1, 0}, 1e-12) || info.Shape != box {
		t.Error("unexpected hit", info)
	}

	circle := NewCircle(NewStaticBody(), 1, Vector{})
	if !circle.RayCast(Vector{0, 5}, Vector{0, -5}, 1, &info) {
		t.Fatal("expected a hit")
	}
	if !near(info.Fraction, 0.4, 1e-12) || !info.Normal.Near(Vector{0, 1}, 1e-12) {
		t.Error("unexpected hit", info)
	}
	if circle.RayCast(Vector{2, 5}, Vector{2, -5}, 1, &info) {
		t.Error("ray passes beside the circle")
	}
}

func TestShapeFilterReject(t *testing.T) {
	a := NewShapeFilter(NO_GROUP, 1, ALL_CATEGORIES)
	b := NewShapeFilter(NO_GROUP, 2, ALL_CATEGORIES^1)

	if !a.Reject(b) {
		t.Error("b does not accept category 1")
	}
	if SHAPE_FILTER_ALL.Reject(SHAPE_FILTER_ALL) {
		t.Error("default filters collide")
	}
	if !NewShapeFilter(3, 1, 1).Reject(NewShapeFilter(3, 1, 1)) {
		t.Error("same group never collides")
	}
}
