package b2d

import "testing"

type recordingDrawer struct {
	flags                             int
	circles, polygons, segments, dots int
	verts                             [][]Vector
}

func (d *recordingDrawer) DrawCircle(center Vector, angle, radius float64, outline, fill FColor, data interface{}) {
	d.circles++
}

func (d *recordingDrawer) DrawSegment(a, b Vector, color FColor, data interface{}) {
	d.segments++
}

func (d *recordingDrawer) DrawPolygon(verts []Vector, outline, fill FColor, data interface{}) {
	d.polygons++
	d.verts = append(d.verts, verts)
}

func (d *recordingDrawer) DrawDot(size float64, pos Vector, color FColor, data interface{}) {
	d.dots++
}

func (d *recordingDrawer) Flags() int {
	return d.flags
}

func (d *recordingDrawer) OutlineColor() FColor {
	return FColor{0, 0, 0, 1}
}

func (d *recordingDrawer) ShapeColor(shape *Shape, data interface{}) FColor {
	return FColor{1, 1, 1, 1}
}

func (d *recordingDrawer) JointColor() FColor {
	return FColor{0, 1, 0, 1}
}

func (d *recordingDrawer) ContactPointColor() FColor {
	return FColor{1, 0, 0, 1}
}

func (d *recordingDrawer) Data() interface{} {
	return nil
}

func TestDrawWorld(t *testing.T) {
	world := newTestWorld()
	ground := addGround(world)
	box := addBox(world, Vector{0, 0.5}, 1, 1)
	ball := addBall(world, Vector{3, 3}, 0.5)
	world.AddJoint(NewRevoluteJoint(ground, ball, Vector{3, 4}))
	world.Step(testDt, 8, 3)

	shapes := &recordingDrawer{flags: DRAW_SHAPES}
	DrawWorld(world, shapes)
	if shapes.polygons != 2 || shapes.circles != 1 || shapes.segments != 0 {
		t.Error("expected two polygons and a circle, got", shapes.polygons, shapes.circles)
	}
	// polygons come out in world space
	if !shapes.verts[1][0].Near(box.LocalToWorld(Vector{-0.5, -0.5}), 1e-12) {
		t.Error("box vertex not transformed", shapes.verts[1][0])
	}

	joints := &recordingDrawer{flags: DRAW_JOINTS}
	DrawWorld(world, joints)
	if joints.segments != 3 {
		t.Error("expected three joint segments, got", joints.segments)
	}

	points := &recordingDrawer{flags: DRAW_CONTACT_POINTS | DRAW_AABBS}
	DrawWorld(world, points)
	if points.dots != 2 {
		t.Error("expected the two points of the resting box, got", points.dots)
	}
	if points.polygons != 3 {
		t.Error("expected a box per proxy, got", points.polygons)
	}
}

func TestDrawJoint_Pulley(t *testing.T) {
	world := newTestWorld()
	a := addBox(world, Vector{-2, 5}, 1, 1)
	b := addBox(world, Vector{2, 5}, 1, 1)
	joint := world.AddJoint(NewPulleyJoint(a, b, Vector{-2, 10}, Vector{2, 10}, a.Position(), b.Position(), 1))

	drawer := &recordingDrawer{flags: DRAW_JOINTS}
	DrawJoint(joint, drawer)
	if drawer.segments != 3 {
		t.Error("expected both ropes and the ground line, got", drawer.segments)
	}
}
