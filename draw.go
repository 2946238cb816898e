package b2d

// Draw flags
const (
	DRAW_SHAPES = 1 << iota
	DRAW_JOINTS
	DRAW_CONTACT_POINTS
	DRAW_AABBS
)

// 16 bytes
type FColor struct {
	R, G, B, A float32
}

// Drawer receives the debug geometry of a world, in world coordinates. The
// engine never draws anything itself.
type Drawer interface {
	DrawCircle(center Vector, angle, radius float64, outline, fill FColor, data interface{})
	DrawSegment(a, b Vector, color FColor, data interface{})
	DrawPolygon(verts []Vector, outline, fill FColor, data interface{})
	DrawDot(size float64, pos Vector, color FColor, data interface{})

	Flags() int
	OutlineColor() FColor
	ShapeColor(shape *Shape, data interface{}) FColor
	JointColor() FColor
	ContactPointColor() FColor
	Data() interface{}
}

func DrawShape(shape *Shape, options Drawer) {
	body := shape.body
	xf := body.transform
	data := options.Data()

	outline := options.OutlineColor()
	fill := options.ShapeColor(shape, data)

	switch class := shape.Class.(type) {
	case *Circle:
		options.DrawCircle(xf.Point(class.c), body.Angle(), class.r, outline, fill, data)
	case *PolyShape:
		verts := make([]Vector, len(class.verts))
		for i, v := range class.verts {
			verts[i] = xf.Point(v)
		}
		options.DrawPolygon(verts, outline, fill, data)
	default:
		panic("Unknown shape type")
	}
}

// DrawJoint draws the bodies' origins connected through the joint anchors.
func DrawJoint(joint *Joint, options Drawer) {
	a, b := joint.a, joint.b
	color := options.JointColor()
	data := options.Data()

	var anchorA, anchorB Vector
	switch class := joint.Class.(type) {
	case *DistanceJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
		options.DrawSegment(anchorA, anchorB, color, data)
		return
	case *MouseJoint:
		anchorB = b.LocalToWorld(class.AnchorB)
		options.DrawDot(4, class.target, color, data)
		options.DrawSegment(anchorB, class.target, color, data)
		return
	case *RevoluteJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
	case *WeldJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
	case *FrictionJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
	case *PrismaticJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
	case *LineJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
	case *PulleyJoint:
		anchorA, anchorB = a.LocalToWorld(class.AnchorA), b.LocalToWorld(class.AnchorB)
		options.DrawSegment(class.GroundAnchorA, anchorA, color, data)
		options.DrawSegment(class.GroundAnchorB, anchorB, color, data)
		options.DrawSegment(class.GroundAnchorA, class.GroundAnchorB, color, data)
		return
	default:
		anchorA, anchorB = a.Position(), b.Position()
	}

	options.DrawSegment(a.Position(), anchorA, color, data)
	options.DrawSegment(anchorA, anchorB, color, data)
	options.DrawSegment(b.Position(), anchorB, color, data)
}

func DrawWorld(world *World, options Drawer) {
	flags := options.Flags()

	if flags&DRAW_SHAPES != 0 {
		for _, body := range world.bodies {
			for _, shape := range body.shapes {
				DrawShape(shape, options)
			}
		}
	}

	if flags&DRAW_JOINTS != 0 {
		for _, joint := range world.joints {
			DrawJoint(joint, options)
		}
	}

	if flags&DRAW_CONTACT_POINTS != 0 {
		color := options.ContactPointColor()
		data := options.Data()

		for _, contact := range world.contactManager.contacts {
			if !contact.touching {
				continue
			}
			wm := contact.WorldManifold()
			for i := 0; i < contact.manifold.PointCount; i++ {
				p := wm.Points[i]
				options.DrawDot(3, p, color, data)
				options.DrawSegment(p, p.Add(wm.Normal.Mult(0.3)), color, data)
			}
		}
	}

	if flags&DRAW_AABBS != 0 {
		color := options.OutlineColor()
		data := options.Data()
		broadPhase := world.contactManager.broadPhase

		for _, body := range world.bodies {
			for _, shape := range body.shapes {
				if shape.proxyId == nullNode {
					continue
				}
				bb := broadPhase.FatBB(shape.proxyId)
				verts := []Vector{{bb.L, bb.B}, {bb.R, bb.B}, {bb.R, bb.T}, {bb.L, bb.T}}
				options.DrawPolygon(verts, color, FColor{}, data)
			}
		}
	}
}
