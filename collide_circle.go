package b2d

func CircleToCircle(manifold *Manifold, a *Shape, xfA Transform, b *Shape, xfB Transform) {
	circleA := a.Class.(*Circle)
	circleB := b.Class.(*Circle)
	manifold.PointCount = 0

	pA := xfA.Point(circleA.c)
	pB := xfB.Point(circleB.c)

	radius := circleA.r + circleB.r
	if pA.DistanceSq(pB) > radius*radius {
		return
	}

	manifold.Type = MANIFOLD_CIRCLES
	manifold.LocalPoint = circleA.c
	manifold.LocalNormal = Vector{}
	manifold.PointCount = 1

	manifold.Points[0].LocalPoint = circleB.c
	manifold.Points[0].ID = ContactID{}
}

func PolyToCircle(manifold *Manifold, a *Shape, xfA Transform, b *Shape, xfB Transform) {
	poly := a.Class.(*PolyShape)
	circle := b.Class.(*Circle)
	manifold.PointCount = 0

	// circle position in the frame of the polygon
	c := xfB.Point(circle.c)
	cLocal := xfA.PointT(c)

	// find the min separating edge
	normalIndex := 0
	separation := -INFINITY
	radius := poly.r + circle.r
	count := len(poly.verts)

	for i := 0; i < count; i++ {
		s := poly.normals[i].Dot(cLocal.Sub(poly.verts[i]))
		if s > radius {
			return
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := poly.verts[normalIndex]
	v2 := poly.verts[(normalIndex+1)%count]

	// center is inside the polygon
	if separation < Epsilon {
		manifold.PointCount = 1
		manifold.Type = MANIFOLD_FACE_A
		manifold.LocalNormal = poly.normals[normalIndex]
		manifold.LocalPoint = v1.Lerp(v2, 0.5)
		manifold.Points[0].LocalPoint = circle.c
		manifold.Points[0].ID = ContactID{}
		return
	}

	// compute barycentric coordinates
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if cLocal.DistanceSq(v1) > radius*radius {
			return
		}
		manifold.LocalNormal = cLocal.Sub(v1).Normalize()
		manifold.LocalPoint = v1
	case u2 <= 0:
		if cLocal.DistanceSq(v2) > radius*radius {
			return
		}
		manifold.LocalNormal = cLocal.Sub(v2).Normalize()
		manifold.LocalPoint = v2
	default:
		faceCenter := v1.Lerp(v2, 0.5)
		if cLocal.Sub(faceCenter).Dot(poly.normals[normalIndex]) > radius {
			return
		}
		manifold.LocalNormal = poly.normals[normalIndex]
		manifold.LocalPoint = faceCenter
	}

	manifold.PointCount = 1
	manifold.Type = MANIFOLD_FACE_A
	manifold.Points[0].LocalPoint = circle.c
	manifold.Points[0].ID = ContactID{}
}
