package b2d

// findMaxSeparation returns the edge of poly1 with the largest separation
// from poly2.
func findMaxSeparation(poly1 *PolyShape, xf1 Transform, poly2 *PolyShape, xf2 Transform) (int, float64) {
	xf := xf2.MulT(xf1)

	bestIndex := 0
	maxSeparation := -INFINITY
	for i, n1 := range poly1.normals {
		// normal and vertex of poly1 in the frame of poly2
		n := xf.Vect(n1)
		v1 := xf.Point(poly1.verts[i])

		si := INFINITY
		for _, v2 := range poly2.verts {
			sij := n.Dot(v2.Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return bestIndex, maxSeparation
}

// findIncidentEdge picks the edge of poly2 most anti-parallel to edge1 of poly1.
func findIncidentEdge(c *[2]clipVertex, poly1 *PolyShape, xf1 Transform, edge1 int, poly2 *PolyShape, xf2 Transform) {
	assert(0 <= edge1 && edge1 < len(poly1.verts), "Reference edge out of range")

	// reference normal in the frame of poly2
	normal1 := xf2.VectT(xf1.Vect(poly1.normals[edge1]))

	index := 0
	minDot := INFINITY
	for i, n2 := range poly2.normals {
		dot := normal1.Dot(n2)
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := (i1 + 1) % len(poly2.verts)

	c[0].v = xf2.Point(poly2.verts[i1])
	c[0].id = ContactID{ReferenceEdge: uint8(edge1), IncidentEdge: uint8(i1), IncidentVertex: 0}

	c[1].v = xf2.Point(poly2.verts[i2])
	c[1].id = ContactID{ReferenceEdge: uint8(edge1), IncidentEdge: uint8(i2), IncidentVertex: 1}
}

// PolyToPoly finds the reference face with SAT and clips the incident edge
// against its side planes.
//   - reference polygon: poly1, normal pointing out of it
//   - incident polygon: poly2
//   - the incident edge is clipped to the reference face side planes and
//     points in front of the reference face are dropped
func PolyToPoly(manifold *Manifold, a *Shape, xfA Transform, b *Shape, xfB Transform) {
	polyA := a.Class.(*PolyShape)
	polyB := b.Class.(*PolyShape)
	manifold.PointCount = 0
	totalRadius := polyA.r + polyB.r

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}

	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	var poly1, poly2 *PolyShape
	var xf1, xf2 Transform
	var edge1 int
	var flip uint8

	// prefer A's face unless B's is clearly better, to keep the reference stable
	const relativeTol = 0.98
	const absoluteTol = 0.001

	if separationB > relativeTol*separationA+absoluteTol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		manifold.Type = MANIFOLD_FACE_B
		flip = 1
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		manifold.Type = MANIFOLD_FACE_A
		flip = 0
	}

	var incidentEdge [2]clipVertex
	findIncidentEdge(&incidentEdge, poly1, xf1, edge1, poly2, xf2)

	count1 := len(poly1.verts)
	v11 := poly1.verts[edge1]
	v12 := poly1.verts[(edge1+1)%count1]

	localTangent := v12.Sub(v11).Normalize()
	localNormal := localTangent.ReversePerp()
	planePoint := v11.Lerp(v12, 0.5)

	tangent := xf1.Vect(localTangent)
	normal := tangent.ReversePerp()

	v11 = xf1.Point(v11)
	v12 = xf1.Point(v12)

	// face offset
	frontOffset := normal.Dot(v11)

	// side offsets, extended by polytope skin thickness
	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	var clipPoints1, clipPoints2 [2]clipVertex

	// clip to box side 1
	if clipSegmentToLine(&clipPoints1, incidentEdge, tangent.Neg(), sideOffset1) < 2 {
		return
	}

	// clip to negative box side 1
	if clipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2) < 2 {
		return
	}

	manifold.LocalNormal = localNormal
	manifold.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		separation := normal.Dot(clipPoints2[i].v) - frontOffset

		if separation <= totalRadius {
			cp := &manifold.Points[pointCount]
			cp.LocalPoint = xf2.PointT(clipPoints2[i].v)
			cp.ID = clipPoints2[i].id
			cp.ID.Flip = flip
			pointCount++
		}
	}

	manifold.PointCount = pointCount
}
