package b2d

type ManifoldType int

const (
	MANIFOLD_CIRCLES ManifoldType = iota
	MANIFOLD_FACE_A
	MANIFOLD_FACE_B
)

// ContactID names the features that produced a contact point. The narrow
// phase assigns it consistently so impulses can follow a point across steps.
type ContactID struct {
	ReferenceEdge  uint8
	IncidentEdge   uint8
	IncidentVertex uint8
	Flip           uint8
}

func (id ContactID) Key() uint32 {
	return uint32(id.ReferenceEdge) | uint32(id.IncidentEdge)<<8 | uint32(id.IncidentVertex)<<16 | uint32(id.Flip)<<24
}

// ManifoldPoint is a contact point in the local space of the incident shape.
//   - circles: the center of circle B
//   - faceA: the clip point on shape B
//   - faceB: the clip point on shape A
type ManifoldPoint struct {
	LocalPoint     Vector
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

// Manifold is the output of the narrow phase for one pair of shapes.
//   - circles: LocalPoint is the center of circle A, LocalNormal is unused
//   - faceA: LocalPoint and LocalNormal describe the reference face of A
//   - faceB: LocalPoint and LocalNormal describe the reference face of B
type Manifold struct {
	Points      [MaxManifoldPoints]ManifoldPoint
	LocalNormal Vector
	LocalPoint  Vector
	Type        ManifoldType
	PointCount  int
}

// WorldManifold is a Manifold resolved to world coordinates.
type WorldManifold struct {
	// Normal points from A to B.
	Normal Vector
	// Points lie midway between the two surfaces.
	Points [MaxManifoldPoints]Vector
	// Separations are negative when the shapes overlap.
	Separations [MaxManifoldPoints]float64
}

func (wm *WorldManifold) Initialize(manifold *Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) {
	if manifold.PointCount == 0 {
		return
	}

	switch manifold.Type {
	case MANIFOLD_CIRCLES:
		pointA := xfA.Point(manifold.LocalPoint)
		pointB := xfB.Point(manifold.Points[0].LocalPoint)
		wm.Normal = Vector{1, 0}
		if pointA.DistanceSq(pointB) > Epsilon*Epsilon {
			wm.Normal = pointB.Sub(pointA).Normalize()
		}
		cA := pointA.Add(wm.Normal.Mult(radiusA))
		cB := pointB.Sub(wm.Normal.Mult(radiusB))
		wm.Points[0] = cA.Lerp(cB, 0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case MANIFOLD_FACE_A:
		wm.Normal = xfA.Vect(manifold.LocalNormal)
		planePoint := xfA.Point(manifold.LocalPoint)
		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := xfB.Point(manifold.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mult(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mult(radiusB))
			wm.Points[i] = cA.Lerp(cB, 0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case MANIFOLD_FACE_B:
		wm.Normal = xfB.Vect(manifold.LocalNormal)
		planePoint := xfB.Point(manifold.LocalPoint)
		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := xfA.Point(manifold.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mult(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mult(radiusA))
			wm.Points[i] = cA.Lerp(cB, 0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}
		// keep the normal pointing from A to B
		wm.Normal = wm.Normal.Neg()
	}
}

// clipVertex is a point of the incident edge during clipping.
type clipVertex struct {
	v  Vector
	id ContactID
}

// clipSegmentToLine keeps the part of the segment behind the plane
// dot(normal, x) = offset.
func clipSegmentToLine(vOut *[2]clipVertex, vIn [2]clipVertex, normal Vector, offset float64) int {
	numOut := 0

	distance0 := normal.Dot(vIn[0].v) - offset
	distance1 := normal.Dot(vIn[1].v) - offset

	if distance0 <= 0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// the points are on opposite sides of the plane
	if distance0*distance1 < 0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].v = vIn[0].v.Lerp(vIn[1].v, interp)
		if distance0 > 0 {
			vOut[numOut].id = vIn[0].id
		} else {
			vOut[numOut].id = vIn[1].id
		}
		numOut++
	}

	return numOut
}
