package b2d

import "math"

// PolyShape is a convex polygon with counter-clockwise winding.
type PolyShape struct {
	*Shape

	verts, normals []Vector
	centroid       Vector
	r              float64
}

// NewPolyShape builds the convex hull of verts after applying transform.
func NewPolyShape(body *Body, verts []Vector, transform Transform) *Shape {
	hullVerts := make([]Vector, 0, len(verts))
	for _, vert := range verts {
		hullVerts = append(hullVerts, transform.Point(vert))
	}
	return NewPolyShapeRaw(body, ConvexHull(hullVerts, 0))
}

// NewPolyShapeRaw uses verts as they are. They must already be convex and
// counter-clockwise.
func NewPolyShapeRaw(body *Body, verts []Vector) *Shape {
	poly := &PolyShape{r: PolygonRadius}
	poly.Shape = newShape(poly, body)
	poly.SetVerts(verts)
	return poly.Shape
}

func NewBox(body *Body, w, h float64) *Shape {
	hw := w / 2.0
	hh := h / 2.0
	verts := []Vector{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	}
	return NewPolyShapeRaw(body, verts)
}

// SetVerts expects a convex, counter-clockwise vertex list.
func (poly *PolyShape) SetVerts(verts []Vector) {
	count := len(verts)
	assert(3 <= count && count <= MaxPolygonVertices, "Polygon needs between 3 and MaxPolygonVertices vertices, got ", count)

	poly.verts = make([]Vector, count)
	poly.normals = make([]Vector, count)
	copy(poly.verts, verts)

	for i := 0; i < count; i++ {
		edge := verts[(i+1)%count].Sub(verts[i])
		assert(edge.LengthSq() > Epsilon*Epsilon, "Polygon has a degenerate edge")
		poly.normals[i] = edge.ReversePerp().Normalize()
	}
	_, poly.centroid, _ = polyMassProperties(poly.verts)
}

func (poly *PolyShape) Type() ShapeType {
	return SHAPE_POLYGON
}

func (poly *PolyShape) Radius() float64 {
	return poly.r
}

func (poly *PolyShape) Count() int {
	return len(poly.verts)
}

func (poly *PolyShape) Vert(i int) Vector {
	return poly.verts[i]
}

func (poly *PolyShape) Normal(i int) Vector {
	return poly.normals[i]
}

func (poly *PolyShape) Centroid() Vector {
	return poly.centroid
}

func (poly *PolyShape) ComputeBB(xf Transform) BB {
	l := INFINITY
	r := -INFINITY
	b := INFINITY
	t := -INFINITY

	for _, vert := range poly.verts {
		v := xf.Point(vert)
		l = math.Min(l, v.X)
		r = math.Max(r, v.X)
		b = math.Min(b, v.Y)
		t = math.Max(t, v.Y)
	}

	radius := poly.r
	return BB{l - radius, b - radius, r + radius, t + radius}
}

func (poly *PolyShape) MassInfo(density float64) ShapeMassInfo {
	area, center, i := polyMassProperties(poly.verts)
	return ShapeMassInfo{
		m:    density * area,
		i:    density * i,
		cog:  center,
		area: area,
	}
}

func (poly *PolyShape) TestPoint(xf Transform, p Vector) bool {
	local := xf.PointT(p)
	for i, n := range poly.normals {
		if n.Dot(local.Sub(poly.verts[i])) > 0 {
			return false
		}
	}
	return true
}

func (poly *PolyShape) RayCast(xf Transform, a, b Vector, maxFraction float64, info *RayCastInfo) bool {
	p1 := xf.PointT(a)
	p2 := xf.PointT(b)
	d := p2.Sub(p1)

	lower, upper := 0.0, maxFraction
	index := -1

	for i, n := range poly.normals {
		// p = p1 + t * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + t * dot(normal, d) = 0
		numerator := n.Dot(poly.verts[i].Sub(p1))
		denominator := n.Dot(d)

		if denominator == 0 {
			if numerator < 0 {
				return false
			}
		} else if denominator < 0 && numerator < lower*denominator {
			// entering this half-plane
			lower = numerator / denominator
			index = i
		} else if denominator > 0 && numerator < upper*denominator {
			upper = numerator / denominator
		}

		if upper < lower {
			return false
		}
	}

	if index >= 0 {
		info.Fraction = lower
		info.Normal = xf.Vect(poly.normals[index])
		info.Point = a.Lerp(b, lower)
		return true
	}
	return false
}

// polyMassProperties returns the area, centroid and unit-density moment about
// the origin of a convex polygon.
func polyMassProperties(verts []Vector) (area float64, center Vector, inertia float64) {
	const inv3 = 1.0 / 3.0
	count := len(verts)

	// triangle fan from the origin
	for i := 0; i < count; i++ {
		e1 := verts[i]
		e2 := verts[(i+1)%count]

		d := e1.Cross(e2)
		triangleArea := 0.5 * d
		area += triangleArea
		center = center.Add(e1.Add(e2).Mult(triangleArea * inv3))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}

	if area > Epsilon {
		center = center.Mult(1.0 / area)
	}
	return area, center, inertia
}

// ConvexHull returns the counter-clockwise convex hull of verts using
// quickhull. Points within tol of a hull edge are dropped.
func ConvexHull(verts []Vector, tol float64) []Vector {
	count := len(verts)
	if count == 0 {
		return nil
	}
	result := make([]Vector, count)
	copy(result, verts)

	start, end := loopIndexes(result)
	if start == end {
		return result[:1]
	}

	result[0], result[start] = result[start], result[0]
	if end == 0 {
		end = start
	}
	result[1], result[end] = result[end], result[1]

	a := result[0]
	b := result[1]

	// the reduction runs in place, writing the hull behind the read position
	n := qhullReduce(tol, result[2:], count-2, a, b, a, result[1:]) + 1
	return result[:n]
}

// loopIndexes finds the lowest-leftmost and highest-rightmost points.
func loopIndexes(verts []Vector) (int, int) {
	start := 0
	end := 0

	min := verts[0]
	max := min

	for i := 1; i < len(verts); i++ {
		v := verts[i]

		if v.X < min.X || (v.X == min.X && v.Y < min.Y) {
			min = v
			start = i
		} else if v.X > max.X || (v.X == max.X && v.Y > max.Y) {
			max = v
			end = i
		}
	}

	return start, end
}

func qhullReduce(tol float64, verts []Vector, count int, a, pivot, b Vector, result []Vector) int {
	if count < 0 {
		return 0
	}

	if count == 0 {
		result[0] = pivot
		return 1
	}

	leftCount := qhullPartition(verts, count, a, pivot, tol)
	index := 0
	if leftCount > 0 {
		index = qhullReduce(tol, verts[1:], leftCount-1, a, verts[0], pivot, result)
	}

	result[index] = pivot
	index++

	rightCount := qhullPartition(verts[leftCount:], count-leftCount, pivot, b, tol)
	if rightCount == 0 {
		return index
	}

	return index + qhullReduce(tol, verts[leftCount+1:], rightCount-1, pivot, verts[leftCount], b, result[index:])
}

// qhullPartition moves the points right of a->b to the front and the farthest
// one to index 0.
func qhullPartition(verts []Vector, count int, a, b Vector, tol float64) int {
	if count == 0 {
		return 0
	}

	max := 0.0
	pivot := 0

	delta := b.Sub(a)
	valueTol := tol * delta.Length()

	head := 0
	for tail := count - 1; head <= tail; {
		value := verts[head].Sub(a).Cross(delta)
		if value > valueTol {
			if value > max {
				max = value
				pivot = head
			}

			head++
		} else {
			verts[head], verts[tail] = verts[tail], verts[head]
			tail--
		}
	}

	if pivot != 0 {
		verts[0], verts[pivot] = verts[pivot], verts[0]
	}
	return head
}
