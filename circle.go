package b2d

import "math"

type Circle struct {
	*Shape
	c Vector
	r float64
}

func NewCircle(body *Body, radius float64, offset Vector) *Shape {
	circle := &Circle{
		c: offset,
		r: radius,
	}
	circle.Shape = newShape(circle, body)
	return circle.Shape
}

func (circle *Circle) Type() ShapeType {
	return SHAPE_CIRCLE
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

// Center is the circle's center in body coordinates.
func (circle *Circle) Center() Vector {
	return circle.c
}

func (circle *Circle) ComputeBB(xf Transform) BB {
	return NewBBForCircle(xf.Point(circle.c), circle.r)
}

func (circle *Circle) MassInfo(density float64) ShapeMassInfo {
	area := AreaForCircle(circle.r)
	m := density * area
	return ShapeMassInfo{
		m:    m,
		i:    m * (0.5*circle.r*circle.r + circle.c.Dot(circle.c)),
		cog:  circle.c,
		area: area,
	}
}

func (circle *Circle) TestPoint(xf Transform, p Vector) bool {
	return xf.Point(circle.c).DistanceSq(p) <= circle.r*circle.r
}

func (circle *Circle) RayCast(xf Transform, a, b Vector, maxFraction float64, info *RayCastInfo) bool {
	position := xf.Point(circle.c)
	s := a.Sub(position)
	bq := s.Dot(s) - circle.r*circle.r

	d := b.Sub(a)
	c := s.Dot(d)
	rr := d.Dot(d)
	sigma := c*c - rr*bq

	if sigma < 0 || rr < Epsilon {
		return false
	}

	t := -(c + math.Sqrt(sigma))
	if 0 <= t && t <= maxFraction*rr {
		t /= rr
		info.Fraction = t
		info.Normal = s.Add(d.Mult(t)).Normalize()
		info.Point = a.Add(d.Mult(t))
		return true
	}
	return false
}

func AreaForCircle(r float64) float64 {
	return math.Pi * r * r
}
