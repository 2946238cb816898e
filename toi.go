package b2d

import "math"

const (
	toiBaumgarte          = 0.75
	toiPositionIterations = 20
	toiMaxSubSteps        = 8

	// time of impact places shapes this far into each other, within toiTolerance
	toiTarget    = -0.5 * LinearSlop
	toiTolerance = 0.25 * LinearSlop
	// shapes already touching are only stopped when they sink this much deeper
	toiTouchingDepth = 2 * LinearSlop
)

// solveTOI rewinds bodies that would pass through something during the step
// to their first time of impact and finishes the step from there. Everything
// but the swept body is treated as fixed in place.
func (world *World) solveTOI(step *TimeStep) {
	for _, body := range world.bodies {
		if body.bodyType != BODY_DYNAMIC || !body.island {
			continue
		}
		if body.sweep.C0.Equal(body.sweep.C) && body.sweep.A0 == body.sweep.A {
			continue
		}
		world.solveBodyTOI(step, body)
	}
}

// solveBodyTOI sub-steps the body from one impact to the next. The body's
// sweep always covers the rest of the step, from alpha0 to 1.
func (world *World) solveBodyTOI(step *TimeStep, body *Body) {
	alpha0 := 0.0

	for subStep := 0; subStep < toiMaxSubSteps; subStep++ {
		minAlpha := 1.0
		for _, contact := range body.contacts {
			if contact.sensor || !contact.IsEnabled() {
				continue
			}
			other := contact.shapeA.body
			if other == body {
				other = contact.shapeB.body
			}
			// dynamic pairs are left to the discrete solver unless one is a bullet
			if other.bodyType == BODY_DYNAMIC && !body.bullet && !other.bullet {
				continue
			}
			shapeA, shapeB := contact.shapeA, contact.shapeB
			sweepA := remainingSweep(shapeA.body, body, alpha0)
			sweepB := remainingSweep(shapeB.body, body, alpha0)
			minAlpha = math.Min(minAlpha, timeOfImpact(shapeA, sweepA, shapeB, sweepB))
		}

		if minAlpha >= 1 {
			break
		}

		body.advance(minAlpha)
		alpha0 += minAlpha * (1 - alpha0)

		var touching []*Contact
		for _, contact := range body.contacts {
			contact.Update()
			if contact.touching && contact.IsEnabled() && !contact.sensor {
				touching = append(touching, contact)
			}
		}
		if len(touching) == 0 {
			break
		}

		world.solveTOISubStep(step, body, touching, (1-alpha0)*step.Dt)
	}

	body.synchronizeShapes()
}

// solveTOISubStep resolves the body's contacts at the time of impact and
// moves it through the rest of the step. The impulses are not kept for warm
// starting, they can be huge.
func (world *World) solveTOISubStep(step *TimeStep, body *Body, contacts []*Contact, dt float64) {
	subStep := *step
	subStep.Dt = dt
	subStep.InvDt = 0
	if dt > 0 {
		subStep.InvDt = 1 / dt
	}
	subStep.WarmStarting = false

	solver := NewTOIContactSolver(&subStep, contacts, body)
	for i := 0; i < step.VelocityIterations; i++ {
		solver.SolveVelocityConstraints()
	}

	body.integratePosition(dt)

	for i := 0; i < toiPositionIterations; i++ {
		if solver.SolvePositionConstraints(toiBaumgarte) {
			break
		}
	}
}

// timeOfImpact finds the first fraction of the sweeps at which the shapes come
// within toiTarget of each other by conservative advancement. Shapes that
// start out touching are let through down to toiTouchingDepth below where they
// start. It returns 1 when there is no impact.
func timeOfImpact(shapeA *Shape, sweepA Sweep, shapeB *Shape, sweepB Sweep) float64 {
	// upper bound on how fast the separation can shrink over the sweep
	bound := sweepB.C.Sub(sweepB.C0).Sub(sweepA.C.Sub(sweepA.C0)).Length() +
		math.Abs(sweepA.A-sweepA.A0)*sweepRadius(shapeA) +
		math.Abs(sweepB.A-sweepB.A0)*sweepRadius(shapeB)
	if bound < Epsilon {
		return 1
	}

	t := 0.0
	separation := separationBound(shapeA, sweepA.Transform(t), shapeB, sweepB.Transform(t))
	target := toiTarget
	if separation < LinearSlop {
		target = math.Min(separation, toiTarget) - toiTouchingDepth
	}

	for iter := 0; iter < MaxTOIIterations; iter++ {
		t += (separation - target) / bound
		if t >= 1 {
			return 1
		}

		separation = separationBound(shapeA, sweepA.Transform(t), shapeB, sweepB.Transform(t))
		if separation < target+toiTolerance {
			return t
		}
	}
	return 1
}

// remainingSweep is the motion of body over the part of the step the TOI
// body has left, from alpha0 to 1. The TOI body's own sweep already covers
// just that.
func remainingSweep(body, toiBody *Body, alpha0 float64) Sweep {
	sweep := stepSweep(body)
	if body != toiBody {
		sweep.Advance(alpha0)
	}
	return sweep
}

// stepSweep is the motion of a body over the current step. Bodies that were
// not solved this step hold still.
func stepSweep(body *Body) Sweep {
	sweep := body.sweep
	if !body.island || body.bodyType == BODY_STATIC {
		sweep.C0 = sweep.C
		sweep.A0 = sweep.A
	}
	return sweep
}

// sweepRadius is the distance from the center of mass to the farthest point
// of the shape.
func sweepRadius(shape *Shape) float64 {
	center := shape.body.sweep.LocalCenter
	radius := 0.0
	switch class := shape.Class.(type) {
	case *Circle:
		radius = class.c.Distance(center) + class.r
	case *PolyShape:
		for _, v := range class.verts {
			radius = math.Max(radius, v.Distance(center))
		}
		radius += class.r
	}
	return radius
}

// separationBound never exceeds the distance between the shapes and is
// negative when they overlap.
func separationBound(a *Shape, xfA Transform, b *Shape, xfB Transform) float64 {
	switch classA := a.Class.(type) {
	case *Circle:
		switch classB := b.Class.(type) {
		case *Circle:
			return xfA.Point(classA.c).Distance(xfB.Point(classB.c)) - classA.r - classB.r
		case *PolyShape:
			return polyCircleSeparation(classB, xfB, classA, xfA)
		}
	case *PolyShape:
		switch classB := b.Class.(type) {
		case *Circle:
			return polyCircleSeparation(classA, xfA, classB, xfB)
		case *PolyShape:
			_, separationA := findMaxSeparation(classA, xfA, classB, xfB)
			_, separationB := findMaxSeparation(classB, xfB, classA, xfA)
			return math.Max(separationA, separationB) - classA.r - classB.r
		}
	}
	return INFINITY
}

func polyCircleSeparation(poly *PolyShape, xfPoly Transform, circle *Circle, xfCircle Transform) float64 {
	c := xfPoly.PointT(xfCircle.Point(circle.c))
	separation := -INFINITY
	for i, n := range poly.normals {
		separation = math.Max(separation, n.Dot(c.Sub(poly.verts[i])))
	}
	return separation - poly.r - circle.r
}
