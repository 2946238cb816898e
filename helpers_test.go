package b2d

import "math"

const testDt = 1.0 / 60.0

func newTestWorld() *World {
	return NewWorld(Vector{0, -10})
}

// addGround adds a wide static box whose top face lies on y = 0.
func addGround(world *World) *Body {
	ground := world.AddBody(NewStaticBody())
	ground.SetPosition(Vector{0, -0.5})
	world.AddShape(NewBox(ground, 40, 1))
	return ground
}

func addBox(world *World, pos Vector, w, h float64) *Body {
	body := world.AddBody(NewBody())
	body.SetPosition(pos)
	world.AddShape(NewBox(body, w, h))
	return body
}

func addBall(world *World, pos Vector, r float64) *Body {
	body := world.AddBody(NewBody())
	body.SetPosition(pos)
	world.AddShape(NewCircle(body, r, Vector{}))
	return body
}

func stepN(world *World, n int) {
	for i := 0; i < n; i++ {
		world.Step(testDt, 8, 3)
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
