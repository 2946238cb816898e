package main

import (
	"log"
	"math"
	"math/rand"

	. "github.com/jakecoffman/b2d"
)

type updateFunc func(world *World, dt float64)

var scenes = map[string]func(world *World) updateFunc{
	"pyramid": pyramid,
	"chains":  chains,
	"tumble":  tumble,
	"bullets": bullets,
}

func step(world *World, dt float64) {
	settings := world.Settings()
	world.Step(dt, settings.VelocityIterations, settings.PositionIterations)
}

func addGround(world *World, width float64) *Body {
	ground := world.AddBody(NewStaticBody())
	ground.SetPosition(Vector{0, -0.5})
	shape := world.AddShape(NewBox(ground, width, 1))
	shape.SetFriction(1)
	return ground
}

func pyramid(world *World) updateFunc {
	addGround(world, 80)

	const rows = 20
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			body := world.AddBody(NewBody())
			body.SetPosition(Vector{float64(j) - float64(i)*0.5 - rows*0.5, 0.5 + float64(i)})

			shape := world.AddShape(NewBox(body, 1, 1))
			shape.SetFriction(0.6)
		}
	}

	radius := 0.5
	body := world.AddBody(NewBody())
	body.SetPosition(Vector{-30, radius})
	body.SetVelocity(20, 0)
	shape := world.AddShape(NewCircle(body, radius, Vector{}))
	shape.SetDensity(10)
	shape.SetFriction(0.9)

	return step
}

const breakingForce = 400.0

// chains hangs links off a static bar. Joints pulled harder than
// breakingForce are removed after the step.
func chains(world *World) updateFunc {
	ground := addGround(world, 40)

	const chainCount, linkCount = 8, 10
	width, height := 0.25, 0.75

	for i := 0; i < chainCount; i++ {
		var prev *Body
		x := 2 * (float64(i) - (chainCount-1)/2.0)
		top := 15.0

		for j := 0; j < linkCount; j++ {
			y := top - (float64(j)+0.5)*height
			body := world.AddBody(NewBody())
			body.SetPosition(Vector{x, y})
			shape := world.AddShape(NewBox(body, width, height))
			shape.SetFriction(0.8)

			anchor := Vector{x, y + height/2}
			if prev == nil {
				world.AddJoint(NewRevoluteJoint(ground, body, anchor))
			} else {
				world.AddJoint(NewRevoluteJoint(prev, body, anchor))
			}
			prev = body
		}
	}

	radius := 0.5
	body := world.AddBody(NewBody())
	body.SetPosition(Vector{0, radius})
	body.SetVelocity(0, 20)
	body.SetBullet(true)
	shape := world.AddShape(NewCircle(body, radius, Vector{}))
	shape.SetDensity(20)

	return func(world *World, dt float64) {
		step(world, dt)

		var broken []*Joint
		world.EachJoint(func(joint *Joint) {
			if joint.ReactionForce(1/dt).Length() > breakingForce {
				broken = append(broken, joint)
			}
		})
		for _, joint := range broken {
			world.RemoveJoint(joint)
		}
	}
}

// tumble spins a hollow kinematic box full of loose shapes.
func tumble(world *World) updateFunc {
	box := world.AddBody(NewKinematicBody())
	box.SetAngularVelocity(0.4)

	const half, thickness = 10.0, 0.5
	walls := []Transform{
		NewTransformRigid(Vector{0, -half}, 0),
		NewTransformRigid(Vector{0, half}, 0),
		NewTransformRigid(Vector{-half, 0}, math.Pi/2),
		NewTransformRigid(Vector{half, 0}, math.Pi/2),
	}
	for _, xf := range walls {
		verts := []Vector{
			{-half, -thickness / 2}, {half, -thickness / 2},
			{half, thickness / 2}, {-half, thickness / 2},
		}
		shape := world.AddShape(NewPolyShape(box, verts, xf))
		shape.SetFriction(1)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 7; i++ {
		for j := 0; j < 3; j++ {
			pos := Vector{float64(i)*2 - 6, float64(j)*3 - 5}

			body := world.AddBody(NewBody())
			body.SetPosition(pos)
			if rng.Intn(2) == 0 {
				world.AddShape(NewBox(body, 1, 2))
			} else {
				world.AddShape(NewCircle(body, 0.5, Vector{0, 0.5}))
				world.AddShape(NewCircle(body, 0.5, Vector{0, -0.5}))
			}
		}
	}

	return step
}

// bullets fires small fast circles at a thin wall.
func bullets(world *World) updateFunc {
	addGround(world, 40)

	wall := world.AddBody(NewStaticBody())
	wall.SetPosition(Vector{10, 5})
	world.AddShape(NewBox(wall, 0.1, 10))

	handler := world.NewCollisionHandler(1, 2)
	handler.BeginFunc = func(contact *Contact, world *World, userData interface{}) bool {
		bullet, _ := contact.Bodies()
		log.Printf("Bullet hit the wall at %v", bullet.Position())
		return true
	}
	wall.EachShape(func(shape *Shape) {
		shape.SetCollisionType(2)
	})

	fired, steps := 0, 0
	return func(world *World, dt float64) {
		if fired < 20 && steps%10 == 0 {
			body := world.AddBody(NewBody())
			body.SetPosition(Vector{-10, 1 + float64(fired%8)})
			body.SetVelocity(300, 0)
			shape := world.AddShape(NewCircle(body, 0.1, Vector{}))
			shape.SetCollisionType(1)
			fired++
		}
		steps++
		step(world, dt)
	}
}
