package b2d

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// PostStepCallbackFunc runs once the world is unlocked at the end of a step.
type PostStepCallbackFunc func(world *World, key interface{}, data interface{})

type postStepCallback struct {
	callback PostStepCallbackFunc
	key      interface{}
	data     interface{}
}

// World manages bodies, shapes, joints and contacts and advances the
// simulation.
type World struct {
	settings Settings

	bodies []*Body
	joints []*Joint

	contactManager *ContactManager
	handlers       collisionHandlers

	locked bool
	// serializes listener hooks fired by islands solved in parallel
	hookMu sync.Mutex

	// shapes were added since the last pair update
	newShapes      bool
	shapeIDCounter int

	// inverse of the previous time step
	inv_dt0 float64

	postStepCallbacks []postStepCallback

	UserData interface{}
}

func NewWorld(gravity Vector) *World {
	settings := DefaultSettings()
	settings.Gravity = gravity
	return NewWorldWithSettings(settings)
}

func NewWorldWithSettings(settings Settings) *World {
	world := &World{
		settings: settings,
		handlers: newCollisionHandlers(),
	}
	world.contactManager = NewContactManager(world)
	return world
}

func (world *World) Gravity() Vector {
	return world.settings.Gravity
}

func (world *World) SetGravity(gravity Vector) {
	world.settings.Gravity = gravity
}

func (world *World) Settings() Settings {
	return world.settings
}

// SetSettings replaces the world switches. Invalid settings are rejected.
func (world *World) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	world.settings = settings
	if !settings.AllowSleep {
		for _, body := range world.bodies {
			body.Activate()
		}
	}
	return nil
}

func (world *World) IsLocked() bool {
	return world.locked
}

func (world *World) ContactManager() *ContactManager {
	return world.contactManager
}

func (world *World) BodyCount() int {
	return len(world.bodies)
}

func (world *World) JointCount() int {
	return len(world.joints)
}

func (world *World) ContactCount() int {
	return world.contactManager.Count()
}

func (world *World) EachBody(f func(*Body)) {
	for _, body := range world.bodies {
		f(body)
	}
}

func (world *World) EachJoint(f func(*Joint)) {
	for _, joint := range world.joints {
		f(joint)
	}
}

func (world *World) EachContact(f func(*Contact)) {
	for _, contact := range world.contactManager.contacts {
		f(contact)
	}
}

// AddBody adds the body and any shapes already attached to it.
func (world *World) AddBody(body *Body) *Body {
	if !assert(!world.locked, "You cannot add a body during a step, use a post-step callback") {
		return body
	}
	if !assert(body.world == nil, "Body is already added to a world") {
		return body
	}

	body.world = world
	body.index = len(world.bodies)
	world.bodies = append(world.bodies, body)

	for _, shape := range body.shapes {
		world.attachShape(shape)
	}
	return body
}

// RemoveBody destroys the joints and contacts of the body and removes it
// along with its shapes.
func (world *World) RemoveBody(body *Body) {
	if !assert(!world.locked, "You cannot remove a body during a step, use a post-step callback") {
		return
	}
	if !assert(body.world == world, "Body is not in this world") {
		return
	}

	for len(body.joints) > 0 {
		world.RemoveJoint(body.joints[len(body.joints)-1])
	}
	for len(body.contacts) > 0 {
		world.contactManager.Destroy(body.contacts[len(body.contacts)-1])
	}
	for _, shape := range body.shapes {
		shape.destroyProxy(world.contactManager.broadPhase)
		shape.world = nil
	}

	last := len(world.bodies) - 1
	moved := world.bodies[last]
	world.bodies[body.index] = moved
	moved.index = body.index
	world.bodies[last] = nil
	world.bodies = world.bodies[:last]

	body.world = nil
	body.index = -1
}

// AddShape attaches the shape to its body, which must already be in the world.
func (world *World) AddShape(shape *Shape) *Shape {
	if !assert(!world.locked, "You cannot add a shape during a step, use a post-step callback") {
		return shape
	}
	body := shape.body
	if !assert(body.world == world, "Add the body to the world before its shapes") {
		return shape
	}
	if !assert(shape.world == nil, "Shape is already added to a world") {
		return shape
	}

	body.shapes = append(body.shapes, shape)
	world.attachShape(shape)
	body.ResetMassData()
	if body.bodyType != BODY_STATIC {
		body.Activate()
	}
	return shape
}

func (world *World) attachShape(shape *Shape) {
	world.shapeIDCounter++
	shape.hashid = world.shapeIDCounter
	shape.world = world
	shape.createProxy(world.contactManager.broadPhase, shape.body.transform)
	world.newShapes = true
}

// RemoveShape destroys the contacts of the shape and detaches it from its body.
func (world *World) RemoveShape(shape *Shape) {
	if !assert(!world.locked, "You cannot remove a shape during a step, use a post-step callback") {
		return
	}
	if !assert(shape.world == world, "Shape is not in this world") {
		return
	}
	body := shape.body

	for i := 0; i < len(body.contacts); {
		contact := body.contacts[i]
		if contact.shapeA == shape || contact.shapeB == shape {
			// the last contact is swapped into i
			world.contactManager.Destroy(contact)
			continue
		}
		i++
	}

	shape.destroyProxy(world.contactManager.broadPhase)
	shape.world = nil
	body.removeShape(shape)
	body.ResetMassData()
	body.Activate()
}

func (world *World) AddJoint(joint *Joint) *Joint {
	if !assert(!world.locked, "You cannot add a joint during a step, use a post-step callback") {
		return joint
	}
	a, b := joint.a, joint.b
	if !assert(a.world == world && b.world == world, "Add both bodies to the world before the joint") {
		return joint
	}
	if !assert(joint.world == nil, "Joint is already added to a world") {
		return joint
	}

	joint.world = world
	joint.index = len(world.joints)
	world.joints = append(world.joints, joint)

	a.joints = append(a.joints, joint)
	b.joints = append(b.joints, joint)

	if !joint.collideConnected {
		joint.flagContacts()
	}
	joint.ActivateBodies()
	return joint
}

func (world *World) RemoveJoint(joint *Joint) {
	if !assert(!world.locked, "You cannot remove a joint during a step, use a post-step callback") {
		return
	}
	if !assert(joint.world == world, "Joint is not in this world") {
		return
	}

	// gears built on this joint go first
	for i := len(world.joints) - 1; i >= 0; i-- {
		if i >= len(world.joints) {
			continue
		}
		if gear, ok := world.joints[i].Class.(*GearJoint); ok && gear.references(joint) {
			world.RemoveJoint(gear.Joint)
		}
	}

	last := len(world.joints) - 1
	moved := world.joints[last]
	world.joints[joint.index] = moved
	moved.index = joint.index
	world.joints[last] = nil
	world.joints = world.joints[:last]

	joint.ActivateBodies()
	joint.a.removeJoint(joint)
	joint.b.removeJoint(joint)

	if !joint.collideConnected {
		// pairs the joint filtered out come back
		joint.flagContacts()
	}

	joint.world = nil
	joint.index = -1
}

// NewCollisionHandler returns the handler for a pair of collision types,
// creating it on first use.
func (world *World) NewCollisionHandler(a, b CollisionType) *CollisionHandler {
	handler := world.handlers.get(a, b)
	for _, contact := range world.contactManager.contacts {
		contact.resolveHandler()
	}
	return handler
}

// DefaultCollisionHandler is used by pairs without a handler of their own.
func (world *World) DefaultCollisionHandler() *CollisionHandler {
	return world.handlers.defaultHandler
}

// AddPostStepCallback defers f until the end of the current step, where it is
// safe to add and remove objects. Only the first callback per key is kept.
// Outside of a step f runs right away.
func (world *World) AddPostStepCallback(f PostStepCallbackFunc, key, data interface{}) bool {
	if !world.locked {
		f(world, key, data)
		return true
	}

	for _, callback := range world.postStepCallbacks {
		if callback.key == key {
			return false
		}
	}
	world.postStepCallbacks = append(world.postStepCallbacks, postStepCallback{f, key, data})
	return true
}

func (world *World) lock() {
	world.locked = true
}

func (world *World) unlock() {
	world.locked = false

	// callbacks may queue more callbacks
	for len(world.postStepCallbacks) > 0 {
		callbacks := world.postStepCallbacks
		world.postStepCallbacks = nil
		for _, callback := range callbacks {
			callback.callback(world, callback.key, callback.data)
		}
	}
}

// Step advances the world by dt. The world is locked for the duration.
func (world *World) Step(dt float64, velocityIterations, positionIterations int) {
	if world.newShapes {
		world.contactManager.FindNewContacts()
		world.newShapes = false
	}

	world.lock()

	step := &TimeStep{
		Dt:                 dt,
		DtRatio:            world.inv_dt0 * dt,
		VelocityIterations: velocityIterations,
		PositionIterations: positionIterations,
		WarmStarting:       world.settings.WarmStarting,
	}
	if dt > 0 {
		step.InvDt = 1 / dt
	}

	world.contactManager.Collide()

	if dt > 0 {
		world.solve(step)

		if world.settings.ContinuousPhysics {
			world.solveTOI(step)
		}

		world.inv_dt0 = step.InvDt
	}

	for _, body := range world.bodies {
		body.f = Vector{}
		body.t = 0
	}

	world.unlock()
}

// StepDefault steps with the period and iteration counts of the settings.
func (world *World) StepDefault() {
	settings := world.settings
	world.Step(1/settings.Hz, settings.VelocityIterations, settings.PositionIterations)
}

func (world *World) solve(step *TimeStep) {
	for _, body := range world.bodies {
		body.island = false
	}
	for _, contact := range world.contactManager.contacts {
		contact.island = false
	}
	for _, joint := range world.joints {
		joint.island = false
	}

	islands := world.buildIslands()

	gravity := world.settings.Gravity
	allowSleep := world.settings.AllowSleep
	positionCorrection := world.settings.PositionCorrection

	if workers := world.settings.Workers; workers <= 1 || len(islands) < 2 {
		for _, island := range islands {
			island.Solve(step, gravity, allowSleep, positionCorrection)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for _, island := range islands {
			g.Go(func() error {
				island.Solve(step, gravity, allowSleep, positionCorrection)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, body := range world.bodies {
		if !body.island || body.bodyType == BODY_STATIC {
			continue
		}
		body.synchronizeShapes()
	}

	world.contactManager.FindNewContacts()
}

// buildIslands walks the contact graph from every awake body. Static bodies
// end the walk and are released afterwards so several islands can share them.
func (world *World) buildIslands() []*Island {
	var islands []*Island
	stack := make([]*Body, 0, len(world.bodies))

	for _, seed := range world.bodies {
		if seed.island || !seed.awake || seed.bodyType == BODY_STATIC {
			continue
		}
		// a kinematic body at rest has nothing to solve and would keep
		// waking whatever rests on it
		if seed.bodyType == BODY_KINEMATIC && seed.v == (Vector{}) && seed.w == 0 {
			continue
		}

		island := newIsland(world)
		stack = append(stack[:0], seed)
		seed.island = true

		for len(stack) > 0 {
			body := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			island.AddBody(body)

			if body.bodyType == BODY_STATIC {
				continue
			}
			body.Activate()

			for _, contact := range body.contacts {
				if contact.island || !contact.touching || !contact.IsEnabled() || contact.sensor {
					continue
				}
				island.AddContact(contact)
				contact.island = true

				other := contact.shapeA.body
				if other == body {
					other = contact.shapeB.body
				}
				if other.island {
					continue
				}
				stack = append(stack, other)
				other.island = true
			}

			for _, joint := range body.joints {
				if joint.island || !joint.enabled {
					continue
				}
				island.AddJoint(joint)
				joint.island = true

				other := joint.Other(body)
				if other.island {
					continue
				}
				stack = append(stack, other)
				other.island = true
			}
		}

		for _, body := range island.bodies {
			if body.bodyType == BODY_STATIC {
				body.island = false
			}
		}
		islands = append(islands, island)
	}
	return islands
}

// QueryAABB calls f for every shape whose bounds overlap bb until f returns false.
func (world *World) QueryAABB(bb BB, f func(shape *Shape) bool) {
	broadPhase := world.contactManager.broadPhase
	broadPhase.Query(bb, func(proxyId int) bool {
		shape := broadPhase.UserData(proxyId).(*Shape)
		if !shape.Class.ComputeBB(shape.body.transform).Intersects(bb) {
			return true
		}
		return f(shape)
	})
}

// QueryPoint calls f for every shape containing p until f returns false.
func (world *World) QueryPoint(p Vector, f func(shape *Shape) bool) {
	world.QueryAABB(NewBBForCircle(p, Epsilon), func(shape *Shape) bool {
		if !shape.TestPoint(p) {
			return true
		}
		return f(shape)
	})
}

// RayCast reports the shapes hit by the segment a->b. The callback controls
// the rest of the cast with its return value: -1 ignores the shape, 0 stops,
// the hit fraction clips the ray and 1 continues unchanged.
func (world *World) RayCast(a, b Vector, f func(info RayCastInfo) float64) {
	broadPhase := world.contactManager.broadPhase
	broadPhase.RayCast(a, b, 1, func(a, b Vector, maxFraction float64, proxyId int) float64 {
		shape := broadPhase.UserData(proxyId).(*Shape)
		var info RayCastInfo
		if !shape.RayCast(a, b, maxFraction, &info) {
			return maxFraction
		}
		return f(info)
	})
}

// RayCastClosest returns the first shape hit by the segment a->b.
func (world *World) RayCastClosest(a, b Vector) (RayCastInfo, bool) {
	var closest RayCastInfo
	hit := false
	world.RayCast(a, b, func(info RayCastInfo) float64 {
		closest = info
		hit = true
		return info.Fraction
	})
	return closest, hit
}
