package b2d

import (
	"fmt"
	"math"
)

const (
	// Dynamic bodies are moved by forces, gravity and collisions.
	BODY_DYNAMIC = iota
	// Kinematic bodies move by their velocity only and have infinite mass.
	BODY_KINEMATIC
	// Static bodies never move and never sleep.
	BODY_STATIC
)

type Body struct {
	bodyType int

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia about the center of mass and it's inverse
	i     float64
	i_inv float64

	// transform of the body origin
	transform Transform
	// motion of the center of mass over the current step
	sweep Sweep

	// velocity, force
	v Vector
	f Vector

	// angular velocity, torque (radians)
	w float64
	t float64

	linearDamping, angularDamping float64

	fixedRotation   bool
	bullet          bool
	sleepingAllowed bool
	awake           bool
	sleepTime       float64

	// set while the body belongs to the island being built
	island bool

	world *World
	index int

	shapes   []*Shape
	contacts []*Contact
	joints   []*Joint

	UserData interface{}
}

func (body *Body) String() string {
	return fmt.Sprint("Body ", body.index)
}

func newBody(bodyType int) *Body {
	body := &Body{
		bodyType:        bodyType,
		transform:       NewTransformIdentity(),
		sleepingAllowed: true,
		awake:           true,
		index:           -1,
	}
	body.ResetMassData()
	return body
}

// NewBody returns a dynamic body at the origin. Its mass comes from the
// density of its shapes.
func NewBody() *Body {
	return newBody(BODY_DYNAMIC)
}

func NewStaticBody() *Body {
	return newBody(BODY_STATIC)
}

func NewKinematicBody() *Body {
	return newBody(BODY_KINEMATIC)
}

func (body *Body) Type() int {
	return body.bodyType
}

func (body *Body) SetType(bodyType int) {
	if body.bodyType == bodyType {
		return
	}
	if body.world != nil && !assert(!body.world.locked, "You cannot change a body type during a step") {
		return
	}

	body.bodyType = bodyType
	body.ResetMassData()

	if bodyType == BODY_STATIC {
		body.v = Vector{}
		body.w = 0
		body.sweep.A0 = body.sweep.A
		body.sweep.C0 = body.sweep.C
	}
	body.Activate()
	body.f = Vector{}
	body.t = 0

	if body.world == nil {
		return
	}

	// contacts might not be valid for the new type
	for len(body.contacts) > 0 {
		body.world.contactManager.Destroy(body.contacts[len(body.contacts)-1])
	}
	for _, shape := range body.shapes {
		if shape.proxyId != nullNode {
			body.world.contactManager.broadPhase.TouchProxy(shape.proxyId)
		}
	}
}

func (body *Body) World() *World {
	return body.world
}

func (body *Body) Mass() float64 {
	return body.m
}

// Moment is the rotational inertia about the center of mass.
func (body *Body) Moment() float64 {
	return body.i
}

// ResetMassData accumulates mass, center of mass and inertia from the shapes.
// A dynamic body without massive shapes gets a mass of one.
func (body *Body) ResetMassData() {
	body.m = 0
	body.m_inv = 0
	body.i = 0
	body.i_inv = 0
	body.sweep.LocalCenter = Vector{}

	if body.bodyType != BODY_DYNAMIC {
		body.sweep.C0 = body.transform.Translation()
		body.sweep.C = body.sweep.C0
		body.sweep.A0 = body.sweep.A
		return
	}

	center := Vector{}
	for _, shape := range body.shapes {
		if shape.density == 0 {
			continue
		}
		info := shape.MassInfo()
		body.m += info.m
		center = center.Add(info.cog.Mult(info.m))
		body.i += info.i
	}

	if body.m > 0 {
		body.m_inv = 1 / body.m
		center = center.Mult(body.m_inv)
	} else {
		body.m = 1
		body.m_inv = 1
	}

	if body.i > 0 && !body.fixedRotation {
		// shift the inertia to the center of mass
		body.i -= body.m * center.Dot(center)
		assert(body.i > 0, "Body has a non-positive moment of inertia")
		body.i_inv = 1 / body.i
	} else {
		body.i = 0
		body.i_inv = 0
	}

	oldCenter := body.sweep.C
	body.sweep.LocalCenter = center
	body.sweep.C = body.transform.Point(center)
	body.sweep.C0 = body.sweep.C

	// keep the velocity of the origin unchanged
	body.v = body.v.Add(body.sweep.C.Sub(oldCenter).Perp().Mult(body.w))
}

func (body *Body) Transform() Transform {
	return body.transform
}

// Position of the body origin.
func (body *Body) Position() Vector {
	return body.transform.Translation()
}

func (body *Body) SetPosition(position Vector) {
	body.SetTransform(position, body.sweep.A)
}

func (body *Body) Angle() float64 {
	return body.sweep.A
}

func (body *Body) SetAngle(angle float64) {
	body.SetTransform(body.Position(), angle)
}

func (body *Body) Rotation() Vector {
	return body.transform.Rotation()
}

// SetTransform teleports the body. Contacts are updated on the next step.
func (body *Body) SetTransform(position Vector, angle float64) {
	if body.world != nil && !assert(!body.world.locked, "You cannot move a body during a step") {
		return
	}

	body.transform = NewTransformRigid(position, angle)
	body.sweep.C = body.transform.Point(body.sweep.LocalCenter)
	body.sweep.A = angle
	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = angle

	if body.world != nil {
		broadPhase := body.world.contactManager.broadPhase
		for _, shape := range body.shapes {
			shape.synchronize(broadPhase, body.transform, body.transform)
		}
	}
}

func (body *Body) WorldCenter() Vector {
	return body.sweep.C
}

func (body *Body) LocalCenter() Vector {
	return body.sweep.LocalCenter
}

// Velocity of the center of mass.
func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(x, y float64) {
	body.SetVelocityVector(Vector{x, y})
}

func (body *Body) SetVelocityVector(v Vector) {
	if body.bodyType == BODY_STATIC {
		return
	}
	if v.LengthSq() > 0 {
		body.Activate()
	}
	body.v = v
}

func (body *Body) AngularVelocity() float64 {
	return body.w
}

func (body *Body) SetAngularVelocity(w float64) {
	if body.bodyType == BODY_STATIC {
		return
	}
	if w*w > 0 {
		body.Activate()
	}
	body.w = w
}

func (body *Body) Force() Vector {
	return body.f
}

func (body *Body) Torque() float64 {
	return body.t
}

func (body *Body) ApplyForceAtWorldPoint(force, point Vector) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.Activate()
	body.f = body.f.Add(force)
	body.t += point.Sub(body.sweep.C).Cross(force)
}

func (body *Body) ApplyForceAtLocalPoint(force, point Vector) {
	body.ApplyForceAtWorldPoint(body.transform.Vect(force), body.transform.Point(point))
}

func (body *Body) ApplyForceToCenter(force Vector) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.Activate()
	body.f = body.f.Add(force)
}

func (body *Body) ApplyTorque(torque float64) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.Activate()
	body.t += torque
}

func (body *Body) ApplyImpulseAtWorldPoint(impulse, point Vector) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.Activate()
	body.v = body.v.Add(impulse.Mult(body.m_inv))
	body.w += body.i_inv * point.Sub(body.sweep.C).Cross(impulse)
}

func (body *Body) ApplyImpulseAtLocalPoint(impulse, point Vector) {
	body.ApplyImpulseAtWorldPoint(body.transform.Vect(impulse), body.transform.Point(point))
}

func (body *Body) ApplyAngularImpulse(impulse float64) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.Activate()
	body.w += body.i_inv * impulse
}

func (body *Body) LocalToWorld(point Vector) Vector {
	return body.transform.Point(point)
}

func (body *Body) WorldToLocal(point Vector) Vector {
	return body.transform.PointT(point)
}

func (body *Body) VelocityAtWorldPoint(point Vector) Vector {
	r := point.Sub(body.sweep.C)
	return body.v.Add(r.Perp().Mult(body.w))
}

func (body *Body) VelocityAtLocalPoint(point Vector) Vector {
	return body.VelocityAtWorldPoint(body.transform.Point(point))
}

func (body *Body) KineticEnergy() float64 {
	return 0.5 * (body.m*body.v.LengthSq() + body.i*body.w*body.w)
}

func (body *Body) LinearDamping() float64 {
	return body.linearDamping
}

func (body *Body) SetLinearDamping(damping float64) {
	body.linearDamping = damping
}

func (body *Body) AngularDamping() float64 {
	return body.angularDamping
}

func (body *Body) SetAngularDamping(damping float64) {
	body.angularDamping = damping
}

func (body *Body) FixedRotation() bool {
	return body.fixedRotation
}

func (body *Body) SetFixedRotation(fixed bool) {
	body.fixedRotation = fixed
	body.w = 0
	body.ResetMassData()
}

// IsBullet bodies get continuous collision against dynamic bodies too.
func (body *Body) IsBullet() bool {
	return body.bullet
}

func (body *Body) SetBullet(bullet bool) {
	body.bullet = bullet
}

func (body *Body) SleepingAllowed() bool {
	return body.sleepingAllowed
}

func (body *Body) SetSleepingAllowed(allowed bool) {
	body.sleepingAllowed = allowed
	if !allowed {
		body.Activate()
	}
}

func (body *Body) IsSleeping() bool {
	return !body.awake
}

// IdleTime is how long the body has been under the sleep tolerances.
func (body *Body) IdleTime() float64 {
	return body.sleepTime
}

// Activate wakes the body and resets its idle timer.
func (body *Body) Activate() {
	if !body.awake {
		body.awake = true
		body.sleepTime = 0
	}
}

// Sleep puts the body to sleep immediately, dropping its velocity and forces.
// Only dynamic bodies sleep.
func (body *Body) Sleep() {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.awake = false
	body.sleepTime = 0
	body.v = Vector{}
	body.w = 0
	body.f = Vector{}
	body.t = 0
}

func (body *Body) EachShape(f func(*Shape)) {
	for _, shape := range body.shapes {
		f(shape)
	}
}

func (body *Body) EachContact(f func(*Contact)) {
	for _, contact := range body.contacts {
		f(contact)
	}
}

func (body *Body) EachJoint(f func(*Joint)) {
	for _, joint := range body.joints {
		f(joint)
	}
}

// shouldCollide is false when neither body can move or when a joint between
// the two bodies disables collision.
func (body *Body) shouldCollide(other *Body) bool {
	if body.bodyType != BODY_DYNAMIC && other.bodyType != BODY_DYNAMIC {
		return false
	}
	for _, joint := range body.joints {
		if joint.Other(body) == other && !joint.collideConnected {
			return false
		}
	}
	return true
}

// active bodies get their contacts updated.
func (body *Body) active() bool {
	return body.awake && body.bodyType != BODY_STATIC
}

func (body *Body) synchronizeTransform() {
	body.transform = NewTransformRigid(Vector{}, body.sweep.A)
	p := body.sweep.C.Sub(body.transform.Vect(body.sweep.LocalCenter))
	body.transform.tx, body.transform.ty = p.X, p.Y
}

// synchronizeShapes moves the proxies to cover the motion of the last step.
func (body *Body) synchronizeShapes() {
	xf1 := body.sweep.Transform(0)
	broadPhase := body.world.contactManager.broadPhase
	for _, shape := range body.shapes {
		shape.synchronize(broadPhase, xf1, body.transform)
	}
}

// advance rewinds the body to alpha along its sweep and drops the rest of the motion.
func (body *Body) advance(alpha float64) {
	body.sweep.Advance(alpha)
	body.sweep.C = body.sweep.C0
	body.sweep.A = body.sweep.A0
	body.synchronizeTransform()
}

// setSolverVelocity stores solver output. Only dynamic bodies are written,
// static bodies are shared between islands solved in parallel.
func (body *Body) setSolverVelocity(v Vector, w float64) {
	if body.bodyType == BODY_DYNAMIC {
		body.v = v
		body.w = w
	}
}

func (body *Body) applySolverPosition(dc Vector, da float64) {
	if body.bodyType != BODY_DYNAMIC {
		return
	}
	body.sweep.C = body.sweep.C.Add(dc)
	body.sweep.A += da
	body.synchronizeTransform()
}

// rollback undoes the motion of the current step and stops the body.
func (body *Body) rollback() {
	body.sweep.C = body.sweep.C0
	body.sweep.A = body.sweep.A0
	body.v = Vector{}
	body.w = 0
	body.synchronizeTransform()
}

func (body *Body) isValid() bool {
	return body.sweep.C.IsValid() && isValid(body.sweep.A) && body.v.IsValid() && isValid(body.w)
}

// integrateVelocity applies gravity, forces and damping.
func (body *Body) integrateVelocity(gravity Vector, dt float64) {
	body.v = body.v.Add(gravity.Add(body.f.Mult(body.m_inv)).Mult(dt))
	body.w += dt * body.i_inv * body.t

	body.v = body.v.Mult(Clamp(1.0-dt*body.linearDamping, 0, 1))
	body.w *= Clamp(1.0-dt*body.angularDamping, 0, 1)
}

// integratePosition moves the body by its velocity, capping the motion per step.
func (body *Body) integratePosition(dt float64) {
	translation := body.v.Mult(dt)
	if translation.LengthSq() > MaxTranslation*MaxTranslation {
		body.v = body.v.Mult(MaxTranslation / translation.Length())
	}

	rotation := dt * body.w
	if rotation*rotation > MaxRotation*MaxRotation {
		body.w *= MaxRotation / math.Abs(rotation)
	}

	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = body.sweep.A

	body.sweep.C = body.sweep.C.Add(body.v.Mult(dt))
	body.sweep.A += dt * body.w

	body.synchronizeTransform()
}

func (body *Body) removeContact(contact *Contact) {
	for i, c := range body.contacts {
		if c == contact {
			last := len(body.contacts) - 1
			body.contacts[i] = body.contacts[last]
			body.contacts[last] = nil
			body.contacts = body.contacts[:last]
			return
		}
	}
}

func (body *Body) removeJoint(joint *Joint) {
	for i, j := range body.joints {
		if j == joint {
			last := len(body.joints) - 1
			body.joints[i] = body.joints[last]
			body.joints[last] = nil
			body.joints = body.joints[:last]
			return
		}
	}
}

func (body *Body) removeShape(shape *Shape) {
	for i, s := range body.shapes {
		if s == shape {
			body.shapes = append(body.shapes[:i], body.shapes[i+1:]...)
			return
		}
	}
}
