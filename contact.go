package b2d

type contactKey struct {
	a, b int
}

func newContactKey(a, b *Shape) contactKey {
	if a.hashid > b.hashid {
		a, b = b, a
	}
	return contactKey{a.hashid, b.hashid}
}

// Contact tracks a pair of shapes whose fat boxes overlap. It exists as long
// as the broad phase reports the pair, touching or not.
type Contact struct {
	shapeA, shapeB *Shape
	collide        CollisionFunc

	manifold Manifold

	friction, restitution float64

	touching bool
	sensor   bool
	// enabled is reset every update, the pre-solve callback can clear it
	enabled bool
	// ignored is set when the begin callback rejects the pair
	ignored bool
	// filter asks the contact manager to run the filter again
	filter bool
	island bool

	handler *CollisionHandler
	swapped bool

	world *World
	index int
	key   contactKey

	UserData interface{}
}

func newContact(world *World, a, b *Shape, collide CollisionFunc) *Contact {
	contact := &Contact{
		shapeA:      a,
		shapeB:      b,
		collide:     collide,
		friction:    MixFriction(a.friction, b.friction),
		restitution: MixRestitution(a.restitution, b.restitution),
		sensor:      a.sensor || b.sensor,
		enabled:     true,
		world:       world,
		index:       -1,
		key:         newContactKey(a, b),
	}
	contact.resolveHandler()
	return contact
}

func (c *Contact) resolveHandler() {
	c.handler = c.world.handlers.lookup(c.shapeA.collisionType, c.shapeB.collisionType)
	c.swapped = c.handler.TypeA != c.shapeA.collisionType
}

func (c *Contact) ShapeA() *Shape {
	return c.shapeA
}

func (c *Contact) ShapeB() *Shape {
	return c.shapeB
}

// Shapes returns the shapes in the order of the handler's collision types.
func (c *Contact) Shapes() (*Shape, *Shape) {
	if c.swapped {
		return c.shapeB, c.shapeA
	}
	return c.shapeA, c.shapeB
}

func (c *Contact) Bodies() (*Body, *Body) {
	a, b := c.Shapes()
	return a.body, b.body
}

func (c *Contact) Manifold() *Manifold {
	return &c.manifold
}

func (c *Contact) WorldManifold() WorldManifold {
	var wm WorldManifold
	wm.Initialize(&c.manifold,
		c.shapeA.body.transform, c.shapeA.Class.Radius(),
		c.shapeB.body.transform, c.shapeB.Class.Radius())
	return wm
}

func (c *Contact) IsTouching() bool {
	return c.touching
}

func (c *Contact) IsSensor() bool {
	return c.sensor
}

func (c *Contact) IsEnabled() bool {
	return c.enabled && !c.ignored
}

// SetEnabled disables the contact for the current step. Use it from a
// pre-solve callback.
func (c *Contact) SetEnabled(enabled bool) {
	c.enabled = enabled
}

func (c *Contact) Friction() float64 {
	return c.friction
}

// SetFriction overrides the mixed friction until the contact is destroyed.
func (c *Contact) SetFriction(friction float64) {
	c.friction = friction
}

func (c *Contact) Restitution() float64 {
	return c.restitution
}

func (c *Contact) SetRestitution(restitution float64) {
	c.restitution = restitution
}

func (c *Contact) flagForFiltering() {
	c.filter = true
}

// Update runs the narrow phase and carries the impulses of surviving points
// over from the old manifold.
func (c *Contact) Update() {
	oldManifold := c.manifold

	c.enabled = true

	wasTouching := c.touching
	touching := false

	bodyA := c.shapeA.body
	bodyB := c.shapeB.body
	xfA := bodyA.transform
	xfB := bodyB.transform

	if c.sensor {
		var manifold Manifold
		c.collide(&manifold, c.shapeA, xfA, c.shapeB, xfB)
		touching = manifold.PointCount > 0

		// sensors don't create contact points
		c.manifold.PointCount = 0
	} else {
		c.collide(&c.manifold, c.shapeA, xfA, c.shapeB, xfB)
		touching = c.manifold.PointCount > 0

		// match new points with old ones by feature id
		for i := 0; i < c.manifold.PointCount; i++ {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0
			mp2.TangentImpulse = 0
			key := mp2.ID.Key()

			for j := 0; j < oldManifold.PointCount; j++ {
				mp1 := &oldManifold.Points[j]
				if mp1.ID.Key() == key {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.Activate()
			bodyB.Activate()
		}
	}

	c.touching = touching
	handler := c.handler

	if !wasTouching && touching {
		c.ignored = !handler.BeginFunc(c, c.world, handler.UserData)
	}

	if wasTouching && !touching {
		handler.SeparateFunc(c, c.world, handler.UserData)
		c.ignored = false
	}

	if !c.sensor && touching && !c.ignored {
		c.enabled = handler.PreSolveFunc(c, &oldManifold, c.world, handler.UserData)
	}
}
