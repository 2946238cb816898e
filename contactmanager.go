package b2d

// ContactManager owns the broad phase and every live contact.
type ContactManager struct {
	world      *World
	broadPhase *BroadPhase
	table      *collisionTable

	contacts []*Contact
	pairs    map[contactKey]*Contact
}

func NewContactManager(world *World) *ContactManager {
	return &ContactManager{
		world:      world,
		broadPhase: NewBroadPhase(),
		table:      newCollisionTable(),
		pairs:      map[contactKey]*Contact{},
	}
}

func (cm *ContactManager) BroadPhase() *BroadPhase {
	return cm.broadPhase
}

func (cm *ContactManager) Count() int {
	return len(cm.contacts)
}

func (cm *ContactManager) Contact(a, b *Shape) *Contact {
	return cm.pairs[newContactKey(a, b)]
}

// AddPair is the broad phase callback for a new pair of overlapping proxies.
func (cm *ContactManager) AddPair(userDataA, userDataB interface{}) {
	shapeA := userDataA.(*Shape)
	shapeB := userDataB.(*Shape)

	bodyA := shapeA.body
	bodyB := shapeB.body

	if bodyA == bodyB {
		return
	}

	if _, ok := cm.pairs[newContactKey(shapeA, shapeB)]; ok {
		return
	}

	if !bodyB.shouldCollide(bodyA) {
		return
	}

	if shapeA.filter.Reject(shapeB.filter) {
		return
	}

	register := cm.table.lookup(shapeA.Type(), shapeB.Type())
	if register.collide == nil {
		return
	}
	if !register.primary {
		shapeA, shapeB = shapeB, shapeA
	}

	contact := newContact(cm.world, shapeA, shapeB, register.collide)

	contact.index = len(cm.contacts)
	cm.contacts = append(cm.contacts, contact)
	cm.pairs[contact.key] = contact

	shapeA.body.contacts = append(shapeA.body.contacts, contact)
	shapeB.body.contacts = append(shapeB.body.contacts, contact)
}

func (cm *ContactManager) FindNewContacts() {
	cm.broadPhase.UpdatePairs(cm.AddPair)
}

// Destroy removes the contact. A touching contact wakes both bodies since
// its support is gone.
func (cm *ContactManager) Destroy(c *Contact) {
	if c.touching {
		c.handler.SeparateFunc(c, cm.world, c.handler.UserData)
		if !c.sensor {
			c.shapeA.body.Activate()
			c.shapeB.body.Activate()
		}
	}

	last := len(cm.contacts) - 1
	moved := cm.contacts[last]
	cm.contacts[c.index] = moved
	moved.index = c.index
	cm.contacts[last] = nil
	cm.contacts = cm.contacts[:last]
	c.index = -1

	delete(cm.pairs, c.key)

	c.shapeA.body.removeContact(c)
	c.shapeB.body.removeContact(c)
}

// Collide updates every contact with an awake body, dropping the contacts
// whose fat boxes stopped overlapping.
func (cm *ContactManager) Collide() {
	for i := 0; i < len(cm.contacts); {
		c := cm.contacts[i]

		shapeA := c.shapeA
		shapeB := c.shapeB
		bodyA := shapeA.body
		bodyB := shapeB.body

		if c.filter {
			if !bodyB.shouldCollide(bodyA) || shapeA.filter.Reject(shapeB.filter) {
				// swap remove puts another contact at i
				cm.Destroy(c)
				continue
			}
			c.sensor = shapeA.sensor || shapeB.sensor
			c.resolveHandler()
			c.filter = false
		}

		if !bodyA.active() && !bodyB.active() {
			i++
			continue
		}

		if !cm.broadPhase.TestOverlap(shapeA.proxyId, shapeB.proxyId) {
			cm.Destroy(c)
			continue
		}

		c.Update()
		i++
	}
}
