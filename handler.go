package b2d

// CollisionBeginFunc is called when two shapes start touching. Returning
// false ignores the collision until the shapes separate.
type CollisionBeginFunc func(contact *Contact, world *World, userData interface{}) bool

// CollisionPreSolveFunc is called every step the shapes touch, before the
// solver runs. Returning false skips the contact for this step.
type CollisionPreSolveFunc func(contact *Contact, oldManifold *Manifold, world *World, userData interface{}) bool

// CollisionPostSolveFunc receives the impulses the solver applied.
type CollisionPostSolveFunc func(contact *Contact, impulse *ContactImpulse, world *World, userData interface{})

// CollisionSeparateFunc is called when two shapes stop touching or when a
// touching contact is destroyed.
type CollisionSeparateFunc func(contact *Contact, world *World, userData interface{})

// CollisionHandler holds the callbacks for shapes of two collision types.
type CollisionHandler struct {
	TypeA, TypeB  CollisionType
	BeginFunc     CollisionBeginFunc
	PreSolveFunc  CollisionPreSolveFunc
	PostSolveFunc CollisionPostSolveFunc
	SeparateFunc  CollisionSeparateFunc
	UserData      interface{}
}

// ContactImpulse holds the accumulated impulse of every manifold point.
type ContactImpulse struct {
	NormalImpulses  [MaxManifoldPoints]float64
	TangentImpulses [MaxManifoldPoints]float64
	Count           int
}

func AlwaysCollide(*Contact, *World, interface{}) bool {
	return true
}

func DefaultPreSolve(*Contact, *Manifold, *World, interface{}) bool {
	return true
}

func DefaultPostSolve(*Contact, *ContactImpulse, *World, interface{}) {}

func DefaultSeparate(*Contact, *World, interface{}) {}

func newCollisionHandler(a, b CollisionType) *CollisionHandler {
	return &CollisionHandler{
		TypeA:         a,
		TypeB:         b,
		BeginFunc:     AlwaysCollide,
		PreSolveFunc:  DefaultPreSolve,
		PostSolveFunc: DefaultPostSolve,
		SeparateFunc:  DefaultSeparate,
	}
}

type handlerKey struct {
	a, b CollisionType
}

func newHandlerKey(a, b CollisionType) handlerKey {
	if a > b {
		a, b = b, a
	}
	return handlerKey{a, b}
}

// collisionHandlers resolves collision types to handlers, falling back to a
// default handler.
type collisionHandlers struct {
	handlers       map[handlerKey]*CollisionHandler
	defaultHandler *CollisionHandler
}

func newCollisionHandlers() collisionHandlers {
	return collisionHandlers{
		handlers:       map[handlerKey]*CollisionHandler{},
		defaultHandler: newCollisionHandler(0, 0),
	}
}

func (h *collisionHandlers) get(a, b CollisionType) *CollisionHandler {
	key := newHandlerKey(a, b)
	if handler, ok := h.handlers[key]; ok {
		return handler
	}
	handler := newCollisionHandler(a, b)
	h.handlers[key] = handler
	return handler
}

func (h *collisionHandlers) lookup(a, b CollisionType) *CollisionHandler {
	if handler, ok := h.handlers[newHandlerKey(a, b)]; ok {
		return handler
	}
	return h.defaultHandler
}
