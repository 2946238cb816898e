package b2d

type ShapeType int

const (
	SHAPE_CIRCLE ShapeType = iota
	SHAPE_POLYGON
	SHAPE_NUM
)

func (t ShapeType) String() string {
	switch t {
	case SHAPE_CIRCLE:
		return "circle"
	case SHAPE_POLYGON:
		return "polygon"
	}
	return "unknown"
}

// ShapeClass is the geometry behind a Shape.
type ShapeClass interface {
	Type() ShapeType
	Radius() float64
	ComputeBB(xf Transform) BB
	MassInfo(density float64) ShapeMassInfo
	TestPoint(xf Transform, p Vector) bool
	RayCast(xf Transform, a, b Vector, maxFraction float64, info *RayCastInfo) bool
}

// ShapeMassInfo holds the mass properties of a single shape. The moment is
// taken about the body origin.
type ShapeMassInfo struct {
	m, i, area float64
	cog        Vector
}

type RayCastInfo struct {
	// The shape that was hit, nil if nothing was hit.
	Shape  *Shape
	Point  Vector
	Normal Vector
	// The fraction along the query segment in the range [0, 1].
	Fraction float64
}

type CollisionType uint

const (
	NO_GROUP       uint = 0
	ALL_CATEGORIES uint = ^uint(0)
)

type ShapeFilter struct {
	// Two objects with the same non-zero group value do not collide.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	Categories uint
	// A bitmask of user definable category types that this object collides with.
	Mask uint
}

var SHAPE_FILTER_ALL = ShapeFilter{NO_GROUP, ALL_CATEGORIES, ALL_CATEGORIES}

func NewShapeFilter(group, categories, mask uint) ShapeFilter {
	return ShapeFilter{group, categories, mask}
}

func (a ShapeFilter) Reject(b ShapeFilter) bool {
	return (a.Group != 0 && a.Group == b.Group) ||
		(a.Categories&b.Mask) == 0 ||
		(b.Categories&a.Mask) == 0
}

// Shape attaches geometry and material to a body. Shapes are built with
// NewCircle, NewBox or NewPolyShape and then handed to World.AddShape.
type Shape struct {
	Class ShapeClass
	body  *Body
	world *World

	friction, restitution, density float64
	sensor                         bool

	filter        ShapeFilter
	collisionType CollisionType

	// swept world bounds from the last synchronize
	bb      BB
	proxyId int
	// unique within the world, keys contacts
	hashid int

	UserData interface{}
}

func newShape(class ShapeClass, body *Body) *Shape {
	return &Shape{
		Class:    class,
		body:     body,
		friction: 0.2,
		density:  1,
		filter:   SHAPE_FILTER_ALL,
		proxyId:  nullNode,
	}
}

func (s *Shape) Type() ShapeType {
	return s.Class.Type()
}

func (s *Shape) Body() *Body {
	return s.body
}

func (s *Shape) World() *World {
	return s.world
}

func (s *Shape) BB() BB {
	return s.bb
}

func (s *Shape) Friction() float64 {
	return s.friction
}

// SetFriction only affects contacts created afterwards.
func (s *Shape) SetFriction(friction float64) {
	assert(friction >= 0, "Friction must be non-negative")
	s.friction = friction
}

func (s *Shape) Restitution() float64 {
	return s.restitution
}

func (s *Shape) SetRestitution(restitution float64) {
	s.restitution = restitution
}

func (s *Shape) Density() float64 {
	return s.density
}

func (s *Shape) SetDensity(density float64) {
	if !assert(density >= 0 && isValid(density), "Density must be a non-negative number") {
		return
	}
	s.density = density
	if s.world != nil {
		s.body.ResetMassData()
	}
}

func (s *Shape) MassInfo() ShapeMassInfo {
	return s.Class.MassInfo(s.density)
}

func (s *Shape) Mass() float64 {
	return s.MassInfo().m
}

func (s *Shape) Sensor() bool {
	return s.sensor
}

// SetSensor makes the shape detect overlaps without producing a collision response.
func (s *Shape) SetSensor(sensor bool) {
	if s.sensor == sensor {
		return
	}
	s.sensor = sensor
	s.body.Activate()
	s.flagForFiltering()
}

func (s *Shape) Filter() ShapeFilter {
	return s.filter
}

func (s *Shape) SetFilter(filter ShapeFilter) {
	s.filter = filter
	s.flagForFiltering()
}

func (s *Shape) CollisionType() CollisionType {
	return s.collisionType
}

func (s *Shape) SetCollisionType(collisionType CollisionType) {
	s.collisionType = collisionType
	s.flagForFiltering()
}

// flagForFiltering makes the contact manager re-run the filter and handler
// lookup for every contact of this shape on the next step.
func (s *Shape) flagForFiltering() {
	if s.body == nil {
		return
	}
	for _, contact := range s.body.contacts {
		if contact.shapeA == s || contact.shapeB == s {
			contact.flagForFiltering()
		}
	}
	if s.world != nil && s.proxyId != nullNode {
		// pick up pairs the old filter rejected
		s.world.contactManager.broadPhase.TouchProxy(s.proxyId)
	}
}

func (s *Shape) TestPoint(p Vector) bool {
	return s.Class.TestPoint(s.body.transform, p)
}

func (s *Shape) RayCast(a, b Vector, maxFraction float64, info *RayCastInfo) bool {
	if s.Class.RayCast(s.body.transform, a, b, maxFraction, info) {
		info.Shape = s
		return true
	}
	return false
}

func (s *Shape) createProxy(broadPhase *BroadPhase, xf Transform) {
	assert(s.proxyId == nullNode, "Shape already has a proxy")
	s.bb = s.Class.ComputeBB(xf)
	s.proxyId = broadPhase.CreateProxy(s.bb, s)
}

func (s *Shape) destroyProxy(broadPhase *BroadPhase) {
	if s.proxyId == nullNode {
		return
	}
	broadPhase.DestroyProxy(s.proxyId)
	s.proxyId = nullNode
}

// synchronize moves the proxy to cover the swept shape between two transforms.
func (s *Shape) synchronize(broadPhase *BroadPhase, xf1, xf2 Transform) {
	if s.proxyId == nullNode {
		return
	}
	bb1 := s.Class.ComputeBB(xf1)
	bb2 := s.Class.ComputeBB(xf2)
	s.bb = bb1.Merge(bb2)
	displacement := xf2.Translation().Sub(xf1.Translation())
	broadPhase.MoveProxy(s.proxyId, s.bb, displacement)
}
