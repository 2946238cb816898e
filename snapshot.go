package b2d

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a serializable copy of a world: settings, bodies with their
// shapes, and joints. Contacts are not stored, they are found again on the
// first step after a restore.
type Snapshot struct {
	Settings Settings        `msgpack:"settings"`
	Bodies   []BodySnapshot  `msgpack:"bodies"`
	Joints   []JointSnapshot `msgpack:"joints"`
}

type BodySnapshot struct {
	Type            int             `msgpack:"type"`
	Position        Vector          `msgpack:"position"`
	Angle           float64         `msgpack:"angle"`
	Velocity        Vector          `msgpack:"velocity"`
	AngularVelocity float64         `msgpack:"angularVelocity"`
	LinearDamping   float64         `msgpack:"linearDamping"`
	AngularDamping  float64         `msgpack:"angularDamping"`
	FixedRotation   bool            `msgpack:"fixedRotation"`
	Bullet          bool            `msgpack:"bullet"`
	SleepingAllowed bool            `msgpack:"sleepingAllowed"`
	Awake           bool            `msgpack:"awake"`
	SleepTime       float64         `msgpack:"sleepTime"`
	Shapes          []ShapeSnapshot `msgpack:"shapes"`
}

type ShapeSnapshot struct {
	Type ShapeType `msgpack:"type"`

	// circles
	Radius float64 `msgpack:"radius,omitempty"`
	Center Vector  `msgpack:"center"`
	// polygons, in body space
	Verts []Vector `msgpack:"verts,omitempty"`

	Friction      float64       `msgpack:"friction"`
	Restitution   float64       `msgpack:"restitution"`
	Density       float64       `msgpack:"density"`
	Sensor        bool          `msgpack:"sensor"`
	Filter        ShapeFilter   `msgpack:"filter"`
	CollisionType CollisionType `msgpack:"collisionType"`
}

type JointKind string

const (
	JOINT_DISTANCE JointKind = "distance"
	JOINT_REVOLUTE JointKind = "revolute"
	JOINT_WELD     JointKind = "weld"
	JOINT_FRICTION JointKind = "friction"
	JOINT_MOUSE    JointKind = "mouse"

	JOINT_PRISMATIC JointKind = "prismatic"
	JOINT_LINE      JointKind = "line"
	JOINT_PULLEY    JointKind = "pulley"
	JOINT_GEAR      JointKind = "gear"
)

// JointSnapshot stores the union of the joint parameters. Anchors are local
// to their body.
type JointSnapshot struct {
	Kind             JointKind `msgpack:"kind"`
	BodyA            int       `msgpack:"bodyA"`
	BodyB            int       `msgpack:"bodyB"`
	CollideConnected bool      `msgpack:"collideConnected"`
	Enabled          bool      `msgpack:"enabled"`

	AnchorA        Vector  `msgpack:"anchorA"`
	AnchorB        Vector  `msgpack:"anchorB"`
	ReferenceAngle float64 `msgpack:"referenceAngle,omitempty"`

	Length       float64 `msgpack:"length,omitempty"`
	FrequencyHz  float64 `msgpack:"frequencyHz,omitempty"`
	DampingRatio float64 `msgpack:"dampingRatio,omitempty"`

	EnableLimit    bool    `msgpack:"enableLimit,omitempty"`
	LowerAngle     float64 `msgpack:"lowerAngle,omitempty"`
	UpperAngle     float64 `msgpack:"upperAngle,omitempty"`
	EnableMotor    bool    `msgpack:"enableMotor,omitempty"`
	MaxMotorTorque float64 `msgpack:"maxMotorTorque,omitempty"`
	MotorSpeed     float64 `msgpack:"motorSpeed,omitempty"`

	MaxForce  float64 `msgpack:"maxForce,omitempty"`
	MaxTorque float64 `msgpack:"maxTorque,omitempty"`
	Target    Vector  `msgpack:"target"`

	// sliders, the axis is local to A
	Axis             Vector  `msgpack:"axis"`
	LowerTranslation float64 `msgpack:"lowerTranslation,omitempty"`
	UpperTranslation float64 `msgpack:"upperTranslation,omitempty"`
	MaxMotorForce    float64 `msgpack:"maxMotorForce,omitempty"`

	// pulleys, ground anchors are in world space
	GroundAnchorA Vector  `msgpack:"groundAnchorA"`
	GroundAnchorB Vector  `msgpack:"groundAnchorB"`
	Ratio         float64 `msgpack:"ratio,omitempty"`
	Constant      float64 `msgpack:"constant,omitempty"`
	MaxLengthA    float64 `msgpack:"maxLengthA,omitempty"`
	MaxLengthB    float64 `msgpack:"maxLengthB,omitempty"`

	// gears, indices of the geared joints in the snapshot
	JointA int `msgpack:"jointA,omitempty"`
	JointB int `msgpack:"jointB,omitempty"`
}

// Capture copies the state of a world that is not being stepped.
func Capture(world *World) *Snapshot {
	snapshot := &Snapshot{
		Settings: world.settings,
		Bodies:   make([]BodySnapshot, 0, len(world.bodies)),
		Joints:   make([]JointSnapshot, 0, len(world.joints)),
	}

	for _, body := range world.bodies {
		snapshot.Bodies = append(snapshot.Bodies, captureBody(body))
	}
	for _, joint := range world.joints {
		snapshot.Joints = append(snapshot.Joints, captureJoint(joint))
	}
	for i, joint := range world.joints {
		if gear, ok := joint.Class.(*GearJoint); ok {
			snapshot.Joints[i].JointA = gear.joint1.index
			snapshot.Joints[i].JointB = gear.joint2.index
		}
	}
	return snapshot
}

func captureBody(body *Body) BodySnapshot {
	bs := BodySnapshot{
		Type:            body.bodyType,
		Position:        body.Position(),
		Angle:           body.Angle(),
		Velocity:        body.v,
		AngularVelocity: body.w,
		LinearDamping:   body.linearDamping,
		AngularDamping:  body.angularDamping,
		FixedRotation:   body.fixedRotation,
		Bullet:          body.bullet,
		SleepingAllowed: body.sleepingAllowed,
		Awake:           body.awake,
		SleepTime:       body.sleepTime,
	}

	for _, shape := range body.shapes {
		ss := ShapeSnapshot{
			Type:          shape.Type(),
			Friction:      shape.friction,
			Restitution:   shape.restitution,
			Density:       shape.density,
			Sensor:        shape.sensor,
			Filter:        shape.filter,
			CollisionType: shape.collisionType,
		}
		switch class := shape.Class.(type) {
		case *Circle:
			ss.Radius = class.r
			ss.Center = class.c
		case *PolyShape:
			ss.Verts = append([]Vector(nil), class.verts...)
		}
		bs.Shapes = append(bs.Shapes, ss)
	}
	return bs
}

func captureJoint(joint *Joint) JointSnapshot {
	js := JointSnapshot{
		BodyA:            joint.a.index,
		BodyB:            joint.b.index,
		CollideConnected: joint.collideConnected,
		Enabled:          joint.enabled,
	}

	switch class := joint.Class.(type) {
	case *DistanceJoint:
		js.Kind = JOINT_DISTANCE
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.Length = class.Length
		js.FrequencyHz = class.FrequencyHz
		js.DampingRatio = class.DampingRatio
	case *RevoluteJoint:
		js.Kind = JOINT_REVOLUTE
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.ReferenceAngle = class.ReferenceAngle
		js.EnableLimit = class.enableLimit
		js.LowerAngle, js.UpperAngle = class.lowerAngle, class.upperAngle
		js.EnableMotor = class.enableMotor
		js.MaxMotorTorque = class.maxMotorTorque
		js.MotorSpeed = class.motorSpeed
	case *WeldJoint:
		js.Kind = JOINT_WELD
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.ReferenceAngle = class.ReferenceAngle
	case *FrictionJoint:
		js.Kind = JOINT_FRICTION
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.MaxForce = class.MaxForce
		js.MaxTorque = class.MaxTorque
	case *MouseJoint:
		js.Kind = JOINT_MOUSE
		js.AnchorB = class.AnchorB
		js.Target = class.target
		js.MaxForce = class.MaxForce
		js.FrequencyHz = class.FrequencyHz
		js.DampingRatio = class.DampingRatio
	case *PrismaticJoint:
		js.Kind = JOINT_PRISMATIC
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.Axis = class.LocalAxis
		js.ReferenceAngle = class.ReferenceAngle
		js.EnableLimit = class.enableLimit
		js.LowerTranslation, js.UpperTranslation = class.lowerTranslation, class.upperTranslation
		js.EnableMotor = class.enableMotor
		js.MaxMotorForce = class.maxMotorForce
		js.MotorSpeed = class.motorSpeed
	case *LineJoint:
		js.Kind = JOINT_LINE
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.Axis = class.LocalAxis
		js.EnableLimit = class.enableLimit
		js.LowerTranslation, js.UpperTranslation = class.lowerTranslation, class.upperTranslation
		js.EnableMotor = class.enableMotor
		js.MaxMotorForce = class.maxMotorForce
		js.MotorSpeed = class.motorSpeed
	case *PulleyJoint:
		js.Kind = JOINT_PULLEY
		js.AnchorA, js.AnchorB = class.AnchorA, class.AnchorB
		js.GroundAnchorA, js.GroundAnchorB = class.GroundAnchorA, class.GroundAnchorB
		js.Ratio = class.Ratio
		js.Constant = class.constant
		js.MaxLengthA, js.MaxLengthB = class.maxLengthA, class.maxLengthB
	case *GearJoint:
		js.Kind = JOINT_GEAR
		js.Ratio = class.Ratio
		js.Constant = class.constant
	}
	return js
}

func (s *Snapshot) Encode(w io.Writer) error {
	return errors.Wrap(msgpack.NewEncoder(w).Encode(s), "encode snapshot")
}

func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	snapshot := &Snapshot{}
	if err := msgpack.NewDecoder(r).Decode(snapshot); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return snapshot, nil
}

// Restore builds a new world from the snapshot.
func (s *Snapshot) Restore() (*World, error) {
	if err := s.Settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "restore settings")
	}
	world := NewWorldWithSettings(s.Settings)

	bodies := make([]*Body, 0, len(s.Bodies))
	for i, bs := range s.Bodies {
		body, err := restoreBody(world, bs)
		if err != nil {
			return nil, errors.Wrapf(err, "restore body %d", i)
		}
		bodies = append(bodies, body)
	}

	// gears need the joints they couple, so they come last
	joints := make([]*Joint, len(s.Joints))
	for _, gears := range []bool{false, true} {
		for i, js := range s.Joints {
			if (js.Kind == JOINT_GEAR) != gears {
				continue
			}
			if js.BodyA < 0 || js.BodyA >= len(bodies) || js.BodyB < 0 || js.BodyB >= len(bodies) || js.BodyA == js.BodyB {
				return nil, errors.Errorf("restore joint %d: bad bodies %d and %d", i, js.BodyA, js.BodyB)
			}
			var joint *Joint
			var err error
			if gears {
				joint, err = restoreGear(js, joints)
			} else {
				joint, err = restoreJoint(js, bodies[js.BodyA], bodies[js.BodyB])
			}
			if err != nil {
				return nil, errors.Wrapf(err, "restore joint %d", i)
			}
			joints[i] = world.AddJoint(joint)
		}
	}

	// joints wake their bodies when added
	for i, bs := range s.Bodies {
		if !bs.Awake {
			bodies[i].Sleep()
		}
		bodies[i].sleepTime = bs.SleepTime
	}
	return world, nil
}

func restoreBody(world *World, bs BodySnapshot) (*Body, error) {
	if bs.Type < BODY_DYNAMIC || bs.Type > BODY_STATIC {
		return nil, errors.Errorf("unknown body type %d", bs.Type)
	}

	body := newBody(bs.Type)
	body.SetTransform(bs.Position, bs.Angle)
	body.linearDamping = bs.LinearDamping
	body.angularDamping = bs.AngularDamping
	body.fixedRotation = bs.FixedRotation
	body.bullet = bs.Bullet
	body.sleepingAllowed = bs.SleepingAllowed
	world.AddBody(body)

	for i, ss := range bs.Shapes {
		var shape *Shape
		switch ss.Type {
		case SHAPE_CIRCLE:
			shape = NewCircle(body, ss.Radius, ss.Center)
		case SHAPE_POLYGON:
			if len(ss.Verts) < 3 || len(ss.Verts) > MaxPolygonVertices {
				return nil, errors.Errorf("shape %d: polygon with %d vertices", i, len(ss.Verts))
			}
			shape = NewPolyShapeRaw(body, ss.Verts)
		default:
			return nil, errors.Errorf("shape %d: unknown shape type %d", i, ss.Type)
		}
		shape.friction = ss.Friction
		shape.restitution = ss.Restitution
		shape.density = ss.Density
		shape.sensor = ss.Sensor
		shape.filter = ss.Filter
		shape.collisionType = ss.CollisionType
		world.AddShape(shape)
	}

	// mass data is final once every shape is in
	body.v = bs.Velocity
	body.w = bs.AngularVelocity
	return body, nil
}

func restoreJoint(js JointSnapshot, a, b *Body) (*Joint, error) {
	var joint *Joint

	switch js.Kind {
	case JOINT_DISTANCE:
		joint = NewDistanceJoint(a, b, a.LocalToWorld(js.AnchorA), b.LocalToWorld(js.AnchorB))
		class := joint.Class.(*DistanceJoint)
		class.Length = js.Length
		class.FrequencyHz = js.FrequencyHz
		class.DampingRatio = js.DampingRatio
	case JOINT_REVOLUTE:
		joint = NewRevoluteJoint(a, b, a.LocalToWorld(js.AnchorA))
		class := joint.Class.(*RevoluteJoint)
		class.AnchorB = js.AnchorB
		class.ReferenceAngle = js.ReferenceAngle
		class.enableLimit = js.EnableLimit
		class.lowerAngle, class.upperAngle = js.LowerAngle, js.UpperAngle
		class.enableMotor = js.EnableMotor
		class.maxMotorTorque = js.MaxMotorTorque
		class.motorSpeed = js.MotorSpeed
	case JOINT_WELD:
		joint = NewWeldJoint(a, b, a.LocalToWorld(js.AnchorA))
		class := joint.Class.(*WeldJoint)
		class.AnchorB = js.AnchorB
		class.ReferenceAngle = js.ReferenceAngle
	case JOINT_FRICTION:
		joint = NewFrictionJoint(a, b, a.LocalToWorld(js.AnchorA), js.MaxForce, js.MaxTorque)
		joint.Class.(*FrictionJoint).AnchorB = js.AnchorB
	case JOINT_MOUSE:
		joint = NewMouseJoint(a, b, js.Target, js.MaxForce)
		class := joint.Class.(*MouseJoint)
		class.AnchorB = js.AnchorB
		class.FrequencyHz = js.FrequencyHz
		class.DampingRatio = js.DampingRatio
	case JOINT_PRISMATIC:
		joint = NewPrismaticJoint(a, b, a.LocalToWorld(js.AnchorA), a.transform.Vect(js.Axis))
		class := joint.Class.(*PrismaticJoint)
		class.AnchorB = js.AnchorB
		class.ReferenceAngle = js.ReferenceAngle
		class.enableLimit = js.EnableLimit
		class.lowerTranslation, class.upperTranslation = js.LowerTranslation, js.UpperTranslation
		class.enableMotor = js.EnableMotor
		class.maxMotorForce = js.MaxMotorForce
		class.motorSpeed = js.MotorSpeed
	case JOINT_LINE:
		joint = NewLineJoint(a, b, a.LocalToWorld(js.AnchorA), a.transform.Vect(js.Axis))
		class := joint.Class.(*LineJoint)
		class.AnchorB = js.AnchorB
		class.enableLimit = js.EnableLimit
		class.lowerTranslation, class.upperTranslation = js.LowerTranslation, js.UpperTranslation
		class.enableMotor = js.EnableMotor
		class.maxMotorForce = js.MaxMotorForce
		class.motorSpeed = js.MotorSpeed
	case JOINT_PULLEY:
		if js.Ratio <= Epsilon {
			return nil, errors.Errorf("pulley ratio %v", js.Ratio)
		}
		joint = NewPulleyJoint(a, b, js.GroundAnchorA, js.GroundAnchorB, a.LocalToWorld(js.AnchorA), b.LocalToWorld(js.AnchorB), js.Ratio)
		class := joint.Class.(*PulleyJoint)
		class.constant = js.Constant
		class.maxLengthA, class.maxLengthB = js.MaxLengthA, js.MaxLengthB
	default:
		return nil, errors.Errorf("unknown joint kind %q", js.Kind)
	}

	joint.collideConnected = js.CollideConnected
	joint.enabled = js.Enabled
	return joint, nil
}

func restoreGear(js JointSnapshot, joints []*Joint) (*Joint, error) {
	if js.JointA < 0 || js.JointA >= len(joints) || js.JointB < 0 || js.JointB >= len(joints) {
		return nil, errors.Errorf("gear joints %d and %d out of range", js.JointA, js.JointB)
	}
	joint1, joint2 := joints[js.JointA], joints[js.JointB]
	if joint1 == nil || joint2 == nil || !isGearable(joint1) || !isGearable(joint2) {
		return nil, errors.Errorf("gear joints %d and %d are not revolute or prismatic", js.JointA, js.JointB)
	}
	if joint1.a.bodyType != BODY_STATIC || joint2.a.bodyType != BODY_STATIC {
		return nil, errors.New("geared joints must hang off a static body")
	}

	joint := NewGearJoint(joint1, joint2, js.Ratio)
	joint.Class.(*GearJoint).constant = js.Constant
	joint.collideConnected = js.CollideConnected
	joint.enabled = js.Enabled
	return joint, nil
}
