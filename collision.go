package b2d

// CollisionFunc fills manifold for two shapes in canonical order. It must be
// deterministic and assign ContactIDs consistently between calls.
type CollisionFunc func(manifold *Manifold, a *Shape, xfA Transform, b *Shape, xfB Transform)

type collisionRegister struct {
	collide CollisionFunc
	// primary is false when the shapes have to be swapped before calling collide.
	primary bool
}

// collisionTable maps a pair of shape types to its manifold generator. Each
// contact manager builds its own.
type collisionTable [SHAPE_NUM][SHAPE_NUM]collisionRegister

func newCollisionTable() *collisionTable {
	table := &collisionTable{}
	table.register(CircleToCircle, SHAPE_CIRCLE, SHAPE_CIRCLE)
	table.register(PolyToCircle, SHAPE_POLYGON, SHAPE_CIRCLE)
	table.register(PolyToPoly, SHAPE_POLYGON, SHAPE_POLYGON)
	return table
}

func (table *collisionTable) register(f CollisionFunc, typeA, typeB ShapeType) {
	table[typeA][typeB] = collisionRegister{f, true}
	if typeA != typeB {
		table[typeB][typeA] = collisionRegister{f, false}
	}
}

func (table *collisionTable) lookup(typeA, typeB ShapeType) collisionRegister {
	return table[typeA][typeB]
}

// TestOverlap reports whether two shapes touch at the given transforms.
func TestOverlap(a *Shape, xfA Transform, b *Shape, xfB Transform) bool {
	register := defaultCollisionTable.lookup(a.Type(), b.Type())
	var manifold Manifold
	if register.primary {
		register.collide(&manifold, a, xfA, b, xfB)
	} else {
		register.collide(&manifold, b, xfB, a, xfA)
	}
	return manifold.PointCount > 0
}

// read only, used outside of a world
var defaultCollisionTable = newCollisionTable()
