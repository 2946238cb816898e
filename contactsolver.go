package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// block solver is used while k11^2 < maxConditionNumber * det(K)
const maxConditionNumber = 1000.0

type contactConstraintPoint struct {
	localPoint     Vector
	rA, rB         Vector
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type contactConstraint struct {
	points       [MaxManifoldPoints]contactConstraintPoint
	localNormal  Vector
	localPoint   Vector
	normal       Vector
	normalMass   mgl64.Mat2
	K            mgl64.Mat2
	bodyA        *Body
	bodyB        *Body
	manifoldType ManifoldType
	radius       float64
	friction     float64
	pointCount   int
	manifold     *Manifold
}

// ContactSolver runs sequential impulses over the contacts of one island.
type ContactSolver struct {
	constraints []contactConstraint

	// when set, only this body moves and the rest have infinite mass
	toiBody *Body
}

func NewContactSolver(step *TimeStep, contacts []*Contact) *ContactSolver {
	return newContactSolver(step, contacts, nil)
}

// NewTOIContactSolver solves the contacts of a body rewound to its time of
// impact. Everything it touches is treated as fixed.
func NewTOIContactSolver(step *TimeStep, contacts []*Contact, toiBody *Body) *ContactSolver {
	return newContactSolver(step, contacts, toiBody)
}

func newContactSolver(step *TimeStep, contacts []*Contact, toiBody *Body) *ContactSolver {
	solver := &ContactSolver{
		constraints: make([]contactConstraint, len(contacts)),
		toiBody:     toiBody,
	}

	for i, contact := range contacts {
		shapeA := contact.shapeA
		shapeB := contact.shapeB
		radiusA := shapeA.Class.Radius()
		radiusB := shapeB.Class.Radius()
		bodyA := shapeA.body
		bodyB := shapeB.body
		manifold := &contact.manifold

		assert(manifold.PointCount > 0, "Solving a contact without points")

		var wm WorldManifold
		wm.Initialize(manifold, bodyA.transform, radiusA, bodyB.transform, radiusB)

		cc := &solver.constraints[i]
		cc.bodyA = bodyA
		cc.bodyB = bodyB
		cc.manifold = manifold
		cc.normal = wm.Normal
		cc.pointCount = manifold.PointCount
		cc.friction = contact.friction
		cc.localNormal = manifold.LocalNormal
		cc.localPoint = manifold.LocalPoint
		cc.radius = radiusA + radiusB
		cc.manifoldType = manifold.Type

		vA, wA := bodyA.v, bodyA.w
		vB, wB := bodyB.v, bodyB.w
		mA, iA, mB, iB := solver.masses(cc)
		tangent := cc.normal.ReversePerp()

		for j := 0; j < cc.pointCount; j++ {
			cp := &manifold.Points[j]
			ccp := &cc.points[j]

			if step.WarmStarting {
				ccp.normalImpulse = step.DtRatio * cp.NormalImpulse
				ccp.tangentImpulse = step.DtRatio * cp.TangentImpulse
			}
			ccp.localPoint = cp.LocalPoint

			ccp.rA = wm.Points[j].Sub(bodyA.sweep.C)
			ccp.rB = wm.Points[j].Sub(bodyB.sweep.C)

			rnA := ccp.rA.Cross(cc.normal)
			rnB := ccp.rB.Cross(cc.normal)
			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			assert(kNormal > Epsilon, "Contact has a singular normal mass")
			if kNormal > 0 {
				ccp.normalMass = 1 / kNormal
			}

			rtA := ccp.rA.Cross(tangent)
			rtB := ccp.rB.Cross(tangent)
			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			if kTangent > 0 {
				ccp.tangentMass = 1 / kTangent
			}

			// bounce only above the threshold speed
			vRel := cc.normal.Dot(vB.Add(ccp.rB.Perp().Mult(wB)).Sub(vA).Sub(ccp.rA.Perp().Mult(wA)))
			if vRel < -VelocityThreshold {
				ccp.velocityBias = -contact.restitution * vRel
			}
		}

		// prepare the block solver
		if cc.pointCount == 2 {
			ccp1 := &cc.points[0]
			ccp2 := &cc.points[1]

			invMassA, invIA, invMassB, invIB := mA, iA, mB, iB

			rn1A := ccp1.rA.Cross(cc.normal)
			rn1B := ccp1.rB.Cross(cc.normal)
			rn2A := ccp2.rA.Cross(cc.normal)
			rn2B := ccp2.rB.Cross(cc.normal)

			k11 := invMassA + invMassB + invIA*rn1A*rn1A + invIB*rn1B*rn1B
			k22 := invMassA + invMassB + invIA*rn2A*rn2A + invIB*rn2B*rn2B
			k12 := invMassA + invMassB + invIA*rn1A*rn2A + invIB*rn1B*rn2B

			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				// K is safe to invert
				cc.K = newMat22(Vector{k11, k12}, Vector{k12, k22})
				cc.normalMass = cc.K.Inv()
			} else {
				// the points are redundant, use one of them
				cc.pointCount = 1
			}
		}
	}

	return solver
}

func (solver *ContactSolver) masses(cc *contactConstraint) (mA, iA, mB, iB float64) {
	mA, iA = cc.bodyA.m_inv, cc.bodyA.i_inv
	mB, iB = cc.bodyB.m_inv, cc.bodyB.i_inv
	if solver.toiBody != nil {
		if cc.bodyA != solver.toiBody {
			mA, iA = 0, 0
		}
		if cc.bodyB != solver.toiBody {
			mB, iB = 0, 0
		}
	}
	return
}

// WarmStart applies the impulses carried over from the last step.
func (solver *ContactSolver) WarmStart() {
	for i := range solver.constraints {
		cc := &solver.constraints[i]
		bodyA := cc.bodyA
		bodyB := cc.bodyB
		vA, wA := bodyA.v, bodyA.w
		vB, wB := bodyB.v, bodyB.w
		mA, iA, mB, iB := solver.masses(cc)
		normal := cc.normal
		tangent := normal.ReversePerp()

		for j := 0; j < cc.pointCount; j++ {
			ccp := &cc.points[j]
			P := normal.Mult(ccp.normalImpulse).Add(tangent.Mult(ccp.tangentImpulse))
			wA -= iA * ccp.rA.Cross(P)
			vA = vA.Sub(P.Mult(mA))
			wB += iB * ccp.rB.Cross(P)
			vB = vB.Add(P.Mult(mB))
		}

		bodyA.setSolverVelocity(vA, wA)
		bodyB.setSolverVelocity(vB, wB)
	}
}

func (solver *ContactSolver) SolveVelocityConstraints() {
	for i := range solver.constraints {
		cc := &solver.constraints[i]
		bodyA := cc.bodyA
		bodyB := cc.bodyB

		vA, wA := bodyA.v, bodyA.w
		vB, wB := bodyB.v, bodyB.w
		mA, iA, mB, iB := solver.masses(cc)

		normal := cc.normal
		tangent := normal.ReversePerp()
		friction := cc.friction

		apply := func(rA, rB, P Vector) {
			vA = vA.Sub(P.Mult(mA))
			wA -= iA * rA.Cross(P)
			vB = vB.Add(P.Mult(mB))
			wB += iB * rB.Cross(P)
		}
		relativeVelocity := func(ccp *contactConstraintPoint) Vector {
			return vB.Add(ccp.rB.Perp().Mult(wB)).Sub(vA).Sub(ccp.rA.Perp().Mult(wA))
		}

		// friction first, non-penetration matters more
		for j := 0; j < cc.pointCount; j++ {
			ccp := &cc.points[j]

			vt := relativeVelocity(ccp).Dot(tangent)
			lambda := ccp.tangentMass * -vt

			maxFriction := friction * ccp.normalImpulse
			newImpulse := Clamp(ccp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - ccp.tangentImpulse
			ccp.tangentImpulse = newImpulse

			apply(ccp.rA, ccp.rB, tangent.Mult(lambda))
		}

		if cc.pointCount == 1 {
			ccp := &cc.points[0]

			vn := relativeVelocity(ccp).Dot(normal)
			lambda := -ccp.normalMass * (vn - ccp.velocityBias)

			// contacts only push
			newImpulse := math.Max(ccp.normalImpulse+lambda, 0)
			lambda = newImpulse - ccp.normalImpulse
			ccp.normalImpulse = newImpulse

			apply(ccp.rA, ccp.rB, normal.Mult(lambda))
		} else {
			// Block solver for the 2 point LCP
			//   vn = A * x + b, vn >= 0, x >= 0 and vn_i * x_i = 0
			// with vn the new normal velocities, x the new total impulses and
			// b the current normal velocities minus the bias. The accumulated
			// impulse a is removed first so the cases test x directly:
			//   vn = A * (x - a) + b' => b = b' - A * a
			cp1 := &cc.points[0]
			cp2 := &cc.points[1]

			a := Vector{cp1.normalImpulse, cp2.normalImpulse}
			assert(a.X >= 0 && a.Y >= 0, "Negative accumulated normal impulse")

			vn1 := relativeVelocity(cp1).Dot(normal)
			vn2 := relativeVelocity(cp2).Dot(normal)

			b := Vector{vn1 - cp1.velocityBias, vn2 - cp2.velocityBias}
			b = b.Sub(mulMat22(cc.K, a))

			applyBoth := func(x Vector) {
				d := x.Sub(a)
				apply(cp1.rA, cp1.rB, normal.Mult(d.X))
				apply(cp2.rA, cp2.rB, normal.Mult(d.Y))
				cp1.normalImpulse = x.X
				cp2.normalImpulse = x.Y
			}

			for {
				// case 1: both points stay in contact, vn = 0
				x := mulMat22(cc.normalMass, b).Neg()
				if x.X >= 0 && x.Y >= 0 {
					applyBoth(x)
					break
				}

				// case 2: point 1 in contact, point 2 separating
				x = Vector{-cp1.normalMass * b.X, 0}
				vn2 = cc.K[1]*x.X + b.Y
				if x.X >= 0 && vn2 >= 0 {
					applyBoth(x)
					break
				}

				// case 3: point 2 in contact, point 1 separating
				x = Vector{0, -cp2.normalMass * b.Y}
				vn1 = cc.K[2]*x.Y + b.X
				if x.Y >= 0 && vn1 >= 0 {
					applyBoth(x)
					break
				}

				// case 4: both separating
				x = Vector{}
				vn1 = b.X
				vn2 = b.Y
				if vn1 >= 0 && vn2 >= 0 {
					applyBoth(x)
					break
				}

				// no exact solution, fall back to one point at a time
				for j := 0; j < 2; j++ {
					ccp := &cc.points[j]
					vn := relativeVelocity(ccp).Dot(normal)
					lambda := -ccp.normalMass * (vn - ccp.velocityBias)
					newImpulse := math.Max(ccp.normalImpulse+lambda, 0)
					lambda = newImpulse - ccp.normalImpulse
					ccp.normalImpulse = newImpulse
					apply(ccp.rA, ccp.rB, normal.Mult(lambda))
				}
				break
			}
		}

		bodyA.setSolverVelocity(vA, wA)
		bodyB.setSolverVelocity(vB, wB)
	}
}

// StoreImpulses writes the accumulated impulses back for warm starting.
func (solver *ContactSolver) StoreImpulses() {
	for i := range solver.constraints {
		cc := &solver.constraints[i]
		for j := 0; j < cc.pointCount; j++ {
			cc.manifold.Points[j].NormalImpulse = cc.points[j].normalImpulse
			cc.manifold.Points[j].TangentImpulse = cc.points[j].tangentImpulse
		}
	}
}

// positionSolverManifold resolves one manifold point at the current body positions.
func positionSolverManifold(cc *contactConstraint, index int) (normal, point Vector, separation float64) {
	xfA := cc.bodyA.transform
	xfB := cc.bodyB.transform

	switch cc.manifoldType {
	case MANIFOLD_CIRCLES:
		pointA := xfA.Point(cc.localPoint)
		pointB := xfB.Point(cc.points[0].localPoint)
		normal = Vector{1, 0}
		if pointA.DistanceSq(pointB) > Epsilon*Epsilon {
			normal = pointB.Sub(pointA).Normalize()
		}
		point = pointA.Lerp(pointB, 0.5)
		separation = pointB.Sub(pointA).Dot(normal) - cc.radius

	case MANIFOLD_FACE_A:
		normal = xfA.Vect(cc.localNormal)
		planePoint := xfA.Point(cc.localPoint)
		clipPoint := xfB.Point(cc.points[index].localPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - cc.radius
		point = clipPoint

	case MANIFOLD_FACE_B:
		normal = xfB.Vect(cc.localNormal)
		planePoint := xfB.Point(cc.localPoint)
		clipPoint := xfA.Point(cc.points[index].localPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - cc.radius
		point = clipPoint

		// keep the normal pointing from A to B
		normal = normal.Neg()
	}
	return
}

// SolvePositionConstraints pushes overlapping shapes apart, leaving half
// of LinearSlop of overlap so contacts stay alive. It reports whether every
// point is within LinearSlop. A TOI solver only moves its body.
func (solver *ContactSolver) SolvePositionConstraints(baumgarte float64) bool {
	minSeparation := 0.0

	for i := range solver.constraints {
		cc := &solver.constraints[i]
		bodyA := cc.bodyA
		bodyB := cc.bodyB

		mA, iA, mB, iB := solver.masses(cc)

		for j := 0; j < cc.pointCount; j++ {
			normal, point, separation := positionSolverManifold(cc, j)

			rA := point.Sub(bodyA.sweep.C)
			rB := point.Sub(bodyB.sweep.C)

			minSeparation = math.Min(minSeparation, separation)

			// prevent large corrections and allow some slop
			C := Clamp(baumgarte*(separation+0.5*LinearSlop), -MaxLinearCorrection, 0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			K := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			impulse := 0.0
			if K > 0 {
				impulse = -C / K
			}

			P := normal.Mult(impulse)
			if mA != 0 || iA != 0 {
				bodyA.applySolverPosition(P.Mult(-mA), -iA*rA.Cross(P))
			}
			if mB != 0 || iB != 0 {
				bodyB.applySolverPosition(P.Mult(mB), iB*rB.Cross(P))
			}
		}
	}

	return minSeparation >= -LinearSlop
}
