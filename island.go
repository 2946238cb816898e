package b2d

import "math"

// Island is a set of bodies connected by touching contacts and joints. Islands
// are solved independently and go to sleep as a whole.
type Island struct {
	world *World

	bodies   []*Body
	contacts []*Contact
	joints   []*Joint
}

func newIsland(world *World) *Island {
	return &Island{world: world}
}

func (island *Island) AddBody(body *Body) {
	island.bodies = append(island.bodies, body)
}

func (island *Island) AddContact(contact *Contact) {
	island.contacts = append(island.contacts, contact)
}

func (island *Island) AddJoint(joint *Joint) {
	island.joints = append(island.joints, joint)
}

func (island *Island) Clear() {
	island.bodies = island.bodies[:0]
	island.contacts = island.contacts[:0]
	island.joints = island.joints[:0]
}

func (island *Island) BodyCount() int {
	return len(island.bodies)
}

// Solve advances the island by one step. Static bodies may be shared with
// other islands solved at the same time, so they are only ever read here.
func (island *Island) Solve(step *TimeStep, gravity Vector, allowSleep, positionCorrection bool) {
	dt := step.Dt

	for _, body := range island.bodies {
		if body.bodyType != BODY_DYNAMIC {
			continue
		}
		body.integrateVelocity(gravity, dt)
	}

	solver := NewContactSolver(step, island.contacts)
	solver.WarmStart()

	for _, joint := range island.joints {
		joint.Class.PreSolve(step)
	}

	for i := 0; i < step.VelocityIterations; i++ {
		for _, joint := range island.joints {
			joint.Class.SolveVelocity(step)
		}
		solver.SolveVelocityConstraints()
	}

	solver.StoreImpulses()

	for _, body := range island.bodies {
		if body.bodyType == BODY_STATIC {
			continue
		}
		body.integratePosition(dt)
	}

	if positionCorrection {
		for i := 0; i < step.PositionIterations; i++ {
			contactsOkay := solver.SolvePositionConstraints(ContactBaumgarte)

			jointsOkay := true
			for _, joint := range island.joints {
				jointOkay := joint.Class.SolvePosition(ContactBaumgarte)
				jointsOkay = jointsOkay && jointOkay
			}

			if contactsOkay && jointsOkay {
				break
			}
		}
	}

	for _, body := range island.bodies {
		if body.bodyType == BODY_DYNAMIC && !assert(body.isValid(), "Body state is not finite after solving, rolling back the step") {
			body.rollback()
		}
	}

	island.report(solver)

	if !allowSleep {
		return
	}

	minSleepTime := INFINITY
	const linTolSqr = LinearSleepTolerance * LinearSleepTolerance
	const angTolSqr = AngularSleepTolerance * AngularSleepTolerance

	for _, body := range island.bodies {
		if body.bodyType == BODY_STATIC {
			continue
		}

		moving := body.w*body.w > angTolSqr || body.v.LengthSq() > linTolSqr
		if body.bodyType == BODY_KINEMATIC {
			// kinematic bodies never sleep but a moving one keeps its island awake
			body.sleepTime = 0
			if moving {
				minSleepTime = 0
			}
			continue
		}

		if !body.sleepingAllowed || moving {
			body.sleepTime = 0
			minSleepTime = 0
		} else {
			body.sleepTime += dt
			minSleepTime = math.Min(minSleepTime, body.sleepTime)
		}
	}

	if minSleepTime >= TimeToSleep {
		for _, body := range island.bodies {
			if body.bodyType == BODY_DYNAMIC {
				body.Sleep()
			}
		}
	}
}

// report hands the solved impulses to the post-solve callbacks. Callbacks of
// islands solved in parallel are serialized.
func (island *Island) report(solver *ContactSolver) {
	if len(island.contacts) == 0 {
		return
	}

	island.world.hookMu.Lock()
	defer island.world.hookMu.Unlock()

	for i, contact := range island.contacts {
		cc := &solver.constraints[i]

		impulse := ContactImpulse{Count: cc.pointCount}
		for j := 0; j < cc.pointCount; j++ {
			impulse.NormalImpulses[j] = cc.points[j].normalImpulse
			impulse.TangentImpulses[j] = cc.points[j].tangentImpulse
		}

		handler := contact.handler
		handler.PostSolveFunc(contact, &impulse, island.world, handler.UserData)
	}
}
