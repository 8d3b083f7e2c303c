package game

import "fmt"

// GuardState is the high-level behaviour state of a guard.
type GuardState int

const (
	StateIdle        GuardState = iota // holding position, scanning
	StatePatrol                        // walking the waypoint route
	StateInvestigate                   // checking a lead, then searching nearby
	StateChase                         // pursuing the last known target position
	StateAlert                         // startled, rooted, deciding
	StateSleeping                      // unconscious until woken
	StateDead                          // terminal
)

func (gs GuardState) String() string {
	switch gs {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateInvestigate:
		return "investigate"
	case StateChase:
		return "chase"
	case StateAlert:
		return "alert"
	case StateSleeping:
		return "sleeping"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Archetype selects a guard's initial state and movement style. All
// archetypes share the same state machine and per-state drivers.
type Archetype int

const (
	ArchPatroller  Archetype = iota // walks a route
	ArchStationary                  // posted; flips facing while idle
	ArchSleeper                     // asleep until woken
	ArchScripted                    // runs a step sequence while idle
)

func (a Archetype) String() string {
	switch a {
	case ArchPatroller:
		return "patroller"
	case ArchStationary:
		return "stationary"
	case ArchSleeper:
		return "sleeper"
	case ArchScripted:
		return "scripted"
	default:
		return "unknown"
	}
}

// short returns the fixed-width log tag for the archetype.
func (a Archetype) short() string {
	switch a {
	case ArchPatroller:
		return "ptrl"
	case ArchStationary:
		return "stat"
	case ArchSleeper:
		return "slpr"
	case ArchScripted:
		return "scrp"
	default:
		return "??"
	}
}

// transitionLegal reports whether from→to is a defined edge. Requests off
// this table are ignored; the sim never halts on a bad request.
func transitionLegal(from, to GuardState) bool {
	switch from {
	case StateIdle:
		switch to {
		case StatePatrol, StateInvestigate, StateChase, StateAlert, StateDead:
			return true
		}
	case StatePatrol:
		switch to {
		case StateIdle, StateInvestigate, StateChase, StateAlert, StateDead:
			return true
		}
	case StateInvestigate:
		switch to {
		case StateIdle, StatePatrol, StateChase, StateDead:
			return true
		}
	case StateChase:
		switch to {
		case StateInvestigate, StateDead:
			return true
		}
	case StateAlert:
		switch to {
		case StateIdle, StatePatrol, StateInvestigate, StateChase, StateDead:
			return true
		}
	case StateSleeping:
		switch to {
		case StateAlert, StateDead:
			return true
		}
	case StateDead:
		// terminal
	}
	return false
}

// setState performs a transition: exit hook, swap, enter hook, log, event.
// Requesting the current state or an illegal edge is a no-op returning false.
func (g *Guard) setState(to GuardState, ctx *TickContext) bool {
	if g.state == to {
		return false
	}
	if !transitionLegal(g.state, to) {
		return false
	}
	from := g.state
	g.exitState(from)
	g.state = to
	g.stateEnteredAt = ctx.Now
	g.stateEnteredTick = ctx.Tick
	g.enterState(to, from, ctx)
	ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "fsm", "state_change",
		fmt.Sprintf("%s → %s", from, to), 0)
	ctx.Emit(SimEvent{Kind: EvStateChanged, Tick: ctx.Tick, Agent: g.label,
		State: to, PrevState: from, X: g.x, Y: g.y})
	return true
}

// enterState applies the per-state entry effects.
func (g *Guard) enterState(to, from GuardState, ctx *TickContext) {
	switch to {
	case StateIdle, StateAlert, StateSleeping:
		g.vx, g.vy = 0, 0
	case StateInvestigate:
		g.vx, g.vy = 0, 0
		g.investigateArrived = false
		g.investigateDwell = 0
		g.search = searchPlan{}
	case StateChase:
		g.alertVisual = true
		g.inCaptureRange = false
	case StateDead:
		g.vx, g.vy = 0, 0
		g.collidable = false
		g.alertVisual = false
		g.detected = false
		g.search = searchPlan{}
		g.path = nil
	}
	g.bark(to, from, ctx)
}

// exitState discards state-local work so a cancelled activity leaves no
// residue: pending search points, dwell clocks, and the current path.
func (g *Guard) exitState(from GuardState) {
	switch from {
	case StatePatrol, StateChase:
		g.path = nil
	case StateInvestigate:
		g.search = searchPlan{}
		g.investigateArrived = false
		g.investigateDwell = 0
		g.path = nil
	}
}

// revertState returns the guard to its resting state: Patrol when the
// archetype walks a route and one exists, Idle otherwise.
func (g *Guard) revertState(ctx *TickContext) {
	if g.arch == ArchPatroller && len(g.route) > 0 {
		g.setState(StatePatrol, ctx)
		return
	}
	g.setState(StateIdle, ctx)
}
