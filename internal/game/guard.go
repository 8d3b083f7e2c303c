package game

import (
	"fmt"
	"math"
)

const (
	guardRadius  = 6.0 // body radius in world units
	arriveRadius = 3.0 // how close counts as "reached the point"
)

// Guard is one autonomous agent. All archetypes share this struct and the
// state machine in fsm.go; archetype-specific data rides along unused for
// the others.
type Guard struct {
	id    int
	label string
	arch  Archetype

	x, y   float64
	vx, vy float64 // last applied velocity, units/sec
	vision VisionState

	state            GuardState
	stateEnteredAt   float64 // sim seconds
	stateEnteredTick int

	// Patrol
	route      [][2]float64 // shared read-only scene data
	routeIndex int
	dwellLeft  float64

	// Path following
	path                 [][2]float64
	pathIndex            int
	pathGoalX, pathGoalY float64

	// Suspicion
	suspicion              SuspicionMeter
	suspicionArmed         bool // rearmed below threshold; one trigger per crossing
	lastNoiseX, lastNoiseY float64

	// Detection
	detected               bool
	lastDetectedAt         float64
	lastKnownX, lastKnownY float64

	// Investigate + nested search
	investigateX, investigateY float64
	investigateArrived         bool
	investigateDwell           float64
	search                     searchPlan

	alertVisual    bool // "!" marker; cleared when a search exhausts
	inCaptureRange bool
	collidable     bool

	// Stationary
	facingFlipLeft float64
	desiredHeading float64

	// Scripted
	seq *Sequence

	speechText string
	speechLeft float64
	lastBarkAt float64
}

// NewGuard creates a guard at (x,y) facing the given heading (radians).
// The initial FSM state is assigned by applyInitialState during scene init.
func NewGuard(id int, arch Archetype, x, y, facing float64, tn *Tuning) *Guard {
	return &Guard{
		id:             id,
		label:          fmt.Sprintf("G%d", id),
		arch:           arch,
		x:              x,
		y:              y,
		vision:         NewVisionState(facing, tn.Guard.FOVDeg*math.Pi/180.0, tn.Guard.DetectionRange),
		state:          StateIdle,
		suspicion:      NewSuspicionMeter(tn.Suspicion.Max, tn.Suspicion.DecayRate),
		suspicionArmed: true,
		collidable:     true,
		facingFlipLeft: tn.Guard.FacingFlipInterval,
		desiredHeading: facing,
		lastBarkAt:     -1e9,
	}
}

// applyInitialState assigns the archetype's starting state. A Patroller
// without a route degrades to Idle and the fault is logged (non-fatal).
func (g *Guard) applyInitialState(log *SimLog) {
	switch g.arch {
	case ArchPatroller:
		if len(g.route) > 0 {
			g.state = StatePatrol
			return
		}
		log.Add(0, g.label, g.arch.short(), "config", "degrade_idle",
			"patroller with no route", 0)
		g.state = StateIdle
	case ArchStationary:
		g.state = StateIdle
	case ArchSleeper:
		g.state = StateSleeping
	case ArchScripted:
		g.state = StateIdle
	}
}

// Update runs the guard's per-tick suspicion and state drivers.
// Detection has already run for this tick (scene phase order).
func (g *Guard) Update(ctx *TickContext) {
	if g.state == StateDead {
		return
	}
	dt := ctx.DT
	g.vx, g.vy = 0, 0
	g.updateSuspicion(ctx, dt)

	switch g.state {
	case StateIdle:
		g.updateIdle(ctx, dt)
	case StatePatrol:
		g.updatePatrol(ctx, dt)
	case StateInvestigate:
		g.updateInvestigate(ctx, dt)
	case StateChase:
		g.updateChase(ctx, dt)
	case StateAlert:
		g.updateAlert(ctx, dt)
	case StateSleeping:
		// exits only via Wake
	}
}

// updateSuspicion accumulates noise from an unhidden moving target, decays
// on quiet ticks, and fires the Investigate escalation once per threshold
// crossing while Idle/Patrol. Sleeping guards hear nothing.
func (g *Guard) updateSuspicion(ctx *TickContext, dt float64) {
	if g.state == StateSleeping {
		return
	}
	gained := 0.0
	p := ctx.Player
	if p != nil && p.IsMoving() && !p.Stealth.IsHidden() {
		d := dist(g.x, g.y, p.X, p.Y)
		gained = g.suspicion.AddNoise(d, ctx.Tuning.Suspicion.NoiseRadius,
			ctx.Tuning.Suspicion.NoiseGain, dt)
		if gained > 0 {
			g.lastNoiseX, g.lastNoiseY = p.X, p.Y
			ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "suspicion", "noise",
				fmt.Sprintf("%.3f (+%.3f)", g.suspicion.Level, gained), g.suspicion.Level)
		}
	}
	if gained == 0 {
		g.suspicion.Decay(dt)
	}

	thr := ctx.Tuning.Suspicion.Threshold
	if g.suspicion.Level < thr {
		g.suspicionArmed = true
		return
	}
	if g.suspicionArmed && (g.state == StateIdle || g.state == StatePatrol) {
		g.suspicionArmed = false
		g.alertVisual = true
		ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "suspicion", "threshold_cross",
			fmt.Sprintf("%.2f at (%.0f,%.0f)", g.suspicion.Level, g.lastNoiseX, g.lastNoiseY),
			g.suspicion.Level)
		g.Investigate(g.lastNoiseX, g.lastNoiseY, ctx)
	}
}

// updateIdle runs the archetype's idle habit: patrollers promote themselves
// to Patrol when a route exists, stationaries scan by flipping facing,
// scripted guards advance their sequence.
func (g *Guard) updateIdle(ctx *TickContext, dt float64) {
	switch g.arch {
	case ArchPatroller:
		if len(g.route) > 0 {
			g.setState(StatePatrol, ctx)
		}
	case ArchStationary:
		g.facingFlipLeft -= dt
		if g.facingFlipLeft <= 0 {
			g.facingFlipLeft = ctx.Tuning.Guard.FacingFlipInterval
			g.desiredHeading = normalizeAngle(g.desiredHeading + math.Pi)
			ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "move", "facing_flip",
				fmt.Sprintf("%.2frad", g.desiredHeading), g.desiredHeading)
		}
		g.vision.UpdateHeading(g.desiredHeading, ctx.Tuning.Guard.TurnRate*dt)
	case ArchScripted:
		if g.seq != nil && !g.seq.Done() {
			g.seq.Tick(g, ctx, dt)
		}
	}
}

// updateChase pursues the last known position in a straight line at chase
// speed. Fires the capture signal on entering the capture radius and falls
// back to Investigate(lastKnown) when contact has been lost for longer than
// losePlayerTime.
func (g *Guard) updateChase(ctx *TickContext, dt float64) {
	tn := ctx.Tuning
	g.moveDirect(g.lastKnownX, g.lastKnownY, tn.Guard.ChaseSpeed, ctx, dt)

	if p := ctx.Player; p != nil {
		d := dist(g.x, g.y, p.X, p.Y)
		if d < tn.Guard.CaptureRadius {
			if !g.inCaptureRange {
				g.inCaptureRange = true
				ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "capture", "reached",
					fmt.Sprintf("dist %.1f", d), d)
				ctx.Emit(SimEvent{Kind: EvCapture, Tick: ctx.Tick, Agent: g.label, X: g.x, Y: g.y})
			}
		} else {
			g.inCaptureRange = false
		}
	}

	if ctx.Now-g.lastDetectedAt > tn.Guard.LosePlayerTime {
		ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "detect", "lost",
			fmt.Sprintf("%.1fs since contact", ctx.Now-g.lastDetectedAt), 0)
		g.Investigate(g.lastKnownX, g.lastKnownY, ctx)
	}
}

// updateAlert holds position until the cooldown elapses, then reverts.
func (g *Guard) updateAlert(ctx *TickContext, dt float64) {
	if ctx.Now-g.stateEnteredAt >= ctx.Tuning.Guard.AlertCooldown {
		g.revertState(ctx)
	}
}

// --- External operations (host-facing; also used internally) ---

// SetPatrolRoute replaces the guard's waypoint route. Points are shared
// read-only scene data. Clearing the route of a walking patroller drops it
// back to Idle on its next update.
func (g *Guard) SetPatrolRoute(points [][2]float64) {
	g.route = points
	g.routeIndex = 0
	g.dwellLeft = 0
	g.path = nil
}

// Investigate sends the guard to check a position. Ignored when Dead or
// Sleeping; a guard already investigating retargets to the fresh lead.
func (g *Guard) Investigate(x, y float64, ctx *TickContext) {
	if g.state == StateDead || g.state == StateSleeping {
		return
	}
	if g.state == StateInvestigate {
		g.investigateX, g.investigateY = x, y
		g.investigateArrived = false
		g.investigateDwell = 0
		g.search = searchPlan{}
		g.path = nil
		ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "fsm", "investigate_retarget",
			fmt.Sprintf("(%.0f,%.0f)", x, y), 0)
		return
	}
	g.investigateX, g.investigateY = x, y
	g.setState(StateInvestigate, ctx)
}

// ReceiveAlert handles a delivered AlertEvent: suspicion pins to max and the
// guard investigates the alert position. Guards already in Chase stay on
// their target; Dead guards ignore everything. A Sleeper passes through
// Alert on its way to Investigate.
func (g *Guard) ReceiveAlert(x, y float64, ctx *TickContext) {
	if g.state == StateDead || g.state == StateChase {
		return
	}
	g.suspicion.Pin()
	g.suspicionArmed = false
	g.alertVisual = true
	ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "suspicion", "pinned",
		"alert received", g.suspicion.Level)
	if g.state == StateSleeping {
		g.setState(StateAlert, ctx)
	}
	g.Investigate(x, y, ctx)
}

// Wake rouses a sleeping guard into Alert. No-op for guards already awake.
func (g *Guard) Wake(ctx *TickContext) {
	if g.state != StateSleeping {
		return
	}
	g.setState(StateAlert, ctx)
}

// Kill puts the guard into the terminal Dead state.
func (g *Guard) Kill(ctx *TickContext) {
	g.setState(StateDead, ctx)
}

// --- Read accessors ---

// State returns the current FSM state.
func (g *Guard) State() GuardState { return g.state }

// IsTargetDetected reports this tick's detection flag.
func (g *Guard) IsTargetDetected() bool { return g.detected }

// Position returns the guard's world position.
func (g *Guard) Position() (float64, float64) { return g.x, g.y }

// Label returns the guard's log label, e.g. "G2".
func (g *Guard) Label() string { return g.label }

// Arch returns the guard's archetype.
func (g *Guard) Arch() Archetype { return g.arch }

// SuspicionLevel returns the current suspicion value.
func (g *Guard) SuspicionLevel() float64 { return g.suspicion.Level }

// LastKnown returns the last known target position from detection.
func (g *Guard) LastKnown() (float64, float64) { return g.lastKnownX, g.lastKnownY }

// Heading returns the current facing in radians.
func (g *Guard) Heading() float64 { return g.vision.Heading }

// Collidable reports whether the host should keep collision for this body.
func (g *Guard) Collidable() bool { return g.collidable }

// AlertVisual reports whether the "!" marker should be shown.
func (g *Guard) AlertVisual() bool { return g.alertVisual }
