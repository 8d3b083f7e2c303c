package game

import (
	"fmt"
	"math"
)

// VisionState is a guard's look direction and sensing envelope.
type VisionState struct {
	Heading  float64 // radians, 0 = right, pi/2 = down
	FOV      float64 // radians, total arc width
	MaxRange float64 // world units
}

// NewVisionState creates a vision state facing initialHeading.
func NewVisionState(initialHeading, fov, maxRange float64) VisionState {
	return VisionState{Heading: initialHeading, FOV: fov, MaxRange: maxRange}
}

// InCone returns true if the point (px,py) is within range and inside the
// vision arc of an observer at (ox,oy).
func (v *VisionState) InCone(ox, oy, px, py float64) bool {
	dx := px - ox
	dy := py - oy
	d := math.Sqrt(dx*dx + dy*dy)
	if d > v.MaxRange || d < 1e-6 {
		return false
	}
	diff := normalizeAngle(math.Atan2(dy, dx) - v.Heading)
	half := v.FOV / 2.0
	return diff >= -half && diff <= half
}

// UpdateHeading rotates the heading toward targetAngle by at most maxStep
// radians, snapping when already within the step.
func (v *VisionState) UpdateHeading(targetAngle, maxStep float64) {
	diff := normalizeAngle(targetAngle - v.Heading)
	if math.Abs(diff) <= maxStep {
		v.Heading = targetAngle
		return
	}
	if diff > 0 {
		v.Heading = normalizeAngle(v.Heading + maxStep)
	} else {
		v.Heading = normalizeAngle(v.Heading - maxStep)
	}
}

// canSeeTarget runs the four-part detection test against the player:
// within range, inside the vision arc, unobstructed line of sight against
// the obstacle set (the target itself never blocks), and not hidden.
func (g *Guard) canSeeTarget(ctx *TickContext) bool {
	p := ctx.Player
	if p == nil {
		return false
	}
	if !g.vision.InCone(g.x, g.y, p.X, p.Y) {
		return false
	}
	if !HasLineOfSight(g.x, g.y, p.X, p.Y, ctx.Obstacles) {
		return false
	}
	return !p.Stealth.IsHidden()
}

// runDetection refreshes the detection flag. On the rising edge it pins
// suspicion, escalates to Chase, fires the target-detected event exactly
// once, and posts an AlertEvent for delivery after every guard has resolved
// detection this tick. Callers skip Dead and Sleeping guards.
func (g *Guard) runDetection(ctx *TickContext) {
	sees := g.canSeeTarget(ctx)

	if sees {
		g.lastDetectedAt = ctx.Now
		g.lastKnownX, g.lastKnownY = ctx.Player.X, ctx.Player.Y
	}

	if sees && !g.detected {
		g.detected = true
		g.suspicion.Pin()
		g.suspicionArmed = false
		ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "detect", "edge_rise",
			fmt.Sprintf("target at (%.0f,%.0f)", g.lastKnownX, g.lastKnownY), 0)
		ctx.Emit(SimEvent{Kind: EvTargetDetected, Tick: ctx.Tick, Agent: g.label,
			X: g.lastKnownX, Y: g.lastKnownY})
		g.setState(StateChase, ctx)
		ctx.Bus.Post(AlertEvent{X: g.lastKnownX, Y: g.lastKnownY, Tick: ctx.Tick, Source: g.id})
		ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "alert", "broadcast",
			fmt.Sprintf("origin (%.0f,%.0f)", g.lastKnownX, g.lastKnownY), 0)
		ctx.Emit(SimEvent{Kind: EvAlertBroadcast, Tick: ctx.Tick, Agent: g.label,
			X: g.lastKnownX, Y: g.lastKnownY})
		return
	}

	if !sees && g.detected {
		g.detected = false
		ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "detect", "edge_fall", "", 0)
	}
}
