package game

import (
	"fmt"
	"math"
)

// searchPlan is the bounded random search nested inside Investigate once the
// initial lead is reached and nothing turns up. The zero value is inactive.
type searchPlan struct {
	active       bool
	attemptsLeft int
	originX      float64 // last known position the points scatter around
	originY      float64
	targetX      float64
	targetY      float64
	walking      bool // heading to the point vs dwelling at it
	dwellLeft    float64
}

// updateInvestigate drives the Investigate state: walk to the lead, dwell
// investigationTime, then run the search plan. Exhausting the plan clears
// the alert visual and reverts to Patrol/Idle. Renewed detection escalates
// out of here in the detection phase, aborting the rest via the exit hook.
func (g *Guard) updateInvestigate(ctx *TickContext, dt float64) {
	tn := ctx.Tuning

	if !g.investigateArrived {
		if g.moveToward(g.investigateX, g.investigateY, tn.Guard.InvestigateSpeed, ctx, dt) {
			g.investigateArrived = true
			g.investigateDwell = tn.Guard.InvestigationTime
			ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "search", "lead_reached",
				fmt.Sprintf("(%.0f,%.0f)", g.investigateX, g.investigateY), 0)
		}
		return
	}

	if !g.search.active {
		g.investigateDwell -= dt
		if g.investigateDwell > 0 {
			return
		}
		if tn.Search.MaxAttempts <= 0 {
			g.giveUpSearch(ctx)
			return
		}
		g.beginSearch(ctx)
		return
	}

	g.updateSearch(ctx, dt)
}

// beginSearch arms the plan around the investigation target and picks the
// first point.
func (g *Guard) beginSearch(ctx *TickContext) {
	g.search = searchPlan{
		active:       true,
		attemptsLeft: ctx.Tuning.Search.MaxAttempts,
		originX:      g.investigateX,
		originY:      g.investigateY,
	}
	ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "search", "begin",
		fmt.Sprintf("%d points around (%.0f,%.0f)", g.search.attemptsLeft, g.search.originX, g.search.originY), 0)
	g.pickSearchPoint(ctx)
}

// pickSearchPoint consumes one attempt and aims at a uniformly random point
// inside searchRadius of the origin.
func (g *Guard) pickSearchPoint(ctx *TickContext) {
	g.search.attemptsLeft--
	ang := ctx.RNG.Float64() * 2 * math.Pi
	r := ctx.Tuning.Search.Radius * math.Sqrt(ctx.RNG.Float64())
	g.search.targetX = g.search.originX + math.Cos(ang)*r
	g.search.targetY = g.search.originY + math.Sin(ang)*r
	g.search.walking = true
	g.path = nil
	ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "search", "point",
		fmt.Sprintf("(%.0f,%.0f) %d left", g.search.targetX, g.search.targetY, g.search.attemptsLeft), 0)
}

// updateSearch visits the current point for timePerSearchLocation, moving on
// until the attempts run out.
func (g *Guard) updateSearch(ctx *TickContext, dt float64) {
	if g.search.walking {
		if g.moveToward(g.search.targetX, g.search.targetY, ctx.Tuning.Guard.InvestigateSpeed, ctx, dt) {
			g.search.walking = false
			g.search.dwellLeft = ctx.Tuning.Search.TimePerLocation
		}
		return
	}
	g.search.dwellLeft -= dt
	if g.search.dwellLeft > 0 {
		return
	}
	if g.search.attemptsLeft <= 0 {
		g.giveUpSearch(ctx)
		return
	}
	g.pickSearchPoint(ctx)
}

// giveUpSearch ends the hunt: the alert visual clears and the guard goes
// back to its resting state.
func (g *Guard) giveUpSearch(ctx *TickContext) {
	g.alertVisual = false
	ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "search", "exhausted",
		fmt.Sprintf("at (%.0f,%.0f)", g.x, g.y), 0)
	ctx.Emit(SimEvent{Kind: EvSearchExhausted, Tick: ctx.Tick, Agent: g.label, X: g.x, Y: g.y})
	g.revertState(ctx)
}
