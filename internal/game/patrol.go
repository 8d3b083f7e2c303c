package game

import (
	"fmt"
	"math"
)

const repathDist = 8.0 // replan when the goal drifts this far from the cached path goal

// updatePatrol walks the waypoint route: move to route[routeIndex], dwell
// waitAtPoint seconds on arrival, then advance the index with wrap-around.
func (g *Guard) updatePatrol(ctx *TickContext, dt float64) {
	if len(g.route) == 0 {
		g.setState(StateIdle, ctx)
		return
	}
	if g.dwellLeft > 0 {
		g.dwellLeft -= dt
		if g.dwellLeft <= 0 {
			g.routeIndex = (g.routeIndex + 1) % len(g.route)
			ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "move", "waypoint_next",
				fmt.Sprintf("#%d", g.routeIndex), float64(g.routeIndex))
		}
		return
	}
	wp := g.route[g.routeIndex]
	if g.moveToward(wp[0], wp[1], ctx.Tuning.Guard.PatrolSpeed, ctx, dt) {
		g.dwellLeft = ctx.Tuning.Guard.WaitAtPoint
		if g.dwellLeft <= 0 {
			g.routeIndex = (g.routeIndex + 1) % len(g.route)
		}
	}
}

// moveToward advances along a grid path to (tx,ty) at the given speed,
// consuming a per-tick distance budget across waypoints and turning the
// facing as it goes. Returns true once within arriveRadius of the target.
func (g *Guard) moveToward(tx, ty, speed float64, ctx *TickContext, dt float64) bool {
	if dist(g.x, g.y, tx, ty) <= arriveRadius {
		return true
	}
	g.ensurePath(tx, ty, ctx)

	prevX, prevY := g.x, g.y
	remaining := speed * dt
	for remaining > 0 && g.pathIndex < len(g.path) {
		wp := g.path[g.pathIndex]
		dx := wp[0] - g.x
		dy := wp[1] - g.y
		d := math.Sqrt(dx*dx + dy*dy)

		if d > 1e-6 {
			g.vision.UpdateHeading(math.Atan2(dy, dx), ctx.Tuning.Guard.TurnRate*dt)
		}

		if d <= remaining {
			g.x = wp[0]
			g.y = wp[1]
			remaining -= d
			g.pathIndex++
		} else {
			g.x += (dx / d) * remaining
			g.y += (dy / d) * remaining
			remaining = 0
		}
	}
	if dt > 0 {
		g.vx = (g.x - prevX) / dt
		g.vy = (g.y - prevY) / dt
	}
	return dist(g.x, g.y, tx, ty) <= arriveRadius
}

// ensurePath keeps a cached path to the goal, replanning when the goal moved
// or the old path is spent. Falls back to a direct hop when the grid finds
// nothing, so guards never freeze on a bad query.
func (g *Guard) ensurePath(tx, ty float64, ctx *TickContext) {
	goalMoved := dist(g.pathGoalX, g.pathGoalY, tx, ty) > repathDist
	if g.path != nil && !goalMoved && g.pathIndex < len(g.path) {
		return
	}
	g.pathGoalX, g.pathGoalY = tx, ty
	if ctx.Nav != nil {
		g.path = ctx.Nav.FindPath(g.x, g.y, tx, ty)
	} else {
		g.path = nil
	}
	if g.path == nil {
		g.path = [][2]float64{{tx, ty}}
	} else {
		// The grid path ends at the goal cell center; finish on the exact
		// target so arrival checks can close.
		g.path = append(g.path, [2]float64{tx, ty})
	}
	g.pathIndex = 0
}

// moveDirect walks straight at (tx,ty), sliding along obstacle edges rather
// than path-planning. Used by Chase. Returns true within arriveRadius.
func (g *Guard) moveDirect(tx, ty, speed float64, ctx *TickContext, dt float64) bool {
	dx := tx - g.x
	dy := ty - g.y
	d := math.Sqrt(dx*dx + dy*dy)
	if d <= arriveRadius {
		return true
	}
	g.vision.UpdateHeading(math.Atan2(dy, dx), ctx.Tuning.Guard.TurnRate*dt)

	step := speed * dt
	if step > d {
		step = d
	}
	nx, ny := slideMove(g.x, g.y, (dx/d)*step, (dy/d)*step, ctx.Obstacles, guardRadius)
	if dt > 0 {
		g.vx = (nx - g.x) / dt
		g.vy = (ny - g.y) / dt
	}
	g.x, g.y = nx, ny
	return dist(g.x, g.y, tx, ty) <= arriveRadius
}

// slideMove applies the displacement (dx,dy) to (x,y), and when the full
// move would land inside an obstacle tries each axis alone so movers slide
// along walls instead of sticking to them.
func slideMove(x, y, dx, dy float64, obstacles []rect, pad float64) (float64, float64) {
	free := func(px, py float64) bool {
		for _, o := range obstacles {
			if px >= float64(o.x)-pad && px <= float64(o.x+o.w)+pad &&
				py >= float64(o.y)-pad && py <= float64(o.y+o.h)+pad {
				return false
			}
		}
		return true
	}
	if free(x+dx, y+dy) {
		return x + dx, y + dy
	}
	if free(x+dx, y) {
		return x + dx, y
	}
	if free(x, y+dy) {
		return x, y + dy
	}
	return x, y
}
