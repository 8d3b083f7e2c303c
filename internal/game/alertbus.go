package game

import "fmt"

// AlertEvent is one guard's detection broadcast: where the target was seen,
// when, and who shouted. Transient; consumed the tick it is delivered.
type AlertEvent struct {
	X, Y   float64 // origin position receivers will investigate
	Tick   int
	Source int // broadcasting guard id
}

// AlertBus queues alerts raised during detection resolution and delivers
// them synchronously before the tick ends, after every guard has resolved
// detection. Anything posted during delivery itself is deferred one tick,
// so an alert can never chain into another within the same step.
type AlertBus struct {
	queue      []AlertEvent
	deferred   []AlertEvent
	delivering bool
}

// NewAlertBus returns an empty bus.
func NewAlertBus() *AlertBus {
	return &AlertBus{}
}

// Post enqueues an alert for this tick's delivery phase. Posts that arrive
// while delivery is running land in next tick's queue.
func (ab *AlertBus) Post(ev AlertEvent) {
	if ab.delivering {
		ab.deferred = append(ab.deferred, ev)
		return
	}
	ab.queue = append(ab.queue, ev)
}

// Pending reports how many alerts await delivery.
func (ab *AlertBus) Pending() int { return len(ab.queue) }

// Flush delivers every queued alert to each living guard within alertRadius
// of the broadcaster, excluding the broadcaster itself. Returns the number
// of deliveries made.
func (ab *AlertBus) Flush(ctx *TickContext, guards []*Guard) int {
	if len(ab.queue) == 0 {
		return 0
	}
	ab.delivering = true
	delivered := 0

	for _, ev := range ab.queue {
		src := findGuard(guards, ev.Source)
		for _, g := range guards {
			if g.id == ev.Source || g.state == StateDead {
				continue
			}
			if src != nil && dist(src.x, src.y, g.x, g.y) > ctx.Tuning.Alert.Radius {
				continue
			}
			before := g.state
			g.ReceiveAlert(ev.X, ev.Y, ctx)
			delivered++
			ctx.Log.Add(ctx.Tick, g.label, g.arch.short(), "alert", "deliver",
				fmt.Sprintf("from G%d, origin (%.0f,%.0f), was %s", ev.Source, ev.X, ev.Y, before), 0)
			ctx.Emit(SimEvent{Kind: EvAlertDelivered, Tick: ctx.Tick, Agent: g.label, X: ev.X, Y: ev.Y})
		}
	}

	ab.delivering = false
	ab.queue = ab.queue[:0]
	if len(ab.deferred) > 0 {
		ctx.Log.Add(ctx.Tick, "--", "--", "alert", "deferred",
			fmt.Sprintf("%d alert(s) pushed to next tick", len(ab.deferred)), float64(len(ab.deferred)))
		ab.queue = append(ab.queue, ab.deferred...)
		ab.deferred = ab.deferred[:0]
	}
	return delivered
}

// findGuard returns the guard with the given id, or nil.
func findGuard(guards []*Guard, id int) *Guard {
	for _, g := range guards {
		if g.id == id {
			return g
		}
	}
	return nil
}
