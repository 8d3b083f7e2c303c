package game

import "math"

// Player is the protagonist: the host layer feeds its velocity each tick
// (input or script) and the sim derives movement, noise, and stealth from
// it. The player makes no decisions of its own.
type Player struct {
	X, Y   float64
	VX, VY float64 // requested velocity, units/sec
	Speed  float64 // walk speed used by scripted movement

	Stealth *StealthState

	moving bool
	script *Sequence
	label  string
}

// NewPlayer creates a player at (x,y). The stealth tracker is attached by
// the scene once the light sampler exists.
func NewPlayer(x, y, walkSpeed float64) *Player {
	return &Player{X: x, Y: y, Speed: walkSpeed, label: "P"}
}

// SetVelocity is the host input: desired velocity in units/sec.
func (p *Player) SetVelocity(vx, vy float64) {
	p.VX = vx
	p.VY = vy
}

// SetScript attaches a step sequence that drives the player on headless
// runs. Manual velocity input still applies on ticks the script is done.
func (p *Player) SetScript(steps []SeqStep) {
	p.script = NewSequence(steps)
}

// Update applies the script (if any) and the current velocity with wall
// sliding, then refreshes the moving flag from the distance covered.
func (p *Player) Update(ctx *TickContext, dt float64) {
	prevX, prevY := p.X, p.Y

	if p.script != nil && !p.script.Done() {
		p.script.Tick(p, ctx, dt)
	} else if p.VX != 0 || p.VY != 0 {
		p.X, p.Y = slideMove(p.X, p.Y, p.VX*dt, p.VY*dt, ctx.Obstacles, playerRadius)
	}

	p.moving = dist(prevX, prevY, p.X, p.Y) > 1e-9
}

// IsMoving reports whether the player covered ground this tick.
func (p *Player) IsMoving() bool { return p.moving }

// Position returns the player's world position.
func (p *Player) Position() (float64, float64) { return p.X, p.Y }

// Label returns the player's log label.
func (p *Player) Label() string { return p.label }

const playerRadius = 5.0

// --- Player as a sequence subject ---

func (p *Player) SeqMove(tx, ty float64, ctx *TickContext, dt float64) bool {
	dx := tx - p.X
	dy := ty - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d <= arriveRadius {
		return true
	}
	step := p.Speed * dt
	if step > d {
		step = d
	}
	p.X, p.Y = slideMove(p.X, p.Y, (dx/d)*step, (dy/d)*step, ctx.Obstacles, playerRadius)
	return dist(p.X, p.Y, tx, ty) <= arriveRadius
}

func (p *Player) SeqFace(heading float64, ctx *TickContext, dt float64) bool {
	return true // the player has no facing the sim cares about
}

func (p *Player) SeqSay(text string, ctx *TickContext) {
	ctx.Log.Add(ctx.Tick, p.label, "plyr", "speech", "line", text, 0)
	if ctx.Thoughts != nil {
		ctx.Thoughts.Add(ctx.Tick, p.label, StateIdle, text)
	}
}
