package game

import "fmt"

// TestSim is a headless harness used exclusively by tests. It assembles a
// level from options, builds and initializes a Scene, and drives it with a
// fixed dt. All structured output lands in SimLog.
type TestSim struct {
	Scene  *Scene
	SimLog *SimLog
	DT     float64

	level   *Level
	tuning  *Tuning
	seed    int64
	verbose bool
	script  []SeqStep
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // world size, geometry, lights, seed, tuning; applied first
	simOptAgent                      // player and guards; applied second
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithWorldSize sets the playfield dimensions.
func WithWorldSize(w, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level.Width = w
		ts.level.Height = h
	}}
}

// WithObstacle adds an axis-aligned blocker.
func WithObstacle(x, y, w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level.Obstacles = append(ts.level.Obstacles, rect{x: x, y: y, w: w, h: h})
	}}
}

// WithLight adds a point light.
func WithLight(x, y, radius, intensity float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level.Lights = append(ts.level.Lights, LightSpawn{
			X: x, Y: y, Radius: radius, Intensity: intensity, Kind: LightPoint,
		})
	}}
}

// WithGlobalLight adds a positionless light that reaches everywhere.
func WithGlobalLight(intensity float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level.Lights = append(ts.level.Lights, LightSpawn{
			Intensity: intensity, Kind: LightGlobal,
		})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithDT overrides the per-tick timestep (default 1/60s).
func WithDT(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.DT = dt
	}}
}

// WithTuning mutates the default tuning before the scene is built.
func WithTuning(mut func(*Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		mut(ts.tuning)
	}}
}

// WithPlayer places the player start.
func WithPlayer(x, y float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.level.PlayerX = x
		ts.level.PlayerY = y
	}}
}

// WithPlayerScript drives the player with a step sequence instead of
// per-tick velocity calls.
func WithPlayerScript(steps ...SeqStep) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.script = steps
	}}
}

// WithPatroller adds a patrolling guard with the given waypoint route.
func WithPatroller(x, y float64, route ...[2]float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.level.Guards = append(ts.level.Guards, GuardSpawn{
			Archetype: ArchPatroller, X: x, Y: y, Route: route,
		})
	}}
}

// WithStationary adds a fixed-post guard facing the given direction.
func WithStationary(x, y, facingDeg float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.level.Guards = append(ts.level.Guards, GuardSpawn{
			Archetype: ArchStationary, X: x, Y: y, FacingDeg: facingDeg,
		})
	}}
}

// WithSleeper adds a sleeping guard.
func WithSleeper(x, y float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.level.Guards = append(ts.level.Guards, GuardSpawn{
			Archetype: ArchSleeper, X: x, Y: y,
		})
	}}
}

// WithScriptedGuard adds a guard driven by a step sequence.
func WithScriptedGuard(x, y float64, steps ...SeqStep) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.level.Guards = append(ts.level.Guards, GuardSpawn{
			Archetype: ArchScripted, X: x, Y: y, Script: steps,
		})
	}}
}

// NewTestSim constructs a harness from the given options in two ordered
// passes (infrastructure, then agents), builds the scene, and initializes
// it. A setup that fails Init is a test bug, so it panics.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		DT:     1.0 / 60.0,
		seed:   1,
		tuning: DefaultTuning(),
		level: &Level{
			Name: "test", Width: 1280, Height: 720,
			PlayerX: 40, PlayerY: 40,
		},
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(ts)
		}
	}
	ts.Scene = NewScene(ts.level, ts.tuning, ts.seed)
	ts.Scene.Log().SetVerbose(ts.verbose)
	if len(ts.script) > 0 {
		ts.Scene.Player().SetScript(ts.script)
	}
	if err := ts.Scene.Init(); err != nil {
		panic(fmt.Sprintf("test sim init: %v", err))
	}
	ts.SimLog = ts.Scene.Log()
	return ts
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Scene.Tick(ts.DT)
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if the
// predicate returns true. Returns the tick at which the predicate was
// satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Scene.Tick(ts.DT)
		if predicate(ts) {
			return ts.Scene.TickCount()
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Scene.TickCount()
}

// Player returns the scene's player.
func (ts *TestSim) Player() *Player {
	return ts.Scene.Player()
}

// Guards returns all guards in spawn order.
func (ts *TestSim) Guards() []*Guard {
	return ts.Scene.Guards()
}

// Guard returns a guard by label ("G1", "G2", ...), or nil.
func (ts *TestSim) Guard(label string) *Guard {
	return ts.Scene.GuardByLabel(label)
}

// SetPlayerVelocity feeds movement input for subsequent ticks.
func (ts *TestSim) SetPlayerVelocity(vx, vy float64) {
	ts.Scene.Player().SetVelocity(vx, vy)
}

// PlacePlayer teleports the player. The stealth tracker picks up the new
// position on its next sample.
func (ts *TestSim) PlacePlayer(x, y float64) {
	p := ts.Scene.Player()
	p.X = x
	p.Y = y
}

// KillGuard drops a guard into the terminal Dead state, as a host would.
func (ts *TestSim) KillGuard(label string) {
	if g := ts.Guard(label); g != nil {
		g.Kill(ts.Scene.HostContext())
	}
}

// WakeGuard rouses a sleeping guard.
func (ts *TestSim) WakeGuard(label string) {
	if g := ts.Guard(label); g != nil {
		g.Wake(ts.Scene.HostContext())
	}
}

// SendInvestigate orders a guard to check a position.
func (ts *TestSim) SendInvestigate(label string, x, y float64) {
	if g := ts.Guard(label); g != nil {
		g.Investigate(x, y, ts.Scene.HostContext())
	}
}

// SendAlert delivers a synthetic alert directly to one guard.
func (ts *TestSim) SendAlert(label string, x, y float64) {
	if g := ts.Guard(label); g != nil {
		g.ReceiveAlert(x, y, ts.Scene.HostContext())
	}
}

// Snapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick   int
	Player PlayerSnapshot
	Guards []GuardSnapshot
}

// PlayerSnapshot is a copy of the player's observable state at a tick.
type PlayerSnapshot struct {
	X, Y   float64
	Hidden bool
	Light  float64
}

// GuardSnapshot is a lightweight copy of a guard's state at a tick.
type GuardSnapshot struct {
	Label     string
	Arch      Archetype
	X, Y      float64
	State     GuardState
	Suspicion float64
	Detected  bool
}

// Snapshot returns the current state of the player and all guards.
func (ts *TestSim) Snapshot() SimSnapshot {
	p := ts.Scene.Player()
	snap := SimSnapshot{
		Tick: ts.Scene.TickCount(),
		Player: PlayerSnapshot{
			X: p.X, Y: p.Y,
			Hidden: p.Stealth.IsHidden(),
			Light:  p.Stealth.CurrentLight(),
		},
	}
	for _, g := range ts.Scene.Guards() {
		snap.Guards = append(snap.Guards, GuardSnapshot{
			Label:     g.label,
			Arch:      g.arch,
			X:         g.x,
			Y:         g.y,
			State:     g.state,
			Suspicion: g.suspicion.Level,
			Detected:  g.detected,
		})
	}
	return snap
}
