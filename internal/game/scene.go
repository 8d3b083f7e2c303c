package game

import (
	"fmt"
	"math/rand"
)

// SimEventKind labels the observable events the scene emits to listeners.
type SimEventKind int

const (
	EvHiddenChanged SimEventKind = iota // player hidden flag flipped
	EvStateChanged                      // a guard's FSM state changed
	EvTargetDetected                    // rising edge of a guard's detection
	EvAlertBroadcast                    // a guard posted an alert to the bus
	EvAlertDelivered                    // the bus delivered an alert to a guard
	EvCapture                           // a chasing guard closed to capture range
	EvSearchExhausted                   // a search gave up without a find
)

func (k SimEventKind) String() string {
	switch k {
	case EvHiddenChanged:
		return "hidden_changed"
	case EvStateChanged:
		return "state_changed"
	case EvTargetDetected:
		return "target_detected"
	case EvAlertBroadcast:
		return "alert_broadcast"
	case EvAlertDelivered:
		return "alert_delivered"
	case EvCapture:
		return "capture"
	case EvSearchExhausted:
		return "search_exhausted"
	}
	return "unknown"
}

// SimEvent is one observable moment of the simulation. Fields beyond Kind,
// Tick, and Agent are filled per kind: State/PrevState for state changes,
// Hidden for stealth flips, X/Y for anything with a position.
type SimEvent struct {
	Kind      SimEventKind
	Tick      int
	Agent     string // log label, e.g. "G2" or "P"
	State     GuardState
	PrevState GuardState
	Hidden    bool
	X, Y      float64
}

// SimListener receives scene events synchronously, on the sim tick that
// produced them. Listeners must not mutate the scene from the callback.
type SimListener interface {
	OnSimEvent(ev SimEvent)
}

// TickContext carries the per-tick view of the world that agents read and
// the services they call. Built fresh by the scene each tick; agents never
// retain it.
type TickContext struct {
	DT   float64
	Tick int
	Now  float64 // sim seconds since Init

	Player    *Player
	Obstacles []rect
	Nav       *NavGrid

	Bus      *AlertBus
	Log      *SimLog
	Thoughts *ThoughtLog
	RNG      *rand.Rand
	Tuning   *Tuning

	Emit func(ev SimEvent)
}

// Outcome accumulates the run's verdict. FirstDetectTick and CaptureTick
// stay -1 until the event happens.
type Outcome struct {
	FirstDetectTick int
	Detections      int
	Broadcasts      int
	Investigations  int
	Captured        bool
	CaptureTick     int
}

// Scene owns the whole simulation: world geometry, the light field, the
// player, the guards, the alert bus, and the logs. Hosts drive it with
// Init once and Tick per frame, and read back through the accessors.
type Scene struct {
	levelName     string
	width, height float64
	obstacles     []rect

	lights  *LightSet
	sampler *LightFieldSampler
	nav     *NavGrid

	player *Player
	guards []*Guard

	bus      *AlertBus
	log      *SimLog
	thoughts *ThoughtLog
	tuning   *Tuning
	rng      *rand.Rand

	listeners []SimListener

	pendingLights []LightSpawn

	seed    int64
	tick    int
	now     float64
	inited  bool
	outcome Outcome
}

// NewScene builds a scene from a level description. Nothing that can fail
// happens here; Init performs validation, light registration, and the
// initial stealth sample, and reports setup faults as errors.
func NewScene(level *Level, tn *Tuning, seed int64) *Scene {
	s := &Scene{
		levelName: level.Name,
		width:     level.Width,
		height:    level.Height,
		obstacles: append([]rect(nil), level.Obstacles...),
		lights:    NewLightSet(),
		bus:       NewAlertBus(),
		log:       NewSimLog(false),
		thoughts:  NewThoughtLog(),
		tuning:    tn,
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		outcome:   Outcome{FirstDetectTick: -1, CaptureTick: -1},
	}
	s.sampler = NewLightFieldSampler(s.lights, tn.Light.Ambient, tn.Light.RefreshInterval, tn.Light.QueryMargin)
	s.pendingLights = append(s.pendingLights, level.Lights...)

	s.player = NewPlayer(level.PlayerX, level.PlayerY, tn.Player.WalkSpeed)
	for i, gs := range level.Guards {
		g := NewGuard(i+1, gs.Archetype, gs.X, gs.Y, degToRad(gs.FacingDeg), tn)
		if len(gs.Route) > 0 {
			g.SetPatrolRoute(gs.Route)
		}
		if len(gs.Script) > 0 {
			g.SetScript(gs.Script)
		}
		s.guards = append(s.guards, g)
	}
	return s
}

// Init validates the scene, registers the level's lights, builds the nav
// grid, assigns each guard its archetype's starting state, and primes the
// player's stealth baseline. Must be called once before Tick.
func (s *Scene) Init() error {
	if s.inited {
		return fmt.Errorf("scene already initialized")
	}
	if s.player == nil {
		return fmt.Errorf("scene has no player")
	}
	if s.width <= 0 || s.height <= 0 {
		return fmt.Errorf("bad world size %gx%g", s.width, s.height)
	}
	for i, ls := range s.pendingLights {
		if _, err := s.lights.Register(ls.toLight()); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}
	s.pendingLights = nil

	s.nav = NewNavGrid(s.width, s.height, s.obstacles, guardRadius)

	for _, g := range s.guards {
		g.applyInitialState(s.log)
	}

	st := NewStealthState(s.sampler,
		s.tuning.Stealth.BaseThreshold,
		s.tuning.Stealth.MovementPenalty,
		s.tuning.Stealth.SampleInterval)
	st.OnHiddenChanged = func(hidden bool) {
		val := "exposed"
		if hidden {
			val = "hidden"
		}
		s.log.Add(s.tick, s.player.label, "plyr", "stealth", "hidden_change", val, st.CurrentLight())
		s.emit(SimEvent{Kind: EvHiddenChanged, Tick: s.tick, Agent: s.player.label,
			Hidden: hidden, X: s.player.X, Y: s.player.Y})
	}
	s.player.Stealth = st
	st.Prime(s.player.X, s.player.Y, false)

	s.log.Add(0, "sim", "", "scene", "init",
		fmt.Sprintf("%s %gx%g, %d guards, %d lights", s.levelName, s.width, s.height,
			len(s.guards), s.lights.Len()), 0)
	s.inited = true
	return nil
}

// Tick advances the simulation by dt seconds. Phase order is fixed: all
// detection resolves before any alert is delivered, and alerts land the
// same tick they were raised.
func (s *Scene) Tick(dt float64) {
	if !s.inited || dt <= 0 {
		return
	}
	s.tick++
	s.now += dt
	ctx := s.context(dt)

	// 1. PLAYER: script or host input moves the protagonist.
	s.player.Update(ctx, dt)

	// 2. LIGHT FIELD: advance the refresh clock, then resample stealth at
	// the player's new position.
	s.sampler.Advance(dt)
	s.player.Stealth.Update(s.player.X, s.player.Y, s.player.IsMoving(), dt)

	// 3. DETECTION: every conscious guard runs its vision test. Detections
	// queue alerts on the bus but deliver nothing yet.
	for _, g := range s.guards {
		if g.state == StateDead || g.state == StateSleeping {
			continue
		}
		g.runDetection(ctx)
	}

	// 4. ALERTS: deliver everything queued this tick.
	s.bus.Flush(ctx, s.guards)

	// 5. THINK + ACT: suspicion, state machines, movement.
	for _, g := range s.guards {
		g.Update(ctx)
	}

	// 6. SPEECH: age the bubbles after behavior so a fresh bark survives a
	// full tick on screen.
	s.updateSpeech(dt)
}

// HostContext returns a context for host-initiated operations between ticks
// (Investigate, ReceiveAlert, Wake, Kill).
func (s *Scene) HostContext() *TickContext { return s.context(0) }

func (s *Scene) context(dt float64) *TickContext {
	return &TickContext{
		DT:        dt,
		Tick:      s.tick,
		Now:       s.now,
		Player:    s.player,
		Obstacles: s.obstacles,
		Nav:       s.nav,
		Bus:       s.bus,
		Log:       s.log,
		Thoughts:  s.thoughts,
		RNG:       s.rng,
		Tuning:    s.tuning,
		Emit:      s.emit,
	}
}

// emit latches the outcome counters and fans the event out to listeners.
func (s *Scene) emit(ev SimEvent) {
	switch ev.Kind {
	case EvTargetDetected:
		s.outcome.Detections++
		if s.outcome.FirstDetectTick < 0 {
			s.outcome.FirstDetectTick = ev.Tick
		}
	case EvAlertBroadcast:
		s.outcome.Broadcasts++
	case EvStateChanged:
		if ev.State == StateInvestigate {
			s.outcome.Investigations++
		}
	case EvCapture:
		if !s.outcome.Captured {
			s.outcome.Captured = true
			s.outcome.CaptureTick = ev.Tick
		}
	}
	for _, l := range s.listeners {
		l.OnSimEvent(ev)
	}
}

// AddListener subscribes to scene events.
func (s *Scene) AddListener(l SimListener) {
	s.listeners = append(s.listeners, l)
}

// RemoveListener drops a previously added listener.
func (s *Scene) RemoveListener(l SimListener) {
	for i, have := range s.listeners {
		if have == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// --- Light facade ---

// RegisterLight adds a light to the scene at runtime. The sampler picks it
// up on its next candidate refresh.
func (s *Scene) RegisterLight(l Light) (LightID, error) {
	return s.lights.Register(l)
}

// UnregisterLight removes a light. Unknown IDs are a no-op; a stale sampler
// candidate referencing the removed light is skipped, never an error.
func (s *Scene) UnregisterLight(id LightID) {
	s.lights.Unregister(id)
}

// MoveLight repositions a registered light.
func (s *Scene) MoveLight(id LightID, x, y float64) bool {
	return s.lights.Move(id, x, y)
}

// SampleIllumination reports the light level at a world position.
func (s *Scene) SampleIllumination(x, y float64) float64 {
	return s.sampler.Sample(x, y)
}

// --- Read accessors ---

func (s *Scene) Player() *Player { return s.player }

func (s *Scene) Guards() []*Guard { return s.guards }

func (s *Scene) Log() *SimLog { return s.log }

func (s *Scene) Thoughts() *ThoughtLog { return s.thoughts }

func (s *Scene) Tuning() *Tuning { return s.tuning }

func (s *Scene) Sampler() *LightFieldSampler { return s.sampler }

func (s *Scene) Lights() *LightSet { return s.lights }

func (s *Scene) Nav() *NavGrid { return s.nav }

func (s *Scene) Obstacles() []rect { return s.obstacles }

func (s *Scene) Size() (float64, float64) { return s.width, s.height }

func (s *Scene) TickCount() int { return s.tick }

func (s *Scene) Now() float64 { return s.now }

func (s *Scene) Outcome() Outcome { return s.outcome }

func (s *Scene) LevelName() string { return s.levelName }

func (s *Scene) Seed() int64 { return s.seed }

// GuardByLabel finds a guard by its log label ("G1", "G2", ...).
func (s *Scene) GuardByLabel(label string) *Guard {
	for _, g := range s.guards {
		if g.label == label {
			return g
		}
	}
	return nil
}
