package game

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tuning holds every gameplay constant in one place so headless runs and
// tests can override behavior without touching code. Loaded YAML files
// overlay the defaults, so a file only needs the keys it changes.
type Tuning struct {
	Stealth   StealthTuning   `yaml:"stealth"`
	Light     LightTuning     `yaml:"light"`
	Guard     GuardTuning     `yaml:"guard"`
	Suspicion SuspicionTuning `yaml:"suspicion"`
	Alert     AlertTuning     `yaml:"alert"`
	Search    SearchTuning    `yaml:"search"`
	Player    PlayerTuning    `yaml:"player"`
}

type StealthTuning struct {
	SampleInterval  float64 `yaml:"sample_interval"`  // seconds between light samples
	BaseThreshold   float64 `yaml:"base_threshold"`   // hidden when light < threshold
	MovementPenalty float64 `yaml:"movement_penalty"` // threshold multiplier while moving
}

type LightTuning struct {
	Ambient         float64 `yaml:"ambient"`          // moonlight floor, [0,1]
	RefreshInterval float64 `yaml:"refresh_interval"` // seconds between candidate culls
	QueryMargin     float64 `yaml:"query_margin"`     // extra cull reach, world units
}

type GuardTuning struct {
	PatrolSpeed        float64 `yaml:"patrol_speed"`
	InvestigateSpeed   float64 `yaml:"investigate_speed"`
	ChaseSpeed         float64 `yaml:"chase_speed"`
	TurnRate           float64 `yaml:"turn_rate"` // rad/sec
	FOVDeg             float64 `yaml:"fov_deg"`
	DetectionRange     float64 `yaml:"detection_range"`
	WaitAtPoint        float64 `yaml:"wait_at_point"`        // patrol dwell, seconds
	InvestigationTime  float64 `yaml:"investigation_time"`   // dwell at a lead, seconds
	LosePlayerTime     float64 `yaml:"lose_player_time"`     // chase grace, seconds
	AlertCooldown      float64 `yaml:"alert_cooldown"`       // alert hold, seconds
	CaptureRadius      float64 `yaml:"capture_radius"`       // world units
	FacingFlipInterval float64 `yaml:"facing_flip_interval"` // stationary scan period
}

type SuspicionTuning struct {
	Max         float64 `yaml:"max"`
	Threshold   float64 `yaml:"threshold"`
	DecayRate   float64 `yaml:"decay_rate"` // units/sec on quiet ticks
	NoiseGain   float64 `yaml:"noise_gain"`
	NoiseRadius float64 `yaml:"noise_radius"`
}

type AlertTuning struct {
	Radius float64 `yaml:"radius"` // broadcast reach, world units
}

type SearchTuning struct {
	MaxAttempts     int     `yaml:"max_attempts"`
	Radius          float64 `yaml:"radius"`
	TimePerLocation float64 `yaml:"time_per_location"` // seconds
}

type PlayerTuning struct {
	WalkSpeed float64 `yaml:"walk_speed"`
}

// DefaultTuning returns the baseline constants. Units are world pixels and
// seconds throughout.
func DefaultTuning() *Tuning {
	return &Tuning{
		Stealth: StealthTuning{
			SampleInterval:  0.1,
			BaseThreshold:   0.30,
			MovementPenalty: 0.5,
		},
		Light: LightTuning{
			Ambient:         0.05,
			RefreshInterval: 0.5,
			QueryMargin:     64,
		},
		Guard: GuardTuning{
			PatrolSpeed:        40,
			InvestigateSpeed:   55,
			ChaseSpeed:         90,
			TurnRate:           4.0,
			FOVDeg:             110,
			DetectionRange:     220,
			WaitAtPoint:        1.5,
			InvestigationTime:  2.5,
			LosePlayerTime:     3.0,
			AlertCooldown:      2.0,
			CaptureRadius:      14,
			FacingFlipInterval: 4.0,
		},
		Suspicion: SuspicionTuning{
			Max:         5.0,
			Threshold:   3.0,
			DecayRate:   0.6,
			NoiseGain:   2.0,
			NoiseRadius: 160,
		},
		Alert: AlertTuning{
			Radius: 260,
		},
		Search: SearchTuning{
			MaxAttempts:     3,
			Radius:          90,
			TimePerLocation: 1.6,
		},
		Player: PlayerTuning{
			WalkSpeed: 60,
		},
	}
}

// LoadTuning reads a YAML overlay on top of the defaults. Missing keys keep
// their default values.
func LoadTuning(path string) (*Tuning, error) {
	tn := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, tn); err != nil {
		return nil, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := tn.Validate(); err != nil {
		return nil, fmt.Errorf("tuning %s: %w", path, err)
	}
	return tn, nil
}

// Validate rejects values the simulation cannot run with.
func (tn *Tuning) Validate() error {
	switch {
	case tn.Stealth.SampleInterval <= 0:
		return fmt.Errorf("stealth.sample_interval must be > 0")
	case tn.Stealth.BaseThreshold < 0 || tn.Stealth.BaseThreshold > 1:
		return fmt.Errorf("stealth.base_threshold must be in [0,1]")
	case tn.Stealth.MovementPenalty < 0 || tn.Stealth.MovementPenalty > 1:
		return fmt.Errorf("stealth.movement_penalty must be in [0,1]")
	case tn.Light.Ambient < 0 || tn.Light.Ambient > 1:
		return fmt.Errorf("light.ambient must be in [0,1]")
	case tn.Light.RefreshInterval <= 0:
		return fmt.Errorf("light.refresh_interval must be > 0")
	case tn.Light.QueryMargin < 0:
		return fmt.Errorf("light.query_margin must be >= 0")
	case tn.Guard.PatrolSpeed <= 0 || tn.Guard.InvestigateSpeed <= 0 || tn.Guard.ChaseSpeed <= 0:
		return fmt.Errorf("guard speeds must be > 0")
	case tn.Guard.TurnRate <= 0:
		return fmt.Errorf("guard.turn_rate must be > 0")
	case tn.Guard.FOVDeg <= 0 || tn.Guard.FOVDeg > 360:
		return fmt.Errorf("guard.fov_deg must be in (0,360]")
	case tn.Guard.DetectionRange <= 0:
		return fmt.Errorf("guard.detection_range must be > 0")
	case tn.Guard.LosePlayerTime <= 0:
		return fmt.Errorf("guard.lose_player_time must be > 0")
	case tn.Guard.CaptureRadius <= 0:
		return fmt.Errorf("guard.capture_radius must be > 0")
	case tn.Suspicion.Max <= 0:
		return fmt.Errorf("suspicion.max must be > 0")
	case tn.Suspicion.Threshold <= 0 || tn.Suspicion.Threshold > tn.Suspicion.Max:
		return fmt.Errorf("suspicion.threshold must be in (0, max]")
	case tn.Suspicion.DecayRate < 0:
		return fmt.Errorf("suspicion.decay_rate must be >= 0")
	case tn.Suspicion.NoiseRadius <= 0:
		return fmt.Errorf("suspicion.noise_radius must be > 0")
	case tn.Alert.Radius < 0:
		return fmt.Errorf("alert.radius must be >= 0")
	case tn.Search.MaxAttempts < 0:
		return fmt.Errorf("search.max_attempts must be >= 0")
	case tn.Search.TimePerLocation <= 0:
		return fmt.Errorf("search.time_per_location must be > 0")
	case tn.Player.WalkSpeed <= 0:
		return fmt.Errorf("player.walk_speed must be > 0")
	}
	return nil
}

// --- Scenario files ---

// Scenario is a YAML description of a reproducible run: a level (preset name
// and/or inline geometry) plus an optional player script. Inline fields add
// to the preset rather than replacing it.
type Scenario struct {
	Name      string          `yaml:"name"`
	Level     string          `yaml:"level"` // preset name; empty means bare inline level
	Width     float64         `yaml:"width"`
	Height    float64         `yaml:"height"`
	PlayerX   float64         `yaml:"player_x"`
	PlayerY   float64         `yaml:"player_y"`
	Obstacles []ScenarioRect  `yaml:"obstacles"`
	Lights    []ScenarioLight `yaml:"lights"`
	Guards    []ScenarioGuard `yaml:"guards"`
	Script    []ScenarioStep  `yaml:"script"`
}

type ScenarioRect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type ScenarioLight struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Radius    float64 `yaml:"radius"`
	Intensity float64 `yaml:"intensity"`
	Kind      string  `yaml:"kind"` // point, area, global
}

type ScenarioGuard struct {
	Archetype string      `yaml:"archetype"` // patroller, stationary, sleeper, scripted
	X         float64     `yaml:"x"`
	Y         float64     `yaml:"y"`
	Facing    float64     `yaml:"facing"` // degrees
	Route     [][]float64 `yaml:"route"`  // [[x,y], ...]
}

type ScenarioStep struct {
	Do      string  `yaml:"do"` // walk, face, wait, say, loop
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"` // degrees, for face
	Seconds float64 `yaml:"seconds"`
	Text    string  `yaml:"text"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, nil
}

// BuildLevel turns the scenario into a concrete level: preset first, then
// inline geometry, guards, and lights appended on top.
func (sc *Scenario) BuildLevel() (*Level, error) {
	var lv *Level
	if sc.Level != "" {
		base, err := BuildLevel(sc.Level)
		if err != nil {
			return nil, err
		}
		lv = base
	} else {
		lv = &Level{Name: sc.Name, Width: 960, Height: 640, PlayerX: 60, PlayerY: 60}
	}
	if sc.Name != "" {
		lv.Name = sc.Name
	}
	if sc.Width > 0 {
		lv.Width = sc.Width
	}
	if sc.Height > 0 {
		lv.Height = sc.Height
	}
	if sc.PlayerX != 0 || sc.PlayerY != 0 {
		lv.PlayerX = sc.PlayerX
		lv.PlayerY = sc.PlayerY
	}
	for _, o := range sc.Obstacles {
		lv.Obstacles = append(lv.Obstacles, rect{o.X, o.Y, o.W, o.H})
	}
	for i, l := range sc.Lights {
		kind, err := parseLightKind(l.Kind)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		lv.Lights = append(lv.Lights, LightSpawn{
			X: l.X, Y: l.Y, Radius: l.Radius, Intensity: l.Intensity, Kind: kind,
		})
	}
	for i, g := range sc.Guards {
		arch, err := parseArchetype(g.Archetype)
		if err != nil {
			return nil, fmt.Errorf("guard %d: %w", i, err)
		}
		route, err := toRoute(g.Route)
		if err != nil {
			return nil, fmt.Errorf("guard %d: %w", i, err)
		}
		lv.Guards = append(lv.Guards, GuardSpawn{
			Archetype: arch, X: g.X, Y: g.Y, FacingDeg: g.Facing, Route: route,
		})
	}
	return lv, nil
}

// PlayerScript converts the scenario's script block into sequence steps.
func (sc *Scenario) PlayerScript() ([]SeqStep, error) {
	var steps []SeqStep
	for i, st := range sc.Script {
		switch strings.ToLower(st.Do) {
		case "walk":
			steps = append(steps, SeqStep{Kind: SeqWalkTo, X: st.X, Y: st.Y})
		case "face":
			steps = append(steps, SeqStep{Kind: SeqFace, Arg: degToRad(st.Heading)})
		case "wait":
			steps = append(steps, SeqStep{Kind: SeqWait, Seconds: st.Seconds})
		case "say":
			steps = append(steps, SeqStep{Kind: SeqSay, Text: st.Text})
		case "loop":
			steps = append(steps, SeqStep{Kind: SeqLoop})
		default:
			return nil, fmt.Errorf("script step %d: unknown action %q", i, st.Do)
		}
	}
	return steps, nil
}

func parseArchetype(s string) (Archetype, error) {
	switch strings.ToLower(s) {
	case "patroller", "":
		return ArchPatroller, nil
	case "stationary":
		return ArchStationary, nil
	case "sleeper":
		return ArchSleeper, nil
	case "scripted":
		return ArchScripted, nil
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

func parseLightKind(s string) (LightKind, error) {
	switch strings.ToLower(s) {
	case "point", "":
		return LightPoint, nil
	case "area":
		return LightArea, nil
	case "global":
		return LightGlobal, nil
	}
	return 0, fmt.Errorf("unknown light kind %q", s)
}

func toRoute(raw [][]float64) ([][2]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	route := make([][2]float64, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return nil, fmt.Errorf("route point %d: want [x,y], got %d values", i, len(p))
		}
		route[i] = [2]float64{p[0], p[1]}
	}
	return route, nil
}
