package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig drops YAML into a temp file and returns its path.
func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// expectInvalid mutates a default tuning and demands Validate reject it,
// naming the offending field.
func expectInvalid(t *testing.T, field string, mut func(*Tuning)) {
	t.Helper()
	tn := DefaultTuning()
	mut(tn)
	err := tn.Validate()
	if err == nil {
		t.Fatalf("expected %s to be rejected", field)
	}
	if !strings.Contains(err.Error(), field) {
		t.Fatalf("expected error to name %s, got: %v", field, err)
	}
}

func TestDefaultTuning_Valid(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("defaults must validate, got: %v", err)
	}
}

func TestTuning_ValidateRejections(t *testing.T) {
	expectInvalid(t, "sample_interval", func(tn *Tuning) { tn.Stealth.SampleInterval = 0 })
	expectInvalid(t, "base_threshold", func(tn *Tuning) { tn.Stealth.BaseThreshold = 1.5 })
	expectInvalid(t, "movement_penalty", func(tn *Tuning) { tn.Stealth.MovementPenalty = -0.1 })
	expectInvalid(t, "ambient", func(tn *Tuning) { tn.Light.Ambient = 1.2 })
	expectInvalid(t, "refresh_interval", func(tn *Tuning) { tn.Light.RefreshInterval = 0 })
	expectInvalid(t, "query_margin", func(tn *Tuning) { tn.Light.QueryMargin = -1 })
	expectInvalid(t, "speeds", func(tn *Tuning) { tn.Guard.ChaseSpeed = 0 })
	expectInvalid(t, "turn_rate", func(tn *Tuning) { tn.Guard.TurnRate = 0 })
	expectInvalid(t, "fov_deg", func(tn *Tuning) { tn.Guard.FOVDeg = 361 })
	expectInvalid(t, "detection_range", func(tn *Tuning) { tn.Guard.DetectionRange = -10 })
	expectInvalid(t, "lose_player_time", func(tn *Tuning) { tn.Guard.LosePlayerTime = 0 })
	expectInvalid(t, "capture_radius", func(tn *Tuning) { tn.Guard.CaptureRadius = 0 })
	expectInvalid(t, "suspicion.max", func(tn *Tuning) { tn.Suspicion.Max = 0 })
	expectInvalid(t, "threshold", func(tn *Tuning) { tn.Suspicion.Threshold = 6 })
	expectInvalid(t, "decay_rate", func(tn *Tuning) { tn.Suspicion.DecayRate = -0.1 })
	expectInvalid(t, "noise_radius", func(tn *Tuning) { tn.Suspicion.NoiseRadius = 0 })
	expectInvalid(t, "alert.radius", func(tn *Tuning) { tn.Alert.Radius = -5 })
	expectInvalid(t, "max_attempts", func(tn *Tuning) { tn.Search.MaxAttempts = -1 })
	expectInvalid(t, "time_per_location", func(tn *Tuning) { tn.Search.TimePerLocation = 0 })
	expectInvalid(t, "walk_speed", func(tn *Tuning) { tn.Player.WalkSpeed = 0 })
}

func TestLoadTuning_OverlayKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `
guard:
  chase_speed: 120
suspicion:
  threshold: 2.5
`)
	tn, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Guard.ChaseSpeed != 120 {
		t.Fatalf("expected chase speed 120, got %g", tn.Guard.ChaseSpeed)
	}
	if tn.Suspicion.Threshold != 2.5 {
		t.Fatalf("expected threshold 2.5, got %g", tn.Suspicion.Threshold)
	}
	// Untouched keys keep their defaults.
	if tn.Guard.PatrolSpeed != 40 {
		t.Fatalf("patrol speed should stay 40, got %g", tn.Guard.PatrolSpeed)
	}
	if tn.Stealth.SampleInterval != 0.1 {
		t.Fatalf("sample interval should stay 0.1, got %g", tn.Stealth.SampleInterval)
	}
	if tn.Alert.Radius != 260 {
		t.Fatalf("alert radius should stay 260, got %g", tn.Alert.Radius)
	}
}

func TestLoadTuning_MissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestLoadTuning_BadYAML(t *testing.T) {
	path := writeConfig(t, "broken.yaml", "guard: [not: a map")
	if _, err := LoadTuning(path); err == nil || !strings.Contains(err.Error(), "parse tuning") {
		t.Fatalf("expected a parse error, got: %v", err)
	}
}

func TestLoadTuning_RejectsInvalidOverlay(t *testing.T) {
	path := writeConfig(t, "zero_fov.yaml", `
guard:
  fov_deg: 0
`)
	if _, err := LoadTuning(path); err == nil || !strings.Contains(err.Error(), "fov_deg") {
		t.Fatalf("expected the overlay to fail validation, got: %v", err)
	}
}

func TestLoadScenario_FullInlineLevel(t *testing.T) {
	path := writeConfig(t, "rooftop.yaml", `
name: rooftop-run
width: 500
height: 400
player_x: 50
player_y: 350
obstacles:
  - {x: 100, y: 100, w: 40, h: 200}
lights:
  - {x: 250, y: 200, radius: 120, intensity: 0.8, kind: area}
  - {intensity: 0.1, kind: global}
guards:
  - {archetype: stationary, x: 400, y: 100, facing: 180}
  - {x: 60, y: 60, route: [[60, 60], [300, 60]]}
  - {archetype: sleeper, x: 450, y: 350}
script:
  - {do: walk, x: 200, y: 350}
  - {do: face, heading: 90}
  - {do: wait, seconds: 1.5}
  - {do: say, text: made it}
  - {do: loop}
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	lv, err := sc.BuildLevel()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lv.Name != "rooftop-run" || lv.Width != 500 || lv.Height != 400 {
		t.Fatalf("bad level header: %q %gx%g", lv.Name, lv.Width, lv.Height)
	}
	if lv.PlayerX != 50 || lv.PlayerY != 350 {
		t.Fatalf("bad player start (%g,%g)", lv.PlayerX, lv.PlayerY)
	}
	if len(lv.Obstacles) != 1 || lv.Obstacles[0] != (rect{100, 100, 40, 200}) {
		t.Fatalf("bad obstacles: %+v", lv.Obstacles)
	}
	if len(lv.Lights) != 2 || lv.Lights[0].Kind != LightArea || lv.Lights[1].Kind != LightGlobal {
		t.Fatalf("bad lights: %+v", lv.Lights)
	}
	if len(lv.Guards) != 3 {
		t.Fatalf("expected 3 guards, got %d", len(lv.Guards))
	}
	if lv.Guards[0].Archetype != ArchStationary || lv.Guards[0].FacingDeg != 180 {
		t.Fatalf("bad guard 0: %+v", lv.Guards[0])
	}
	// Archetype defaults to patroller when omitted.
	if lv.Guards[1].Archetype != ArchPatroller || len(lv.Guards[1].Route) != 2 {
		t.Fatalf("bad guard 1: %+v", lv.Guards[1])
	}
	if lv.Guards[1].Route[1] != [2]float64{300, 60} {
		t.Fatalf("bad route point: %+v", lv.Guards[1].Route)
	}
	if lv.Guards[2].Archetype != ArchSleeper {
		t.Fatalf("bad guard 2: %+v", lv.Guards[2])
	}

	steps, err := sc.PlayerScript()
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	wantKinds := []SeqStepKind{SeqWalkTo, SeqFace, SeqWait, SeqSay, SeqLoop}
	if len(steps) != len(wantKinds) {
		t.Fatalf("expected %d steps, got %d", len(wantKinds), len(steps))
	}
	for i, k := range wantKinds {
		if steps[i].Kind != k {
			t.Fatalf("step %d: expected kind %d, got %d", i, k, steps[i].Kind)
		}
	}
	if steps[0].X != 200 || steps[0].Y != 350 {
		t.Fatalf("bad walk target (%g,%g)", steps[0].X, steps[0].Y)
	}
	if steps[1].Arg != degToRad(90) {
		t.Fatalf("face heading should convert to radians, got %g", steps[1].Arg)
	}
	if steps[2].Seconds != 1.5 || steps[3].Text != "made it" {
		t.Fatalf("bad wait/say payloads: %+v %+v", steps[2], steps[3])
	}
}

func TestScenario_PresetOverlay(t *testing.T) {
	path := writeConfig(t, "courtyard_plus.yaml", `
name: courtyard-extended
level: courtyard
player_x: 400
player_y: 400
guards:
  - {archetype: stationary, x: 400, y: 700, facing: 270}
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	lv, err := sc.BuildLevel()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lv.Width != 800 || lv.Height != 800 {
		t.Fatalf("preset dimensions should survive, got %gx%g", lv.Width, lv.Height)
	}
	if lv.Name != "courtyard-extended" {
		t.Fatalf("name should override, got %q", lv.Name)
	}
	if lv.PlayerX != 400 || lv.PlayerY != 400 {
		t.Fatalf("player start should override, got (%g,%g)", lv.PlayerX, lv.PlayerY)
	}
	if len(lv.Guards) != 4 {
		t.Fatalf("inline guards append to the preset's 3, got %d", len(lv.Guards))
	}
	if lv.Guards[3].Archetype != ArchStationary || lv.Guards[3].FacingDeg != 270 {
		t.Fatalf("bad appended guard: %+v", lv.Guards[3])
	}
}

func TestScenario_UnknownPreset(t *testing.T) {
	sc := &Scenario{Level: "casino"}
	if _, err := sc.BuildLevel(); err == nil || !strings.Contains(err.Error(), "unknown level") {
		t.Fatalf("expected unknown level error, got: %v", err)
	}
}

func TestScenario_UnknownArchetype(t *testing.T) {
	sc := &Scenario{Guards: []ScenarioGuard{{Archetype: "ninja"}}}
	_, err := sc.BuildLevel()
	if err == nil || !strings.Contains(err.Error(), `unknown archetype "ninja"`) {
		t.Fatalf("expected unknown archetype error, got: %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "guard 0") {
		t.Fatalf("error should locate the guard, got: %v", err)
	}
}

func TestScenario_UnknownLightKind(t *testing.T) {
	sc := &Scenario{Lights: []ScenarioLight{{Kind: "laser"}}}
	if _, err := sc.BuildLevel(); err == nil || !strings.Contains(err.Error(), `unknown light kind "laser"`) {
		t.Fatalf("expected unknown light kind error, got: %v", err)
	}
}

func TestScenario_BadRoutePoint(t *testing.T) {
	sc := &Scenario{Guards: []ScenarioGuard{{
		Archetype: "patroller",
		Route:     [][]float64{{1, 2}, {3}},
	}}}
	if _, err := sc.BuildLevel(); err == nil || !strings.Contains(err.Error(), "route point 1") {
		t.Fatalf("expected route point error, got: %v", err)
	}
}

func TestScenario_UnknownScriptAction(t *testing.T) {
	sc := &Scenario{Script: []ScenarioStep{{Do: "dance"}}}
	if _, err := sc.PlayerScript(); err == nil || !strings.Contains(err.Error(), `unknown action "dance"`) {
		t.Fatalf("expected unknown action error, got: %v", err)
	}
}

func TestLoadScenario_BadYAML(t *testing.T) {
	path := writeConfig(t, "mangled.yaml", ":\n  - not yaml at all: [")
	if _, err := LoadScenario(path); err == nil || !strings.Contains(err.Error(), "parse scenario") {
		t.Fatalf("expected a parse error, got: %v", err)
	}
}

func TestScenario_CaseInsensitiveNames(t *testing.T) {
	sc := &Scenario{
		Guards: []ScenarioGuard{{Archetype: "Sleeper"}},
		Lights: []ScenarioLight{{Kind: "GLOBAL", Intensity: 0.2}},
		Script: []ScenarioStep{{Do: "Walk", X: 5, Y: 5}},
	}
	lv, err := sc.BuildLevel()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lv.Guards[0].Archetype != ArchSleeper || lv.Lights[0].Kind != LightGlobal {
		t.Fatalf("names should parse case-insensitively: %+v %+v", lv.Guards[0], lv.Lights[0])
	}
	steps, err := sc.PlayerScript()
	if err != nil || len(steps) != 1 || steps[0].Kind != SeqWalkTo {
		t.Fatalf("script names should parse case-insensitively: %v %+v", err, steps)
	}
}
