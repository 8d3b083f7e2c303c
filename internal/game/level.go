package game

import (
	"fmt"
	"strings"
)

// Level is the static description a scene is built from: world bounds,
// obstacle geometry, light placements, guard spawns, and the player start.
type Level struct {
	Name          string
	Width, Height float64

	PlayerX, PlayerY float64

	Obstacles []rect
	Lights    []LightSpawn
	Guards    []GuardSpawn
}

// LightSpawn is one light placement in a level.
type LightSpawn struct {
	X, Y      float64
	Radius    float64
	Intensity float64
	Kind      LightKind
}

func (ls LightSpawn) toLight() Light {
	return Light{X: ls.X, Y: ls.Y, Radius: ls.Radius, Intensity: ls.Intensity, Kind: ls.Kind}
}

// GuardSpawn is one guard placement: archetype, start pose, and optional
// patrol route or script.
type GuardSpawn struct {
	Archetype Archetype
	X, Y      float64
	FacingDeg float64
	Route     [][2]float64
	Script    []SeqStep
}

// LevelNames lists the built-in presets.
func LevelNames() []string { return []string{"warehouse", "courtyard", "manor"} }

// BuildLevel returns one of the built-in presets by name.
func BuildLevel(name string) (*Level, error) {
	switch name {
	case "warehouse":
		return warehouseLevel(), nil
	case "courtyard":
		return courtyardLevel(), nil
	case "manor":
		return manorLevel(), nil
	}
	return nil, fmt.Errorf("unknown level %q (have: %s)", name, strings.Join(LevelNames(), ", "))
}

// borderWalls returns the four edge rects that keep agents inside the world.
func borderWalls(w, h int) []rect {
	const t = 16
	return []rect{
		{0, 0, w, t},
		{0, h - t, w, t},
		{0, t, t, h - 2*t},
		{w - t, t, t, h - 2*t},
	}
}

// warehouseLevel: shelf aisles on the left, crates and an office on the
// right. Overhead lamps leave dark lanes between the shelves.
func warehouseLevel() *Level {
	lv := &Level{
		Name:    "warehouse",
		Width:   960,
		Height:  640,
		PlayerX: 60,
		PlayerY: 580,
	}
	lv.Obstacles = append(borderWalls(960, 640),
		rect{120, 120, 240, 32}, // shelf rows
		rect{120, 220, 240, 32},
		rect{120, 320, 240, 32},
		rect{520, 160, 64, 64}, // crates
		rect{620, 360, 96, 48},
		rect{760, 140, 48, 96},
		rect{720, 480, 160, 100}, // office
	)
	lv.Lights = []LightSpawn{
		{X: 240, Y: 100, Radius: 140, Intensity: 0.8, Kind: LightPoint},
		{X: 240, Y: 300, Radius: 140, Intensity: 0.8, Kind: LightPoint},
		{X: 560, Y: 120, Radius: 160, Intensity: 0.9, Kind: LightPoint},
		{X: 680, Y: 420, Radius: 150, Intensity: 0.85, Kind: LightPoint},
		{X: 820, Y: 560, Radius: 120, Intensity: 0.7, Kind: LightArea},
	}
	lv.Guards = []GuardSpawn{
		{Archetype: ArchPatroller, X: 80, Y: 80, FacingDeg: 0,
			Route: [][2]float64{{80, 80}, {420, 80}, {420, 400}, {80, 400}}},
		{Archetype: ArchPatroller, X: 480, Y: 100, FacingDeg: 0,
			Route: [][2]float64{{480, 100}, {900, 100}, {900, 440}, {480, 440}}},
		{Archetype: ArchStationary, X: 560, Y: 300, FacingDeg: 180},
	}
	return lv
}

// courtyardLevel: an open square around a fountain, lanterns at the corner
// pillars. One long patrol loop, a watcher by the north gate, a sleeper in
// the southeast corner.
func courtyardLevel() *Level {
	lv := &Level{
		Name:    "courtyard",
		Width:   800,
		Height:  800,
		PlayerX: 60,
		PlayerY: 740,
	}
	lv.Obstacles = append(borderWalls(800, 800),
		rect{360, 360, 80, 80}, // fountain
		rect{160, 160, 40, 40}, // pillars
		rect{600, 160, 40, 40},
		rect{160, 600, 40, 40},
		rect{600, 600, 40, 40},
	)
	lv.Lights = []LightSpawn{
		{X: 200, Y: 200, Radius: 160, Intensity: 0.9, Kind: LightPoint},
		{X: 620, Y: 200, Radius: 160, Intensity: 0.9, Kind: LightPoint},
		{X: 200, Y: 620, Radius: 160, Intensity: 0.9, Kind: LightPoint},
		{X: 620, Y: 620, Radius: 160, Intensity: 0.9, Kind: LightPoint},
		{X: 400, Y: 400, Radius: 200, Intensity: 1.0, Kind: LightPoint},
	}
	lv.Guards = []GuardSpawn{
		{Archetype: ArchPatroller, X: 100, Y: 100, FacingDeg: 0,
			Route: [][2]float64{{100, 100}, {700, 100}, {700, 700}, {100, 700}}},
		{Archetype: ArchStationary, X: 400, Y: 120, FacingDeg: 90},
		{Archetype: ArchSleeper, X: 730, Y: 740, FacingDeg: 225},
	}
	return lv
}

// manorLevel: a dusk interior with a faint global wash, so standing still in
// the gloom hides you but moving does not. A scripted butler walks the hall.
func manorLevel() *Level {
	lv := &Level{
		Name:    "manor",
		Width:   1200,
		Height:  800,
		PlayerX: 60,
		PlayerY: 60,
	}
	lv.Obstacles = append(borderWalls(1200, 800),
		rect{300, 16, 16, 250}, // west wing wall, doorway mid-map
		rect{300, 420, 16, 364},
		rect{560, 300, 40, 40}, // hall columns
		rect{560, 500, 40, 40},
		rect{860, 16, 16, 200}, // east gallery wall
		rect{860, 580, 16, 204},
	)
	lv.Lights = []LightSpawn{
		{Intensity: 0.15, Kind: LightGlobal}, // dusk wash
		{X: 450, Y: 400, Radius: 220, Intensity: 0.8, Kind: LightPoint},
		{X: 1000, Y: 200, Radius: 180, Intensity: 0.9, Kind: LightPoint},
		{X: 1000, Y: 600, Radius: 180, Intensity: 0.9, Kind: LightPoint},
		{X: 150, Y: 150, Radius: 90, Intensity: 0.6, Kind: LightPoint},
	}
	lv.Guards = []GuardSpawn{
		{Archetype: ArchPatroller, X: 700, Y: 120, FacingDeg: 0,
			Route: [][2]float64{{700, 120}, {1120, 400}, {700, 680}, {400, 400}}},
		{Archetype: ArchStationary, X: 1120, Y: 100, FacingDeg: 180},
		{Archetype: ArchSleeper, X: 150, Y: 700, FacingDeg: 0},
		{Archetype: ArchScripted, X: 450, Y: 200, FacingDeg: 90,
			Script: []SeqStep{
				{Kind: SeqWalkTo, X: 450, Y: 600},
				{Kind: SeqWait, Seconds: 2},
				{Kind: SeqSay, Text: "All quiet."},
				{Kind: SeqWalkTo, X: 450, Y: 200},
				{Kind: SeqWait, Seconds: 2},
				{Kind: SeqLoop},
			}},
	}
	return lv
}
