package game

import "fmt"

// LightKind selects how a light source contributes illumination.
type LightKind int

const (
	LightPoint  LightKind = iota // distance falloff inside its radius
	LightArea                    // same falloff as point; no angular cutoff
	LightGlobal                  // full intensity everywhere (moon, skylight)
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightArea:
		return "area"
	case LightGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// LightID identifies a registered light for later removal.
type LightID int

// Light is one registered illumination source. Owned by the scene;
// registered and unregistered as objects spawn and despawn.
type Light struct {
	ID        LightID
	X, Y      float64
	Radius    float64
	Intensity float64
	Kind      LightKind
}

// LightSet holds the scene's registered lights. Iteration order is
// registration order so runs are deterministic.
type LightSet struct {
	byID   map[LightID]*Light
	order  []LightID
	nextID LightID
}

// NewLightSet returns an empty light registry.
func NewLightSet() *LightSet {
	return &LightSet{byID: map[LightID]*Light{}, nextID: 1}
}

// Register adds a light and returns its id. Intensity must be >= 0;
// non-Global kinds need a positive radius. The ID field of the argument is
// ignored; the set assigns its own.
func (ls *LightSet) Register(l Light) (LightID, error) {
	if l.Intensity < 0 {
		return 0, fmt.Errorf("light: negative intensity %.3f", l.Intensity)
	}
	if l.Kind != LightGlobal && l.Radius <= 0 {
		return 0, fmt.Errorf("light: kind %s needs radius > 0, got %.3f", l.Kind, l.Radius)
	}
	id := ls.nextID
	ls.nextID++
	l.ID = id
	stored := l
	ls.byID[id] = &stored
	ls.order = append(ls.order, id)
	return id, nil
}

// Unregister removes a light. Removing an unknown id is a no-op.
func (ls *LightSet) Unregister(id LightID) {
	if _, ok := ls.byID[id]; !ok {
		return
	}
	delete(ls.byID, id)
	for i, v := range ls.order {
		if v == id {
			ls.order = append(ls.order[:i], ls.order[i+1:]...)
			break
		}
	}
}

// Get looks a light up by id.
func (ls *LightSet) Get(id LightID) (*Light, bool) {
	l, ok := ls.byID[id]
	return l, ok
}

// Move repositions a light (carried torches, swinging lamps). Reports
// whether the id was known.
func (ls *LightSet) Move(id LightID, x, y float64) bool {
	l, ok := ls.byID[id]
	if !ok {
		return false
	}
	l.X = x
	l.Y = y
	return true
}

// All returns the lights in registration order.
func (ls *LightSet) All() []*Light {
	out := make([]*Light, 0, len(ls.order))
	for _, id := range ls.order {
		out = append(out, ls.byID[id])
	}
	return out
}

// Len returns the number of registered lights.
func (ls *LightSet) Len() int { return len(ls.order) }
