package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a simulation run.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "G2", "P", or "sim" for global events
	Arch     string  // short archetype tag ("ptrl", "stat", "slpr", "scrp", "plyr") or ""
	Category string  // scene, config, stealth, suspicion, detect, alert, fsm, move, search, capture, speech
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] G1   fsm       state_change     patrol → investigate
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a run. Unlike ThoughtLog (UI
// ring-buffer), SimLog is unbounded and machine-readable; tests and the
// headless reporter read it back.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick noise/movement
// chatter is also recorded (useful for detailed debugging).
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// SetVerbose toggles verbose recording; the scene constructs the log, so
// hosts flip this before Init when they want the chatter.
func (sl *SimLog) SetVerbose(v bool) { sl.verbose = v }

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, arch, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Arch:     arch,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, arch, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, arch, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// FirstOf returns the earliest entry matching category+key, or false if none.
func (sl *SimLog) FirstOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[0], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the simulation state.
func (sl *SimLog) Summary(tick int, guards []*Guard, player *Player) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	stateCount := map[GuardState]int{}
	for _, g := range guards {
		stateCount[g.state]++
	}
	sb.WriteString("Guards: ")
	for _, st := range []GuardState{StateIdle, StatePatrol, StateInvestigate,
		StateChase, StateAlert, StateSleeping, StateDead} {
		if n := stateCount[st]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", st, n)
		}
	}
	sb.WriteByte('\n')

	for _, g := range guards {
		fmt.Fprintf(&sb, "%s[%s] %s susp=%.2f pos=(%.0f,%.0f)\n",
			g.label, g.arch.short(), g.state, g.suspicion.Level, g.x, g.y)
	}

	if player != nil {
		visibility := "EXPOSED"
		if player.Stealth != nil && player.Stealth.IsHidden() {
			visibility = "hidden"
		}
		light := 0.0
		if player.Stealth != nil {
			light = player.Stealth.CurrentLight()
		}
		fmt.Fprintf(&sb, "Player: pos=(%.0f,%.0f) light=%.2f %s\n",
			player.X, player.Y, light, visibility)
	}

	fmt.Fprintf(&sb, "Detections: %d  Broadcasts: %d  Searches exhausted: %d\n",
		sl.CountCategory("detect", "edge_rise"),
		sl.CountCategory("alert", "broadcast"),
		sl.CountCategory("search", "exhausted"))

	return sb.String()
}
