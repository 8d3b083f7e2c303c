package game

import (
	"fmt"
	"strings"
)

// Grade buckets for a finished run, from cleanest to worst.
const (
	GradeGhost     = "GHOST"     // never even suspected
	GradeSuspected = "SUSPECTED" // somebody investigated, nobody saw the player
	GradeSpotted   = "SPOTTED"   // at least one direct detection
	GradeCaptured  = "CAPTURED"  // a chaser closed to capture range
)

// GradeRun buckets an outcome.
func GradeRun(o Outcome) string {
	switch {
	case o.Captured:
		return GradeCaptured
	case o.Detections > 0:
		return GradeSpotted
	case o.Investigations > 0:
		return GradeSuspected
	}
	return GradeGhost
}

// storyCategories are the SimLog categories worth retelling in a report.
var storyCategories = map[string]bool{
	"fsm":     true,
	"detect":  true,
	"alert":   true,
	"capture": true,
	"search":  true,
	"stealth": true,
	"config":  true,
}

// BuildReport renders a plain-text account of a run: header, outcome,
// per-guard standing, player state, counters, and a story of the notable
// log events. Used by the inspector's clipboard export and the headless
// reporter.
func BuildReport(s *Scene) string {
	o := s.Outcome()
	log := s.Log()

	var b strings.Builder
	fmt.Fprintf(&b, "--- ShadowSense run report ---\n")
	fmt.Fprintf(&b, "level=%s seed=%d ticks=%d time=%.1fs\n",
		s.LevelName(), s.Seed(), s.TickCount(), s.Now())
	fmt.Fprintf(&b, "outcome: %s", GradeRun(o))
	if o.FirstDetectTick >= 0 {
		fmt.Fprintf(&b, "  first_detect=T%d", o.FirstDetectTick)
	}
	if o.Captured {
		fmt.Fprintf(&b, "  capture=T%d", o.CaptureTick)
	}
	b.WriteString("\n\n== Guards ==\n")

	for _, g := range s.Guards() {
		flags := ""
		if g.detected {
			flags += " [CONTACT]"
		}
		if g.alertVisual {
			flags += " [!]"
		}
		fmt.Fprintf(&b, "%s[%s] %-11s susp=%.2f pos=(%.0f,%.0f)%s\n",
			g.label, g.arch.short(), g.state.String(), g.suspicion.Level, g.x, g.y, flags)
	}

	p := s.Player()
	b.WriteString("\n== Player ==\n")
	visibility := "EXPOSED"
	if p.Stealth != nil && p.Stealth.IsHidden() {
		visibility = "hidden"
	}
	light, threshold := 0.0, 0.0
	if p.Stealth != nil {
		light = p.Stealth.CurrentLight()
		threshold = p.Stealth.EffectiveThreshold()
	}
	fmt.Fprintf(&b, "pos=(%.0f,%.0f) light=%.2f threshold=%.2f %s\n",
		p.X, p.Y, light, threshold, visibility)

	b.WriteString("\n== Counters ==\n")
	fmt.Fprintf(&b, "detections=%d broadcasts=%d deliveries=%d investigations=%d searches_exhausted=%d hidden_flips=%d\n",
		o.Detections,
		o.Broadcasts,
		log.CountCategory("alert", "deliver"),
		o.Investigations,
		log.CountCategory("search", "exhausted"),
		log.CountCategory("stealth", "hidden_change"))

	story := storyLines(log)
	if len(story) > 0 {
		b.WriteString("\n== Story ==\n")
		for _, line := range story {
			b.WriteString("  - ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// storyLines picks the narratable entries out of the log, capped so a long
// run still pastes cleanly.
func storyLines(log *SimLog) []string {
	const maxLines = 30
	var out []string
	total := 0
	for _, e := range log.Entries() {
		if !storyCategories[e.Category] {
			continue
		}
		total++
		if len(out) < maxLines {
			out = append(out, fmt.Sprintf("T=%d %s %s: %s", e.Tick, e.Agent, e.Key, e.Value))
		}
	}
	if total > maxLines {
		out = append(out, fmt.Sprintf("... (%d more events)", total-maxLines))
	}
	return out
}
