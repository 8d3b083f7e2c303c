package main

import (
	"testing"

	"github.com/Garsondee/Shadow-Sense/internal/game"
)

func TestFirstTickScansByValueSubstring(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 10, Category: "fsm", Key: "state_change", Value: "idle → patrol"},
		{Tick: 42, Category: "fsm", Key: "state_change", Value: "patrol → investigate"},
		{Tick: 50, Category: "alert", Key: "broadcast", Value: "at (10,10)"},
		{Tick: 61, Category: "fsm", Key: "state_change", Value: "investigate → chase"},
	}

	if got := firstTick(entries, "fsm", "state_change", "→ investigate"); got != 42 {
		t.Fatalf("expected first investigate at tick 42, got %d", got)
	}
	if got := firstTick(entries, "alert", "broadcast", ""); got != 50 {
		t.Fatalf("expected first broadcast at tick 50, got %d", got)
	}
	if got := firstTick(entries, "fsm", "state_change", "→ alert"); got != -1 {
		t.Fatalf("expected -1 for a transition that never happened, got %d", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("expected n/a for no samples, got %s", got)
	}
	if got := avgTickString([]int{100, 200}); got != "150.0" {
		t.Fatalf("expected 150.0, got %s", got)
	}
}

func TestFormatStatesIsSortedByLabel(t *testing.T) {
	got := formatStates(map[string]string{
		"G2": "idle",
		"G1": "patrol",
		"G3": "dead",
	})
	want := "G1=patrol G2=idle G3=dead"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatGradeCountsKeepsSeverityOrder(t *testing.T) {
	got := formatGradeCounts(map[string]int{
		"CAPTURED": 1,
		"GHOST":    3,
	})
	want := "GHOST=3 CAPTURED=1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := formatGradeCounts(map[string]int{}); got != "none" {
		t.Fatalf("expected none for empty counts, got %q", got)
	}
}

func TestCollectRunReadsOutcomeAndLog(t *testing.T) {
	level, err := game.BuildLevel("warehouse")
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	scene := game.NewScene(level, game.DefaultTuning(), 7)
	if err := scene.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i := 0; i < 120; i++ {
		scene.Tick(1.0 / 60.0)
	}

	rs := collectRun(1, 7, scene)
	if rs.runIndex != 1 || rs.seed != 7 {
		t.Fatalf("expected run 1 seed 7, got run %d seed %d", rs.runIndex, rs.seed)
	}
	if rs.grade == "" {
		t.Fatalf("expected a grade, got empty string")
	}
	if len(rs.finalStates) != len(scene.Guards()) {
		t.Fatalf("expected %d final states, got %d", len(scene.Guards()), len(rs.finalStates))
	}
}
