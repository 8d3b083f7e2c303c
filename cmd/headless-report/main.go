package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Shadow-Sense/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome game.Outcome
	grade   string

	firstInvestigateTick int
	firstChaseTick       int
	firstBroadcastTick   int
	firstExhaustTick     int
	firstHiddenTick      int

	detections     int
	broadcasts     int
	deliveries     int
	noiseCrossings int
	hiddenFlips    int
	exhausted      int
	stateChanges   int

	finalStates map[string]string
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var levelName string
	var scenarioPath string
	var tuningPath string
	var dt float64
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&levelName, "level", "warehouse", "built-in level name")
	flag.StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides -level)")
	flag.StringVar(&tuningPath, "tuning", "", "YAML tuning overrides")
	flag.Float64Var(&dt, "dt", 1.0/60.0, "seconds per simulation tick")
	flag.BoolVar(&verbose, "v", false, "print the full run report per run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if dt <= 0 {
		fmt.Println("error: -dt must be > 0")
		return
	}

	tn := game.DefaultTuning()
	if tuningPath != "" {
		var err error
		tn, err = game.LoadTuning(tuningPath)
		if err != nil {
			fmt.Printf("error: tuning: %v\n", err)
			return
		}
	}

	buildLevel := func() (*game.Level, []game.SeqStep, error) {
		if scenarioPath != "" {
			sc, err := game.LoadScenario(scenarioPath)
			if err != nil {
				return nil, nil, err
			}
			level, err := sc.BuildLevel()
			if err != nil {
				return nil, nil, err
			}
			script, err := sc.PlayerScript()
			if err != nil {
				return nil, nil, err
			}
			return level, script, nil
		}
		level, err := game.BuildLevel(levelName)
		return level, nil, err
	}

	source := levelName
	if scenarioPath != "" {
		source = scenarioPath
	}
	fmt.Printf("=== Headless Stealth Report ===\n")
	fmt.Printf("source=%s runs=%d ticks=%d dt=%.4f seed_base=%d seed_step=%d\n\n",
		source, runs, ticks, dt, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep

		level, script, err := buildLevel()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		scene := game.NewScene(level, tn, seed)
		if err := scene.Init(); err != nil {
			fmt.Printf("error: scene init: %v\n", err)
			return
		}
		if len(script) > 0 {
			scene.Player().SetScript(script)
		}

		for t := 0; t < ticks; t++ {
			scene.Tick(dt)
		}

		stats := collectRun(i+1, seed, scene)
		all = append(all, stats)
		if verbose {
			fmt.Print(game.BuildReport(scene))
			fmt.Println()
		} else {
			printRun(stats)
		}
	}

	printAggregate(all)
}

func collectRun(runIndex int, seed int64, scene *game.Scene) runStats {
	sl := scene.Log()
	entries := sl.Entries()
	o := scene.Outcome()

	finalStates := map[string]string{}
	for _, g := range scene.Guards() {
		finalStates[g.Label()] = g.State().String()
	}

	return runStats{
		runIndex:             runIndex,
		seed:                 seed,
		outcome:              o,
		grade:                game.GradeRun(o),
		firstInvestigateTick: firstTick(entries, "fsm", "state_change", "→ investigate"),
		firstChaseTick:       firstTick(entries, "fsm", "state_change", "→ chase"),
		firstBroadcastTick:   firstTick(entries, "alert", "broadcast", ""),
		firstExhaustTick:     firstTick(entries, "search", "exhausted", ""),
		firstHiddenTick:      firstTick(entries, "stealth", "hidden_change", "hidden"),
		detections:           sl.CountCategory("detect", "edge_rise"),
		broadcasts:           sl.CountCategory("alert", "broadcast"),
		deliveries:           sl.CountCategory("alert", "deliver"),
		noiseCrossings:       sl.CountCategory("suspicion", "threshold_cross"),
		hiddenFlips:          sl.CountCategory("stealth", "hidden_change"),
		exhausted:            sl.CountCategory("search", "exhausted"),
		stateChanges:         sl.CountCategory("fsm", "state_change"),
		finalStates:          finalStates,
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: %s first_detect=%d capture=%d\n",
		rs.grade, rs.outcome.FirstDetectTick, rs.outcome.CaptureTick)
	fmt.Printf("phase_markers: first_hidden=%d first_investigate=%d first_chase=%d first_broadcast=%d first_exhaust=%d\n",
		rs.firstHiddenTick, rs.firstInvestigateTick, rs.firstChaseTick, rs.firstBroadcastTick, rs.firstExhaustTick)
	fmt.Printf("event_totals: detections=%d broadcasts=%d deliveries=%d noise_crossings=%d hidden_flips=%d searches_exhausted=%d state_changes=%d\n",
		rs.detections, rs.broadcasts, rs.deliveries, rs.noiseCrossings, rs.hiddenFlips, rs.exhausted, rs.stateChanges)
	fmt.Printf("guards_final: %s\n", formatStates(rs.finalStates))
	fmt.Println()
}

func printAggregate(all []runStats) {
	gradeCounts := map[string]int{}
	captured := 0
	totalDetections := 0
	totalBroadcasts := 0
	totalDeliveries := 0
	totalNoise := 0
	totalFlips := 0
	totalExhaust := 0
	totalStateChanges := 0

	detectTicks := make([]int, 0, len(all))
	investigateTicks := make([]int, 0, len(all))
	chaseTicks := make([]int, 0, len(all))
	captureTicks := make([]int, 0, len(all))

	for _, rs := range all {
		gradeCounts[rs.grade]++
		if rs.outcome.Captured {
			captured++
		}
		totalDetections += rs.detections
		totalBroadcasts += rs.broadcasts
		totalDeliveries += rs.deliveries
		totalNoise += rs.noiseCrossings
		totalFlips += rs.hiddenFlips
		totalExhaust += rs.exhausted
		totalStateChanges += rs.stateChanges
		if rs.outcome.FirstDetectTick >= 0 {
			detectTicks = append(detectTicks, rs.outcome.FirstDetectTick)
		}
		if rs.firstInvestigateTick >= 0 {
			investigateTicks = append(investigateTicks, rs.firstInvestigateTick)
		}
		if rs.firstChaseTick >= 0 {
			chaseTicks = append(chaseTicks, rs.firstChaseTick)
		}
		if rs.outcome.CaptureTick >= 0 {
			captureTicks = append(captureTicks, rs.outcome.CaptureTick)
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("grades: %s\n", formatGradeCounts(gradeCounts))
	fmt.Printf("capture_rate=%.0f%%\n", 100*float64(captured)/float64(len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_detect=%s first_investigate=%s first_chase=%s capture=%s\n",
		avgTickString(detectTicks), avgTickString(investigateTicks), avgTickString(chaseTicks), avgTickString(captureTicks))
	fmt.Printf("avg_events_per_run: detections=%.1f broadcasts=%.1f deliveries=%.1f noise_crossings=%.1f hidden_flips=%.1f searches_exhausted=%.1f state_changes=%.1f\n",
		avg(totalDetections, len(all)), avg(totalBroadcasts, len(all)), avg(totalDeliveries, len(all)),
		avg(totalNoise, len(all)), avg(totalFlips, len(all)), avg(totalExhaust, len(all)), avg(totalStateChanges, len(all)))
}

func formatStates(m map[string]string) string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l+"="+m[l])
	}
	return strings.Join(parts, " ")
}

func formatGradeCounts(m map[string]int) string {
	order := []string{"GHOST", "SUSPECTED", "SPOTTED", "CAPTURED"}
	parts := make([]string, 0, len(order))
	for _, g := range order {
		if n, ok := m[g]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", g, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
