package main

import (
	"flag"
	"log"
	"time"

	"github.com/Garsondee/Shadow-Sense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	levelName := flag.String("level", "warehouse", "built-in level name")
	scenarioPath := flag.String("scenario", "", "YAML scenario file (overrides -level)")
	tuningPath := flag.String("tuning", "", "YAML tuning overrides")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	tn := game.DefaultTuning()
	if *tuningPath != "" {
		var err error
		tn, err = game.LoadTuning(*tuningPath)
		if err != nil {
			log.Fatalf("tuning: %v", err)
		}
	}

	var level *game.Level
	var script []game.SeqStep
	if *scenarioPath != "" {
		sc, err := game.LoadScenario(*scenarioPath)
		if err != nil {
			log.Fatalf("scenario: %v", err)
		}
		level, err = sc.BuildLevel()
		if err != nil {
			log.Fatalf("scenario: %v", err)
		}
		script, err = sc.PlayerScript()
		if err != nil {
			log.Fatalf("scenario: %v", err)
		}
	} else {
		var err error
		level, err = game.BuildLevel(*levelName)
		if err != nil {
			log.Fatalf("level: %v", err)
		}
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	scene := game.NewScene(level, tn, *seed)
	if err := scene.Init(); err != nil {
		log.Fatalf("scene init: %v", err)
	}
	if len(script) > 0 {
		scene.Player().SetScript(script)
	}

	gm := game.NewGame(scene)
	ebiten.SetWindowTitle("Shadow Sense: " + level.Name)
	ebiten.SetWindowSize(gm.WindowSize())
	if err := ebiten.RunGame(gm); err != nil {
		log.Fatal(err)
	}
}
