package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// speechLifetime is how long a bubble stays visible, in seconds.
const speechLifetime = 3.0

// speechCooldown is the minimum seconds between barks per guard. Chase and
// Dead transitions bypass it so the loud moments always land.
const speechCooldown = 2.0

// bark emits a one-liner for a state transition. Most transitions have a
// phrase pool; the silent ones (waking up, dying) just pass.
func (g *Guard) bark(to, from GuardState, ctx *TickContext) {
	if ctx.Now-g.lastBarkAt < speechCooldown && to != StateChase {
		return
	}
	var pool []string
	switch to {
	case StateInvestigate:
		if from == StateChase {
			pool = []string{"Lost them. Checking the area.", "Where did they go?", "They can't be far."}
		} else {
			pool = []string{"Huh? What was that?", "Something over there...", "Better take a look."}
		}
	case StateChase:
		pool = []string{"Intruder!", "There! Stop!", "I see you!"}
	case StateAlert:
		if from == StateSleeping {
			pool = []string{"Wha-- who's there?!", "I'm up, I'm up!"}
		} else {
			pool = []string{"Stay sharp.", "Eyes open."}
		}
	case StatePatrol, StateIdle:
		if from == StateInvestigate || from == StateAlert {
			pool = []string{"Must have been rats.", "Guess it was nothing.", "Back to rounds."}
		}
	}
	if len(pool) == 0 {
		return
	}
	g.say(pool[ctx.RNG.Intn(len(pool))], ctx)
}

// say puts a line above the guard's head and into the logs.
func (g *Guard) say(text string, ctx *TickContext) {
	g.speechText = text
	g.speechLeft = speechLifetime
	g.lastBarkAt = ctx.Now
	ctx.Log.AddVerbose(ctx.Tick, g.label, g.arch.short(), "speech", "line", text, 0)
	if ctx.Thoughts != nil {
		ctx.Thoughts.Add(ctx.Tick, g.label, g.state, text)
	}
}

// updateSpeech ages the bubbles. Runs after behavior so a bark from this
// tick keeps its full lifetime.
func (s *Scene) updateSpeech(dt float64) {
	for _, g := range s.guards {
		if g.speechLeft <= 0 {
			continue
		}
		g.speechLeft -= dt
		if g.speechLeft <= 0 {
			g.speechText = ""
		}
	}
}

// drawSpeechBubbles renders active speech bubbles above each guard.
func (gm *Game) drawSpeechBubbles(screen *ebiten.Image) {
	for _, g := range gm.scene.Guards() {
		if g.speechText == "" || g.state == StateDead {
			continue
		}
		progress := 1.0 - g.speechLeft/speechLifetime
		alpha := 1.0
		if progress > 0.70 {
			alpha = 1.0 - (progress-0.70)/0.30
		}
		if alpha < 0.05 {
			continue
		}

		const charW = 6
		const lineH = 14
		const padX = 5
		const padY = 3

		sx, sy := gm.worldToScreen(g.x, g.y)
		textW := float32(len(g.speechText) * charW)
		bgW := textW + padX*2
		bgH := float32(lineH + padY*2)
		bgX := float32(sx) - bgW/2
		bgY := float32(sy) - float32(guardRadius*gm.zoom) - bgH - 6

		vector.FillRect(screen, bgX, bgY, bgW, bgH,
			color.RGBA{R: 18, G: 18, B: 24, A: uint8(210 * alpha)}, false)
		// Accent stripe on the left edge, state coloured.
		accent := stateColor(g.state)
		accent.A = uint8(220 * alpha)
		vector.FillRect(screen, bgX, bgY, 3, bgH, accent, false)
		vector.StrokeRect(screen, bgX, bgY, bgW, bgH, 0.5,
			color.RGBA{R: 100, G: 100, B: 100, A: uint8(80 * alpha)}, false)

		ebitenutil.DebugPrintAt(screen, g.speechText, int(bgX)+padX+3, int(bgY)+padY)

		// Connector line from bubble to guard.
		vector.StrokeLine(screen, float32(sx), bgY+bgH, float32(sx),
			float32(sy)-float32(guardRadius*gm.zoom),
			0.5, color.RGBA{R: 100, G: 100, B: 100, A: uint8(60 * alpha)}, false)
	}
}
