package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2   // scale factor for inspector text rendering
	inspBufW  = 230 // buffer width in pixels (~38 chars at debug font)
	inspBufH  = 274 // buffer height in pixels
	inspPad   = 4   // padding in buffer-space pixels
	inspLineH = 13  // line height in buffer-space pixels
)

// Inspector holds the selected guard and view toggle state.
type Inspector struct {
	selected *Guard
	rawView  bool // false = curated, true = raw dump
}

// handleInspectorClick checks if a mouse click hit a guard and selects it.
// Dead guards are selectable so host kill/wake no-ops can be watched.
// Returns true if a guard was hit.
func (gm *Game) handleInspectorClick(mx, my int) bool {
	wx, wy := gm.screenToWorld(float64(mx), float64(my))

	// Pick radius: 16 screen pixels expressed in world space.
	clickRadius := 16.0 / gm.zoom
	clickRadius2 := clickRadius * clickRadius
	best2 := math.MaxFloat64
	var hit *Guard
	for _, g := range gm.scene.Guards() {
		dx := g.x - wx
		dy := g.y - wy
		d2 := dx*dx + dy*dy
		if d2 < clickRadius2 && d2 < best2 {
			best2 = d2
			hit = g
		}
	}
	if hit != nil {
		gm.inspector.selected = hit
		return true
	}
	// Click on empty space: deselect.
	gm.inspector.selected = nil
	return false
}

// drawInspector renders the inspector panel into an offscreen buffer at 1x,
// then blits it onto the screen at inspScale for readability.
func (gm *Game) drawInspector(screen *ebiten.Image) {
	g := gm.inspector.selected
	if g == nil {
		return
	}

	gm.inspBuf.Clear()

	buf := gm.inspBuf
	bw := float32(inspBufW)
	bh := float32(inspBufH)

	// Panel background.
	panelBg := color.RGBA{R: 13, G: 14, B: 20, A: 230}
	panelBorder := color.RGBA{R: 60, G: 66, B: 95, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, panelBg, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)
	// Inner highlight along top edge.
	vector.StrokeLine(buf, 1, 1, bw-1, 1, 1.0, color.RGBA{R: 90, G: 100, B: 140, A: 60}, false)

	lx := inspPad
	ly := inspPad

	// Title bar.
	title := fmt.Sprintf("[ %s %s ]", g.label, g.arch)
	ebitenutil.DebugPrintAt(buf, title, lx, ly)
	ly += inspLineH + 2

	viewName := "CURATED"
	if gm.inspector.rawView {
		viewName = "RAW"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("view: %s  [I] toggle", viewName), lx, ly)
	ly += inspLineH + 4

	vector.StrokeLine(buf, float32(lx), float32(ly), bw-float32(inspPad), float32(ly), 1.0, panelBorder, false)
	ly += 4

	if gm.inspector.rawView {
		gm.drawInspectorRaw(buf, g, lx, ly)
	} else {
		gm.drawInspectorCurated(buf, g, lx, ly)
	}

	// Blit inspBuf onto screen at inspScale, positioned bottom-right of the
	// viewport.
	px := gm.offX + gm.viewW - inspBufW*inspScale - 10
	py := gm.offY + gm.viewH - inspBufH*inspScale - 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(inspScale), float64(inspScale))
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}

// drawInspectorCurated draws the organised, human-readable inspector view.
func (gm *Game) drawInspectorCurated(buf *ebiten.Image, g *Guard, lx, ly int) {
	tn := gm.scene.Tuning()
	p := gm.scene.Player()

	line := func(text string) {
		ebitenutil.DebugPrintAt(buf, text, lx, ly)
		ly += inspLineH
	}
	section := func(title string) {
		ly += 3
		ebitenutil.DebugPrintAt(buf, "-- "+title+" --", lx, ly)
		ly += inspLineH
	}
	bar := func(label string, v float64) {
		filled := int(v * 14)
		if filled < 0 {
			filled = 0
		}
		if filled > 14 {
			filled = 14
		}
		rest := 14 - filled
		b := ""
		for i := 0; i < filled; i++ {
			b += "█"
		}
		for i := 0; i < rest; i++ {
			b += "░"
		}
		ebitenutil.DebugPrintAt(buf, fmt.Sprintf("%-8s %s %.2f", label, b, v), lx, ly)
		ly += inspLineH
	}
	yn := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}

	section("SITUATION")
	line(fmt.Sprintf("state: %-11s %.1fs", g.state, gm.scene.Now()-g.stateEnteredAt))
	line(fmt.Sprintf("pos:(%.0f,%.0f) hdg:%.0f", g.x, g.y, g.vision.Heading*180/math.Pi))
	bar("suspicion", g.suspicion.Ratio())
	line(fmt.Sprintf("level %.2f / %.2f", g.suspicion.Level, g.suspicion.Max))

	// The four detection gates, evaluated live for the current player
	// position. Matches what runDetection checks each tick.
	section("SENSES")
	d := dist(g.x, g.y, p.X, p.Y)
	brg := HeadingTo(g.x, g.y, p.X, p.Y)
	off := math.Abs(normalizeAngle(brg - g.vision.Heading))
	line(fmt.Sprintf("range: %.0f / %.0f %s", d, g.vision.MaxRange, yn(d <= g.vision.MaxRange)))
	line(fmt.Sprintf("bearing: %.0f  off-axis: %.0f", brg*180/math.Pi, off*180/math.Pi))
	line(fmt.Sprintf("cone: %s  los: %s",
		yn(g.vision.InCone(g.x, g.y, p.X, p.Y)),
		yn(HasLineOfSight(g.x, g.y, p.X, p.Y, gm.scene.Obstacles()))))
	hidden := p.Stealth != nil && p.Stealth.IsHidden()
	line(fmt.Sprintf("target hidden: %s", yn(hidden)))
	line(fmt.Sprintf("detected: %s", yn(g.detected)))
	if g.detected || g.lastDetectedAt > 0 {
		line(fmt.Sprintf("last known:(%.0f,%.0f)", g.lastKnownX, g.lastKnownY))
	}

	section("TASK")
	switch g.state {
	case StatePatrol:
		line(fmt.Sprintf("waypoint %d/%d dwell %.1fs", g.routeIndex+1, len(g.route), math.Max(0, g.dwellLeft)))
	case StateInvestigate:
		line(fmt.Sprintf("lead:(%.0f,%.0f) arrived:%s", g.investigateX, g.investigateY, yn(g.investigateArrived)))
		if g.search.active {
			line(fmt.Sprintf("search: %d attempts left", g.search.attemptsLeft))
			line(fmt.Sprintf("point:(%.0f,%.0f)", g.search.targetX, g.search.targetY))
		} else if g.investigateArrived {
			line(fmt.Sprintf("dwell %.1fs", math.Max(0, g.investigateDwell)))
		}
	case StateChase:
		line(fmt.Sprintf("chasing to (%.0f,%.0f)", g.lastKnownX, g.lastKnownY))
		line(fmt.Sprintf("contact %.1fs ago", gm.scene.Now()-g.lastDetectedAt))
	case StateAlert:
		line(fmt.Sprintf("cooldown %.1fs", math.Max(0, tn.Guard.AlertCooldown-(gm.scene.Now()-g.stateEnteredAt))))
	case StateIdle:
		if g.arch == ArchStationary {
			line(fmt.Sprintf("facing flip in %.1fs", math.Max(0, g.facingFlipLeft)))
		} else if g.arch == ArchScripted && g.seq != nil {
			line(fmt.Sprintf("script step %d/%d", g.seq.StepIndex()+1, len(g.seq.steps)))
		} else {
			line("holding position")
		}
	case StateSleeping:
		line("asleep (wake or alert only)")
	case StateDead:
		line("terminal")
	}
	line(fmt.Sprintf("alert marker: %s", yn(g.alertVisual)))
}

// drawInspectorRaw dumps the guard's fields verbatim.
func (gm *Game) drawInspectorRaw(buf *ebiten.Image, g *Guard, lx, ly int) {
	line := func(text string) {
		ebitenutil.DebugPrintAt(buf, text, lx, ly)
		ly += inspLineH
	}

	line(fmt.Sprintf("id=%d %s arch=%s", g.id, g.label, g.arch.short()))
	line(fmt.Sprintf("pos=(%.1f,%.1f) v=(%.1f,%.1f)", g.x, g.y, g.vx, g.vy))
	line(fmt.Sprintf("st=%s t0=%.2f tick0=%d", g.state, g.stateEnteredAt, g.stateEnteredTick))
	line(fmt.Sprintf("hdg=%.2f fov=%.2f rng=%.0f", g.vision.Heading, g.vision.FOV, g.vision.MaxRange))
	line(fmt.Sprintf("route=%d/%d dwell=%.2f", g.routeIndex, len(g.route), g.dwellLeft))
	line(fmt.Sprintf("path=%d/%d goal=(%.0f,%.0f)", g.pathIndex, len(g.path), g.pathGoalX, g.pathGoalY))
	line(fmt.Sprintf("susp=%.3f/%.1f armed=%v", g.suspicion.Level, g.suspicion.Max, g.suspicionArmed))
	line(fmt.Sprintf("noise=(%.0f,%.0f)", g.lastNoiseX, g.lastNoiseY))
	line(fmt.Sprintf("det=%v lastDet=%.2f", g.detected, g.lastDetectedAt))
	line(fmt.Sprintf("known=(%.0f,%.0f)", g.lastKnownX, g.lastKnownY))
	line(fmt.Sprintf("inv=(%.0f,%.0f) arr=%v dw=%.2f", g.investigateX, g.investigateY, g.investigateArrived, g.investigateDwell))
	line(fmt.Sprintf("srch act=%v left=%d walk=%v", g.search.active, g.search.attemptsLeft, g.search.walking))
	line(fmt.Sprintf("  org=(%.0f,%.0f) tgt=(%.0f,%.0f)", g.search.originX, g.search.originY, g.search.targetX, g.search.targetY))
	line(fmt.Sprintf("alertVis=%v collide=%v", g.alertVisual, g.collidable))
	line(fmt.Sprintf("flip=%.2f want=%.2f", g.facingFlipLeft, g.desiredHeading))
	if g.seq != nil {
		line(fmt.Sprintf("seq step=%d done=%v", g.seq.StepIndex(), g.seq.Done()))
	}
	line(fmt.Sprintf("speech=%.1fs %q", math.Max(0, g.speechLeft), g.speechText))
}
