package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

// stateColor maps a guard state to its render colour. The same palette is
// used for bodies, log dots, speech accents, and cone tints.
func stateColor(st GuardState) color.RGBA {
	switch st {
	case StateIdle:
		return colornames.Mediumseagreen
	case StatePatrol:
		return colornames.Steelblue
	case StateInvestigate:
		return colornames.Goldenrod
	case StateChase:
		return colornames.Crimson
	case StateAlert:
		return colornames.Darkorange
	case StateSleeping:
		return colornames.Slategray
	case StateDead:
		return colornames.Dimgray
	}
	return colornames.White
}

// drawWorld renders the whole scene into the world buffer in world-space
// coordinates. The camera transform is applied on blit.
func (gm *Game) drawWorld(dst *ebiten.Image) {
	gw, gh := float32(gm.worldW), float32(gm.worldH)

	// Ground fill: unlit night floor.
	vector.FillRect(dst, 0, 0, gw, gh, color.RGBA{R: 22, G: 24, B: 32, A: 255}, false)

	gridFine := cellSize
	gridCoarse := gridFine * 4
	drawGridOffset(dst, 0, 0, gm.worldW, gm.worldH, gridFine, color.RGBA{R: 26, G: 28, B: 38, A: 255})
	drawGridOffset(dst, 0, 0, gm.worldW, gm.worldH, gridCoarse, color.RGBA{R: 32, G: 35, B: 48, A: 255})

	gm.drawLightBlooms(dst)

	if gm.showLight {
		gm.drawLightHeatmap(dst)
	}

	gm.drawObstacles(dst)

	if gm.showNav {
		gm.drawNavOverlay(dst)
	}

	if gm.showRoutes {
		gm.drawPatrolRoutes(dst)
	}

	if gm.showCones {
		gm.drawVisionCones(dst)
	}

	for _, g := range gm.scene.Guards() {
		gm.drawGuard(dst, g)
	}
	gm.drawPlayer(dst)

	gm.drawRipples(dst)
	gm.drawSelectionRing(dst)
	gm.drawVignette(dst)
}

// drawLightBlooms renders each registered light as concentric translucent
// discs. Global lights wash the whole floor instead.
func (gm *Game) drawLightBlooms(dst *ebiten.Image) {
	gw, gh := float32(gm.worldW), float32(gm.worldH)
	for _, l := range gm.scene.Lights().All() {
		if l.Kind == LightGlobal {
			a := uint8(clamp01(l.Intensity) * 70)
			vector.FillRect(dst, 0, 0, gw, gh, color.RGBA{R: 210, G: 200, B: 170, A: a}, false)
			continue
		}

		fx := float32(l.X)
		fy := float32(l.Y)
		r := float32(l.Radius)
		gain := clamp01(l.Intensity)

		// Warm lamp bloom: three rings of decreasing radius, rising opacity.
		vector.FillCircle(dst, fx, fy, r,
			color.RGBA{R: 255, G: 220, B: 150, A: uint8(22 * gain)}, false)
		vector.FillCircle(dst, fx, fy, r*0.55,
			color.RGBA{R: 255, G: 225, B: 160, A: uint8(34 * gain)}, false)
		vector.FillCircle(dst, fx, fy, r*0.22,
			color.RGBA{R: 255, G: 235, B: 180, A: uint8(52 * gain)}, false)
		// Fixture.
		vector.FillCircle(dst, fx, fy, 3,
			color.RGBA{R: 255, G: 250, B: 220, A: 230}, false)
		vector.StrokeCircle(dst, fx, fy, 4.5, 1.0,
			color.RGBA{R: 120, G: 110, B: 80, A: 180}, false)
	}
}

// drawLightHeatmap samples the full illumination field per grid cell and
// washes it white. Debug view for tuning light placement.
func (gm *Game) drawLightHeatmap(dst *ebiten.Image) {
	sampler := gm.scene.Sampler()
	cs := float32(cellSize)
	for y := 0; y < gm.worldH; y += cellSize {
		for x := 0; x < gm.worldW; x += cellSize {
			v := sampler.SampleFull(float64(x)+cellSize/2, float64(y)+cellSize/2)
			if v < 0.02 {
				continue
			}
			a := uint8(120 * clamp01(v))
			if a < 2 {
				continue
			}
			vector.FillRect(dst, float32(x), float32(y), cs, cs,
				color.RGBA{R: 250, G: 245, B: 230, A: a}, false)
		}
	}
}

// drawObstacles renders walls as filled cells with a lit top-left edge and a
// shadowed bottom-right edge.
func (gm *Game) drawObstacles(dst *ebiten.Image) {
	wallFill := color.RGBA{R: 62, G: 64, B: 76, A: 255}
	wallLight := color.RGBA{R: 92, G: 95, B: 112, A: 200}
	wallDark := color.RGBA{R: 36, G: 37, B: 46, A: 200}
	for _, o := range gm.scene.Obstacles() {
		x0 := float32(o.x)
		y0 := float32(o.y)
		bw := float32(o.w)
		bh := float32(o.h)
		// Soft drop shadow.
		vector.FillRect(dst, x0+3, y0+3, bw, bh, color.RGBA{R: 4, G: 4, B: 8, A: 90}, false)
		vector.FillRect(dst, x0, y0, bw, bh, wallFill, false)
		// Top-left highlight.
		vector.StrokeLine(dst, x0, y0, x0+bw, y0, 0.5, wallLight, false)
		vector.StrokeLine(dst, x0, y0, x0, y0+bh, 0.5, wallLight, false)
		// Bottom-right shadow.
		vector.StrokeLine(dst, x0, y0+bh, x0+bw, y0+bh, 0.5, wallDark, false)
		vector.StrokeLine(dst, x0+bw, y0, x0+bw, y0+bh, 0.5, wallDark, false)
	}
}

// drawNavOverlay marks blocked nav cells. Debug view.
func (gm *Game) drawNavOverlay(dst *ebiten.Image) {
	nav := gm.scene.Nav()
	cs := float32(cellSize)
	blockedCol := color.RGBA{R: 200, G: 60, B: 60, A: 60}
	for cy := 0; cy < nav.Rows(); cy++ {
		for cx := 0; cx < nav.Cols(); cx++ {
			if !nav.IsBlocked(cx, cy) {
				continue
			}
			vector.FillRect(dst, float32(cx)*cs, float32(cy)*cs, cs, cs, blockedCol, false)
		}
	}
}

// drawPatrolRoutes renders each patroller's loop as faint lines with
// waypoint dots.
func (gm *Game) drawPatrolRoutes(dst *ebiten.Image) {
	lineCol := color.RGBA{R: 80, G: 110, B: 150, A: 50}
	dotCol := color.RGBA{R: 110, G: 150, B: 200, A: 110}
	for _, g := range gm.scene.Guards() {
		if len(g.route) < 2 {
			continue
		}
		for i := range g.route {
			a := g.route[i]
			b := g.route[(i+1)%len(g.route)]
			vector.StrokeLine(dst, float32(a[0]), float32(a[1]), float32(b[0]), float32(b[1]), 1.0, lineCol, false)
		}
		for _, p := range g.route {
			vector.FillCircle(dst, float32(p[0]), float32(p[1]), 2.0, dotCol, false)
		}
	}
}

// drawVisionCones renders guard FOV fans grouped by alarm level so calm and
// hunting guards read differently at a glance.
func (gm *Game) drawVisionCones(dst *ebiten.Image) {
	calm := func(st GuardState) bool { return st == StateIdle || st == StatePatrol }
	hunting := func(st GuardState) bool { return st == StateInvestigate || st == StateAlert }
	chasing := func(st GuardState) bool { return st == StateChase }

	gm.drawConeGroup(dst, calm, color.RGBA{R: 220, G: 210, B: 140, A: 255}, 0.07)
	gm.drawConeGroup(dst, hunting, color.RGBA{R: 240, G: 150, B: 40, A: 255}, 0.10)
	gm.drawConeGroup(dst, chasing, color.RGBA{R: 235, G: 40, B: 40, A: 255}, 0.14)
}

// drawConeGroup renders one alarm level's FOV fans into an offscreen buffer,
// then composites that buffer onto the world with a single controlled
// opacity. This eliminates additive blowout from overlapping cones.
func (gm *Game) drawConeGroup(dst *ebiten.Image, want func(GuardState) bool, tint color.RGBA, opacity float64) {
	buf := gm.visionBuf
	buf.Clear()
	obstacles := gm.scene.Obstacles()

	drew := false
	for _, g := range gm.scene.Guards() {
		if !want(g.state) {
			continue
		}
		drew = true
		v := &g.vision
		halfFOV := v.FOV / 2.0
		coneLen := v.MaxRange
		const steps = 36
		sx, sy := float32(g.x), float32(g.y)

		// Solid white fan clipped by walls; tint + fade on composite.
		var path vector.Path
		path.MoveTo(sx, sy)
		for i := 0; i <= steps; i++ {
			a := v.Heading - halfFOV + (v.FOV/float64(steps))*float64(i)
			ex := g.x + math.Cos(a)*coneLen
			ey := g.y + math.Sin(a)*coneLen
			pxW, pyW := clipRayToObstacles(g.x, g.y, ex, ey, obstacles)
			path.LineTo(float32(pxW), float32(pyW))
		}
		path.Close()
		vector.FillPath(buf, &path, &vector.FillOptions{}, &vector.DrawPathOptions{AntiAlias: true})

		// Faint bounding rays.
		edgeCol := color.RGBA{R: 255, G: 255, B: 255, A: 70}
		for _, a := range []float64{v.Heading - halfFOV, v.Heading + halfFOV} {
			ex := g.x + math.Cos(a)*coneLen
			ey := g.y + math.Sin(a)*coneLen
			pxW, pyW := clipRayToObstacles(g.x, g.y, ex, ey, obstacles)
			vector.StrokeLine(buf, sx, sy, float32(pxW), float32(pyW), 1.0, edgeCol, false)
		}
	}
	if !drew {
		return
	}

	opts := &ebiten.DrawImageOptions{}
	opts.ColorScale.ScaleWithColor(tint)
	opts.ColorScale.ScaleAlpha(float32(opacity))
	dst.DrawImage(buf, opts)
}

// drawGuard renders one guard: body disc, state ring, heading tick,
// suspicion bar, and the alert "!" marker.
func (gm *Game) drawGuard(dst *ebiten.Image, g *Guard) {
	sx, sy := float32(g.x), float32(g.y)
	col := stateColor(g.state)
	r := float32(guardRadius)

	if g.state == StateDead {
		body := color.RGBA{R: 52, G: 52, B: 58, A: 255}
		vector.FillCircle(dst, sx, sy, r, body, false)
		vector.StrokeCircle(dst, sx, sy, r, 1.0, color.RGBA{R: 80, G: 80, B: 88, A: 200}, false)
		// Crossed strokes over the body.
		xc := color.RGBA{R: 130, G: 130, B: 140, A: 220}
		d := r * 0.6
		vector.StrokeLine(dst, sx-d, sy-d, sx+d, sy+d, 1.5, xc, false)
		vector.StrokeLine(dst, sx-d, sy+d, sx+d, sy-d, 1.5, xc, false)
		ebitenutil.DebugPrintAt(dst, g.label, int(sx)-6, int(sy)+int(r)+2)
		return
	}

	// Soft shadow, dimmed body, bright state ring.
	vector.FillCircle(dst, sx+1.5, sy+1.5, r, color.RGBA{R: 0, G: 0, B: 0, A: 90}, false)
	body := color.RGBA{R: col.R / 2, G: col.G / 2, B: col.B / 2, A: 255}
	vector.FillCircle(dst, sx, sy, r, body, false)
	vector.StrokeCircle(dst, sx, sy, r, 1.5, col, false)

	// Heading tick.
	hx := sx + float32(math.Cos(g.vision.Heading))*(r+4)
	hy := sy + float32(math.Sin(g.vision.Heading))*(r+4)
	vector.StrokeLine(dst, sx, sy, hx, hy, 1.5, col, false)

	ebitenutil.DebugPrintAt(dst, g.label, int(sx)-6, int(sy)+int(r)+2)

	if g.state == StateSleeping {
		ebitenutil.DebugPrintAt(dst, "zZ", int(sx)+int(r), int(sy)-int(r)-12)
	}

	// Suspicion bar above the body, yellow shading to red as it fills.
	ratio := g.suspicion.Ratio()
	if ratio > 0.01 {
		bw := float32(16)
		bh := float32(2.5)
		bx := sx - bw/2
		by := sy - r - 7
		vector.FillRect(dst, bx, by, bw, bh, color.RGBA{R: 20, G: 20, B: 24, A: 200}, false)
		fill := color.RGBA{
			R: 230,
			G: uint8(200 * (1 - ratio)),
			B: 30,
			A: 230,
		}
		vector.FillRect(dst, bx, by, bw*float32(ratio), bh, fill, false)
	}

	// "!" marker while the guard is working an alert.
	if g.alertVisual {
		c := color.RGBA{R: 255, G: 190, B: 70, A: 220}
		topY := sy - r - 18
		vector.StrokeLine(dst, sx, topY, sx, topY+5, 1.5, c, false)
		vector.FillCircle(dst, sx, topY+7, 1.0, c, false)
	}
}

// drawPlayer renders the player with a hidden/exposed treatment and a light
// meter showing the sampled level against the effective threshold.
func (gm *Game) drawPlayer(dst *ebiten.Image) {
	p := gm.scene.Player()
	sx, sy := float32(p.X), float32(p.Y)
	r := float32(playerRadius)

	hidden := p.Stealth != nil && p.Stealth.IsHidden()
	if hidden {
		vector.FillCircle(dst, sx, sy, r, color.RGBA{R: 36, G: 44, B: 66, A: 255}, false)
		vector.StrokeCircle(dst, sx, sy, r, 1.0, color.RGBA{R: 100, G: 120, B: 170, A: 170}, false)
	} else {
		vector.FillCircle(dst, sx+1.5, sy+1.5, r, color.RGBA{R: 0, G: 0, B: 0, A: 90}, false)
		vector.FillCircle(dst, sx, sy, r, color.RGBA{R: 120, G: 170, B: 255, A: 255}, false)
		vector.StrokeCircle(dst, sx, sy, r, 1.5, colornames.White, false)
	}
	ebitenutil.DebugPrintAt(dst, p.label, int(sx)-3, int(sy)+int(r)+2)

	if p.Stealth == nil {
		return
	}

	// Light meter under the body: fill = light level, notch = threshold.
	bw := float32(18)
	bh := float32(3)
	bx := sx - bw/2
	by := sy + r + 14
	vector.FillRect(dst, bx, by, bw, bh, color.RGBA{R: 16, G: 16, B: 20, A: 220}, false)
	level := float32(clamp01(p.Stealth.CurrentLight()))
	meterCol := color.RGBA{R: 240, G: 235, B: 170, A: 230}
	if hidden {
		meterCol = color.RGBA{R: 120, G: 140, B: 190, A: 230}
	}
	vector.FillRect(dst, bx, by, bw*level, bh, meterCol, false)
	notch := float32(clamp01(p.Stealth.EffectiveThreshold()))
	vector.StrokeLine(dst, bx+bw*notch, by-1, bx+bw*notch, by+bh+1, 1.0,
		color.RGBA{R: 255, G: 90, B: 90, A: 230}, false)
}

// drawRipples renders expanding rings at recent alert broadcast positions,
// growing out to the actual alert radius.
func (gm *Game) drawRipples(dst *ebiten.Image) {
	maxR := gm.scene.Tuning().Alert.Radius
	for _, rp := range gm.ripples {
		prog := rp.age / rippleLifetime
		rad := float32(14 + prog*(maxR-14))
		a := uint8(170 * (1 - prog))
		if a < 2 {
			continue
		}
		vector.StrokeCircle(dst, float32(rp.x), float32(rp.y), rad, 2.0,
			color.RGBA{R: 255, G: 120, B: 50, A: a}, false)
	}
}

// drawSelectionRing renders a segmented ring around the inspected guard.
func (gm *Game) drawSelectionRing(dst *ebiten.Image) {
	sel := gm.inspector.selected
	if sel == nil {
		return
	}
	sr := float32(guardRadius + 5)
	sx := float32(sel.x)
	sy := float32(sel.y)
	ringCol := color.RGBA{R: 255, G: 240, B: 60, A: 220}
	for a := 0; a < 16; a++ {
		ang0 := float64(a) / 16.0 * 2 * math.Pi
		ang1 := float64(a+1) / 16.0 * 2 * math.Pi
		vector.StrokeLine(dst,
			sx+sr*float32(math.Cos(ang0)),
			sy+sr*float32(math.Sin(ang0)),
			sx+sr*float32(math.Cos(ang1)),
			sy+sr*float32(math.Sin(ang1)),
			1.5, ringCol, false)
	}
}

// drawVignette darkens the world edges. Two bands: soft inner, hard outer.
func (gm *Game) drawVignette(dst *ebiten.Image) {
	gw, gh := float32(gm.worldW), float32(gm.worldH)

	outer := float32(30)
	outerDark := color.RGBA{R: 0, G: 0, B: 0, A: 80}
	vector.FillRect(dst, 0, 0, gw, outer, outerDark, false)
	vector.FillRect(dst, 0, gh-outer, gw, outer, outerDark, false)
	vector.FillRect(dst, 0, 0, outer, gh, outerDark, false)
	vector.FillRect(dst, gw-outer, 0, outer, gh, outerDark, false)

	inner := float32(90)
	innerDark := color.RGBA{R: 0, G: 0, B: 0, A: 30}
	vector.FillRect(dst, 0, 0, gw, inner, innerDark, false)
	vector.FillRect(dst, 0, gh-inner, gw, inner, innerDark, false)
	vector.FillRect(dst, 0, 0, inner, gh, innerDark, false)
	vector.FillRect(dst, gw-inner, 0, inner, gh, innerDark, false)
}

func drawGridOffset(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}
