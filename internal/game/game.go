package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 24

// hudScale is the integer upscale factor applied to all HUD text (3 = 3x larger).
const hudScale = 3

// simDT is the fixed simulation step the visual loop feeds the scene.
const simDT = 1.0 / 60.0

// Viewport caps: levels larger than this scroll behind the camera.
const (
	maxViewW = 960
	maxViewH = 640
)

// alertRipple is the expanding ring drawn where an alert broadcast went out.
type alertRipple struct {
	x, y float64
	age  float64
}

const rippleLifetime = 0.8 // seconds

// Game is the interactive ebiten shell around a Scene. All simulation state
// lives in the scene; the Game owns only camera, input, and render buffers.
type Game struct {
	scene *Scene

	width  int // window width
	height int // window height
	viewW  int // viewport (camera window) width
	viewH  int // viewport height
	offX   int // pixel offset from window left to viewport left
	offY   int // pixel offset from window top to viewport top
	worldW int
	worldH int

	// Overlay toggle state.
	showHUD    bool
	showCones  bool // guard vision cones
	showLight  bool // illumination heatmap
	showNav    bool // nav grid blocked cells
	showRoutes bool // patrol route lines
	prevKeys   map[ebiten.Key]bool

	// Offscreen buffer for vision cone rendering (avoids additive blowout).
	visionBuf *ebiten.Image
	// Offscreen buffer for the full world; camera transform applied on blit.
	worldBuf *ebiten.Image
	// Viewport buffer the camera blits into; clips the world to the window.
	viewBuf *ebiten.Image
	// Offscreen buffer for HUD text, rendered at 1x then blitted at hudScale.
	hudBuf *ebiten.Image
	// Offscreen buffer for the inspector panel, blitted at inspScale.
	inspBuf *ebiten.Image

	// Camera pan + zoom. The camera follows the player until the user pans.
	camX   float64 // world-space X of the camera centre
	camY   float64 // world-space Y of the camera centre
	zoom   float64 // zoom factor (1.0 = native, >1 = zoomed in)
	follow bool

	// Guard inspector (click-to-select panel).
	inspector     Inspector
	prevMouseLeft bool

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64 // fractional tick accumulator for sub-1x speeds

	// Transient visuals fed by scene events.
	ripples   []alertRipple
	toastText string
	toastLeft float64
}

// NewGame wraps an initialised scene in the interactive shell and registers
// itself as a scene listener so broadcasts and captures show on screen.
func NewGame(scene *Scene) *Game {
	ww, wh := scene.Size()
	vw := int(ww)
	vh := int(wh)
	if vw > maxViewW {
		vw = maxViewW
	}
	if vh > maxViewH {
		vh = maxViewH
	}

	gm := &Game{
		scene:      scene,
		width:      borderWidth + vw + borderWidth + logPanelWidth,
		height:     borderWidth + vh + borderWidth,
		viewW:      vw,
		viewH:      vh,
		offX:       borderWidth,
		offY:       borderWidth,
		worldW:     int(ww),
		worldH:     int(wh),
		showHUD:    true,
		showCones:  true,
		showRoutes: true,
		prevKeys:   make(map[ebiten.Key]bool),
		follow:     true,
		simSpeed:   1.0,
	}
	gm.worldBuf = ebiten.NewImage(gm.worldW, gm.worldH)
	gm.visionBuf = ebiten.NewImage(gm.worldW, gm.worldH)
	gm.viewBuf = ebiten.NewImage(vw, vh)
	// HUD buffer: 1/hudScale of screen so it renders crisply when scaled up.
	gm.hudBuf = ebiten.NewImage(gm.width/hudScale, gm.height/hudScale)
	gm.inspBuf = ebiten.NewImage(inspBufW, inspBufH)

	px, py := scene.Player().Position()
	gm.camX = px
	gm.camY = py
	gm.zoom = 1.0

	scene.AddListener(gm)
	return gm
}

// OnSimEvent mirrors notable scene events into the shell's transient visuals.
func (gm *Game) OnSimEvent(ev SimEvent) {
	switch ev.Kind {
	case EvAlertBroadcast:
		gm.ripples = append(gm.ripples, alertRipple{x: ev.X, y: ev.Y})
	case EvTargetDetected:
		gm.toast(fmt.Sprintf("%s spotted the player", ev.Agent))
	case EvCapture:
		gm.toast(fmt.Sprintf("CAPTURED by %s", ev.Agent))
		gm.simSpeed = 0
	case EvSearchExhausted:
		gm.toast(fmt.Sprintf("%s gave up the search", ev.Agent))
	}
}

func (gm *Game) toast(text string) {
	gm.toastText = text
	gm.toastLeft = 2.5
}

func (gm *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	gm.handleInput()

	// Transient visuals age in wall time so they fade while paused too.
	gm.updateTransients(simDT)

	if gm.simSpeed <= 0 {
		return nil
	}

	// For speeds > 1 run multiple sim ticks per frame.
	// For speeds < 1 accumulate fractions.
	gm.tickAccum += gm.simSpeed
	for gm.tickAccum >= 1.0 {
		gm.tickAccum -= 1.0
		gm.scene.Tick(simDT)
	}

	if gm.follow {
		px, py := gm.scene.Player().Position()
		gm.camX += (px - gm.camX) * 0.08
		gm.camY += (py - gm.camY) * 0.08
	}
	gm.clampCamera()
	return nil
}

func (gm *Game) updateTransients(dt float64) {
	kept := gm.ripples[:0]
	for _, r := range gm.ripples {
		r.age += dt
		if r.age < rippleLifetime {
			kept = append(kept, r)
		}
	}
	gm.ripples = kept
	if gm.toastLeft > 0 {
		gm.toastLeft -= dt
	}
}

// handleInput processes movement, camera, and toggle keys. Toggles are
// edge-triggered off the previous frame's key map.
func (gm *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !gm.prevKeys[k]
	}

	// WASD: player movement intent. The scene consumes the velocity on its
	// next tick; a scripted player ignores it.
	mx, my := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		my -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		my += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		mx -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		mx += 1
	}
	speed := gm.scene.Tuning().Player.WalkSpeed
	if mx != 0 || my != 0 {
		n := math.Hypot(mx, my)
		gm.scene.Player().SetVelocity(mx/n*speed, my/n*speed)
	} else {
		gm.scene.Player().SetVelocity(0, 0)
	}

	// Arrow keys: camera pan (disables follow until F re-enables it).
	panSpeed := 6.0 / gm.zoom
	panned := false
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		gm.camY -= panSpeed
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		gm.camY += panSpeed
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		gm.camX -= panSpeed
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		gm.camX += panSpeed
		panned = true
	}
	if panned {
		gm.follow = false
	}
	if pressed(ebiten.KeyF) {
		gm.follow = !gm.follow
	}

	// Camera zoom: mouse wheel or =/- keys.
	const zoomMin, zoomMax = 0.5, 4.0
	_, wy := ebiten.Wheel()
	if wy != 0 {
		gm.zoom *= math.Pow(1.12, wy)
	}
	if pressed(ebiten.KeyEqual) {
		gm.zoom *= 1.25
	}
	if pressed(ebiten.KeyMinus) {
		gm.zoom /= 1.25
	}
	if gm.zoom < zoomMin {
		gm.zoom = zoomMin
	}
	if gm.zoom > zoomMax {
		gm.zoom = zoomMax
	}
	gm.clampCamera()

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if pressed(ebiten.KeyP) {
		if gm.simSpeed > 0 {
			gm.simSpeed = 0
		} else {
			gm.simSpeed = 1
		}
	}
	if pressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= gm.simSpeed && i > 0 {
				gm.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if pressed(ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s <= gm.simSpeed && i < len(speeds)-1 {
				if speeds[i+1] > gm.simSpeed {
					gm.simSpeed = speeds[i+1]
					break
				}
			}
		}
	}

	// Overlay toggles.
	if pressed(ebiten.KeyC) {
		gm.showCones = !gm.showCones
	}
	if pressed(ebiten.KeyL) {
		gm.showLight = !gm.showLight
	}
	if pressed(ebiten.KeyN) {
		gm.showNav = !gm.showNav
	}
	if pressed(ebiten.KeyT) {
		gm.showRoutes = !gm.showRoutes
	}
	if pressed(ebiten.KeyH) {
		gm.showHUD = !gm.showHUD
	}
	if pressed(ebiten.KeyI) {
		gm.inspector.rawView = !gm.inspector.rawView
	}

	// R: copy the full run report to the clipboard.
	if pressed(ebiten.KeyR) {
		if err := copyToClipboard(BuildReport(gm.scene)); err != nil {
			gm.toast("clipboard copy failed")
		} else {
			gm.toast("report copied to clipboard")
		}
	}

	// K/G: kill or wake the selected guard (host operations, between ticks).
	if sel := gm.inspector.selected; sel != nil {
		ctx := gm.scene.HostContext()
		if pressed(ebiten.KeyK) {
			sel.Kill(ctx)
		}
		if pressed(ebiten.KeyG) {
			sel.Wake(ctx)
		}
	} else {
		// Still record edges so holding the key doesn't fire on select.
		pressed(ebiten.KeyK)
		pressed(ebiten.KeyG)
	}

	// Left mouse click: try to select a guard.
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !gm.prevMouseLeft {
			cx, cy := ebiten.CursorPosition()
			gm.handleInspectorClick(cx, cy)
		}
	}
	gm.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	gm.prevKeys = currentKeys
}

// clampCamera keeps the camera centre inside the world, accounting for zoom.
// Worlds smaller than the viewport stay centred.
func (gm *Game) clampCamera() {
	halfVW := float64(gm.viewW) / 2 / gm.zoom
	halfVH := float64(gm.viewH) / 2 / gm.zoom
	w := float64(gm.worldW)
	h := float64(gm.worldH)
	if halfVW*2 >= w {
		gm.camX = w / 2
	} else {
		if gm.camX < halfVW {
			gm.camX = halfVW
		}
		if gm.camX > w-halfVW {
			gm.camX = w - halfVW
		}
	}
	if halfVH*2 >= h {
		gm.camY = h / 2
	} else {
		if gm.camY < halfVH {
			gm.camY = halfVH
		}
		if gm.camY > h-halfVH {
			gm.camY = h - halfVH
		}
	}
}

// worldToScreen maps a world position through the camera to window pixels.
func (gm *Game) worldToScreen(wx, wy float64) (float64, float64) {
	sx := (wx-gm.camX)*gm.zoom + float64(gm.viewW)/2 + float64(gm.offX)
	sy := (wy-gm.camY)*gm.zoom + float64(gm.viewH)/2 + float64(gm.offY)
	return sx, sy
}

// screenToWorld is the inverse of worldToScreen.
func (gm *Game) screenToWorld(sx, sy float64) (float64, float64) {
	wx := (sx-float64(gm.offX)-float64(gm.viewW)/2)/gm.zoom + gm.camX
	wy := (sy-float64(gm.offY)-float64(gm.viewH)/2)/gm.zoom + gm.camY
	return wx, wy
}

func (gm *Game) Draw(screen *ebiten.Image) {
	// Window background: near-black, outside the viewport.
	screen.Fill(color.RGBA{R: 10, G: 10, B: 14, A: 255})

	// Render world content to worldBuf at (0,0) origin, then blit through the
	// camera into the viewport buffer so the window edge clips it.
	gm.worldBuf.Clear()
	gm.drawWorld(gm.worldBuf)

	var cam ebiten.GeoM
	cam.Translate(-gm.camX, -gm.camY)
	cam.Scale(gm.zoom, gm.zoom)
	cam.Translate(float64(gm.viewW)/2, float64(gm.viewH)/2)

	gm.viewBuf.Clear()
	gm.viewBuf.Fill(color.RGBA{R: 6, G: 6, B: 9, A: 255})
	gm.viewBuf.DrawImage(gm.worldBuf, &ebiten.DrawImageOptions{GeoM: cam})

	var blit ebiten.DrawImageOptions
	blit.GeoM.Translate(float64(gm.offX), float64(gm.offY))
	screen.DrawImage(gm.viewBuf, &blit)

	// Viewport border frame (drawn at screen coords, not transformed).
	ox := float32(gm.offX)
	oy := float32(gm.offY)
	vw := float32(gm.viewW)
	vh := float32(gm.viewH)
	borderCol := color.RGBA{R: 60, G: 66, B: 90, A: 255}
	vector.StrokeRect(screen, ox-1, oy-1, vw+2, vh+2, 2.0, borderCol, false)
	vector.StrokeRect(screen, ox-3, oy-3, vw+6, vh+6, 1.0, color.RGBA{R: 38, G: 42, B: 60, A: 100}, false)

	// Activity log panel (screen coords).
	logX := gm.offX + gm.viewW + gm.offX
	gm.scene.Thoughts().Draw(screen, logX, gm.height)

	// Speech bubbles render post-camera so the text stays crisp at any zoom.
	gm.drawSpeechBubbles(screen)

	if gm.showHUD {
		gm.drawHUD(screen)
	}

	if gm.zoom != 1.0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom: %.1fx", gm.zoom), gm.offX+6, gm.offY+6)
	}

	gm.drawToast(screen)

	// Guard inspector panel (screen-space, drawn over everything).
	gm.drawInspector(screen)
}

// drawToast renders the transient one-line notification bottom-centre.
func (gm *Game) drawToast(screen *ebiten.Image) {
	if gm.toastLeft <= 0 || gm.toastText == "" {
		return
	}
	alpha := 1.0
	if gm.toastLeft < 0.5 {
		alpha = gm.toastLeft / 0.5
	}
	const charW = 6
	w := float32(len(gm.toastText)*charW + 16)
	h := float32(18)
	x := float32(gm.offX) + float32(gm.viewW)/2 - w/2
	y := float32(gm.offY+gm.viewH) - h - 8
	vector.FillRect(screen, x, y, w, h, color.RGBA{R: 16, G: 16, B: 22, A: uint8(220 * alpha)}, false)
	vector.StrokeRect(screen, x, y, w, h, 1.0, color.RGBA{R: 90, G: 90, B: 120, A: uint8(160 * alpha)}, false)
	ebitenutil.DebugPrintAt(screen, gm.toastText, int(x)+8, int(y)+2)
}

// drawHUD renders keyboard shortcut hints in the bottom-left corner.
// Text is drawn into hudBuf at 1x then composited onto the screen at hudScale.
func (gm *Game) drawHUD(screen *ebiten.Image) {
	speedStr := "1x"
	if gm.simSpeed == 0 {
		speedStr = "PAUSED"
	} else if gm.simSpeed == 2 {
		speedStr = "2x"
	} else if gm.simSpeed == 4 {
		speedStr = "4x"
	} else if gm.simSpeed != 1 {
		speedStr = fmt.Sprintf("%.1fx", gm.simSpeed)
	}

	p := gm.scene.Player()
	status := "EXPOSED"
	if p.Stealth != nil && p.Stealth.IsHidden() {
		status = "hidden"
	}
	light := 0.0
	if p.Stealth != nil {
		light = p.Stealth.CurrentLight()
	}

	onOff := func(v bool) string {
		if v {
			return "*"
		}
		return " "
	}
	lines := []string{
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed", speedStr),
		fmt.Sprintf("T=%d  %s  light %.2f", gm.scene.TickCount(), status, light),
		"WASD=move  arrows=pan  F=follow",
		fmt.Sprintf("[C]%s cones [L]%s light [N]%s nav [T]%s routes",
			onOff(gm.showCones), onOff(gm.showLight), onOff(gm.showNav), onOff(gm.showRoutes)),
		"[R] copy report  click=inspect",
		"[K] kill sel  [G] wake sel  [H] hud",
	}

	// Render into hudBuf at 1x, then scale up.
	const lineH = 12 // debug font line height at 1x
	const charW = 6  // debug font char width at 1x
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	bufH := float32(gm.height / hudScale)
	bx := float32(4)
	by := bufH - boxH - 4

	gm.hudBuf.Clear()
	vector.FillRect(gm.hudBuf, bx, by, boxW, boxH,
		color.RGBA{R: 8, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(gm.hudBuf, bx, by, boxW, boxH,
		1.0, color.RGBA{R: 70, G: 76, B: 110, A: 180}, false)
	vector.StrokeLine(gm.hudBuf, bx+1, by+1, bx+boxW-1, by+1,
		1.0, color.RGBA{R: 100, G: 110, B: 160, A: 80}, false)

	for i, line := range lines {
		tx := int(bx) + padX
		ty := int(by) + padY + i*lineH
		ebitenutil.DebugPrintAt(gm.hudBuf, line, tx, ty)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(gm.hudBuf, opts)
}

func (gm *Game) Layout(_, _ int) (int, int) {
	return gm.width, gm.height
}

// WindowSize returns the logical window size, for ebiten.SetWindowSize.
func (gm *Game) WindowSize() (int, int) {
	return gm.width, gm.height
}
