package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

var (
	hudGreen  = color.RGBA{0, 255, 0, 255}
	hudWhite  = color.RGBA{255, 255, 255, 255}
	hudCyan   = color.RGBA{0, 255, 255, 255}
	hudYellow = color.RGBA{255, 255, 0, 255}
	hudBg     = color.RGBA{0, 0, 0, 255}
)

// HUD renders an overlay with model info and mode status. It writes cells
// onto the screen after the frame so the overlay rides the same display
// pass; raw escape writes would fight the terminal's cell diffing.
type HUD struct {
	filename  string
	triCount  int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, triCount int) *HUD {
	return &HUD{
		filename: filename,
		triCount: triCount,
		fpsTime:  time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay onto the screen. The frame underneath has
// already filled every cell, so with the HUD off there is nothing to clear.
func (h *HUD) Render(scr uv.Screen, width, height int, view *ViewState, projection string) {
	if !view.ShowHUD || height < 2 {
		return
	}

	// Top left: FPS
	drawText(scr, 0, 0, width, fmt.Sprintf(" %.0f FPS ", h.fps), hudGreen)

	// Top middle: filename
	title := fmt.Sprintf(" %s ", h.filename)
	drawText(scr, max((width-len(title))/2, 0), 0, width, title, hudWhite)

	// Top right: triangle count
	tris := fmt.Sprintf(" %d tris ", h.triCount)
	drawText(scr, max(width-len(tris), 0), 0, width, tris, hudCyan)

	// Bottom: mode checkboxes
	mode := fmt.Sprintf(" %s Spin  %s Wireframe  %s ",
		checkbox(view.Spin), checkbox(view.Wireframe), projection)
	drawText(scr, 0, height-1, width, mode, hudWhite)

	// Bottom right: hint
	hint := " ?: HUD  q: quit "
	drawText(scr, max(width-len(hint), 0), height-1, width, hint, hudYellow)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// drawText writes an ASCII string one cell per character, clipped at the
// right edge.
func drawText(scr uv.Screen, x, y, width int, s string, fg color.RGBA) {
	for i, r := range s {
		if x+i >= width {
			break
		}
		scr.SetCell(x+i, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg},
		})
	}
}
