package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Glyph-class colors: the ramp splits into four density bands so brighter
// faces pop without per-cell color math.
var (
	colorFaint  = color.RGBA{128, 128, 128, 255} // ' ' '.' ':'
	colorMid    = color.RGBA{192, 192, 192, 255} // '-' '='
	colorBright = color.RGBA{255, 255, 255, 255} // '+' '*'
	colorDense  = color.RGBA{0, 255, 255, 255}   // '#' '%' '@'
)

// GlyphColor returns the presentation color for a ramp glyph. Glyphs
// outside the ramp get the bright band.
func GlyphColor(g rune) color.RGBA {
	switch g {
	case ' ', '.', ':':
		return colorFaint
	case '-', '=':
		return colorMid
	case '+', '*':
		return colorBright
	case '#', '%', '@':
		return colorDense
	default:
		return colorBright
	}
}

// Draw converts the glyph buffer to terminal cells and places them on the
// screen, one cell per glyph, colored by glyph class. The buffer is mapped
// into area from its top-left corner; glyphs outside the area are dropped.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := row - area.Min.Y
		if y >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}

			g := fb.At(x, y)
			cell := &uv.Cell{
				Content: string(g),
				Width:   1,
				Style: uv.Style{
					Fg: GlyphColor(g),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}
