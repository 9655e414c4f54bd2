// Package render provides the character-grid rendering pipeline for termesh:
// camera projection, a z-buffered glyph rasterizer, and terminal presentation.
package render

// blankGlyph is what a cleared framebuffer holds in every cell.
const blankGlyph = ' '

// Framebuffer is a 2D grid of glyphs, row-major with row 0 at the top.
// It carries no color: the rasterizer writes ramp glyphs and the terminal
// layer decides how each glyph class is styled.
type Framebuffer struct {
	Width  int
	Height int
	Glyphs []rune // Row-major glyph data
}

// NewFramebuffer creates a cleared framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Glyphs: make([]rune, width*height),
	}
	fb.Clear()
	return fb
}

// Clear fills the framebuffer with the blank glyph.
func (fb *Framebuffer) Clear() {
	fb.Fill(blankGlyph)
}

// Fill sets every cell to the given glyph.
func (fb *Framebuffer) Fill(g rune) {
	for i := range fb.Glyphs {
		fb.Glyphs[i] = g
	}
}

// Set writes a glyph at (x, y). Out-of-bounds writes are dropped.
func (fb *Framebuffer) Set(x, y int, g rune) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Glyphs[y*fb.Width+x] = g
}

// At returns the glyph at (x, y), or the blank glyph if out of bounds.
func (fb *Framebuffer) At(x, y int) rune {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return blankGlyph
	}
	return fb.Glyphs[y*fb.Width+x]
}

// Row returns the glyphs of one row, aliasing the underlying buffer.
func (fb *Framebuffer) Row(y int) []rune {
	return fb.Glyphs[y*fb.Width : (y+1)*fb.Width]
}

// String renders the buffer as newline-separated rows, mostly for tests
// and debugging.
func (fb *Framebuffer) String() string {
	out := make([]rune, 0, (fb.Width+1)*fb.Height)
	for y := 0; y < fb.Height; y++ {
		out = append(out, fb.Row(y)...)
		out = append(out, '\n')
	}
	return string(out)
}

// DrawLine draws a glyph line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. Endpoints outside the grid are fine; only the in-bounds part
// is written.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, g rune) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.Set(x0, y0, g)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
