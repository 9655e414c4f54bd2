package render

import (
	"io"
	"math"

	"github.com/taigrr/termesh/pkg/math3d"
	"github.com/taigrr/termesh/pkg/models"
)

// luminosityRamp orders glyphs from faintest to densest. Shading intensity
// in [0, 1] scales linearly across it.
var luminosityRamp = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

// lightDir is the fixed shading light, pointing out of the screen at the
// viewer. Faces turned toward the camera render brightest.
var lightDir = math3d.V3(0, 0, 1)

// Renderer rasterizes triangle meshes into a glyph framebuffer, resolving
// visibility with a per-cell depth buffer. A frame is Clear, any number of
// RenderMesh / RenderMeshWireframe calls, then Draw (or a handoff of the
// Framebuffer to a terminal presenter). The renderer owns both buffers
// exclusively; it is not safe for concurrent use.
type Renderer struct {
	fb    *Framebuffer
	depth []float64
}

// NewRenderer creates a renderer with cleared buffers.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{
		fb:    NewFramebuffer(width, height),
		depth: make([]float64, width*height),
	}
	r.Clear()
	return r
}

// Clear resets every depth entry to +Inf and every glyph to blank.
func (r *Renderer) Clear() {
	r.fb.Clear()
	for i := range r.depth {
		r.depth[i] = math.Inf(1)
	}
}

// Width returns the framebuffer width in cells.
func (r *Renderer) Width() int { return r.fb.Width }

// Height returns the framebuffer height in cells.
func (r *Renderer) Height() int { return r.fb.Height }

// Framebuffer exposes the glyph grid for presentation layers.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// GlyphAt returns the glyph at (x, y), blank when out of bounds.
func (r *Renderer) GlyphAt(x, y int) rune {
	return r.fb.At(x, y)
}

// DepthAt returns the stored depth at (x, y), +Inf when out of bounds or
// nothing has been drawn there.
func (r *Renderer) DepthAt(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return math.Inf(1)
	}
	return r.depth[y*r.fb.Width+x]
}

// RenderMesh rasterizes every triangle of the mesh under the model matrix.
func (r *Renderer) RenderMesh(mesh *models.Mesh, model math3d.Mat4, camera *Camera) {
	for i := range mesh.Triangles {
		r.renderTriangle(&mesh.Triangles[i], model, camera)
	}
}

func (r *Renderer) renderTriangle(tri *models.Triangle, model math3d.Mat4, camera *Camera) {
	// All-or-nothing clipping: one rejected vertex discards the triangle.
	var screen [3]math3d.Vec2
	var depth [3]float64
	for i, v := range tri.V {
		s, d, ok := camera.ProjectPoint(v.Position, model, r.fb.Width, r.fb.Height)
		if !ok {
			return
		}
		screen[i] = s
		depth[i] = d
	}

	// Flat Lambertian shading from the geometric face normal. Degenerate
	// triangles have a zero normal and shade to the blank end of the ramp.
	brightness := math.Max(0, tri.CalculateNormal().Dot(lightDir))

	r.fillTriangle(screen, depth, shadeGlyph(brightness))
}

// shadeGlyph maps an intensity in [0, 1] to a ramp glyph by truncation,
// clamped to the valid index range.
func shadeGlyph(brightness float64) rune {
	idx := int(brightness * float64(len(luminosityRamp)-1))
	if idx < 0 {
		idx = 0
	}
	if idx > len(luminosityRamp)-1 {
		idx = len(luminosityRamp) - 1
	}
	return luminosityRamp[idx]
}

// fillTriangle scans the clipped bounding box of the projected triangle and
// writes the glyph wherever a cell center lies inside the triangle and wins
// the depth test. Nearer strictly wins; ties keep the earlier triangle.
func (r *Renderer) fillTriangle(screen [3]math3d.Vec2, depth [3]float64, glyph rune) {
	minX := int(math.Floor(min3(screen[0].X, screen[1].X, screen[2].X)))
	maxX := int(math.Ceil(max3(screen[0].X, screen[1].X, screen[2].X)))
	minY := int(math.Floor(min3(screen[0].Y, screen[1].Y, screen[2].Y)))
	maxY := int(math.Ceil(max3(screen[0].Y, screen[1].Y, screen[2].Y)))

	if minX < 0 {
		minX = 0
	}
	if maxX > r.fb.Width-1 {
		maxX = r.fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > r.fb.Height-1 {
		maxY = r.fb.Height - 1
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
			w0, w1, w2, ok := barycentric(screen[0], screen[1], screen[2], p)
			if !ok {
				// Zero screen-space area, nothing to fill.
				return
			}
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			d := w0*depth[0] + w1*depth[1] + w2*depth[2]
			idx := y*r.fb.Width + x
			if d < r.depth[idx] {
				r.depth[idx] = d
				r.fb.Glyphs[idx] = glyph
			}
		}
	}
}

// barycentric returns the weights of p relative to the triangle (a, b, c).
// ok is false when the triangle's signed doubled area is below epsilon,
// which leaves the weights undefined. A point is inside or on the triangle
// exactly when all three weights are >= 0.
func barycentric(a, b, c, p math3d.Vec2) (w0, w1, w2 float64, ok bool) {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(denom) < epsilon {
		return 0, 0, 0, false
	}

	w0 = ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / denom
	w1 = ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / denom
	w2 = 1 - w0 - w1
	return w0, w1, w2, true
}

// Draw writes the glyph buffer to w, one newline-terminated line per row,
// top row first. Styling is left to presentation layers.
func (r *Renderer) Draw(w io.Writer) error {
	line := make([]byte, 0, r.fb.Width*4+1)
	for y := 0; y < r.fb.Height; y++ {
		line = line[:0]
		for _, g := range r.fb.Row(y) {
			line = append(line, string(g)...)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
