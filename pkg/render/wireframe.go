package render

import (
	"github.com/taigrr/termesh/pkg/math3d"
	"github.com/taigrr/termesh/pkg/models"
)

// wireframeGlyph draws mesh edges in wireframe mode.
const wireframeGlyph = '#'

// RenderMeshWireframe draws only the triangle edges of the mesh. Edges skip
// the depth buffer entirely, so back edges show through like an x-ray; mix
// with RenderMesh on the same renderer to outline a shaded model.
// Triangles with any off-screen vertex are skipped whole, matching the
// filled path.
func (r *Renderer) RenderMeshWireframe(mesh *models.Mesh, model math3d.Mat4, camera *Camera) {
	for i := range mesh.Triangles {
		r.wireTriangle(&mesh.Triangles[i], model, camera)
	}
}

func (r *Renderer) wireTriangle(tri *models.Triangle, model math3d.Mat4, camera *Camera) {
	var screen [3]math3d.Vec2
	for i, v := range tri.V {
		s, _, ok := camera.ProjectPoint(v.Position, model, r.fb.Width, r.fb.Height)
		if !ok {
			return
		}
		screen[i] = s
	}

	for i := range screen {
		a, b := screen[i], screen[(i+1)%3]
		r.fb.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), wireframeGlyph)
	}
}
