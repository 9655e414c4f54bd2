package render

import (
	"math"

	"github.com/taigrr/termesh/pkg/math3d"
)

// epsilon guards near-zero divisions in projection and rasterization.
const epsilon = 1e-6

// ProjectionMode selects how view space maps to clip space.
type ProjectionMode int

const (
	// ProjectionPerspective foreshortens with distance.
	ProjectionPerspective ProjectionMode = iota
	// ProjectionOrthographic keeps apparent size constant regardless of depth.
	ProjectionOrthographic
)

func (m ProjectionMode) String() string {
	if m == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera describes the eye looking at a scene. All fields are plain data;
// the view and projection matrices are derived on demand, so callers mutate
// fields freely between frames without any invalidation protocol.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3
	FOV      float64 // vertical field of view in radians
	Aspect   float64 // width / height
	Near     float64
	Far      float64
	Mode     ProjectionMode
}

// NewCamera creates a camera five units out on +Z looking at the origin,
// with the aspect ratio taken from the output grid dimensions.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Position: math3d.V3(0, 0, 5),
		Target:   math3d.V3(0, 0, 0),
		Up:       math3d.V3(0, 1, 0),
		FOV:      math.Pi / 4, // 45 degrees
		Aspect:   float64(width) / float64(height),
		Near:     0.1,
		Far:      100.0,
		Mode:     ProjectionPerspective,
	}
}

// ViewMatrix returns the right-handed look-at transform for the current
// position, target, and up vector.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the projection for the current mode. The
// orthographic box is sized from the camera-to-target distance, so dollying
// the camera still zooms in that mode.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.Mode == ProjectionOrthographic {
		height := c.Position.Sub(c.Target).Len()
		width := height * c.Aspect
		return math3d.Orthographic(-width/2, width/2, -height/2, height/2, c.Near, c.Far)
	}
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ProjectPoint maps a model-space point onto a width x height character grid.
// It composes projection * view * model, transforms the point, divides the
// transformed x and y by the transformed z, and rejects (ok == false) when
// that z is within epsilon of zero or when either normalized coordinate
// lands strictly outside [-1, 1] - coordinates of exactly +/-1 are kept.
// Accepted points map to screen space with x in [0, width] and a flipped y
// in [0, height] so that row 0 is the top of the grid. The returned depth is
// the transformed z itself, suitable for depth-buffer comparison.
//
// ProjectPoint is pure: it reads the camera and writes nothing.
func (c *Camera) ProjectPoint(point math3d.Vec3, model math3d.Mat4, width, height int) (math3d.Vec2, float64, bool) {
	mvp := c.ProjectionMatrix().Mul(c.ViewMatrix()).Mul(model)
	clip := mvp.MulVec3(point)

	// Too close to the z = 0 plane to divide by.
	if math.Abs(clip.Z) < epsilon {
		return math3d.Vec2{}, 0, false
	}

	ndcX := clip.X / clip.Z
	ndcY := clip.Y / clip.Z

	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 {
		return math3d.Vec2{}, 0, false
	}

	screen := math3d.V2(
		(ndcX+1)*0.5*float64(width),
		(1-ndcY)*0.5*float64(height),
	)
	return screen, clip.Z, true
}
