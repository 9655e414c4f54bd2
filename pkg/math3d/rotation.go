package math3d

// RotationState holds accumulated rotation angles (radians) around the
// X, Y and Z axes. The zero value is the identity rotation. It is mutated
// incrementally by input or animation and converted to a model matrix
// once per frame.
type RotationState struct {
	X, Y, Z float64
}

// NewRotationState creates a rotation state with the given angles.
func NewRotationState(x, y, z float64) RotationState {
	return RotationState{X: x, Y: y, Z: z}
}

// Rotate adds delta angles (radians) to each axis.
func (r *RotationState) Rotate(dx, dy, dz float64) {
	r.X += dx
	r.Y += dy
	r.Z += dz
}

// Reset returns the state to the identity rotation.
func (r *RotationState) Reset() {
	*r = RotationState{}
}

// Matrix builds the model rotation matrix, composing the elemental
// rotations as Rz * Ry * Rx. The order is fixed: changing it changes
// which way a mesh appears to tumble.
func (r RotationState) Matrix() Mat4 {
	return RotateZ(r.Z).Mul(RotateY(r.Y)).Mul(RotateX(r.X))
}
