package model

// MeshDataBuilderOption is a function that configures mesh data during construction.
type MeshDataBuilderOption func(*MeshData)

// WithName sets the label used in diagnostics.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshDataBuilderOption: a function that applies the name to the mesh
func WithName(name string) MeshDataBuilderOption {
	return func(m *MeshData) {
		m.name = name
	}
}
