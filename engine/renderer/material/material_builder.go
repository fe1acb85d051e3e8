package material

// MaterialBuilderOption is a function that configures a material instance during construction.
// Options run after the program is assigned, so uniform options can infer kinds from it.
type MaterialBuilderOption func(*material)

// WithName sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithUniform sets a uniform through SetUniform.
//
// Parameters:
//   - name: the uniform name
//   - values: the scalar values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the uniform to a material
func WithUniform(name string, values ...float32) MaterialBuilderOption {
	return func(m *material) {
		m.SetUniform(name, values...)
	}
}

// WithBaseColor sets the baseColor uniform. Alpha below 1 routes the material to the
// blended sub-pass.
//
// Parameters:
//   - color: the base color as RGBA
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return WithUniform(BaseColorUniform, color[:]...)
}

// WithTexture assigns a texture to a sampler uniform through SetTexture.
//
// Parameters:
//   - name: the sampler uniform name
//   - tex: the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture to a material
func WithTexture(name string, tex *Texture) MaterialBuilderOption {
	return func(m *material) {
		m.SetTexture(name, tex)
	}
}

// WithTransparent flags the material as blended regardless of its alpha.
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithDoubleSided disables back-face culling in color passes.
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

// WithShadowDoubleSided disables back-face culling in the shadow pass.
func WithShadowDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.shadowDoubleSided = doubleSided
	}
}
