package material

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
)

// Uniform names the material recognizes for opacity.
const (
	BaseColorUniform = "baseColor"
	OpacityUniform   = "opacity"
)

// Uniform is one entry of a material's uniform dictionary. For texture entries Values
// holds the material-local texture index, never an absolute texture unit.
type Uniform struct {
	Kind      program.UniformKind
	Values    []float32
	IsTexture bool
}

// material is the implementation of the Material interface.
type material struct {
	name    string
	program program.ProgramContainer

	uniforms map[string]*Uniform
	order    []string

	textures    []*Texture
	textureSlot map[string]int

	transparent       bool
	doubleSided       bool
	shadowDoubleSided bool
}

// Material holds a uniform dictionary and an ordered texture list and binds them onto
// the program it currently references. The program is not owned: materials are routinely
// retargeted onto other programs (shadow and reflection overrides) that may declare only
// part of the dictionary, so absent uniforms are skipped at bind time.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Program returns the program the material currently binds onto.
	//
	// Returns:
	//   - program.ProgramContainer: the program
	Program() program.ProgramContainer

	// SetProgram retargets the material. The dictionary is kept as is.
	//
	// Parameters:
	//   - p: the new program, must not be nil
	SetProgram(p program.ProgramContainer)

	// Uniform returns a dictionary entry.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - *Uniform: the entry
	//   - bool: false if the dictionary has no such entry
	Uniform(name string) (*Uniform, bool)

	// SetUniform replaces the values of an existing entry, or creates an entry with the
	// kind the current program reports. If neither the dictionary nor the program has
	// the uniform the call logs a warning and does nothing.
	//
	// Parameters:
	//   - name: the uniform name
	//   - values: the scalar values
	//
	// Returns:
	//   - bool: false if the uniform was unknown
	SetUniform(name string, values ...float32) bool

	// SetTexture assigns tex to the sampler uniform name. A new name appends a texture
	// slot; an existing one swaps the texture in place, keeping its index.
	//
	// Parameters:
	//   - name: the sampler uniform name
	//   - tex: the texture; the material takes one reference
	SetTexture(name string, tex *Texture)

	// Texture returns the texture bound to a sampler uniform, or nil.
	Texture(name string) *Texture

	// Textures returns the texture list in slot order.
	Textures() []*Texture

	// BindUniforms binds textures, dictionary uniforms and the frame's scene-wide state
	// onto the current program, which must already be in use.
	//
	// Parameters:
	//   - frame: the pass state
	BindUniforms(frame *FrameState)

	// IsOpaque reports whether the material draws in the opaque sub-pass: it is not
	// flagged transparent and its alpha is at least 1.
	IsOpaque() bool

	Transparent() bool
	SetTransparent(transparent bool)

	// DoubleSided reports whether back faces are drawn in color passes.
	DoubleSided() bool
	SetDoubleSided(doubleSided bool)

	// ShadowDoubleSided reports whether back faces are drawn in the shadow pass,
	// independently of DoubleSided.
	ShadowDoubleSided() bool
	SetShadowDoubleSided(doubleSided bool)

	// Copy returns an independent dictionary referencing the same program and sharing
	// the same textures.
	//
	// Returns:
	//   - Material: the copy
	Copy() Material

	// Release drops the material's texture references.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a Material bound onto p.
//
// Parameters:
//   - p: the program, must not be nil
//   - options: functional options applied after the program is set
//
// Returns:
//   - Material: the new material
func NewMaterial(p program.ProgramContainer, options ...MaterialBuilderOption) Material {
	if p == nil {
		panic("material: NewMaterial requires a ProgramContainer")
	}
	m := &material{
		program:     p,
		uniforms:    make(map[string]*Uniform),
		textureSlot: make(map[string]int),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Program() program.ProgramContainer {
	return m.program
}

func (m *material) SetProgram(p program.ProgramContainer) {
	if p == nil {
		panic("material: SetProgram requires a ProgramContainer")
	}
	m.program = p
}

func (m *material) Uniform(name string) (*Uniform, bool) {
	u, ok := m.uniforms[name]
	return u, ok
}

func (m *material) SetUniform(name string, values ...float32) bool {
	if u, ok := m.uniforms[name]; ok {
		u.Values = append(u.Values[:0], values...)
		return true
	}
	pu, ok := m.program.Uniform(name)
	if !ok {
		slog.Warn("material: uniform not declared by program",
			"uniform", name, "material", m.name, "program", m.program.Name())
		return false
	}
	m.put(name, &Uniform{Kind: pu.Kind, Values: append([]float32(nil), values...), IsTexture: pu.Kind.IsSampler()})
	return true
}

func (m *material) SetTexture(name string, tex *Texture) {
	if tex == nil {
		panic("material: SetTexture requires a Texture")
	}
	tex.Retain()
	if slot, ok := m.textureSlot[name]; ok {
		m.textures[slot].Release()
		m.textures[slot] = tex
		return
	}
	slot := len(m.textures)
	m.textures = append(m.textures, tex)
	m.textureSlot[name] = slot

	kind := program.KindSampler2D
	if pu, ok := m.program.Uniform(name); ok && pu.Kind.IsSampler() {
		kind = pu.Kind
	}
	m.put(name, &Uniform{Kind: kind, Values: []float32{float32(slot)}, IsTexture: true})
}

func (m *material) Texture(name string) *Texture {
	slot, ok := m.textureSlot[name]
	if !ok {
		return nil
	}
	return m.textures[slot]
}

func (m *material) Textures() []*Texture {
	return m.textures
}

func (m *material) BindUniforms(frame *FrameState) {
	for i, tex := range m.textures {
		tex.Bind(uint32(i) + MaterialTextureUnitOffset)
	}

	var unit [1]float32
	for _, name := range m.order {
		u := m.uniforms[name]
		pu, ok := m.program.Uniform(name)
		if !ok {
			continue
		}
		values := u.Values
		if u.IsTexture && len(values) > 0 {
			unit[0] = values[0] + float32(MaterialTextureUnitOffset)
			values = unit[:]
		}
		pu.Kind = u.Kind
		m.program.SetUniform(pu, values)
	}

	if frame != nil {
		m.bindFrame(frame)
	}
}

// bindFrame binds scene-wide state that is not part of the dictionary, by name.
func (m *material) bindFrame(frame *FrameState) {
	p := m.program
	set := func(name string, values ...float32) {
		if u, ok := p.Uniform(name); ok {
			p.SetUniform(u, values)
		}
	}

	set("time", frame.Time)
	set("splitsumLUT", float32(UnitSplitsumLUT))
	set("diffuseIBL", float32(UnitDiffuseIBL))
	set("specularIBL", float32(UnitSpecularIBL))
	set("jointTexture", float32(UnitJointTexture))
	if frame.HasShadowMap {
		set("shadowMap", float32(UnitShadowMap))
		set("shadowMatrix", frame.ShadowMatrix[:]...)
	}

	if l := frame.Lights; l != nil {
		set("sunDirection", l.SunDirection[:]...)
		set("sunColor", l.SunColor[:]...)
		set("sunIntensity", l.SunIntensity)
		set("ambientColor", l.AmbientColor[:]...)
		set("lightCount", float32(l.Count))
		if l.Count > 0 {
			n := int(l.Count)
			set("lightPositions", l.Positions[:n*3]...)
			set("lightColors", l.Colors[:n*3]...)
			set("lightRanges", l.Ranges[:n]...)
		}
	}

	if frame.Camera == nil {
		return
	}
	pos := frame.Camera.Position()
	set("cameraPosition", pos[:]...)

	if frame.SharedPerScene && p.BindBlock(SharedPerSceneBlock, SharedPerSceneBinding) {
		return
	}
	// projection must be bound before view
	p.SetMat4("projectionMatrix", frame.Camera.ProjectionMatrix())
	p.SetMat4("viewMatrix", frame.Camera.ViewMatrix())
	p.SetMat4("inverseViewMatrix", frame.Camera.InverseViewMatrix())
}

func (m *material) IsOpaque() bool {
	if m.transparent {
		return false
	}
	return m.alpha() >= 1
}

func (m *material) alpha() float32 {
	if u, ok := m.uniforms[BaseColorUniform]; ok && len(u.Values) == 4 {
		return u.Values[3]
	}
	if u, ok := m.uniforms[OpacityUniform]; ok && len(u.Values) == 1 {
		return u.Values[0]
	}
	return 1
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) SetTransparent(transparent bool) {
	m.transparent = transparent
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) SetDoubleSided(doubleSided bool) {
	m.doubleSided = doubleSided
}

func (m *material) ShadowDoubleSided() bool {
	return m.shadowDoubleSided
}

func (m *material) SetShadowDoubleSided(doubleSided bool) {
	m.shadowDoubleSided = doubleSided
}

func (m *material) Copy() Material {
	c := &material{
		name:              m.name,
		program:           m.program,
		uniforms:          make(map[string]*Uniform, len(m.uniforms)),
		order:             append([]string(nil), m.order...),
		textures:          make([]*Texture, len(m.textures)),
		textureSlot:       make(map[string]int, len(m.textureSlot)),
		transparent:       m.transparent,
		doubleSided:       m.doubleSided,
		shadowDoubleSided: m.shadowDoubleSided,
	}
	for name, u := range m.uniforms {
		dup := *u
		dup.Values = append([]float32(nil), u.Values...)
		c.uniforms[name] = &dup
	}
	for i, tex := range m.textures {
		c.textures[i] = tex.Retain()
	}
	for name, slot := range m.textureSlot {
		c.textureSlot[name] = slot
	}
	return c
}

func (m *material) Release() {
	for _, tex := range m.textures {
		tex.Release()
	}
	m.textures = nil
	m.textureSlot = make(map[string]int)
	for name, u := range m.uniforms {
		if u.IsTexture {
			delete(m.uniforms, name)
		}
	}
	kept := m.order[:0]
	for _, name := range m.order {
		if _, ok := m.uniforms[name]; ok {
			kept = append(kept, name)
		}
	}
	m.order = kept
}

func (m *material) put(name string, u *Uniform) {
	if _, exists := m.uniforms[name]; !exists {
		m.order = append(m.order, name)
	}
	m.uniforms[name] = u
}
