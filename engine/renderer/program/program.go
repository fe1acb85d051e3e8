package program

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Source is one shader stage handed to the container for compilation.
type Source struct {
	// Name identifies the source in diagnostics (usually its file path).
	Name string

	// Stage is the pipeline stage to compile for.
	Stage gpu.ShaderStage

	// Code is the preprocessed GLSL text.
	Code string
}

// Attribute is an introspected vertex attribute.
type Attribute struct {
	Name     string
	Location uint32
	Size     int32
	Type     uint32
}

// Uniform is an introspected uniform that lives outside any block.
type Uniform struct {
	Name     string
	Location int32
	Size     int32
	Type     uint32
	Kind     UniformKind
}

// UniformBlock is an introspected uniform block with the byte layout of its members.
type UniformBlock struct {
	Name          string
	Index         uint32
	Size          int32
	MemberNames   []string
	MemberOffsets []int32
}

// Offset returns the byte offset of a member inside the block.
//
// Parameters:
//   - member: the member name
//
// Returns:
//   - int32: the byte offset
//   - bool: false if the block has no such member
func (b UniformBlock) Offset(member string) (int32, bool) {
	for i, n := range b.MemberNames {
		if n == member {
			return b.MemberOffsets[i], true
		}
	}
	return 0, false
}

// ShaderLog pairs a shader source name with its compile log.
type ShaderLog struct {
	Name string
	Log  string
}

// LinkError reports a failed build of a program. It carries the link log together with
// the compile log of every attached shader, because link failures are usually caused by
// a stage that compiled with warnings or failed outright.
type LinkError struct {
	Program    string
	LinkLog    string
	ShaderLogs []ShaderLog
}

func (e *LinkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program: failed to link %q", e.Program)
	if e.LinkLog != "" {
		fmt.Fprintf(&b, "\nlink log:\n%s", strings.TrimSpace(e.LinkLog))
	}
	for _, s := range e.ShaderLogs {
		if s.Log == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n%s", s.Name, strings.TrimSpace(s.Log))
	}
	return b.String()
}

type programContainer struct {
	device gpu.Device
	name   string
	handle gpu.Program

	attributes map[string]Attribute
	uniforms   map[string]Uniform
	blocks     map[string]UniformBlock

	blockBindings map[string]uint32
	boundBlocks   map[uint32]uint32
}

// ProgramContainer owns one linked GPU program and the introspection cache built after
// every link: active attributes, active uniforms, and uniform blocks with the byte offset
// of every member. Materials and mesh renderers resolve names through this cache instead
// of querying the driver per draw.
type ProgramContainer interface {
	// Name returns the label used in diagnostics.
	//
	// Returns:
	//   - string: the program name
	Name() string

	// Handle returns the current GPU program. It changes after a successful Relink.
	//
	// Returns:
	//   - gpu.Program: the program handle
	Handle() gpu.Program

	// Device returns the device the program was built on.
	//
	// Returns:
	//   - gpu.Device: the owning device
	Device() gpu.Device

	// Attribute looks up an active vertex attribute.
	//
	// Parameters:
	//   - name: the attribute name
	//
	// Returns:
	//   - Attribute: the attribute
	//   - bool: false if the program does not declare it
	Attribute(name string) (Attribute, bool)

	// Attributes returns every active attribute keyed by name.
	//
	// Returns:
	//   - map[string]Attribute: the attribute table (do not modify)
	Attributes() map[string]Attribute

	// Uniform looks up an active non-block uniform. Array uniforms resolve both as
	// "name" and "name[0]".
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - Uniform: the uniform
	//   - bool: false if the program does not declare it
	Uniform(name string) (Uniform, bool)

	// Uniforms returns every active non-block uniform keyed by name.
	//
	// Returns:
	//   - map[string]Uniform: the uniform table (do not modify)
	Uniforms() map[string]Uniform

	// UniformBlock looks up an active uniform block.
	//
	// Parameters:
	//   - name: the block name
	//
	// Returns:
	//   - UniformBlock: the block layout
	//   - bool: false if the program does not declare it
	UniformBlock(name string) (UniformBlock, bool)

	// SetUniform uploads values to u with the setter of u.Kind. The program must be current.
	//
	// Parameters:
	//   - u: the introspected uniform
	//   - values: the scalar values
	SetUniform(u Uniform, values []float32)

	// Set looks up name and uploads values to it, using kind to pick the setter.
	// The program must be current.
	//
	// Parameters:
	//   - name: the uniform name
	//   - kind: the setter to use
	//   - values: the scalar values
	//
	// Returns:
	//   - bool: false if the program does not declare the uniform
	Set(name string, kind UniformKind, values []float32) bool

	// SetMat4 is Set for a single 4x4 matrix.
	//
	// Parameters:
	//   - name: the uniform name
	//   - m: the matrix
	//
	// Returns:
	//   - bool: false if the program does not declare the uniform
	SetMat4(name string, m mgl32.Mat4) bool

	// BindBlock assigns the named block to a buffer binding point. The driver call is made
	// only if the block's binding changed.
	//
	// Parameters:
	//   - name: the block name
	//   - binding: the binding point
	//
	// Returns:
	//   - bool: false if the program does not declare the block
	BindBlock(name string, binding uint32) bool

	// Relink compiles and links sources into a fresh program and refreshes the
	// introspection cache. On failure the previous program and cache stay in place.
	//
	// Parameters:
	//   - sources: the shader stages
	//
	// Returns:
	//   - error: a *LinkError if compilation or linking fails
	Relink(sources ...Source) error

	// Release deletes the GPU program. The container must not be used afterwards.
	Release()
}

var _ ProgramContainer = &programContainer{}

// NewProgramContainer compiles and links sources and introspects the result.
//
// Parameters:
//   - device: the device to build on
//   - sources: the shader stages
//   - options: functional options for the container
//
// Returns:
//   - ProgramContainer: the linked container
//   - error: a *LinkError if compilation or linking fails
func NewProgramContainer(device gpu.Device, sources []Source, options ...ProgramBuilderOption) (ProgramContainer, error) {
	if device == nil {
		panic("program: NewProgramContainer requires a non-nil Device")
	}
	p := &programContainer{
		device:        device,
		attributes:    make(map[string]Attribute),
		uniforms:      make(map[string]Uniform),
		blocks:        make(map[string]UniformBlock),
		blockBindings: make(map[string]uint32),
		boundBlocks:   make(map[uint32]uint32),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.name == "" && len(sources) > 0 {
		p.name = sources[0].Name
	}
	if err := p.Relink(sources...); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *programContainer) Name() string {
	return p.name
}

func (p *programContainer) Handle() gpu.Program {
	return p.handle
}

func (p *programContainer) Device() gpu.Device {
	return p.device
}

func (p *programContainer) Attribute(name string) (Attribute, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

func (p *programContainer) Attributes() map[string]Attribute {
	return p.attributes
}

func (p *programContainer) Uniform(name string) (Uniform, bool) {
	u, ok := p.uniforms[name]
	return u, ok
}

func (p *programContainer) Uniforms() map[string]Uniform {
	return p.uniforms
}

func (p *programContainer) UniformBlock(name string) (UniformBlock, bool) {
	b, ok := p.blocks[name]
	return b, ok
}

func (p *programContainer) SetUniform(u Uniform, values []float32) {
	u.Kind.setter()(p.device, u.Location, values)
}

func (p *programContainer) Set(name string, kind UniformKind, values []float32) bool {
	u, ok := p.uniforms[name]
	if !ok {
		return false
	}
	kind.setter()(p.device, u.Location, values)
	return true
}

func (p *programContainer) SetMat4(name string, m mgl32.Mat4) bool {
	return p.Set(name, KindMat4, m[:])
}

func (p *programContainer) BindBlock(name string, binding uint32) bool {
	b, ok := p.blocks[name]
	if !ok {
		return false
	}
	if current, bound := p.boundBlocks[b.Index]; bound && current == binding {
		return true
	}
	p.device.UniformBlockBinding(p.handle, b.Index, binding)
	p.boundBlocks[b.Index] = binding
	return true
}

func (p *programContainer) Relink(sources ...Source) error {
	if len(sources) == 0 {
		return &LinkError{Program: p.name, LinkLog: "no shader sources"}
	}

	shaders := make([]gpu.Shader, 0, len(sources))
	logs := make([]ShaderLog, 0, len(sources))
	compiled := true
	for _, src := range sources {
		s, ok, log := p.device.CompileShader(src.Stage, src.Code)
		shaders = append(shaders, s)
		logs = append(logs, ShaderLog{Name: src.Name, Log: log})
		compiled = compiled && ok
	}

	handle, linked, linkLog := p.device.LinkProgram(shaders...)
	for _, s := range shaders {
		p.device.DeleteShader(s)
	}
	if !compiled || !linked {
		p.device.DeleteProgram(handle)
		return &LinkError{Program: p.name, LinkLog: linkLog, ShaderLogs: logs}
	}

	if p.handle != 0 {
		p.device.DeleteProgram(p.handle)
	}
	p.handle = handle
	p.introspect()
	for name, binding := range p.blockBindings {
		p.BindBlock(name, binding)
	}
	return nil
}

func (p *programContainer) Release() {
	if p.handle == 0 {
		return
	}
	p.device.DeleteProgram(p.handle)
	p.handle = 0
}

// introspect rebuilds the attribute, uniform and block tables for the current handle.
func (p *programContainer) introspect() {
	p.attributes = make(map[string]Attribute)
	p.uniforms = make(map[string]Uniform)
	p.blocks = make(map[string]UniformBlock)
	p.boundBlocks = make(map[uint32]uint32)

	for _, a := range p.device.ActiveAttributes(p.handle) {
		if a.Location < 0 {
			continue
		}
		p.attributes[a.Name] = Attribute{Name: a.Name, Location: uint32(a.Location), Size: a.Size, Type: a.Type}
	}

	for _, u := range p.device.ActiveUniforms(p.handle) {
		// block members have no location; they are reached through the block layout
		if u.Location < 0 {
			continue
		}
		entry := Uniform{Name: u.Name, Location: u.Location, Size: u.Size, Type: u.Type, Kind: KindFromGLType(u.Type)}
		p.uniforms[u.Name] = entry
		if base, ok := strings.CutSuffix(u.Name, "[0]"); ok {
			entry.Name = base
			p.uniforms[base] = entry
		}
	}

	for _, info := range p.device.ActiveUniformBlocks(p.handle) {
		names := make([]string, len(info.MemberIndices))
		for i, idx := range info.MemberIndices {
			names[i] = p.device.ActiveUniformName(p.handle, idx)
		}
		p.blocks[info.Name] = UniformBlock{
			Name:          info.Name,
			Index:         info.Index,
			Size:          info.DataSize,
			MemberNames:   names,
			MemberOffsets: p.device.ActiveUniformOffsets(p.handle, info.MemberIndices),
		}
	}
}
