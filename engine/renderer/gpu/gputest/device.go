// Package gputest provides an in-memory gpu.Device that records every call, for tests of
// code that drives the binding layer without a graphics context.
package gputest

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// BlockMember is one member of a scripted uniform block.
type BlockMember struct {
	Name   string
	Type   uint32
	Offset int32
}

// Block is a scripted uniform block.
type Block struct {
	Name    string
	Size    int32
	Members []BlockMember
}

// ProgramSpec scripts what the next linked program reports on introspection.
type ProgramSpec struct {
	// Attributes are reported in order; a zero Location is replaced by the index.
	Attributes []gpu.ActiveVariable

	// Uniforms are reported in order; a zero Location is replaced by 100 + index.
	Uniforms []gpu.ActiveVariable

	// Blocks are reported in order; their members are appended to the uniform list
	// with location -1.
	Blocks []Block

	// LinkFails makes the link report failure with LinkLog.
	LinkFails bool
	LinkLog   string
}

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

// Draw is one recorded draw call together with the state it ran under.
type Draw struct {
	Program     gpu.Program
	VertexArray gpu.VertexArray
	Count       int32
	Instances   int32
	Indexed     bool
	Cull        bool
	Blend       bool
	DepthWrite  bool
	Framebuffer gpu.Framebuffer
}

type programState struct {
	attributes []gpu.ActiveVariable
	uniforms   []gpu.ActiveVariable
	blocks     []gpu.UniformBlockInfo
	offsets    map[uint32]int32
}

// Device is the recording fake. It is not safe for concurrent use.
type Device struct {
	Calls []Call
	Draws []Draw

	// CompileFailures maps a source substring to the compile log reported for any shader
	// whose source contains it.
	CompileFailures map[string]string

	// Buffers holds the latest contents of each buffer.
	Buffers map[gpu.Buffer][]byte

	// Textures holds the latest upload of each texture.
	Textures map[gpu.Texture]gpu.TextureDesc

	// TexturePixels holds the latest pixel upload of each texture.
	TexturePixels map[gpu.Texture][]byte

	// BoundTextures maps texture units to the texture last bound there.
	BoundTextures map[uint32]gpu.Texture

	// UniformValues maps program and location to the last values set.
	UniformValues map[gpu.Program]map[int32][]float32

	// BlockBindings maps program and block index to the binding point assigned.
	BlockBindings map[gpu.Program]map[uint32]uint32

	// Deleted counts delete calls per object kind ("buffer", "texture", ...).
	Deleted map[string]int

	pending  []ProgramSpec
	programs map[gpu.Program]*programState
	sources  map[gpu.Shader]string
	next     uint32

	program     gpu.Program
	vertexArray gpu.VertexArray
	framebuffer gpu.Framebuffer
	activeUnit  uint32
	cull        bool
	blend       bool
	depthWrite  bool
	lost        bool
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
//
// Returns:
//   - *Device: the fake device
func NewDevice() *Device {
	return &Device{
		CompileFailures: make(map[string]string),
		Buffers:         make(map[gpu.Buffer][]byte),
		Textures:        make(map[gpu.Texture]gpu.TextureDesc),
		TexturePixels:   make(map[gpu.Texture][]byte),
		BoundTextures:   make(map[uint32]gpu.Texture),
		UniformValues:   make(map[gpu.Program]map[int32][]float32),
		BlockBindings:   make(map[gpu.Program]map[uint32]uint32),
		Deleted:         make(map[string]int),
		programs:        make(map[gpu.Program]*programState),
		sources:         make(map[gpu.Shader]string),
		depthWrite:      true,
	}
}

// QueueProgram scripts the introspection result of the next LinkProgram call. Programs
// linked with nothing queued report no attributes, uniforms or blocks.
//
// Parameters:
//   - spec: the scripted program
func (d *Device) QueueProgram(spec ProgramSpec) {
	d.pending = append(d.pending, spec)
}

// LoseContext makes every later CheckError report gpu.ErrContextLost.
func (d *Device) LoseContext() {
	d.lost = true
}

// Count returns how many calls named name were recorded.
//
// Parameters:
//   - name: the device method name
//
// Returns:
//   - int: the number of calls
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Named returns the recorded calls named name in order.
func (d *Device) Named(name string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Uniform returns the last values set at location on program p.
func (d *Device) Uniform(p gpu.Program, location int32) ([]float32, bool) {
	v, ok := d.UniformValues[p][location]
	return v, ok
}

// Reset clears the recorded calls and draws but keeps object state.
func (d *Device) Reset() {
	d.Calls = nil
	d.Draws = nil
}

func (d *Device) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) alloc() uint32 {
	d.next++
	return d.next
}

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (gpu.Shader, bool, string) {
	s := gpu.Shader(d.alloc())
	d.sources[s] = source
	d.record("CompileShader", stage, s)
	for needle, log := range d.CompileFailures {
		if strings.Contains(source, needle) {
			return s, false, log
		}
	}
	return s, true, ""
}

func (d *Device) DeleteShader(s gpu.Shader) {
	d.record("DeleteShader", s)
	delete(d.sources, s)
	d.Deleted["shader"]++
}

func (d *Device) LinkProgram(shaders ...gpu.Shader) (gpu.Program, bool, string) {
	p := gpu.Program(d.alloc())
	d.record("LinkProgram", p, len(shaders))

	var spec ProgramSpec
	if len(d.pending) > 0 {
		spec = d.pending[0]
		d.pending = d.pending[1:]
	}
	if spec.LinkFails {
		return p, false, spec.LinkLog
	}

	st := &programState{offsets: make(map[uint32]int32)}
	for i, a := range spec.Attributes {
		if a.Location == 0 {
			a.Location = int32(i)
		}
		if a.Size == 0 {
			a.Size = 1
		}
		st.attributes = append(st.attributes, a)
	}
	for i, u := range spec.Uniforms {
		if u.Location == 0 {
			u.Location = int32(100 + i)
		}
		if u.Size == 0 {
			u.Size = 1
		}
		st.uniforms = append(st.uniforms, u)
	}
	for bi, b := range spec.Blocks {
		info := gpu.UniformBlockInfo{Name: b.Name, Index: uint32(bi), DataSize: b.Size}
		for _, m := range b.Members {
			idx := uint32(len(st.uniforms))
			st.uniforms = append(st.uniforms, gpu.ActiveVariable{Name: m.Name, Location: -1, Size: 1, Type: m.Type})
			st.offsets[idx] = m.Offset
			info.MemberIndices = append(info.MemberIndices, idx)
		}
		st.blocks = append(st.blocks, info)
	}
	d.programs[p] = st
	return p, true, ""
}

func (d *Device) DeleteProgram(p gpu.Program) {
	d.record("DeleteProgram", p)
	delete(d.programs, p)
	d.Deleted["program"]++
}

func (d *Device) ActiveAttributes(p gpu.Program) []gpu.ActiveVariable {
	d.record("ActiveAttributes", p)
	if st := d.programs[p]; st != nil {
		return append([]gpu.ActiveVariable(nil), st.attributes...)
	}
	return nil
}

func (d *Device) ActiveUniforms(p gpu.Program) []gpu.ActiveVariable {
	d.record("ActiveUniforms", p)
	if st := d.programs[p]; st != nil {
		return append([]gpu.ActiveVariable(nil), st.uniforms...)
	}
	return nil
}

func (d *Device) ActiveUniformBlocks(p gpu.Program) []gpu.UniformBlockInfo {
	d.record("ActiveUniformBlocks", p)
	if st := d.programs[p]; st != nil {
		return append([]gpu.UniformBlockInfo(nil), st.blocks...)
	}
	return nil
}

func (d *Device) ActiveUniformName(p gpu.Program, index uint32) string {
	d.record("ActiveUniformName", p, index)
	st := d.programs[p]
	if st == nil || int(index) >= len(st.uniforms) {
		return ""
	}
	return st.uniforms[index].Name
}

func (d *Device) ActiveUniformOffsets(p gpu.Program, indices []uint32) []int32 {
	d.record("ActiveUniformOffsets", p, len(indices))
	out := make([]int32, len(indices))
	if st := d.programs[p]; st != nil {
		for i, idx := range indices {
			out[i] = st.offsets[idx]
		}
	}
	return out
}

func (d *Device) UniformBlockBinding(p gpu.Program, blockIndex, binding uint32) {
	d.record("UniformBlockBinding", p, blockIndex, binding)
	if d.BlockBindings[p] == nil {
		d.BlockBindings[p] = make(map[uint32]uint32)
	}
	d.BlockBindings[p][blockIndex] = binding
}

func (d *Device) UseProgram(p gpu.Program) {
	d.record("UseProgram", p)
	d.program = p
}

func (d *Device) setUniform(name string, location int32, v []float32) {
	d.record(name, location, append([]float32(nil), v...))
	if d.UniformValues[d.program] == nil {
		d.UniformValues[d.program] = make(map[int32][]float32)
	}
	d.UniformValues[d.program][location] = append([]float32(nil), v...)
}

func ints(v []int32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func (d *Device) Uniform1fv(location int32, v []float32) { d.setUniform("Uniform1fv", location, v) }
func (d *Device) Uniform2fv(location int32, v []float32) { d.setUniform("Uniform2fv", location, v) }
func (d *Device) Uniform3fv(location int32, v []float32) { d.setUniform("Uniform3fv", location, v) }
func (d *Device) Uniform4fv(location int32, v []float32) { d.setUniform("Uniform4fv", location, v) }
func (d *Device) Uniform1iv(location int32, v []int32) { d.setUniform("Uniform1iv", location, ints(v)) }
func (d *Device) Uniform2iv(location int32, v []int32) { d.setUniform("Uniform2iv", location, ints(v)) }
func (d *Device) Uniform3iv(location int32, v []int32) { d.setUniform("Uniform3iv", location, ints(v)) }
func (d *Device) Uniform4iv(location int32, v []int32) { d.setUniform("Uniform4iv", location, ints(v)) }
func (d *Device) UniformMatrix3fv(location int32, v []float32) { d.setUniform("UniformMatrix3fv", location, v) }
func (d *Device) UniformMatrix4fv(location int32, v []float32) { d.setUniform("UniformMatrix4fv", location, v) }

func (d *Device) CreateBuffer() gpu.Buffer {
	b := gpu.Buffer(d.alloc())
	d.record("CreateBuffer", b)
	return b
}

func (d *Device) BufferData(target uint32, b gpu.Buffer, data []byte, usage uint32) {
	d.record("BufferData", target, b, len(data))
	d.Buffers[b] = append([]byte(nil), data...)
}

func (d *Device) BufferSubData(target uint32, b gpu.Buffer, offset int, data []byte) {
	d.record("BufferSubData", target, b, offset, len(data))
	buf := d.Buffers[b]
	if need := offset + len(data); need > len(buf) {
		buf = append(buf, make([]byte, need-len(buf))...)
	}
	copy(buf[offset:], data)
	d.Buffers[b] = buf
}

func (d *Device) BindBuffer(target uint32, b gpu.Buffer) {
	d.record("BindBuffer", target, b)
}

func (d *Device) BindBufferBase(target, index uint32, b gpu.Buffer) {
	d.record("BindBufferBase", target, index, b)
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	d.record("DeleteBuffer", b)
	delete(d.Buffers, b)
	d.Deleted["buffer"]++
}

func (d *Device) CreateVertexArray() gpu.VertexArray {
	v := gpu.VertexArray(d.alloc())
	d.record("CreateVertexArray", v)
	return v
}

func (d *Device) BindVertexArray(v gpu.VertexArray) {
	d.record("BindVertexArray", v)
	d.vertexArray = v
}

func (d *Device) DeleteVertexArray(v gpu.VertexArray) {
	d.record("DeleteVertexArray", v)
	d.Deleted["vertexArray"]++
}

func (d *Device) EnableVertexAttrib(location uint32) {
	d.record("EnableVertexAttrib", location)
}

func (d *Device) VertexAttribPointer(location uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	d.record("VertexAttribPointer", location, size, xtype, normalized, stride, offset)
}

func (d *Device) VertexAttribDivisor(location, divisor uint32) {
	d.record("VertexAttribDivisor", location, divisor)
}

func (d *Device) CreateTexture() gpu.Texture {
	t := gpu.Texture(d.alloc())
	d.record("CreateTexture", t)
	return t
}

func (d *Device) TexImage2D(t gpu.Texture, desc gpu.TextureDesc, pixels []byte) {
	d.record("TexImage2D", t, desc.Width, desc.Height)
	d.Textures[t] = desc
	d.TexturePixels[t] = append([]byte(nil), pixels...)
}

func (d *Device) ActiveTexture(unit uint32) {
	d.record("ActiveTexture", unit)
	d.activeUnit = unit
}

func (d *Device) BindTexture(target uint32, t gpu.Texture) {
	d.record("BindTexture", target, t)
	d.BoundTextures[d.activeUnit] = t
}

func (d *Device) DeleteTexture(t gpu.Texture) {
	d.record("DeleteTexture", t)
	delete(d.Textures, t)
	delete(d.TexturePixels, t)
	d.Deleted["texture"]++
}

func (d *Device) CreateFramebuffer(depthTexture gpu.Texture) (gpu.Framebuffer, error) {
	if _, ok := d.Textures[depthTexture]; !ok {
		return 0, fmt.Errorf("gputest: depth texture %d was never uploaded", depthTexture)
	}
	fb := gpu.Framebuffer(d.alloc())
	d.record("CreateFramebuffer", fb, depthTexture)
	return fb, nil
}

func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	d.record("BindFramebuffer", fb)
	d.framebuffer = fb
}

func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	d.record("DeleteFramebuffer", fb)
	d.Deleted["framebuffer"]++
}

func (d *Device) SetCullFace(enabled bool) {
	d.record("SetCullFace", enabled)
	d.cull = enabled
}

func (d *Device) SetBlend(enabled bool) {
	d.record("SetBlend", enabled)
	d.blend = enabled
}

func (d *Device) SetDepthWrite(enabled bool) {
	d.record("SetDepthWrite", enabled)
	d.depthWrite = enabled
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
}

func (d *Device) Clear(r, g, b, a float32, color, depth bool) {
	d.record("Clear", color, depth)
}

func (d *Device) DrawElements(mode uint32, count int32, indexType uint32, instances int32) {
	d.record("DrawElements", mode, count, indexType, instances)
	d.Draws = append(d.Draws, d.draw(count, instances, true))
}

func (d *Device) DrawArrays(mode uint32, first, count int32, instances int32) {
	d.record("DrawArrays", mode, first, count, instances)
	d.Draws = append(d.Draws, d.draw(count, instances, false))
}

func (d *Device) draw(count, instances int32, indexed bool) Draw {
	return Draw{
		Program:     d.program,
		VertexArray: d.vertexArray,
		Count:       count,
		Instances:   instances,
		Indexed:     indexed,
		Cull:        d.cull,
		Blend:       d.blend,
		DepthWrite:  d.depthWrite,
		Framebuffer: d.framebuffer,
	}
}

func (d *Device) CheckError() error {
	if d.lost {
		return gpu.ErrContextLost
	}
	return nil
}
