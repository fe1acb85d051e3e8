package gpu

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glContextLost is GL_CONTEXT_LOST, reported by glGetError on robust contexts once the
// context is reset. The 4.1 core profile bindings do not define the constant.
const glContextLost = 0x0507

// glDevice issues calls straight to the go-gl bindings for the current context.
type glDevice struct {
	lost bool
}

var _ Device = &glDevice{}

// NewGLDevice loads the GL function pointers for the context current on the calling
// thread and applies the engine's default fixed-function state.
//
// Reference: https://pkg.go.dev/github.com/go-gl/gl/v4.1-core/gl
//
// Returns:
//   - Device: the GL-backed device
//   - string: the driver's GL_VERSION string
//   - error: error if the bindings cannot be initialized
func NewGLDevice() (Device, string, error) {
	if err := gl.Init(); err != nil {
		return nil, "", fmt.Errorf("gpu: failed to initialize OpenGL bindings: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.CullFace(gl.BACK)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return &glDevice{}, gl.GoStr(gl.GetString(gl.VERSION)), nil
}

func (d *glDevice) CompileShader(stage ShaderStage, source string) (Shader, bool, string) {
	s := gl.CreateShader(uint32(stage))
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csrc, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)

	var logLen int32
	gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLen)
	var log string
	if logLen > 0 {
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(s, logLen, nil, gl.Str(buf))
		log = strings.TrimRight(buf, "\x00")
	}
	return Shader(s), status == gl.TRUE, log
}

func (d *glDevice) DeleteShader(s Shader) {
	gl.DeleteShader(uint32(s))
}

func (d *glDevice) LinkProgram(shaders ...Shader) (Program, bool, string) {
	p := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(p, uint32(s))
	}
	gl.LinkProgram(p)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)

	var logLen int32
	gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &logLen)
	var log string
	if logLen > 0 {
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(p, logLen, nil, gl.Str(buf))
		log = strings.TrimRight(buf, "\x00")
	}
	for _, s := range shaders {
		gl.DetachShader(p, uint32(s))
	}
	return Program(p), status == gl.TRUE, log
}

func (d *glDevice) DeleteProgram(p Program) {
	gl.DeleteProgram(uint32(p))
}

func (d *glDevice) ActiveAttributes(p Program) []ActiveVariable {
	var count, maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)

	out := make([]ActiveVariable, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(uint32(p), uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		out = append(out, ActiveVariable{
			Name:     name,
			Location: gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")),
			Size:     size,
			Type:     xtype,
		})
	}
	return out
}

func (d *glDevice) ActiveUniforms(p Program) []ActiveVariable {
	var count, maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	out := make([]ActiveVariable, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(uint32(p), uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		out = append(out, ActiveVariable{
			Name:     name,
			Location: gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")),
			Size:     size,
			Type:     xtype,
		})
	}
	return out
}

func (d *glDevice) ActiveUniformBlocks(p Program) []UniformBlockInfo {
	var count, maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_BLOCKS, &count)
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_BLOCK_MAX_NAME_LENGTH, &maxLen)

	out := make([]UniformBlockInfo, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size, members int32
		gl.GetActiveUniformBlockName(uint32(p), uint32(i), maxLen+1, &length, &buf[0])
		gl.GetActiveUniformBlockiv(uint32(p), uint32(i), gl.UNIFORM_BLOCK_DATA_SIZE, &size)
		gl.GetActiveUniformBlockiv(uint32(p), uint32(i), gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS, &members)

		indices := make([]uint32, members)
		if members > 0 {
			raw := make([]int32, members)
			gl.GetActiveUniformBlockiv(uint32(p), uint32(i), gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES, &raw[0])
			for j, idx := range raw {
				indices[j] = uint32(idx)
			}
		}
		out = append(out, UniformBlockInfo{
			Name:          string(buf[:length]),
			Index:         uint32(i),
			DataSize:      size,
			MemberIndices: indices,
		})
	}
	return out
}

func (d *glDevice) ActiveUniformName(p Program, index uint32) string {
	var maxLen, length int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	buf := make([]uint8, maxLen+1)
	gl.GetActiveUniformName(uint32(p), index, maxLen+1, &length, &buf[0])
	return string(buf[:length])
}

func (d *glDevice) ActiveUniformOffsets(p Program, indices []uint32) []int32 {
	out := make([]int32, len(indices))
	if len(indices) == 0 {
		return out
	}
	gl.GetActiveUniformsiv(uint32(p), int32(len(indices)), &indices[0], gl.UNIFORM_OFFSET, &out[0])
	return out
}

func (d *glDevice) UniformBlockBinding(p Program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(uint32(p), blockIndex, binding)
}

func (d *glDevice) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

func (d *glDevice) Uniform1fv(location int32, v []float32) {
	if len(v) > 0 {
		gl.Uniform1fv(location, int32(len(v)), &v[0])
	}
}

func (d *glDevice) Uniform2fv(location int32, v []float32) {
	if len(v) >= 2 {
		gl.Uniform2fv(location, int32(len(v)/2), &v[0])
	}
}

func (d *glDevice) Uniform3fv(location int32, v []float32) {
	if len(v) >= 3 {
		gl.Uniform3fv(location, int32(len(v)/3), &v[0])
	}
}

func (d *glDevice) Uniform4fv(location int32, v []float32) {
	if len(v) >= 4 {
		gl.Uniform4fv(location, int32(len(v)/4), &v[0])
	}
}

func (d *glDevice) Uniform1iv(location int32, v []int32) {
	if len(v) > 0 {
		gl.Uniform1iv(location, int32(len(v)), &v[0])
	}
}

func (d *glDevice) Uniform2iv(location int32, v []int32) {
	if len(v) >= 2 {
		gl.Uniform2iv(location, int32(len(v)/2), &v[0])
	}
}

func (d *glDevice) Uniform3iv(location int32, v []int32) {
	if len(v) >= 3 {
		gl.Uniform3iv(location, int32(len(v)/3), &v[0])
	}
}

func (d *glDevice) Uniform4iv(location int32, v []int32) {
	if len(v) >= 4 {
		gl.Uniform4iv(location, int32(len(v)/4), &v[0])
	}
}

func (d *glDevice) UniformMatrix3fv(location int32, v []float32) {
	if len(v) >= 9 {
		gl.UniformMatrix3fv(location, int32(len(v)/9), false, &v[0])
	}
}

func (d *glDevice) UniformMatrix4fv(location int32, v []float32) {
	if len(v) >= 16 {
		gl.UniformMatrix4fv(location, int32(len(v)/16), false, &v[0])
	}
}

func (d *glDevice) CreateBuffer() Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return Buffer(b)
}

func (d *glDevice) BufferData(target uint32, b Buffer, data []byte, usage uint32) {
	gl.BindBuffer(target, uint32(b))
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data), gl.Ptr(&data[0]), usage)
}

func (d *glDevice) BufferSubData(target uint32, b Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(target, uint32(b))
	gl.BufferSubData(target, offset, len(data), gl.Ptr(&data[0]))
}

func (d *glDevice) BindBuffer(target uint32, b Buffer) {
	gl.BindBuffer(target, uint32(b))
}

func (d *glDevice) BindBufferBase(target, index uint32, b Buffer) {
	gl.BindBufferBase(target, index, uint32(b))
}

func (d *glDevice) DeleteBuffer(b Buffer) {
	name := uint32(b)
	gl.DeleteBuffers(1, &name)
}

func (d *glDevice) CreateVertexArray() VertexArray {
	var v uint32
	gl.GenVertexArrays(1, &v)
	return VertexArray(v)
}

func (d *glDevice) BindVertexArray(v VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (d *glDevice) DeleteVertexArray(v VertexArray) {
	name := uint32(v)
	gl.DeleteVertexArrays(1, &name)
}

func (d *glDevice) EnableVertexAttrib(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (d *glDevice) VertexAttribPointer(location uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	switch xtype {
	case TypeInt, TypeUnsignedInt, TypeShort, TypeUnsignedShort, TypeByte, TypeUnsignedByte:
		if !normalized {
			gl.VertexAttribIPointer(location, size, xtype, stride, gl.PtrOffset(offset))
			return
		}
	}
	gl.VertexAttribPointer(location, size, xtype, normalized, stride, gl.PtrOffset(offset))
}

func (d *glDevice) VertexAttribDivisor(location, divisor uint32) {
	gl.VertexAttribDivisor(location, divisor)
}

func (d *glDevice) CreateTexture() Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return Texture(t)
}

func (d *glDevice) TexImage2D(t Texture, desc TextureDesc, pixels []byte) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(&pixels[0])
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, desc.InternalFormat, desc.Width, desc.Height, 0, desc.Format, desc.Type, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, desc.MinFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, desc.MagFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, desc.WrapS)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, desc.WrapT)
	if desc.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
}

func (d *glDevice) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *glDevice) BindTexture(target uint32, t Texture) {
	gl.BindTexture(target, uint32(t))
}

func (d *glDevice) DeleteTexture(t Texture) {
	name := uint32(t)
	gl.DeleteTextures(1, &name)
}

func (d *glDevice) CreateFramebuffer(depthTexture Texture) (Framebuffer, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, uint32(depthTexture), 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb)
		return 0, fmt.Errorf("gpu: framebuffer incomplete: 0x%04X", status)
	}
	return Framebuffer(fb), nil
}

func (d *glDevice) BindFramebuffer(fb Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (d *glDevice) DeleteFramebuffer(fb Framebuffer) {
	name := uint32(fb)
	gl.DeleteFramebuffers(1, &name)
}

func (d *glDevice) SetCullFace(enabled bool) {
	setCap(gl.CULL_FACE, enabled)
}

func (d *glDevice) SetBlend(enabled bool) {
	setCap(gl.BLEND, enabled)
}

func (d *glDevice) SetDepthWrite(enabled bool) {
	gl.DepthMask(enabled)
}

func (d *glDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *glDevice) Clear(r, g, b, a float32, color, depth bool) {
	var mask uint32
	if color {
		gl.ClearColor(r, g, b, a)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *glDevice) DrawElements(mode uint32, count int32, indexType uint32, instances int32) {
	if instances > 1 {
		gl.DrawElementsInstanced(mode, count, indexType, gl.PtrOffset(0), instances)
		return
	}
	gl.DrawElements(mode, count, indexType, gl.PtrOffset(0))
}

func (d *glDevice) DrawArrays(mode uint32, first, count int32, instances int32) {
	if instances > 1 {
		gl.DrawArraysInstanced(mode, first, count, instances)
		return
	}
	gl.DrawArrays(mode, first, count)
}

func (d *glDevice) CheckError() error {
	if d.lost {
		return ErrContextLost
	}
	switch code := gl.GetError(); code {
	case gl.NO_ERROR:
		return nil
	case glContextLost:
		d.lost = true
		return ErrContextLost
	default:
		return fmt.Errorf("gpu: driver error 0x%04X", code)
	}
}

func setCap(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}
