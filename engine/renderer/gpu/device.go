package gpu

import "errors"

// Handle types name the GPU objects a Device creates. Zero is never a valid object.
type (
	Shader      uint32
	Program     uint32
	Buffer      uint32
	VertexArray uint32
	Texture     uint32
	Framebuffer uint32
)

// ErrContextLost is returned by Device.CheckError once the graphics context is gone.
// Every later call on the device is a no-op for the driver.
var ErrContextLost = errors.New("gpu: context lost")

// ShaderStage identifies the pipeline stage a shader is compiled for.
type ShaderStage uint32

const (
	StageVertex   ShaderStage = 0x8B31
	StageFragment ShaderStage = 0x8B30
)

// ActiveVariable describes one active attribute or uniform reported by the driver after link.
type ActiveVariable struct {
	// Name is the variable name as reported, e.g. "lightPositions[0]" for arrays.
	Name string

	// Location is the binding location; -1 for uniforms that live inside a uniform block.
	Location int32

	// Size is the array length, 1 for non-arrays.
	Size int32

	// Type is the GL type enum (see the Type* constants).
	Type uint32
}

// UniformBlockInfo describes one active uniform block.
type UniformBlockInfo struct {
	// Name is the block name.
	Name string

	// Index is the block index used with UniformBlockBinding.
	Index uint32

	// DataSize is the byte size of the block's backing store.
	DataSize int32

	// MemberIndices are the active uniform indices of the block's members.
	MemberIndices []uint32
}

// TextureDesc describes a 2D texture image upload.
type TextureDesc struct {
	Width, Height  int32
	InternalFormat int32
	Format         uint32
	Type           uint32
	MinFilter      int32
	MagFilter      int32
	WrapS, WrapT   int32
	Mipmaps        bool
}

// Device is the set of graphics calls the binding layer issues. All methods must be
// called from the thread owning the graphics context.
type Device interface {
	// CompileShader compiles source for stage. A failed compile still returns the shader
	// handle so its log can be attached to a link diagnostic.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//   - source: GLSL source text
	//
	// Returns:
	//   - Shader: the shader handle
	//   - bool: true if compilation succeeded
	//   - string: the compile info log
	CompileShader(stage ShaderStage, source string) (Shader, bool, string)

	// DeleteShader releases a shader object.
	DeleteShader(s Shader)

	// LinkProgram links the given shaders into a new program.
	//
	// Parameters:
	//   - shaders: compiled shader handles
	//
	// Returns:
	//   - Program: the program handle
	//   - bool: true if linking succeeded
	//   - string: the link info log
	LinkProgram(shaders ...Shader) (Program, bool, string)

	// DeleteProgram releases a program object.
	DeleteProgram(p Program)

	// ActiveAttributes enumerates the active vertex attributes of a linked program.
	ActiveAttributes(p Program) []ActiveVariable

	// ActiveUniforms enumerates the active uniforms of a linked program, including block members.
	ActiveUniforms(p Program) []ActiveVariable

	// ActiveUniformBlocks enumerates the active uniform blocks of a linked program.
	ActiveUniformBlocks(p Program) []UniformBlockInfo

	// ActiveUniformName returns the name of the active uniform at index.
	ActiveUniformName(p Program, index uint32) string

	// ActiveUniformOffsets returns the byte offset of each uniform index inside its block.
	ActiveUniformOffsets(p Program, indices []uint32) []int32

	// UniformBlockBinding assigns a uniform block to a buffer binding point.
	UniformBlockBinding(p Program, blockIndex, binding uint32)

	// UseProgram makes p the current program.
	UseProgram(p Program)

	Uniform1fv(location int32, v []float32)
	Uniform2fv(location int32, v []float32)
	Uniform3fv(location int32, v []float32)
	Uniform4fv(location int32, v []float32)
	Uniform1iv(location int32, v []int32)
	Uniform2iv(location int32, v []int32)
	Uniform3iv(location int32, v []int32)
	Uniform4iv(location int32, v []int32)
	UniformMatrix3fv(location int32, v []float32)
	UniformMatrix4fv(location int32, v []float32)

	// CreateBuffer allocates a buffer object.
	CreateBuffer() Buffer

	// BufferData replaces the whole contents of b, binding it to target first.
	BufferData(target uint32, b Buffer, data []byte, usage uint32)

	// BufferSubData writes data into b at byte offset, binding it to target first.
	BufferSubData(target uint32, b Buffer, offset int, data []byte)

	// BindBuffer binds b to target.
	BindBuffer(target uint32, b Buffer)

	// BindBufferBase binds b to an indexed binding point of target.
	BindBufferBase(target, index uint32, b Buffer)

	// DeleteBuffer releases a buffer object.
	DeleteBuffer(b Buffer)

	// CreateVertexArray allocates a vertex array object.
	CreateVertexArray() VertexArray

	// BindVertexArray makes v current; 0 unbinds.
	BindVertexArray(v VertexArray)

	// DeleteVertexArray releases a vertex array object.
	DeleteVertexArray(v VertexArray)

	// EnableVertexAttrib enables the attribute at location for the bound vertex array.
	EnableVertexAttrib(location uint32)

	// VertexAttribPointer describes the layout of the attribute at location in the buffer
	// currently bound to ARRAY_BUFFER. Integer types are routed to the integer pointer call.
	VertexAttribPointer(location uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)

	// VertexAttribDivisor sets the instancing divisor for the attribute at location.
	VertexAttribDivisor(location, divisor uint32)

	// CreateTexture allocates a texture object.
	CreateTexture() Texture

	// TexImage2D uploads a 2D image into t and applies the sampler state in desc.
	TexImage2D(t Texture, desc TextureDesc, pixels []byte)

	// ActiveTexture selects the texture unit for the next BindTexture.
	ActiveTexture(unit uint32)

	// BindTexture binds t to target on the active unit.
	BindTexture(target uint32, t Texture)

	// DeleteTexture releases a texture object.
	DeleteTexture(t Texture)

	// CreateFramebuffer allocates a framebuffer with depthTexture as its depth attachment.
	CreateFramebuffer(depthTexture Texture) (Framebuffer, error)

	// BindFramebuffer makes fb the draw target; 0 selects the default framebuffer.
	BindFramebuffer(fb Framebuffer)

	// DeleteFramebuffer releases a framebuffer object.
	DeleteFramebuffer(fb Framebuffer)

	// SetCullFace enables or disables back-face culling.
	SetCullFace(enabled bool)

	// SetBlend enables or disables alpha blending.
	SetBlend(enabled bool)

	// SetDepthWrite enables or disables depth buffer writes.
	SetDepthWrite(enabled bool)

	// Viewport sets the viewport rectangle in pixels.
	Viewport(x, y, width, height int32)

	// Clear clears the color and depth buffers of the current framebuffer.
	Clear(r, g, b, a float32, color, depth bool)

	// DrawElements issues an indexed draw; instances > 1 selects the instanced variant.
	DrawElements(mode uint32, count int32, indexType uint32, instances int32)

	// DrawArrays issues a non-indexed draw; instances > 1 selects the instanced variant.
	DrawArrays(mode uint32, first, count int32, instances int32)

	// CheckError returns the first pending driver error, ErrContextLost when the context is gone.
	CheckError() error
}
