package material

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"

	"github.com/go-gl/mathgl/mgl32"
)

// Reserved texture units. Material textures start at MaterialTextureUnitOffset so the
// image-based lighting inputs, the shadow map and the joint texture are always bound
// regardless of how many textures a material uses.
const (
	UnitSplitsumLUT uint32 = iota
	UnitDiffuseIBL
	UnitSpecularIBL
	UnitShadowMap
	UnitJointTexture

	// MaterialTextureUnitOffset is added to a material-local texture index to get the
	// absolute texture unit.
	MaterialTextureUnitOffset
)

// SharedPerSceneBlock is the name of the uniform block carrying per-frame camera data.
const SharedPerSceneBlock = "sharedPerScene"

// SharedPerSceneBinding is the buffer binding point of SharedPerSceneBlock.
const SharedPerSceneBinding uint32 = 0

// Camera is what a render pass needs from a camera.
type Camera interface {
	ProjectionMatrix() mgl32.Mat4
	ViewMatrix() mgl32.Mat4
	InverseViewMatrix() mgl32.Mat4
	Position() mgl32.Vec3

	// Layer is the bitmask matched against GameObject layers.
	Layer() uint32
}

// FrameState is the per-pass state shared by every draw call. The renderer fills it
// once per camera pass.
type FrameState struct {
	Camera Camera

	// PrevViewMatrix is the camera view matrix of the previous frame.
	PrevViewMatrix mgl32.Mat4

	// Time is seconds since the engine started.
	Time float32

	// FrameID increases by one every rendered frame.
	FrameID uint64

	// Lights is the packed light environment, nil for unlit passes.
	Lights *light.Uniforms

	// ShadowMatrix is the sun's light-space matrix, valid when HasShadowMap is set.
	ShadowMatrix mgl32.Mat4
	HasShadowMap bool

	// SharedPerScene reports that the sharedPerScene buffer holds this pass's camera.
	// Programs declaring the block read it; others get matrix uniforms.
	SharedPerScene bool

	// ShadowPass is set while rendering into the shadow map.
	ShadowPass bool

	// Frustum culls mesh bounds when non-nil.
	Frustum *common.Frustum
}
