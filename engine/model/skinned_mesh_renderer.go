package model

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// skinnedMeshRenderer is the implementation of the SkinnedRenderer interface.
type skinnedMeshRenderer struct {
	*meshRenderer
	device gpu.Device
	skin   *animator.Skin

	updated   bool
	lastFrame uint64
}

// SkinnedRenderer is a MeshRenderer deformed by a Skin. The joint texture is refreshed
// once per frame, before the first pass that draws the mesh.
type SkinnedRenderer interface {
	MeshRenderer

	// Skin returns the skin deforming the meshes.
	//
	// Returns:
	//   - *animator.Skin: the skin
	Skin() *animator.Skin
}

var _ SkinnedRenderer = &skinnedMeshRenderer{}

// NewSkinnedMeshRenderer creates a skinned renderer. The renderer owns skin.
//
// Parameters:
//   - device: the device owning the joint texture
//   - skin: the skin; must not be nil
//   - pairs: the material and mesh pairs
//
// Returns:
//   - SkinnedRenderer: the new renderer
func NewSkinnedMeshRenderer(device gpu.Device, skin *animator.Skin, pairs ...Pair) SkinnedRenderer {
	if skin == nil {
		panic("model: skinned mesh renderer requires a Skin")
	}
	return &skinnedMeshRenderer{
		meshRenderer: newMeshRenderer(pairs),
		device:       device,
		skin:         skin,
	}
}

func (r *skinnedMeshRenderer) Skin() *animator.Skin {
	return r.skin
}

func (r *skinnedMeshRenderer) Render(frame *material.FrameState, matrix, prevMatrix mgl32.Mat4, opaquePass bool) int {
	var frameID uint64
	if frame != nil {
		frameID = frame.FrameID
	}
	if !r.updated || frameID != r.lastFrame {
		r.skin.Update(r.device)
		r.updated = true
		r.lastFrame = frameID
	}
	return r.render(frame, matrix, prevMatrix, opaquePass, func(pair Pair) int32 {
		pair.Mesh.VertexArray(pair.Material.Program())
		if tex := r.skin.Texture(); tex != nil {
			tex.Bind(material.UnitJointTexture)
		}
		return 1
	})
}

// Copy returns a renderer sharing the meshes, with copies of the materials and a copy
// of the skin still pointing at the original joints. GameObject.Copy retargets them.
func (r *skinnedMeshRenderer) Copy() MeshRenderer {
	return &skinnedMeshRenderer{
		meshRenderer: r.copyPairs(),
		device:       r.device,
		skin:         r.skin.Copy(),
	}
}

func (r *skinnedMeshRenderer) Release() {
	r.skin.Release()
	r.meshRenderer.Release()
}
