package model

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names bound per draw call.
const (
	ModelMatrixUniform     = "modelMatrix"
	PrevModelMatrixUniform = "prevModelMatrix"
	PrevViewMatrixUniform  = "prevViewMatrix"
)

// Pair is one material drawing one mesh.
type Pair struct {
	Material material.Material
	Mesh     *MeshData
}

// meshRenderer is the implementation of the MeshRenderer interface.
type meshRenderer struct {
	pairs  []Pair
	bounds common.AABB
}

// MeshRenderer draws a list of (material, mesh) pairs with one model matrix.
type MeshRenderer interface {
	// Render draws every pair whose material opacity matches opaquePass. A color pass is
	// split into an opaque and a blended sub-pass by calling Render twice.
	//
	// Parameters:
	//   - frame: the pass state; frame.ShadowPass selects the shadow cull policy
	//   - matrix: the world matrix of the owning node
	//   - prevMatrix: the world matrix of the previous frame
	//   - opaquePass: true for the opaque sub-pass
	//
	// Returns:
	//   - int: the number of draw calls issued
	Render(frame *material.FrameState, matrix, prevMatrix mgl32.Mat4, opaquePass bool) int

	// Materials returns the material of each pair, in pair order.
	Materials() []material.Material

	// Meshes returns the mesh of each pair, in pair order.
	Meshes() []*MeshData

	// Bounds returns the local-space bounds of all meshes.
	Bounds() common.AABB

	// Copy returns a renderer sharing the meshes and drawing with copies of the materials.
	Copy() MeshRenderer

	// Release drops the renderer's mesh and material references. GPU objects are deleted
	// when nothing else references them.
	Release()
}

var _ MeshRenderer = &meshRenderer{}

// NewMeshRenderer creates a renderer drawing the given pairs. The renderer takes one
// reference to each mesh and owns the materials.
//
// Parameters:
//   - pairs: the material and mesh pairs; neither may be nil
//
// Returns:
//   - MeshRenderer: the new renderer
func NewMeshRenderer(pairs ...Pair) MeshRenderer {
	return newMeshRenderer(pairs)
}

func newMeshRenderer(pairs []Pair) *meshRenderer {
	r := &meshRenderer{bounds: common.EmptyAABB()}
	for _, p := range pairs {
		if p.Material == nil {
			panic("model: mesh renderer requires a Material")
		}
		if p.Material.Program() == nil {
			panic("model: material has no ProgramContainer")
		}
		if p.Mesh == nil {
			panic("model: mesh renderer requires MeshData")
		}
		p.Mesh.Retain()
		r.pairs = append(r.pairs, p)
		r.bounds.ExtendAABB(p.Mesh.Bounds())
	}
	return r
}

func (r *meshRenderer) Render(frame *material.FrameState, matrix, prevMatrix mgl32.Mat4, opaquePass bool) int {
	return r.render(frame, matrix, prevMatrix, opaquePass, nil)
}

// render draws the matching pairs. bind, when set, replaces the mesh vertex array
// binding and returns the instance count; zero skips the draw.
func (r *meshRenderer) render(frame *material.FrameState, matrix, prevMatrix mgl32.Mat4, opaquePass bool, bind func(Pair) int32) int {
	draws := 0
	for _, pair := range r.pairs {
		mat := pair.Material
		if mat.IsOpaque() != opaquePass {
			continue
		}
		p := mat.Program()
		device := p.Device()

		device.UseProgram(p.Handle())
		instances := int32(1)
		if bind != nil {
			instances = bind(pair)
		} else {
			pair.Mesh.VertexArray(p)
		}
		if instances == 0 {
			continue
		}

		p.SetMat4(ModelMatrixUniform, matrix)
		p.SetMat4(PrevModelMatrixUniform, prevMatrix)
		if frame != nil {
			p.SetMat4(PrevViewMatrixUniform, frame.PrevViewMatrix)
		}
		mat.BindUniforms(frame)

		doubleSided := mat.DoubleSided()
		if frame != nil && frame.ShadowPass {
			doubleSided = mat.ShadowDoubleSided()
		}
		device.SetCullFace(!doubleSided)

		pair.Mesh.Draw(instances)
		draws++
	}
	return draws
}

func (r *meshRenderer) Materials() []material.Material {
	out := make([]material.Material, len(r.pairs))
	for i, p := range r.pairs {
		out[i] = p.Material
	}
	return out
}

func (r *meshRenderer) Meshes() []*MeshData {
	out := make([]*MeshData, len(r.pairs))
	for i, p := range r.pairs {
		out[i] = p.Mesh
	}
	return out
}

func (r *meshRenderer) Bounds() common.AABB {
	return r.bounds
}

func (r *meshRenderer) Copy() MeshRenderer {
	return r.copyPairs()
}

func (r *meshRenderer) copyPairs() *meshRenderer {
	pairs := make([]Pair, len(r.pairs))
	for i, p := range r.pairs {
		pairs[i] = Pair{Material: p.Material.Copy(), Mesh: p.Mesh}
	}
	return newMeshRenderer(pairs)
}

func (r *meshRenderer) Release() {
	for _, p := range r.pairs {
		p.Mesh.Release()
		p.Material.Release()
	}
	r.pairs = nil
}
