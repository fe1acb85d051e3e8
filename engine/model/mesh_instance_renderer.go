package model

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

	"github.com/go-gl/mathgl/mgl32"
)

// InstanceHandle identifies one instance of a MeshInstanceRenderer. A handle is only
// valid for the renderer that issued it.
type InstanceHandle struct {
	owner *meshInstanceRenderer
	id    uint32
}

type instanceVAO struct {
	program gpu.Program
	vao     gpu.VertexArray
}

// meshInstanceRenderer is the implementation of the MeshInstanceRenderer interface.
type meshInstanceRenderer struct {
	*meshRenderer
	device gpu.Device

	matrices []mgl32.Mat4
	colors   []mgl32.Vec4
	ids      []uint32
	index    map[uint32]int
	nextID   uint32

	matrixBuffer gpu.Buffer
	colorBuffer  gpu.Buffer
	stale        bool

	vaos map[*MeshData]map[program.ProgramContainer]instanceVAO
}

// MeshInstanceRenderer draws its meshes once per instance in a single instanced draw
// call. Instance edits only touch the CPU list; the instance buffers are uploaded once,
// right before the next draw.
type MeshInstanceRenderer interface {
	MeshRenderer

	// AddInstance appends an instance.
	//
	// Parameters:
	//   - matrix: the instance matrix, applied before the node's model matrix
	//   - color: an optional tint, white when omitted
	//
	// Returns:
	//   - InstanceHandle: the handle used to update or remove the instance
	AddInstance(matrix mgl32.Mat4, color ...mgl32.Vec4) InstanceHandle

	// UpdateInstance replaces the matrix of an instance.
	//
	// Parameters:
	//   - h: a handle issued by this renderer
	//   - matrix: the new instance matrix
	//
	// Returns:
	//   - bool: false if the instance was already removed
	UpdateInstance(h InstanceHandle, matrix mgl32.Mat4) bool

	// UpdateInstanceColor replaces the tint of an instance.
	//
	// Parameters:
	//   - h: a handle issued by this renderer
	//   - color: the new tint
	//
	// Returns:
	//   - bool: false if the instance was already removed
	UpdateInstanceColor(h InstanceHandle, color mgl32.Vec4) bool

	// RemoveInstance removes an instance by moving the last instance into its slot.
	//
	// Parameters:
	//   - h: a handle issued by this renderer
	//
	// Returns:
	//   - bool: false if the instance was already removed
	RemoveInstance(h InstanceHandle) bool

	// InstanceCount returns the number of live instances.
	InstanceCount() int

	// InstanceMatrix returns the matrix of an instance.
	InstanceMatrix(h InstanceHandle) (mgl32.Mat4, bool)

	// InstanceMatrices returns a copy of every live instance matrix, in slot order.
	InstanceMatrices() []mgl32.Mat4
}

var _ MeshInstanceRenderer = &meshInstanceRenderer{}

// NewMeshInstanceRenderer creates an instanced renderer with no instances. Programs
// drawing it read the per-instance "instanceMatrix" (a mat4) and "instanceColor"
// attributes.
//
// Parameters:
//   - device: the device owning the instance buffers
//   - pairs: the material and mesh pairs
//
// Returns:
//   - MeshInstanceRenderer: the new renderer
func NewMeshInstanceRenderer(device gpu.Device, pairs ...Pair) MeshInstanceRenderer {
	return newMeshInstanceRenderer(device, newMeshRenderer(pairs))
}

func newMeshInstanceRenderer(device gpu.Device, base *meshRenderer) *meshInstanceRenderer {
	return &meshInstanceRenderer{
		meshRenderer: base,
		device:       device,
		index:        make(map[uint32]int),
		matrixBuffer: device.CreateBuffer(),
		colorBuffer:  device.CreateBuffer(),
		vaos:         make(map[*MeshData]map[program.ProgramContainer]instanceVAO),
	}
}

func (r *meshInstanceRenderer) AddInstance(matrix mgl32.Mat4, color ...mgl32.Vec4) InstanceHandle {
	c := mgl32.Vec4{1, 1, 1, 1}
	if len(color) > 0 {
		c = color[0]
	}
	r.nextID++
	id := r.nextID
	r.index[id] = len(r.matrices)
	r.matrices = append(r.matrices, matrix)
	r.colors = append(r.colors, c)
	r.ids = append(r.ids, id)
	r.stale = true
	return InstanceHandle{owner: r, id: id}
}

func (r *meshInstanceRenderer) UpdateInstance(h InstanceHandle, matrix mgl32.Mat4) bool {
	i, ok := r.slot(h)
	if !ok {
		return false
	}
	r.matrices[i] = matrix
	r.stale = true
	return true
}

func (r *meshInstanceRenderer) UpdateInstanceColor(h InstanceHandle, color mgl32.Vec4) bool {
	i, ok := r.slot(h)
	if !ok {
		return false
	}
	r.colors[i] = color
	r.stale = true
	return true
}

func (r *meshInstanceRenderer) RemoveInstance(h InstanceHandle) bool {
	i, ok := r.slot(h)
	if !ok {
		return false
	}
	last := len(r.matrices) - 1
	if i != last {
		r.matrices[i] = r.matrices[last]
		r.colors[i] = r.colors[last]
		r.ids[i] = r.ids[last]
		r.index[r.ids[i]] = i
	}
	r.matrices = r.matrices[:last]
	r.colors = r.colors[:last]
	r.ids = r.ids[:last]
	delete(r.index, h.id)
	r.stale = true
	return true
}

func (r *meshInstanceRenderer) InstanceCount() int {
	return len(r.matrices)
}

func (r *meshInstanceRenderer) InstanceMatrix(h InstanceHandle) (mgl32.Mat4, bool) {
	i, ok := r.slot(h)
	if !ok {
		return mgl32.Mat4{}, false
	}
	return r.matrices[i], true
}

func (r *meshInstanceRenderer) InstanceMatrices() []mgl32.Mat4 {
	return append([]mgl32.Mat4(nil), r.matrices...)
}

func (r *meshInstanceRenderer) slot(h InstanceHandle) (int, bool) {
	if h.owner != r {
		panic("model: instance handle belongs to another renderer")
	}
	i, ok := r.index[h.id]
	return i, ok
}

func (r *meshInstanceRenderer) Render(frame *material.FrameState, matrix, prevMatrix mgl32.Mat4, opaquePass bool) int {
	if len(r.matrices) == 0 {
		return 0
	}
	r.upload()
	count := int32(len(r.matrices))
	return r.render(frame, matrix, prevMatrix, opaquePass, func(pair Pair) int32 {
		r.vertexArray(pair.Mesh, pair.Material.Program())
		return count
	})
}

// Bounds returns the bounds of every instance in the renderer's local space.
func (r *meshInstanceRenderer) Bounds() common.AABB {
	out := common.EmptyAABB()
	for _, m := range r.matrices {
		out.ExtendAABB(r.meshRenderer.bounds.Transformed(m))
	}
	return out
}

func (r *meshInstanceRenderer) upload() {
	if !r.stale {
		return
	}
	r.device.BufferData(gpu.ArrayBuffer, r.matrixBuffer, common.SliceToBytes(r.matrices), gpu.DynamicDraw)
	r.device.BufferData(gpu.ArrayBuffer, r.colorBuffer, common.SliceToBytes(r.colors), gpu.DynamicDraw)
	r.stale = false
}

// vertexArray binds the instanced vertex array of mesh for p: the mesh attributes plus
// the per-instance attributes with divisor 1.
func (r *meshInstanceRenderer) vertexArray(mesh *MeshData, p program.ProgramContainer) {
	byProgram, ok := r.vaos[mesh]
	if !ok {
		byProgram = make(map[program.ProgramContainer]instanceVAO)
		r.vaos[mesh] = byProgram
	}
	if e, ok := byProgram[p]; ok {
		if e.program == p.Handle() {
			r.device.BindVertexArray(e.vao)
			return
		}
		r.device.DeleteVertexArray(e.vao)
	}

	vao := mesh.BuildVertexArray(p)
	if a, ok := p.Attribute(AttrInstanceMatrix); ok {
		r.device.BindBuffer(gpu.ArrayBuffer, r.matrixBuffer)
		for col := uint32(0); col < 4; col++ {
			r.device.EnableVertexAttrib(a.Location + col)
			r.device.VertexAttribPointer(a.Location+col, 4, gpu.TypeFloat, false, 64, int(col)*16)
			r.device.VertexAttribDivisor(a.Location+col, 1)
		}
	}
	if a, ok := p.Attribute(AttrInstanceColor); ok {
		r.device.BindBuffer(gpu.ArrayBuffer, r.colorBuffer)
		r.device.EnableVertexAttrib(a.Location)
		r.device.VertexAttribPointer(a.Location, 4, gpu.TypeFloat, false, 16, 0)
		r.device.VertexAttribDivisor(a.Location, 1)
	}
	byProgram[p] = instanceVAO{program: p.Handle(), vao: vao}
}

// Copy returns a renderer sharing the meshes, with copies of the materials and of the
// instance list. Handles of the original are not valid on the copy.
func (r *meshInstanceRenderer) Copy() MeshRenderer {
	c := newMeshInstanceRenderer(r.device, r.copyPairs())
	c.matrices = append(c.matrices, r.matrices...)
	c.colors = append(c.colors, r.colors...)
	c.ids = append(c.ids, r.ids...)
	for id, i := range r.index {
		c.index[id] = i
	}
	c.nextID = r.nextID
	c.stale = true
	return c
}

func (r *meshInstanceRenderer) Release() {
	for _, byProgram := range r.vaos {
		for _, e := range byProgram {
			r.device.DeleteVertexArray(e.vao)
		}
	}
	r.vaos = make(map[*MeshData]map[program.ProgramContainer]instanceVAO)
	if r.matrixBuffer != 0 {
		r.device.DeleteBuffer(r.matrixBuffer)
		r.device.DeleteBuffer(r.colorBuffer)
		r.matrixBuffer, r.colorBuffer = 0, 0
	}
	r.meshRenderer.Release()
}
