package model

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

	"github.com/go-gl/mathgl/mgl32"
)

type vertexBuffer struct {
	name       string
	components int32
	xtype      uint32
	normalized bool
	buffer     gpu.Buffer
}

type vaoEntry struct {
	program gpu.Program
	vao     gpu.VertexArray
}

// MeshData owns the GPU buffers of one mesh: a buffer per vertex attribute, an optional
// index buffer, and a vertex array per program that has drawn it. Programs may declare
// different subsets of attributes at different locations, so each gets its own vertex
// array, built the first time the program draws the mesh.
//
// MeshData is reference counted. Renderers sharing the mesh each hold a reference and
// the buffers are deleted by the last Release.
type MeshData struct {
	name   string
	device gpu.Device

	attributes  []vertexBuffer
	vertexCount int32

	index      gpu.Buffer
	indexCount int32

	positions []float32
	indices   []uint32
	bounds    common.AABB

	vaos map[program.ProgramContainer]vaoEntry
	refs int
}

// NewMeshData uploads attributes and indices. A position attribute of three floats per
// vertex is required; it also provides the local bounds.
//
// Parameters:
//   - device: the device to upload to
//   - attributes: the vertex attributes; all must describe the same vertex count
//   - indices: triangle indices, nil for non-indexed drawing
//   - options: functional options for the mesh
//
// Returns:
//   - *MeshData: the mesh holding one reference
func NewMeshData(device gpu.Device, attributes []VertexAttribute, indices []uint32, options ...MeshDataBuilderOption) *MeshData {
	m := &MeshData{
		device:      device,
		vaos:        make(map[program.ProgramContainer]vaoEntry),
		refs:        1,
		vertexCount: -1,
		bounds:      common.EmptyAABB(),
	}
	for _, opt := range options {
		opt(m)
	}

	for _, a := range attributes {
		if m.vertexCount >= 0 && a.Count != m.vertexCount {
			panic("model: NewMeshData attributes disagree on vertex count")
		}
		m.vertexCount = a.Count
		if a.Name == AttrPosition {
			if a.Type != gpu.TypeFloat || a.Components != 3 {
				panic("model: position attribute must be three floats")
			}
			m.positions = a.floats
		}
		b := device.CreateBuffer()
		device.BufferData(gpu.ArrayBuffer, b, a.Data, gpu.StaticDraw)
		m.attributes = append(m.attributes, vertexBuffer{
			name:       a.Name,
			components: a.Components,
			xtype:      a.Type,
			normalized: a.Normalized,
			buffer:     b,
		})
	}
	if m.positions == nil {
		panic("model: NewMeshData requires a position attribute")
	}

	if len(indices) > 0 {
		m.indices = indices
		m.indexCount = int32(len(indices))
		m.index = device.CreateBuffer()
		device.BufferData(gpu.ElementArrayBuffer, m.index, common.SliceToBytes(indices), gpu.StaticDraw)
	}

	for i := 0; i+2 < len(m.positions); i += 3 {
		m.bounds.Extend(mgl32.Vec3{m.positions[i], m.positions[i+1], m.positions[i+2]})
	}
	return m
}

// Name returns the diagnostic label.
func (m *MeshData) Name() string {
	return m.name
}

// Bounds returns the local-space bounds of the positions.
func (m *MeshData) Bounds() common.AABB {
	return m.bounds
}

// Positions returns the CPU copy of the position attribute.
func (m *MeshData) Positions() []float32 {
	return m.positions
}

// Indices returns the CPU copy of the indices, nil for non-indexed meshes.
func (m *MeshData) Indices() []uint32 {
	return m.indices
}

// VertexCount returns the number of vertices.
func (m *MeshData) VertexCount() int32 {
	return m.vertexCount
}

// Indexed reports whether the mesh draws through an index buffer.
func (m *MeshData) Indexed() bool {
	return m.index != 0
}

// VertexArray binds the vertex array of p, building it on first use. A vertex array
// built for a program handle that has since been relinked is rebuilt.
//
// Parameters:
//   - p: the program about to draw the mesh
//
// Returns:
//   - gpu.VertexArray: the bound vertex array
func (m *MeshData) VertexArray(p program.ProgramContainer) gpu.VertexArray {
	if e, ok := m.vaos[p]; ok {
		if e.program == p.Handle() {
			m.device.BindVertexArray(e.vao)
			return e.vao
		}
		m.device.DeleteVertexArray(e.vao)
	}
	vao := m.BuildVertexArray(p)
	m.vaos[p] = vaoEntry{program: p.Handle(), vao: vao}
	return vao
}

// BuildVertexArray creates an uncached vertex array with the mesh attributes p declares
// and the index buffer, and leaves it bound. Callers that add their own attributes
// (per-instance data) own the result.
//
// Parameters:
//   - p: the program the layout is built for
//
// Returns:
//   - gpu.VertexArray: the new, bound vertex array
func (m *MeshData) BuildVertexArray(p program.ProgramContainer) gpu.VertexArray {
	vao := m.device.CreateVertexArray()
	m.device.BindVertexArray(vao)
	for _, vb := range m.attributes {
		a, ok := p.Attribute(vb.name)
		if !ok {
			continue
		}
		m.device.BindBuffer(gpu.ArrayBuffer, vb.buffer)
		m.device.EnableVertexAttrib(a.Location)
		m.device.VertexAttribPointer(a.Location, vb.components, vb.xtype, vb.normalized, 0, 0)
	}
	for name := range p.Attributes() {
		if !m.hasAttribute(name) && name != AttrInstanceMatrix && name != AttrInstanceColor {
			slog.Warn("model: attribute not provided by mesh", "attribute", name, "mesh", m.name, "program", p.Name())
		}
	}
	if m.index != 0 {
		m.device.BindBuffer(gpu.ElementArrayBuffer, m.index)
	}
	return vao
}

func (m *MeshData) hasAttribute(name string) bool {
	for _, vb := range m.attributes {
		if vb.name == name {
			return true
		}
	}
	return false
}

// Draw issues the draw call for the bound vertex array.
//
// Parameters:
//   - instances: the instance count, 1 for non-instanced draws
func (m *MeshData) Draw(instances int32) {
	if m.index != 0 {
		m.device.DrawElements(gpu.Triangles, m.indexCount, gpu.TypeUnsignedInt, instances)
		return
	}
	m.device.DrawArrays(gpu.Triangles, 0, m.vertexCount, instances)
}

// Retain adds a reference.
//
// Returns:
//   - *MeshData: m, for chaining
func (m *MeshData) Retain() *MeshData {
	m.refs++
	return m
}

// Release drops a reference and deletes every buffer and vertex array when none remain.
func (m *MeshData) Release() {
	if m.refs == 0 {
		return
	}
	m.refs--
	if m.refs > 0 {
		return
	}
	for p, e := range m.vaos {
		m.device.DeleteVertexArray(e.vao)
		delete(m.vaos, p)
	}
	for _, vb := range m.attributes {
		m.device.DeleteBuffer(vb.buffer)
	}
	m.attributes = nil
	if m.index != 0 {
		m.device.DeleteBuffer(m.index)
		m.index = 0
	}
}
