package renderer

import (
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
)

// Members of the sharedPerScene block written by the renderer. A program may declare
// any subset of them; members it does not declare are not written.
const (
	memberProjection     = "projectionMatrix"
	memberView           = "viewMatrix"
	memberInverseView    = "inverseViewMatrix"
	memberCameraPosition = "cameraPosition"
	memberShadowBias     = "shadowBias"
	memberTime           = "time"
)

// sharedPerScene is the uniform buffer behind material.SharedPerSceneBlock. Its byte
// layout is not assumed; it is taken from the first registered program that declares
// the block.
type sharedPerScene struct {
	device  gpu.Device
	buffer  gpu.Buffer
	size    int32
	offsets map[string]int32
	data    []byte
	source  string
}

// adopt takes the layout of b if none is known yet. A later program whose block has a
// different size is reported, because its members would be read at the wrong offsets.
func (s *sharedPerScene) adopt(p program.ProgramContainer) {
	b, ok := p.UniformBlock(material.SharedPerSceneBlock)
	if !ok {
		return
	}
	if s.offsets != nil {
		if b.Size != s.size {
			slog.Warn("renderer: sharedPerScene layout differs between programs",
				"program", p.Name(), "size", b.Size, "expected", s.size, "layout", s.source)
		}
		return
	}

	s.size = b.Size
	s.source = p.Name()
	s.offsets = make(map[string]int32, len(b.MemberNames))
	for i, name := range b.MemberNames {
		// instance-named blocks report members as "block.member"
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			name = name[dot+1:]
		}
		s.offsets[name] = b.MemberOffsets[i]
	}
	s.data = make([]byte, b.Size)
	if s.buffer == 0 {
		s.buffer = s.device.CreateBuffer()
	}
	s.device.BufferData(gpu.UniformBuffer, s.buffer, s.data, gpu.DynamicDraw)
}

// ready reports whether a layout is known and the buffer exists.
func (s *sharedPerScene) ready() bool {
	return s.offsets != nil
}

// write packs the camera data of one pass and uploads it.
func (s *sharedPerScene) write(cam material.Camera, shadowBias, time float32) {
	if !s.ready() {
		return
	}
	proj, view, inv := cam.ProjectionMatrix(), cam.ViewMatrix(), cam.InverseViewMatrix()
	pos := cam.Position()

	s.putFloats(memberProjection, proj[:])
	s.putFloats(memberView, view[:])
	s.putFloats(memberInverseView, inv[:])
	s.putFloats(memberCameraPosition, pos[:])
	s.putFloats(memberShadowBias, []float32{shadowBias})
	s.putFloats(memberTime, []float32{time})

	s.device.BufferSubData(gpu.UniformBuffer, s.buffer, 0, s.data)
	s.device.BindBufferBase(gpu.UniformBuffer, material.SharedPerSceneBinding, s.buffer)
}

func (s *sharedPerScene) putFloats(member string, values []float32) {
	off, ok := s.offsets[member]
	if !ok || int(off)+len(values)*4 > len(s.data) {
		return
	}
	copy(s.data[off:], common.SliceToBytes(values))
}

// relinked refreshes the layout after p was rebuilt. Only the program the layout was
// taken from can change it.
func (s *sharedPerScene) relinked(p program.ProgramContainer) {
	if s.source == p.Name() {
		s.offsets = nil
	}
	s.adopt(p)
}

func (s *sharedPerScene) release() {
	if s.buffer != 0 {
		s.device.DeleteBuffer(s.buffer)
		s.buffer = 0
	}
	s.offsets = nil
	s.data = nil
}
