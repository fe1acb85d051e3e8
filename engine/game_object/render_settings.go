package game_object

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

// RenderPass is a bitmask selecting what a Render traversal draws.
type RenderPass uint32

const (
	// PassShadows draws shadow casters into the shadow map.
	PassShadows RenderPass = 1 << iota

	// PassOpaque draws materials that are opaque.
	PassOpaque

	// PassAlpha draws blended materials.
	PassAlpha

	// PassDownscaled marks a pass rendered into a reduced-resolution target. It combines
	// with the other flags.
	PassDownscaled
)

// PassScene is a full frame: shadows, then opaque, then alpha.
const PassScene = PassShadows | PassOpaque | PassAlpha

// Has reports whether every bit of flag is set.
func (p RenderPass) Has(flag RenderPass) bool {
	return p&flag == flag
}

// RenderSettings configures one Render traversal.
type RenderSettings struct {
	Pass RenderPass

	// MaterialOverride, when set, replaces the program of every material drawn during
	// the traversal. The materials are restored after each draw.
	MaterialOverride program.ProgramContainer
}
