package gpu

// StateCache wraps a Device and drops redundant state changes. Program, vertex array,
// cull, blend and depth-write changes reach the driver only when the requested state
// differs from the last one set through the cache.
//
// The cache assumes it is the only path to the device; calls made on the wrapped
// device directly are not observed. Reset forgets all cached state, which is required
// after anything else touched the context.
type StateCache struct {
	Device

	program     Program
	vertexArray VertexArray
	cull        tristate
	blend       tristate
	depthWrite  tristate

	// Skipped counts state changes that were dropped because they were redundant.
	Skipped int
}

type tristate uint8

const (
	unknown tristate = iota
	off
	on
)

func tri(b bool) tristate {
	if b {
		return on
	}
	return off
}

var _ Device = &StateCache{}

// NewStateCache wraps d with redundant-state filtering.
//
// Parameters:
//   - d: the device to wrap
//
// Returns:
//   - *StateCache: the caching device
func NewStateCache(d Device) *StateCache {
	return &StateCache{Device: d}
}

// Reset forgets every cached value so the next call of each kind reaches the driver.
func (c *StateCache) Reset() {
	c.program = 0
	c.vertexArray = 0
	c.cull = unknown
	c.blend = unknown
	c.depthWrite = unknown
}

// CurrentProgram returns the last program made current through the cache.
func (c *StateCache) CurrentProgram() Program {
	return c.program
}

func (c *StateCache) UseProgram(p Program) {
	if p == c.program {
		c.Skipped++
		return
	}
	c.program = p
	c.Device.UseProgram(p)
}

func (c *StateCache) BindVertexArray(v VertexArray) {
	if v == c.vertexArray {
		c.Skipped++
		return
	}
	c.vertexArray = v
	c.Device.BindVertexArray(v)
}

func (c *StateCache) DeleteProgram(p Program) {
	if p == c.program {
		c.program = 0
	}
	c.Device.DeleteProgram(p)
}

func (c *StateCache) DeleteVertexArray(v VertexArray) {
	if v == c.vertexArray {
		c.vertexArray = 0
	}
	c.Device.DeleteVertexArray(v)
}

func (c *StateCache) SetCullFace(enabled bool) {
	if c.cull == tri(enabled) {
		c.Skipped++
		return
	}
	c.cull = tri(enabled)
	c.Device.SetCullFace(enabled)
}

func (c *StateCache) SetBlend(enabled bool) {
	if c.blend == tri(enabled) {
		c.Skipped++
		return
	}
	c.blend = tri(enabled)
	c.Device.SetBlend(enabled)
}

func (c *StateCache) SetDepthWrite(enabled bool) {
	if c.depthWrite == tri(enabled) {
		c.Skipped++
		return
	}
	c.depthWrite = tri(enabled)
	c.Device.SetDepthWrite(enabled)
}
