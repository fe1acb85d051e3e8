package animator

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
)

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the rotation at this keyframe.
	Value mgl32.Quat
}

// Channel animates one target transform. Keys of each path are sorted by time; a path
// without keys leaves that component of the target untouched.
type Channel struct {
	// Target is the animated node. It usually belongs to a sibling or cousin of the node
	// holding the controller, which is why copies retarget channels after cloning.
	Target transform.Transform

	PositionKeys []VectorKeyframe
	RotationKeys []QuaternionKeyframe
	ScaleKeys    []VectorKeyframe
}

// Pose is a sampled local transform.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	// Mask flags which components were sampled: bit 0 position, bit 1 rotation, bit 2 scale.
	Mask uint8
}

const (
	maskPosition uint8 = 1 << iota
	maskRotation
	maskScale
)

// Sample evaluates the channel at time t. Times before the first key clamp to it and
// times after the last key hold it.
//
// Parameters:
//   - t: the clip time in seconds
//
// Returns:
//   - Pose: the sampled components
func (c *Channel) Sample(t float32) Pose {
	var p Pose
	if len(c.PositionKeys) > 0 {
		p.Position = sampleVector(c.PositionKeys, t)
		p.Mask |= maskPosition
	}
	if len(c.RotationKeys) > 0 {
		p.Rotation = sampleQuaternion(c.RotationKeys, t)
		p.Mask |= maskRotation
	}
	if len(c.ScaleKeys) > 0 {
		p.Scale = sampleVector(c.ScaleKeys, t)
		p.Mask |= maskScale
	}
	return p
}

// Apply writes the sampled components of p to target.
func (p Pose) Apply(target transform.Transform) {
	if target == nil {
		return
	}
	if p.Mask&maskPosition != 0 {
		target.SetPosition(p.Position)
	}
	if p.Mask&maskRotation != 0 {
		target.SetRotation(p.Rotation)
	}
	if p.Mask&maskScale != 0 {
		target.SetScale(p.Scale)
	}
}

// Mix blends from p toward o by weight w in [0, 1]. Components only one side sampled
// are taken from that side.
func (p Pose) Mix(o Pose, w float32) Pose {
	out := Pose{Mask: p.Mask | o.Mask}
	out.Position = mixVec(p.Position, o.Position, p.Mask&maskPosition, o.Mask&maskPosition, w)
	out.Scale = mixVec(p.Scale, o.Scale, p.Mask&maskScale, o.Mask&maskScale, w)
	switch {
	case p.Mask&maskRotation != 0 && o.Mask&maskRotation != 0:
		out.Rotation = mgl32.QuatSlerp(p.Rotation, o.Rotation, w)
	case o.Mask&maskRotation != 0:
		out.Rotation = o.Rotation
	default:
		out.Rotation = p.Rotation
	}
	return out
}

func mixVec(a, b mgl32.Vec3, hasA, hasB uint8, w float32) mgl32.Vec3 {
	switch {
	case hasA != 0 && hasB != 0:
		return a.Add(b.Sub(a).Mul(w))
	case hasB != 0:
		return b
	default:
		return a
	}
}

// Clip is a named set of channels played together.
type Clip struct {
	Name     string
	Duration float32
	Channels []*Channel
}

// NewClip creates a clip whose duration is the time of its last keyframe.
//
// Parameters:
//   - name: the clip name
//   - channels: the channels
//
// Returns:
//   - *Clip: the new clip
func NewClip(name string, channels ...*Channel) *Clip {
	c := &Clip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.PositionKeys); n > 0 {
			c.Duration = max(c.Duration, ch.PositionKeys[n-1].Time)
		}
		if n := len(ch.RotationKeys); n > 0 {
			c.Duration = max(c.Duration, ch.RotationKeys[n-1].Time)
		}
		if n := len(ch.ScaleKeys); n > 0 {
			c.Duration = max(c.Duration, ch.ScaleKeys[n-1].Time)
		}
	}
	return c
}

// copy clones the channel structs. Keyframe slices are shared, they are never
// mutated after load.
func (c *Clip) copy() *Clip {
	out := &Clip{Name: c.Name, Duration: c.Duration, Channels: make([]*Channel, len(c.Channels))}
	for i, ch := range c.Channels {
		dup := *ch
		out.Channels[i] = &dup
	}
	return out
}

// keySpan returns the indices of the keys bracketing t and the interpolation factor.
func keySpan(n int, timeAt func(int) float32, t float32) (int, int, float32) {
	if t <= timeAt(0) {
		return 0, 0, 0
	}
	if t >= timeAt(n-1) {
		return n - 1, n - 1, 0
	}
	hi := sort.Search(n, func(i int) bool { return timeAt(i) > t })
	lo := hi - 1
	span := timeAt(hi) - timeAt(lo)
	if span <= 0 {
		return hi, hi, 0
	}
	return lo, hi, (t - timeAt(lo)) / span
}

func sampleVector(keys []VectorKeyframe, t float32) mgl32.Vec3 {
	lo, hi, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	a, b := keys[lo].Value, keys[hi].Value
	return a.Add(b.Sub(a).Mul(f))
}

func sampleQuaternion(keys []QuaternionKeyframe, t float32) mgl32.Quat {
	lo, hi, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if lo == hi {
		return keys[lo].Value
	}
	return mgl32.QuatSlerp(keys[lo].Value, keys[hi].Value, f)
}
