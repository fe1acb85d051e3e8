package animator

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/chewxy/math32"
)

// playback tracks the time of one clip.
type playback struct {
	clip *Clip
	time float32
}

// advance moves the playhead forward by dt, wrapping when looping and clamping otherwise.
func (p *playback) advance(dt float32, loop bool) {
	p.time += dt
	d := p.clip.Duration
	if d <= 0 {
		p.time = 0
		return
	}
	if loop {
		if p.time > d || p.time < 0 {
			p.time = math32.Mod(p.time, d)
			if p.time < 0 {
				p.time += d
			}
		}
		return
	}
	p.time = min(max(p.time, 0), d)
}

type animationController struct {
	clips []*Clip

	current *playback
	next    *playback

	speed, blendDuration, blendElapsed float32
	loop                               bool
}

// AnimationController plays keyframe clips onto target transforms. It is advanced by
// the owning GameObject's Update and writes local TRS on every channel target, so the
// targets' dirty flags drive the rest of the frame.
type AnimationController interface {
	// AddClip registers a clip. Clip names should be unique; lookups return the first match.
	//
	// Parameters:
	//   - clip: the clip to add
	AddClip(clip *Clip)

	// Clip looks up a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *Clip: the clip, or nil
	Clip(name string) *Clip

	// Clips returns the registered clips in registration order.
	Clips() []*Clip

	// Play starts a clip from time zero, cancelling any blend.
	//
	// Parameters:
	//   - name: the clip name
	//   - loop: whether playback wraps at the end of the clip
	//
	// Returns:
	//   - bool: false if no clip has that name
	Play(name string, loop bool) bool

	// BlendTo crossfades from the current clip into another over duration seconds.
	// Without a current clip it behaves like Play with looping kept.
	//
	// Parameters:
	//   - name: the target clip name
	//   - duration: the crossfade length in seconds
	//
	// Returns:
	//   - bool: false if no clip has that name
	BlendTo(name string, duration float32) bool

	// Stop clears the current clip. Targets keep their last pose.
	Stop()

	// Playing returns the name of the current clip, or "".
	Playing() string

	// Time returns the playhead of the current clip in seconds.
	Time() float32

	// SetTime moves the playhead of the current clip.
	SetTime(t float32)

	Speed() float32
	SetSpeed(speed float32)

	// IsBlending reports whether a crossfade is in progress.
	IsBlending() bool

	// BlendProgress returns crossfade progress in [0, 1), 0 when not blending.
	BlendProgress() float32

	// Update advances playback by dt seconds and applies the sampled pose to every
	// channel target.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Channels returns every channel of every clip in clip then channel order. Copy
	// repair walks this list in parallel on the original and the copy.
	Channels() []*Channel

	// SetChannelTarget retargets the channel at index in Channels order.
	//
	// Parameters:
	//   - index: the channel index
	//   - target: the new target transform
	SetChannelTarget(index int, target transform.Transform)

	// Copy clones clips, channels and playback state. Channel targets still point at the
	// original's transforms until retargeted.
	Copy() AnimationController
}

var _ AnimationController = &animationController{}

// NewAnimationController creates a controller with the given options.
//
// Parameters:
//   - options: functional options for the controller
//
// Returns:
//   - AnimationController: the new controller
func NewAnimationController(options ...AnimationControllerBuilderOption) AnimationController {
	a := &animationController{speed: 1, loop: true}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animationController) AddClip(clip *Clip) {
	if clip == nil {
		panic("animator: AddClip requires a Clip")
	}
	a.clips = append(a.clips, clip)
}

func (a *animationController) Clip(name string) *Clip {
	for _, c := range a.clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (a *animationController) Clips() []*Clip {
	return a.clips
}

func (a *animationController) Play(name string, loop bool) bool {
	clip := a.Clip(name)
	if clip == nil {
		return false
	}
	a.current = &playback{clip: clip}
	a.next = nil
	a.blendElapsed = 0
	a.loop = loop
	return true
}

func (a *animationController) BlendTo(name string, duration float32) bool {
	clip := a.Clip(name)
	if clip == nil {
		return false
	}
	if a.current == nil || duration <= 0 {
		a.current = &playback{clip: clip}
		a.next = nil
		return true
	}
	a.next = &playback{clip: clip}
	a.blendDuration = duration
	a.blendElapsed = 0
	return true
}

func (a *animationController) Stop() {
	a.current = nil
	a.next = nil
}

func (a *animationController) Playing() string {
	if a.current == nil {
		return ""
	}
	return a.current.clip.Name
}

func (a *animationController) Time() float32 {
	if a.current == nil {
		return 0
	}
	return a.current.time
}

func (a *animationController) SetTime(t float32) {
	if a.current != nil {
		a.current.time = t
		a.current.advance(0, a.loop)
	}
}

func (a *animationController) Speed() float32 {
	return a.speed
}

func (a *animationController) SetSpeed(speed float32) {
	a.speed = speed
}

func (a *animationController) IsBlending() bool {
	return a.next != nil
}

func (a *animationController) BlendProgress() float32 {
	if a.next == nil {
		return 0
	}
	return a.blendElapsed / a.blendDuration
}

func (a *animationController) Update(dt float32) {
	if a.current == nil {
		return
	}
	step := dt * a.speed
	a.current.advance(step, a.loop)

	if a.next == nil {
		a.apply(a.current, nil, 0)
		return
	}

	a.next.advance(step, a.loop)
	a.blendElapsed += dt
	progress := a.blendElapsed / a.blendDuration
	if progress >= 1 {
		a.current, a.next = a.next, nil
		a.blendElapsed = 0
		a.apply(a.current, nil, 0)
		return
	}
	a.apply(a.current, a.next, progress)
}

// apply samples from (and, while blending, to) and writes the result to the targets.
// Targets animated by only one of the clips take that clip's pose.
func (a *animationController) apply(from, to *playback, w float32) {
	if to == nil {
		for _, ch := range from.clip.Channels {
			ch.Sample(from.time).Apply(ch.Target)
		}
		return
	}

	poses := make(map[transform.Transform]Pose, len(from.clip.Channels))
	order := make([]transform.Transform, 0, len(from.clip.Channels))
	for _, ch := range from.clip.Channels {
		if ch.Target == nil {
			continue
		}
		poses[ch.Target] = ch.Sample(from.time)
		order = append(order, ch.Target)
	}
	for _, ch := range to.clip.Channels {
		if ch.Target == nil {
			continue
		}
		target := ch.Sample(to.time)
		if p, ok := poses[ch.Target]; ok {
			poses[ch.Target] = p.Mix(target, w)
			continue
		}
		poses[ch.Target] = target
		order = append(order, ch.Target)
	}
	for _, t := range order {
		poses[t].Apply(t)
	}
}

func (a *animationController) Channels() []*Channel {
	var out []*Channel
	for _, c := range a.clips {
		out = append(out, c.Channels...)
	}
	return out
}

func (a *animationController) SetChannelTarget(index int, target transform.Transform) {
	i := index
	for _, c := range a.clips {
		if i < len(c.Channels) {
			c.Channels[i].Target = target
			return
		}
		i -= len(c.Channels)
	}
	panic("animator: SetChannelTarget index out of range")
}

func (a *animationController) Copy() AnimationController {
	c := &animationController{
		clips:         make([]*Clip, len(a.clips)),
		speed:         a.speed,
		loop:          a.loop,
		blendDuration: a.blendDuration,
		blendElapsed:  a.blendElapsed,
	}
	byOld := make(map[*Clip]*Clip, len(a.clips))
	for i, clip := range a.clips {
		c.clips[i] = clip.copy()
		byOld[clip] = c.clips[i]
	}
	if a.current != nil {
		c.current = &playback{clip: byOld[a.current.clip], time: a.current.time}
	}
	if a.next != nil {
		c.next = &playback{clip: byOld[a.next.clip], time: a.next.time}
	}
	return c
}
