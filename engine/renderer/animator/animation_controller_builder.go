package animator

// AnimationControllerBuilderOption is a function that configures an animation controller during construction.
type AnimationControllerBuilderOption func(*animationController)

// WithClips registers clips in order.
//
// Parameters:
//   - clips: the clips to add
//
// Returns:
//   - AnimationControllerBuilderOption: a function that applies the clips to an animationController
func WithClips(clips ...*Clip) AnimationControllerBuilderOption {
	return func(a *animationController) {
		for _, c := range clips {
			a.AddClip(c)
		}
	}
}

// WithSpeed sets the playback speed multiplier. Defaults to 1.
//
// Parameters:
//   - speed: the speed multiplier
//
// Returns:
//   - AnimationControllerBuilderOption: a function that applies the speed to an animationController
func WithSpeed(speed float32) AnimationControllerBuilderOption {
	return func(a *animationController) {
		a.speed = speed
	}
}

// WithAutoplay plays the named clip, looping. It must come after the option that
// registers the clip.
//
// Parameters:
//   - name: the clip to play
//
// Returns:
//   - AnimationControllerBuilderOption: a function that starts playback on an animationController
func WithAutoplay(name string) AnimationControllerBuilderOption {
	return func(a *animationController) {
		a.Play(name, true)
	}
}
