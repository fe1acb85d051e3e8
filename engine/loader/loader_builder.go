package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets how many files decode at once.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithSampler is an option builder that sets the sampler of textures whose source
// carries none.
//
// Parameters:
//   - s: the sampler settings
//
// Returns:
//   - LoaderBuilderOption: a function that applies the sampler option to a loader
func WithSampler(s common.SamplerStagingData) LoaderBuilderOption {
	return func(l *loader) {
		l.sampler = &s
	}
}

// WithTexture is an option builder that pre-populates the texture cache. The cache
// takes a reference on tex.
//
// Parameters:
//   - key: the cache key for the texture
//   - tex: the texture to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTexture(key string, tex *material.Texture) LoaderBuilderOption {
	return func(l *loader) {
		l.textureCache[key] = tex.Retain()
	}
}
