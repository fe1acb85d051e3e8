// Package loader decodes texture files off the render thread and uploads them on it.
//
// Decoding (PNG, JPEG, BMP, WebP) runs in a worker pool. GL objects are only created
// by the goroutine that calls into the loader, which must be the one holding the
// context. Textures are cached by path and shared by every material built from them.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Sampler uniform names BuildMaterial assigns textures to.
const (
	AlbedoUniform            = "albedo"
	NormalMapUniform         = "normalMap"
	MetallicRoughnessUniform = "metallicRoughnessMap"
	MetallicUniform          = "metallic"
	RoughnessUniform         = "roughness"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	device  gpu.Device
	pool    worker.DynamicWorkerPool
	workers int
	sampler *common.SamplerStagingData

	textureCache map[string]*material.Texture
}

// Loader defines the public-facing interface for loading and caching textures.
type Loader interface {
	// LoadTextures decodes the files in parallel and uploads them in order. Paths that
	// are already cached are not read again. A file that fails to decode leaves a nil
	// entry and contributes to the joined error; the other files still load.
	//
	// Parameters:
	//   - ctx: cancels decoding that has not started yet
	//   - paths: the texture files
	//
	// Returns:
	//   - []*material.Texture: one texture per path, owned by the cache
	//   - error: the joined decode errors, or ctx.Err() when cancelled
	LoadTextures(ctx context.Context, paths ...string) ([]*material.Texture, error)

	// LoadImported decodes textures given by path or embedded bytes. Each is cached
	// under its Name, or its Path when the name is empty.
	//
	// Parameters:
	//   - ctx: cancels decoding that has not started yet
	//   - textures: the texture sources
	//
	// Returns:
	//   - []*material.Texture: one texture per source, owned by the cache
	//   - error: the joined decode errors, or ctx.Err() when cancelled
	LoadImported(ctx context.Context, textures ...*common.ImportedTexture) ([]*material.Texture, error)

	// BuildMaterial creates a material from a format-agnostic description, loading its
	// textures through the cache.
	//
	// Parameters:
	//   - ctx: cancels texture decoding
	//   - p: the program the material binds onto
	//   - desc: the material description
	//
	// Returns:
	//   - material.Material: the material, built even when a texture fails to load
	//   - error: the texture errors
	BuildMaterial(ctx context.Context, p program.ProgramContainer, desc common.ImportedMaterial) (material.Material, error)

	// Get retrieves a cached texture by key. Returns nil if not found.
	//
	// Parameters:
	//   - key: the path or name the texture was loaded under
	//
	// Returns:
	//   - *material.Texture: the cached texture or nil
	Get(key string) *material.Texture

	// Textures returns a copy of the texture cache.
	//
	// Returns:
	//   - map[string]*material.Texture: all cached textures keyed by path or name
	Textures() map[string]*material.Texture

	// Release drops the cache's reference on every texture. Textures still held by
	// materials stay alive until those materials release them.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader uploading to device.
//
// Parameters:
//   - device: the device textures are created on
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(device gpu.Device, options ...LoaderBuilderOption) Loader {
	if device == nil {
		panic("loader: NewLoader requires a Device")
	}
	l := &loader{
		mu:           sync.RWMutex{},
		device:       device,
		workers:      runtime.NumCPU(),
		textureCache: make(map[string]*material.Texture),
	}
	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

func (l *loader) LoadTextures(ctx context.Context, paths ...string) ([]*material.Texture, error) {
	sources := make([]*common.ImportedTexture, len(paths))
	for i, path := range paths {
		sources[i] = &common.ImportedTexture{Name: path, Path: path}
	}
	return l.LoadImported(ctx, sources...)
}

// decoded is the result of one decode task.
type decoded struct {
	source  *common.ImportedTexture
	staging common.TextureStagingData
	err     error
}

func (l *loader) LoadImported(ctx context.Context, textures ...*common.ImportedTexture) ([]*material.Texture, error) {
	out := make([]*material.Texture, len(textures))

	// pending keeps the first source of each uncached key, so a repeated key decodes once
	pending := make(map[string]*decoded)
	var order []string

	l.mu.RLock()
	for i, t := range textures {
		key := textureKey(t)
		if cached, ok := l.textureCache[key]; ok {
			out[i] = cached
			continue
		}
		if _, queued := pending[key]; !queued {
			pending[key] = &decoded{source: t}
			order = append(order, key)
		}
	}
	l.mu.RUnlock()

	var wg sync.WaitGroup
	for i, key := range order {
		res := pending[key]
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					res.err = err
					return nil, err
				}
				res.staging, res.err = res.source.Decode()
				return nil, res.err
			},
		})
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs []error
	l.mu.Lock()
	for _, key := range order {
		res := pending[key]
		if res.err != nil {
			errs = append(errs, fmt.Errorf("loader: %s: %w", key, res.err))
			continue
		}
		sampler := l.sampler
		if res.source.SamplerData != nil {
			sampler = res.source.SamplerData
		}
		l.textureCache[key] = material.NewTexture(l.device, key, res.staging, sampler)
	}
	for i, t := range textures {
		if out[i] == nil {
			out[i] = l.textureCache[textureKey(t)]
		}
	}
	l.mu.Unlock()

	return out, errors.Join(errs...)
}

func (l *loader) BuildMaterial(ctx context.Context, p program.ProgramContainer, desc common.ImportedMaterial) (material.Material, error) {
	baseColor := desc.BaseColor
	if baseColor == [4]float32{} {
		baseColor = [4]float32{1, 1, 1, 1}
	}
	options := []material.MaterialBuilderOption{
		material.WithName(desc.Name),
		material.WithBaseColor(baseColor),
		material.WithTransparent(desc.Transparent),
		material.WithDoubleSided(desc.DoubleSided),
	}
	if _, ok := p.Uniform(MetallicUniform); ok {
		options = append(options, material.WithUniform(MetallicUniform, desc.Metallic))
	}
	if _, ok := p.Uniform(RoughnessUniform); ok {
		options = append(options, material.WithUniform(RoughnessUniform, desc.Roughness))
	}

	var uniforms []string
	var sources []*common.ImportedTexture
	add := func(uniform string, embedded *common.ImportedTexture, path string) {
		switch {
		case embedded != nil:
			sources = append(sources, embedded)
		case path != "":
			sources = append(sources, &common.ImportedTexture{Name: path, Path: path})
		default:
			return
		}
		uniforms = append(uniforms, uniform)
	}
	add(AlbedoUniform, desc.DiffuseTexture, desc.DiffuseTexturePath)
	add(NormalMapUniform, desc.NormalTexture, desc.NormalTexturePath)
	add(MetallicRoughnessUniform, desc.MetallicRoughnessTexture, desc.MetallicTexturePath)

	textures, err := l.LoadImported(ctx, sources...)
	if err != nil && textures == nil {
		return nil, err
	}
	for i, tex := range textures {
		if tex != nil {
			options = append(options, material.WithTexture(uniforms[i], tex))
		}
	}
	return material.NewMaterial(p, options...), err
}

func (l *loader) Get(key string) *material.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textureCache[key]
}

func (l *loader) Textures() map[string]*material.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*material.Texture, len(l.textureCache))
	for k, v := range l.textureCache {
		result[k] = v
	}
	return result
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tex := range l.textureCache {
		tex.Release()
	}
	l.textureCache = make(map[string]*material.Texture)
}

func textureKey(t *common.ImportedTexture) string {
	if t == nil {
		return ""
	}
	return common.Coalesce(t.Name, t.Path)
}
