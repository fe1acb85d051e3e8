package shader

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
)

// ShaderType identifies the pipeline stage a shader source is written for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, paired with a vertex shader.
	ShaderTypeFragment
)

// Stage returns the GPU stage for the shader type.
func (t ShaderType) Stage() gpu.ShaderStage {
	if t == ShaderTypeFragment {
		return gpu.StageFragment
	}
	return gpu.StageVertex
}

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	path       string
	shaderType ShaderType
	source     string
	files      []string

	pp PreProcessor
}

// Shader is one GLSL stage loaded from disk and pre-processed. It remembers every file
// its source was assembled from, so a change to a shared include can be traced back
// to the shaders and programs that need rebuilding.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Path returns the absolute path of the root source file.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// Source retrieves the pre-processed GLSL source.
	//
	// Returns:
	//   - string: the expanded source of the last successful load
	Source() string

	// ShaderType returns the stage the shader is written for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Files returns the absolute paths the source was assembled from, root file first.
	//
	// Returns:
	//   - []string: the files read by the last successful load
	Files() []string

	// DependsOn reports whether path is the root file or one of its includes.
	//
	// Parameters:
	//   - path: a file path, made absolute before comparison
	//
	// Returns:
	//   - bool: true if a change to path affects this shader
	DependsOn(path string) bool

	// Reload reads and pre-processes the files again. On failure the previous source is
	// kept.
	//
	// Returns:
	//   - error: an error if the source could not be read or expanded
	Reload() error

	// ProgramSource returns the source in the form a ProgramContainer compiles.
	//
	// Returns:
	//   - program.Source: the named, staged source
	ProgramSource() program.Source
}

var _ Shader = &shader{}

// NewShader loads and pre-processes a GLSL shader from sourcePath.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the source is written for
//   - sourcePath: the file path to read GLSL source from
//   - options: pre-processor options such as include directories and defines
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
func NewShader(key string, shaderType ShaderType, sourcePath string, options ...PreProcessorOption) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to resolve source path %q: %v", sourcePath, err))
	}
	s := &shader{
		key:        key,
		path:       abs,
		shaderType: shaderType,
		pp:         NewPreProcessor(options...),
	}
	if err := s.Reload(); err != nil {
		panic(fmt.Sprintf("shader: failed to load %s: %v", key, err))
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Files() []string {
	return s.files
}

func (s *shader) DependsOn(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return slices.Contains(s.files, abs)
}

func (s *shader) Reload() error {
	source, err := s.pp.Process(s.path)
	if err != nil {
		return err
	}
	s.source = source
	s.files = slices.Clone(s.pp.Files())
	return nil
}

func (s *shader) ProgramSource() program.Source {
	return program.Source{
		Name:  s.path,
		Stage: s.shaderType.Stage(),
		Code:  s.source,
	}
}
