// pre_processor.go implements the GLSL source pre-processor. It expands
// #include "file" directives, injects #define lines configured on the pre-processor,
// and records every file read so the hot-reload watcher knows which programs a
// changed file affects.
//
// Included files are resolved relative to the including file first, then against
// the configured include directories. Each file is expanded at most once per Process
// call; a file that includes itself through any chain is an error.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	includeDirective = "#include"
	versionDirective = "#version"
)

type preProcessor struct {
	includeDirs []string
	defines     map[string]string
	readFile    func(path string) ([]byte, error)

	// files accumulates the absolute paths read during a Process call, in read order.
	files []string
}

// PreProcessor expands GLSL sources before they are handed to a ProgramContainer.
type PreProcessor interface {
	// Process reads the file at path and expands it.
	//
	// The #version line, if present, stays the first line of the output and the
	// configured defines follow it, so a define is visible to every included file.
	//
	// Parameters:
	//   - path: the root source file
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if a file cannot be read, an include is malformed or cyclic
	Process(path string) (string, error)

	// Files returns the absolute path of every file read by the most recent Process
	// call, the root file first.
	//
	// Returns:
	//   - []string: the files, nil before the first call
	Files() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor.
//
// Parameters:
//   - options: functional options to configure include directories and defines
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		defines:  make(map[string]string),
		readFile: os.ReadFile,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *preProcessor) Files() []string {
	return p.files
}

func (p *preProcessor) Process(path string) (string, error) {
	p.files = p.files[:0]

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("shader: resolve %q: %w", path, err)
	}

	var out []string
	if err := p.expand(abs, nil, map[string]bool{}, &out); err != nil {
		return "", err
	}
	return strings.Join(p.withDefines(out), "\n"), nil
}

// expand appends the lines of file to out, recursing into includes. stack holds the
// chain of files currently being expanded; done holds every file already expanded.
func (p *preProcessor) expand(file string, stack []string, done map[string]bool, out *[]string) error {
	for _, s := range stack {
		if s == file {
			return fmt.Errorf("shader: include cycle %s", strings.Join(append(stack, file), " -> "))
		}
	}
	if done[file] {
		return nil
	}
	done[file] = true

	data, err := p.readFile(file)
	if err != nil {
		return fmt.Errorf("shader: read %q: %w", file, err)
	}
	p.files = append(p.files, file)
	stack = append(stack, file)

	inComment := false
	for i, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		startsInComment := inComment
		inComment = blockCommentState(line, inComment)
		if startsInComment {
			*out = append(*out, line)
			continue
		}

		name, ok, err := parseInclude(line)
		if err != nil {
			return fmt.Errorf("shader: %s:%d: %w", file, i+1, err)
		}
		if !ok {
			// only the root file may carry #version
			if len(stack) > 1 && strings.HasPrefix(strings.TrimSpace(line), versionDirective) {
				continue
			}
			*out = append(*out, line)
			continue
		}

		resolved, err := p.resolve(name, filepath.Dir(file))
		if err != nil {
			return fmt.Errorf("shader: %s:%d: %w", file, i+1, err)
		}
		if err := p.expand(resolved, stack, done, out); err != nil {
			return err
		}
	}
	return nil
}

// resolve finds an included file next to the including file or in an include directory.
func (p *preProcessor) resolve(name, dir string) (string, error) {
	candidates := append([]string{dir}, p.includeDirs...)
	for _, d := range candidates {
		candidate := filepath.Join(d, name)
		if filepath.IsAbs(name) {
			candidate = name
		}
		if _, err := p.readFile(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("include %q not found", name)
}

// withDefines places the configured defines directly after the #version line.
func (p *preProcessor) withDefines(lines []string) []string {
	if len(p.defines) == 0 {
		return lines
	}
	names := make([]string, 0, len(p.defines))
	for name := range p.defines {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]string, 0, len(names))
	for _, name := range names {
		defs = append(defs, strings.TrimSpace(fmt.Sprintf("#define %s %s", name, p.defines[name])))
	}

	at := 0
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), versionDirective) {
			at = i + 1
			break
		}
	}
	out := make([]string, 0, len(lines)+len(defs))
	out = append(out, lines[:at]...)
	out = append(out, defs...)
	return append(out, lines[at:]...)
}

// parseInclude recognizes `#include "name"` or `#include <name>`. Anything after the
// closing delimiter must be a line comment.
func parseInclude(line string) (string, bool, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), includeDirective)
	if !ok {
		return "", false, nil
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false, fmt.Errorf("#include without a file name")
	}

	var closing byte
	switch rest[0] {
	case '"':
		closing = '"'
	case '<':
		closing = '>'
	default:
		return "", false, fmt.Errorf("malformed #include %q", rest)
	}
	end := strings.IndexByte(rest[1:], closing)
	if end < 0 {
		return "", false, fmt.Errorf("unterminated #include %q", rest)
	}
	name := rest[1 : end+1]
	tail := strings.TrimSpace(rest[end+2:])
	if name == "" || (tail != "" && !strings.HasPrefix(tail, "//")) {
		return "", false, fmt.Errorf("malformed #include %q", rest)
	}
	return name, true, nil
}

// blockCommentState reports whether a block comment is still open at the end of line,
// given whether one was open at its start. Line comments end the scan.
func blockCommentState(line string, inside bool) bool {
	for i := 0; i+1 < len(line); i++ {
		switch {
		case inside && line[i] == '*' && line[i+1] == '/':
			inside = false
			i++
		case !inside && line[i] == '/' && line[i+1] == '*':
			inside = true
			i++
		case !inside && line[i] == '/' && line[i+1] == '/':
			return false
		}
	}
	return inside
}
