package shader

// PreProcessorOption is a functional option for configuring a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithIncludeDir adds a directory searched for #include files that are not found next
// to the including file. Directories are searched in the order they were added.
//
// Parameters:
//   - dir: the directory to search
//
// Returns:
//   - PreProcessorOption: functional option to add the include directory
func WithIncludeDir(dir string) PreProcessorOption {
	return func(p *preProcessor) {
		p.includeDirs = append(p.includeDirs, dir)
	}
}

// WithDefine injects `#define name value` after the #version line. An empty value
// defines the name without a value.
//
// Parameters:
//   - name: the macro name
//   - value: the macro body
//
// Returns:
//   - PreProcessorOption: functional option to add the define
func WithDefine(name, value string) PreProcessorOption {
	return func(p *preProcessor) {
		p.defines[name] = value
	}
}
