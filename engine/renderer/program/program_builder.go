package program

// ProgramBuilderOption is a functional option for configuring a ProgramContainer during construction.
type ProgramBuilderOption func(*programContainer)

// WithName sets the label used in diagnostics. Defaults to the first source's name.
//
// Parameters:
//   - name: the program label
//
// Returns:
//   - ProgramBuilderOption: functional option to set the name
func WithName(name string) ProgramBuilderOption {
	return func(p *programContainer) {
		p.name = name
	}
}

// WithBlockBinding binds the named uniform block to a buffer binding point after every
// successful link. Programs that do not declare the block ignore the option.
//
// Parameters:
//   - block: the uniform block name
//   - binding: the binding point
//
// Returns:
//   - ProgramBuilderOption: functional option to register the binding
func WithBlockBinding(block string, binding uint32) ProgramBuilderOption {
	return func(p *programContainer) {
		p.blockBindings[block] = binding
	}
}
