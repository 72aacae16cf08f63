package asmcore

// AssembleOptions controls two-pass assembly. It follows the teacher's
// immutable-config-plus-clone pattern (config.go's RuntimeConfig):
// defaultOptions is never mutated, and every WithX method returns a new
// value.
type AssembleOptions struct {
	origin uint32
}

var defaultOptions = &AssembleOptions{origin: 0}

// NewAssembleOptions returns the default options: origin 0.
func NewAssembleOptions() *AssembleOptions {
	return defaultOptions.clone()
}

func (c *AssembleOptions) clone() *AssembleOptions {
	return &AssembleOptions{origin: c.origin}
}

// WithOrigin sets the address the first byte of output is placed at.
func (c *AssembleOptions) WithOrigin(origin uint32) *AssembleOptions {
	ret := c.clone()
	ret.origin = origin
	return ret
}
