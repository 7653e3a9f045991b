// Package pipeline implements pipeline construction.
package pipeline

import (
	"firestige.xyz/vjtap/internal/link"
	"firestige.xyz/vjtap/internal/vj"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			BufferSize: 1024, // default
		},
	}
}

// WithSource sets the frame source.
func (b *Builder) WithSource(s Source) *Builder {
	b.config.Source = s
	return b
}

// WithDispatcher sets the link-layer dispatcher.
func (b *Builder) WithDispatcher(d *link.Dispatcher) *Builder {
	b.config.Dispatcher = d
	return b
}

// WithSession sets the decompression session.
func (b *Builder) WithSession(s *vj.Session) *Builder {
	b.config.Session = s
	return b
}

// WithSinks sets the sink chain.
func (b *Builder) WithSinks(sinks ...Sink) *Builder {
	b.config.Sinks = sinks
	return b
}

// WithFilter sets the packet filter applied before the sinks.
func (b *Builder) WithFilter(f Filter) *Builder {
	b.config.Filter = f
	return b
}

// WithBufferSize sets the raw packet channel buffer size.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.config.BufferSize = size
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	return New(b.config)
}
