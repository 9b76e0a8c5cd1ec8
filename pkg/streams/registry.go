package streams

import (
	"github.com/Sternrassler/healthie-source/pkg/catalog"
	"github.com/Sternrassler/healthie-source/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Registry holds the streams bound to one Fetcher.
type Registry struct {
	streams []*Stream
	byName  map[string]*Stream
}

type registryOptions struct {
	definitions []Definition
	logger      zerolog.Logger
}

// Option configures a Registry.
type Option func(*registryOptions)

// WithDefinitions replaces the registered definitions.
func WithDefinitions(defs ...Definition) Option {
	return func(o *registryOptions) {
		o.definitions = defs
	}
}

// WithLogger sets the logger streams log through.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// NewRegistry binds every definition to fetcher.
func NewRegistry(fetcher Fetcher, opts ...Option) *Registry {
	o := registryOptions{
		definitions: Definitions,
		logger:      log.With().Str("component", "streams").Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		streams: make([]*Stream, 0, len(o.definitions)),
		byName:  make(map[string]*Stream, len(o.definitions)),
	}
	for _, def := range o.definitions {
		s := &Stream{def: def, fetcher: fetcher, logger: o.logger}
		r.streams = append(r.streams, s)
		r.byName[def.Name] = s
	}
	return r
}

// ListStreams builds one client from cfg and binds every stream to it.
func ListStreams(cfg client.Config) ([]*Stream, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewRegistry(c).List(), nil
}

// List returns all streams in registration order.
func (r *Registry) List() []*Stream {
	out := make([]*Stream, len(r.streams))
	copy(out, r.streams)
	return out
}

// Names returns all stream names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.streams))
	for i, s := range r.streams {
		names[i] = s.Name()
	}
	return names
}

// Get returns the named stream, or an *catalog.UnknownStreamError.
func (r *Registry) Get(name string) (*Stream, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, &catalog.UnknownStreamError{Name: name}
	}
	return s, nil
}

// Select returns the named streams in the order given. An empty selection returns
// every stream. Duplicate names are returned once.
func (r *Registry) Select(names []string) ([]*Stream, error) {
	if len(names) == 0 {
		return r.List(), nil
	}

	seen := make(map[string]bool, len(names))
	out := make([]*Stream, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		out = append(out, s)
	}
	return out, nil
}
