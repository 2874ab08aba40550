// Package registry resolves resource names to accessors. Accessors are built lazily
// on first request and cached for the lifetime of the registry.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/restdb/internal/common/apperrors"
	"github.com/tansive/restdb/internal/request"
	"github.com/tansive/restdb/internal/resource"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/transport"
)

// Request names the resource to resolve. It is either a Lookup or an Override.
type Request interface {
	resourceName() string
}

// Lookup resolves the accessor registered under Name.
type Lookup struct {
	Name string
}

func (l Lookup) resourceName() string { return l.Name }

// Override resolves the accessor registered under Name and attaches Fn as the
// operation called Operation. The override is skipped unless both are set.
type Override struct {
	Name      string
	Operation string
	Fn        resource.Operation
}

func (o Override) resourceName() string { return o.Name }

type Registry struct {
	settings  *settings.Settings
	transport transport.Transport
	logger    zerolog.Logger

	mu    sync.Mutex
	cache map[string]*resource.Accessor
}

type Option func(*Registry)

// WithLogger sets the logger used for resolution warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func New(s *settings.Settings, t transport.Transport, opts ...Option) *Registry {
	r := &Registry{
		settings:  s,
		transport: t,
		logger:    log.Logger,
		cache:     make(map[string]*resource.Accessor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the accessor for req, building and caching it on first use. A nil
// request or an empty name logs a warning and returns nil.
//
// Later changes to the settings do not reach an accessor that is already cached.
func (r *Registry) Resolve(req Request) *resource.Accessor {
	name, override := unpack(req)
	if name == "" {
		r.logger.Warn().Msg(apperrors.ErrNoResourceName.Error())
		return nil
	}

	r.mu.Lock()
	a, ok := r.cache[name]
	if !ok {
		a = r.build(name)
		r.cache[name] = a
	}
	r.mu.Unlock()

	if override != nil && override.Operation != "" && override.Fn != nil {
		a.Attach(override.Operation, override.Fn)
	}
	return a
}

// unpack accepts requests by value or by pointer. A nil pointer yields no name.
func unpack(req Request) (string, *Override) {
	switch r := req.(type) {
	case Lookup:
		return r.Name, nil
	case *Lookup:
		if r == nil {
			return "", nil
		}
		return r.Name, nil
	case Override:
		return r.Name, &r
	case *Override:
		if r == nil {
			return "", nil
		}
		return r.Name, r
	}
	return "", nil
}

// Get is shorthand for Resolve(Lookup{Name: name}).
func (r *Registry) Get(name string) *resource.Accessor {
	return r.Resolve(Lookup{Name: name})
}

// Override is shorthand for Resolve(Override{...}).
func (r *Registry) Override(name, op string, fn resource.Operation) *resource.Accessor {
	return r.Resolve(Override{Name: name, Operation: op, Fn: fn})
}

// Cached returns the names of the accessors built so far, sorted.
func (r *Registry) Cached() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.cache))
}

func (r *Registry) build(name string) *resource.Accessor {
	route, ok := r.settings.Route(name)
	if !ok {
		r.logger.Warn().Str("resource", name).Msg("resource is not registered")
		return resource.NewUnresolved(name, apperrors.ErrUnknownResource.Msg(fmt.Sprintf("resource %s is not registered", name)))
	}
	return resource.New(route, request.NewBuilder(r.settings.Snapshot()), r.transport)
}
