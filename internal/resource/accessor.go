// Package resource implements the per-resource accessor. An accessor bundles the
// operations enabled for one registered route. Each operation builds a fresh request,
// sends it through the transport on its own goroutine and reports the outcome through
// a Future.
package resource

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/tansive/restdb/internal/common/apperrors"
	"github.com/tansive/restdb/internal/request"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/transport"
)

// Standard operation names, as used in a route's except list.
const (
	OpGet     = "get"
	OpGetByID = "getById"
	OpUpdate  = "update"
	OpCreate  = "create"
	OpDelete  = "delete"
)

// StandardOperations lists the operations every accessor starts with.
var StandardOperations = []string{OpGet, OpGetByID, OpUpdate, OpCreate, OpDelete}

// Call carries the arguments of one operation invocation.
type Call struct {
	ID   string
	Body any
}

// Operation is one named action on a resource.
type Operation func(ctx context.Context, call Call) *Future

// Accessor is safe for concurrent use. Overlapping calls share no request state.
type Accessor struct {
	name      string
	route     settings.RouteConfig
	builder   *request.Builder
	transport transport.Transport

	mu  sync.RWMutex
	ops map[string]Operation
}

// New builds the accessor for route. Operations named in route.Except are left out of
// the operation set before the accessor is returned.
func New(route settings.RouteConfig, builder *request.Builder, t transport.Transport) *Accessor {
	a := &Accessor{
		name:      route.Name,
		route:     route.Clone(),
		builder:   builder,
		transport: t,
	}
	a.ops = map[string]Operation{
		OpGet:     a.send(http.MethodGet, false, false),
		OpGetByID: a.send(http.MethodGet, true, false),
		OpUpdate:  a.send(http.MethodPut, true, true),
		OpCreate:  a.send(http.MethodPost, false, true),
		OpDelete:  a.send(http.MethodDelete, true, false),
	}
	for _, op := range route.Except {
		delete(a.ops, op)
	}
	return a
}

// NewUnresolved builds an accessor for a name with no registration. It exposes the
// standard operations, each of which fails with err.
func NewUnresolved(name string, err error) *Accessor {
	a := &Accessor{
		name:  name,
		route: settings.RouteConfig{Name: name},
		ops:   map[string]Operation{},
	}
	fail := func(context.Context, Call) *Future {
		return Rejected(err)
	}
	for _, op := range StandardOperations {
		a.ops[op] = fail
	}
	return a
}

func (a *Accessor) Name() string {
	return a.name
}

// Route returns a copy of the route the accessor was built from.
func (a *Accessor) Route() settings.RouteConfig {
	return a.route.Clone()
}

// Has reports whether op is in the operation set.
func (a *Accessor) Has(op string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.ops[op]
	return ok
}

// Operations returns the enabled operation names in sorted order.
func (a *Accessor) Operations() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.ops))
	for name := range a.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Attach adds or replaces the operation named op. Callers go through the registry's
// override mechanism rather than calling this directly.
func (a *Accessor) Attach(op string, fn Operation) {
	if op == "" || fn == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ops[op] = fn
}

// Invoke runs the operation named op. A name outside the operation set yields a future
// rejected with ErrOperationDisabled.
func (a *Accessor) Invoke(ctx context.Context, op string, call Call) *Future {
	a.mu.RLock()
	fn, ok := a.ops[op]
	a.mu.RUnlock()
	if !ok {
		return Rejected(apperrors.ErrOperationDisabled.Msg(fmt.Sprintf("operation %s is not enabled on %s", op, a.name)))
	}
	return fn(ctx, call)
}

// Get fetches the collection.
func (a *Accessor) Get(ctx context.Context) *Future {
	return a.Invoke(ctx, OpGet, Call{})
}

// GetByID fetches one entity.
func (a *Accessor) GetByID(ctx context.Context, id string) *Future {
	return a.Invoke(ctx, OpGetByID, Call{ID: id})
}

// Update replaces one entity with body.
func (a *Accessor) Update(ctx context.Context, id string, body any) *Future {
	return a.Invoke(ctx, OpUpdate, Call{ID: id, Body: body})
}

// Create posts body to the collection.
func (a *Accessor) Create(ctx context.Context, body any) *Future {
	return a.Invoke(ctx, OpCreate, Call{Body: body})
}

// Delete removes one entity.
func (a *Accessor) Delete(ctx context.Context, id string) *Future {
	return a.Invoke(ctx, OpDelete, Call{ID: id})
}

func (a *Accessor) send(method string, withID, withBody bool) Operation {
	return func(ctx context.Context, call Call) *Future {
		d := a.builder.Build(method, a.route)
		if withID {
			d.AppendID(call.ID)
		}
		if withBody {
			d.Body = call.Body
		}

		f := NewFuture()
		go func() {
			rsp, err := a.transport.Call(ctx, d)
			if err != nil {
				f.Reject(err)
				return
			}
			f.Resolve(rsp.Body)
		}()
		return f
	}
}
