// Package tokenpipe attaches the stored authentication token to every outgoing request
// and persists any refreshed token found in a response. Both steps are
// interceptors for the transport package, and the same logic is offered as an
// http.RoundTripper for plain net/http clients.
//
// The token is read from and written to the store under the configured storage key.
// The same key names the response header that carries a refreshed token, and the
// configured token header name is the request header the token is sent in.
//
// A missing storage key or a missing store never fails a call: the pipeline logs a
// warning and proceeds with no token.
package tokenpipe

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/restdb/internal/common/logtrace"
	"github.com/tansive/restdb/internal/request"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/tokenstore"
	"github.com/tansive/restdb/internal/transport"
)

type Pipeline struct {
	settings *settings.Settings
	store    tokenstore.Store
	logger   zerolog.Logger
}

var _ transport.Interceptor = (*Pipeline)(nil)

type Option func(*Pipeline)

// WithLogger sets the logger that receives configuration warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a pipeline. store may be nil, in which case no token is ever sent or saved.
func New(s *settings.Settings, store tokenstore.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		settings: s,
		store:    store,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AttachToken sets the token header from the stored token. When there is no stored
// token the header is removed, so the request carries no token at all.
func (p *Pipeline) AttachToken(ctx context.Context, headers map[string]string) {
	name, value, ok := p.token(ctx)
	if ok {
		headers[name] = value
	} else {
		delete(headers, name)
	}
}

// CaptureToken saves the value of the storage-key header, if any, to the store.
func (p *Pipeline) CaptureToken(ctx context.Context, get func(string) string) {
	key := p.settings.StorageKey()
	if key == "" {
		return
	}
	value := get(key)
	if value == "" {
		return
	}
	if p.store == nil {
		p.warn(ctx).Msg("token storage is not available, refreshed token dropped")
		return
	}
	if err := p.store.Set(ctx, key, value); err != nil {
		p.warn(ctx).Err(err).Msg("unable to save refreshed token")
	}
}

// InterceptRequest implements transport.Interceptor.
func (p *Pipeline) InterceptRequest(ctx context.Context, d *request.Descriptor) (*request.Descriptor, error) {
	if d.Headers == nil {
		d.Headers = map[string]string{}
	}
	p.AttachToken(ctx, d.Headers)
	return d, nil
}

// InterceptResponse implements transport.Interceptor. The response is returned as is.
func (p *Pipeline) InterceptResponse(ctx context.Context, r *transport.Response) (*transport.Response, error) {
	p.CaptureToken(ctx, r.Headers().Get)
	return r, nil
}

func (p *Pipeline) token(ctx context.Context) (header, value string, ok bool) {
	v := p.settings.Snapshot()
	header = v.TokenHeaderName
	if v.StorageKey == "" {
		p.warn(ctx).Msg("token storage key is not set")
	}
	if p.store == nil {
		p.warn(ctx).Msg("token storage is not available")
		return header, "", false
	}
	value, ok, err := p.store.Get(ctx, v.StorageKey)
	if err != nil {
		p.warn(ctx).Err(err).Msg("unable to read stored token")
		return header, "", false
	}
	return header, value, ok
}

func (p *Pipeline) warn(ctx context.Context) *zerolog.Event {
	e := p.logger.Warn()
	if id := logtrace.RequestIdFromContext(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	return e
}
