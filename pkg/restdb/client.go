// Package restdb provides a client-side access layer for REST resources. Routes are
// registered once on the client's settings; Resource then hands out a cached accessor
// per route whose get, getById, update, create and delete operations run asynchronously
// and report through a Future. A bearer token is attached to every outgoing request
// and refreshed from every response.
package restdb

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/restdb/internal/common/apperrors"
	"github.com/tansive/restdb/internal/registry"
	"github.com/tansive/restdb/internal/resource"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/tokenpipe"
	"github.com/tansive/restdb/internal/tokenstore"
	"github.com/tansive/restdb/internal/transport"
)

// Client wires settings, the token store, the transport and the accessor registry.
// It is safe for concurrent use.
type Client struct {
	settings  *settings.Settings
	store     tokenstore.Store
	pipeline  *tokenpipe.Pipeline
	transport *transport.HTTPTransport
	registry  *registry.Registry
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	settings      *settings.Settings
	store         tokenstore.Store
	storeSet      bool
	logger        zerolog.Logger
	transportOpts []transport.Option
}

// WithSettings uses s instead of fresh default settings. Changes made to s later only
// reach names that have not been resolved yet.
func WithSettings(s *settings.Settings) Option {
	return func(c *clientConfig) {
		c.settings = s
	}
}

// WithStore sets the token store. The default is an in-memory store.
func WithStore(s Store) Option {
	return func(c *clientConfig) {
		c.store = s
		c.storeSet = true
	}
}

// WithoutStore runs the client with no token store. Tokens are neither attached nor
// captured and every call logs a warning.
func WithoutStore() Option {
	return func(c *clientConfig) {
		c.store = nil
		c.storeSet = true
	}
}

// WithHTTPClient sets the http.Client used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.transportOpts = append(c.transportOpts, transport.WithHTTPClient(hc))
	}
}

// WithHandler serves every request in-process through h instead of the network.
func WithHandler(h http.Handler) Option {
	return func(c *clientConfig) {
		c.transportOpts = append(c.transportOpts, transport.WithHandler(h))
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(c *clientConfig) {
		c.transportOpts = append(c.transportOpts, transport.WithInsecureSkipVerify())
	}
}

// WithLogger sets the logger for warnings and request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// New creates a Client. With no options it uses default settings, an in-memory token
// store and http.DefaultClient.
func New(opts ...Option) *Client {
	cfg := clientConfig{logger: log.Logger}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.settings == nil {
		cfg.settings = settings.New()
	}
	if !cfg.storeSet {
		cfg.store = tokenstore.NewMemoryStore()
	}

	pipeline := tokenpipe.New(cfg.settings, cfg.store, tokenpipe.WithLogger(cfg.logger))
	t := transport.New(append(cfg.transportOpts,
		transport.WithLogger(cfg.logger),
		transport.WithInterceptors(pipeline),
	)...)

	return &Client{
		settings:  cfg.settings,
		store:     cfg.store,
		pipeline:  pipeline,
		transport: t,
		registry:  registry.New(cfg.settings, t, registry.WithLogger(cfg.logger)),
	}
}

// Settings returns the settings the client resolves routes against.
func (c *Client) Settings() *settings.Settings {
	return c.settings
}

// Store returns the token store, or nil when the client runs without one.
func (c *Client) Store() Store {
	return c.store
}

// Register adds or replaces the route registered under name.
func (c *Client) Register(name string, cfg RouteConfig) {
	c.settings.Register(name, cfg)
}

// Resource returns the accessor for name. It returns nil for an empty name. A name
// with no registration yields an accessor whose operations fail with an unknown
// resource error.
func (c *Client) Resource(name string) *Accessor {
	return c.registry.Get(name)
}

// Override attaches fn as operation op on the accessor for name and returns it.
func (c *Client) Override(name, op string, fn Operation) *Accessor {
	return c.registry.Override(name, op, fn)
}

// Resolve resolves a Lookup or Override request.
func (c *Client) Resolve(req Request) *Accessor {
	return c.registry.Resolve(req)
}

// RoundTripper wraps inner so that plain net/http requests carry the stored token
// and refresh it from responses. A nil inner uses http.DefaultTransport.
func (c *Client) RoundTripper(inner http.RoundTripper) http.RoundTripper {
	return c.pipeline.WrapRoundTripper(inner)
}

type (
	RouteConfig = settings.RouteConfig
	Accessor    = resource.Accessor
	Future      = resource.Future
	Operation   = resource.Operation
	Call        = resource.Call
	HTTPError   = transport.HTTPError
	Store       = tokenstore.Store
	Request     = registry.Request
	Lookup      = registry.Lookup
	Override    = registry.Override
)

// Errors an operation can fail with besides transport and HTTP errors.
var (
	ErrUnknownResource   = apperrors.ErrUnknownResource
	ErrOperationDisabled = apperrors.ErrOperationDisabled
	ErrNoResourceName    = apperrors.ErrNoResourceName
)

// Future constructors for overriding operations.
var (
	NewFuture = resource.NewFuture
	Resolved  = resource.Resolved
	Rejected  = resource.Rejected
)

const (
	OpGet     = resource.OpGet
	OpGetByID = resource.OpGetByID
	OpUpdate  = resource.OpUpdate
	OpCreate  = resource.OpCreate
	OpDelete  = resource.OpDelete
)
