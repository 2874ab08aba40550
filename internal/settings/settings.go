// Package settings holds the process-wide restdb configuration: base URL, default
// content type, token storage key, token header name and type, and the named route
// registrations. A Settings value is created once at startup, populated through its
// setters (or LoadFile) and passed explicitly to the registry, builder and token pipeline.
package settings

import (
	"maps"
	"slices"
	"sync"
)

const (
	DefaultContentType     = "application/json; charset=utf-8;"
	DefaultStorageKey      = "accessToken"
	DefaultTokenHeaderName = "Authorization"
	DefaultTokenType       = "Bearer"
)

// Token attribute names accepted by SetTokenAttribute.
const (
	AttrTokenType = "tokenType"
	AttrTokenName = "tokenName"
)

// RouteConfig describes one named remote resource.
type RouteConfig struct {
	Name        string   `mapstructure:"name" validate:"required"`
	BaseURL     string   `mapstructure:"base_url"`
	URL         string   `mapstructure:"url"`
	ContentType string   `mapstructure:"content_type"`
	Except      []string `mapstructure:"except" validate:"dive,required"`
}

// Clone returns a deep copy of the route.
func (r RouteConfig) Clone() RouteConfig {
	if r.Except != nil {
		r.Except = append([]string(nil), r.Except...)
	}
	return r
}

// Values is an immutable copy of the scalar settings.
type Values struct {
	BaseURL         string
	ContentType     string
	StorageKey      string
	TokenHeaderName string
	TokenType       string
}

// Settings is safe for concurrent use.
type Settings struct {
	mu     sync.RWMutex
	values Values
	routes map[string]RouteConfig
}

// New returns settings populated with the defaults.
func New() *Settings {
	return &Settings{
		values: Values{
			ContentType:     DefaultContentType,
			StorageKey:      DefaultStorageKey,
			TokenHeaderName: DefaultTokenHeaderName,
			TokenType:       DefaultTokenType,
		},
		routes: map[string]RouteConfig{},
	}
}

// Register inserts or overwrites the route registered under name and returns a copy of
// the full route map. An empty name leaves the map unchanged.
func (s *Settings) Register(name string, cfg RouteConfig) map[string]RouteConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		if cfg.Name == "" {
			cfg.Name = name
		}
		s.routes[name] = cfg.Clone()
	}
	return s.routesLocked()
}

// Route returns the route registered under name.
func (s *Settings) Route(name string) (RouteConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[name]
	if !ok {
		return RouteConfig{}, false
	}
	return r.Clone(), true
}

// Routes returns a copy of the route map.
func (s *Settings) Routes() map[string]RouteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routesLocked()
}

func (s *Settings) routesLocked() map[string]RouteConfig {
	out := make(map[string]RouteConfig, len(s.routes))
	for k, v := range s.routes {
		out[k] = v.Clone()
	}
	return out
}

func (s *Settings) SetBaseURL(url string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.BaseURL = url
	return url
}

func (s *Settings) SetContentType(contentType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ContentType = contentType
	return contentType
}

// SetStorageName sets the key under which the token is persisted. The same key is
// looked up in response headers to capture refreshed tokens.
func (s *Settings) SetStorageName(value string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.StorageKey = value
	return value
}

// SetTokenAttribute sets the token type when attr is AttrTokenType and the token header
// name for any other attr. It is a no-op returning "" if either argument is empty.
func (s *Settings) SetTokenAttribute(attr, value string) string {
	if attr == "" || value == "" {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch attr {
	case AttrTokenType:
		s.values.TokenType = value
	default:
		s.values.TokenHeaderName = value
	}
	return value
}

// Snapshot returns the current scalar settings.
func (s *Settings) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

func (s *Settings) BaseURL() string         { return s.Snapshot().BaseURL }
func (s *Settings) ContentType() string     { return s.Snapshot().ContentType }
func (s *Settings) StorageKey() string      { return s.Snapshot().StorageKey }
func (s *Settings) TokenHeaderName() string { return s.Snapshot().TokenHeaderName }
func (s *Settings) TokenType() string       { return s.Snapshot().TokenType }

// Names returns the registered route names in sorted order.
func (s *Settings) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.routes))
}
