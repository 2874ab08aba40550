// Package request turns a route registration into a concrete request descriptor: method,
// URL and headers. Building is a pure function of the settings snapshot and the route.
package request

import (
	"strings"

	"github.com/tansive/restdb/internal/settings"
)

const (
	HeaderContentType = "Content-Type"
	pathSeparator     = "/"
)

// Descriptor is built fresh for every call and never shared between calls.
type Descriptor struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// AppendID adds an entity segment to the collection URL.
func (d *Descriptor) AppendID(id string) {
	d.URL += pathSeparator + id
}

// Builder builds descriptors against a fixed settings snapshot.
type Builder struct {
	defaults settings.Values
}

func NewBuilder(defaults settings.Values) *Builder {
	return &Builder{defaults: defaults}
}

// Build resolves the URL and headers for method against route.
//
// The route's base URL wins over the default when non-empty. A base that is empty or
// lacks a trailing slash is replaced by the root, so the request goes to "/"+route.URL.
func (b *Builder) Build(method string, route settings.RouteConfig) *Descriptor {
	base := b.defaults.BaseURL
	if route.BaseURL != "" {
		base = route.BaseURL
	}
	if base == "" || !strings.HasSuffix(base, pathSeparator) {
		// root fallback is "/"+url, not the protocol-relative "//"+url
		base = pathSeparator
	}

	contentType := b.defaults.ContentType
	if route.ContentType != "" {
		contentType = route.ContentType
	}

	headers := map[string]string{}
	// an empty content type sends no header rather than an empty one
	if contentType != "" {
		headers[HeaderContentType] = contentType
	}

	return &Descriptor{
		Method:  strings.ToUpper(method),
		URL:     base + route.URL,
		Headers: headers,
	}
}
