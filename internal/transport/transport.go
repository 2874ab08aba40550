// Package transport issues the HTTP calls built by the request package. It runs an
// interception chain around every call so cross-cutting concerns such as token handling
// can rewrite outgoing requests and inspect incoming responses without the resource
// layer knowing about them.
package transport

import (
	"context"
	"net/http"

	"github.com/tansive/restdb/internal/request"
)

// Transport dispatches a descriptor and returns the server response.
// A non-2xx response is reported as an *HTTPError.
type Transport interface {
	Call(ctx context.Context, d *request.Descriptor) (*Response, error)
}

// Interceptor observes every call. InterceptRequest runs before dispatch, in
// registration order. InterceptResponse runs on every HTTP response, success or not,
// in reverse registration order.
type Interceptor interface {
	InterceptRequest(ctx context.Context, d *request.Descriptor) (*request.Descriptor, error)
	InterceptResponse(ctx context.Context, r *Response) (*Response, error)
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
	Request    *request.Descriptor
	header     http.Header
}

// NewResponse creates a response with the given status, headers and body.
func NewResponse(status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{StatusCode: status, Body: body, header: header}
}

// Headers returns the response headers. Lookups through Get are case-insensitive.
func (r *Response) Headers() http.Header {
	return r.header
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPError represents a non-success response. Body carries the payload exactly as the
// server sent it.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
	Header     http.Header
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return e.Message
}
