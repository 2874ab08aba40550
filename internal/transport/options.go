package transport

import (
	"crypto/tls"
	"net/http"

	"github.com/rs/zerolog"
)

type Option func(*HTTPTransport)

// WithHTTPClient sets the client used for network calls.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate validation.
func WithInsecureSkipVerify() Option {
	return func(t *HTTPTransport) {
		t.client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}
}

// WithHandler serves calls in-process from h instead of the network.
func WithHandler(h http.Handler) Option {
	return func(t *HTTPTransport) {
		t.handler = h
	}
}

// WithInterceptors appends to the interception chain.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(t *HTTPTransport) {
		t.interceptors = append(t.interceptors, interceptors...)
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = l
	}
}
