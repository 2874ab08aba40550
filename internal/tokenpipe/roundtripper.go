package tokenpipe

import (
	"net/http"
)

// roundTripper attaches the stored token before delegating to inner and captures a
// refreshed token from the response.
type roundTripper struct {
	inner    http.RoundTripper
	pipeline *Pipeline
}

// WrapRoundTripper returns inner wrapped with the pipeline. A nil inner uses
// http.DefaultTransport.
func (p *Pipeline) WrapRoundTripper(inner http.RoundTripper) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &roundTripper{inner: inner, pipeline: p}
}

func (w *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	// clone req to avoid mutating caller headers
	clone := req.Clone(ctx)
	name, value, ok := w.pipeline.token(ctx)
	if ok {
		clone.Header.Set(name, value)
	} else {
		clone.Header.Del(name)
	}

	resp, err := w.inner.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	w.pipeline.CaptureToken(ctx, resp.Header.Get)
	return resp, nil
}
