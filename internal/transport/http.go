package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/restdb/internal/common/logtrace"
	"github.com/tansive/restdb/internal/request"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPTransport sends descriptors over net/http, or to an in-process handler when one
// is configured. It performs no retries and enforces no timeout of its own.
type HTTPTransport struct {
	client       *http.Client
	handler      http.Handler
	interceptors []Interceptor
	logger       zerolog.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// New creates a transport using http.Client defaults unless overridden by options.
func New(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Use appends interceptors to the chain. It must not be called once calls are in flight.
func (t *HTTPTransport) Use(interceptors ...Interceptor) {
	t.interceptors = append(t.interceptors, interceptors...)
}

// Call runs the request interceptors, dispatches the request, runs the response
// interceptors and converts a non-2xx status into an *HTTPError. Errors from the
// network or from an interceptor are returned unmodified.
func (t *HTTPTransport) Call(ctx context.Context, d *request.Descriptor) (*Response, error) {
	ctx, requestID := logtrace.WithRequestID(ctx)
	logger := t.logger.With().Str("request_id", requestID).Logger()
	ctx = logger.WithContext(ctx)

	if d.Headers == nil {
		d.Headers = map[string]string{}
	}
	for _, i := range t.interceptors {
		next, err := i.InterceptRequest(ctx, d)
		if err != nil {
			return nil, err
		}
		if next != nil {
			d = next
		}
	}

	body, err := encodeBody(d.Body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(logtrace.RequestIDHeader, requestID)

	start := time.Now()
	rsp, err := t.dispatch(req)
	if err != nil {
		logger.Debug().Err(err).Str("method", d.Method).Str("url", d.URL).Msg("call failed")
		return nil, err
	}
	rsp.Request = d
	logger.Debug().
		Str("method", d.Method).
		Str("url", d.URL).
		Int("status", rsp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("call completed")

	for i := len(t.interceptors) - 1; i >= 0; i-- {
		next, err := t.interceptors[i].InterceptResponse(ctx, rsp)
		if err != nil {
			return nil, err
		}
		if next != nil {
			rsp = next
		}
	}

	if !rsp.OK() {
		return nil, newHTTPError(rsp)
	}
	return rsp, nil
}

func (t *HTTPTransport) dispatch(req *http.Request) (*Response, error) {
	if t.handler != nil {
		rr := httptest.NewRecorder()
		t.handler.ServeHTTP(rr, req)
		return NewResponse(rr.Code, rr.Header(), rr.Body.Bytes()), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return NewResponse(resp.StatusCode, resp.Header, body), nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// newHTTPError prefers an "error" or "message" field in a JSON payload, then the raw
// payload, then the status text.
func newHTTPError(rsp *Response) *HTTPError {
	msg := ""
	if gjson.ValidBytes(rsp.Body) {
		for _, field := range []string{"error", "message"} {
			if r := gjson.GetBytes(rsp.Body, field); r.Type == gjson.String && r.String() != "" {
				msg = r.String()
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(rsp.Body))
	}
	if msg == "" {
		msg = http.StatusText(rsp.StatusCode)
	}
	return &HTTPError{
		StatusCode: rsp.StatusCode,
		Message:    msg,
		Body:       rsp.Body,
		Header:     rsp.Headers(),
	}
}
