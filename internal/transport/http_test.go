package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/restdb/internal/common/logtrace"
	"github.com/tansive/restdb/internal/request"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo-Request-ID", r.Header.Get(logtrace.RequestIDHeader))
		w.Write([]byte(`[{"id":"1"}]`))
	})
	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "42" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"user not found"}`))
			return
		}
		w.Write([]byte(`{"id":"42"}`))
	})
	r.Delete("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})
	r.Put("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	return r
}

func TestHTTPTransportCall(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()
	tr := New()

	t.Run("success", func(t *testing.T) {
		rsp, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: srv.URL + "/users"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rsp.StatusCode)
		assert.JSONEq(t, `[{"id":"1"}]`, string(rsp.Body))
		assert.Equal(t, "application/json", rsp.Headers().Get("content-type"))
		assert.NotEmpty(t, rsp.Headers().Get("X-Echo-Request-ID"))
		assert.Equal(t, srv.URL+"/users", rsp.Request.URL)
	})

	t.Run("json body", func(t *testing.T) {
		d := &request.Descriptor{
			Method:  http.MethodPost,
			URL:     srv.URL + "/users",
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    map[string]any{"name": "ada"},
		}
		rsp, err := tr.Call(context.Background(), d)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rsp.StatusCode)
		assert.JSONEq(t, `{"name":"ada"}`, string(rsp.Body))
		assert.Equal(t, "application/json", rsp.Headers().Get("X-Content-Type"))
	})

	t.Run("raw body", func(t *testing.T) {
		d := &request.Descriptor{Method: http.MethodPost, URL: srv.URL + "/users", Body: []byte("plain")}
		rsp, err := tr.Call(context.Background(), d)
		require.NoError(t, err)
		assert.Equal(t, "plain", string(rsp.Body))
	})

	t.Run("error field", func(t *testing.T) {
		_, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: srv.URL + "/users/7"})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
		assert.Equal(t, "user not found", httpErr.Message)
		assert.JSONEq(t, `{"error":"user not found"}`, string(httpErr.Body))
	})

	t.Run("plain error body", func(t *testing.T) {
		_, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodDelete, URL: srv.URL + "/users/1"})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
		assert.Equal(t, "boom", httpErr.Error())
	})

	t.Run("empty error body", func(t *testing.T) {
		_, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodPut, URL: srv.URL + "/users/1"})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusText(http.StatusConflict), httpErr.Message)
	})

	t.Run("relative url fails at the network layer", func(t *testing.T) {
		_, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: "/users"})
		require.Error(t, err)
		var httpErr *HTTPError
		assert.False(t, errors.As(err, &httpErr))
	})
}

func TestHandlerTransport(t *testing.T) {
	tr := New(WithHandler(newTestRouter(t)))
	rsp, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: "/users/42"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(rsp.Body))

	_, err = tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: "/users/1"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

type recordingInterceptor struct {
	name   string
	events *[]string
	reqErr error
}

func (r *recordingInterceptor) InterceptRequest(ctx context.Context, d *request.Descriptor) (*request.Descriptor, error) {
	*r.events = append(*r.events, r.name+":request")
	d.Headers["X-"+r.name] = "seen"
	return d, r.reqErr
}

func (r *recordingInterceptor) InterceptResponse(ctx context.Context, rsp *Response) (*Response, error) {
	*r.events = append(*r.events, r.name+":response")
	return rsp, nil
}

func TestInterceptorChain(t *testing.T) {
	var seenHeaders http.Header
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusUnauthorized)
	})

	var events []string
	tr := New(WithHandler(handler), WithInterceptors(&recordingInterceptor{name: "a", events: &events}))
	tr.Use(&recordingInterceptor{name: "b", events: &events})

	_, err := tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: "/x"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []string{"a:request", "b:request", "b:response", "a:response"}, events)
	assert.Equal(t, "seen", seenHeaders.Get("X-a"))
	assert.Equal(t, "seen", seenHeaders.Get("X-b"))

	reqErr := errors.New("refused")
	events = nil
	tr = New(WithHandler(handler), WithInterceptors(&recordingInterceptor{name: "c", events: &events, reqErr: reqErr}))
	_, err = tr.Call(context.Background(), &request.Descriptor{Method: http.MethodGet, URL: "/x"})
	assert.Equal(t, reqErr, err)
	assert.Equal(t, []string{"c:request"}, events)
}

func TestEncodeBody(t *testing.T) {
	r, err := encodeBody(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = encodeBody("text")
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	assert.Equal(t, "text", string(b))

	r, err = encodeBody(struct {
		Name string `json:"name"`
	}{Name: "ada"})
	require.NoError(t, err)
	b, _ = io.ReadAll(r)
	assert.JSONEq(t, `{"name":"ada"}`, string(b))

	_, err = encodeBody(make(chan int))
	assert.Error(t, err)
}
