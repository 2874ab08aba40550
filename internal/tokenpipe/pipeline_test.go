package tokenpipe

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/restdb/internal/request"
	"github.com/tansive/restdb/internal/settings"
	"github.com/tansive/restdb/internal/tokenstore"
	"github.com/tansive/restdb/internal/transport"
)

type setCall struct{ key, value string }

type countingStore struct {
	mu     sync.Mutex
	inner  tokenstore.Store
	sets   []setCall
	getErr error
	setErr error
}

func newCountingStore() *countingStore {
	return &countingStore{inner: tokenstore.NewMemoryStore()}
}

func (c *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	return c.inner.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets = append(c.sets, setCall{key, value})
	c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	return c.inner.Set(ctx, key, value)
}

func (c *countingStore) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func warnings(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), `"level":"warn"`)
}

func newPipeline(s *settings.Settings, store tokenstore.Store) (*Pipeline, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(s, store, WithLogger(zerolog.New(&buf))), &buf
}

func TestAttachToken(t *testing.T) {
	ctx := context.Background()

	t.Run("stored token is sent under the header name", func(t *testing.T) {
		s := settings.New()
		store := newCountingStore()
		require.NoError(t, store.Set(ctx, settings.DefaultStorageKey, "tok123"))
		p, buf := newPipeline(s, store)

		d := &request.Descriptor{Method: http.MethodGet, URL: "/users", Headers: map[string]string{"Content-Type": "application/json"}}
		out, err := p.InterceptRequest(ctx, d)
		require.NoError(t, err)
		assert.Same(t, d, out)
		assert.Equal(t, "tok123", out.Headers[settings.DefaultTokenHeaderName])
		assert.Equal(t, "application/json", out.Headers["Content-Type"])
		assert.Equal(t, 0, warnings(buf))
	})

	t.Run("no stored token leaves the header absent", func(t *testing.T) {
		p, buf := newPipeline(settings.New(), newCountingStore())
		d := &request.Descriptor{Headers: map[string]string{settings.DefaultTokenHeaderName: "stale"}}
		out, err := p.InterceptRequest(ctx, d)
		require.NoError(t, err)
		_, present := out.Headers[settings.DefaultTokenHeaderName]
		assert.False(t, present)
		assert.Equal(t, 0, warnings(buf))
	})

	t.Run("missing store warns once per call", func(t *testing.T) {
		p, buf := newPipeline(settings.New(), nil)
		for i := 1; i <= 3; i++ {
			out, err := p.InterceptRequest(ctx, &request.Descriptor{})
			require.NoError(t, err)
			_, present := out.Headers[settings.DefaultTokenHeaderName]
			assert.False(t, present)
			assert.Equal(t, i, warnings(buf))
		}
	})

	t.Run("empty storage key warns and proceeds", func(t *testing.T) {
		s := settings.New()
		s.SetStorageName("")
		p, buf := newPipeline(s, newCountingStore())
		_, err := p.InterceptRequest(ctx, &request.Descriptor{})
		require.NoError(t, err)
		assert.Equal(t, 1, warnings(buf))
		assert.Contains(t, buf.String(), "token storage key is not set")
	})

	t.Run("store read failure warns and proceeds", func(t *testing.T) {
		store := newCountingStore()
		store.getErr = errors.New("disk gone")
		p, buf := newPipeline(settings.New(), store)
		out, err := p.InterceptRequest(ctx, &request.Descriptor{})
		require.NoError(t, err)
		assert.NotContains(t, out.Headers, settings.DefaultTokenHeaderName)
		assert.Equal(t, 1, warnings(buf))
	})

	t.Run("custom header name", func(t *testing.T) {
		s := settings.New()
		s.SetTokenAttribute(settings.AttrTokenName, "X-Auth-Token")
		store := newCountingStore()
		require.NoError(t, store.Set(ctx, settings.DefaultStorageKey, "abc"))
		p, _ := newPipeline(s, store)
		out, _ := p.InterceptRequest(ctx, &request.Descriptor{})
		assert.Equal(t, "abc", out.Headers["X-Auth-Token"])
	})
}

func TestCaptureToken(t *testing.T) {
	ctx := context.Background()

	t.Run("token in response is stored once", func(t *testing.T) {
		s := settings.New()
		s.SetStorageName("Authorization")
		store := newCountingStore()
		p, buf := newPipeline(s, store)

		rsp := transport.NewResponse(http.StatusOK, http.Header{"Authorization": []string{"tok123"}}, []byte(`{}`))
		out, err := p.InterceptResponse(ctx, rsp)
		require.NoError(t, err)
		assert.Same(t, rsp, out)
		assert.Equal(t, []setCall{{"Authorization", "tok123"}}, store.sets)
		assert.Equal(t, `{}`, string(out.Body))
		assert.Equal(t, 0, warnings(buf))
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		store := newCountingStore()
		p, _ := newPipeline(settings.New(), store)
		h := http.Header{}
		h.Set("accesstoken", "tok")
		_, err := p.InterceptResponse(ctx, transport.NewResponse(http.StatusOK, h, nil))
		require.NoError(t, err)
		assert.Equal(t, []setCall{{settings.DefaultStorageKey, "tok"}}, store.sets)
	})

	t.Run("absent or empty header is ignored", func(t *testing.T) {
		store := newCountingStore()
		p, buf := newPipeline(settings.New(), store)
		_, _ = p.InterceptResponse(ctx, transport.NewResponse(http.StatusOK, nil, nil))
		_, _ = p.InterceptResponse(ctx, transport.NewResponse(http.StatusOK, http.Header{"Accesstoken": []string{""}}, nil))
		assert.Empty(t, store.sets)
		assert.Equal(t, 0, warnings(buf))
	})

	t.Run("missing store warns and skips", func(t *testing.T) {
		p, buf := newPipeline(settings.New(), nil)
		rsp := transport.NewResponse(http.StatusOK, http.Header{"Accesstoken": []string{"tok"}}, nil)
		out, err := p.InterceptResponse(ctx, rsp)
		require.NoError(t, err)
		assert.Same(t, rsp, out)
		assert.Equal(t, 1, warnings(buf))
	})

	t.Run("write failure warns", func(t *testing.T) {
		store := newCountingStore()
		store.setErr = errors.New("read-only")
		p, buf := newPipeline(settings.New(), store)
		_, err := p.InterceptResponse(ctx, transport.NewResponse(http.StatusOK, http.Header{"Accesstoken": []string{"tok"}}, nil))
		require.NoError(t, err)
		assert.Equal(t, 1, warnings(buf))
	})
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := settings.New()
	store := newCountingStore()
	p, _ := newPipeline(s, store)

	refreshed := "eyJhbGciOi.J9 with spaces=and/slashes+"
	_, err := p.InterceptResponse(ctx, transport.NewResponse(http.StatusOK, http.Header{"Accesstoken": []string{refreshed}}, nil))
	require.NoError(t, err)

	out, err := p.InterceptRequest(ctx, &request.Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, refreshed, out.Headers[settings.DefaultTokenHeaderName])
}

func TestPipelineThroughTransport(t *testing.T) {
	var seen []string
	r := chi.NewRouter()
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("accessToken", "first")
		w.Write([]byte(`{}`))
	})
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("accessToken", "second")
		w.WriteHeader(http.StatusForbidden)
	})
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	})

	p, _ := newPipeline(settings.New(), newCountingStore())
	tr := transport.New(transport.WithHandler(r), transport.WithInterceptors(p))
	ctx := context.Background()

	_, err := tr.Call(ctx, &request.Descriptor{Method: http.MethodGet, URL: "/login"})
	require.NoError(t, err)
	_, err = tr.Call(ctx, &request.Descriptor{Method: http.MethodGet, URL: "/users"})
	require.Error(t, err)
	_, err = tr.Call(ctx, &request.Descriptor{Method: http.MethodGet, URL: "/me"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "first", "second"}, seen)
}

func TestWrapRoundTripper(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("accessToken", "refreshed")
	}))
	defer srv.Close()

	store := newCountingStore()
	p, _ := newPipeline(settings.New(), store)
	client := &http.Client{Transport: p.WrapRoundTripper(nil)}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "caller-value")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "caller-value", req.Header.Get("Authorization"))

	resp, err = client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"", "refreshed"}, seen)
	assert.Equal(t, []setCall{{settings.DefaultStorageKey, "refreshed"}, {settings.DefaultStorageKey, "refreshed"}}, store.sets)
}
