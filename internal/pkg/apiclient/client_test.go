package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// flakyTransport fails the first n attempts with a network error and then delegates.
func flakyTransport(n int32, calls *int32) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(calls, 1) <= n {
			return nil, errors.New("connection reset by peer")
		}
		return http.DefaultTransport.RoundTrip(r)
	})
}

type fakeCredentials struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCredentials) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCredentials) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithDefaults(time.Second, 3, time.Millisecond)}, opts...)
	c, err := New(url, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)

	c, err := New("http://example.test/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", c.BaseURL())
}

func TestRequest_RetriesNetworkFailureThenSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	var calls int32
	c := newTestClient(t, srv.URL, WithHTTPClient(&http.Client{Transport: flakyTransport(2, &calls)}))

	resp := c.Request(context.Background(), "/health", WithRetryAttempts(3))

	require.True(t, resp.OK, "error: %v", resp.Err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequest_ExhaustedRetriesReturnLastError(t *testing.T) {
	var calls int32
	c := newTestClient(t, "http://unreachable.test", WithHTTPClient(&http.Client{Transport: flakyTransport(10, &calls)}))

	resp := c.Request(context.Background(), "/places", WithRetryAttempts(3))

	assert.False(t, resp.OK)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindNetwork, resp.Err.Kind)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequest_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"plan not found"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp := c.Request(context.Background(), "/plans/missing")

	assert.False(t, resp.OK)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindHTTP, resp.Err.Kind)
	assert.Equal(t, "plan not found", resp.Err.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	resp := newTestClient(t, srv.URL).Request(context.Background(), "/personas")
	assert.True(t, resp.OK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRequest_UnauthorizedClearsCredentialAndRetries(t *testing.T) {
	creds := &fakeCredentials{token: "stale"}
	var sawAuth []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sawAuth = append(sawAuth, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithCredentials(creds))
	resp := c.Request(context.Background(), "/plans")

	assert.True(t, resp.OK)
	assert.Equal(t, 1, creds.cleared)
	assert.Equal(t, []string{"Bearer stale", ""}, sawAuth)
}

func TestRequest_TimeoutIsDistinctFromNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp := c.Request(context.Background(), "/slow", WithTimeout(20*time.Millisecond), WithRetry(false))

	assert.False(t, resp.OK)
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindTimeout, resp.Err.Kind)
	assert.Equal(t, StatusTimeout, resp.Err.Status)
}

func TestRequest_SendsJSONAndHeaders(t *testing.T) {
	var got struct {
		method, contentType, bypass, custom, query string
		body                                       []byte
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.contentType = r.Header.Get("Content-Type")
		got.bypass = r.Header.Get(BypassHeader)
		got.custom = r.Header.Get("X-Trace")
		got.query = r.URL.RawQuery
		got.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "accepted")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp := c.Request(context.Background(), "/plans/p1/chat",
		WithMethod(http.MethodPost),
		WithBody(map[string]string{"message": "more food"}),
		WithHeader("X-Trace", "abc"),
		WithQuery(map[string][]string{"lang": {"en"}}),
	)

	require.True(t, resp.OK)
	assert.Equal(t, "accepted", resp.Text)
	assert.Empty(t, resp.Data)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "true", got.bypass)
	assert.Equal(t, "abc", got.custom)
	assert.Equal(t, "lang=en", got.query)
	assert.JSONEq(t, `{"message":"more food"}`, string(got.body))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, `{"name":"Bangsar"}`)
		case "/broken":
			_, _ = io.WriteString(w, `{"name":`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	type place struct {
		Name string `json:"name"`
	}

	p, err := Fetch[place](context.Background(), c, "/ok")
	require.NoError(t, err)
	assert.Equal(t, "Bangsar", p.Name)

	_, err = Fetch[place](context.Background(), c, "/broken")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, apiErr.Kind)

	_, err = Fetch[place](context.Background(), c, "/bad")
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.False(t, apiErr.Retryable())
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{base: 100 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, b.NextBackOff())
	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/plans/p-123", endpointLabel("/plans/p-123/chat"))
	assert.Equal(t, "/places/search", endpointLabel("/places/search?query=x"))
	assert.Equal(t, "/personas", endpointLabel("personas"))
}
