package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/adapters/outbound/remote"
)

func newRuleServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/recommendation/system.web.mvc.json":
			w.Header().Set("Content-Type", "application/json")
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `{"namespace":"System.Web.Mvc"}`)
			}
		case "/recommendation/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		case "/recommendation/private.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStore_Exists(t *testing.T) {
	srv := newRuleServer(t, nil)
	store, err := remote.NewHTTPStore(srv.URL+"/recommendation/", 0, time.Second)
	require.NoError(t, err)

	ok, err := store.Exists(context.Background(), "system.web.mvc.json")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "foo.json")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(context.Background(), "private.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Exists(context.Background(), "broken.json")
	assert.Error(t, err)
}

func TestHTTPStore_Fetch(t *testing.T) {
	srv := newRuleServer(t, nil)
	store, err := remote.NewHTTPStore(srv.URL+"/recommendation", 0, time.Second)
	require.NoError(t, err)

	rc, err := store.Fetch(context.Background(), "system.web.mvc.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"namespace":"System.Web.Mvc"}`, string(body))

	_, err = store.Fetch(context.Background(), "foo.json")
	assert.Error(t, err)
}

func TestHTTPStore_URL(t *testing.T) {
	store, err := remote.NewHTTPStore("https://example.com/rules/", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/rules/project.all.json", store.URL("project.all.json"))
}

func TestNewHTTPStore_RejectsBadScheme(t *testing.T) {
	_, err := remote.NewHTTPStore("ftp://example.com", 0, 0)
	assert.Error(t, err)
}

func TestHTTPStore_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	srv := newRuleServer(t, &hits)
	store, err := remote.NewHTTPStore(srv.URL, 1, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Exists(ctx, "system.web.mvc.json")
	assert.Error(t, err)
	assert.Zero(t, hits.Load())
}
