package hub_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/berdl/access-request/internal/infra/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestUserForToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "token caller-token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{
			"name":   "alice",
			"admin":  true,
			"groups": []string{"kbase"},
			"kind":   "user",
		})
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL+"/", "service-token")

	user, err := client.UserForToken(context.Background(), "caller-token")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.True(t, user.Admin)
	assert.Equal(t, []string{"kbase"}, user.Groups)
}

func TestUserForSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authorizations/cookie/jupyterhub-session-id/session-xyz", r.URL.Path)
		// Cookie lookups authenticate with the service's own token, not the
		// caller's.
		assert.Equal(t, "token service-token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{"name": "bob"})
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	user, err := client.UserForSessionCookie(context.Background(), "session-xyz")

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Name)
}

func TestUserForSessionCookie_EscapesValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authorizations/cookie/jupyterhub-session-id/a%2Fb%20c", r.URL.EscapedPath())
		writeJSON(t, w, map[string]any{"name": "bob"})
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	_, err := client.UserForSessionCookie(context.Background(), "a/b c")

	require.NoError(t, err)
}

func TestUserForToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	_, err := client.UserForToken(context.Background(), "bad-token")

	assert.ErrorIs(t, err, hub.ErrInvalidCredentials)
}

func TestUserForSessionCookie_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	_, err := client.UserForSessionCookie(context.Background(), "stale-session")

	assert.ErrorIs(t, err, hub.ErrInvalidCredentials)
}

func TestUserForToken_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	_, err := client.UserForToken(context.Background(), "any")

	assert.ErrorIs(t, err, hub.ErrUnavailable)
}

func TestUserForToken_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := hub.NewClient(srv.URL, "service-token")

	_, err := client.UserForToken(context.Background(), "any")

	assert.ErrorIs(t, err, hub.ErrUnavailable)
}
