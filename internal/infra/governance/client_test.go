package governance_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/berdl/access-request/internal/infra/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListAvailableGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/groups", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string][]string{"groups": {"kbase", "nmdc"}})
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL + "/")

	groups, err := client.ListAvailableGroups(context.Background(), "svc-token")

	require.NoError(t, err)
	assert.Equal(t, []string{"kbase", "nmdc"}, groups)
}

func TestListMyGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/my", r.URL.Path)
		writeJSON(t, w, map[string][]string{"groups": {"kbase"}})
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	groups, err := client.ListMyGroups(context.Background(), "svc-token")

	require.NoError(t, err)
	assert.Equal(t, []string{"kbase"}, groups)
}

func TestListMyGroups_NullList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"groups": nil})
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	groups, err := client.ListMyGroups(context.Background(), "svc-token")

	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestRequestTenantAccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/access-requests", r.URL.Path)
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "kbase", payload["tenant_name"])
		assert.Equal(t, "read_write", payload["permission"])
		assert.Equal(t, "need it", payload["justification"])

		writeJSON(t, w, map[string]string{
			"status":      "pending",
			"message":     "request recorded",
			"tenant_name": "kbase",
			"permission":  "read_write",
		})
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	justification := "need it"
	result, err := client.RequestTenantAccess(context.Background(), "caller-token", governance.AccessRequestPayload{
		TenantName:    "kbase",
		Permission:    "read_write",
		Justification: &justification,
	})

	require.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "request recorded", result.Message)
	assert.Equal(t, "kbase", result.TenantName)
	assert.Equal(t, "read_write", result.Permission)
}

func TestRequestTenantAccess_OmitsEmptyJustification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "justification")
		writeJSON(t, w, map[string]string{"status": "pending"})
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	_, err := client.RequestTenantAccess(context.Background(), "t", governance.AccessRequestPayload{
		TenantName: "kbase",
		Permission: "read_only",
	})

	require.NoError(t, err)
}

func TestRequestTenantAccess_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "unknown tenant"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	_, err := client.RequestTenantAccess(context.Background(), "t", governance.AccessRequestPayload{
		TenantName: "nope",
		Permission: "read_only",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, governance.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "unknown tenant")
}

func TestErrorClassification_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	_, err := client.ListAvailableGroups(context.Background(), "t")

	assert.ErrorIs(t, err, governance.ErrUnavailable)
}

func TestErrorClassification_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := governance.NewClient(srv.URL)

	_, err := client.ListAvailableGroups(context.Background(), "t")

	assert.ErrorIs(t, err, governance.ErrUnavailable)
}

func TestErrorClassification_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := governance.NewClient(srv.URL)

	_, err := client.ListAvailableGroups(context.Background(), "t")

	require.Error(t, err)
	assert.NotErrorIs(t, err, governance.ErrInvalidRequest)
	assert.NotErrorIs(t, err, governance.ErrUnavailable)
}
