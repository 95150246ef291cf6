package access_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/berdl/access-request/internal/domain/access"
	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/internal/infra/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGroupCache struct {
	entries     map[string][]string
	invalidated []string
	getErr      error
	setErr      error
}

func newMockGroupCache() *mockGroupCache {
	return &mockGroupCache{entries: make(map[string][]string)}
}

func (m *mockGroupCache) Get(_ context.Context, key string) ([]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[key], nil
}

func (m *mockGroupCache) Set(_ context.Context, key string, groups []string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = groups
	return nil
}

func (m *mockGroupCache) Invalidate(_ context.Context, key string) error {
	m.invalidated = append(m.invalidated, key)
	delete(m.entries, key)
	return nil
}

type mockGovernance struct {
	availableFunc func(ctx context.Context, token string) ([]string, error)
	mineFunc      func(ctx context.Context, token string) ([]string, error)
	requestFunc   func(ctx context.Context, token string, req governance.AccessRequestPayload) (*governance.AccessRequestResult, error)

	availableCalls int
	mineCalls      int
	lastToken      string
	lastPayload    governance.AccessRequestPayload
}

func (m *mockGovernance) ListAvailableGroups(ctx context.Context, token string) ([]string, error) {
	m.availableCalls++
	m.lastToken = token
	if m.availableFunc != nil {
		return m.availableFunc(ctx, token)
	}
	return []string{"kbase", "nmdc"}, nil
}

func (m *mockGovernance) ListMyGroups(ctx context.Context, token string) ([]string, error) {
	m.mineCalls++
	m.lastToken = token
	if m.mineFunc != nil {
		return m.mineFunc(ctx, token)
	}
	return []string{"kbase"}, nil
}

func (m *mockGovernance) RequestTenantAccess(
	ctx context.Context,
	token string,
	req governance.AccessRequestPayload,
) (*governance.AccessRequestResult, error) {
	m.lastToken = token
	m.lastPayload = req
	if m.requestFunc != nil {
		return m.requestFunc(ctx, token, req)
	}
	return &governance.AccessRequestResult{
		Status:     "pending",
		Message:    "request recorded",
		TenantName: req.TenantName,
		Permission: req.Permission,
	}, nil
}

func tokenIdentity(name string) *identity.Identity {
	return &identity.Identity{Name: name, Source: identity.SourceToken, Token: "caller-token"}
}

func userKeyForTest(name string) string {
	hash := sha256.Sum256([]byte(name))
	return "user:" + hex.EncodeToString(hash[:])
}

func TestGroups_FetchesAndCaches(t *testing.T) {
	groups := newMockGroupCache()
	gov := &mockGovernance{}
	svc := access.NewService(groups, gov, "service-token", time.Minute)

	snapshot, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.Equal(t, []string{"kbase", "nmdc"}, snapshot.Available)
	assert.Equal(t, []string{"kbase"}, snapshot.Mine)
	assert.Equal(t, []string{"kbase", "nmdc"}, groups.entries["available"])
	assert.Equal(t, []string{"kbase"}, groups.entries[userKeyForTest("alice")])
}

func TestGroups_CacheHitSkipsGovernance(t *testing.T) {
	groups := newMockGroupCache()
	groups.entries["available"] = []string{"cached-tenant"}
	groups.entries[userKeyForTest("alice")] = []string{"cached-mine"}
	gov := &mockGovernance{}
	svc := access.NewService(groups, gov, "service-token", time.Minute)

	snapshot, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.Equal(t, []string{"cached-tenant"}, snapshot.Available)
	assert.Equal(t, []string{"cached-mine"}, snapshot.Mine)
	assert.Zero(t, gov.availableCalls)
	assert.Zero(t, gov.mineCalls)
}

func TestGroups_NormalizesNilListsToEmpty(t *testing.T) {
	gov := &mockGovernance{
		availableFunc: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
		mineFunc:      func(_ context.Context, _ string) ([]string, error) { return nil, nil },
	}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	snapshot, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.NotNil(t, snapshot.Available)
	assert.NotNil(t, snapshot.Mine)
	assert.Empty(t, snapshot.Available)
	assert.Empty(t, snapshot.Mine)
}

func TestGroups_CacheFailuresAreSoft(t *testing.T) {
	groups := newMockGroupCache()
	groups.getErr = errors.New("redis down")
	groups.setErr = errors.New("redis down")
	svc := access.NewService(groups, &mockGovernance{}, "service-token", time.Minute)

	snapshot, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.Equal(t, []string{"kbase", "nmdc"}, snapshot.Available)
}

func TestGroups_GovernanceErrorPropagates(t *testing.T) {
	gov := &mockGovernance{
		availableFunc: func(_ context.Context, _ string) ([]string, error) {
			return nil, fmt.Errorf("list available groups: %w: status 503", governance.ErrUnavailable)
		},
	}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	_, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.Error(t, err)
	assert.ErrorIs(t, err, governance.ErrUnavailable)
}

func TestGroups_PrefersServiceToken(t *testing.T) {
	gov := &mockGovernance{}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	_, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.Equal(t, "service-token", gov.lastToken)
}

func TestGroups_ForwardsCallerTokenWithoutServiceToken(t *testing.T) {
	gov := &mockGovernance{}
	svc := access.NewService(newMockGroupCache(), gov, "", time.Minute)

	_, err := svc.Groups(context.Background(), tokenIdentity("alice"))

	require.NoError(t, err)
	assert.Equal(t, "caller-token", gov.lastToken)
}

func TestGroups_NoTokenAvailable(t *testing.T) {
	svc := access.NewService(newMockGroupCache(), &mockGovernance{}, "", time.Minute)

	cookieOnly := &identity.Identity{Name: "alice", Source: identity.SourceCookie}
	_, err := svc.Groups(context.Background(), cookieOnly)

	assert.ErrorIs(t, err, access.ErrNoGovernanceToken)
}

func TestSubmit_RequiresTenantName(t *testing.T) {
	gov := &mockGovernance{}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		Permission: access.PermissionReadOnly,
	})

	assert.ErrorIs(t, err, access.ErrTenantRequired)
	assert.Empty(t, gov.lastToken)
}

func TestSubmit_RejectsUnknownPermission(t *testing.T) {
	svc := access.NewService(newMockGroupCache(), &mockGovernance{}, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName: "kbase",
		Permission: "admin",
	})

	assert.ErrorIs(t, err, access.ErrInvalidPermission)
}

func TestSubmit_DefaultsMissingOutcomeFields(t *testing.T) {
	gov := &mockGovernance{
		requestFunc: func(_ context.Context, _ string, _ governance.AccessRequestPayload) (*governance.AccessRequestResult, error) {
			return &governance.AccessRequestResult{}, nil
		},
	}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	outcome, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName: "kbase",
		Permission: access.PermissionReadWrite,
	})

	require.NoError(t, err)
	assert.Equal(t, "unknown", outcome.Status)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, "kbase", outcome.TenantName)
	assert.Equal(t, "read_write", outcome.Permission)
}

func TestSubmit_InvalidatesMembershipCache(t *testing.T) {
	groups := newMockGroupCache()
	groups.entries[userKeyForTest("alice")] = []string{"stale"}
	svc := access.NewService(groups, &mockGovernance{}, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName: "kbase",
		Permission: access.PermissionReadOnly,
	})

	require.NoError(t, err)
	assert.Contains(t, groups.invalidated, userKeyForTest("alice"))
}

func TestSubmit_PassesJustification(t *testing.T) {
	gov := &mockGovernance{}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName:    "kbase",
		Permission:    access.PermissionReadOnly,
		Justification: "need the expression atlas",
	})

	require.NoError(t, err)
	require.NotNil(t, gov.lastPayload.Justification)
	assert.Equal(t, "need the expression atlas", *gov.lastPayload.Justification)
}

func TestSubmit_OmitsEmptyJustification(t *testing.T) {
	gov := &mockGovernance{}
	svc := access.NewService(newMockGroupCache(), gov, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName: "kbase",
		Permission: access.PermissionReadOnly,
	})

	require.NoError(t, err)
	assert.Nil(t, gov.lastPayload.Justification)
}

func TestSubmit_GovernanceRejectionPropagates(t *testing.T) {
	groups := newMockGroupCache()
	gov := &mockGovernance{
		requestFunc: func(_ context.Context, _ string, _ governance.AccessRequestPayload) (*governance.AccessRequestResult, error) {
			return nil, fmt.Errorf("request tenant access: %w: unknown tenant", governance.ErrInvalidRequest)
		},
	}
	svc := access.NewService(groups, gov, "service-token", time.Minute)

	_, err := svc.Submit(context.Background(), tokenIdentity("alice"), access.AccessRequest{
		TenantName: "nope",
		Permission: access.PermissionReadOnly,
	})

	require.ErrorIs(t, err, governance.ErrInvalidRequest)
	assert.Empty(t, groups.invalidated)
}
