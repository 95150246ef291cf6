package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"log/slog"

	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/internal/infra/cache"
	"github.com/berdl/access-request/internal/infra/governance"
	"github.com/berdl/access-request/pkg/logger"
)

const availableGroupsKey = "available"

type service struct {
	groups       cache.GroupCache
	governance   governance.Client
	serviceToken string
	cacheTTL     time.Duration
}

// NewService builds the governance proxy. When serviceToken is empty the
// caller's own hub token is forwarded instead.
func NewService(
	groups cache.GroupCache,
	governanceClient governance.Client,
	serviceToken string,
	cacheTTL time.Duration,
) Service {
	return &service{
		groups:       groups,
		governance:   governanceClient,
		serviceToken: serviceToken,
		cacheTTL:     cacheTTL,
	}
}

func (s *service) Groups(ctx context.Context, id *identity.Identity) (*GroupsSnapshot, error) {
	token, err := s.bearerToken(id)
	if err != nil {
		return nil, err
	}

	available, err := s.cachedList(ctx, availableGroupsKey, func() ([]string, error) {
		return s.governance.ListAvailableGroups(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	mine, err := s.cachedList(ctx, userGroupsKey(id.Name), func() ([]string, error) {
		return s.governance.ListMyGroups(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &GroupsSnapshot{Available: available, Mine: mine}, nil
}

func (s *service) Submit(ctx context.Context, id *identity.Identity, req AccessRequest) (*RequestOutcome, error) {
	if req.TenantName == "" {
		return nil, ErrTenantRequired
	}
	if !req.Permission.Valid() {
		return nil, ErrInvalidPermission
	}

	token, err := s.bearerToken(id)
	if err != nil {
		return nil, err
	}

	payload := governance.AccessRequestPayload{
		TenantName: req.TenantName,
		Permission: string(req.Permission),
	}
	if req.Justification != "" {
		payload.Justification = &req.Justification
	}

	result, err := s.governance.RequestTenantAccess(ctx, token, payload)
	if err != nil {
		return nil, err
	}

	// An auto-approved request changes the membership list immediately, so
	// the next Groups call must not serve the stale cached one.
	if invErr := s.groups.Invalidate(ctx, userGroupsKey(id.Name)); invErr != nil {
		logger.WarnContext(ctx, "failed to invalidate membership cache",
			slog.String("error", invErr.Error()))
	}

	return outcomeFromResult(result, req), nil
}

// cachedList serves a group list from the cache, falling back to fetch and
// populate on miss. Cache failures degrade to a fetch, never to an error.
func (s *service) cachedList(ctx context.Context, key string, fetch func() ([]string, error)) ([]string, error) {
	cached, err := s.groups.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "failed to read group cache, fetching from governance",
			slog.String("error", err.Error()))
	}
	if cached != nil {
		return cached, nil
	}

	groups, err := fetch()
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []string{}
	}

	if setErr := s.groups.Set(ctx, key, groups, s.cacheTTL); setErr != nil {
		logger.WarnContext(ctx, "failed to cache group list", slog.String("error", setErr.Error()))
	}

	return groups, nil
}

func (s *service) bearerToken(id *identity.Identity) (string, error) {
	if s.serviceToken != "" {
		return s.serviceToken, nil
	}
	if id != nil && id.Token != "" {
		return id.Token, nil
	}
	return "", ErrNoGovernanceToken
}

func outcomeFromResult(result *governance.AccessRequestResult, req AccessRequest) *RequestOutcome {
	outcome := &RequestOutcome{
		Status:     result.Status,
		Message:    result.Message,
		TenantName: result.TenantName,
		Permission: result.Permission,
	}
	if outcome.Status == "" {
		outcome.Status = "unknown"
	}
	if outcome.TenantName == "" {
		outcome.TenantName = req.TenantName
	}
	if outcome.Permission == "" {
		outcome.Permission = string(req.Permission)
	}
	return outcome
}

func userGroupsKey(name string) string {
	hash := sha256.Sum256([]byte(name))
	return "user:" + hex.EncodeToString(hash[:])
}
