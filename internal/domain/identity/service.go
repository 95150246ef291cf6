package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/berdl/access-request/internal/infra/cache"
	"github.com/berdl/access-request/internal/infra/hub"
	"github.com/berdl/access-request/pkg/logger"
)

const defaultDevUser = "jovyan"

type Service interface {
	Resolve(ctx context.Context, cred Credential) (*Identity, error)
}

type service struct {
	sessions cache.SessionCache
	hub      hub.Client
	cacheTTL time.Duration
}

func NewService(sessions cache.SessionCache, hubClient hub.Client, cacheTTL time.Duration) Service {
	return &service{
		sessions: sessions,
		hub:      hubClient,
		cacheTTL: cacheTTL,
	}
}

// NewDisabledService resolves every request to a fixed synthetic identity
// without consulting the hub. Meant for single-user dev environments.
func NewDisabledService(devUser string) Service {
	if devUser == "" {
		devUser = defaultDevUser
	}
	return &disabledService{devUser: devUser}
}

func (s *service) Resolve(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.Value == "" {
		return nil, ErrMissingCredentials
	}

	credentialHash := hashCredential(cred.Value)

	cached, err := s.sessions.Get(ctx, credentialHash)
	if err != nil {
		logger.WarnContext(ctx, "failed to read session cache, verifying against hub",
			slog.String("error", err.Error()))
	}

	if cached != nil {
		return identityFromCache(cached, cred), nil
	}

	user, err := s.verify(ctx, cred)
	if err != nil {
		if errors.Is(err, hub.ErrInvalidCredentials) {
			logger.WarnContext(ctx, "hub rejected credentials",
				slog.String("credential_kind", string(cred.Kind)))
			return nil, ErrSessionInvalid
		}
		if errors.Is(err, hub.ErrUnavailable) {
			logger.ErrorContext(ctx, "hub verification failed", slog.String("error", err.Error()))
			return nil, ErrHubUnavailable
		}
		return nil, fmt.Errorf("verify hub credentials: %w", err)
	}

	id := &Identity{
		Name:   user.Name,
		Admin:  user.Admin,
		Groups: user.Groups,
		Source: sourceForKind(cred.Kind),
	}
	if id.Groups == nil {
		id.Groups = []string{}
	}

	session := &cache.CachedSession{
		Name:   id.Name,
		Admin:  id.Admin,
		Groups: id.Groups,
		Source: id.Source,
	}
	if setErr := s.sessions.Set(ctx, credentialHash, session, s.cacheTTL); setErr != nil {
		logger.WarnContext(ctx, "failed to cache hub session", slog.String("error", setErr.Error()))
	}

	return withToken(id, cred), nil
}

func (s *service) verify(ctx context.Context, cred Credential) (*hub.User, error) {
	switch cred.Kind {
	case CredentialToken:
		return s.hub.UserForToken(ctx, cred.Value)
	case CredentialCookie:
		return s.hub.UserForSessionCookie(ctx, cred.Value)
	default:
		return nil, ErrMissingCredentials
	}
}

type disabledService struct {
	devUser string
}

func (s *disabledService) Resolve(_ context.Context, _ Credential) (*Identity, error) {
	return &Identity{
		Name:   s.devUser,
		Groups: []string{},
		Source: SourceDisabled,
	}, nil
}

func identityFromCache(cached *cache.CachedSession, cred Credential) *Identity {
	id := &Identity{
		Name:   cached.Name,
		Admin:  cached.Admin,
		Groups: cached.Groups,
		Source: cached.Source,
	}
	if id.Groups == nil {
		id.Groups = []string{}
	}
	return withToken(id, cred)
}

func withToken(id *Identity, cred Credential) *Identity {
	if cred.Kind == CredentialToken {
		id.Token = cred.Value
	}
	return id
}

func sourceForKind(kind CredentialKind) string {
	if kind == CredentialCookie {
		return SourceCookie
	}
	return SourceToken
}

func hashCredential(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}
