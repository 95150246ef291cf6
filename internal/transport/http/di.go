package http

import (
	"context"
	"fmt"
	"net/http"

	accessapp "github.com/berdl/access-request/internal/app/access"
	credentialsapp "github.com/berdl/access-request/internal/app/credentials"
	identityapp "github.com/berdl/access-request/internal/app/identity"
	"github.com/berdl/access-request/internal/config"
	accessdomain "github.com/berdl/access-request/internal/domain/access"
	credentialsdomain "github.com/berdl/access-request/internal/domain/credentials"
	identitydomain "github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/internal/infra/cache"
	"github.com/berdl/access-request/internal/infra/governance"
	"github.com/berdl/access-request/internal/infra/hub"
	"github.com/berdl/access-request/pkg/logger"
	"github.com/berdl/access-request/pkg/telemetry"
)

type Server struct {
	httpServer *http.Server
}

const (
	idleTimeoutMultiplier = 2
	serviceName           = "access-request"
)

func NewServer(cfg *config.Config) (*Server, error) {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	telemetryCfg := telemetry.Config{
		ServiceName:        serviceName,
		EndpointURL:        cfg.Observability.TracingEndpointURL,
		Enabled:            cfg.Observability.TraceEnabled,
		SampleRatio:        1.0,
		Insecure:           true,
		ResourceAttributes: make(map[string]string),
	}
	if err := telemetry.Init(serviceName, telemetryCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	sessionCache := cache.NewSessionCache(redisClient)
	groupCache := cache.NewGroupCache(redisClient)

	var identityDomainService identitydomain.Service
	if cfg.Auth.Disabled {
		identityDomainService = identitydomain.NewDisabledService(cfg.Auth.DevUser)
	} else {
		hubClient := hub.NewClient(cfg.Hub.APIURL, cfg.Hub.APIToken)
		identityDomainService = identitydomain.NewService(sessionCache, hubClient, cfg.Auth.CacheTTL)
	}
	identityAppService := identityapp.NewService(identityDomainService)

	governanceClient := governance.NewClient(cfg.Governance.BaseURL)
	accessDomainService := accessdomain.NewService(
		groupCache,
		governanceClient,
		cfg.Governance.Token,
		cfg.Governance.CacheTTL,
	)
	queryService := accessapp.NewQueryService(accessDomainService)
	commandService := accessapp.NewCommandService(accessDomainService)

	credentialsDomainService := credentialsdomain.NewService(cfg.Hub.PublicURL, cfg.Hub.SessionLifetime)
	credentialsService := credentialsapp.NewService(credentialsDomainService)

	handler := NewHandler(queryService, commandService, credentialsService, cfg)
	router := NewRouter(handler, cfg, AuthMiddleware(identityAppService))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
	}

	return &Server{
		httpServer: httpServer,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
