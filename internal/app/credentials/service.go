package credentials

import (
	"context"
	"log/slog"

	credentialsdomain "github.com/berdl/access-request/internal/domain/credentials"
	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/pkg/logger"
	"github.com/berdl/access-request/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type Service struct {
	domainService credentialsdomain.Service
}

func NewService(domainService credentialsdomain.Service) *Service {
	return &Service{
		domainService: domainService,
	}
}

func (s *Service) BuildConfig(
	ctx context.Context,
	id *identity.Identity,
	cookies []credentialsdomain.Cookie,
	format string,
) (*credentialsdomain.RenderedConfig, error) {
	ctx, span := telemetry.Start(ctx, "app.credentials.BuildConfig")
	defer span.End()

	span.SetAttributes(
		attribute.String("identity.username", id.Name),
		attribute.String("credentials.format", format),
	)

	logger.InfoContext(ctx, "exporting client configuration",
		slog.String("username", id.Name),
		slog.String("format", format),
	)

	rendered, err := s.domainService.BuildConfig(ctx, id, cookies, format)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return rendered, nil
}

func (s *Service) Inspect(
	ctx context.Context,
	id *identity.Identity,
	cookies []credentialsdomain.Cookie,
) (*credentialsdomain.SessionDiagnostics, error) {
	ctx, span := telemetry.Start(ctx, "app.credentials.Inspect")
	defer span.End()

	span.SetAttributes(attribute.String("identity.username", id.Name))

	diag, err := s.domainService.Inspect(ctx, id, cookies)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("session.valid", diag.SessionValid))

	return diag, nil
}
