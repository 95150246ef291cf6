package access

import (
	"context"
	"log/slog"

	accessdomain "github.com/berdl/access-request/internal/domain/access"
	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/pkg/logger"
	"github.com/berdl/access-request/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type CommandService struct {
	domainService accessdomain.Service
}

func NewCommandService(domainService accessdomain.Service) *CommandService {
	return &CommandService{
		domainService: domainService,
	}
}

func (s *CommandService) Submit(
	ctx context.Context,
	id *identity.Identity,
	req accessdomain.AccessRequest,
) (*accessdomain.RequestOutcome, error) {
	ctx, span := telemetry.Start(ctx, "app.access.Submit")
	defer span.End()

	span.SetAttributes(
		attribute.String("tenant.name", req.TenantName),
		attribute.String("access.permission", string(req.Permission)),
	)

	logger.InfoContext(ctx, "submitting access request",
		slog.String("username", id.Name),
		slog.String("tenant_name", req.TenantName),
		slog.String("permission", string(req.Permission)),
	)

	outcome, err := s.domainService.Submit(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("access.status", outcome.Status))
	logger.InfoContext(ctx, "access request submitted",
		slog.String("tenant_name", outcome.TenantName),
		slog.String("status", outcome.Status),
	)

	return outcome, nil
}
