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

type QueryService struct {
	domainService accessdomain.Service
}

func NewQueryService(domainService accessdomain.Service) *QueryService {
	return &QueryService{
		domainService: domainService,
	}
}

func (s *QueryService) Groups(
	ctx context.Context,
	id *identity.Identity,
) (*accessdomain.GroupsSnapshot, error) {
	ctx, span := telemetry.Start(ctx, "app.access.Groups")
	defer span.End()

	span.SetAttributes(attribute.String("identity.username", id.Name))

	snapshot, err := s.domainService.Groups(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("groups.available_count", len(snapshot.Available)),
		attribute.Int("groups.member_count", len(snapshot.Mine)),
	)
	logger.InfoContext(ctx, "groups listed",
		slog.String("username", id.Name),
		slog.Int("available", len(snapshot.Available)),
		slog.Int("member_of", len(snapshot.Mine)),
	)

	return snapshot, nil
}
