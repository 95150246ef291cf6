package identity

import (
	"context"

	identitydomain "github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	Resolve(ctx context.Context, cred identitydomain.Credential) (*identitydomain.Identity, error)
}

type service struct {
	domainService identitydomain.Service
}

func NewService(domainService identitydomain.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) Resolve(
	ctx context.Context,
	cred identitydomain.Credential,
) (*identitydomain.Identity, error) {
	ctx, span := telemetry.Start(ctx, "app.identity.Resolve")
	defer span.End()

	span.SetAttributes(
		attribute.String("credential.kind", string(cred.Kind)),
	)

	id, err := s.domainService.Resolve(ctx, cred)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("identity.username", id.Name),
		attribute.String("identity.source", id.Source),
	)

	return id, nil
}
