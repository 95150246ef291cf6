package access

import (
	"context"

	"github.com/berdl/access-request/internal/domain/identity"
)

type Service interface {
	// Groups returns the tenants available to request and the caller's
	// current memberships, cache-aside over the governance API.
	Groups(ctx context.Context, id *identity.Identity) (*GroupsSnapshot, error)

	// Submit files a tenant access request with the governance API on the
	// caller's behalf.
	Submit(ctx context.Context, id *identity.Identity, req AccessRequest) (*RequestOutcome, error)
}
