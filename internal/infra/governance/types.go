package governance

import "errors"

var (
	// ErrInvalidRequest marks responses the governance API rejected as the
	// caller's fault (HTTP 400/422).
	ErrInvalidRequest = errors.New("governance rejected the request")
	// ErrUnavailable marks transport failures and governance 5xx responses.
	ErrUnavailable = errors.New("governance service unavailable")
)

// GroupListResponse is the wire shape of both group-listing endpoints.
// A missing or null list means the caller has no groups.
type GroupListResponse struct {
	Groups []string `json:"groups"`
}

type AccessRequestPayload struct {
	TenantName    string  `json:"tenant_name"`
	Permission    string  `json:"permission"`
	Justification *string `json:"justification,omitempty"`
}

type AccessRequestResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	TenantName string `json:"tenant_name"`
	Permission string `json:"permission"`
}
