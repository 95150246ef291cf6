package hub

import "errors"

var (
	// ErrInvalidCredentials marks tokens and session cookies the hub refused
	// to authenticate.
	ErrInvalidCredentials = errors.New("hub rejected the credentials")
	// ErrUnavailable marks transport failures and hub 5xx responses.
	ErrUnavailable = errors.New("hub unavailable")
)

// User is the hub's description of an authenticated user, trimmed to the
// fields this service reads.
type User struct {
	Name   string   `json:"name"`
	Admin  bool     `json:"admin"`
	Groups []string `json:"groups"`
	Kind   string   `json:"kind,omitempty"`
}
