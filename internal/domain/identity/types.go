package identity

import "errors"

var (
	ErrMissingCredentials = errors.New("missing hub credentials")
	ErrSessionInvalid     = errors.New("hub credentials are invalid or expired")
	ErrHubUnavailable     = errors.New("hub is unreachable")
)

type CredentialKind string

const (
	CredentialToken  CredentialKind = "token"
	CredentialCookie CredentialKind = "cookie"
)

// Credential is whatever the caller presented to authenticate: a hub API
// token or a jupyterhub-session-id cookie value.
type Credential struct {
	Kind  CredentialKind
	Value string
}

const (
	SourceToken    = "token"
	SourceCookie   = "cookie"
	SourceDisabled = "disabled"
)

// Identity is a hub user resolved for one request. Token carries the
// caller's raw API token when that is what authenticated them, so it can be
// forwarded to the governance API; it is never cached.
type Identity struct {
	Name   string
	Admin  bool
	Groups []string
	Source string
	Token  string
}
