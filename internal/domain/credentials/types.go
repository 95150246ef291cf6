package credentials

import "errors"

var ErrUnknownFormat = errors.New("format must be 'yaml' or 'json'")

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Hub session cookies recognized by the exporter. Everything else a browser
// sends along is ignored.
const (
	CookieXSRF       = "_xsrf"
	CookieSessionID  = "jupyterhub-session-id"
	CookieUserPrefix = "jupyterhub-user-"
)

// Cookie is a name/value pair lifted off the incoming request.
type Cookie struct {
	Name  string
	Value string
}

// ClientConfig is the configuration file handed to the remote client tool.
// Cookies and ExpiresAt appear only when a hub session cookie was present;
// SkipAuth marks exports that carry no session at all.
type ClientConfig struct {
	HubURL      string            `json:"hub_url" yaml:"hub_url"`
	Username    string            `json:"username" yaml:"username"`
	Cookies     map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	ExpiresAt   string            `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	SkipAuth    bool              `json:"skip_auth,omitempty" yaml:"skip_auth,omitempty"`
	GeneratedAt string            `json:"generated_at" yaml:"generated_at"`
}

// RenderedConfig is a ClientConfig serialized for download.
type RenderedConfig struct {
	Data        []byte
	ContentType string
	Filename    string
}

type CookieStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// SessionDiagnostics describes whether the caller's session is exportable.
// Cookie values are never echoed, only their presence.
type SessionDiagnostics struct {
	Username     string         `json:"username"`
	AuthSource   string         `json:"auth_source"`
	SessionValid bool           `json:"session_valid"`
	Cookies      []CookieStatus `json:"cookies"`
	ExpiresAt    string         `json:"expires_at,omitempty"`
	Warnings     []string       `json:"warnings"`
}
