package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/goccy/go-yaml"
)

type Service interface {
	// BuildConfig synthesizes a downloadable client configuration from the
	// caller's identity and hub session cookies.
	BuildConfig(ctx context.Context, id *identity.Identity, cookies []Cookie, format string) (*RenderedConfig, error)

	// Inspect reports whether the caller's session cookies are complete
	// enough for an exported configuration to work.
	Inspect(ctx context.Context, id *identity.Identity, cookies []Cookie) (*SessionDiagnostics, error)
}

type service struct {
	hubURL          string
	sessionLifetime time.Duration
}

func NewService(hubURL string, sessionLifetime time.Duration) Service {
	return &service{
		hubURL:          hubURL,
		sessionLifetime: sessionLifetime,
	}
}

func (s *service) BuildConfig(
	_ context.Context,
	id *identity.Identity,
	cookies []Cookie,
	format string,
) (*RenderedConfig, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, ErrUnknownFormat
	}

	recognized := hubCookies(cookies)
	now := time.Now().UTC()

	cfg := ClientConfig{
		HubURL:      s.hubURL,
		Username:    id.Name,
		GeneratedAt: now.Format(time.RFC3339),
	}

	if len(recognized) == 0 {
		cfg.SkipAuth = true
	} else {
		jar := make(map[string]string, len(recognized))
		for _, c := range recognized {
			jar[c.Name] = c.Value
		}
		cfg.Cookies = jar
		cfg.ExpiresAt = now.Add(s.sessionLifetime).Format(time.RFC3339)
	}

	return render(cfg, format)
}

func (s *service) Inspect(
	_ context.Context,
	id *identity.Identity,
	cookies []Cookie,
) (*SessionDiagnostics, error) {
	recognized := hubCookies(cookies)

	diag := &SessionDiagnostics{
		Username:     id.Name,
		AuthSource:   id.Source,
		SessionValid: id.Source != identity.SourceDisabled,
		Warnings:     []string{},
	}

	hasXSRF := false
	hasSession := false
	diag.Cookies = []CookieStatus{
		{Name: CookieXSRF},
		{Name: CookieSessionID},
	}
	for _, c := range recognized {
		switch {
		case c.Name == CookieXSRF:
			hasXSRF = true
			diag.Cookies[0].Present = true
		case c.Name == CookieSessionID:
			hasSession = true
			diag.Cookies[1].Present = true
		default:
			diag.Cookies = append(diag.Cookies, CookieStatus{Name: c.Name, Present: true})
		}
	}

	if len(recognized) > 0 {
		diag.ExpiresAt = time.Now().UTC().Add(s.sessionLifetime).Format(time.RFC3339)
	}

	if !hasXSRF {
		diag.Warnings = append(diag.Warnings,
			"_xsrf cookie not found; browser downloads may fail CSRF checks")
	}
	if !hasSession {
		diag.Warnings = append(diag.Warnings,
			"jupyterhub-session-id cookie not found; the exported configuration will not be able to authenticate")
	}
	if id.Source == identity.SourceDisabled {
		diag.Warnings = append(diag.Warnings,
			"authentication is disabled; identity was not verified against the hub")
	}

	return diag, nil
}

// hubCookies filters the request cookies down to the recognized hub session
// cookies, preserving request order.
func hubCookies(cookies []Cookie) []Cookie {
	recognized := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		switch {
		case c.Name == CookieXSRF,
			c.Name == CookieSessionID,
			strings.HasPrefix(c.Name, CookieUserPrefix):
			recognized = append(recognized, c)
		}
	}
	return recognized
}

func render(cfg ClientConfig, format string) (*RenderedConfig, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to render config as JSON: %w", err)
		}
		return &RenderedConfig{
			Data:        append(data, '\n'),
			ContentType: "application/json",
			Filename:    "berdl-client.json",
		}, nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config as YAML: %w", err)
	}
	return &RenderedConfig{
		Data:        data,
		ContentType: "application/x-yaml",
		Filename:    "berdl-client.yaml",
	}, nil
}
