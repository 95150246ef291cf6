package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "github.com/berdl/access-request/pkg/http"
	"github.com/go-resty/resty/v2"
)

// Client verifies hub credentials against a JupyterHub-compatible API.
type Client interface {
	// UserForToken resolves the user a hub API token belongs to.
	UserForToken(ctx context.Context, token string) (*User, error)
	// UserForSessionCookie resolves the user a jupyterhub-session-id cookie
	// authenticates, using the service's own token for the lookup.
	UserForSessionCookie(ctx context.Context, value string) (*User, error)
}

type hubClient struct {
	apiURL       string
	serviceToken string
}

func NewClient(apiURL, serviceToken string) Client {
	apiURL = strings.TrimSuffix(apiURL, "/")
	return &hubClient{
		apiURL:       apiURL,
		serviceToken: serviceToken,
	}
}

func (c *hubClient) UserForToken(ctx context.Context, token string) (*User, error) {
	var user User
	resp, err := httpclient.Get(
		ctx,
		c.apiURL+"/user",
		// The hub expects its own "token" scheme, not Bearer.
		httpclient.WithHeader("Authorization", "token "+token),
		httpclient.WithResult(&user),
	)
	if err := c.check("verify hub token", resp, err); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *hubClient) UserForSessionCookie(ctx context.Context, value string) (*User, error) {
	endpoint := fmt.Sprintf(
		"%s/authorizations/cookie/jupyterhub-session-id/%s",
		c.apiURL,
		url.PathEscape(value),
	)

	var user User
	resp, err := httpclient.Get(
		ctx,
		endpoint,
		httpclient.WithHeader("Authorization", "token "+c.serviceToken),
		httpclient.WithResult(&user),
	)
	if err := c.check("verify session cookie", resp, err); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *hubClient) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	code := resp.StatusCode()
	switch {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden || code == http.StatusNotFound:
		return fmt.Errorf("%s: %w: status %d", op, ErrInvalidCredentials, code)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: status %d", op, ErrUnavailable, code)
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, code, strings.TrimSpace(string(resp.Body())))
	}
}
