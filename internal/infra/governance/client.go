package governance

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httpclient "github.com/berdl/access-request/pkg/http"
	"github.com/go-resty/resty/v2"
)

// Client is the narrow surface of the governance API this service consumes.
// Adjudication of access requests happens entirely on the other side.
type Client interface {
	ListAvailableGroups(ctx context.Context, token string) ([]string, error)
	ListMyGroups(ctx context.Context, token string) ([]string, error)
	RequestTenantAccess(ctx context.Context, token string, req AccessRequestPayload) (*AccessRequestResult, error)
}

type governanceClient struct {
	baseURL string
}

func NewClient(baseURL string) Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &governanceClient{
		baseURL: baseURL,
	}
}

func (c *governanceClient) ListAvailableGroups(ctx context.Context, token string) ([]string, error) {
	var result GroupListResponse
	resp, err := httpclient.Get(
		ctx,
		c.baseURL+"/groups",
		httpclient.WithAuthToken(token),
		httpclient.WithResult(&result),
	)
	if err := c.check("list available groups", resp, err); err != nil {
		return nil, err
	}

	return result.Groups, nil
}

func (c *governanceClient) ListMyGroups(ctx context.Context, token string) ([]string, error) {
	var result GroupListResponse
	resp, err := httpclient.Get(
		ctx,
		c.baseURL+"/groups/my",
		httpclient.WithAuthToken(token),
		httpclient.WithResult(&result),
	)
	if err := c.check("list my groups", resp, err); err != nil {
		return nil, err
	}

	return result.Groups, nil
}

func (c *governanceClient) RequestTenantAccess(
	ctx context.Context,
	token string,
	req AccessRequestPayload,
) (*AccessRequestResult, error) {
	var result AccessRequestResult
	resp, err := httpclient.Post(
		ctx,
		c.baseURL+"/access-requests",
		httpclient.WithAuthToken(token),
		httpclient.WithBody(req),
		httpclient.WithResult(&result),
	)
	if err := c.check("request tenant access", resp, err); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *governanceClient) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	code := resp.StatusCode()
	switch {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidRequest, strings.TrimSpace(string(resp.Body())))
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: status %d", op, ErrUnavailable, code)
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, code, strings.TrimSpace(string(resp.Body())))
	}
}
