package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"log/slog"

	accessapp "github.com/berdl/access-request/internal/app/access"
	credentialsapp "github.com/berdl/access-request/internal/app/credentials"
	"github.com/berdl/access-request/internal/config"
	accessdomain "github.com/berdl/access-request/internal/domain/access"
	credentialsdomain "github.com/berdl/access-request/internal/domain/credentials"
	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/internal/infra/governance"
	"github.com/berdl/access-request/pkg/logger"
	"github.com/berdl/access-request/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type Handler struct {
	queryService       *accessapp.QueryService
	commandService     *accessapp.CommandService
	credentialsService *credentialsapp.Service
	cfg                *config.Config
}

func NewHandler(
	queryService *accessapp.QueryService,
	commandService *accessapp.CommandService,
	credentialsService *credentialsapp.Service,
	cfg *config.Config,
) *Handler {
	return &Handler{
		queryService:       queryService,
		commandService:     commandService,
		credentialsService: credentialsService,
		cfg:                cfg,
	}
}

func (h *Handler) Groups(c *gin.Context) {
	ctx, span := telemetry.Start(c.Request.Context(), "transport.http.Groups")
	defer span.End()

	id := identityFromContext(c)
	if id == nil {
		respondError(ctx, c, identity.ErrMissingCredentials)
		return
	}

	snapshot, err := h.queryService.Groups(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available_groups": snapshot.Available,
		"my_groups":        snapshot.Mine,
	})
}

type submitRequest struct {
	TenantName    string `json:"tenant_name"`
	Permission    string `json:"permission"`
	Justification string `json:"justification"`
}

func (h *Handler) Submit(c *gin.Context) {
	ctx, span := telemetry.Start(c.Request.Context(), "transport.http.Submit")
	defer span.End()

	id := identityFromContext(c)
	if id == nil {
		respondError(ctx, c, identity.ErrMissingCredentials)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty or missing"})
		return
	}

	var req submitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON in request body"})
		return
	}
	if req.Permission == "" {
		req.Permission = string(accessdomain.PermissionReadOnly)
	}

	span.SetAttributes(
		attribute.String("tenant.name", req.TenantName),
		attribute.String("access.permission", req.Permission),
	)

	outcome, err := h.commandService.Submit(ctx, id, accessdomain.AccessRequest{
		TenantName:    req.TenantName,
		Permission:    accessdomain.Permission(req.Permission),
		Justification: req.Justification,
	})
	if err != nil {
		span.RecordError(err)
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      outcome.Status,
		"message":     outcome.Message,
		"tenant_name": outcome.TenantName,
		"permission":  outcome.Permission,
	})
}

func (h *Handler) CredentialsConfig(c *gin.Context) {
	ctx, span := telemetry.Start(c.Request.Context(), "transport.http.CredentialsConfig")
	defer span.End()

	id := identityFromContext(c)
	if id == nil {
		respondError(ctx, c, identity.ErrMissingCredentials)
		return
	}

	format := c.DefaultQuery("format", credentialsdomain.FormatYAML)
	span.SetAttributes(attribute.String("credentials.format", format))

	rendered, err := h.credentialsService.BuildConfig(ctx, id, requestCookies(c), format)
	if err != nil {
		span.RecordError(err)
		respondError(ctx, c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	c.Data(http.StatusOK, rendered.ContentType, rendered.Data)
}

func (h *Handler) CredentialsInfo(c *gin.Context) {
	ctx, span := telemetry.Start(c.Request.Context(), "transport.http.CredentialsInfo")
	defer span.End()

	id := identityFromContext(c)
	if id == nil {
		respondError(ctx, c, identity.ErrMissingCredentials)
		return
	}

	diag, err := h.credentialsService.Inspect(ctx, id, requestCookies(c))
	if err != nil {
		span.RecordError(err)
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, diag)
}

const identityContextKey = "identity"

func identityFromContext(c *gin.Context) *identity.Identity {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil
	}
	id, ok := v.(*identity.Identity)
	if !ok {
		return nil
	}
	return id
}

func requestCookies(c *gin.Context) []credentialsdomain.Cookie {
	raw := c.Request.Cookies()
	cookies := make([]credentialsdomain.Cookie, 0, len(raw))
	for _, ck := range raw {
		cookies = append(cookies, credentialsdomain.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return cookies
}

// respondError translates domain and upstream errors into the uniform
// {"error": "..."} body. The full error goes to the log; the client only
// ever sees the stable classification message.
func respondError(ctx context.Context, c *gin.Context, err error) {
	status, message := statusForError(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", slog.String("error", err.Error()))
	} else {
		logger.WarnContext(ctx, "request rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(status, gin.H{"error": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, accessdomain.ErrTenantRequired),
		errors.Is(err, accessdomain.ErrInvalidPermission),
		errors.Is(err, credentialsdomain.ErrUnknownFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, governance.ErrInvalidRequest):
		return http.StatusBadRequest, governance.ErrInvalidRequest.Error()
	case errors.Is(err, identity.ErrMissingCredentials):
		return http.StatusUnauthorized, identity.ErrMissingCredentials.Error()
	case errors.Is(err, identity.ErrSessionInvalid):
		return http.StatusUnauthorized, identity.ErrSessionInvalid.Error()
	case errors.Is(err, accessdomain.ErrNoGovernanceToken):
		return http.StatusUnauthorized, accessdomain.ErrNoGovernanceToken.Error()
	case errors.Is(err, governance.ErrUnavailable):
		return http.StatusBadGateway, governance.ErrUnavailable.Error()
	case errors.Is(err, identity.ErrHubUnavailable):
		return http.StatusBadGateway, identity.ErrHubUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
