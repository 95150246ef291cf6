package http

import (
	"strings"
	"time"

	"log/slog"

	identityapp "github.com/berdl/access-request/internal/app/identity"
	credentialsdomain "github.com/berdl/access-request/internal/domain/credentials"
	"github.com/berdl/access-request/internal/domain/identity"
	"github.com/berdl/access-request/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDContextKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		requestID := c.GetString(requestIDContextKey)

		if status >= 500 {
			logger.ErrorContext(c.Request.Context(), "request failed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
				slog.String("request_id", requestID),
			)
		} else {
			logger.InfoContext(c.Request.Context(), "request completed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
				slog.String("request_id", requestID),
			)
		}
	}
}

// AuthMiddleware resolves the caller's hub identity from the Authorization
// header or the hub session cookie and stores it on the gin context for the
// handlers behind it.
func AuthMiddleware(appService identityapp.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := extractCredential(c)

		id, err := appService.Resolve(c.Request.Context(), cred)
		if err != nil {
			status, message := statusForError(err)
			logger.WarnContext(c.Request.Context(), "authentication failed",
				slog.Int("status", status),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(identityContextKey, id)
		c.Next()
	}
}

// extractCredential prefers an API token over the browser session cookie.
// The hub's own clients send "Authorization: token <t>"; generic tooling
// sends "Bearer <t>".
func extractCredential(c *gin.Context) identity.Credential {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.GetHeader("authorization")
	}

	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "token ")
		token = strings.TrimPrefix(token, "Bearer ")
		token = strings.TrimSpace(token)
		if token != "" {
			return identity.Credential{Kind: identity.CredentialToken, Value: token}
		}
	}

	if cookie, err := c.Cookie(credentialsdomain.CookieSessionID); err == nil && cookie != "" {
		return identity.Credential{Kind: identity.CredentialCookie, Value: cookie}
	}

	return identity.Credential{}
}
