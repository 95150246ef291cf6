package http

import (
	"net/http"
	"strings"

	"github.com/berdl/access-request/internal/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(handler *Handler, cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	if cfg.Observability.TraceEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())

	healthz := func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	}
	router.GET("/healthz", healthz)

	base := normalizeBasePath(cfg.Server.BasePath)
	root := router.Group(base)
	if base != "/" {
		// The hub proxies the service under its service prefix; answer the
		// health probe on both paths.
		root.GET("/healthz", healthz)
	}

	api := root.Group("/api/access-request")
	api.Use(auth)
	api.GET("/groups", handler.Groups)
	api.POST("/submit", handler.Submit)
	api.GET("/credentials/config", handler.CredentialsConfig)
	api.GET("/credentials/info", handler.CredentialsInfo)

	return router
}

// normalizeBasePath turns the hub service prefix ("/services/x/" or
// "/user/alice/proxy/") into a gin group path without a trailing slash.
func normalizeBasePath(basePath string) string {
	trimmed := strings.Trim(basePath, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}
