package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/config"
	"mathgen-backend/internal/shared/metrics"
	"mathgen-backend/internal/shared/server/middleware"
	"mathgen-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api.
type RouterDeps struct {
	Config              config.Config
	UserHandler         RouteRegistrar
	GoogleAuth          RouteRegistrar
	ProblemSetHandler   RouteRegistrar
	GeneratedSetHandler RouteRegistrar
	ProgressHandler     RouteRegistrar
	// RateLimits maps a full route path to its per-user token bucket.
	RateLimits map[string]middleware.RateLimitRule
	// Health reports component status for /api/health.
	Health func() gin.H
}

// PublicPrefixes are reachable without a bearer token.
// The SSE endpoint authenticates through its token query parameter instead.
var PublicPrefixes = []string{"/api/auth/", "/api/events", "/api/health"}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.Auth(PublicPrefixes...))
	if len(deps.RateLimits) > 0 {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    deps.RateLimits,
			GroupFor: func(c *gin.Context) string { return c.FullPath() },
		}))
	}
	api.GET("/health", func(c *gin.Context) {
		body := gin.H{"ok": true}
		if deps.Health != nil {
			for k, v := range deps.Health() {
				body[k] = v
			}
		}
		respond.JSON(c, http.StatusOK, body)
	})

	for _, h := range []RouteRegistrar{
		deps.UserHandler,
		deps.GoogleAuth,
		deps.ProblemSetHandler,
		deps.GeneratedSetHandler,
		deps.ProgressHandler,
	} {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
