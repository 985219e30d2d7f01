package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallpaper-backend/internal/shared/config"
	"wallpaper-backend/internal/shared/metrics"
	"wallpaper-backend/internal/shared/server/middleware"
	"wallpaper-backend/internal/shared/server/respond"
	localstore "wallpaper-backend/internal/shared/storage/object/local"
)

// RouteRegistrar attaches a feature's routes to the root group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter needs. Handlers are constructed by
// the caller.
type RouterDeps struct {
	Config         config.Config
	Handlers       []RouteRegistrar
	MediaDir       string
	RateLimitRules map[string]middleware.RateLimitRule
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			GroupFor: middleware.UploadGroup,
		}),
	)

	r.GET("/api/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	if deps.MediaDir != "" {
		r.Static(localstore.MediaPath, deps.MediaDir)
	}

	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(&r.RouterGroup)
		}
	}
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
