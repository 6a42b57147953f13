// Package router assembles the gin engine from the application modules.
package router

import (
	"context"
	"net/http"
	"time"

	financehandler "exits_backend/internal/finance/handler"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/metrics"
	"exits_backend/platform/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(metrics.GinMiddleware())
	engine.Use(cors.New(corsConfig(app.Config)))
	engine.Use(vertical.Middleware(app.Verticals))

	engine.GET("/health", healthHandler(app))
	engine.GET("/api/health", healthHandler(app))
	engine.GET("/metrics", metrics.Handler())

	val := app.Validator
	if val == nil {
		val = validator.New()
	}

	api := engine.Group("/api")
	v1 := api.Group("/v1")
	requireStore := httpkit.RequireAvailable(app.StoreAvailable)
	store := v1.Group("", requireStore)
	admin := v1.Group("/admin", requireStore, httpkit.AdminRequired(app.Config))

	vertical.NewHandler(app.Verticals).RegisterRoutes(v1)
	financehandler.New(val, app.Verticals).RegisterRoutes(v1)

	ctx := &apphttp.RouterContext{
		Engine:       engine,
		API:          api,
		V1:           v1,
		Store:        store,
		Admin:        admin,
		RequireStore: requireStore,
		RateLimiter:  httpkit.NewPerMinuteLimiter(app.Config.GetRateLimitPerMinute(), app.Logger),
		Verticals:    app.Verticals,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Debug("registered module routes", "module", module.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Vertical-Slug", "X-Vertical-Name", "X-Vertical-Domain", "X-Digest-Subject"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	origins := make([]string, 0, len(cfg.GetCORSOrigins()))
	for _, origin := range cfg.GetCORSOrigins() {
		if origin != "*" {
			origins = append(origins, origin)
		}
	}
	if cfg.GetCORSAllowAll() || len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := "unconfigured"
		if app.StoreAvailable && app.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()

			store = "ok"
			if err := app.Health.Ping(ctx); err != nil {
				app.Logger.WithContext(c.Request.Context()).Warn("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": store})
	}
}
