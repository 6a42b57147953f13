// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	// The RouterContext provides access to shared middleware and configuration.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
// This avoids passing many parameters to each module's RegisterRoutes method.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// API is the unversioned /api group kept for legacy form posts.
	API *gin.RouterGroup
	// V1 is the /api/v1 route group. Routes here never touch the store.
	V1 *gin.RouterGroup
	// Store is /api/v1 guarded by the store availability check.
	Store *gin.RouterGroup
	// Admin is /api/v1/admin behind the store check and the admin token.
	Admin *gin.RouterGroup
	// RequireStore is the availability guard used by Store and Admin.
	RequireStore gin.HandlerFunc
	// RateLimiter throttles public write endpoints per client IP.
	RateLimiter *httpkit.IPRateLimiter
	// Verticals is the registry resolved by the vertical middleware.
	Verticals *vertical.Registry
}
