// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"exits_backend/internal/events"
	"exits_backend/internal/vertical"
	"exits_backend/platform/config"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.AdminConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and admin settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks. Nil when the store is not configured.
	Health HealthChecker
	// StoreAvailable gates every route that reads or writes the listings store.
	StoreAvailable bool
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Verticals is the static vertical registry.
	Verticals *vertical.Registry
	// Validator is shared with handlers mounted by the router itself.
	Validator *validator.Validator
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
