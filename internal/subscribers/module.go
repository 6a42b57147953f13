// Package subscribers provides the digest subscription bounded context module.
package subscribers

import (
	"exits_backend/internal/events"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/subscribers/handler"
	"exits_backend/internal/subscribers/repository"
	"exits_backend/internal/subscribers/service"
	"exits_backend/internal/vertical"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the subscribers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the subscribers module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, reg *vertical.Registry, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{
		handler: handler.New(svc, val, reg),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "subscribers"
}

// Service returns the service layer for lead capture and the digest.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts subscription routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Store.POST("/subscribe", ctx.RateLimiter.RateLimit(), m.handler.Subscribe)
	ctx.Store.POST("/subscribe/confirm", m.handler.Confirm)
	ctx.Store.GET("/subscribe/confirm", m.handler.ConfirmLink)
	ctx.Store.GET("/unsubscribe", m.handler.LookupUnsubscribe)
	ctx.Store.POST("/unsubscribe", m.handler.Unsubscribe)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
