// Package leads provides the buyer lead bounded context module.
package leads

import (
	"exits_backend/internal/events"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/leads/handler"
	"exits_backend/internal/leads/repository"
	"exits_backend/internal/leads/service"
	"exits_backend/internal/vertical"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module.
func NewModule(
	pool *pgxpool.Pool,
	listings service.ListingLookup,
	subscribers service.SubscriberUpserter,
	eventBus events.Bus,
	reg *vertical.Registry,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(repository.New(pool), listings, subscribers, eventBus, log)
	return &Module{
		handler: handler.New(svc, val, reg),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	limit := ctx.RateLimiter.RateLimit()
	ctx.Store.POST("/leads/capture", limit, m.handler.Capture)
	ctx.API.POST("/capture-lead", ctx.RequireStore, limit, m.handler.Capture)

	ctx.Admin.GET("/leads", m.handler.List)
	ctx.Admin.PATCH("/leads/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
