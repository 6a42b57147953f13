// Package listings provides the read-only listings bounded context module.
package listings

import (
	"exits_backend/internal/listings/handler"
	"exits_backend/internal/listings/repository"
	"exits_backend/internal/listings/service"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/vertical"
	"exits_backend/platform/cache"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the listings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the listings module.
func NewModule(pool *pgxpool.Pool, c *cache.Cache, reg *vertical.Registry, val *validator.Validator, log *logger.Logger) *Module {
	return NewModuleWithRepository(repository.New(pool), c, reg, val, log)
}

// NewModuleWithRepository wires the module over an existing repository.
func NewModuleWithRepository(repo repository.Repository, c *cache.Cache, reg *vertical.Registry, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, c, log)
	return &Module{
		handler: handler.New(svc, val, reg),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "listings"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts listings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Store.GET("/listings", m.handler.Search)
	ctx.Store.GET("/listings/daily", m.handler.Daily)
	ctx.Store.GET("/listings/:id", m.handler.Detail)
	ctx.Store.GET("/states/:state", m.handler.State)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
