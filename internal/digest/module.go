// Package digest provides the weekly top listings digest bounded context module.
package digest

import (
	"exits_backend/internal/digest/handler"
	"exits_backend/internal/digest/service"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/vertical"
	"exits_backend/platform/validator"
)

// Module is the digest bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the module over a configured service. enqueuer may be nil.
func NewModule(svc *service.Service, reg *vertical.Registry, val *validator.Validator, enqueuer handler.Enqueuer) *Module {
	return &Module{
		handler: handler.New(svc, val, reg, enqueuer),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "digest"
}

// Service returns the service layer for the scheduler worker and CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts digest routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/digests/:vertical/:week", m.handler.Archived)

	ctx.Admin.POST("/digests/weekly", m.handler.Send)
	ctx.Admin.GET("/digests/weekly/preview", m.handler.Preview)
	ctx.Admin.GET("/digests/runs", m.handler.Runs)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
