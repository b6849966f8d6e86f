// Package stats provides the dashboard aggregates endpoint.
package stats

import (
	apphttp "contratos_backend/internal/http"
	"contratos_backend/internal/stats/handler"
	"contratos_backend/internal/stats/service"
	"contratos_backend/platform/validator"
)

// Module is the stats module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the stats module.
func NewModule(records service.RecordSource, val *validator.Validator) *Module {
	svc := service.New(records)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "stats"
}

// RegisterRoutes mounts stats routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/stats", m.handler.Stats)
}

var _ apphttp.Module = (*Module)(nil)
