// Package contracts provides contract number allocation and remote contract
// registration.
package contracts

import (
	"contratos_backend/internal/contracts/handler"
	"contratos_backend/internal/contracts/repository"
	"contratos_backend/internal/contracts/service"
	"contratos_backend/internal/events"
	apphttp "contratos_backend/internal/http"
	"contratos_backend/platform/logger"
	"contratos_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contracts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the contracts module.
func NewModule(pool *pgxpool.Pool, creator service.ContractCreator, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, creator, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contracts"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts contract routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/contracts", m.handler.Generate)
}

var _ apphttp.Module = (*Module)(nil)
