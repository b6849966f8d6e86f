// Package sales provides the CRM reconciliation bounded context: the
// authoritative working set the dashboard reads, local edit overlays, and
// the validation action.
package sales

import (
	"context"

	"contratos_backend/internal/events"
	apphttp "contratos_backend/internal/http"
	"contratos_backend/internal/sales/domain"
	"contratos_backend/internal/sales/handler"
	"contratos_backend/internal/sales/repository"
	"contratos_backend/internal/sales/service"
	"contratos_backend/platform/logger"
	"contratos_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sales bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the sales module with all its dependencies.
func NewModule(pool *pgxpool.Pool, crm service.CRMGateway, tombstones service.TombstoneReader, classifier domain.Classifier, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(crm, repo, tombstones, classifier, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sales"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts sales routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/sales", m.handler.List)
	ctx.V1.POST("/sales/refresh", m.handler.Refresh)
	ctx.V1.PUT("/sales/:id", m.handler.Update)
	ctx.V1.POST("/sales/:id/save", m.handler.Save)
	ctx.V1.DELETE("/sales/:id/edits", m.handler.DiscardEdit)
	ctx.V1.POST("/sales/:id/validate", m.handler.Validate)
	ctx.V1.GET("/executives", m.handler.Executives)
}

// RegisterHandlers subscribes to domain events that invalidate the cached
// snapshot's overlays.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SaleDeleted{}.EventName(), m)
	bus.Subscribe(events.SaleRestored{}.EventName(), m)
	bus.Subscribe(events.ContractGenerated{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch event.(type) {
	case events.SaleDeleted, events.SaleRestored:
		return m.service.Rebuild(ctx)
	case events.ContractGenerated:
		// The CRM now carries the number; re-reconcile picks it up on the
		// next fetch, nothing to do locally.
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
