// Package tombstones provides local-first sale deletion: tombstone records,
// the trash listing and restore, with background CRM sync.
package tombstones

import (
	"contratos_backend/internal/events"
	apphttp "contratos_backend/internal/http"
	"contratos_backend/internal/tombstones/handler"
	"contratos_backend/internal/tombstones/repository"
	"contratos_backend/internal/tombstones/service"
	"contratos_backend/platform/logger"
	"contratos_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tombstones bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the tombstones module. enqueuer may be
// nil when the task queue is not configured.
func NewModule(pool *pgxpool.Pool, bus events.Bus, enqueuer service.SyncEnqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, enqueuer, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tombstones"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts tombstone routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.DELETE("/sales/:id", m.handler.Delete)
	ctx.V1.POST("/sales/:id/restore", m.handler.Restore)
	ctx.V1.GET("/trash", m.handler.Trash)
}

var _ apphttp.Module = (*Module)(nil)
