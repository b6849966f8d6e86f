package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contratos_backend/internal/stats/service"
	"contratos_backend/internal/stats/transport"
	"contratos_backend/platform/httpkit"
	"contratos_backend/platform/validator"
)

// Handler handles HTTP requests for dashboard stats.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new stats handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Stats returns the aggregates for the requested window.
// GET /api/v1/stats
func (h *Handler) Stats(c *gin.Context) {
	var req transport.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	stats, err := h.svc.Compute(c.Request.Context(), req.DateStart, req.DateEnd, req.Executive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}
