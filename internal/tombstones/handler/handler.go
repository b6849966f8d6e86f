package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contratos_backend/internal/tombstones/service"
	"contratos_backend/internal/tombstones/transport"
	"contratos_backend/platform/httpkit"
	"contratos_backend/platform/validator"
)

// Handler handles HTTP requests for sale tombstones.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new tombstones handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Delete tombstones a sale. The response reflects the local outcome only;
// CRM propagation happens in the background.
// DELETE /api/v1/sales/:id
func (h *Handler) Delete(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, "sale id is required", nil)
		return
	}

	var req transport.DeleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), saleID, req.Reason); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, gin.H{"status": "deleted"})
}

// Restore brings a tombstoned sale back.
// POST /api/v1/sales/:id/restore
func (h *Handler) Restore(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, "sale id is required", nil)
		return
	}

	if err := h.svc.Restore(c.Request.Context(), saleID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "restored"})
}

// Trash lists deleted sales.
// GET /api/v1/trash
func (h *Handler) Trash(c *gin.Context) {
	tombstones, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.TombstoneResponse, len(tombstones))
	for i, t := range tombstones {
		items[i] = transport.TombstoneResponse{
			SaleID:        t.SaleID,
			ClientName:    t.Snapshot.Name,
			ExecutiveName: t.Snapshot.ExecutiveName,
			Reason:        t.Reason,
			DeletedAt:     t.DeletedAt.Format(time.RFC3339),
		}
	}
	httpkit.OK(c, transport.TrashResponse{Items: items, Total: len(items)})
}
