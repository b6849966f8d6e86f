package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contratos_backend/internal/sales/service"
	"contratos_backend/internal/sales/transport"
	"contratos_backend/platform/httpkit"
	"contratos_backend/platform/validator"
)

// Handler handles HTTP requests for the sales module.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingID        = "sale id is required"
)

// New creates a new sales handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the reconciled, filtered record set.
// GET /api/v1/sales
func (h *Handler) List(c *gin.Context) {
	var req transport.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Refresh forces a CRM re-fetch of the current window.
// POST /api/v1/sales/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	req.Refresh = true

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update stores a local edit overlay for a sale.
// PUT /api/v1/sales/:id
func (h *Handler) Update(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingID, nil)
		return
	}

	var req transport.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ApplyEdit(c.Request.Context(), saleID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Save propagates the local overlay downstream to the CRM.
// POST /api/v1/sales/:id/save
func (h *Handler) Save(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingID, nil)
		return
	}

	if err := h.svc.SaveEdit(c.Request.Context(), saleID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "saved"})
}

// DiscardEdit drops the local overlay.
// DELETE /api/v1/sales/:id/edits
func (h *Handler) DiscardEdit(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingID, nil)
		return
	}

	if err := h.svc.DiscardEdit(c.Request.Context(), saleID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "discarded"})
}

// Validate asks the CRM to advance the sale's workflow stage.
// POST /api/v1/sales/:id/validate
func (h *Handler) Validate(c *gin.Context) {
	saleID := c.Param("id")
	if saleID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingID, nil)
		return
	}

	var req transport.ValidateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.Validate(c.Request.Context(), saleID, req.Notes); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "validated"})
}

// Executives lists the executive names in the current snapshot.
// GET /api/v1/executives
func (h *Handler) Executives(c *gin.Context) {
	httpkit.OK(c, h.svc.Executives())
}
