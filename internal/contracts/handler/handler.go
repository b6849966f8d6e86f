package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contratos_backend/internal/contracts/service"
	"contratos_backend/internal/contracts/transport"
	"contratos_backend/platform/httpkit"
	"contratos_backend/platform/validator"
)

// Handler handles HTTP requests for contract generation.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new contracts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Generate allocates and registers a contract for a sale.
// POST /api/v1/contracts
func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req.SaleID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.GenerateContractResponse{
		SaleID:         result.SaleID,
		ContractNumber: result.ContractNumber,
	})
}
