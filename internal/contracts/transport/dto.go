package transport

// GenerateContractRequest identifies the sale to contract.
type GenerateContractRequest struct {
	SaleID string `json:"saleId" validate:"required,max=100"`
}

// GenerateContractResponse returns the allocated number.
type GenerateContractResponse struct {
	SaleID         string `json:"saleId"`
	ContractNumber string `json:"contractNumber"`
}
