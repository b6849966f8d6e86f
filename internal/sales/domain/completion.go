package domain

import (
	"strings"

	"contratos_backend/platform/phone"
)

// CompletionResult reports whether a sale record carries every field needed
// to generate a contract. Missing lists human-readable labels in the
// declared field order; an incomplete record is an expected state, not an
// error.
type CompletionResult struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// Field labels, in the order the contract form declares them. The contract
// number is deliberately absent: it is generated, never supplied.
const (
	LabelClientName      = "Nombre del cliente"
	LabelNationalID      = "RUT del cliente"
	LabelPhone           = "Teléfono de contacto"
	LabelDeliveryAddress = "Dirección de entrega"
	LabelHouseModel      = "Modelo de casa"
	LabelTotalValue      = "Valor total"
	LabelExecutiveName   = "Ejecutivo de venta"
)

type requiredField struct {
	label   string
	present func(SaleRecord) bool
}

var requiredFields = []requiredField{
	{LabelClientName, func(r SaleRecord) bool { return strings.TrimSpace(r.Name) != "" }},
	{LabelNationalID, func(r SaleRecord) bool { return strings.TrimSpace(r.NationalID) != "" }},
	{LabelPhone, func(r SaleRecord) bool { return phone.NormalizeE164(r.Phone) != "" }},
	{LabelDeliveryAddress, func(r SaleRecord) bool { return strings.TrimSpace(r.DeliveryAddress) != "" }},
	{LabelHouseModel, func(r SaleRecord) bool { return strings.TrimSpace(r.HouseModel) != "" }},
	{LabelTotalValue, func(r SaleRecord) bool { return r.TotalValue > 0 }},
	{LabelExecutiveName, func(r SaleRecord) bool { return strings.TrimSpace(r.ExecutiveName) != "" }},
}

// ValidateCompletion checks contract-generation readiness. A nil record is a
// fully-missing result rather than an error.
func ValidateCompletion(record *SaleRecord) CompletionResult {
	missing := make([]string, 0, len(requiredFields))

	if record == nil {
		for _, f := range requiredFields {
			missing = append(missing, f.label)
		}
		return CompletionResult{Complete: false, Missing: missing}
	}

	for _, f := range requiredFields {
		if !f.present(*record) {
			missing = append(missing, f.label)
		}
	}

	return CompletionResult{Complete: len(missing) == 0, Missing: missing}
}
