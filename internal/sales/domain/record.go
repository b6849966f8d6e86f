// Package domain holds the pure reconciliation engine for CRM sale records:
// canonical stage classification, completion validation, edit overlays and
// filtering. Nothing in this package performs I/O.
package domain

import (
	"strings"
	"time"
)

// NoContractNumber is the CRM sentinel for "no contract assigned yet".
const NoContractNumber = "0"

// SaleRecord is one CRM sale. The CRM owns the record; local edits are an
// overlay merged on top for presentation (see Edit). Stage is derived from
// RawStatus on every reconciliation and never persisted.
type SaleRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NationalID      string `json:"nationalId"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	DeliveryAddress string `json:"deliveryAddress"`
	HouseModel      string `json:"houseModel"`
	TotalValue      int64  `json:"totalValue"`
	SaleDate        string `json:"saleDate"`
	DeliveryDate    string `json:"deliveryDate"`
	ExecutiveName   string `json:"executiveName"`
	RawStatus       string `json:"rawStatus"`
	ContractNumber  string `json:"contractNumber"`
	Stage           Stage  `json:"canonicalStage"`
}

// HasContractNumber reports whether a real contract number is assigned.
func (r SaleRecord) HasContractNumber() bool {
	return r.ContractNumber != "" && r.ContractNumber != NoContractNumber
}

// saleDateLayouts are the formats the CRM has been observed to emit.
var saleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
}

// SaleDateTime parses the record's sale date. ok is false for missing or
// unparseable dates; such records degrade to "not in any date range" rather
// than failing the batch.
func (r SaleRecord) SaleDateTime() (time.Time, bool) {
	return parseDate(r.SaleDate)
}

func parseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Edit is a partial local overlay for a sale record, keyed by record ID.
// Nil fields leave the CRM value untouched; non-nil fields win.
type Edit struct {
	Name            *string
	NationalID      *string
	Phone           *string
	Email           *string
	DeliveryAddress *string
	HouseModel      *string
	TotalValue      *int64
	SaleDate        *string
	DeliveryDate    *string
	ExecutiveName   *string
	RawStatus       *string
}

// IsZero reports whether the edit carries no overlay fields.
func (e Edit) IsZero() bool {
	return e == Edit{}
}

// Apply shallow-merges the edit over the CRM record and returns the result.
func (e Edit) Apply(r SaleRecord) SaleRecord {
	if e.Name != nil {
		r.Name = *e.Name
	}
	if e.NationalID != nil {
		r.NationalID = *e.NationalID
	}
	if e.Phone != nil {
		r.Phone = *e.Phone
	}
	if e.Email != nil {
		r.Email = *e.Email
	}
	if e.DeliveryAddress != nil {
		r.DeliveryAddress = *e.DeliveryAddress
	}
	if e.HouseModel != nil {
		r.HouseModel = *e.HouseModel
	}
	if e.TotalValue != nil {
		r.TotalValue = *e.TotalValue
	}
	if e.SaleDate != nil {
		r.SaleDate = *e.SaleDate
	}
	if e.DeliveryDate != nil {
		r.DeliveryDate = *e.DeliveryDate
	}
	if e.ExecutiveName != nil {
		r.ExecutiveName = *e.ExecutiveName
	}
	if e.RawStatus != nil {
		r.RawStatus = *e.RawStatus
	}
	return r
}
