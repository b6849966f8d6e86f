package domain

import (
	"strings"
	"time"
)

// FilterState is the immutable filter a caller applies to a reconciled set.
// Applying a filter never mutates the underlying records.
type FilterState struct {
	DateStart *time.Time
	DateEnd   *time.Time
	Executive string
	Status    string
	Query     string
}

// InDateRange reports whether the record's sale date falls inside the
// filter's date window. Records with unparseable dates are never inside a
// date window, but they still count in unfiltered views.
func (f FilterState) InDateRange(r SaleRecord) bool {
	if f.DateStart == nil && f.DateEnd == nil {
		return true
	}

	saleDate, ok := r.SaleDateTime()
	if !ok {
		return false
	}
	if f.DateStart != nil && saleDate.Before(*f.DateStart) {
		return false
	}
	if f.DateEnd != nil && saleDate.After(*f.DateEnd) {
		return false
	}
	return true
}

// Matches applies every filter dimension to a single record.
func (f FilterState) Matches(r SaleRecord) bool {
	if !f.InDateRange(r) {
		return false
	}
	if f.Executive != "" && !strings.EqualFold(CleanExecutiveName(r.ExecutiveName), f.Executive) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(string(r.Stage), f.Status) {
		return false
	}
	if f.Query != "" && !matchesQuery(r, f.Query) {
		return false
	}
	return true
}

func matchesQuery(r SaleRecord, query string) bool {
	q := normalizeStatus(query)
	for _, field := range []string{
		r.ID, r.Name, r.NationalID, r.Phone, r.Email,
		r.DeliveryAddress, r.HouseModel, r.ExecutiveName, r.ContractNumber,
	} {
		if strings.Contains(normalizeStatus(field), q) {
			return true
		}
	}
	return false
}

// ApplyFilter returns the records matching the filter, in input order.
// The input slice is never modified.
func ApplyFilter(records []SaleRecord, f FilterState) []SaleRecord {
	result := make([]SaleRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			result = append(result, r)
		}
	}
	return result
}
