// Package service exposes dashboard aggregates computed from the sales
// snapshot.
package service

import (
	"context"

	salesdomain "contratos_backend/internal/sales/domain"
	"contratos_backend/internal/stats/domain"
)

// RecordSource returns the reconciled records for a date window, refreshing
// when the window differs from the cached snapshot.
type RecordSource interface {
	Records(ctx context.Context, dateStart, dateEnd string) ([]salesdomain.SaleRecord, error)
}

// Service provides business logic for dashboard stats.
type Service struct {
	records RecordSource
}

// New creates a new stats service.
func New(records RecordSource) *Service {
	return &Service{records: records}
}

// Compute aggregates the record set for the given window. The executive
// filter narrows the set the same way the dashboard table does, so the cards
// and the table always describe the same records.
func (s *Service) Compute(ctx context.Context, dateStart, dateEnd, executive string) (domain.Stats, error) {
	records, err := s.records.Records(ctx, dateStart, dateEnd)
	if err != nil {
		return domain.Stats{}, err
	}

	if executive != "" {
		records = salesdomain.ApplyFilter(records, salesdomain.FilterState{Executive: executive})
	}

	return domain.Aggregate(records), nil
}
