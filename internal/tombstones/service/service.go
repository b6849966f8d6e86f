// Package service implements local-first sale deletion. A delete writes a
// durable tombstone, hides the record immediately, and syncs the deletion to
// the CRM in the background; the CRM never gates the user-visible outcome.
package service

import (
	"context"
	"time"

	"contratos_backend/internal/events"
	"contratos_backend/internal/sales/domain"
	"contratos_backend/internal/tombstones/repository"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

// RecordSource looks a sale up in the current reconciled snapshot. Wired in
// after construction to break the sales<->tombstones cycle.
type RecordSource interface {
	Find(saleID string) (domain.SaleRecord, bool)
}

// SyncEnqueuer schedules the background CRM deletion. May be absent when the
// task queue is not configured.
type SyncEnqueuer interface {
	EnqueueSaleDeleteSync(ctx context.Context, saleID string) error
}

// Service provides business logic for sale tombstones.
type Service struct {
	repo     repository.Repository
	bus      events.Bus
	enqueuer SyncEnqueuer
	log      *logger.Logger

	records RecordSource

	now func() time.Time
}

// New creates a new tombstone service. enqueuer may be nil.
func New(repo repository.Repository, bus events.Bus, enqueuer SyncEnqueuer, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		bus:      bus,
		enqueuer: enqueuer,
		log:      log,
		now:      time.Now,
	}
}

// SetRecordSource wires the snapshot lookup. Called once from the
// composition root.
func (s *Service) SetRecordSource(src RecordSource) {
	s.records = src
}

// Delete tombstones a sale. The tombstone write is the commit point: once it
// succeeds the record disappears locally regardless of whether the CRM sync
// ever lands.
func (s *Service) Delete(ctx context.Context, saleID, reason string) error {
	var snapshot domain.SaleRecord
	if s.records != nil {
		if record, ok := s.records.Find(saleID); ok {
			snapshot = record
		}
	}
	if snapshot.ID == "" {
		snapshot.ID = saleID
	}

	tombstone := repository.Tombstone{
		SaleID:    saleID,
		Snapshot:  snapshot,
		Reason:    reason,
		DeletedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, tombstone); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.SaleDeleted{
		BaseEvent: events.NewBaseEvent(),
		SaleID:    saleID,
		Reason:    reason,
	})

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueSaleDeleteSync(ctx, saleID); err != nil {
			// Best effort: the local delete already committed.
			s.log.SyncEvent("enqueue sale delete sync", saleID, err)
		}
	}

	s.log.Info("sale tombstoned", "saleId", saleID, "reason", reason)
	return nil
}

// Restore removes the tombstone so the sale reappears on the next
// reconciliation, provided the CRM feed still carries it.
func (s *Service) Restore(ctx context.Context, saleID string) error {
	if err := s.repo.Delete(ctx, saleID); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.SaleRestored{
		BaseEvent: events.NewBaseEvent(),
		SaleID:    saleID,
	})

	s.log.Info("sale restored", "saleId", saleID)
	return nil
}

// List returns the current tombstones, most recent first.
func (s *Service) List(ctx context.Context) ([]repository.Tombstone, error) {
	tombstones, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "no se pudieron cargar las ventas eliminadas", err)
	}
	if tombstones == nil {
		tombstones = []repository.Tombstone{}
	}
	return tombstones, nil
}

// DeletedIDs exposes the tombstoned ID set to the reconciler.
func (s *Service) DeletedIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.repo.DeletedIDs(ctx)
}
