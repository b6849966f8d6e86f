// Package service orchestrates CRM fetches, reconciliation and the shared
// snapshot cache for the sales module.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"contratos_backend/internal/events"
	"contratos_backend/internal/sales/domain"
	"contratos_backend/internal/sales/repository"
	"contratos_backend/internal/sales/transport"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

// CRMGateway is the slice of the CRM client the sales module needs.
type CRMGateway interface {
	FetchSales(ctx context.Context, dateStart, dateEnd string) ([]domain.SaleRecord, error)
	UpdateSale(ctx context.Context, record domain.SaleRecord) error
	ValidateSale(ctx context.Context, saleID, notes string) error
}

// TombstoneReader exposes the deleted-ID set to the reconciler.
type TombstoneReader interface {
	DeletedIDs(ctx context.Context) (map[string]struct{}, error)
}

// Snapshot is one complete reconciled record set. Snapshots are immutable
// once published: a re-fetch builds a new one and swaps it in whole, so
// concurrent readers see either the old set or the new set, never a partial
// interleave.
type Snapshot struct {
	// Feed is the raw CRM record set the snapshot was reconciled from.
	Feed []domain.SaleRecord
	// Records is the reconciled working set (tombstones filtered, edits
	// applied, stages derived).
	Records    []domain.SaleRecord
	Generation uint64
	DateStart  string
	DateEnd    string
	FetchedAt  time.Time
	// EditedIDs marks records that currently carry a local overlay.
	EditedIDs map[string]struct{}
}

// Service provides business logic for the sales module.
type Service struct {
	crm        CRMGateway
	repo       repository.Repository
	tombstones TombstoneReader
	classifier domain.Classifier
	bus        events.Bus
	log        *logger.Logger

	// generation is the monotonic request token: a fetch whose token is no
	// longer current at resolution time is discarded, never merged.
	generation atomic.Uint64

	mu      sync.RWMutex
	current *Snapshot
}

// New creates a new sales service.
func New(crm CRMGateway, repo repository.Repository, tombstones TombstoneReader, classifier domain.Classifier, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		crm:        crm,
		repo:       repo,
		tombstones: tombstones,
		classifier: classifier,
		bus:        bus,
		log:        log,
	}
}

// Current returns the latest published snapshot, or nil before the first
// successful refresh.
func (s *Service) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh fetches the CRM feed for the given window, reconciles it and swaps
// the snapshot. A fetch superseded by a newer one is discarded and the newer
// snapshot is returned instead. On failure the previous snapshot stays
// published and is returned alongside the error.
func (s *Service) Refresh(ctx context.Context, dateStart, dateEnd string) (*Snapshot, error) {
	gen := s.generation.Add(1)

	feed, err := s.crm.FetchSales(ctx, dateStart, dateEnd)
	if err != nil {
		s.log.Warn("CRM fetch failed, keeping previous snapshot", "error", err)
		return s.Current(), err
	}

	if s.generation.Load() != gen {
		s.log.Debug("discarding superseded CRM fetch", "generation", gen)
		return s.Current(), nil
	}

	snapshot, err := s.reconcileFeed(ctx, gen, dateStart, dateEnd, feed)
	if err != nil {
		return s.Current(), err
	}

	if !s.publish(snapshot) {
		return s.Current(), nil
	}

	s.bus.Publish(ctx, events.FeedRefreshed{
		BaseEvent:   events.NewBaseEvent(),
		Generation:  snapshot.Generation,
		RecordCount: len(snapshot.Records),
		DateStart:   dateStart,
		DateEnd:     dateEnd,
	})

	return snapshot, nil
}

// RefreshAll fetches the complete, unwindowed dataset. Contract generation
// uses this immediately before allocating a number, so the allocator sees
// every known contract number.
func (s *Service) RefreshAll(ctx context.Context) ([]domain.SaleRecord, error) {
	snapshot, err := s.Refresh(ctx, "", "")
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, apperr.Unavailable("no hay datos del CRM disponibles")
	}
	return snapshot.Records, nil
}

// reconcileFeed runs the pure reconciliation against the current overlays
// and tombstones.
func (s *Service) reconcileFeed(ctx context.Context, gen uint64, dateStart, dateEnd string, feed []domain.SaleRecord) (*Snapshot, error) {
	var (
		edits   map[string]domain.Edit
		deleted map[string]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if edits, err = s.repo.GetAll(gctx); err != nil {
			s.log.DatabaseError("load sale edits", err)
			return apperr.Wrap(apperr.KindInternal, "no se pudieron cargar las ediciones locales", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if deleted, err = s.tombstones.DeletedIDs(gctx); err != nil {
			s.log.DatabaseError("load tombstones", err)
			return apperr.Wrap(apperr.KindInternal, "no se pudieron cargar los registros eliminados", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := domain.Reconcile(s.classifier, feed, edits, func(id string) bool {
		_, ok := deleted[id]
		return ok
	})

	editedIDs := make(map[string]struct{}, len(edits))
	for id := range edits {
		editedIDs[id] = struct{}{}
	}

	return &Snapshot{
		Feed:       feed,
		Records:    records,
		Generation: gen,
		DateStart:  dateStart,
		DateEnd:    dateEnd,
		FetchedAt:  time.Now(),
		EditedIDs:  editedIDs,
	}, nil
}

// publish swaps the snapshot in if no newer snapshot won the race.
func (s *Service) publish(snapshot *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Generation > snapshot.Generation {
		return false
	}
	s.current = snapshot
	return true
}

// Rebuild re-runs reconciliation over the cached feed without refetching,
// e.g. after an edit, delete or restore changed the local overlays.
func (s *Service) Rebuild(ctx context.Context) error {
	current := s.Current()
	if current == nil {
		return nil
	}

	snapshot, err := s.reconcileFeed(ctx, current.Generation, current.DateStart, current.DateEnd, current.Feed)
	if err != nil {
		return err
	}
	snapshot.FetchedAt = current.FetchedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != current {
		// A newer fetch swapped in meanwhile; it already saw the new overlays.
		return nil
	}
	s.current = snapshot
	return nil
}

// List returns the reconciled records for the dashboard. A date window (or
// refresh=true, or a cold cache) triggers a CRM fetch; secondary filters are
// applied locally. A failed fetch degrades to the previous snapshot with
// Stale and Error set rather than clearing data.
func (s *Service) List(ctx context.Context, req transport.ListSalesRequest) (transport.SalesListResponse, error) {
	snapshot := s.Current()

	var fetchErr error
	windowChanged := snapshot == nil || snapshot.DateStart != req.DateStart || snapshot.DateEnd != req.DateEnd
	if req.Refresh || windowChanged {
		snapshot, fetchErr = s.Refresh(ctx, req.DateStart, req.DateEnd)
	}

	if snapshot == nil {
		if fetchErr != nil {
			return transport.SalesListResponse{}, fetchErr
		}
		return transport.SalesListResponse{Items: []transport.SaleResponse{}}, nil
	}

	filter := domain.FilterState{
		Executive: req.Executive,
		Status:    req.Status,
		Query:     req.Query,
	}
	filtered := domain.ApplyFilter(snapshot.Records, filter)
	sorted := domain.SortBySaleDateDesc(filtered)

	items := make([]transport.SaleResponse, len(sorted))
	for i, record := range sorted {
		items[i] = toResponse(record, snapshot.EditedIDs)
	}

	resp := transport.SalesListResponse{
		Items:      items,
		Total:      len(items),
		Generation: snapshot.Generation,
		FetchedAt:  snapshot.FetchedAt.Format(time.RFC3339),
	}
	if fetchErr != nil {
		resp.Stale = true
		resp.Error = fetchErr.Error()
	}
	return resp, nil
}

// Records returns the reconciled records for the given window, refreshing
// when it differs from the cached snapshot. On a failed refresh the previous
// records are returned if any exist.
func (s *Service) Records(ctx context.Context, dateStart, dateEnd string) ([]domain.SaleRecord, error) {
	snapshot := s.Current()
	if snapshot == nil || snapshot.DateStart != dateStart || snapshot.DateEnd != dateEnd {
		refreshed, err := s.Refresh(ctx, dateStart, dateEnd)
		if refreshed == nil {
			return nil, err
		}
		snapshot = refreshed
	}
	return snapshot.Records, nil
}

// Find looks a record up in the current snapshot.
func (s *Service) Find(saleID string) (domain.SaleRecord, bool) {
	snapshot := s.Current()
	if snapshot == nil {
		return domain.SaleRecord{}, false
	}
	for _, record := range snapshot.Records {
		if record.ID == saleID {
			return record, true
		}
	}
	return domain.SaleRecord{}, false
}

// ApplyEdit stores a local overlay for the sale and re-reconciles the cached
// snapshot so the dashboard reflects it immediately. Nothing is sent to the
// CRM until SaveEdit.
func (s *Service) ApplyEdit(ctx context.Context, saleID string, req transport.UpdateSaleRequest) (transport.SaleResponse, error) {
	edit := toEdit(req)
	if edit.IsZero() {
		return transport.SaleResponse{}, apperr.BadRequest("la edición no contiene campos")
	}

	if err := s.repo.Upsert(ctx, saleID, edit); err != nil {
		return transport.SaleResponse{}, err
	}

	if err := s.Rebuild(ctx); err != nil {
		return transport.SaleResponse{}, err
	}

	s.log.Info("local edit stored", "saleId", saleID)

	if record, ok := s.Find(saleID); ok {
		snapshot := s.Current()
		return toResponse(record, snapshot.EditedIDs), nil
	}
	return transport.SaleResponse{}, apperr.NotFound("la venta no está en el conjunto actual")
}

// SaveEdit propagates the merged record downstream to the CRM and, on
// success, clears the local overlay. On failure the overlay survives so the
// user can retry.
func (s *Service) SaveEdit(ctx context.Context, saleID string) error {
	if _, err := s.repo.Get(ctx, saleID); err != nil {
		return err
	}

	record, ok := s.Find(saleID)
	if !ok {
		return apperr.NotFound("la venta no está en el conjunto actual")
	}

	if err := s.crm.UpdateSale(ctx, record); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, saleID); err != nil {
		return err
	}

	s.log.Info("local edit saved to CRM", "saleId", saleID)
	return s.Rebuild(ctx)
}

// DiscardEdit drops the local overlay and restores the CRM values in the
// snapshot.
func (s *Service) DiscardEdit(ctx context.Context, saleID string) error {
	if err := s.repo.Delete(ctx, saleID); err != nil {
		return err
	}
	s.log.Info("local edit discarded", "saleId", saleID)
	return s.Rebuild(ctx)
}

// Validate asks the CRM to advance the sale's stage. Deliberately not
// optimistic: local state only changes once a later fetch shows the new
// status.
func (s *Service) Validate(ctx context.Context, saleID, notes string) error {
	if _, ok := s.Find(saleID); !ok {
		return apperr.NotFound("la venta no está en el conjunto actual")
	}
	return s.crm.ValidateSale(ctx, saleID, notes)
}

// Executives derives the executive list from the current snapshot.
func (s *Service) Executives() transport.ExecutivesResponse {
	snapshot := s.Current()
	if snapshot == nil {
		return transport.ExecutivesResponse{Items: []string{}}
	}
	names := domain.DeriveExecutives(snapshot.Records)
	return transport.ExecutivesResponse{Items: names, Total: len(names)}
}

func toResponse(r domain.SaleRecord, editedIDs map[string]struct{}) transport.SaleResponse {
	completion := domain.ValidateCompletion(&r)
	_, hasEdit := editedIDs[r.ID]

	contractNumber := r.ContractNumber
	if contractNumber == domain.NoContractNumber {
		contractNumber = ""
	}

	return transport.SaleResponse{
		ID:              r.ID,
		Name:            r.Name,
		NationalID:      r.NationalID,
		Phone:           r.Phone,
		Email:           r.Email,
		DeliveryAddress: r.DeliveryAddress,
		HouseModel:      r.HouseModel,
		TotalValue:      r.TotalValue,
		SaleDate:        r.SaleDate,
		DeliveryDate:    r.DeliveryDate,
		ExecutiveName:   r.ExecutiveName,
		RawStatus:       r.RawStatus,
		CanonicalStage:  string(r.Stage),
		ContractNumber:  contractNumber,
		Complete:        completion.Complete,
		MissingFields:   completion.Missing,
		HasLocalEdit:    hasEdit,
	}
}

func toEdit(req transport.UpdateSaleRequest) domain.Edit {
	return domain.Edit{
		Name:            req.Name,
		NationalID:      req.NationalID,
		Phone:           req.Phone,
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress,
		HouseModel:      req.HouseModel,
		TotalValue:      req.TotalValue,
		SaleDate:        req.SaleDate,
		DeliveryDate:    req.DeliveryDate,
		ExecutiveName:   req.ExecutiveName,
		RawStatus:       req.RawStatus,
	}
}
