package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"contratos_backend/internal/events"
	"contratos_backend/internal/sales/domain"
	"contratos_backend/internal/sales/transport"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

type fetchResult struct {
	records []domain.SaleRecord
	err     error
	gate    chan struct{}
}

type fakeCRM struct {
	mu      sync.Mutex
	fetches []fetchResult
	updated []domain.SaleRecord
}

func (f *fakeCRM) FetchSales(_ context.Context, _, _ string) ([]domain.SaleRecord, error) {
	f.mu.Lock()
	if len(f.fetches) == 0 {
		f.mu.Unlock()
		return nil, nil
	}
	next := f.fetches[0]
	f.fetches = f.fetches[1:]
	f.mu.Unlock()

	if next.gate != nil {
		<-next.gate
	}
	return next.records, next.err
}

func (f *fakeCRM) UpdateSale(_ context.Context, record domain.SaleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, record)
	return nil
}

func (f *fakeCRM) ValidateSale(_ context.Context, _, _ string) error {
	return nil
}

type fakeEditRepo struct {
	mu    sync.Mutex
	edits map[string]domain.Edit
}

func newFakeEditRepo() *fakeEditRepo {
	return &fakeEditRepo{edits: make(map[string]domain.Edit)}
}

func (f *fakeEditRepo) GetAll(_ context.Context) (map[string]domain.Edit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.Edit, len(f.edits))
	for k, v := range f.edits {
		out[k] = v
	}
	return out, nil
}

func (f *fakeEditRepo) Get(_ context.Context, saleID string) (domain.Edit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit, ok := f.edits[saleID]
	if !ok {
		return domain.Edit{}, apperr.NotFound("no edit")
	}
	return edit, nil
}

func (f *fakeEditRepo) Upsert(_ context.Context, saleID string, edit domain.Edit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[saleID] = edit
	return nil
}

func (f *fakeEditRepo) Delete(_ context.Context, saleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.edits, saleID)
	return nil
}

type fakeTombstones struct {
	ids map[string]struct{}
}

func (f *fakeTombstones) DeletedIDs(_ context.Context) (map[string]struct{}, error) {
	if f.ids == nil {
		return map[string]struct{}{}, nil
	}
	return f.ids, nil
}

func newSalesService(crm *fakeCRM, repo *fakeEditRepo, tombs *fakeTombstones) *Service {
	log := logger.New("test")
	return New(crm, repo, tombs, domain.NewClassifier(), events.NewInMemoryBus(log), log)
}

func feedOf(ids ...string) []domain.SaleRecord {
	records := make([]domain.SaleRecord, len(ids))
	for i, id := range ids {
		records[i] = domain.SaleRecord{ID: id, Name: "Cliente " + id, RawStatus: "Pendiente", SaleDate: "2025-03-10"}
	}
	return records
}

func TestRefresh_PublishesReconciledSnapshot(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1", "S-2")}}}
	svc := newSalesService(crm, newFakeEditRepo(), &fakeTombstones{})

	snapshot, err := svc.Refresh(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snapshot.Records))
	}
	if snapshot.Records[0].Stage != domain.StageValidation {
		t.Fatalf("stage not derived: %s", snapshot.Records[0].Stage)
	}
	if svc.Current() != snapshot {
		t.Fatal("snapshot not published")
	}
}

func TestRefresh_SupersededFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	crm := &fakeCRM{fetches: []fetchResult{
		{records: feedOf("old"), gate: gate},
		{records: feedOf("new")},
	}}
	svc := newSalesService(crm, newFakeEditRepo(), &fakeTombstones{})

	done := make(chan *Snapshot, 1)
	go func() {
		snapshot, _ := svc.Refresh(context.Background(), "", "")
		done <- snapshot
	}()

	// Let the slow fetch claim its generation token before the fast one runs.
	waitForGeneration(t, svc, 1)

	fast, err := svc.Refresh(context.Background(), "", "")
	if err != nil {
		t.Fatalf("fast refresh failed: %v", err)
	}
	close(gate)
	slow := <-done

	if len(fast.Records) != 1 || fast.Records[0].ID != "new" {
		t.Fatalf("fast snapshot wrong: %+v", fast.Records)
	}
	if slow != fast {
		t.Fatal("superseded fetch must resolve to the newer snapshot")
	}
	current := svc.Current()
	if current.Records[0].ID != "new" {
		t.Fatalf("stale records merged into cache: %+v", current.Records)
	}
}

func waitForGeneration(t *testing.T, svc *Service, want uint64) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if svc.generation.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("generation token never claimed")
}

func TestList_FetchFailureKeepsPreviousData(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{
		{records: feedOf("S-1")},
		{err: apperr.Unavailable("CRM caído")},
	}}
	svc := newSalesService(crm, newFakeEditRepo(), &fakeTombstones{})

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	resp, err := svc.List(context.Background(), transport.ListSalesRequest{Refresh: true})
	if err != nil {
		t.Fatalf("list must degrade, not fail: %v", err)
	}
	if !resp.Stale {
		t.Fatal("expected stale flag")
	}
	if resp.Error == "" {
		t.Fatal("expected error message alongside stale data")
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "S-1" {
		t.Fatalf("previous data cleared: %+v", resp.Items)
	}
}

func TestList_ColdCacheFetchFailureIsError(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{err: apperr.Unavailable("CRM caído")}}}
	svc := newSalesService(crm, newFakeEditRepo(), &fakeTombstones{})

	_, err := svc.List(context.Background(), transport.ListSalesRequest{})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestApplyEdit_OverlayVisibleWithoutRefetch(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1")}}}
	repo := newFakeEditRepo()
	svc := newSalesService(crm, repo, &fakeTombstones{})

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	name := "Nombre Corregido"
	resp, err := svc.ApplyEdit(context.Background(), "S-1", transport.UpdateSaleRequest{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Name != name {
		t.Fatalf("overlay not applied: %q", resp.Name)
	}
	if !resp.HasLocalEdit {
		t.Fatal("expected hasLocalEdit")
	}
}

func TestDiscardEdit_RestoresCRMValues(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1")}}}
	repo := newFakeEditRepo()
	svc := newSalesService(crm, repo, &fakeTombstones{})

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}
	name := "Editado"
	if _, err := svc.ApplyEdit(context.Background(), "S-1", transport.UpdateSaleRequest{Name: &name}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if err := svc.DiscardEdit(context.Background(), "S-1"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}

	record, ok := svc.Find("S-1")
	if !ok {
		t.Fatal("record missing after discard")
	}
	if record.Name != "Cliente S-1" {
		t.Fatalf("CRM value not restored: %q", record.Name)
	}
}

func TestSaveEdit_PushesMergedRecordAndClearsOverlay(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1")}}}
	repo := newFakeEditRepo()
	svc := newSalesService(crm, repo, &fakeTombstones{})

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}
	name := "Nombre Final"
	if _, err := svc.ApplyEdit(context.Background(), "S-1", transport.UpdateSaleRequest{Name: &name}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if err := svc.SaveEdit(context.Background(), "S-1"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if len(crm.updated) != 1 || crm.updated[0].Name != name {
		t.Fatalf("CRM did not receive merged record: %+v", crm.updated)
	}
	if _, err := repo.Get(context.Background(), "S-1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatal("overlay should be cleared after save")
	}
}

func TestSaveEdit_WithoutOverlayIsNotFound(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1")}}}
	svc := newSalesService(crm, newFakeEditRepo(), &fakeTombstones{})

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	err := svc.SaveEdit(context.Background(), "S-1")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRebuild_DropsNewlyTombstonedRecords(t *testing.T) {
	crm := &fakeCRM{fetches: []fetchResult{{records: feedOf("S-1", "S-2")}}}
	tombs := &fakeTombstones{}
	svc := newSalesService(crm, newFakeEditRepo(), tombs)

	if _, err := svc.Refresh(context.Background(), "", ""); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	tombs.ids = map[string]struct{}{"S-2": {}}
	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if _, ok := svc.Find("S-2"); ok {
		t.Fatal("tombstoned record still visible after rebuild")
	}
	if _, ok := svc.Find("S-1"); !ok {
		t.Fatal("surviving record lost on rebuild")
	}
}
