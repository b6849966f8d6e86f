package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"contratos_backend/internal/contracts/repository"
	"contratos_backend/internal/crm"
	"contratos_backend/internal/events"
	salesdomain "contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

type fakeReservations struct {
	active map[string]string
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{active: make(map[string]string)}
}

func (f *fakeReservations) Reserve(_ context.Context, number, saleID string) error {
	if _, taken := f.active[number]; taken {
		return repository.ErrNumberTaken
	}
	f.active[number] = saleID
	return nil
}

func (f *fakeReservations) Confirm(_ context.Context, number string) error {
	if _, ok := f.active[number]; !ok {
		return apperr.NotFound("no reservation")
	}
	return nil
}

func (f *fakeReservations) Release(_ context.Context, number string) error {
	delete(f.active, number)
	return nil
}

func (f *fakeReservations) ActiveNumbers(_ context.Context) ([]string, error) {
	numbers := make([]string, 0, len(f.active))
	for n := range f.active {
		numbers = append(numbers, n)
	}
	return numbers, nil
}

type fakeCreator struct {
	errs    []error
	created []string
}

func (f *fakeCreator) CreateContract(_ context.Context, params crm.CreateContractParams) error {
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err == nil {
		f.created = append(f.created, params.ContractNumber)
	}
	return err
}

type fakeProvider struct {
	sets [][]salesdomain.SaleRecord
}

func (f *fakeProvider) RefreshAll(_ context.Context) ([]salesdomain.SaleRecord, error) {
	if len(f.sets) == 0 {
		return nil, nil
	}
	records := f.sets[0]
	if len(f.sets) > 1 {
		f.sets = f.sets[1:]
	}
	return records, nil
}

func contractableSale(id string) salesdomain.SaleRecord {
	return salesdomain.SaleRecord{
		ID:              id,
		Name:            "Carolina Muñoz",
		NationalID:      "12.345.678-5",
		Phone:           "+56987654321",
		DeliveryAddress: "Camino El Alba 123",
		HouseModel:      "Mediterránea 54",
		TotalValue:      48_500_000,
		ExecutiveName:   "María Soto",
		RawStatus:       "Validación",
		ContractNumber:  salesdomain.NoContractNumber,
	}
}

func newTestService(repo repository.Repository, creator ContractCreator, provider RecordSetProvider) *Service {
	log := logger.New("test")
	svc := New(repo, creator, events.NewInMemoryBus(log), log)
	svc.SetRecordSetProvider(provider)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestGenerate_AllocatesSuccessorAndConfirms(t *testing.T) {
	existing := salesdomain.SaleRecord{ID: "S-0", ContractNumber: "2024-007"}
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{{existing, contractableSale("S-1")}}}
	repo := newFakeReservations()
	creator := &fakeCreator{}

	svc := newTestService(repo, creator, provider)

	result, err := svc.Generate(context.Background(), "S-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContractNumber != "2025-008" {
		t.Fatalf("contractNumber = %q, want 2025-008", result.ContractNumber)
	}
	if len(creator.created) != 1 || creator.created[0] != "2025-008" {
		t.Fatalf("CRM created %v", creator.created)
	}
	if _, reserved := repo.active["2025-008"]; !reserved {
		t.Fatal("winning number not retained in reservations")
	}
}

func TestGenerate_DuplicateRecomputesOnceFromFreshData(t *testing.T) {
	first := []salesdomain.SaleRecord{contractableSale("S-1")}
	// The refetch reveals the number another client just took.
	second := []salesdomain.SaleRecord{
		{ID: "S-0", ContractNumber: "2025-001"},
		contractableSale("S-1"),
	}
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{first, second}}
	repo := newFakeReservations()
	creator := &fakeCreator{errs: []error{crm.ErrDuplicateNumber}}

	svc := newTestService(repo, creator, provider)

	result, err := svc.Generate(context.Background(), "S-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContractNumber != "2025-002" {
		t.Fatalf("contractNumber = %q, want recomputed 2025-002", result.ContractNumber)
	}
	if _, stale := repo.active["2025-001"]; stale {
		t.Fatal("rejected number still reserved")
	}
}

func TestGenerate_SecondDuplicateIsConflict(t *testing.T) {
	records := []salesdomain.SaleRecord{contractableSale("S-1")}
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{records}}
	repo := newFakeReservations()
	creator := &fakeCreator{errs: []error{crm.ErrDuplicateNumber, crm.ErrDuplicateNumber}}

	svc := newTestService(repo, creator, provider)

	_, err := svc.Generate(context.Background(), "S-1")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.active) != 0 {
		t.Fatalf("reservations not rolled back: %v", repo.active)
	}
}

func TestGenerate_IncompleteSaleIsRejected(t *testing.T) {
	sale := contractableSale("S-1")
	sale.DeliveryAddress = ""
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{{sale}}}
	repo := newFakeReservations()
	creator := &fakeCreator{}

	svc := newTestService(repo, creator, provider)

	_, err := svc.Generate(context.Background(), "S-1")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(creator.created) != 0 {
		t.Fatal("CRM must not be called for incomplete sales")
	}
	if len(repo.active) != 0 {
		t.Fatal("no reservation should be made for incomplete sales")
	}
}

func TestGenerate_ExistingContractIsConflict(t *testing.T) {
	sale := contractableSale("S-1")
	sale.ContractNumber = "2024-003"
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{{sale}}}

	svc := newTestService(newFakeReservations(), &fakeCreator{}, provider)

	_, err := svc.Generate(context.Background(), "S-1")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGenerate_UnknownSaleIsNotFound(t *testing.T) {
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{{}}}

	svc := newTestService(newFakeReservations(), &fakeCreator{}, provider)

	_, err := svc.Generate(context.Background(), "S-404")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerate_RemoteFailureReleasesReservation(t *testing.T) {
	provider := &fakeProvider{sets: [][]salesdomain.SaleRecord{{contractableSale("S-1")}}}
	repo := newFakeReservations()
	creator := &fakeCreator{errs: []error{errors.New("crm exploded")}}

	svc := newTestService(repo, creator, provider)

	_, err := svc.Generate(context.Background(), "S-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.active) != 0 {
		t.Fatalf("reservation leaked: %v", repo.active)
	}
}
