// Package service orchestrates contract generation: completeness gate,
// number allocation against the freshest full dataset, local reservation and
// the remote creation call with a single recompute retry on duplicates.
package service

import (
	"context"
	"errors"
	"time"

	"contratos_backend/internal/contracts/domain"
	"contratos_backend/internal/contracts/repository"
	"contratos_backend/internal/crm"
	"contratos_backend/internal/events"
	salesdomain "contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

// RecordSetProvider refreshes and exposes the full reconciled dataset. The
// allocator must see every contract number the CRM knows about, so Generate
// always refreshes before computing a number.
type RecordSetProvider interface {
	RefreshAll(ctx context.Context) ([]salesdomain.SaleRecord, error)
}

// ContractCreator is the slice of the CRM client the contracts module needs.
type ContractCreator interface {
	CreateContract(ctx context.Context, params crm.CreateContractParams) error
}

// Service provides business logic for contract generation.
type Service struct {
	repo    repository.Repository
	creator ContractCreator
	bus     events.Bus
	log     *logger.Logger

	records RecordSetProvider

	now func() time.Time
}

// New creates a new contracts service.
func New(repo repository.Repository, creator ContractCreator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		creator: creator,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// SetRecordSetProvider wires the dataset refresher. Called once from the
// composition root.
func (s *Service) SetRecordSetProvider(p RecordSetProvider) {
	s.records = p
}

// Result describes a generated contract.
type Result struct {
	SaleID         string `json:"saleId"`
	ContractNumber string `json:"contractNumber"`
}

// Generate allocates the next contract number for a complete sale and
// registers the contract in the CRM. On a duplicate-number rejection the
// number is recomputed against a fresh dataset and retried exactly once; a
// second rejection surfaces as a conflict.
func (s *Service) Generate(ctx context.Context, saleID string) (Result, error) {
	if s.records == nil {
		return Result{}, apperr.Internal("el módulo de contratos no está inicializado")
	}

	records, err := s.records.RefreshAll(ctx)
	if err != nil {
		return Result{}, err
	}

	sale, ok := findRecord(records, saleID)
	if !ok {
		return Result{}, apperr.NotFound("la venta no está en el conjunto actual")
	}
	if sale.HasContractNumber() {
		return Result{}, apperr.Conflict("la venta ya tiene un contrato asignado").
			WithDetails(map[string]any{"contractNumber": sale.ContractNumber})
	}

	completion := salesdomain.ValidateCompletion(&sale)
	if !completion.Complete {
		return Result{}, apperr.Validation("faltan campos obligatorios para generar el contrato").
			WithDetails(map[string]any{"missingFields": completion.Missing})
	}

	number, err := s.reserveNext(ctx, records, saleID)
	if err != nil {
		return Result{}, err
	}

	if err := s.createRemote(ctx, sale, number); err != nil {
		if !errors.Is(err, crm.ErrDuplicateNumber) {
			_ = s.repo.Release(ctx, number)
			return Result{}, err
		}

		// The CRM saw a number we did not. Refresh, recompute, retry once.
		s.rejectNumber(ctx, saleID, number)

		records, err = s.records.RefreshAll(ctx)
		if err != nil {
			return Result{}, err
		}
		number, err = s.reserveNext(ctx, records, saleID)
		if err != nil {
			return Result{}, err
		}
		if err := s.createRemote(ctx, sale, number); err != nil {
			if errors.Is(err, crm.ErrDuplicateNumber) {
				s.rejectNumber(ctx, saleID, number)
				return Result{}, apperr.Conflict("el CRM rechazó el número de contrato dos veces, intente nuevamente")
			}
			_ = s.repo.Release(ctx, number)
			return Result{}, err
		}
	}

	if err := s.repo.Confirm(ctx, number); err != nil {
		// The contract exists remotely; a failed confirm only loses the local
		// bookkeeping row, which the next refresh covers anyway.
		s.log.DatabaseError("confirm contract reservation", err)
	}

	s.bus.Publish(ctx, events.ContractGenerated{
		BaseEvent:      events.NewBaseEvent(),
		SaleID:         saleID,
		ContractNumber: number,
		ClientName:     sale.Name,
		ClientEmail:    sale.Email,
		ExecutiveName:  sale.ExecutiveName,
	})

	s.log.Info("contract generated", "saleId", saleID, "contractNumber", number)
	return Result{SaleID: saleID, ContractNumber: number}, nil
}

// reserveNext computes the next free number and claims it locally. A lost
// reservation race recomputes once against fresh reservations.
func (s *Service) reserveNext(ctx context.Context, records []salesdomain.SaleRecord, saleID string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		reserved, err := s.repo.ActiveNumbers(ctx)
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, "no se pudieron cargar las reservas de contrato", err)
		}

		number := domain.NextNumber(records, reserved, s.now().Year())
		err = s.repo.Reserve(ctx, number, saleID)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, repository.ErrNumberTaken) {
			return "", apperr.Wrap(apperr.KindInternal, "no se pudo reservar el número de contrato", err)
		}
	}
	return "", apperr.Conflict("no se pudo reservar un número de contrato, intente nuevamente")
}

func (s *Service) createRemote(ctx context.Context, sale salesdomain.SaleRecord, number string) error {
	return s.creator.CreateContract(ctx, crm.CreateContractParams{
		SaleID:         sale.ID,
		ContractNumber: number,
		ClientData:     sale,
	})
}

func (s *Service) rejectNumber(ctx context.Context, saleID, number string) {
	if err := s.repo.Release(ctx, number); err != nil {
		s.log.DatabaseError("release contract reservation", err)
	}
	s.bus.Publish(ctx, events.ContractNumberRejected{
		BaseEvent:      events.NewBaseEvent(),
		SaleID:         saleID,
		ContractNumber: number,
	})
	s.log.Warn("CRM rejected contract number as duplicate", "saleId", saleID, "contractNumber", number)
}

func findRecord(records []salesdomain.SaleRecord, saleID string) (salesdomain.SaleRecord, bool) {
	for _, r := range records {
		if r.ID == saleID {
			return r, true
		}
	}
	return salesdomain.SaleRecord{}, false
}
