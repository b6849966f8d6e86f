package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contratos_backend/platform/apperr"
)

// Reservation statuses.
const (
	StatusReserved  = "reserved"
	StatusConfirmed = "confirmed"
)

// Repository persists contract number reservations. Reservations make local
// allocations visible to concurrent generators before the CRM round-trip
// completes, and keep confirmed numbers off the table for good.
type Repository interface {
	Reserve(ctx context.Context, contractNumber, saleID string) error
	Confirm(ctx context.Context, contractNumber string) error
	Release(ctx context.Context, contractNumber string) error
	ActiveNumbers(ctx context.Context) ([]string, error)
}

const uniqueViolationCode = "23505"

// ErrNumberTaken signals the number is already reserved or confirmed locally.
var ErrNumberTaken = errors.New("contract number already reserved")

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contract reservation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Reserve claims a contract number for a sale. The primary key makes the
// claim atomic: the loser of a race gets ErrNumberTaken.
func (r *Repo) Reserve(ctx context.Context, contractNumber, saleID string) error {
	query := `
		INSERT INTO contract_reservations (contract_number, sale_id, status, reserved_at)
		VALUES ($1, $2, $3, now())`

	_, err := r.pool.Exec(ctx, query, contractNumber, saleID, StatusReserved)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrNumberTaken
		}
		return fmt.Errorf("reserve contract number: %w", err)
	}

	return nil
}

// Confirm marks a reservation as confirmed after the CRM accepted it.
func (r *Repo) Confirm(ctx context.Context, contractNumber string) error {
	query := `
		UPDATE contract_reservations
		SET status = $2, confirmed_at = now()
		WHERE contract_number = $1`

	tag, err := r.pool.Exec(ctx, query, contractNumber, StatusConfirmed)
	if err != nil {
		return fmt.Errorf("confirm contract number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("la reserva de número de contrato no existe")
	}
	return nil
}

// Release drops a reservation the CRM rejected so the number can be
// recomputed.
func (r *Repo) Release(ctx context.Context, contractNumber string) error {
	query := `
		DELETE FROM contract_reservations
		WHERE contract_number = $1 AND status = $2`

	if _, err := r.pool.Exec(ctx, query, contractNumber, StatusReserved); err != nil {
		return fmt.Errorf("release contract number: %w", err)
	}
	return nil
}

// ActiveNumbers returns every reserved or confirmed contract number.
func (r *Repo) ActiveNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT contract_number FROM contract_reservations`)
	if err != nil {
		return nil, fmt.Errorf("list reserved contract numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan reserved contract number: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reserved contract numbers: %w", err)
	}

	return numbers, nil
}
