package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
)

// Tombstone is one locally deleted sale. The snapshot preserves the record
// as it looked at deletion time so a restore can show what was removed even
// if the CRM feed no longer carries it.
type Tombstone struct {
	SaleID    string            `json:"saleId"`
	Snapshot  domain.SaleRecord `json:"snapshot"`
	Reason    string            `json:"reason,omitempty"`
	DeletedAt time.Time         `json:"deletedAt"`
}

// Repository persists sale tombstones.
type Repository interface {
	Insert(ctx context.Context, t Tombstone) error
	Exists(ctx context.Context, saleID string) (bool, error)
	DeletedIDs(ctx context.Context) (map[string]struct{}, error)
	List(ctx context.Context) ([]Tombstone, error)
	Delete(ctx context.Context, saleID string) error
}

const uniqueViolationCode = "23505"

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tombstone repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Insert records a deletion. Tombstones are immutable: inserting twice for
// the same sale is a conflict, not an update.
func (r *Repo) Insert(ctx context.Context, t Tombstone) error {
	query := `
		INSERT INTO sale_tombstones (sale_id, snapshot, reason, deleted_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, t.SaleID, t.Snapshot, t.Reason, t.DeletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperr.Conflict("la venta ya está eliminada")
		}
		return fmt.Errorf("insert tombstone: %w", err)
	}

	return nil
}

// Exists reports whether the sale has a tombstone.
func (r *Repo) Exists(ctx context.Context, saleID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sale_tombstones WHERE sale_id = $1)`, saleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tombstone: %w", err)
	}
	return exists, nil
}

// DeletedIDs returns the set of tombstoned sale IDs.
func (r *Repo) DeletedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT sale_id FROM sale_tombstones`)
	if err != nil {
		return nil, fmt.Errorf("list tombstone ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tombstone id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tombstone ids: %w", err)
	}

	return ids, nil
}

// List returns all tombstones, most recent first.
func (r *Repo) List(ctx context.Context) ([]Tombstone, error) {
	query := `
		SELECT sale_id, snapshot, reason, deleted_at
		FROM sale_tombstones
		ORDER BY deleted_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tombstones: %w", err)
	}
	defer rows.Close()

	var tombstones []Tombstone
	for rows.Next() {
		var t Tombstone
		if err := rows.Scan(&t.SaleID, &t.Snapshot, &t.Reason, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan tombstone: %w", err)
		}
		tombstones = append(tombstones, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tombstones: %w", err)
	}

	return tombstones, nil
}

// Delete removes a tombstone, restoring the sale on the next reconciliation.
func (r *Repo) Delete(ctx context.Context, saleID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sale_tombstones WHERE sale_id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("delete tombstone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("la venta no está eliminada")
	}
	return nil
}
