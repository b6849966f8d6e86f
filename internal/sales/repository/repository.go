package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
)

const editNotFoundMessage = "no hay ediciones locales para esta venta"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sale edits repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const editColumns = `sale_id, name, national_id, phone, email, delivery_address,
	house_model, total_value, sale_date, delivery_date, executive_name, raw_status`

// GetAll retrieves every stored edit overlay keyed by sale ID.
func (r *Repo) GetAll(ctx context.Context) (map[string]domain.Edit, error) {
	query := `SELECT ` + editColumns + ` FROM sale_edits`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sale edits: %w", err)
	}
	defer rows.Close()

	edits := make(map[string]domain.Edit)
	for rows.Next() {
		saleID, edit, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		edits[saleID] = edit
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale edits: %w", err)
	}

	return edits, nil
}

// Get retrieves the edit overlay for one sale.
func (r *Repo) Get(ctx context.Context, saleID string) (domain.Edit, error) {
	query := `SELECT ` + editColumns + ` FROM sale_edits WHERE sale_id = $1`

	row := r.pool.QueryRow(ctx, query, saleID)
	_, edit, err := scanEdit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Edit{}, apperr.NotFound(editNotFoundMessage)
		}
		return domain.Edit{}, err
	}

	return edit, nil
}

// Upsert stores the overlay, merging over any existing one: incoming non-null
// fields overwrite, stored fields not present in the incoming edit survive.
func (r *Repo) Upsert(ctx context.Context, saleID string, edit domain.Edit) error {
	query := `
		INSERT INTO sale_edits (sale_id, name, national_id, phone, email, delivery_address,
			house_model, total_value, sale_date, delivery_date, executive_name, raw_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (sale_id) DO UPDATE SET
			name             = COALESCE(EXCLUDED.name, sale_edits.name),
			national_id      = COALESCE(EXCLUDED.national_id, sale_edits.national_id),
			phone            = COALESCE(EXCLUDED.phone, sale_edits.phone),
			email            = COALESCE(EXCLUDED.email, sale_edits.email),
			delivery_address = COALESCE(EXCLUDED.delivery_address, sale_edits.delivery_address),
			house_model      = COALESCE(EXCLUDED.house_model, sale_edits.house_model),
			total_value      = COALESCE(EXCLUDED.total_value, sale_edits.total_value),
			sale_date        = COALESCE(EXCLUDED.sale_date, sale_edits.sale_date),
			delivery_date    = COALESCE(EXCLUDED.delivery_date, sale_edits.delivery_date),
			executive_name   = COALESCE(EXCLUDED.executive_name, sale_edits.executive_name),
			raw_status       = COALESCE(EXCLUDED.raw_status, sale_edits.raw_status),
			updated_at       = now()`

	_, err := r.pool.Exec(ctx, query,
		saleID, edit.Name, edit.NationalID, edit.Phone, edit.Email, edit.DeliveryAddress,
		edit.HouseModel, edit.TotalValue, edit.SaleDate, edit.DeliveryDate,
		edit.ExecutiveName, edit.RawStatus,
	)
	if err != nil {
		return fmt.Errorf("upsert sale edit: %w", err)
	}

	return nil
}

// Delete discards the overlay for a sale.
func (r *Repo) Delete(ctx context.Context, saleID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sale_edits WHERE sale_id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("delete sale edit: %w", err)
	}
	return nil
}

func scanEdit(row pgx.Row) (string, domain.Edit, error) {
	var saleID string
	var edit domain.Edit

	err := row.Scan(
		&saleID, &edit.Name, &edit.NationalID, &edit.Phone, &edit.Email,
		&edit.DeliveryAddress, &edit.HouseModel, &edit.TotalValue,
		&edit.SaleDate, &edit.DeliveryDate, &edit.ExecutiveName, &edit.RawStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.Edit{}, err
		}
		return "", domain.Edit{}, fmt.Errorf("scan sale edit: %w", err)
	}

	return saleID, edit, nil
}
