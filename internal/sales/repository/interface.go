package repository

import (
	"context"

	"contratos_backend/internal/sales/domain"
)

// EditReader provides read operations for local edit overlays.
type EditReader interface {
	// GetAll returns every stored overlay keyed by sale ID.
	GetAll(ctx context.Context) (map[string]domain.Edit, error)
	// Get returns the overlay for one sale; apperr.NotFound when absent.
	Get(ctx context.Context, saleID string) (domain.Edit, error)
}

// EditWriter provides write operations for local edit overlays.
type EditWriter interface {
	// Upsert merges the given overlay into the stored one; non-nil fields win.
	Upsert(ctx context.Context, saleID string, edit domain.Edit) error
	// Delete discards the overlay for a sale. Deleting a missing overlay is a no-op.
	Delete(ctx context.Context, saleID string) error
}

// Repository combines all edit overlay operations.
type Repository interface {
	EditReader
	EditWriter
}
