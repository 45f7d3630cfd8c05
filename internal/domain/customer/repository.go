package customer

import (
	"context"

	"customer-store/internal/pkg/apperrors"
)

// ErrNotFound is shared with apperrors so handlers and the REST client can
// match either name.
var ErrNotFound = apperrors.ErrNotFound

// Repository persists customers for the sandbox backend.
type Repository interface {
	FindAll(ctx context.Context) ([]Customer, error)

	FindByID(ctx context.Context, id int64) (Customer, error)

	// Insert stores c under a newly assigned id and returns the stored record.
	Insert(ctx context.Context, c Customer) (Customer, error)

	// Patch merges the attributes of c into the record with c.ID.
	Patch(ctx context.Context, c Customer) (Customer, error)

	Delete(ctx context.Context, id int64) error
}
