package customer

import (
	"context"
)

// RemotePort is the client side view of the remote customers collection.
// Every call is a single attempt; errors are returned to the caller as-is.
type RemotePort interface {
	ListAll(ctx context.Context) ([]Customer, error)

	// GetByID fails with an error matching ErrNotFound when the server has no such id.
	GetByID(ctx context.Context, id int64) (Customer, error)

	// Create returns the stored record, including the server-assigned id.
	Create(ctx context.Context, c Customer) (Customer, error)

	// Update sends a partial update for c.ID and returns the updated record.
	Update(ctx context.Context, c Customer) (Customer, error)

	Delete(ctx context.Context, id int64) error
}
