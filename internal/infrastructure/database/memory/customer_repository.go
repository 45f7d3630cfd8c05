// Package memory keeps sandbox customers in process memory.
package memory

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"customer-store/internal/domain/customer"
	"customer-store/internal/pkg/apperrors"
)

type CustomerRepository struct {
	mu     sync.RWMutex
	byID   map[int64]customer.Customer
	order  []int64
	nextID int64
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(logger *slog.Logger) *CustomerRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		byID:   make(map[int64]customer.Customer),
		nextID: 1,
		logger: logger.With("component", "MemoryCustomerRepository"),
	}
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]customer.Customer, 0, len(r.order))
	for _, id := range r.order {
		customers = append(customers, r.byID[id].Clone())
	}
	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cust, ok := r.byID[customerID]
	if !ok {
		r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
		return customer.Customer{}, apperrors.ErrNotFound
	}
	return cust.Clone(), nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := customer.New(r.nextID, c.Attributes)
	if stored.Attributes == nil {
		stored.Attributes = map[string]any{}
	}
	r.nextID++
	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	r.logger.DebugContext(ctx, "Customer inserted successfully", slog.Int64("customerID", stored.ID))
	return stored.Clone(), nil
}

func (r *CustomerRepository) Patch(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[c.ID]
	if !ok {
		r.logger.WarnContext(ctx, "Patch target not found", slog.Int64("customerID", c.ID))
		return customer.Customer{}, apperrors.ErrNotFound
	}
	merged := current.Merge(c)
	r.byID[c.ID] = merged
	return merged.Clone(), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[customerID]; !ok {
		r.logger.WarnContext(ctx, "Delete target not found", slog.Int64("customerID", customerID))
		return apperrors.ErrNotFound
	}
	delete(r.byID, customerID)
	for i, id := range r.order {
		if id == customerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
