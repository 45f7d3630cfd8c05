package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	findAllCustomersSQL = `
        SELECT id, attributes
        FROM customers
        ORDER BY id ASC`

	findCustomerByIDSQL = `
        SELECT id, attributes
        FROM customers
        WHERE id = $1`

	insertCustomerSQL = `
        INSERT INTO customers (attributes, created_at, updated_at)
        VALUES ($1, NOW(), NOW())
        RETURNING id, attributes`

	patchCustomerSQL = `
        UPDATE customers
        SET attributes = attributes || $1::jsonb,
            updated_at = NOW()
        WHERE id = $2
        RETURNING id, attributes`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func observe(queryName string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(start))
}

func scanCustomer(row pgx.Row) (customer.Customer, error) {
	var (
		id  int64
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return customer.Customer{}, err
	}
	attrs, err := customer.DecodeAttributes(raw)
	if err != nil {
		return customer.Customer{}, err
	}
	return customer.Customer{ID: id, Attributes: attrs}, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []customer.Customer, err error) {
	r.logger.DebugContext(ctx, "Attempting to find all customers")
	defer func(start time.Time) { observe("find_all_customers", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, findAllCustomersSQL)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers = make([]customer.Customer, 0)
	for rows.Next() {
		cust, scanErr := scanCustomer(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", scanErr))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, scanErr)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust customer.Customer, err error) {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	defer func(start time.Time) { observe("find_customer_by_id", start, err) }(time.Now())

	cust, err = scanCustomer(r.db.QueryRow(ctx, findCustomerByIDSQL, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return customer.Customer{}, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return customer.Customer{}, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}
	return cust, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) (created customer.Customer, err error) {
	defer func(start time.Time) { observe("insert_customer", start, err) }(time.Now())

	payload, err := customer.EncodeAttributes(c.Attributes)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}

	created, err = scanCustomer(r.db.QueryRow(ctx, insertCustomerSQL, payload))
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return customer.Customer{}, translatedErr
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", created.ID))
	return created, nil
}

func (r *CustomerRepository) Patch(ctx context.Context, c customer.Customer) (patched customer.Customer, err error) {
	logCtx := r.logger.With(slog.Int64("customerID", c.ID))
	defer func(start time.Time) { observe("patch_customer", start, err) }(time.Now())

	payload, err := customer.EncodeAttributes(c.Attributes)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}

	patched, err = scanCustomer(r.db.QueryRow(ctx, patchCustomerSQL, payload, c.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Patch affected zero rows, customer likely not found")
			return customer.Customer{}, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to patch customer", slog.Any("error", err))
		return customer.Customer{}, translateDBError(err, logCtx)
	}

	logCtx.InfoContext(ctx, "Customer patched successfully")
	return patched, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (err error) {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	defer func(start time.Time) { observe("delete_customer", start, err) }(time.Now())

	cmdTag, err := r.db.Exec(ctx, deleteCustomerSQL, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return nil
}
