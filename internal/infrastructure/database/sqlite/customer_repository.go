// Package sqlite stores sandbox customers in a single SQLite table, one JSON
// document of attributes per row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/pkg/apperrors"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attributes TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

	findAllCustomersSQL = `SELECT id, attributes FROM customers ORDER BY id ASC`
	findCustomerByIDSQL = `SELECT id, attributes FROM customers WHERE id = ?`
	insertCustomerSQL   = `INSERT INTO customers (attributes, created_at, updated_at) VALUES (?, ?, ?)`
	updateCustomerSQL   = `UPDATE customers SET attributes = ?, updated_at = ? WHERE id = ?`
	deleteCustomerSQL   = `DELETE FROM customers WHERE id = ?`
)

type CustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

// Open opens (creating when needed) the database at path and ensures the
// customers table exists. ":memory:" keeps everything in process.
func Open(ctx context.Context, path string, logger *slog.Logger) (*CustomerRepository, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to sqlite.Open, using default stderr handler")
	}
	if path == "" {
		path = "customers.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and keeps ":memory:" one database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create customers table: %w", err)
	}

	logger.Info("SQLite customer store ready", slog.String("path", path))
	return &CustomerRepository{db: db, logger: logger.With("component", "SQLiteCustomerRepository")}, nil
}

func (r *CustomerRepository) Close() error {
	return r.db.Close()
}

func observe(queryName string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(start))
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrDatabase, op, err)
}

func (r *CustomerRepository) FindAll(ctx context.Context) (customers []customer.Customer, err error) {
	defer func(start time.Time) { observe("find_all_customers", start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, findAllCustomersSQL)
	if err != nil {
		return nil, wrap("select customers", err)
	}
	defer func() { _ = rows.Close() }()

	customers = make([]customer.Customer, 0)
	for rows.Next() {
		var (
			id    int64
			attrs string
		)
		if err = rows.Scan(&id, &attrs); err != nil {
			return nil, wrap("scan customer", err)
		}
		decoded, derr := customer.DecodeAttributes([]byte(attrs))
		if derr != nil {
			err = derr
			return nil, err
		}
		customers = append(customers, customer.Customer{ID: id, Attributes: decoded})
	}
	if err = rows.Err(); err != nil {
		return nil, wrap("iterate customers", err)
	}
	return customers, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust customer.Customer, err error) {
	defer func(start time.Time) { observe("find_customer_by_id", start, err) }(time.Now())
	return r.findByID(ctx, r.db, customerID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *CustomerRepository) findByID(ctx context.Context, q queryer, customerID int64) (customer.Customer, error) {
	var (
		id    int64
		attrs string
	)
	if err := q.QueryRowContext(ctx, findCustomerByIDSQL, customerID).Scan(&id, &attrs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return customer.Customer{}, apperrors.ErrNotFound
		}
		return customer.Customer{}, wrap("select customer", err)
	}
	decoded, err := customer.DecodeAttributes([]byte(attrs))
	if err != nil {
		return customer.Customer{}, err
	}
	return customer.Customer{ID: id, Attributes: decoded}, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) (created customer.Customer, err error) {
	defer func(start time.Time) { observe("insert_customer", start, err) }(time.Now())

	payload, err := customer.EncodeAttributes(c.Attributes)
	if err != nil {
		return customer.Customer{}, err
	}
	ts := now()
	res, err := r.db.ExecContext(ctx, insertCustomerSQL, string(payload), ts, ts)
	if err != nil {
		return customer.Customer{}, wrap("insert customer", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return customer.Customer{}, wrap("read inserted id", err)
	}

	attrs, err := customer.DecodeAttributes(payload)
	if err != nil {
		return customer.Customer{}, err
	}
	r.logger.DebugContext(ctx, "Customer inserted successfully", slog.Int64("customerID", id))
	return customer.Customer{ID: id, Attributes: attrs}, nil
}

// Patch reads, merges and writes back inside one transaction.
func (r *CustomerRepository) Patch(ctx context.Context, c customer.Customer) (patched customer.Customer, err error) {
	defer func(start time.Time) { observe("patch_customer", start, err) }(time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return customer.Customer{}, wrap("begin patch", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := r.findByID(ctx, tx, c.ID)
	if err != nil {
		return customer.Customer{}, err
	}
	merged := current.Merge(c)
	payload, err := customer.EncodeAttributes(merged.Attributes)
	if err != nil {
		return customer.Customer{}, err
	}
	if _, err = tx.ExecContext(ctx, updateCustomerSQL, string(payload), now(), c.ID); err != nil {
		return customer.Customer{}, wrap("update customer", err)
	}
	if err = tx.Commit(); err != nil {
		return customer.Customer{}, wrap("commit patch", err)
	}

	// round trip through the codec so numbers look the same as on read
	merged.Attributes, err = customer.DecodeAttributes(payload)
	if err != nil {
		return customer.Customer{}, err
	}
	return merged, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (err error) {
	defer func(start time.Time) { observe("delete_customer", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, deleteCustomerSQL, customerID)
	if err != nil {
		return wrap("delete customer", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("rows affected", err)
	}
	if n == 0 {
		r.logger.WarnContext(ctx, "Delete target not found", slog.Int64("customerID", customerID))
		err = apperrors.ErrNotFound
		return err
	}
	return nil
}
