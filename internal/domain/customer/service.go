package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"time"

	"customer-store/internal/event"
	"customer-store/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const customerNotFound = "Customer not found by repository"

// CustomerService is the sandbox backend behind the customers REST resource.
type CustomerService interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (Customer, error)
	CreateCustomer(ctx context.Context, attrs map[string]any) (Customer, error)
	PatchCustomer(ctx context.Context, customerID int64, attrs map[string]any) (Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo Repository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events are dropped")
		eventPublisher = event.NopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust Customer) event.CustomerEventPayload {
	return event.CustomerEventPayload{
		CustomerID: cust.ID,
		Attributes: maps.Clone(cust.Attributes),
	}
}

func validateID(customerID int64) error {
	if customerID <= 0 {
		return apperrors.NewValidationError("customerID", "must be a positive integer")
	}
	return nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	s.logger.DebugContext(ctx, "Calling repository FindAll")
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	if err := validateID(customerID); err != nil {
		logCtx.WarnContext(ctx, "Validation failed: invalid customer id")
		return Customer{}, err
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return Customer{}, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return Customer{}, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, attrs map[string]any) (Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	draft := New(0, attrs)
	delete(draft.Attributes, idField)
	if draft.Attributes == nil {
		draft.Attributes = map[string]any{}
	}

	created, err := s.repo.Insert(ctx, draft)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to insert new customer", slog.Any("error", err))
		return Customer{}, fmt.Errorf("failed to save new customer: %w", err)
	}

	logCtx := s.logger.With(slog.Int64("customerID", created.ID))
	logCtx.InfoContext(ctx, "Successfully saved new customer, publishing creation event")
	createdEvent := event.CustomerCreatedEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(created),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}
	return created, nil
}

func (s *customerService) PatchCustomer(ctx context.Context, customerID int64, attrs map[string]any) (Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to patch customer")

	if err := validateID(customerID); err != nil {
		logCtx.WarnContext(ctx, "Validation failed: invalid customer id")
		return Customer{}, err
	}
	changes := New(customerID, attrs)
	if raw, ok := changes.Attributes[idField]; ok {
		if !sameID(raw, customerID) {
			logCtx.WarnContext(ctx, "Validation failed: body id does not match path id", slog.Any("bodyID", raw))
			return Customer{}, apperrors.NewValidationError(idField, "does not match the customer in the path")
		}
		delete(changes.Attributes, idField)
	}

	updated, err := s.repo.Patch(ctx, changes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return Customer{}, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to patch customer", slog.Any("error", err))
		return Customer{}, fmt.Errorf("failed to patch customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully patched customer, publishing update event")
	updatedEvent := event.CustomerUpdatedEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(updated),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer patched, but FAILED to publish update event", slog.Any("error", pubErr))
	}
	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	if err := validateID(customerID); err != nil {
		logCtx.WarnContext(ctx, "Validation failed: invalid customer id")
		return err
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	deletedEvent := event.CustomerDeletedEvent{
		EventID:    uuid.NewString(),
		Timestamp:  time.Now(),
		CustomerID: customerID,
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer deleted, but FAILED to publish delete event", slog.Any("error", pubErr))
	}
	logCtx.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

// sameID compares a decoded JSON id against want. Handlers decode with
// UseNumber, tests may pass plain numbers.
func sameID(raw any, want int64) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case int64:
		return v == want
	case int:
		return int64(v) == want
	case float64:
		return v == float64(want)
	default:
		id, err := parseID(raw)
		return err == nil && id == want
	}
}
