package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"customer-store/internal/state"
)

// Store is what the refresh job needs from the state store.
type Store interface {
	Dispatch(action state.Action)
	Subscribe(l state.Listener) func()
}

// RefreshJob re-dispatches Load-All and waits for the next Load-All outcome,
// so a scheduled run reports whether the refresh landed.
type RefreshJob struct {
	store  Store
	logger *slog.Logger
}

func NewRefreshJob(store Store, logger *slog.Logger) *RefreshJob {
	if store == nil || logger == nil {
		panic("RefreshJob dependencies cannot be nil")
	}
	return &RefreshJob{
		store:  store,
		logger: logger.With("job", "RefreshCustomers"),
	}
}

func (j *RefreshJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting customers refresh.")

	outcomes := make(chan state.Action, 1)
	unsubscribe := j.store.Subscribe(func(action state.Action, _ state.CustomerState) {
		switch action.(type) {
		case state.LoadCustomersSuccess, state.LoadCustomersFail:
			select {
			case outcomes <- action:
			default:
			}
		}
	})
	defer unsubscribe()

	j.store.Dispatch(state.LoadCustomers{})

	select {
	case outcome := <-outcomes:
		duration := time.Since(startTime)
		if fail, ok := outcome.(state.LoadCustomersFail); ok {
			j.logger.ErrorContext(ctx, "Customers refresh failed.", slog.Duration("duration", duration), slog.Any("error", fail.Err))
			return fmt.Errorf("refresh customers: %w", fail.Err)
		}
		success := outcome.(state.LoadCustomersSuccess)
		j.logger.InfoContext(ctx, "Customers refresh finished successfully.",
			slog.Duration("duration", duration),
			slog.Int("count", len(success.Customers)),
		)
		return nil
	case <-ctx.Done():
		j.logger.WarnContext(ctx, "Customers refresh did not complete in time.", slog.Duration("duration", time.Since(startTime)))
		return fmt.Errorf("refresh customers: %w", ctx.Err())
	}
}
