package batch

import (
	"context"
	"encoding/json"
	"log/slog"

	"customer-store/internal/event"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/state"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ChangeListener reloads the collection whenever the backend announces that
// a customer was created, updated or deleted.
type ChangeListener struct {
	store  state.Dispatcher
	logger *slog.Logger
}

func NewChangeListener(store state.Dispatcher, logger *slog.Logger) *ChangeListener {
	if store == nil || logger == nil {
		panic("ChangeListener dependencies cannot be nil")
	}
	return &ChangeListener{
		store:  store,
		logger: logger.With("component", "ChangeListener"),
	}
}

// HandleDelivery is an event.DeliveryHandler. Malformed bodies are dropped
// without requeue; unknown keys are rejected.
func (l *ChangeListener) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	logCtx := l.logger.With(slog.Uint64("deliveryTag", d.DeliveryTag), slog.String("routingKey", d.RoutingKey))

	var target any
	switch d.RoutingKey {
	case event.RoutingKeyCustomerCreated:
		target = &event.CustomerCreatedEvent{}
	case event.RoutingKeyCustomerUpdated:
		target = &event.CustomerUpdatedEvent{}
	case event.RoutingKeyCustomerDeleted:
		target = &event.CustomerDeletedEvent{}
	default:
		logCtx.WarnContext(ctx, "Received message with unknown routing key. Discarding.")
		monitoring.RecordChangeEvent(d.RoutingKey, "rejected")
		_ = d.Reject(false)
		return
	}

	if err := json.Unmarshal(d.Body, target); err != nil {
		logCtx.ErrorContext(ctx, "Failed to unmarshal change event", "error", err, "body", string(d.Body))
		monitoring.RecordChangeEvent(d.RoutingKey, "malformed")
		_ = d.Nack(false, false)
		return
	}

	logCtx.InfoContext(ctx, "Backend changed, reloading customers")
	l.store.Dispatch(state.LoadCustomers{})
	monitoring.RecordChangeEvent(d.RoutingKey, "refreshed")

	if err := d.Ack(false); err != nil {
		logCtx.ErrorContext(ctx, "Failed to acknowledge change event", "error", err)
	}
}
