package state

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"customer-store/internal/domain/customer"
	"customer-store/internal/infrastructure/monitoring"
	"customer-store/internal/pkg/requestid"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var errUnknownIntent = errors.New("no effect registered for intent")

// Effects turns intents into remote calls and dispatches one outcome per
// intent. Every intent runs in its own goroutine: a newer intent never
// cancels an older one and outcomes arrive in completion order.
type Effects struct {
	port       customer.RemotePort
	dispatcher Dispatcher
	logger     *slog.Logger
	wg         conc.WaitGroup
}

func NewEffects(port customer.RemotePort, dispatcher Dispatcher, logger *slog.Logger) *Effects {
	if port == nil {
		panic("remote port cannot be nil")
	}
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Effects{
		port:       port,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "effects")),
	}
}

// Handle is a Listener; subscribe it to the store.
func (e *Effects) Handle(action Action, _ CustomerState) {
	intent, ok := action.(Intent)
	if !ok {
		return
	}
	e.wg.Go(func() {
		e.dispatcher.Dispatch(e.Run(context.Background(), intent))
	})
}

// Wait blocks until every started effect has dispatched its outcome.
func (e *Effects) Wait() {
	e.wg.Wait()
}

// Run performs the remote call for intent and returns its outcome. A panic
// inside the port is reported as a fail outcome.
func (e *Effects) Run(ctx context.Context, intent Intent) Action {
	monitoring.EffectStarted()
	ctx, reqID := requestid.New(ctx)
	logCtx := e.logger.With(
		slog.String("type", string(intent.Type())),
		slog.String("request_id", reqID),
	)
	logCtx.DebugContext(ctx, "Starting effect")

	start := time.Now()
	var outcome Action
	var pc panics.Catcher
	pc.Try(func() { outcome = e.call(ctx, intent) })
	if r := pc.Recovered(); r != nil {
		logCtx.ErrorContext(ctx, "Remote port panicked", slog.Any("error", r.AsError()))
		outcome = failure(intent, r.AsError())
	}
	elapsed := time.Since(start)

	result := "success"
	if f, ok := outcome.(Failure); ok {
		result = "fail"
		logCtx.WarnContext(ctx, "Effect failed", slog.Duration("duration", elapsed), slog.Any("error", f.Cause()))
	} else {
		logCtx.InfoContext(ctx, "Effect succeeded", slog.Duration("duration", elapsed))
	}
	monitoring.EffectFinished(string(intent.Family()), result, elapsed)
	return outcome
}

func (e *Effects) call(ctx context.Context, intent Intent) Action {
	switch a := intent.(type) {
	case LoadCustomers:
		customers, err := e.port.ListAll(ctx)
		if err != nil {
			return LoadCustomersFail{Err: err}
		}
		return LoadCustomersSuccess{Customers: customers}

	case LoadCustomer:
		cust, err := e.port.GetByID(ctx, a.ID)
		if err != nil {
			return LoadCustomerFail{Err: err}
		}
		return LoadCustomerSuccess{Customer: cust}

	case CreateCustomer:
		created, err := e.port.Create(ctx, a.Customer)
		if err != nil {
			return CreateCustomerFail{Err: err}
		}
		return CreateCustomerSuccess{Customer: created}

	case UpdateCustomer:
		updated, err := e.port.Update(ctx, a.Customer)
		if err != nil {
			return UpdateCustomerFail{Err: err}
		}
		return UpdateCustomerSuccess{Update: Update{ID: updated.ID, Changes: updated}}

	case DeleteCustomer:
		if err := e.port.Delete(ctx, a.ID); err != nil {
			return DeleteCustomerFail{Err: err}
		}
		return DeleteCustomerSuccess{ID: a.ID}

	default:
		return failure(intent, errUnknownIntent)
	}
}

// failure builds the fail outcome of the family intent belongs to.
func failure(intent Intent, err error) Action {
	switch intent.Family() {
	case FamilyLoadAll:
		return LoadCustomersFail{Err: err}
	case FamilyLoadOne:
		return LoadCustomerFail{Err: err}
	case FamilyCreate:
		return CreateCustomerFail{Err: err}
	case FamilyUpdate:
		return UpdateCustomerFail{Err: err}
	default:
		return DeleteCustomerFail{Err: err}
	}
}
