// Package actionlog ships every action reduced by the store, together with a
// summary of the resulting state, to an event publisher.
package actionlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"customer-store/internal/event"
	"customer-store/internal/state"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

const (
	defaultBufferSize     = 256
	defaultPublishTimeout = 5 * time.Second
)

// Recorder is a store listener. Events are queued and published by a single
// background goroutine so a slow broker never holds up dispatch; when the
// queue is full the event is dropped and logged.
type Recorder struct {
	pub            event.EventPublisher
	logger         *slog.Logger
	publishTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan event.ActionEvent
	seq    atomic.Uint64
	wg     conc.WaitGroup
}

type Option func(*Recorder)

func WithBufferSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.events = make(chan event.ActionEvent, n)
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.publishTimeout = d
		}
	}
}

func NewRecorder(pub event.EventPublisher, logger *slog.Logger, opts ...Option) *Recorder {
	if pub == nil {
		panic("event publisher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	r := &Recorder{
		pub:            pub,
		logger:         logger.With(slog.String("component", "actionRecorder")),
		publishTimeout: defaultPublishTimeout,
		events:         make(chan event.ActionEvent, defaultBufferSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.wg.Go(r.run)
	return r
}

// Handle is a state.Listener.
func (r *Recorder) Handle(action state.Action, s state.CustomerState) {
	evt := r.newEvent(action, s)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.events <- evt:
	default:
		r.logger.Warn("Action log queue full, dropping event",
			slog.String("type", evt.Type), slog.Uint64("sequence", evt.Sequence))
	}
}

// Close stops accepting events and waits until the queued ones are published.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) run() {
	for evt := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), r.publishTimeout)
		if err := r.pub.PublishAction(ctx, evt); err != nil {
			r.logger.Error("Failed to publish action event",
				slog.String("type", evt.Type), slog.Uint64("sequence", evt.Sequence), slog.Any("error", err))
		}
		cancel()
	}
}

func (r *Recorder) newEvent(action state.Action, s state.CustomerState) event.ActionEvent {
	evt := event.ActionEvent{
		EventID:   uuid.NewString(),
		Sequence:  r.seq.Add(1),
		Type:      string(action.Type()),
		Family:    string(action.Family()),
		Stage:     stageOf(action),
		State:     Summarize(s),
		Timestamp: time.Now().UTC(),
	}
	if evt.Stage == event.StageFail {
		evt.Error = s.Error
	}
	return evt
}

func stageOf(action state.Action) string {
	if state.IsIntent(action) {
		return event.StageIntent
	}
	if _, ok := action.(state.Failure); ok {
		return event.StageFail
	}
	return event.StageSuccess
}

// Summarize keeps the scalar part of the state; entities are reduced to a count.
func Summarize(s state.CustomerState) event.StateSummary {
	st := state.SelectStatus(s)
	return event.StateSummary{
		Total:              st.Total,
		Loading:            st.Loading,
		Loaded:             st.Loaded,
		Error:              st.Error,
		SelectedCustomerID: st.SelectedCustomerID,
	}
}
