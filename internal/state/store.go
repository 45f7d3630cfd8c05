package state

import (
	"log/slog"
	"os"
	"sync"

	"customer-store/internal/infrastructure/monitoring"
)

// Listener observes every action after it has been reduced, together with
// the resulting state.
type Listener func(action Action, s CustomerState)

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(action Action)
}

// Store owns the customers state. Dispatch only queues the action; whichever
// caller finds the queue idle drains it, so exactly one goroutine reduces at
// a time and a listener may dispatch again without deadlocking.
type Store struct {
	reducer Reducer
	logger  *slog.Logger

	mu        sync.Mutex
	state     CustomerState
	queue     []Action
	draining  bool
	listeners map[int]Listener
	nextID    int
}

var _ Dispatcher = (*Store)(nil)

type StoreOption func(*Store)

// WithReducer replaces Reduce, mainly for tests.
func WithReducer(r Reducer) StoreOption {
	return func(s *Store) {
		if r != nil {
			s.reducer = r
		}
	}
}

// WithInitialState starts the store from st instead of InitialState().
func WithInitialState(st CustomerState) StoreOption {
	return func(s *Store) {
		s.state = st
	}
}

func NewStore(logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewStore, using default stderr handler")
	}
	s := &Store{
		reducer:   Reduce,
		logger:    logger.With(slog.String("component", "store")),
		state:     InitialState(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a deep copy of the current state. Writing to it never
// reaches the store.
func (s *Store) State() CustomerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) Dispatch(action Action) {
	if action == nil {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, action)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queue = nil
			s.mu.Unlock()
			return
		}
		action := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]

		next, ok := s.reduce(action)
		if !ok {
			s.mu.Unlock()
			continue
		}
		s.state = next
		current := next.snapshot()
		listeners := s.orderedListeners()
		s.mu.Unlock()

		monitoring.RecordAction(string(action.Type()))
		s.logger.Debug("Action reduced", slog.String("type", string(action.Type())))
		for _, l := range listeners {
			s.notify(l, action, current)
		}
	}
}

// reduce applies the reducer to the current state. A panicking reducer drops
// the action and leaves the state as it was. Callers hold mu.
func (s *Store) reduce(action Action) (next CustomerState, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Reducer panicked, action dropped", slog.String("type", string(action.Type())), slog.Any("panic", r))
			next, ok = s.state, false
		}
	}()
	return s.reducer(s.state, action), true
}

// orderedListeners returns listeners in subscription order. Callers hold mu.
func (s *Store) orderedListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) notify(l Listener, action Action, current CustomerState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Listener panicked", slog.String("type", string(action.Type())), slog.Any("panic", r))
		}
	}()
	l(action, current)
}
