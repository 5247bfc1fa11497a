package cart

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrMissingScope = errors.New("cart scope is required")

// Recorder receives cart events for instrumentation.
type Recorder interface {
	CartMutation(op string)
	CartPersistFailure(op string)
}

type nopRecorder struct{}

func (nopRecorder) CartMutation(string)       {}
func (nopRecorder) CartPersistFailure(string) {}

// Store is the state container for one cart. All mutations go through
// Dispatch, which applies the transition in memory and then writes the full
// snapshot through to the persister. A failed write is logged and the
// in-memory state is kept.
type Store struct {
	mu        sync.Mutex
	key       string
	state     State
	persister Persister
	logger    *slog.Logger
	recorder  Recorder
}

// Open rehydrates the cart stored under key. A missing or unreadable
// snapshot yields an empty cart.
func Open(ctx context.Context, persister Persister, key string, logger *slog.Logger) *Store {
	return open(ctx, persister, key, logger, nopRecorder{})
}

func open(ctx context.Context, persister Persister, key string, logger *slog.Logger, rec Recorder) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		key:       key,
		state:     State{Items: []Item{}},
		persister: persister,
		logger:    logger,
		recorder:  rec,
	}

	loaded, ok, err := persister.Load(ctx, key)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "cart load failed, starting empty", "key", key, "err", err)
	case ok:
		s.state = loaded.clone()
	}
	return s
}

func (s *Store) Key() string { return s.key }

func (s *Store) AddItem(ctx context.Context, c Candidate) State {
	return s.Dispatch(ctx, Add(c))
}

func (s *Store) RemoveItem(ctx context.Context, id string) State {
	return s.Dispatch(ctx, Remove(id))
}

func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) State {
	return s.Dispatch(ctx, SetQuantity(id, quantity))
}

func (s *Store) ClearCart(ctx context.Context) State {
	return s.Dispatch(ctx, Clear())
}

// Settle removes lines that were just checked out. It re-reads the
// persisted snapshot first so items added by another request since this
// store was opened are kept.
func (s *Store) Settle(ctx context.Context, lines []Item) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok, err := s.persister.Load(ctx, s.key)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "cart reload failed, settling in-memory state", "key", s.key, "err", err)
	case ok:
		s.state = latest.clone()
	}
	return s.dispatchLocked(ctx, Consume(lines))
}

// Dispatch applies a and returns a copy of the resulting state.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, a)
}

func (s *Store) dispatchLocked(ctx context.Context, a Action) State {
	next := Apply(s.state, a)
	s.state = next
	s.recorder.CartMutation(string(a.Kind))

	if err := s.persister.Save(ctx, s.key, next); err != nil {
		s.recorder.CartPersistFailure(string(a.Kind))
		s.logger.WarnContext(ctx, "cart persist failed, keeping in-memory state",
			"key", s.key, "action", a.Kind, "err", err)
	}
	return next.clone()
}

// Items returns a copy of the current line items.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().Items
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Summary(taxRate decimal.Decimal) Summary {
	return Summarize(s.Items(), taxRate)
}

// Service opens stores scoped under a shared namespace, for example
// "cart-storage:user:abc".
type Service struct {
	persister Persister
	namespace string
	logger    *slog.Logger
	recorder  Recorder
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(persister Persister, namespace string, logger *slog.Logger, opts ...ServiceOption) *Service {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		persister: persister,
		namespace: namespace,
		logger:    logger,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Key(scope string) string {
	return s.namespace + ":" + scope
}

func (s *Service) Open(ctx context.Context, scope string) (*Store, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, ErrMissingScope
	}
	return open(ctx, s.persister, s.Key(scope), s.logger, s.recorder), nil
}
