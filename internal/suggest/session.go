package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/route"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLimit sets the maximum number of suggestions.
func WithLimit(n int) SessionOption {
	return func(s *Session) { s.limit = n }
}

// WithInterval sets the debounce quiet period.
func WithInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.interval = d }
}

// WithOnUpdate registers a callback receiving each recomputed list. It runs
// on the debouncer's goroutine for typed input.
func WithOnUpdate(fn func([]history.Record)) SessionOption {
	return func(s *Session) { s.onUpdate = fn }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// Session is the state behind a search field: raw input, focus and the
// current suggestions. Input is recorded immediately; suggestions follow
// once typing settles.
type Session struct {
	store    *history.Store
	limit    int
	interval time.Duration
	onUpdate func([]history.Record)
	logger   *log.Logger

	debouncer *Debouncer

	// pubMu orders publishes so callbacks see lists in the order they were stored
	pubMu sync.Mutex

	mu          sync.Mutex
	input       string
	focused     bool
	epoch       uint64 // bumped when pending recomputations become stale
	suggestions []history.Record
}

// NewSession creates a session over store.
func NewSession(store *history.Store, opts ...SessionOption) *Session {
	s := &Session{
		store:  store,
		limit:  DefaultLimit,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debouncer = NewDebouncer(s.interval, s.recompute)
	return s
}

// OnInputChange records text and schedules a recomputation.
func (s *Session) OnInputChange(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()

	s.debouncer.Trigger(text)
}

// Focus marks the field focused and recomputes for the current input.
func (s *Session) Focus() {
	s.mu.Lock()
	s.focused = true
	text := s.input
	s.mu.Unlock()

	s.recompute(text)
}

// Blur marks the field unfocused and drops the suggestions.
func (s *Session) Blur() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.focused = false
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	s.publish(epoch, nil)
}

// Refresh recomputes immediately, e.g. after the store changed underneath.
func (s *Session) Refresh() {
	s.recompute(s.Input())
}

// Input returns the raw input.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Focused reports whether the field has focus.
func (s *Session) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Suggestions returns a copy of the current suggestions.
func (s *Session) Suggestions() []history.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]history.Record(nil), s.suggestions...)
}

// Submit records the current input and returns the results route for it.
// Blank input returns *history.InvalidInputError.
func (s *Session) Submit(ctx context.Context) (route.Route, error) {
	return s.Select(ctx, s.Input())
}

// Select records query, places it in the field and returns the results
// route for it.
//
// When the store fails to persist, the returned route is still valid and
// the error is a *history.StorageError; callers decide whether to navigate.
func (s *Session) Select(ctx context.Context, query string) (route.Route, error) {
	rec, err := s.store.Upsert(ctx, query)
	if history.IsInvalidInput(err) {
		return route.Route{}, err
	}

	term := rec.Query
	if err != nil {
		term = history.Normalize(query)
	}
	r, rerr := route.ToResults(term)
	if rerr != nil {
		return route.Route{}, rerr
	}

	s.debouncer.Stop()
	s.mu.Lock()
	s.input = term
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()
	s.publish(epoch, nil)

	if err != nil {
		s.logger.Warn("failed to record search", "query", term, "err", err)
	}
	return r, err
}

// Close cancels any pending recomputation.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) recompute(text string) {
	s.mu.Lock()
	focused, epoch := s.focused, s.epoch
	s.mu.Unlock()

	s.publish(epoch, Compute(text, focused, s.store.Snapshot(), s.limit))
}

// publish stores list unless a blur or select happened after it was
// computed.
func (s *Session) publish(epoch uint64, list []history.Record) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.suggestions = list
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(list)
	}
}
