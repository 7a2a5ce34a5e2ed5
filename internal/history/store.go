package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultKey is the key-value slot holding the persisted list.
	DefaultKey = "searchQueries"

	// DefaultListLimit is used by List when no positive limit is given.
	DefaultListLimit = 10
)

// KeyValue is the durable slot the store mirrors itself into.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for absorbed load failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMaxEntries caps the number of records. The oldest are evicted on
// upsert. Zero means no cap.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// WithKey overrides the slot key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// Store is the recent-search store.
//
// Mutations are serialized: each one copies the current mapping, persists
// the copy, and only then swaps it in. A failed persist leaves the
// in-memory state untouched.
type Store struct {
	kv         KeyValue
	key        string
	now        func() time.Time
	logger     *log.Logger
	maxEntries int

	initOnce sync.Once
	writeMu  sync.Mutex

	mu      sync.RWMutex
	entries map[string]time.Time
}

// New creates a store over kv. Call Initialize before reading.
func New(kv KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		key:     DefaultKey,
		now:     time.Now,
		logger:  log.Default(),
		entries: map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted mapping into memory. Only the first call
// does any work. Missing or unreadable data leaves the store empty; the
// failure is logged, never returned.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		entries, err := s.load(ctx)
		if err != nil {
			s.logger.Warn("failed to load recent searches, starting empty", "err", err)
			return
		}

		s.mu.Lock()
		s.entries = entries
		s.mu.Unlock()
	})
}

func (s *Store) load(ctx context.Context) (map[string]time.Time, error) {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	if !ok {
		return map[string]time.Time{}, nil
	}

	entries, err := Decode(data)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return entries, nil
}

// Upsert records query as used now, creating it if absent.
// It returns *InvalidInputError for blank input and *StorageError if the
// mapping could not be persisted.
func (s *Store) Upsert(ctx context.Context, query string) (Record, error) {
	q := Normalize(query)
	if q == "" {
		return Record{}, &InvalidInputError{Query: query}
	}

	s.Initialize(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rec := Record{Query: q, LastUsedAt: s.now()}

	next := s.copyEntries()
	next[q] = rec.LastUsedAt
	s.evict(next, q)

	if err := s.persist(ctx, next); err != nil {
		return Record{}, err
	}
	s.swap(next)

	return rec, nil
}

// Remove deletes query if present. Absence is not an error.
func (s *Store) Remove(ctx context.Context, query string) error {
	q := Normalize(query)
	if q == "" {
		return nil
	}

	s.Initialize(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	_, exists := s.entries[q]
	s.mu.RUnlock()
	if !exists {
		return nil
	}

	next := s.copyEntries()
	delete(next, q)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.swap(next)

	return nil
}

// Clear removes every record and the durable slot.
func (s *Store) Clear(ctx context.Context) error {
	s.Initialize(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Remove(ctx, s.key); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	s.swap(map[string]time.Time{})

	return nil
}

// List returns up to limit records, most recent first. A non-positive
// limit means DefaultListLimit.
func (s *Store) List(limit int) []Record {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	records := s.Snapshot()
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Snapshot returns every record, most recent first. The slice is a copy.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordsFrom(s.entries)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) persist(ctx context.Context, entries map[string]time.Time) error {
	data, err := Encode(entries)
	if err != nil {
		return &StorageError{Op: "persist", Err: err}
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return &StorageError{Op: "persist", Err: err}
	}
	return nil
}

func (s *Store) copyEntries() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next := make(map[string]time.Time, len(s.entries)+1)
	for q, t := range s.entries {
		next[q] = t
	}
	return next
}

func (s *Store) swap(entries map[string]time.Time) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// evict drops the oldest records beyond maxEntries, never keep.
func (s *Store) evict(entries map[string]time.Time, keep string) {
	if s.maxEntries <= 0 || len(entries) <= s.maxEntries {
		return
	}

	records := recordsFrom(entries)
	for i := len(records) - 1; i >= 0 && len(entries) > s.maxEntries; i-- {
		if records[i].Query == keep {
			continue
		}
		delete(entries, records[i].Query)
	}
}

// IsStorageError reports whether err is a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsInvalidInput reports whether err is an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}
