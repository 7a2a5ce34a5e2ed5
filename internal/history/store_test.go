package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/gh-repo-search/internal/logging"
	"github.com/khanglvm/gh-repo-search/internal/storage"
)

// fakeKV is an in-memory slot with injectable failures.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	rmErr   error
	sets    int
	removes int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeKV) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rmErr != nil {
		return f.rmErr
	}
	f.removes++
	delete(f.data, key)
	return nil
}

// clock hands out strictly increasing times.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(kv KeyValue, opts ...Option) *Store {
	opts = append([]Option{WithClock(newClock().Now), WithLogger(logging.Discard())}, opts...)
	s := New(kv, opts...)
	s.Initialize(context.Background())
	return s
}

func queries(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Query
	}
	return out
}

func TestUpsert_NormalizesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeKV())

	first, err := store.Upsert(ctx, "  Swift ")
	require.NoError(t, err)
	assert.Equal(t, "swift", first.Query)

	second, err := store.Upsert(ctx, "SWIFT")
	require.NoError(t, err)

	records := store.List(0)
	require.Len(t, records, 1)
	assert.Equal(t, "swift", records[0].Query)
	assert.True(t, records[0].LastUsedAt.Equal(second.LastUsedAt))
	assert.True(t, second.LastUsedAt.After(first.LastUsedAt))
}

func TestUpsert_RejectsBlankInput(t *testing.T) {
	kv := newFakeKV()
	store := newTestStore(kv)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := store.Upsert(context.Background(), in)
		require.Error(t, err)
		assert.True(t, IsInvalidInput(err), "got %T", err)
	}
	assert.Zero(t, kv.sets, "blank input must not touch storage")
}

func TestUpsert_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	_, err := store.Upsert(ctx, "go")
	require.NoError(t, err)

	kv.setErr = errors.New("disk full")
	_, err = store.Upsert(ctx, "rust")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, kv.setErr)

	assert.Equal(t, []string{"go"}, queries(store.List(0)))
}

func TestList_SortedAndLimited(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeKV())

	for _, q := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		_, err := store.Upsert(ctx, q)
		require.NoError(t, err)
	}

	all := store.List(100)
	require.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].LastUsedAt.After(all[i-1].LastUsedAt), "not sorted at %d", i)
	}

	assert.Len(t, store.List(0), DefaultListLimit)
	assert.Equal(t, []string{"l", "k", "j"}, queries(store.List(3)))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	_, err := store.Upsert(ctx, "swift")
	require.NoError(t, err)
	_, err = store.Upsert(ctx, "go")
	require.NoError(t, err)
	writes := kv.sets

	require.NoError(t, store.Remove(ctx, "missing"))
	require.NoError(t, store.Remove(ctx, "   "))
	assert.Equal(t, writes, kv.sets, "no-op removes must not write")
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Remove(ctx, " SWIFT"))
	assert.Equal(t, []string{"go"}, queries(store.List(0)))
}

func TestRemove_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	_, err := store.Upsert(ctx, "swift")
	require.NoError(t, err)

	kv.setErr = errors.New("read-only")
	err = store.Remove(ctx, "swift")
	assert.True(t, IsStorageError(err))
	assert.Equal(t, 1, store.Len())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	for _, q := range []string{"a", "b", "c"} {
		_, err := store.Upsert(ctx, q)
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.List(0))
	_, ok, _ := kv.Get(ctx, DefaultKey)
	assert.False(t, ok, "slot should be removed")

	// clearing an empty store is fine
	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.List(0))
}

func TestClear_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	_, err := store.Upsert(ctx, "a")
	require.NoError(t, err)

	kv.rmErr = errors.New("locked")
	err = store.Clear(ctx)
	assert.True(t, IsStorageError(err))
	assert.Equal(t, 1, store.Len())
}

func TestInitialize_AbsorbsFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(kv *fakeKV)
	}{
		{"read error", func(kv *fakeKV) { kv.getErr = errors.New("io") }},
		{"corrupt json", func(kv *fakeKV) { kv.data[DefaultKey] = "{not json" }},
		{"future version", func(kv *fakeKV) { kv.data[DefaultKey] = `{"version":99,"queries":[]}` }},
		{"missing", func(kv *fakeKV) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newFakeKV()
			tt.setup(kv)

			store := newTestStore(kv)
			assert.Empty(t, store.List(0))
		})
	}
}

func TestInitialize_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[DefaultKey] = `{"version":1,"queries":[["swift","2026-10-16T09:00:00Z"]]}`

	store := newTestStore(kv)
	require.Equal(t, 1, store.Len())

	// later changes to the slot are not re-read
	kv.data[DefaultKey] = `{"version":1,"queries":[]}`
	store.Initialize(ctx)
	assert.Equal(t, 1, store.Len())
}

func TestMutationBeforeInitializeKeepsPersistedData(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[DefaultKey] = `{"version":1,"queries":[["swift","2026-10-16T09:00:00Z"]]}`

	store := New(kv, WithClock(newClock().Now), WithLogger(logging.Discard()))
	_, err := store.Upsert(ctx, "go")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"swift", "go"}, queries(store.Snapshot()))
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeKV(), WithMaxEntries(3))

	for _, q := range []string{"a", "b", "c", "d", "e"} {
		_, err := store.Upsert(ctx, q)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"e", "d", "c"}, queries(store.List(0)))
}

func TestConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newTestStore(kv)

	var wg sync.WaitGroup
	for _, q := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, err := store.Upsert(ctx, q)
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())

	reloaded := newTestStore(kv)
	assert.Equal(t, 8, reloaded.Len(), "persisted slot should hold every update")
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"), logging.Discard())
	require.NoError(t, db.Init())
	defer db.Close()

	store := newTestStore(db)
	for _, q := range []string{"swift", "swiftlint", "MySwift"} {
		_, err := store.Upsert(ctx, q)
		require.NoError(t, err)
	}
	want := store.Snapshot()

	reopened := newTestStore(db)
	got := reopened.Snapshot()

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Query, got[i].Query)
		assert.True(t, want[i].LastUsedAt.Equal(got[i].LastUsedAt))
	}
}
