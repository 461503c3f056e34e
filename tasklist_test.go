package tasklist_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/tasklist"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/identity"
	"github.com/helixml/tasklist/infrastructure/persistence"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// flakyStorage fails writes while down is set.
type flakyStorage struct {
	*persistence.MemoryStore
	down atomic.Bool
}

func (s *flakyStorage) Set(ctx context.Context, key string, value []byte) error {
	if s.down.Load() {
		return errors.New("storage offline")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestNew_RequiresStorage(t *testing.T) {
	_, err := tasklist.New()
	assert.ErrorIs(t, err, tasklist.ErrNoStorage)
}

func TestNew_UnsupportedStorage(t *testing.T) {
	_, err := tasklist.New(tasklist.WithDatabaseURL("redis://localhost"))
	assert.ErrorIs(t, err, tasklist.ErrUnsupportedStorage)
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	client, err := tasklist.New(
		tasklist.WithMemory(),
		tasklist.WithIDGenerator(identity.NewSequence("t")),
	)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	created, ok, err := client.Tasks.CreateFrom(ctx, "buy milk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t-1", created.ID())
	assert.Equal(t, 1, client.Tasks.Count())
}

func TestNew_SQLiteReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	client, err := tasklist.New(tasklist.WithSQLite(path))
	require.NoError(t, err)
	added, _, err := client.Tasks.CreateFrom(ctx, "water plants")
	require.NoError(t, err)
	_, err = client.Tasks.Toggle(ctx, added.ID())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	reopened, err := tasklist.New(tasklist.WithSQLite(path))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Tasks.Get(added.ID())
	require.NoError(t, err)
	assert.Equal(t, "water plants", got.Name())
	assert.True(t, got.Finished())
}

func TestNew_FileReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.yaml")

	client, err := tasklist.New(tasklist.WithFile(path))
	require.NoError(t, err)
	_, _, err = client.Tasks.CreateFrom(ctx, "one")
	require.NoError(t, err)
	_, _, err = client.Tasks.CreateFrom(ctx, "two")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	reopened, err := tasklist.New(tasklist.WithFile(path))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	names := make([]string, 0, 2)
	for _, tk := range reopened.Tasks.Tasks() {
		names = append(names, tk.Name())
	}
	assert.Equal(t, []string{"one", "two"}, names)
}

func TestNew_StorageKey(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()

	client, err := tasklist.New(
		tasklist.WithStorage(store),
		tasklist.WithStorageKey("other"),
	)
	require.NoError(t, err)
	_, _, err = client.Tasks.CreateFrom(ctx, "a")
	require.NoError(t, err)

	_, err = store.Get(ctx, task.DefaultStorageKey)
	assert.ErrorIs(t, err, task.ErrKeyNotFound)
	data, err := store.Get(ctx, "other")
	require.NoError(t, err)
	c, err := task.UnmarshalCollection(data)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestClient_CloseTwice(t *testing.T) {
	client, err := tasklist.New(tasklist.WithMemory())
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), tasklist.ErrClientClosed)
}

func TestClient_CloseRunsClosers(t *testing.T) {
	calls := 0
	client, err := tasklist.New(
		tasklist.WithMemory(),
		tasklist.WithCloser(closerFunc(func() error {
			calls++
			return nil
		})),
	)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.Equal(t, 1, calls)
}

func TestClient_CloseReportsCloserError(t *testing.T) {
	boom := errors.New("boom")
	client, err := tasklist.New(
		tasklist.WithMemory(),
		tasklist.WithCloser(closerFunc(func() error { return boom })),
	)
	require.NoError(t, err)

	assert.ErrorIs(t, client.Close(), boom)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	urls := []string{
		"memory://",
		"file://" + filepath.Join(dir, "tasks.json"),
		"sqlite:///" + filepath.Join(dir, "tasks.db"),
	}
	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			store, closer, err := tasklist.OpenStorage(ctx, url, nil)
			require.NoError(t, err)
			defer func() { _ = closer.Close() }()

			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}
}

func TestClient_PersistRetry(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{MemoryStore: persistence.NewMemoryStore()}
	store.down.Store(true)

	client, err := tasklist.New(
		tasklist.WithStorage(store),
		tasklist.WithPersistRetry(5*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, _, err = client.Tasks.CreateFrom(ctx, "offline")
	require.ErrorIs(t, err, tasklist.ErrPersistence)

	store.down.Store(false)
	require.Eventually(t, func() bool { return !client.Tasks.Dirty() }, time.Second, 5*time.Millisecond)

	data, err := store.Get(ctx, task.DefaultStorageKey)
	require.NoError(t, err)
	c, err := task.UnmarshalCollection(data)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestClient_CloseFlushes(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{MemoryStore: persistence.NewMemoryStore()}
	store.down.Store(true)

	client, err := tasklist.New(tasklist.WithStorage(store))
	require.NoError(t, err)
	_, _, err = client.Tasks.CreateFrom(ctx, "late")
	require.ErrorIs(t, err, tasklist.ErrPersistence)

	store.down.Store(false)
	require.NoError(t, client.Close())

	_, err = store.Get(ctx, task.DefaultStorageKey)
	assert.NoError(t, err)
}
