package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/tasklist/domain/task"
)

// checkStorage runs the behaviour every task.Storage backend must share.
func checkStorage(t *testing.T, s task.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, task.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, task.DefaultStorageKey, []byte(`[{"id":"a"}]`)))
	got, err := s.Get(ctx, task.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, s.Set(ctx, task.DefaultStorageKey, []byte(`[]`)))
	got, err = s.Get(ctx, task.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "set replaces the previous value")

	require.NoError(t, s.Set(ctx, "other", []byte("plain text")))
	got, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(got))

	got, err = s.Get(ctx, task.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "keys are independent")
}
