package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

func runStoreContract(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "intro")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	snap := &ports.Snapshot{
		Chain:     "intro",
		Cursor:    3,
		History:   map[string]string{"logo": "middle", "background": "bgFull"},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, "intro", snap))

	got, err := store.Load(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, snap.Chain, got.Chain)
	assert.Equal(t, snap.Cursor, got.Cursor)
	assert.Equal(t, snap.History, got.History)
	assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))

	snap.Cursor = 4
	require.NoError(t, store.Save(ctx, "intro", snap))
	got, err = store.Load(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Cursor)

	require.NoError(t, store.Delete(ctx, "intro"))
	_, err = store.Load(ctx, "intro")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	assert.ErrorIs(t, store.Save(ctx, "../escape", snap), ErrInvalidID)
	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestFileStoreContract(t *testing.T) {
	runStoreContract(t, NewFileStore(t.TempDir()))
}

func TestFileStoreDeleteUnknownIsNoop(t *testing.T) {
	assert.NoError(t, NewFileStore(t.TempDir()).Delete(context.Background(), "nothing"))
}

func TestRedisStoreContract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	defer store.Close()

	runStoreContract(t, store)
}

func TestRedisStoreTTLAndPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), WithTTL(time.Minute), WithPrefix("test:"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), "intro", &ports.Snapshot{Chain: "intro"}))
	assert.True(t, mr.Exists("test:intro"))
	assert.Equal(t, time.Minute, mr.TTL("test:intro"))

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(context.Background(), "intro")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url")
	assert.Error(t, err)
}
