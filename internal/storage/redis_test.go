package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewRedisStorage(mr.Addr(), logger)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStorage_Ping(t *testing.T) {
	store, _ := setupTestRedis(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	store, _ := setupTestRedis(t)

	// A reachable server answers on the first attempt without sleeping.
	assert.NoError(t, store.WaitForConnection(context.Background()))
}

func TestRedisStorage_WaitForConnectionGivesUp(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WaitForConnection(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisStorage_SaveAndLoad(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	sess := state.NewSession()
	sess.Stage = state.StagePlaying
	sess.Append(chat.NewMessage(chat.ChatRoleUser, "I look around."))
	sess.Lore = []state.LoreEntry{{ID: "1", Title: "Emberwood", Type: state.LoreLocation, Known: true}}
	sess.Status = state.WorldStatus{WorldName: "Aetheria"}

	require.NoError(t, store.SaveSession(ctx, sess))
	assert.False(t, sess.UpdatedAt.IsZero())

	loaded, err := store.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, state.StagePlaying, loaded.Stage)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "I look around.", loaded.Messages[0].Text)
	assert.Equal(t, "Aetheria", loaded.Status.WorldName)
}

func TestRedisStorage_SaveOverwrites(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	first := state.NewSession()
	require.NoError(t, store.SaveSession(ctx, first))

	second := state.NewSession()
	require.NoError(t, store.SaveSession(ctx, second))

	// One save slot: the latest write wins.
	loaded, err := store.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, second.ID, loaded.ID)
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	loaded, err := store.LoadSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(sessionKey, "{not valid json"))

	// A corrupt save is discarded, not surfaced as an error.
	loaded, err := store.LoadSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, state.NewSession()))
	require.NoError(t, store.DeleteSession(ctx))

	loaded, err := store.LoadSession(ctx)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_SaveHasNoTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.SaveSession(context.Background(), state.NewSession()))

	// A playthrough must survive restarts indefinitely.
	assert.Zero(t, mr.TTL(sessionKey))
}
