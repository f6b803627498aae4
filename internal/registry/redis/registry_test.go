package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaokenatin/roomsync/internal/registry"
	"github.com/karaokenatin/roomsync/pkg/token"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	return NewRegistry(rc, 10, 12*time.Hour, slog.Default()), s
}

func createTestRoom(t *testing.T, r *Registry, roomId string) {
	t.Helper()
	require.NoError(t, r.CreateRoom(context.Background(), &registry.CreateRoomParams{
		RoomId:          roomId,
		HostSessionId:   "host-" + roomId,
		HostPeerAddress: "ws://host.local:9000",
		JoinTokenHash:   token.Hash("letmein"),
	}))
}

func TestCreateAndVerifyRoom(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	createTestRoom(t, r, "room-1")

	err := r.CreateRoom(ctx, &registry.CreateRoomParams{RoomId: "room-1"})
	assert.ErrorIs(t, err, registry.ErrRoomAlreadyExists)

	room, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	assert.Equal(t, "host-room-1", room.HostSessionId)
	assert.Equal(t, "ws://host.local:9000", room.HostPeerAddress)
	assert.Equal(t, 0, room.ClientCount)

	_, err = r.VerifyAndGetRoom(ctx, "room-1", "wrong")
	assert.ErrorIs(t, err, registry.ErrInvalidToken)
}

func TestClientCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	createTestRoom(t, r, "room-1")

	require.NoError(t, r.AddClient(ctx, "room-1"))
	require.NoError(t, r.AddClient(ctx, "room-1"))

	room, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	assert.Equal(t, 2, room.ClientCount)

	require.NoError(t, r.RemoveClient(ctx, "room-1"))
	require.NoError(t, r.RemoveClient(ctx, "room-1"))
	require.NoError(t, r.RemoveClient(ctx, "room-1"))

	room, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	assert.Equal(t, 0, room.ClientCount, "client count must not go negative")
}

func TestAddClientEnforcesCapacityAtomically(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	r := NewRegistry(rc, 2, 12*time.Hour, slog.Default())
	createTestRoom(t, r, "room-1")

	// both racers passed verification before either increment landed
	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)

	require.NoError(t, r.AddClient(ctx, "room-1"))
	require.NoError(t, r.AddClient(ctx, "room-1"))
	assert.ErrorIs(t, r.AddClient(ctx, "room-1"), registry.ErrRoomFull)

	_, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.ErrorIs(t, err, registry.ErrRoomFull)

	// a leave reopens the slot
	require.NoError(t, r.RemoveClient(ctx, "room-1"))
	assert.NoError(t, r.AddClient(ctx, "room-1"))
}

func TestAddClientUnknownRoom(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.AddClient(context.Background(), "ghost")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
}

func TestRoomExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRegistry(t)
	createTestRoom(t, r, "room-1")

	s.FastForward(11 * time.Hour)
	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.NoError(t, err)

	s.FastForward(2 * time.Hour)
	_, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)

	// the index entry was pruned on the failed read
	assert.NotContains(t, s.Keys(), roomIndexKey)
}

func TestGetFirstActiveRoom(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	_, err := r.GetFirstActiveRoom(ctx)
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)

	createTestRoom(t, r, "room-1")
	room, err := r.GetFirstActiveRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.RoomId)
}

func TestGetRoomByHostSessionId(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	createTestRoom(t, r, "room-1")
	createTestRoom(t, r, "room-2")

	room, err := r.GetRoomByHostSessionId(ctx, "host-room-2")
	require.NoError(t, err)
	assert.Equal(t, "room-2", room.RoomId)
}

func TestDeleteRoom(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRegistry(t)
	createTestRoom(t, r, "room-1")

	require.NoError(t, r.DeleteRoom(ctx, "room-1"))
	require.NoError(t, r.DeleteRoom(ctx, "room-1"))

	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
	assert.Empty(t, s.Keys())
}
