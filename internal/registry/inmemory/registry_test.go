package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaokenatin/roomsync/internal/registry"
	"github.com/karaokenatin/roomsync/pkg/token"
)

func newTestRegistry(maxClients int) *Registry {
	return NewRegistry(maxClients, 12*time.Hour, slog.Default())
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

func TestCreateRoomDuplicate(t *testing.T) {
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	err := r.CreateRoom(context.Background(), &registry.CreateRoomParams{RoomId: "room-1"})
	assert.ErrorIs(t, err, registry.ErrRoomAlreadyExists)
}

func TestVerifyAndGetRoom(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	room, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.RoomId)
	assert.Equal(t, "ws://host.local:9000", room.HostPeerAddress)

	_, err = r.VerifyAndGetRoom(ctx, "room-1", "wrong")
	assert.ErrorIs(t, err, registry.ErrInvalidToken)

	_, err = r.VerifyAndGetRoom(ctx, "nope", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
}

func TestCapacityLimit(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	for i := 0; i < 10; i++ {
		_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
		require.NoError(t, err, "client %d should fit", i)
		require.NoError(t, r.AddClient(ctx, "room-1"))
	}

	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomFull)

	// token is checked before capacity
	_, err = r.VerifyAndGetRoom(ctx, "room-1", "wrong")
	assert.ErrorIs(t, err, registry.ErrInvalidToken)

	// a leave frees a slot
	require.NoError(t, r.RemoveClient(ctx, "room-1"))
	_, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.NoError(t, err)
}

func TestAddClientEnforcesCapacityAtomically(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(1)
	createTestRoom(t, r, "room-1")

	// two joins racing for the last slot both pass verification
	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	_, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)

	// only one increment wins
	require.NoError(t, r.AddClient(ctx, "room-1"))
	assert.ErrorIs(t, r.AddClient(ctx, "room-1"), registry.ErrRoomFull)
}

func TestRemoveClientFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	require.NoError(t, r.RemoveClient(ctx, "room-1"))
	require.NoError(t, r.RemoveClient(ctx, "room-1"))

	room, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	require.NoError(t, err)
	assert.Equal(t, 0, room.ClientCount)
}

func TestGetRoomByHostSessionId(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	room, err := r.GetRoomByHostSessionId(ctx, "host-room-1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.RoomId)

	_, err = r.GetRoomByHostSessionId(ctx, "ghost")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
}

func TestGetFirstActiveRoomSkipsFullRooms(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(1)

	_, err := r.GetFirstActiveRoom(ctx)
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)

	createTestRoom(t, r, "room-1")
	require.NoError(t, r.AddClient(ctx, "room-1"))

	_, err = r.GetFirstActiveRoom(ctx)
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)

	createTestRoom(t, r, "room-2")
	room, err := r.GetFirstActiveRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "room-2", room.RoomId)
}

func TestDeleteRoomIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)
	createTestRoom(t, r, "room-1")

	require.NoError(t, r.DeleteRoom(ctx, "room-1"))
	require.NoError(t, r.DeleteRoom(ctx, "room-1"))

	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
}

func TestSweepExpiresByCreationTime(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)

	clock := int64(0)
	r.nowMs = func() int64 { return clock }

	createTestRoom(t, r, "room-1")
	require.NoError(t, r.AddClient(ctx, "room-1"))

	// 11 hours in: still alive, even though clients are connected
	clock = 11 * time.Hour.Milliseconds()
	assert.Equal(t, 0, r.Sweep(ctx))
	_, err := r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.NoError(t, err)

	// 13 hours in: expired despite activity, TTL counts from creation
	clock = 13 * time.Hour.Milliseconds()
	assert.Equal(t, 1, r.Sweep(ctx))
	_, err = r.VerifyAndGetRoom(ctx, "room-1", "letmein")
	assert.ErrorIs(t, err, registry.ErrRoomNotFound)
}

func TestSweepLeavesYoungRooms(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(10)

	clock := int64(0)
	r.nowMs = func() int64 { return clock }

	for i := 0; i < 3; i++ {
		createTestRoom(t, r, fmt.Sprintf("old-%d", i))
	}
	clock = 10 * time.Hour.Milliseconds()
	createTestRoom(t, r, "young")

	clock = 13 * time.Hour.Milliseconds()
	assert.Equal(t, 3, r.Sweep(ctx))

	_, err := r.VerifyAndGetRoom(ctx, "young", "letmein")
	assert.NoError(t, err)
}
