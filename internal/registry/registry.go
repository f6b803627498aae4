// Package registry tracks active rooms for the rendezvous service. Rooms
// live for a fixed TTL from creation regardless of activity; the host
// rebuilds its room after a registry restart, so nothing here needs to be
// durable.
package registry

import (
	"context"
	"errors"
)

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidToken      = errors.New("invalid join token")
	ErrRoomFull          = errors.New("room is full")
)

type RoomMetadata struct {
	RoomId          string
	HostSessionId   string
	HostPeerAddress string
	JoinTokenHash   string
	CreatedAt       int64
	ClientCount     int
}

type CreateRoomParams struct {
	RoomId          string
	HostSessionId   string
	HostPeerAddress string
	JoinTokenHash   string
}

type Registry interface {
	// CreateRoom fails with ErrRoomAlreadyExists on a duplicate room id.
	CreateRoom(ctx context.Context, params *CreateRoomParams) error
	// VerifyAndGetRoom checks the join token before capacity, so
	// ErrInvalidToken and ErrRoomFull stay distinguishable to the caller.
	VerifyAndGetRoom(ctx context.Context, roomId string, joinToken string) (RoomMetadata, error)
	// GetRoomByHostSessionId finds the room a rendezvous connection hosts,
	// for role-dispatched disconnect handling.
	GetRoomByHostSessionId(ctx context.Context, hostSessionId string) (RoomMetadata, error)
	// GetFirstActiveRoom returns any room with spare capacity. Which one is
	// deliberately unspecified; discovery mode expects a single room.
	GetFirstActiveRoom(ctx context.Context) (RoomMetadata, error)
	// AddClient increments the client count, enforcing capacity atomically:
	// ErrRoomFull when the room is already at its limit. Verification alone
	// cannot carry the capacity check, two joins may race past it.
	AddClient(ctx context.Context, roomId string) error
	// RemoveClient decrements the client count, never below zero.
	RemoveClient(ctx context.Context, roomId string) error
	// DeleteRoom is idempotent.
	DeleteRoom(ctx context.Context, roomId string) error
}
