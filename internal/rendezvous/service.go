// Package rendezvous matches hosts and guests: it authorizes joins against
// the room registry and hands the guest the host's peer address, then stays
// out of the data path. Its only steady-state duty is propagating
// disconnects.
package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/karaokenatin/roomsync/internal/registry"
	"github.com/karaokenatin/roomsync/pkg/token"
)

// discovery mode sentinel accepted in JoinRoomInput.RoomId
const discoveryRoomId = "default"

const (
	reasonInvalidRoomOrToken = "Invalid room or token"
	reasonRoomFull           = "Room is full"
	reasonNoActiveHost       = "No active host found. Please start the host app first."
)

// RejectionError is a join refusal with a user-facing reason. It is
// reported to the guest as JOIN_REJECTED, unlike internal errors which
// become ERROR frames.
type RejectionError struct {
	Reason string
}

func (e RejectionError) Error() string {
	return "join rejected: " + e.Reason
}

type Service struct {
	registry registry.Registry
	conns    *connTracker
	logger   *slog.Logger
}

func NewService(reg registry.Registry, logger *slog.Logger) *Service {
	return &Service{
		registry: reg,
		conns:    newConnTracker(),
		logger:   logger,
	}
}

type CreateRoomParams struct {
	Conn            *websocket.Conn
	RoomId          string
	JoinTokenHash   string
	HostPeerAddress string
}

type CreateRoomResponse struct {
	RoomId string
}

func (s *Service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomId := params.RoomId
	if roomId == "" {
		roomId = token.GenerateRoomId()
	}

	if err := s.registry.CreateRoom(ctx, &registry.CreateRoomParams{
		RoomId:          roomId,
		HostSessionId:   uuid.NewString(),
		HostPeerAddress: params.HostPeerAddress,
		JoinTokenHash:   params.JoinTokenHash,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.conns.trackHost(params.Conn, roomId)
	s.logger.InfoContext(ctx, "room created", "room_id", roomId)

	return CreateRoomResponse{RoomId: roomId}, nil
}

type JoinRoomParams struct {
	Conn        *websocket.Conn
	RoomId      string
	JoinToken   string
	DisplayName string
}

type JoinRoomResponse struct {
	RoomId          string
	ClientId        string
	HostPeerAddress string
	// HostConn receives the CLIENT_JOINED notification; nil when the host's
	// rendezvous connection is already gone.
	HostConn *websocket.Conn
}

func (s *Service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	var (
		room registry.RoomMetadata
		err  error
	)

	if params.RoomId == "" || params.RoomId == discoveryRoomId {
		room, err = s.registry.GetFirstActiveRoom(ctx)
		if err != nil {
			if errors.Is(err, registry.ErrRoomNotFound) {
				return JoinRoomResponse{}, RejectionError{Reason: reasonNoActiveHost}
			}
			return JoinRoomResponse{}, fmt.Errorf("failed to find active room: %w", err)
		}
	} else {
		room, err = s.registry.VerifyAndGetRoom(ctx, params.RoomId, params.JoinToken)
		if err != nil {
			switch {
			case errors.Is(err, registry.ErrRoomFull):
				return JoinRoomResponse{}, RejectionError{Reason: reasonRoomFull}
			case errors.Is(err, registry.ErrRoomNotFound), errors.Is(err, registry.ErrInvalidToken):
				return JoinRoomResponse{}, RejectionError{Reason: reasonInvalidRoomOrToken}
			default:
				return JoinRoomResponse{}, fmt.Errorf("failed to verify room: %w", err)
			}
		}
	}

	// capacity is enforced here, not at verification: two joins racing for
	// the last slot both pass VerifyAndGetRoom, only one increment wins
	if err := s.registry.AddClient(ctx, room.RoomId); err != nil {
		switch {
		case errors.Is(err, registry.ErrRoomFull):
			return JoinRoomResponse{}, RejectionError{Reason: reasonRoomFull}
		case errors.Is(err, registry.ErrRoomNotFound):
			return JoinRoomResponse{}, RejectionError{Reason: reasonInvalidRoomOrToken}
		default:
			return JoinRoomResponse{}, fmt.Errorf("failed to add client: %w", err)
		}
	}

	clientId := uuid.NewString()
	s.conns.trackGuest(params.Conn, clientId, room.RoomId)
	s.logger.InfoContext(ctx, "client joined", "room_id", room.RoomId, "client_id", clientId, "display_name", params.DisplayName)

	hostConn, _ := s.conns.hostConn(room.RoomId)
	return JoinRoomResponse{
		RoomId:          room.RoomId,
		ClientId:        clientId,
		HostPeerAddress: room.HostPeerAddress,
		HostConn:        hostConn,
	}, nil
}

type DisconnectResponse struct {
	// WasHost: the room is deleted and GuestConns must be told
	// HOST_DISCONNECTED. Otherwise ClientId/HostConn describe a guest leave.
	WasHost    bool
	RoomId     string
	ClientId   string
	GuestConns []*websocket.Conn
	HostConn   *websocket.Conn
}

// Disconnect routes both explicit LEAVE_ROOM events and transport drops.
// Role dispatch: a host drop deletes the room, a guest drop decrements the
// room, anything else is a no-op.
func (s *Service) Disconnect(ctx context.Context, conn *websocket.Conn) (DisconnectResponse, error) {
	if roomId, ok := s.conns.hostRoom(conn); ok {
		s.conns.untrackHost(conn)
		guestConns := s.conns.untrackRoomGuests(roomId)

		if err := s.registry.DeleteRoom(ctx, roomId); err != nil {
			return DisconnectResponse{}, fmt.Errorf("failed to delete room: %w", err)
		}

		s.logger.InfoContext(ctx, "host disconnected, room deleted", "room_id", roomId)
		return DisconnectResponse{WasHost: true, RoomId: roomId, GuestConns: guestConns}, nil
	}

	if info, ok := s.conns.guest(conn); ok {
		s.conns.untrackGuest(conn)

		if err := s.registry.RemoveClient(ctx, info.roomId); err != nil && !errors.Is(err, registry.ErrRoomNotFound) {
			return DisconnectResponse{}, fmt.Errorf("failed to remove client: %w", err)
		}

		hostConn, _ := s.conns.hostConn(info.roomId)
		s.logger.InfoContext(ctx, "client left", "room_id", info.roomId, "client_id", info.clientId)
		return DisconnectResponse{RoomId: info.roomId, ClientId: info.clientId, HostConn: hostConn}, nil
	}

	// never created or joined anything
	return DisconnectResponse{}, nil
}
