// Package guest implements the remote-control side of a room. A guest holds
// no authoritative state: it joins through the rendezvous service, dials the
// host's peer address, sends commands, and replaces its local snapshot with
// every STATE_UPDATE the host pushes.
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/karaokenatin/roomsync/internal/command"
	"github.com/karaokenatin/roomsync/internal/domain"
	"github.com/karaokenatin/roomsync/internal/metadata"
	"github.com/karaokenatin/roomsync/internal/peer"
	"github.com/karaokenatin/roomsync/internal/rendezvous"
)

var (
	ErrClosed       = errors.New("session is closed")
	ErrJoinRejected = errors.New("join rejected")
)

const (
	closeReasonHostDisconnected = "host disconnected"
	closeReasonLinkLost         = "peer link lost"
	closeReasonLocal            = "closed by user"
)

type Config struct {
	// RendezvousUrl is the signaling endpoint, e.g. ws://example.com/ws.
	RendezvousUrl string
	// RoomId empty or "default" selects discovery mode.
	RoomId      string
	JoinToken   string
	DisplayName string

	OnState  func(domain.RoomState)
	OnError  func(code string, message string)
	OnClosed func(reason string)

	Logger *slog.Logger
}

type Session struct {
	cfg      Config
	applier  *applier
	logger   *slog.Logger
	peerConn *websocket.Conn
	rdvConn  *websocket.Conn

	writeMu sync.Mutex

	pongCh    chan int64
	resultsCh chan []metadata.SearchResult

	closeOnce sync.Once
	done      chan struct{}
}

// Connect performs the full join: rendezvous handshake, peer dial, display
// name announcement. On return the read loops are running and the first
// snapshot is on its way.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	rdvConn, joined, err := joinViaRendezvous(ctx, cfg)
	if err != nil {
		return nil, err
	}

	peerConn, _, err := websocket.DefaultDialer.DialContext(ctx, joined.HostPeerAddress+"/peer", nil)
	if err != nil {
		rdvConn.Close()
		return nil, fmt.Errorf("failed to dial host peer address: %w", err)
	}

	s := &Session{
		cfg:       cfg,
		applier:   newApplier(cfg.OnState),
		logger:    cfg.Logger,
		peerConn:  peerConn,
		rdvConn:   rdvConn,
		pongCh:    make(chan int64, 1),
		resultsCh: make(chan []metadata.SearchResult, 1),
		done:      make(chan struct{}),
	}

	if err := s.SendCommand(&command.SetDisplayName{Name: cfg.DisplayName}); err != nil {
		s.teardown(closeReasonLinkLost)
		return nil, err
	}

	go s.peerReadLoop()
	go s.rendezvousWatchLoop()

	s.logger.InfoContext(ctx, "joined room", "room_id", joined.RoomId)
	return s, nil
}

// joinViaRendezvous runs the JOIN_ROOM exchange and keeps the connection
// open afterwards; the rendezvous service uses it for presence accounting
// and to announce HOST_DISCONNECTED.
func joinViaRendezvous(ctx context.Context, cfg Config) (*websocket.Conn, *rendezvous.JoinSuccessPayload, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.RendezvousUrl, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial rendezvous service: %w", err)
	}

	join := struct {
		Type    string                   `json:"type"`
		Payload rendezvous.JoinRoomInput `json:"payload"`
	}{
		Type: rendezvous.EventJoinRoom,
		Payload: rendezvous.JoinRoomInput{
			RoomId:      cfg.RoomId,
			JoinToken:   cfg.JoinToken,
			DisplayName: cfg.DisplayName,
		},
	}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to send join: %w", err)
	}

	for {
		var output struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&output); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("rendezvous connection lost: %w", err)
		}

		switch output.Type {
		case rendezvous.EventJoinSuccess:
			var payload rendezvous.JoinSuccessPayload
			if err := json.Unmarshal(output.Payload, &payload); err != nil {
				conn.Close()
				return nil, nil, fmt.Errorf("failed to parse join response: %w", err)
			}
			return conn, &payload, nil

		case rendezvous.EventJoinRejected:
			var payload rendezvous.JoinRejectedPayload
			_ = json.Unmarshal(output.Payload, &payload)
			conn.Close()
			return nil, nil, fmt.Errorf("%w: %s", ErrJoinRejected, payload.Reason)

		case rendezvous.EventError:
			var payload rendezvous.ErrorPayload
			_ = json.Unmarshal(output.Payload, &payload)
			conn.Close()
			return nil, nil, fmt.Errorf("rendezvous error %s: %s", payload.Code, payload.Message)

		default:
			// unrelated event during handshake, keep reading
		}
	}
}

// SendCommand ships a command to the host. After close it drops the command
// with a warning; there is nobody left to apply it.
func (s *Session) SendCommand(cmd command.Command) error {
	select {
	case <-s.done:
		s.logger.Warn("dropping command, session closed", "command", cmd.CommandType())
		return ErrClosed
	default:
	}

	data, err := command.Encode(cmd)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.peerConn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) sendFrame(frame peer.Frame) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	data, err := peer.Encode(frame)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.peerConn.WriteMessage(websocket.TextMessage, data)
}

// Suppress holds back incoming snapshots while the user is mid-edit.
func (s *Session) Suppress() { s.applier.suppress() }

// Release resumes snapshot delivery and applies the newest held-back one.
func (s *Session) Release() { s.applier.release() }

// Search asks the host to run a metadata search and waits for the results.
func (s *Session) Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error) {
	if err := s.sendFrame(&peer.Search{Query: query, Limit: limit}); err != nil {
		return nil, err
	}

	select {
	case results := <-s.resultsCh:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrClosed
	}
}

// Ping measures liveness of the peer link, returning the host's clock.
func (s *Session) Ping(ctx context.Context) (int64, error) {
	if err := s.SendCommand(&command.Ping{}); err != nil {
		return 0, err
	}

	select {
	case serverTime := <-s.pongCh:
		return serverTime, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
		return 0, ErrClosed
	}
}

// Close leaves the room. The rendezvous service sees the connection drop and
// decrements the room; the host sees the peer link drop and removes the
// guest from presence.
func (s *Session) Close() error {
	s.teardown(closeReasonLocal)
	return nil
}

func (s *Session) peerReadLoop() {
	for {
		_, data, err := s.peerConn.ReadMessage()
		if err != nil {
			s.teardown(closeReasonLinkLost)
			return
		}

		frame, err := peer.DecodeGuestbound(data)
		if err != nil {
			// forward compatibility: skip frames this build does not know,
			// STATE_PATCH included
			s.logger.Debug("skipping unknown frame", "error", err)
			continue
		}

		switch f := frame.(type) {
		case *peer.StateUpdate:
			s.applier.apply(f.State)
		case *peer.Error:
			if s.cfg.OnError != nil {
				s.cfg.OnError(f.Code, f.Message)
			}
		case *peer.Pong:
			select {
			case s.pongCh <- f.ServerTime:
			default:
			}
		case *peer.SearchResults:
			select {
			case s.resultsCh <- f.Results:
			default:
			}
		}
	}
}

// rendezvousWatchLoop waits for HOST_DISCONNECTED. When the host is gone the
// room is gone; the guest tears down and does not reconnect.
func (s *Session) rendezvousWatchLoop() {
	for {
		var output struct {
			Type string `json:"type"`
		}
		if err := s.rdvConn.ReadJSON(&output); err != nil {
			return
		}
		if output.Type == rendezvous.EventHostDisconnected {
			s.teardown(closeReasonHostDisconnected)
			return
		}
	}
}

func (s *Session) teardown(reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		s.peerConn.Close()
		s.rdvConn.Close()
		s.logger.Info("session closed", "reason", reason)
		if s.cfg.OnClosed != nil {
			s.cfg.OnClosed(reason)
		}
	})
}
