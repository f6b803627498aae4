// Package host runs the authoritative side of a room: it accepts guest peer
// links, applies their commands through the room reducer, and pushes full
// sanitized snapshots after every mutation. The rendezvous service is not on
// this path; once a link is up the host answers guests directly.
package host

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/karaokenatin/roomsync/internal/domain"
	"github.com/karaokenatin/roomsync/internal/metadata"
	"github.com/karaokenatin/roomsync/internal/peer"
	"github.com/karaokenatin/roomsync/internal/room"
	"github.com/karaokenatin/roomsync/pkg/ctxlogger"
)

const defaultDisplayName = "Guest"

type Session struct {
	reducer  *room.Reducer
	resolver metadata.Resolver
	searcher metadata.Searcher
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	links map[string]*link

	// stateMu serializes each mutation with its broadcast. The reducer
	// already orders the mutations; without this lock two links' broadcasts
	// could still cross on the wire and leave a guest holding the older
	// snapshot until the next mutation.
	stateMu sync.Mutex
}

func NewSession(roomId string, hostPeerAddress string, resolver metadata.Resolver, searcher metadata.Searcher, logger *slog.Logger) *Session {
	return &Session{
		reducer:  room.NewReducer(roomId, hostPeerAddress),
		resolver: resolver,
		searcher: searcher,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		links: make(map[string]*link),
	}
}

// State returns a deep snapshot of the authoritative state, all collections
// included.
func (s *Session) State() domain.RoomState {
	return s.reducer.State()
}

// GetMux serves the peer endpoint guests dial after rendezvous.
func (s *Session) GetMux() http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/peer", s.servePeer)
	return r
}

func (s *Session) servePeer(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "failed to upgrade peer link", "error", err)
		return
	}
	defer conn.Close()

	clientId := uuid.NewString()
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("client_id", clientId))
	l := &link{clientId: clientId, conn: conn}

	s.register(l)
	s.mutate(func() (domain.RoomState, error) {
		return s.reducer.AddClient(clientId, defaultDisplayName), nil
	})
	s.logger.InfoContext(ctx, "peer link opened")

	s.readLoop(ctx, l)

	if s.unregister(l) {
		s.mutate(func() (domain.RoomState, error) {
			return s.reducer.RemoveClient(clientId), nil
		})
		s.logger.InfoContext(ctx, "peer link closed")
	}
}

// mutate runs one state mutation and broadcasts its result while holding
// stateMu, so every link receives snapshots in the order the reducer
// produced them. A failed mutation broadcasts nothing.
func (s *Session) mutate(fn func() (domain.RoomState, error)) (domain.RoomState, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	state, err := fn()
	if err != nil {
		return state, err
	}

	s.broadcast(state)
	return state, nil
}

func (s *Session) readLoop(ctx context.Context, l *link) {
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := peer.DecodeHostbound(data)
		if err != nil {
			s.logger.DebugContext(ctx, "undecodable frame", "error", err)
			s.sendError(l, codeUnknownCommand, err.Error())
			continue
		}

		s.dispatch(ctx, l, msg)
	}
}

// broadcast pushes a sanitized full snapshot to every connected guest.
// Guests replace their copy wholesale, so dropping an older snapshot in
// favor of a newer one is always safe.
func (s *Session) broadcast(state domain.RoomState) {
	frame := &peer.StateUpdate{State: state.Sanitized()}
	for _, l := range s.activeLinks() {
		if err := l.send(frame); err != nil {
			s.logger.Debug("failed to push state", "client_id", l.clientId, "error", err)
		}
	}
}

func (s *Session) sendError(l *link, code string, message string) {
	if err := l.send(&peer.Error{Code: code, Message: message}); err != nil {
		s.logger.Debug("failed to send error frame", "client_id", l.clientId, "error", err)
	}
}

// UpdatePlayerStatus feeds playback telemetry from the host's own player
// surface into the room. Nil fields are left untouched.
func (s *Session) UpdatePlayerStatus(status *domain.PlayerStatus, currentTime *float64, duration *float64) domain.RoomState {
	state, _ := s.mutate(func() (domain.RoomState, error) {
		return s.reducer.UpdatePlayerState(status, currentTime, duration), nil
	})
	return state
}

// ExportCollection serializes a collection to the exchange document. Host
// surface only; guests never export.
func (s *Session) ExportCollection(collectionId string) (string, error) {
	return s.reducer.ExportCollection(collectionId)
}

// resolveSong turns a raw URL into a fully populated Song, stamping a fresh
// id and the adder's identity.
func (s *Session) resolveSong(ctx context.Context, youtubeUrl string, addedBy string) (domain.Song, error) {
	videoId, ok := metadata.ExtractVideoId(youtubeUrl)
	if !ok {
		return domain.Song{}, metadata.ErrResolutionFailed
	}

	data, err := s.resolver.Resolve(ctx, videoId)
	if err != nil {
		return domain.Song{}, err
	}

	return domain.Song{
		Id:           uuid.NewString(),
		YoutubeId:    videoId,
		Title:        data.Title,
		Artist:       data.Artist,
		Duration:     data.Duration,
		ThumbnailUrl: data.ThumbnailUrl,
		AddedBy:      addedBy,
		AddedAt:      time.Now().UnixMilli(),
	}, nil
}
