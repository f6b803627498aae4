package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karaokenatin/roomsync/internal/registry"
	"github.com/karaokenatin/roomsync/pkg/token"
)

type Registry struct {
	rooms      map[string]*registry.RoomMetadata
	mu         sync.RWMutex
	maxClients int
	ttl        time.Duration
	nowMs      func() int64
	logger     *slog.Logger
}

func NewRegistry(maxClients int, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:      make(map[string]*registry.RoomMetadata),
		maxClients: maxClients,
		ttl:        ttl,
		nowMs:      func() int64 { return time.Now().UnixMilli() },
		logger:     logger,
	}
}

func (r *Registry) CreateRoom(ctx context.Context, params *registry.CreateRoomParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[params.RoomId]; ok {
		return registry.ErrRoomAlreadyExists
	}

	r.rooms[params.RoomId] = &registry.RoomMetadata{
		RoomId:          params.RoomId,
		HostSessionId:   params.HostSessionId,
		HostPeerAddress: params.HostPeerAddress,
		JoinTokenHash:   params.JoinTokenHash,
		CreatedAt:       r.nowMs(),
		ClientCount:     0,
	}

	r.logger.DebugContext(ctx, "room created", "room_id", params.RoomId)
	return nil
}

func (r *Registry) VerifyAndGetRoom(ctx context.Context, roomId string, joinToken string) (registry.RoomMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return registry.RoomMetadata{}, registry.ErrRoomNotFound
	}
	if !token.Verify(joinToken, room.JoinTokenHash) {
		return registry.RoomMetadata{}, registry.ErrInvalidToken
	}
	if room.ClientCount >= r.maxClients {
		return registry.RoomMetadata{}, registry.ErrRoomFull
	}

	return *room, nil
}

func (r *Registry) GetRoomByHostSessionId(ctx context.Context, hostSessionId string) (registry.RoomMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.HostSessionId == hostSessionId {
			return *room, nil
		}
	}

	return registry.RoomMetadata{}, registry.ErrRoomNotFound
}

func (r *Registry) GetFirstActiveRoom(ctx context.Context) (registry.RoomMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.ClientCount < r.maxClients {
			return *room, nil
		}
	}

	return registry.RoomMetadata{}, registry.ErrRoomNotFound
}

func (r *Registry) AddClient(ctx context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return registry.ErrRoomNotFound
	}
	if room.ClientCount >= r.maxClients {
		return registry.ErrRoomFull
	}
	room.ClientCount++
	return nil
}

func (r *Registry) RemoveClient(ctx context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return registry.ErrRoomNotFound
	}
	if room.ClientCount > 0 {
		room.ClientCount--
	}
	return nil
}

func (r *Registry) DeleteRoom(ctx context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomId)
	return nil
}

// Sweep removes every room older than the TTL, regardless of activity.
// Returns the number of rooms removed.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.nowMs() - r.ttl.Milliseconds()
	removed := 0
	for roomId, room := range r.rooms {
		if room.CreatedAt <= cutoff {
			delete(r.rooms, roomId)
			removed++
		}
	}

	if removed > 0 {
		r.logger.InfoContext(ctx, "swept expired rooms", "count", removed)
	}
	return removed
}

// StartSweep runs Sweep every interval until ctx is cancelled.
func (r *Registry) StartSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
