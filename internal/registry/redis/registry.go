// Redis-backed registry. Room TTL rides on key expiry instead of a sweep;
// the room index set is pruned lazily when an expired room is read through
// it.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karaokenatin/roomsync/internal/registry"
	"github.com/karaokenatin/roomsync/pkg/token"
)

const roomIndexKey = "rooms"

// Client count scripts run server-side so the check and the write are one
// atomic step. redis.Script loads lazily and falls back to EVAL when the
// sha is not cached yet.
var (
	incrCappedScript = redis.NewScript(`
		local count = tonumber(redis.call('HGET', KEYS[1], 'client_count') or '0')
		if count >= tonumber(ARGV[1]) then
			return -1
		end
		redis.call('HSET', KEYS[1], 'client_count', count + 1)
		return count + 1
	`)
	decrFloorScript = redis.NewScript(`
		local count = tonumber(redis.call('HGET', KEYS[1], 'client_count') or '0')
		if count > 0 then
			redis.call('HSET', KEYS[1], 'client_count', count - 1)
			return count - 1
		end
		return 0
	`)
)

type Registry struct {
	rc         *redis.Client
	maxClients int
	ttl        time.Duration
	logger     *slog.Logger
}

func NewRegistry(rc *redis.Client, maxClients int, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		rc:         rc,
		maxClients: maxClients,
		ttl:        ttl,
		logger:     logger,
	}
}

func (r *Registry) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r *Registry) CreateRoom(ctx context.Context, params *registry.CreateRoomParams) error {
	roomKey := r.getRoomKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check room existence: %w", err)
	}
	if exists > 0 {
		return registry.ErrRoomAlreadyExists
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey, map[string]any{
		"host_session_id":   params.HostSessionId,
		"host_peer_address": params.HostPeerAddress,
		"join_token_hash":   params.JoinTokenHash,
		"created_at":        time.Now().UnixMilli(),
		"client_count":      0,
	})
	pipe.Expire(ctx, roomKey, r.ttl)
	pipe.SAdd(ctx, roomIndexKey, params.RoomId)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	r.logger.DebugContext(ctx, "room created", "room_id", params.RoomId)
	return nil
}

func (r *Registry) getRoom(ctx context.Context, roomId string) (registry.RoomMetadata, error) {
	fields, err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return registry.RoomMetadata{}, err
	}
	if len(fields) == 0 {
		// expired or deleted, drop the stale index entry
		r.rc.SRem(ctx, roomIndexKey, roomId)
		return registry.RoomMetadata{}, registry.ErrRoomNotFound
	}

	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	clientCount, _ := strconv.Atoi(fields["client_count"])

	return registry.RoomMetadata{
		RoomId:          roomId,
		HostSessionId:   fields["host_session_id"],
		HostPeerAddress: fields["host_peer_address"],
		JoinTokenHash:   fields["join_token_hash"],
		CreatedAt:       createdAt,
		ClientCount:     clientCount,
	}, nil
}

func (r *Registry) VerifyAndGetRoom(ctx context.Context, roomId string, joinToken string) (registry.RoomMetadata, error) {
	room, err := r.getRoom(ctx, roomId)
	if err != nil {
		return registry.RoomMetadata{}, err
	}
	if !token.Verify(joinToken, room.JoinTokenHash) {
		return registry.RoomMetadata{}, registry.ErrInvalidToken
	}
	if room.ClientCount >= r.maxClients {
		return registry.RoomMetadata{}, registry.ErrRoomFull
	}

	return room, nil
}

func (r *Registry) GetRoomByHostSessionId(ctx context.Context, hostSessionId string) (registry.RoomMetadata, error) {
	roomIds, err := r.rc.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return registry.RoomMetadata{}, err
	}

	for _, roomId := range roomIds {
		room, err := r.getRoom(ctx, roomId)
		if err != nil {
			continue
		}
		if room.HostSessionId == hostSessionId {
			return room, nil
		}
	}

	return registry.RoomMetadata{}, registry.ErrRoomNotFound
}

func (r *Registry) GetFirstActiveRoom(ctx context.Context) (registry.RoomMetadata, error) {
	roomIds, err := r.rc.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return registry.RoomMetadata{}, err
	}

	for _, roomId := range roomIds {
		room, err := r.getRoom(ctx, roomId)
		if err != nil {
			continue
		}
		if room.ClientCount < r.maxClients {
			return room, nil
		}
	}

	return registry.RoomMetadata{}, registry.ErrRoomNotFound
}

func (r *Registry) AddClient(ctx context.Context, roomId string) error {
	roomKey := r.getRoomKey(roomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return registry.ErrRoomNotFound
	}

	count, err := incrCappedScript.Run(ctx, r.rc, []string{roomKey}, r.maxClients).Int()
	if err != nil {
		return err
	}
	if count < 0 {
		return registry.ErrRoomFull
	}
	return nil
}

func (r *Registry) RemoveClient(ctx context.Context, roomId string) error {
	roomKey := r.getRoomKey(roomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return registry.ErrRoomNotFound
	}

	return decrFloorScript.Run(ctx, r.rc, []string{roomKey}).Err()
}

func (r *Registry) DeleteRoom(ctx context.Context, roomId string) error {
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getRoomKey(roomId))
	pipe.SRem(ctx, roomIndexKey, roomId)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
