// Package room owns the authoritative RoomState and applies guest commands
// to it. The reducer is the single writer: every mutation happens under its
// lock and returns a deep snapshot of the new state, so callers never hold a
// reference into live state.
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karaokenatin/roomsync/internal/domain"
)

type Reducer struct {
	mu    sync.Mutex
	state domain.RoomState
	nowMs func() int64
}

func NewReducer(roomId string, hostPeerAddress string) *Reducer {
	nowMs := func() int64 { return time.Now().UnixMilli() }

	return &Reducer{
		state: domain.NewRoomState(roomId, hostPeerAddress, uuid.NewString(), nowMs()),
		nowMs: nowMs,
	}
}

// State returns a deep snapshot of the current state.
func (r *Reducer) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.Clone()
}

// touch stamps UpdatedAt, keeping it non-decreasing even if the clock steps
// backwards.
func (r *Reducer) touch() {
	if now := r.nowMs(); now > r.state.UpdatedAt {
		r.state.UpdatedAt = now
	}
}

func (r *Reducer) snapshot() domain.RoomState {
	return r.state.Clone()
}
