package room

import (
	"github.com/karaokenatin/roomsync/internal/domain"
)

// Play sets the player to playing. No-op when nothing is loaded or already
// playing.
func (r *Reducer) Play() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player.CurrentSong == nil || r.state.Player.Status == domain.PlayerStatusPlaying {
		return r.snapshot()
	}

	r.state.Player.Status = domain.PlayerStatusPlaying
	r.touch()
	return r.snapshot()
}

// Pause sets the player to paused. No-op when not playing.
func (r *Reducer) Pause() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player.Status != domain.PlayerStatusPlaying {
		return r.snapshot()
	}

	r.state.Player.Status = domain.PlayerStatusPaused
	r.touch()
	return r.snapshot()
}

// Skip drops the current song and promotes the queue head, if any. It runs
// even when the queue is empty: the current song is still dropped and the
// player goes idle.
func (r *Reducer) Skip() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player.CurrentSong == nil && len(r.state.Queue) == 0 {
		return r.snapshot()
	}

	r.promoteHead()
	r.touch()
	return r.snapshot()
}

// promoteHead moves the queue head into the player slot. Caller holds the
// lock.
func (r *Reducer) promoteHead() {
	if len(r.state.Queue) > 0 {
		head := r.state.Queue[0]
		r.state.Queue = append([]domain.Song{}, r.state.Queue[1:]...)
		r.state.Player.CurrentSong = &head
		r.state.Player.Status = domain.PlayerStatusLoading
	} else {
		r.state.Player.CurrentSong = nil
		r.state.Player.Status = domain.PlayerStatusIdle
	}
	r.state.Player.CurrentTime = 0
	r.state.Player.Duration = 0
}

func (r *Reducer) Seek(time float64) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if time < 0 {
		time = 0
	}
	r.state.Player.CurrentTime = time
	r.touch()
	return r.snapshot()
}

func (r *Reducer) SetVolume(volume int) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	r.state.Player.Volume = volume
	r.touch()
	return r.snapshot()
}

func (r *Reducer) ToggleMute() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Player.IsMuted = !r.state.Player.IsMuted
	r.touch()
	return r.snapshot()
}

// UpdatePlayerState applies playback telemetry from the host's player
// surface. Nil fields are left untouched. A status that would break the
// "no current song implies idle or error" invariant is ignored.
func (r *Reducer) UpdatePlayerState(status *domain.PlayerStatus, currentTime *float64, duration *float64) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status != nil {
		allowed := r.state.Player.CurrentSong != nil ||
			*status == domain.PlayerStatusIdle || *status == domain.PlayerStatusError
		if allowed {
			r.state.Player.Status = *status
		}
	}
	if currentTime != nil {
		r.state.Player.CurrentTime = *currentTime
	}
	if duration != nil {
		r.state.Player.Duration = *duration
	}
	r.touch()
	return r.snapshot()
}
