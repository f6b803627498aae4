package room

import (
	"github.com/karaokenatin/roomsync/internal/domain"
)

// AddSong puts a resolved song into the room. When nothing is loaded the
// song is promoted straight into the player slot and the queue is left
// untouched; otherwise it is appended to the tail. Duplicate URLs are
// allowed, song ids are expected to be fresh.
func (r *Reducer) AddSong(song domain.Song) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player.CurrentSong == nil {
		r.state.Player.CurrentSong = &song
		r.state.Player.Status = domain.PlayerStatusLoading
		r.state.Player.CurrentTime = 0
		r.state.Player.Duration = 0
	} else {
		r.state.Queue = append(r.state.Queue, song)
	}

	r.touch()
	return r.snapshot()
}

func (r *Reducer) RemoveSong(songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}

	r.state.Queue = append(r.state.Queue[:pos], r.state.Queue[pos+1:]...)
	r.touch()
	return r.snapshot(), nil
}

// ReorderQueue moves a song to newIndex. Out-of-range indexes are clamped
// to the queue bounds.
func (r *Reducer) ReorderQueue(songId string, newIndex int) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(r.state.Queue)-1 {
		newIndex = len(r.state.Queue) - 1
	}
	if newIndex == pos {
		return r.snapshot(), nil
	}

	song := r.state.Queue[pos]
	rest := append(r.state.Queue[:pos], r.state.Queue[pos+1:]...)
	r.state.Queue = append(rest[:newIndex], append([]domain.Song{song}, rest[newIndex:]...)...)
	r.touch()
	return r.snapshot(), nil
}

// MoveSongUp swaps a song with its predecessor. Moving the head is a no-op,
// not an error.
func (r *Reducer) MoveSongUp(songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}
	if pos == 0 {
		return r.snapshot(), nil
	}

	r.state.Queue[pos], r.state.Queue[pos-1] = r.state.Queue[pos-1], r.state.Queue[pos]
	r.touch()
	return r.snapshot(), nil
}

// MoveSongDown swaps a song with its successor. Moving the tail is a no-op,
// not an error.
func (r *Reducer) MoveSongDown(songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}
	if pos == len(r.state.Queue)-1 {
		return r.snapshot(), nil
	}

	r.state.Queue[pos], r.state.Queue[pos+1] = r.state.Queue[pos+1], r.state.Queue[pos]
	r.touch()
	return r.snapshot(), nil
}

// MoveSongToTop moves a song to the head of the queue. Already at the head
// is a no-op, not an error.
func (r *Reducer) MoveSongToTop(songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}
	if pos == 0 {
		return r.snapshot(), nil
	}

	song := r.state.Queue[pos]
	rest := append(r.state.Queue[:pos], r.state.Queue[pos+1:]...)
	r.state.Queue = append([]domain.Song{song}, rest...)
	r.touch()
	return r.snapshot(), nil
}

// MoveSongToBottom moves a song to the tail of the queue. Already at the
// tail is a no-op, not an error.
func (r *Reducer) MoveSongToBottom(songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.queueIndex(songId)
	if pos < 0 {
		return r.snapshot(), ErrSongNotFound
	}
	if pos == len(r.state.Queue)-1 {
		return r.snapshot(), nil
	}

	song := r.state.Queue[pos]
	r.state.Queue = append(append(r.state.Queue[:pos], r.state.Queue[pos+1:]...), song)
	r.touch()
	return r.snapshot(), nil
}

// queueIndex returns the position of songId in the queue, -1 when absent.
// Caller holds the lock.
func (r *Reducer) queueIndex(songId string) int {
	for i, song := range r.state.Queue {
		if song.Id == songId {
			return i
		}
	}
	return -1
}
