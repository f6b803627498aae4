package room

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/karaokenatin/roomsync/internal/domain"
)

func (r *Reducer) CreateCollection(name string, visibility domain.CollectionVisibility) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || !visibility.Valid() {
		return r.snapshot(), ErrInvalidFormat
	}

	now := r.nowMs()
	r.state.Playlists = append(r.state.Playlists, domain.PlaylistCollection{
		Id:         uuid.NewString(),
		Name:       name,
		Visibility: visibility,
		Songs:      []domain.Song{},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	r.touch()
	return r.snapshot(), nil
}

// DeleteCollection removes a collection. Deleting the last remaining
// collection is blocked so a room always has at least one.
func (r *Reducer) DeleteCollection(collectionId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return r.snapshot(), ErrCollectionNotFound
	}
	if len(r.state.Playlists) == 1 {
		return r.snapshot(), ErrLastCollection
	}

	r.state.Playlists = append(r.state.Playlists[:pos], r.state.Playlists[pos+1:]...)
	r.touch()
	return r.snapshot(), nil
}

func (r *Reducer) RenameCollection(collectionId string, name string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return r.snapshot(), ErrCollectionNotFound
	}
	if name == "" {
		return r.snapshot(), ErrInvalidFormat
	}

	r.state.Playlists[pos].Name = name
	r.state.Playlists[pos].UpdatedAt = r.nowMs()
	r.touch()
	return r.snapshot(), nil
}

func (r *Reducer) SetCollectionVisibility(collectionId string, visibility domain.CollectionVisibility) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return r.snapshot(), ErrCollectionNotFound
	}
	if !visibility.Valid() {
		return r.snapshot(), ErrInvalidFormat
	}

	r.state.Playlists[pos].Visibility = visibility
	r.state.Playlists[pos].UpdatedAt = r.nowMs()
	r.touch()
	return r.snapshot(), nil
}

// PlaylistAdd appends a resolved song to a collection. An empty
// collectionId targets the room's first collection, mirroring the host
// app's "default collection" behavior.
func (r *Reducer) PlaylistAdd(collectionId string, song domain.Song) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := 0
	if collectionId != "" {
		pos = r.collectionIndex(collectionId)
		if pos < 0 {
			return r.snapshot(), ErrCollectionNotFound
		}
	}

	r.state.Playlists[pos].Songs = append(r.state.Playlists[pos].Songs, song)
	r.state.Playlists[pos].UpdatedAt = r.nowMs()
	r.touch()
	return r.snapshot(), nil
}

func (r *Reducer) PlaylistRemove(collectionId string, songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return r.snapshot(), ErrCollectionNotFound
	}

	songs := r.state.Playlists[pos].Songs
	for i, song := range songs {
		if song.Id == songId {
			r.state.Playlists[pos].Songs = append(songs[:i], songs[i+1:]...)
			r.state.Playlists[pos].UpdatedAt = r.nowMs()
			r.touch()
			return r.snapshot(), nil
		}
	}

	return r.snapshot(), ErrSongNotFound
}

// PlaylistToQueue copies a song from a collection into the live queue. The
// copy gets a fresh id so queueing the same collection entry twice never
// violates the queue's unique-id invariant; the collection keeps its entry.
func (r *Reducer) PlaylistToQueue(collectionId string, songId string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return r.snapshot(), ErrCollectionNotFound
	}

	for _, song := range r.state.Playlists[pos].Songs {
		if song.Id == songId {
			queued := song
			queued.Id = uuid.NewString()

			if r.state.Player.CurrentSong == nil {
				r.state.Player.CurrentSong = &queued
				r.state.Player.Status = domain.PlayerStatusLoading
				r.state.Player.CurrentTime = 0
				r.state.Player.Duration = 0
			} else {
				r.state.Queue = append(r.state.Queue, queued)
			}
			r.touch()
			return r.snapshot(), nil
		}
	}

	return r.snapshot(), ErrSongNotFound
}

// ImportCollection parses an exported collection document and appends it as
// a new collection. A malformed document fails without touching state.
func (r *Reducer) ImportCollection(data string) (domain.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc domain.ExportedCollection
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return r.snapshot(), fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if doc.FormatVersion != domain.ExportFormatVersion {
		return r.snapshot(), fmt.Errorf("%w: unsupported format version %q", ErrInvalidFormat, doc.FormatVersion)
	}
	if doc.Collection.Name == "" || !doc.Collection.Visibility.Valid() {
		return r.snapshot(), ErrInvalidFormat
	}

	seen := make(map[string]struct{}, len(doc.Collection.Songs))
	songs := make([]domain.Song, 0, len(doc.Collection.Songs))
	for _, song := range doc.Collection.Songs {
		if song.Id == "" {
			return r.snapshot(), ErrInvalidFormat
		}
		if _, ok := seen[song.Id]; ok {
			return r.snapshot(), fmt.Errorf("%w: duplicate song id %q", ErrInvalidFormat, song.Id)
		}
		seen[song.Id] = struct{}{}
		songs = append(songs, song)
	}

	now := r.nowMs()
	r.state.Playlists = append(r.state.Playlists, domain.PlaylistCollection{
		Id:         uuid.NewString(),
		Name:       doc.Collection.Name,
		Visibility: doc.Collection.Visibility,
		Songs:      songs,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	r.touch()
	return r.snapshot(), nil
}

// ExportCollection serializes one collection to the exchange document.
func (r *Reducer) ExportCollection(collectionId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.collectionIndex(collectionId)
	if pos < 0 {
		return "", ErrCollectionNotFound
	}

	collection := r.state.Playlists[pos]
	songs := make([]domain.Song, len(collection.Songs))
	copy(songs, collection.Songs)

	data, err := json.Marshal(domain.ExportedCollection{
		FormatVersion: domain.ExportFormatVersion,
		Collection: domain.ExportedCollectionBody{
			Name:       collection.Name,
			Visibility: collection.Visibility,
			Songs:      songs,
		},
	})
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// collectionIndex returns the position of collectionId, -1 when absent.
// Caller holds the lock.
func (r *Reducer) collectionIndex(collectionId string) int {
	for i, collection := range r.state.Playlists {
		if collection.Id == collectionId {
			return i
		}
	}
	return -1
}
