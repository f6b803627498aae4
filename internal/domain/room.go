package domain

type ConnectedClient struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	ConnectedAt int64  `json:"connectedAt"`
}

// RoomState is the root aggregate. Exactly one authoritative copy lives in
// the host process; guest copies are projections replaced wholesale on each
// broadcast. UpdatedAt is monotonically non-decreasing.
type RoomState struct {
	RoomId           string               `json:"roomId"`
	HostPeerAddress  string               `json:"hostPeerAddress"`
	ConnectedClients []ConnectedClient    `json:"connectedClients"`
	Player           PlayerState          `json:"player"`
	Queue            []Song               `json:"queue"`
	Playlists        []PlaylistCollection `json:"playlists"`
	CreatedAt        int64                `json:"createdAt"`
	UpdatedAt        int64                `json:"updatedAt"`
}

// DefaultCollectionName is the collection every room starts with, so there
// is always at least one collection to add songs to.
const DefaultCollectionName = "Library"

func NewRoomState(roomId string, hostPeerAddress string, defaultCollectionId string, now int64) RoomState {
	return RoomState{
		RoomId:           roomId,
		HostPeerAddress:  hostPeerAddress,
		ConnectedClients: []ConnectedClient{},
		Player: PlayerState{
			Status:      PlayerStatusIdle,
			CurrentSong: nil,
			CurrentTime: 0,
			Duration:    0,
			Volume:      defaultVolume,
			IsMuted:     false,
		},
		Queue: []Song{},
		Playlists: []PlaylistCollection{
			{
				Id:         defaultCollectionId,
				Name:       DefaultCollectionName,
				Visibility: VisibilityPublic,
				Songs:      []Song{},
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (s RoomState) Clone() RoomState {
	out := s

	out.ConnectedClients = make([]ConnectedClient, len(s.ConnectedClients))
	copy(out.ConnectedClients, s.ConnectedClients)

	out.Queue = make([]Song, len(s.Queue))
	copy(out.Queue, s.Queue)

	if s.Player.CurrentSong != nil {
		song := *s.Player.CurrentSong
		out.Player.CurrentSong = &song
	}

	out.Playlists = make([]PlaylistCollection, len(s.Playlists))
	for i, collection := range s.Playlists {
		songs := make([]Song, len(collection.Songs))
		copy(songs, collection.Songs)
		collection.Songs = songs
		out.Playlists[i] = collection
	}

	return out
}

// Sanitized returns a copy with personal collections stripped. Everything
// sent to guests goes through here; the host's own copy keeps all
// collections.
func (s RoomState) Sanitized() RoomState {
	out := s.Clone()

	public := make([]PlaylistCollection, 0, len(out.Playlists))
	for _, collection := range out.Playlists {
		if collection.Visibility == VisibilityPublic {
			public = append(public, collection)
		}
	}
	out.Playlists = public

	return out
}
