// Package command defines the closed set of guest commands carried over the
// peer link. On the wire a command is a single flat JSON object tagged by
// "type", e.g. {"type":"SEEK","time":42}.
package command

import (
	"github.com/karaokenatin/roomsync/internal/domain"
)

const (
	TypePlay                    = "PLAY"
	TypePause                   = "PAUSE"
	TypeSkip                    = "SKIP"
	TypeSeek                    = "SEEK"
	TypeSetVolume               = "SET_VOLUME"
	TypeToggleMute              = "TOGGLE_MUTE"
	TypeAddSong                 = "ADD_SONG"
	TypeRemoveSong              = "REMOVE_SONG"
	TypeReorderQueue            = "REORDER_QUEUE"
	TypeMoveSongUp              = "MOVE_SONG_UP"
	TypeMoveSongDown            = "MOVE_SONG_DOWN"
	TypeMoveSongToTop           = "MOVE_SONG_TO_TOP"
	TypeMoveSongToBottom        = "MOVE_SONG_TO_BOTTOM"
	TypeSetDisplayName          = "SET_DISPLAY_NAME"
	TypePing                    = "PING"
	TypeCreateCollection        = "CREATE_COLLECTION"
	TypeDeleteCollection        = "DELETE_COLLECTION"
	TypeRenameCollection        = "RENAME_COLLECTION"
	TypeSetCollectionVisibility = "SET_COLLECTION_VISIBILITY"
	TypePlaylistAdd             = "PLAYLIST_ADD"
	TypePlaylistRemove          = "PLAYLIST_REMOVE"
	TypePlaylistToQueue         = "PLAYLIST_TO_QUEUE"
	TypeImportCollection        = "IMPORT_COLLECTION"
)

type Command interface {
	CommandType() string
}

type Play struct{}

type Pause struct{}

type Skip struct{}

type Seek struct {
	Time float64 `json:"time"`
}

type SetVolume struct {
	Volume int `json:"volume"`
}

type ToggleMute struct{}

type AddSong struct {
	YoutubeUrl string `json:"youtubeUrl"`
}

type RemoveSong struct {
	SongId string `json:"songId"`
}

type ReorderQueue struct {
	SongId   string `json:"songId"`
	NewIndex int    `json:"newIndex"`
}

type MoveSongUp struct {
	SongId string `json:"songId"`
}

type MoveSongDown struct {
	SongId string `json:"songId"`
}

type MoveSongToTop struct {
	SongId string `json:"songId"`
}

type MoveSongToBottom struct {
	SongId string `json:"songId"`
}

type SetDisplayName struct {
	Name string `json:"name"`
}

type Ping struct{}

type CreateCollection struct {
	Name       string                      `json:"name"`
	Visibility domain.CollectionVisibility `json:"visibility"`
}

type DeleteCollection struct {
	CollectionId string `json:"collectionId"`
}

type RenameCollection struct {
	CollectionId string `json:"collectionId"`
	Name         string `json:"name"`
}

type SetCollectionVisibility struct {
	CollectionId string                      `json:"collectionId"`
	Visibility   domain.CollectionVisibility `json:"visibility"`
}

type PlaylistAdd struct {
	YoutubeUrl   string `json:"youtubeUrl"`
	CollectionId string `json:"collectionId"`
}

type PlaylistRemove struct {
	SongId       string `json:"songId"`
	CollectionId string `json:"collectionId"`
}

type PlaylistToQueue struct {
	SongId       string `json:"songId"`
	CollectionId string `json:"collectionId"`
}

type ImportCollection struct {
	Data string `json:"data"`
}

func (Play) CommandType() string                    { return TypePlay }
func (Pause) CommandType() string                   { return TypePause }
func (Skip) CommandType() string                    { return TypeSkip }
func (Seek) CommandType() string                    { return TypeSeek }
func (SetVolume) CommandType() string               { return TypeSetVolume }
func (ToggleMute) CommandType() string              { return TypeToggleMute }
func (AddSong) CommandType() string                 { return TypeAddSong }
func (RemoveSong) CommandType() string              { return TypeRemoveSong }
func (ReorderQueue) CommandType() string            { return TypeReorderQueue }
func (MoveSongUp) CommandType() string              { return TypeMoveSongUp }
func (MoveSongDown) CommandType() string            { return TypeMoveSongDown }
func (MoveSongToTop) CommandType() string           { return TypeMoveSongToTop }
func (MoveSongToBottom) CommandType() string        { return TypeMoveSongToBottom }
func (SetDisplayName) CommandType() string          { return TypeSetDisplayName }
func (Ping) CommandType() string                    { return TypePing }
func (CreateCollection) CommandType() string        { return TypeCreateCollection }
func (DeleteCollection) CommandType() string        { return TypeDeleteCollection }
func (RenameCollection) CommandType() string        { return TypeRenameCollection }
func (SetCollectionVisibility) CommandType() string { return TypeSetCollectionVisibility }
func (PlaylistAdd) CommandType() string             { return TypePlaylistAdd }
func (PlaylistRemove) CommandType() string          { return TypePlaylistRemove }
func (PlaylistToQueue) CommandType() string         { return TypePlaylistToQueue }
func (ImportCollection) CommandType() string        { return TypeImportCollection }
