// Package peer defines the frames exchanged over the direct host-guest
// link. Like commands, frames are flat JSON objects tagged by "type".
package peer

import (
	"github.com/karaokenatin/roomsync/internal/domain"
	"github.com/karaokenatin/roomsync/internal/metadata"
)

const (
	// guest -> host
	TypeSearch = "SEARCH"

	// host -> guest
	TypeStateUpdate   = "STATE_UPDATE"
	TypeError         = "ERROR"
	TypePong          = "PONG"
	TypeSearchResults = "SEARCH_RESULTS"

	// TypeStatePatch is reserved for incremental updates. No peer emits it
	// yet; receivers must treat it as unknown until a delta format lands.
	TypeStatePatch = "STATE_PATCH"
)

type Frame interface {
	FrameType() string
}

type Search struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// StateUpdate carries a full room snapshot and replaces whatever state the
// receiver holds.
type StateUpdate struct {
	State domain.RoomState `json:"state"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Pong struct {
	ServerTime int64 `json:"serverTime"`
}

type SearchResults struct {
	Results []metadata.SearchResult `json:"results"`
}

func (Search) FrameType() string        { return TypeSearch }
func (StateUpdate) FrameType() string   { return TypeStateUpdate }
func (Error) FrameType() string         { return TypeError }
func (Pong) FrameType() string          { return TypePong }
func (SearchResults) FrameType() string { return TypeSearchResults }
