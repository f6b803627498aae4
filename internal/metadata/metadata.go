// Package metadata declares the external lookup collaborators the host
// session depends on. Resolution and search are opaque I/O from the room's
// point of view; only the URL-to-video-id parsing lives here.
package metadata

import (
	"context"
	"errors"
)

var ErrResolutionFailed = errors.New("failed to resolve video metadata")

// VideoData is what a resolver returns for a video id. The caller stamps
// identity fields (id, addedBy, addedAt) when building the Song.
type VideoData struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	ThumbnailUrl string `json:"thumbnailUrl"`
}

type SearchResult struct {
	VideoId      string `json:"videoId"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	ThumbnailUrl string `json:"thumbnailUrl"`
}

type Resolver interface {
	Resolve(ctx context.Context, videoId string) (VideoData, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
