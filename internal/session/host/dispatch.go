package host

import (
	"context"
	"errors"
	"time"

	"github.com/karaokenatin/roomsync/internal/command"
	"github.com/karaokenatin/roomsync/internal/domain"
	"github.com/karaokenatin/roomsync/internal/metadata"
	"github.com/karaokenatin/roomsync/internal/peer"
	"github.com/karaokenatin/roomsync/internal/room"
)

// Error codes carried in ERROR frames. Errors are point-to-point: only the
// sender of the failing command sees them.
const (
	codeUnknownCommand = "UNKNOWN_COMMAND"
	codeNotFound       = "NOT_FOUND"
	codeInvalidFormat  = "INVALID_FORMAT"
	codeLastCollection = "LAST_COLLECTION"
	codeResolveFailed  = "RESOLVE_FAILED"
	codeSearchFailed   = "SEARCH_FAILED"
	codeCommandFailed  = "COMMAND_FAILED"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrSongNotFound), errors.Is(err, room.ErrCollectionNotFound):
		return codeNotFound
	case errors.Is(err, room.ErrInvalidFormat):
		return codeInvalidFormat
	case errors.Is(err, room.ErrLastCollection):
		return codeLastCollection
	case errors.Is(err, metadata.ErrResolutionFailed):
		return codeResolveFailed
	default:
		return codeCommandFailed
	}
}

func (s *Session) dispatch(ctx context.Context, l *link, msg any) {
	switch m := msg.(type) {
	case *peer.Search:
		s.handleSearch(ctx, l, m)
		return
	case *command.Ping:
		if err := l.send(&peer.Pong{ServerTime: time.Now().UnixMilli()}); err != nil {
			s.logger.DebugContext(ctx, "failed to send pong", "error", err)
		}
		return
	}

	cmd, ok := msg.(command.Command)
	if !ok {
		s.sendError(l, codeUnknownCommand, "unsupported message")
		return
	}

	if _, err := s.mutate(func() (domain.RoomState, error) {
		return s.apply(ctx, l.clientId, cmd)
	}); err != nil {
		s.logger.DebugContext(ctx, "command failed", "command", cmd.CommandType(), "error", err)
		s.sendError(l, errorCode(err), err.Error())
	}
}

// Do applies a command on behalf of the host's own UI surface. Same path as
// guest commands, same broadcast.
func (s *Session) Do(ctx context.Context, cmd command.Command) (domain.RoomState, error) {
	return s.mutate(func() (domain.RoomState, error) {
		return s.apply(ctx, "host", cmd)
	})
}

// apply executes one command against the reducer. The switch is exhaustive
// over the command set; an unlisted type is a decoding bug upstream.
func (s *Session) apply(ctx context.Context, clientId string, cmd command.Command) (domain.RoomState, error) {
	switch c := cmd.(type) {
	case *command.Play:
		return s.reducer.Play(), nil
	case *command.Pause:
		return s.reducer.Pause(), nil
	case *command.Skip:
		return s.reducer.Skip(), nil
	case *command.Seek:
		return s.reducer.Seek(c.Time), nil
	case *command.SetVolume:
		return s.reducer.SetVolume(c.Volume), nil
	case *command.ToggleMute:
		return s.reducer.ToggleMute(), nil

	case *command.AddSong:
		song, err := s.resolveSong(ctx, c.YoutubeUrl, s.displayNameOf(clientId))
		if err != nil {
			return s.reducer.State(), err
		}
		return s.reducer.AddSong(song), nil
	case *command.RemoveSong:
		return s.reducer.RemoveSong(c.SongId)
	case *command.ReorderQueue:
		return s.reducer.ReorderQueue(c.SongId, c.NewIndex)
	case *command.MoveSongUp:
		return s.reducer.MoveSongUp(c.SongId)
	case *command.MoveSongDown:
		return s.reducer.MoveSongDown(c.SongId)
	case *command.MoveSongToTop:
		return s.reducer.MoveSongToTop(c.SongId)
	case *command.MoveSongToBottom:
		return s.reducer.MoveSongToBottom(c.SongId)

	case *command.SetDisplayName:
		return s.reducer.SetDisplayName(clientId, c.Name), nil

	case *command.CreateCollection:
		return s.reducer.CreateCollection(c.Name, c.Visibility)
	case *command.DeleteCollection:
		return s.reducer.DeleteCollection(c.CollectionId)
	case *command.RenameCollection:
		return s.reducer.RenameCollection(c.CollectionId, c.Name)
	case *command.SetCollectionVisibility:
		return s.reducer.SetCollectionVisibility(c.CollectionId, c.Visibility)
	case *command.PlaylistAdd:
		song, err := s.resolveSong(ctx, c.YoutubeUrl, s.displayNameOf(clientId))
		if err != nil {
			return s.reducer.State(), err
		}
		return s.reducer.PlaylistAdd(c.CollectionId, song)
	case *command.PlaylistRemove:
		return s.reducer.PlaylistRemove(c.CollectionId, c.SongId)
	case *command.PlaylistToQueue:
		return s.reducer.PlaylistToQueue(c.CollectionId, c.SongId)
	case *command.ImportCollection:
		return s.reducer.ImportCollection(c.Data)

	default:
		return s.reducer.State(), command.ErrUnknownCommand{Type: cmd.CommandType()}
	}
}

func (s *Session) handleSearch(ctx context.Context, l *link, search *peer.Search) {
	if s.searcher == nil {
		s.sendError(l, codeSearchFailed, "search is not available")
		return
	}

	results, err := s.searcher.Search(ctx, search.Query, search.Limit)
	if err != nil {
		s.logger.DebugContext(ctx, "search failed", "query", search.Query, "error", err)
		s.sendError(l, codeSearchFailed, err.Error())
		return
	}

	if err := l.send(&peer.SearchResults{Results: results}); err != nil {
		s.logger.DebugContext(ctx, "failed to send search results", "error", err)
	}
}

// displayNameOf resolves the current display name for AddedBy stamping. The
// host itself and unknown ids fall back to the raw id.
func (s *Session) displayNameOf(clientId string) string {
	for _, client := range s.reducer.State().ConnectedClients {
		if client.Id == clientId {
			return client.DisplayName
		}
	}
	return clientId
}
