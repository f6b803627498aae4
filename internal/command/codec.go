package command

import (
	"encoding/json"
	"fmt"
)

type ErrUnknownCommand struct {
	Type string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command type %q", e.Type)
}

// Decode parses a flat-tagged command object into its concrete variant.
func Decode(data []byte) (Command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode command envelope: %w", err)
	}

	var cmd Command
	switch envelope.Type {
	case TypePlay:
		cmd = &Play{}
	case TypePause:
		cmd = &Pause{}
	case TypeSkip:
		cmd = &Skip{}
	case TypeSeek:
		cmd = &Seek{}
	case TypeSetVolume:
		cmd = &SetVolume{}
	case TypeToggleMute:
		cmd = &ToggleMute{}
	case TypeAddSong:
		cmd = &AddSong{}
	case TypeRemoveSong:
		cmd = &RemoveSong{}
	case TypeReorderQueue:
		cmd = &ReorderQueue{}
	case TypeMoveSongUp:
		cmd = &MoveSongUp{}
	case TypeMoveSongDown:
		cmd = &MoveSongDown{}
	case TypeMoveSongToTop:
		cmd = &MoveSongToTop{}
	case TypeMoveSongToBottom:
		cmd = &MoveSongToBottom{}
	case TypeSetDisplayName:
		cmd = &SetDisplayName{}
	case TypePing:
		cmd = &Ping{}
	case TypeCreateCollection:
		cmd = &CreateCollection{}
	case TypeDeleteCollection:
		cmd = &DeleteCollection{}
	case TypeRenameCollection:
		cmd = &RenameCollection{}
	case TypeSetCollectionVisibility:
		cmd = &SetCollectionVisibility{}
	case TypePlaylistAdd:
		cmd = &PlaylistAdd{}
	case TypePlaylistRemove:
		cmd = &PlaylistRemove{}
	case TypePlaylistToQueue:
		cmd = &PlaylistToQueue{}
	case TypeImportCollection:
		cmd = &ImportCollection{}
	default:
		return nil, ErrUnknownCommand{Type: envelope.Type}
	}

	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("failed to decode %s command: %w", envelope.Type, err)
	}

	return cmd, nil
}

// Encode marshals a command as a flat JSON object with the "type" tag
// spliced in.
func Encode(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	fields["type"] = cmd.CommandType()

	return json.Marshal(fields)
}
