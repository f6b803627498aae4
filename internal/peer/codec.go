package peer

import (
	"encoding/json"
	"fmt"

	"github.com/karaokenatin/roomsync/internal/command"
)

type ErrUnknownFrame struct {
	Type string
}

func (e ErrUnknownFrame) Error() string {
	return fmt.Sprintf("unknown frame type %q", e.Type)
}

// Encode marshals a frame as a flat JSON object with the "type" tag spliced
// in, the same framing commands use.
func Encode(frame Frame) ([]byte, error) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	fields["type"] = frame.FrameType()

	return json.Marshal(fields)
}

// DecodeHostbound parses a message arriving at the host: either a SEARCH
// frame or one of the guest commands.
func DecodeHostbound(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode frame envelope: %w", err)
	}

	if envelope.Type == TypeSearch {
		search := &Search{}
		if err := json.Unmarshal(data, search); err != nil {
			return nil, fmt.Errorf("failed to decode SEARCH frame: %w", err)
		}
		return search, nil
	}

	return command.Decode(data)
}

// DecodeGuestbound parses a message arriving at a guest.
func DecodeGuestbound(data []byte) (Frame, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode frame envelope: %w", err)
	}

	var frame Frame
	switch envelope.Type {
	case TypeStateUpdate:
		frame = &StateUpdate{}
	case TypeError:
		frame = &Error{}
	case TypePong:
		frame = &Pong{}
	case TypeSearchResults:
		frame = &SearchResults{}
	default:
		return nil, ErrUnknownFrame{Type: envelope.Type}
	}

	if err := json.Unmarshal(data, frame); err != nil {
		return nil, fmt.Errorf("failed to decode %s frame: %w", envelope.Type, err)
	}

	return frame, nil
}
