package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFlatTagged(t *testing.T) {
	cmd, err := Decode([]byte(`{"type":"SEEK","time":42}`))
	require.NoError(t, err)

	seek, ok := cmd.(*Seek)
	require.True(t, ok)
	assert.Equal(t, 42.0, seek.Time)
}

func TestDecodeNoPayloadCommand(t *testing.T) {
	cmd, err := Decode([]byte(`{"type":"TOGGLE_MUTE"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeToggleMute, cmd.CommandType())
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"SELF_DESTRUCT"}`))
	require.Error(t, err)

	var unknown ErrUnknownCommand
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "SELF_DESTRUCT", unknown.Type)
}

func TestDecodeQueueMoveCommands(t *testing.T) {
	tests := []struct {
		raw  string
		want Command
	}{
		{`{"type":"MOVE_SONG_UP","songId":"s1"}`, &MoveSongUp{SongId: "s1"}},
		{`{"type":"MOVE_SONG_DOWN","songId":"s1"}`, &MoveSongDown{SongId: "s1"}},
		{`{"type":"MOVE_SONG_TO_TOP","songId":"s1"}`, &MoveSongToTop{SongId: "s1"}},
		{`{"type":"MOVE_SONG_TO_BOTTOM","songId":"s1"}`, &MoveSongToBottom{SongId: "s1"}},
	}

	for _, tt := range tests {
		cmd, err := Decode([]byte(tt.raw))
		require.NoError(t, err)
		assert.Equal(t, tt.want, cmd)
	}
}

func TestEncodeSplicesType(t *testing.T) {
	data, err := Encode(&ReorderQueue{SongId: "s1", NewIndex: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"REORDER_QUEUE","songId":"s1","newIndex":3}`, string(data))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := &PlaylistAdd{YoutubeUrl: "https://youtu.be/dQw4w9WgXcQ", CollectionId: "c1"}

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
