package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaokenatin/roomsync/internal/command"
	"github.com/karaokenatin/roomsync/internal/domain"
	"github.com/karaokenatin/roomsync/internal/metadata"
	"github.com/karaokenatin/roomsync/internal/registry/inmemory"
	"github.com/karaokenatin/roomsync/internal/rendezvous"
	"github.com/karaokenatin/roomsync/internal/session/guest"
	"github.com/karaokenatin/roomsync/internal/session/host"
	"github.com/karaokenatin/roomsync/pkg/token"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, videoId string) (metadata.VideoData, error) {
	return metadata.VideoData{Title: "Title of " + videoId, Artist: "Artist", Duration: 212}, nil
}

type fakeSearcher struct{}

func (fakeSearcher) Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error) {
	return []metadata.SearchResult{{VideoId: "dQw4w9WgXcQ", Title: "Result for " + query}}, nil
}

// testHost is a full host-side fixture: a running peer endpoint plus a live
// rendezvous registration for it.
type testHost struct {
	session *host.Session
	rdvConn *websocket.Conn
	roomId  string
}

func startRendezvous(t *testing.T) string {
	t.Helper()

	reg := inmemory.NewRegistry(10, 12*time.Hour, slog.Default())
	service := rendezvous.NewService(reg, slog.Default())
	controller := rendezvous.NewController(service, slog.Default())
	server := httptest.NewServer(controller.GetMux())
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func startHost(t *testing.T, rdvURL string, joinToken string) *testHost {
	t.Helper()

	roomId := token.GenerateRoomId()

	session := host.NewSession(roomId, "", fakeResolver{}, fakeSearcher{}, slog.Default())
	peerServer := httptest.NewServer(session.GetMux())
	t.Cleanup(peerServer.Close)
	peerAddress := "ws" + strings.TrimPrefix(peerServer.URL, "http")

	rdvConn, _, err := websocket.DefaultDialer.Dial(rdvURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { rdvConn.Close() })

	require.NoError(t, rdvConn.WriteJSON(map[string]any{
		"type": rendezvous.EventCreateRoom,
		"payload": rendezvous.CreateRoomInput{
			RoomId:          roomId,
			JoinTokenHash:   token.Hash(joinToken),
			HostPeerAddress: peerAddress,
		},
	}))

	rdvConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, rdvConn.ReadJSON(&env))
	require.Equal(t, rendezvous.EventRoomCreated, env.Type)

	return &testHost{session: session, rdvConn: rdvConn, roomId: roomId}
}

func waitForState(t *testing.T, states <-chan domain.RoomState, describe string, ok func(domain.RoomState) bool) domain.RoomState {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case state := <-states:
			if ok(state) {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state: %s", describe)
		}
	}
}

func TestHostGuestEndToEnd(t *testing.T) {
	ctx := context.Background()
	rdvURL := startRendezvous(t)
	h := startHost(t, rdvURL, "letmein")

	states := make(chan domain.RoomState, 64)
	closed := make(chan string, 1)

	g, err := guest.Connect(ctx, guest.Config{
		RendezvousUrl: rdvURL,
		RoomId:        h.roomId,
		JoinToken:     "letmein",
		DisplayName:   "Alice",
		OnState:       func(s domain.RoomState) { states <- s },
		OnClosed:      func(reason string) { closed <- reason },
		Logger:        slog.Default(),
	})
	require.NoError(t, err)
	defer g.Close()

	// the display name announcement lands in presence
	waitForState(t, states, "Alice in presence", func(s domain.RoomState) bool {
		return len(s.ConnectedClients) == 1 && s.ConnectedClients[0].DisplayName == "Alice"
	})

	// remote-control: add a song to an idle room
	require.NoError(t, g.SendCommand(&command.AddSong{YoutubeUrl: "https://youtu.be/dQw4w9WgXcQ"}))
	state := waitForState(t, states, "song promoted", func(s domain.RoomState) bool {
		return s.Player.CurrentSong != nil
	})
	assert.Equal(t, "dQw4w9WgXcQ", state.Player.CurrentSong.YoutubeId)
	assert.Equal(t, "Alice", state.Player.CurrentSong.AddedBy)
	assert.Empty(t, state.Queue)
	assert.Equal(t, domain.PlayerStatusLoading, state.Player.Status)

	// search round trip through the peer link
	results, err := g.Search(ctx, "rick", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Result for rick", results[0].Title)

	// liveness probe
	serverTime, err := g.Ping(ctx)
	require.NoError(t, err)
	assert.Greater(t, serverTime, int64(0))

	// host vanishing tears the guest session down for good
	h.rdvConn.Close()
	select {
	case reason := <-closed:
		assert.Equal(t, "host disconnected", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("guest never learned the host left")
	}

	assert.ErrorIs(t, g.SendCommand(&command.Play{}), guest.ErrClosed)
}

func TestGuestJoinRejectedEndToEnd(t *testing.T) {
	ctx := context.Background()
	rdvURL := startRendezvous(t)
	h := startHost(t, rdvURL, "letmein")

	_, err := guest.Connect(ctx, guest.Config{
		RendezvousUrl: rdvURL,
		RoomId:        h.roomId,
		JoinToken:     "wrong",
		DisplayName:   "Mallory",
		Logger:        slog.Default(),
	})
	require.ErrorIs(t, err, guest.ErrJoinRejected)
	assert.Contains(t, err.Error(), "Invalid room or token")
}

func TestGuestDiscoveryModeEndToEnd(t *testing.T) {
	ctx := context.Background()
	rdvURL := startRendezvous(t)
	h := startHost(t, rdvURL, "letmein")

	states := make(chan domain.RoomState, 64)
	g, err := guest.Connect(ctx, guest.Config{
		RendezvousUrl: rdvURL,
		RoomId:        "default",
		DisplayName:   "Bob",
		OnState:       func(s domain.RoomState) { states <- s },
		Logger:        slog.Default(),
	})
	require.NoError(t, err)
	defer g.Close()

	state := waitForState(t, states, "joined via discovery", func(s domain.RoomState) bool {
		return len(s.ConnectedClients) == 1
	})
	assert.Equal(t, h.roomId, state.RoomId)
}

func TestSuppressedGuestGetsLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	rdvURL := startRendezvous(t)
	h := startHost(t, rdvURL, "letmein")

	states := make(chan domain.RoomState, 64)
	g, err := guest.Connect(ctx, guest.Config{
		RendezvousUrl: rdvURL,
		RoomId:        h.roomId,
		JoinToken:     "letmein",
		DisplayName:   "Alice",
		OnState:       func(s domain.RoomState) { states <- s },
		Logger:        slog.Default(),
	})
	require.NoError(t, err)
	defer g.Close()

	waitForState(t, states, "Alice in presence", func(s domain.RoomState) bool {
		return len(s.ConnectedClients) == 1 && s.ConnectedClients[0].DisplayName == "Alice"
	})

	g.Suppress()

	// host keeps mutating while the guest is mid-edit
	for _, volume := range []int{10, 20, 30} {
		_, err := h.session.Do(ctx, &command.SetVolume{Volume: volume})
		require.NoError(t, err)
	}

	// give the last broadcast time to arrive before releasing
	require.Eventually(t, func() bool {
		return h.session.State().Player.Volume == 30
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	g.Release()
	state := waitForState(t, states, "volume after release", func(s domain.RoomState) bool {
		return s.Player.Volume == 30
	})
	assert.Equal(t, 30, state.Player.Volume)

	// nothing older may arrive afterwards
	select {
	case stale := <-states:
		assert.GreaterOrEqual(t, stale.Player.Volume, 30)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAppConfigValidate(t *testing.T) {
	cfg := &AppConfig{MembersLimit: 10, RoomTTL: 12 * time.Hour, SweepInterval: 5 * time.Minute}
	require.NoError(t, cfg.Validate())

	assert.Error(t, (&AppConfig{MembersLimit: 0, RoomTTL: time.Hour, SweepInterval: time.Minute}).Validate())
	assert.Error(t, (&AppConfig{MembersLimit: 1, RoomTTL: 0, SweepInterval: time.Minute}).Validate())
	assert.Error(t, (&AppConfig{MembersLimit: 1, RoomTTL: time.Hour, SweepInterval: 0}).Validate())
}
