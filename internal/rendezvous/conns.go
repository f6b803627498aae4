package rendezvous

import (
	"sync"

	"github.com/gorilla/websocket"
)

type guestInfo struct {
	clientId string
	roomId   string
}

// connTracker maps live rendezvous connections to their role. It is the
// only place a connection's identity is kept; the registry never sees
// websockets.
type connTracker struct {
	mu         sync.RWMutex
	hosts      map[*websocket.Conn]string // conn -> roomId
	hostByRoom map[string]*websocket.Conn
	guests     map[*websocket.Conn]guestInfo
}

func newConnTracker() *connTracker {
	return &connTracker{
		hosts:      make(map[*websocket.Conn]string),
		hostByRoom: make(map[string]*websocket.Conn),
		guests:     make(map[*websocket.Conn]guestInfo),
	}
}

func (t *connTracker) trackHost(conn *websocket.Conn, roomId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hosts[conn] = roomId
	t.hostByRoom[roomId] = conn
}

func (t *connTracker) trackGuest(conn *websocket.Conn, clientId string, roomId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.guests[conn] = guestInfo{clientId: clientId, roomId: roomId}
}

func (t *connTracker) hostRoom(conn *websocket.Conn) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roomId, ok := t.hosts[conn]
	return roomId, ok
}

func (t *connTracker) guest(conn *websocket.Conn) (guestInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.guests[conn]
	return info, ok
}

func (t *connTracker) hostConn(roomId string) (*websocket.Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conn, ok := t.hostByRoom[roomId]
	return conn, ok
}

// guestConns returns the rendezvous connections of every guest in a room.
func (t *connTracker) guestConns(roomId string) []*websocket.Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conns := make([]*websocket.Conn, 0)
	for conn, info := range t.guests {
		if info.roomId == roomId {
			conns = append(conns, conn)
		}
	}
	return conns
}

func (t *connTracker) untrackHost(conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if roomId, ok := t.hosts[conn]; ok {
		delete(t.hosts, conn)
		delete(t.hostByRoom, roomId)
	}
}

func (t *connTracker) untrackGuest(conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.guests, conn)
}

// untrackRoomGuests drops every guest of a room, returning their
// connections. Used when the room's host disconnects.
func (t *connTracker) untrackRoomGuests(roomId string) []*websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()

	conns := make([]*websocket.Conn, 0)
	for conn, info := range t.guests {
		if info.roomId == roomId {
			conns = append(conns, conn)
			delete(t.guests, conn)
		}
	}
	return conns
}
