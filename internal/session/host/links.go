package host

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/karaokenatin/roomsync/internal/peer"
)

// link is one guest's peer connection. Each client id owns at most one link;
// registering a new link for an id closes the old one.
type link struct {
	clientId string
	conn     *websocket.Conn
	mu       sync.Mutex
}

func (l *link) send(frame peer.Frame) error {
	data, err := peer.Encode(frame)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) register(l *link) {
	s.mu.Lock()
	old := s.links[l.clientId]
	s.links[l.clientId] = l
	s.mu.Unlock()

	if old != nil {
		old.conn.Close()
	}
}

// unregister drops a link, but only if it still owns its client id. A stale
// link replaced by a newer one must not evict its successor.
func (s *Session) unregister(l *link) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.links[l.clientId] != l {
		return false
	}
	delete(s.links, l.clientId)
	return true
}

func (s *Session) activeLinks() []*link {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]*link, 0, len(s.links))
	for _, l := range s.links {
		links = append(links, l)
	}
	return links
}
