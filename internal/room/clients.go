package room

import (
	"github.com/karaokenatin/roomsync/internal/domain"
)

// AddClient records a guest in the presence list. Invoked by the host
// session when a peer link opens.
func (r *Reducer) AddClient(clientId string, displayName string) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.state.ConnectedClients {
		if client.Id == clientId {
			return r.snapshot()
		}
	}

	r.state.ConnectedClients = append(r.state.ConnectedClients, domain.ConnectedClient{
		Id:          clientId,
		DisplayName: displayName,
		ConnectedAt: r.nowMs(),
	})
	r.touch()
	return r.snapshot()
}

// RemoveClient drops a guest from the presence list. Unknown ids are a
// no-op; a disconnect may race an explicit leave.
func (r *Reducer) RemoveClient(clientId string) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, client := range r.state.ConnectedClients {
		if client.Id == clientId {
			r.state.ConnectedClients = append(r.state.ConnectedClients[:i], r.state.ConnectedClients[i+1:]...)
			r.touch()
			break
		}
	}
	return r.snapshot()
}

// SetDisplayName renames a connected client. Unknown ids are a no-op.
func (r *Reducer) SetDisplayName(clientId string, name string) domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, client := range r.state.ConnectedClients {
		if client.Id == clientId {
			r.state.ConnectedClients[i].DisplayName = name
			r.touch()
			break
		}
	}
	return r.snapshot()
}
