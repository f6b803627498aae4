package guest

import (
	"sync"

	"github.com/karaokenatin/roomsync/internal/domain"
)

// applier gates incoming snapshots on the way to the UI. It is either live,
// delivering every snapshot as it arrives, or suppressed, holding back the
// latest one while the user is mid-edit (e.g. typing in a rename field).
// Snapshots replace each other wholesale, so only the newest pending one is
// kept; Release delivers it.
type applier struct {
	mu         sync.Mutex
	suppressed bool
	pending    *domain.RoomState
	onState    func(domain.RoomState)
}

func newApplier(onState func(domain.RoomState)) *applier {
	return &applier{onState: onState}
}

func (a *applier) apply(state domain.RoomState) {
	a.mu.Lock()
	if a.suppressed {
		a.pending = &state
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if a.onState != nil {
		a.onState(state)
	}
}

func (a *applier) suppress() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.suppressed = true
}

func (a *applier) release() {
	a.mu.Lock()
	pending := a.pending
	a.suppressed = false
	a.pending = nil
	a.mu.Unlock()

	if pending != nil && a.onState != nil {
		a.onState(*pending)
	}
}
