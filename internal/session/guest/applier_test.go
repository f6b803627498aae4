package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaokenatin/roomsync/internal/domain"
)

func stateWithStamp(updatedAt int64) domain.RoomState {
	return domain.RoomState{RoomId: "room-1", UpdatedAt: updatedAt}
}

func TestApplierDeliversWhenLive(t *testing.T) {
	var delivered []int64
	a := newApplier(func(s domain.RoomState) { delivered = append(delivered, s.UpdatedAt) })

	a.apply(stateWithStamp(1))
	a.apply(stateWithStamp(2))

	assert.Equal(t, []int64{1, 2}, delivered)
}

func TestApplierSuppressKeepsOnlyLatest(t *testing.T) {
	var delivered []int64
	a := newApplier(func(s domain.RoomState) { delivered = append(delivered, s.UpdatedAt) })

	a.apply(stateWithStamp(1))
	a.suppress()
	a.apply(stateWithStamp(2))
	a.apply(stateWithStamp(3))
	a.apply(stateWithStamp(4))
	require.Equal(t, []int64{1}, delivered, "nothing may land mid-edit")

	a.release()
	assert.Equal(t, []int64{1, 4}, delivered, "only the newest pending snapshot lands")

	a.apply(stateWithStamp(5))
	assert.Equal(t, []int64{1, 4, 5}, delivered)
}

func TestApplierReleaseWithoutPending(t *testing.T) {
	var delivered []int64
	a := newApplier(func(s domain.RoomState) { delivered = append(delivered, s.UpdatedAt) })

	a.suppress()
	a.release()
	assert.Empty(t, delivered)
}

func TestApplierNilCallback(t *testing.T) {
	a := newApplier(nil)

	a.apply(stateWithStamp(1))
	a.suppress()
	a.apply(stateWithStamp(2))
	a.release()
}
