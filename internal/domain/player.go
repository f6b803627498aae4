package domain

type PlayerStatus string

const (
	PlayerStatusIdle    PlayerStatus = "idle"
	PlayerStatusPlaying PlayerStatus = "playing"
	PlayerStatusPaused  PlayerStatus = "paused"
	PlayerStatusLoading PlayerStatus = "loading"
	PlayerStatusError   PlayerStatus = "error"
)

// PlayerState invariant: CurrentSong == nil implies Status is idle or error.
type PlayerState struct {
	Status      PlayerStatus `json:"status"`
	CurrentSong *Song        `json:"currentSong"`
	CurrentTime float64      `json:"currentTime"`
	Duration    float64      `json:"duration"`
	Volume      int          `json:"volume"`
	IsMuted     bool         `json:"isMuted"`
}

const defaultVolume = 80
