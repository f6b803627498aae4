package rendezvous

// Wire event types. Hosts and guests talk to the rendezvous service over
// websocket messages of the form {"type": ..., "payload": {...}}.
const (
	// inbound
	EventCreateRoom = "CREATE_ROOM"
	EventJoinRoom   = "JOIN_ROOM"
	EventLeaveRoom  = "LEAVE_ROOM"

	// outbound, host
	EventRoomCreated  = "ROOM_CREATED"
	EventClientJoined = "CLIENT_JOINED"
	EventClientLeft   = "CLIENT_LEFT"

	// outbound, guest
	EventJoinSuccess      = "JOIN_SUCCESS"
	EventJoinRejected     = "JOIN_REJECTED"
	EventHostDisconnected = "HOST_DISCONNECTED"

	EventError = "ERROR"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type CreateRoomInput struct {
	// RoomId may be empty; the service mints one.
	RoomId          string `json:"roomId"`
	JoinTokenHash   string `json:"joinTokenHash" validate:"required,len=64,hexadecimal"`
	HostPeerAddress string `json:"hostPeerAddress" validate:"required,max=256"`
}

type JoinRoomInput struct {
	// RoomId empty or "default" selects discovery mode.
	RoomId      string `json:"roomId"`
	JoinToken   string `json:"joinToken"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=64"`
}

type RoomCreatedPayload struct {
	RoomId string `json:"roomId"`
}

type ClientJoinedPayload struct {
	ClientId    string `json:"clientId"`
	DisplayName string `json:"displayName"`
	PeerAddress string `json:"peerAddress"`
}

type ClientLeftPayload struct {
	ClientId string `json:"clientId"`
}

type JoinSuccessPayload struct {
	RoomId          string `json:"roomId"`
	HostPeerAddress string `json:"hostPeerAddress"`
}

type JoinRejectedPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
