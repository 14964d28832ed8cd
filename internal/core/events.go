package core

import "github.com/voxline/voxline/internal/domain"

// CallStateChange is emitted synchronously whenever a call's connection
// state moves.
type CallStateChange struct {
	CallID domain.CallID    `json:"call_id"`
	RoomID domain.RoomID    `json:"room_id"`
	State  domain.CallState `json:"state"`
}

// CallRoomChange is emitted exactly once per successful re-homing of a call.
type CallRoomChange struct {
	CallID domain.CallID `json:"call_id"`
	From   domain.RoomID `json:"from"`
	To     domain.RoomID `json:"to"`
}
