package domain

import "github.com/google/uuid"

// CallID is stable for the call's lifetime even when the call changes rooms.
type CallID string

func NewCallID() CallID {
	return CallID(uuid.NewString())
}

type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

// CallState is the handler-observable connection state of a call.
type CallState string

const (
	CallStateIdle       CallState = "idle"
	CallStateConnecting CallState = "connecting"
	CallStateConnected  CallState = "connected"
	CallStateEnded      CallState = "ended"
	CallStateError      CallState = "error"
)

// Terminal reports whether the call can no longer change state.
func (s CallState) Terminal() bool {
	return s == CallStateEnded || s == CallStateError
}
