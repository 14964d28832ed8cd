package core

import "github.com/voxline/voxline/internal/domain"

type ActionType string

const (
	// ActionViewRoom asks the UI to navigate to a room.
	ActionViewRoom ActionType = "view_room"
)

type Action struct {
	Type   ActionType    `json:"type"`
	RoomID domain.RoomID `json:"room_id"`
}

// Dispatcher is the global action bus the engine publishes intents on.
// The engine never subscribes to dispatcher traffic.
type Dispatcher interface {
	Dispatch(a Action)
}
