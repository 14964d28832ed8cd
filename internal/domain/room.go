package domain

type RoomID string

// Room is a chat conversation. Membership and the direct-message flag are
// owned by the room store; the call engine only reads them.
type Room struct {
	ID       RoomID   `json:"id"`
	Name     string   `json:"name,omitempty"`
	IsDirect bool     `json:"is_direct"`
	Members  []UserID `json:"members,omitempty"`
}
