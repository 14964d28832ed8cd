package core

import "github.com/voxline/voxline/internal/domain"

// RoomDirectory is the externally-owned map between users and their
// one-to-one rooms. The engine queries it and never mutates it.
//
// DirectRoomsForUser returns rooms in insertion order; the first entry is
// canonical when a user has several direct rooms.
type RoomDirectory interface {
	DirectRoomsForUser(id domain.UserID) []domain.RoomID
	UserForDirectRoom(roomID domain.RoomID) (domain.UserID, bool)
}
