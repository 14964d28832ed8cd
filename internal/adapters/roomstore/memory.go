// Package roomstore is the in-memory room and direct-conversation store.
package roomstore

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/domain"
)

// Store holds rooms and the bidirectional user↔direct-room association.
// The call engine only reads it through core.RoomDirectory.
type Store struct {
	mu           sync.RWMutex
	rooms        map[domain.RoomID]*domain.Room
	directByUser map[domain.UserID][]domain.RoomID
	userByDirect map[domain.RoomID]domain.UserID
}

func NewStore() *Store {
	return &Store{
		rooms:        make(map[domain.RoomID]*domain.Room),
		directByUser: make(map[domain.UserID][]domain.RoomID),
		userByDirect: make(map[domain.RoomID]domain.UserID),
	}
}

func (s *Store) AddRoom(room *domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	log.Info().Str("module", "adapters.roomstore").Str("room", string(room.ID)).Bool("direct", room.IsDirect).Msg("room added")
}

// SetDirect records roomID as a one-to-one room with user. Rooms keep
// insertion order per user; the first recorded room stays canonical.
func (s *Store) SetDirect(user domain.UserID, roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.directByUser[user] {
		if existing == roomID {
			return
		}
	}
	s.directByUser[user] = append(s.directByUser[user], roomID)
	s.userByDirect[roomID] = user
	log.Info().Str("module", "adapters.roomstore").Str("user", string(user)).Str("room", string(roomID)).Msg("direct room mapped")
}

func (s *Store) Room(roomID domain.RoomID) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

// MembersSnapshot returns a copy of the room's membership.
func (s *Store) MembersSnapshot(roomID domain.RoomID) []domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.UserID, len(room.Members))
	copy(out, room.Members)
	return out
}

func (s *Store) DirectRoomsForUser(user domain.UserID) []domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := s.directByUser[user]
	out := make([]domain.RoomID, len(rooms))
	copy(out, rooms)
	return out
}

func (s *Store) UserForDirectRoom(roomID domain.RoomID) (domain.UserID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.userByDirect[roomID]
	return user, ok
}
