package roomstore

import (
	"testing"

	"github.com/voxline/voxline/internal/domain"
)

const (
	alice = domain.UserID("@alice:example.org")
	room1 = domain.RoomID("!one:example.org")
	room2 = domain.RoomID("!two:example.org")
)

func TestDirectRoomsKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	s.SetDirect(alice, room1)
	s.SetDirect(alice, room2)

	rooms := s.DirectRoomsForUser(alice)
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	// First recorded room stays canonical.
	if rooms[0] != room1 || rooms[1] != room2 {
		t.Fatalf("insertion order not preserved: %v", rooms)
	}
}

func TestSetDirectIsIdempotent(t *testing.T) {
	s := NewStore()
	s.SetDirect(alice, room1)
	s.SetDirect(alice, room1)

	if rooms := s.DirectRoomsForUser(alice); len(rooms) != 1 {
		t.Fatalf("duplicate mapping recorded twice: %v", rooms)
	}
}

func TestUserForDirectRoom(t *testing.T) {
	s := NewStore()
	s.SetDirect(alice, room1)

	user, ok := s.UserForDirectRoom(room1)
	if !ok || user != alice {
		t.Fatalf("inverse lookup failed: %v %v", user, ok)
	}
	if _, ok := s.UserForDirectRoom(room2); ok {
		t.Fatalf("unknown room must not resolve")
	}
}

func TestMembersSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.AddRoom(&domain.Room{ID: room1, Members: []domain.UserID{alice}})

	snap := s.MembersSnapshot(room1)
	snap[0] = "@eve:example.org"

	if got := s.MembersSnapshot(room1); got[0] != alice {
		t.Fatalf("snapshot aliases store memory")
	}
	if s.MembersSnapshot(room2) != nil {
		t.Fatalf("unknown room should have nil snapshot")
	}
}

func TestRoomLookup(t *testing.T) {
	s := NewStore()
	s.AddRoom(&domain.Room{ID: room1, IsDirect: true})

	if room, ok := s.Room(room1); !ok || !room.IsDirect {
		t.Fatalf("room lookup failed")
	}
	if _, ok := s.Room(room2); ok {
		t.Fatalf("unknown room must not resolve")
	}
}
