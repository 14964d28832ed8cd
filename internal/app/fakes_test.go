package app

import (
	"context"
	"sync"

	"github.com/voxline/voxline/internal/domain"
)

// fakeSession is a scriptable call object for engine tests.
type fakeSession struct {
	mu        sync.Mutex
	id        domain.CallID
	state     domain.CallState
	asserted  domain.UserID
	stateFns  []func(domain.CallState)
	assertFns []func()
	hangups   int
}

func newFakeSession() *fakeSession {
	return &fakeSession{id: domain.NewCallID(), state: domain.CallStateIdle}
}

func (s *fakeSession) ID() domain.CallID { return s.id }

func (s *fakeSession) State() domain.CallState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSession) AssertedIdentity() domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asserted
}

func (s *fakeSession) OnStateChange(fn func(domain.CallState)) {
	s.stateFns = append(s.stateFns, fn)
}

func (s *fakeSession) OnAssertedIdentity(fn func()) {
	s.assertFns = append(s.assertFns, fn)
}

func (s *fakeSession) Place(context.Context) error { return nil }
func (s *fakeSession) Hold() error                 { return nil }
func (s *fakeSession) Resume() error               { return nil }

func (s *fakeSession) Hangup() error {
	s.mu.Lock()
	s.hangups++
	s.mu.Unlock()
	return nil
}

// setState drives the connection-state notification stream.
func (s *fakeSession) setState(st domain.CallState) {
	s.mu.Lock()
	s.state = st
	fns := s.stateFns
	s.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// assertIdentity drives the asserted-identity notification stream.
func (s *fakeSession) assertIdentity(user domain.UserID) {
	s.mu.Lock()
	s.asserted = user
	fns := s.assertFns
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// fakeFlags is an in-memory FlagSource.
type fakeFlags struct {
	values map[string]bool
}

func (f *fakeFlags) Bool(key string) bool { return f.values[key] }

// fakeRooms is an in-memory direct-conversation map.
type fakeRooms struct {
	byUser map[domain.UserID][]domain.RoomID
}

func (f *fakeRooms) DirectRoomsForUser(id domain.UserID) []domain.RoomID {
	return f.byUser[id]
}

func (f *fakeRooms) UserForDirectRoom(roomID domain.RoomID) (domain.UserID, bool) {
	for user, rooms := range f.byUser {
		for _, r := range rooms {
			if r == roomID {
				return user, true
			}
		}
	}
	return "", false
}
