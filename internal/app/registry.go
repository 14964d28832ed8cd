package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/core"
	"github.com/voxline/voxline/internal/domain"
)

// ErrCallInProgress is returned when a call is registered for a room while a
// call for a different room is still live.
var ErrCallInProgress = errors.New("another call is already in progress")

// CallRegistry is the single source of truth mapping the live call to the
// room displaying it. At most one call is live at a time. Forward
// (room→session) and inverse (call→room) indices are mutated together under
// one lock so no caller can observe them disagreeing.
type CallRegistry struct {
	mu         sync.Mutex
	byRoom     map[domain.RoomID]core.CallSession
	roomByCall map[domain.CallID]domain.RoomID

	onRoomChange func(core.CallRoomChange)
}

func NewCallRegistry() *CallRegistry {
	return &CallRegistry{
		byRoom:     make(map[domain.RoomID]core.CallSession),
		roomByCall: make(map[domain.CallID]domain.RoomID),
	}
}

// SetRoomChangeHandler installs the handler fired once per successful Move.
// Must be called before the registry is shared.
func (r *CallRegistry) SetRoomChangeHandler(fn func(core.CallRoomChange)) {
	r.onRoomChange = fn
}

// Register binds a session to a room. A session already registered for the
// same room is replaced idempotently; a session live for a different room
// makes this fail with ErrCallInProgress and mutates nothing.
func (r *CallRegistry) Register(roomID domain.RoomID, sess core.CallSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, activeRoom := range r.roomByCall {
		if activeRoom != roomID {
			log.Warn().Str("module", "app.registry").Str("room", string(roomID)).Str("active_room", string(activeRoom)).Msg("concurrent call rejected")
			return ErrCallInProgress
		}
	}
	if old, ok := r.byRoom[roomID]; ok {
		delete(r.roomByCall, old.ID())
	}
	r.byRoom[roomID] = sess
	r.roomByCall[sess.ID()] = roomID
	log.Info().Str("module", "app.registry").Str("call", string(sess.ID())).Str("room", string(roomID)).Msg("call registered")
	return nil
}

func (r *CallRegistry) CallForRoom(roomID domain.RoomID) (core.CallSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byRoom[roomID]
	return sess, ok
}

func (r *CallRegistry) RoomForCall(callID domain.CallID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.roomByCall[callID]
	return roomID, ok
}

// ActiveCall returns the live session, if any.
func (r *CallRegistry) ActiveCall() (core.CallSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sess := range r.byRoom {
		return sess, true
	}
	return nil, false
}

// Move re-homes a call to a new room, updating both indices as one step.
// Moving to the room the call is already in is a silent no-op, so duplicate
// move requests collapse to a single observable room change. Moving an
// unknown call is ignored; the call lifecycle is externally driven and may
// race with unregistration.
func (r *CallRegistry) Move(callID domain.CallID, toRoom domain.RoomID) bool {
	r.mu.Lock()
	fromRoom, ok := r.roomByCall[callID]
	if !ok || fromRoom == toRoom {
		r.mu.Unlock()
		return false
	}
	sess := r.byRoom[fromRoom]
	delete(r.byRoom, fromRoom)
	r.byRoom[toRoom] = sess
	r.roomByCall[callID] = toRoom
	fn := r.onRoomChange
	r.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("call", string(callID)).Str("from", string(fromRoom)).Str("to", string(toRoom)).Msg("call moved")
	// Fired outside the lock so a handler may call back into the registry
	// and see both indices already consistent.
	if fn != nil {
		fn(core.CallRoomChange{CallID: callID, From: fromRoom, To: toRoom})
	}
	return true
}

// Unregister drops all index entries for a call. Called when the call
// reaches a terminal state. Unknown calls are ignored.
func (r *CallRegistry) Unregister(callID domain.CallID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.roomByCall[callID]
	if !ok {
		return
	}
	delete(r.byRoom, roomID)
	delete(r.roomByCall, callID)
	log.Info().Str("module", "app.registry").Str("call", string(callID)).Str("room", string(roomID)).Msg("call unregistered")
}
