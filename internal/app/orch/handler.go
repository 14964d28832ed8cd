// Package orch composes the call registry, directory resolver, room
// directory and dispatcher into the voice control plane the UI talks to.
package orch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/app"
	"github.com/voxline/voxline/internal/core"
	"github.com/voxline/voxline/internal/domain"
)

var (
	// ErrNoDirectRoom means the dialed number resolved to a user we have no
	// one-to-one room with. Distinct from core.ErrNoMatch: resolution
	// worked, location did not. Room creation is the caller's business.
	ErrNoDirectRoom = errors.New("no direct room with resolved user")

	// ErrNoActiveCall is returned by operations on the current call when
	// there is none.
	ErrNoActiveCall = errors.New("no active call")
)

type CallHandler struct {
	Registry  *app.CallRegistry
	Reconcile *app.Reconciler
	Directory core.DirectoryResolver
	Rooms     core.RoomDirectory
	Dispatch  core.Dispatcher
	Sessions  core.SessionFactory

	mu       sync.Mutex
	stateFns []func(core.CallStateChange)
	roomFns  []func(core.CallRoomChange)
}

// NewCallHandler wires the registry's room-change notification into the
// handler's own event surface. The registry must not be shared with another
// handler.
func NewCallHandler(
	registry *app.CallRegistry,
	reconcile *app.Reconciler,
	directory core.DirectoryResolver,
	rooms core.RoomDirectory,
	dispatch core.Dispatcher,
	sessions core.SessionFactory,
) *CallHandler {
	h := &CallHandler{
		Registry:  registry,
		Reconcile: reconcile,
		Directory: directory,
		Rooms:     rooms,
		Dispatch:  dispatch,
		Sessions:  sessions,
	}
	registry.SetRoomChangeHandler(h.emitRoomChange)
	return h
}

// OnCallStateChanged subscribes to call-state-changed events. Events fire
// synchronously from within the triggering operation.
func (h *CallHandler) OnCallStateChanged(fn func(core.CallStateChange)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateFns = append(h.stateFns, fn)
}

// OnCallRoomChanged subscribes to call-changed-room events, fired once per
// successful re-homing.
func (h *CallHandler) OnCallRoomChanged(fn func(core.CallRoomChange)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomFns = append(h.roomFns, fn)
}

// PlaceCall starts a call in a known room. The single-call invariant is
// enforced at registration time, not earlier, so two dials suspended on the
// directory cannot both slip past it.
func (h *CallHandler) PlaceCall(ctx context.Context, roomID domain.RoomID, kind domain.CallType) (core.CallSession, error) {
	sess, err := h.Sessions.NewSession(ctx, roomID, kind)
	if err != nil {
		return nil, err
	}
	if err := h.Registry.Register(roomID, sess); err != nil {
		_ = sess.Hangup()
		return nil, err
	}

	sess.OnStateChange(func(st domain.CallState) {
		h.onState(sess, st)
	})
	h.Reconcile.Watch(sess)

	if err := sess.Place(ctx); err != nil {
		h.Registry.Unregister(sess.ID())
		return nil, err
	}
	log.Info().Str("module", "orch").Str("call", string(sess.ID())).Str("room", string(roomID)).Str("kind", string(kind)).Msg("call placed")
	return sess, nil
}

// DialNumber resolves a dialed number through the directory, locates the
// direct room with the resolved user, publishes a navigation intent to that
// room and places a voice call in it. Any resolution failure surfaces to the
// caller with no call placed and no intent published.
func (h *CallHandler) DialNumber(ctx context.Context, number string) (core.CallSession, error) {
	records, err := h.Directory.Lookup(ctx, number)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("number", number).Msg("dial lookup failed")
		return nil, err
	}
	rec, ok := pickRecord(records)
	if !ok {
		return nil, core.ErrNoMatch
	}

	rooms := h.Rooms.DirectRoomsForUser(rec.UserID)
	if len(rooms) == 0 {
		log.Warn().Str("module", "orch").Str("user", string(rec.UserID)).Msg("dial resolved user without direct room")
		return nil, ErrNoDirectRoom
	}
	roomID := rooms[0]

	h.Dispatch.Dispatch(core.Action{Type: core.ActionViewRoom, RoomID: roomID})
	return h.PlaceCall(ctx, roomID, domain.CallVoice)
}

// CallForRoom is a read-only passthrough to the registry.
func (h *CallHandler) CallForRoom(roomID domain.RoomID) (core.CallSession, bool) {
	return h.Registry.CallForRoom(roomID)
}

// HangupCall ends the active call, if any. Teardown completes when the
// session reports a terminal state.
func (h *CallHandler) HangupCall() error {
	sess, ok := h.Registry.ActiveCall()
	if !ok {
		return ErrNoActiveCall
	}
	return sess.Hangup()
}

// HoldCall puts the active call on hold.
func (h *CallHandler) HoldCall() error {
	sess, ok := h.Registry.ActiveCall()
	if !ok {
		return ErrNoActiveCall
	}
	return sess.Hold()
}

// ResumeCall resumes the active call.
func (h *CallHandler) ResumeCall() error {
	sess, ok := h.Registry.ActiveCall()
	if !ok {
		return ErrNoActiveCall
	}
	return sess.Resume()
}

// pickRecord applies the selection policy: first record flagged as a
// successful native lookup wins.
func pickRecord(records []core.DirectoryRecord) (core.DirectoryRecord, bool) {
	for _, rec := range records {
		if rec.Native && rec.Succeeded {
			return rec, true
		}
	}
	return core.DirectoryRecord{}, false
}

func (h *CallHandler) onState(sess core.CallSession, st domain.CallState) {
	roomID, ok := h.Registry.RoomForCall(sess.ID())
	if !ok {
		// State change raced with unregistration; nothing to report.
		return
	}
	h.emitStateChange(core.CallStateChange{CallID: sess.ID(), RoomID: roomID, State: st})
	if st.Terminal() {
		h.Registry.Unregister(sess.ID())
	}
}

func (h *CallHandler) emitStateChange(ev core.CallStateChange) {
	h.mu.Lock()
	fns := h.stateFns
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *CallHandler) emitRoomChange(ev core.CallRoomChange) {
	h.mu.Lock()
	fns := h.roomFns
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
