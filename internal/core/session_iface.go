package core

import (
	"context"

	"github.com/voxline/voxline/internal/domain"
)

// CallSession is the external call object. The engine depends only on this
// capability set; any signaling transport that satisfies it is substitutable.
// Media and codec negotiation live entirely behind the implementation.
//
// Notification callbacks are invoked synchronously in delivery order, one at
// a time. Owned by the adapter; the adapter must Hangup() and release it.
type CallSession interface {
	ID() domain.CallID
	State() domain.CallState

	// AssertedIdentity returns the identity most recently claimed by the
	// remote party over signaling, or "" if none was asserted.
	AssertedIdentity() domain.UserID

	OnStateChange(fn func(domain.CallState))
	OnAssertedIdentity(fn func())

	Place(ctx context.Context) error
	Hold() error
	Resume() error
	Hangup() error
}

// SessionFactory creates the underlying call object for a room.
type SessionFactory interface {
	NewSession(ctx context.Context, roomID domain.RoomID, kind domain.CallType) (CallSession, error)
}
