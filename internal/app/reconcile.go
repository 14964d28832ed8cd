package app

import (
	"github.com/rs/zerolog/log"

	"github.com/voxline/voxline/internal/core"
)

// Reconciler re-homes a live call when the remote party's asserted identity
// changes, a SIP/PSTN bridging scenario where the signaling room and the
// real human counterpart diverge mid-call.
type Reconciler struct {
	Flags    core.FlagSource
	Rooms    core.RoomDirectory
	Registry *CallRegistry
}

func NewReconciler(flags core.FlagSource, rooms core.RoomDirectory, registry *CallRegistry) *Reconciler {
	return &Reconciler{Flags: flags, Rooms: rooms, Registry: registry}
}

// Watch subscribes to the session's asserted-identity stream. Notifications
// arrive in delivery order and each is fully processed before the next.
func (r *Reconciler) Watch(sess core.CallSession) {
	sess.OnAssertedIdentity(func() {
		r.reconcile(sess)
	})
}

func (r *Reconciler) reconcile(sess core.CallSession) {
	// Read the flag on every notification so toggling it mid-call takes
	// effect without restarting the call. Disabled is the default posture.
	if !r.Flags.Bool(core.FlagObeyAssertedIdentity) {
		return
	}

	identity := sess.AssertedIdentity()
	if identity == "" {
		return
	}

	// The call may already have been torn down; the session outlives its
	// registry entry.
	current, ok := r.Registry.RoomForCall(sess.ID())
	if !ok {
		log.Debug().Str("module", "app.reconcile").Str("call", string(sess.ID())).Msg("asserted identity for unregistered call, ignoring")
		return
	}

	rooms := r.Rooms.DirectRoomsForUser(identity)
	if len(rooms) == 0 {
		// Expected during partial rollouts: not every asserted identity has
		// a direct room yet.
		log.Debug().Str("module", "app.reconcile").Str("call", string(sess.ID())).Str("user", string(identity)).Msg("no direct room for asserted identity")
		return
	}
	target := rooms[0]
	if target == current {
		return
	}

	log.Info().Str("module", "app.reconcile").Str("call", string(sess.ID())).Str("user", string(identity)).Str("room", string(target)).Msg("re-homing call to asserted identity")
	r.Registry.Move(sess.ID(), target)
}
