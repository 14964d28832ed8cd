package core

// FlagObeyAssertedIdentity gates call re-homing on asserted identity
// changes. Read on every notification, never cached, so toggling it takes
// effect mid-call.
const FlagObeyAssertedIdentity = "voip.obey_asserted_identity"

// FlagSource is the runtime configuration boundary. Bool returns false for
// unset keys.
type FlagSource interface {
	Bool(key string) bool
}
