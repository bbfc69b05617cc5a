package session

// AuthState represents the phase of the authentication subsystem as a whole.
// Exactly one value holds at any time and it is shared by every consumer of
// the session.
type AuthState string

const (
	// StateInitial is the state before Initialize has been invoked.
	StateInitial AuthState = "INITIAL"
	// StateChecking indicates an authentication check against the remote
	// identity gateway is in flight. While in this state, further checks are
	// dropped rather than queued.
	StateChecking AuthState = "CHECKING"
	// StateAuthenticated indicates a live gateway session AND a valid, verified
	// profile record were both confirmed.
	StateAuthenticated AuthState = "AUTHENTICATED"
	// StateUnauthenticated indicates no live session exists.
	StateUnauthenticated AuthState = "UNAUTHENTICATED"
	// StateError indicates the most recent check could not be completed-- e.g.
	// the gateway was unreachable or the check timed out. It is recoverable:
	// any subsequent successful check leaves this state.
	StateError AuthState = "ERROR"
	// StateLoggingOut indicates a sign-out is in progress. Local session state
	// is already cleared by the time this state is observable.
	StateLoggingOut AuthState = "LOGGING_OUT"
)
