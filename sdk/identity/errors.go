package identity

import "fmt"

// ErrInvalidCredentials represents the gateway's rejection of supplied
// credentials. It is an expected, recoverable outcome of a sign-in attempt
// and is deliberately distinct from errors indicating the gateway could not
// be reached at all.
type ErrInvalidCredentials struct {
	// Reason is the gateway's own explanation of the rejection, when it
	// provided one.
	Reason string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("could not authenticate: %s", e.Reason)
}
