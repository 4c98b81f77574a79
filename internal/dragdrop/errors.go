package dragdrop

import "fmt"

// IllegalMoveError explains why a drop produced no command. It is never returned
// by the drag path itself; drops that resolve to nothing are silent.
type IllegalMoveError struct {
	Reason string
}

func (e IllegalMoveError) Error() string {
	return "illegal move: " + e.Reason
}

// RemoteFailure wraps an error from the Remote collaborator. By the time it is
// returned the optimistic change has been reverted.
type RemoteFailure struct {
	Command Command
	Err     error
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command.Kind, e.Err)
}

func (e *RemoteFailure) Unwrap() error { return e.Err }
