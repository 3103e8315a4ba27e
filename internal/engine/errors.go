package engine

import "errors"

// ErrStopped is returned by a Presenter to end the control loop without
// deciding the pairing on screen. Run treats it as a clean stop: everything
// decided so far is already in the ledger.
var ErrStopped = errors.New("stopped by presenter")

// IsStopped returns true if the error is (or wraps) ErrStopped.
func IsStopped(err error) bool {
	return errors.Is(err, ErrStopped)
}
