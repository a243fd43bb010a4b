package reconciler

import (
	"errors"
	"fmt"
)

// Expected, recoverable conditions. Callers re-prompt on these.
var (
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrNoActiveSession     = errors.New("no matching done yet")
	ErrCannotDeleteMatched = errors.New("can't delete a record that is already matched")
	ErrFinished            = errors.New("reconciliation already finalized")
)

func indexError(kind string, index, size int) error {
	return fmt.Errorf("%s %d (have %d): %w", kind, index, size, ErrIndexOutOfRange)
}
