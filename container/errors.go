package container

import (
	"errors"
	"fmt"
)

// ErrStateConsumed is returned when a supervisor state is transitioned twice
var ErrStateConsumed = errors.New("container: state already consumed")

// SpawnError is a failure to create the sandboxed process or to hand it the
// configuration. No process is left behind.
type SpawnError struct {
	Op  string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn: %s: %v", e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// SyncError is a failure of the one byte handshake
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
