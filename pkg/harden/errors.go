package harden

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// Exit codes of the sandboxed process when the command cannot be started,
// matching the shell convention
const (
	ExitNotExecutable = 126
	ExitNotFound      = 127
)

// ErrStateConsumed is returned when a confinement state is transitioned twice
var ErrStateConsumed = errors.New("harden: state already consumed")

// HardeningError is a failed privilege reduction step
type HardeningError struct {
	Op  string
	Err error
}

func (e *HardeningError) Error() string {
	return fmt.Sprintf("harden: %s: %v", e.Op, e.Err)
}

func (e *HardeningError) Unwrap() error {
	return e.Err
}

// ExecError is the failure to hand the process over to the command
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExitCode is 127 when the command does not exist and 126 otherwise
func (e *ExecError) ExitCode() int {
	if errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist) {
		return ExitNotFound
	}
	return ExitNotExecutable
}
