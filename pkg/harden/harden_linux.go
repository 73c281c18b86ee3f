// Package harden strips the privileges of the sandboxed process and hands
// it over to the command.
//
// The order is fixed: capabilities are dropped, no_new_privs is set, the
// syscall filter is installed and the command is executed. After the filter
// is installed only whitelisted syscalls are possible, so everything that
// needs more (path lookup included) happens before.
//
// The binary must be built with CGO_ENABLED=0. Threads the runtime creates
// after the filter is installed would otherwise go through pthread_create
// and die on its first call outside the whitelist.
package harden

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/euclid-sandbox/euclid/pkg/seccomp"
)

// defines missing consts from syscall package
const (
	SECCOMP_SET_MODE_FILTER   = 1
	SECCOMP_FILTER_FLAG_TSYNC = 1
)

var errEmptyFilter = errors.New("empty filter")

// ErrLibcThreads reports a binary built with cgo. The runtime may start a
// thread at any time, so a filter installed in such a process kills it at
// random with SIGSYS.
var ErrLibcThreads = errors.New("runtime threads start through libc, build with CGO_ENABLED=0")

// CheckThreading fails when the process cannot be filtered safely
func CheckThreading() error {
	if libcThreads {
		return &HardeningError{Op: "check threads", Err: ErrLibcThreads}
	}
	return nil
}

// Unconfined is the process before the syscall filter is installed
type Unconfined struct {
	consumed bool
}

// Filtered is the process after the syscall filter is installed. The filter
// stays for the lifetime of the process and its descendants.
type Filtered struct {
	consumed bool
}

// DropAllCapabilities removes every capability from the bounding set and
// then clears the effective, permitted and inheritable sets. Capabilities
// unknown to the running kernel are skipped.
func DropAllCapabilities() error {
	for c := 0; c <= unix.CAP_LAST_CAP; c++ {
		if err := unix.Prctl(unix.PR_CAPBSET_DROP, uintptr(c), 0, 0, 0); err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return &HardeningError{Op: fmt.Sprintf("capbset_drop(%d)", c), Err: err}
		}
	}

	hdr := unix.CapUserHeader{Version: unix.LINUX_CAPABILITY_VERSION_3}
	// version 3 takes two data blocks for the 64 bit capability sets
	var data [2]unix.CapUserData
	if err := unix.Capset(&hdr, &data[0]); err != nil {
		return &HardeningError{Op: "capset", Err: err}
	}
	return nil
}

// LockPrivilegeEscalation sets no_new_privs so that executing a setuid or
// file capability binary grants nothing. It is required by the filter.
func LockPrivilegeEscalation() error {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return &HardeningError{Op: "set_no_new_privs", Err: err}
	}
	return nil
}

// InstallSyscallFilter installs f on every thread of the process. The state
// is consumed even when the kernel refuses the filter. A cgo build is refused,
// see CheckThreading.
func (u *Unconfined) InstallSyscallFilter(f seccomp.Filter) (*Filtered, error) {
	if u.consumed {
		return nil, ErrStateConsumed
	}
	u.consumed = true
	if len(f) == 0 {
		return nil, &HardeningError{Op: "seccomp", Err: errEmptyFilter}
	}
	if err := CheckThreading(); err != nil {
		return nil, err
	}

	prog := f.SockFprog()
	r1, _, errno := unix.RawSyscall(unix.SYS_SECCOMP, SECCOMP_SET_MODE_FILTER, SECCOMP_FILTER_FLAG_TSYNC, uintptr(unsafe.Pointer(prog)))
	runtime.KeepAlive(f)
	if errno != 0 {
		return nil, &HardeningError{Op: "seccomp", Err: errno}
	}
	// with TSYNC a positive result is the thread that could not be synced
	if r1 != 0 {
		return nil, &HardeningError{Op: "seccomp", Err: fmt.Errorf("thread %d not synchronized", r1)}
	}
	return &Filtered{}, nil
}

// Exec replaces the process with path. It only returns on failure.
func (f *Filtered) Exec(path string, argv, env []string) error {
	if f.consumed {
		return ErrStateConsumed
	}
	f.consumed = true
	return &ExecError{Path: path, Err: unix.Exec(path, argv, env)}
}

// ResolveCommand finds the executable of name through PATH. It must run
// before the filter is installed.
func ResolveCommand(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", &ExecError{Path: name, Err: err}
	}
	return p, nil
}
