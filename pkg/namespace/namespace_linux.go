// Package namespace holds the namespace set of the sandbox and the setup done
// inside it before the filesystem is isolated
package namespace

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CloneFlags are the namespaces the sandboxed process is created in.
// User namespaces are not used, the sandbox runs as the real root.
const CloneFlags = unix.CLONE_NEWUTS | unix.CLONE_NEWPID | unix.CLONE_NEWNS |
	unix.CLONE_NEWNET | unix.CLONE_NEWIPC

// NamespaceError is the failed namespace operation
type NamespaceError struct {
	Op  string
	Err error
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("namespace: %s: %v", e.Op, e.Err)
}

func (e *NamespaceError) Unwrap() error {
	return e.Err
}

// SetHostname sets the hostname of the UTS namespace
func SetHostname(name string) error {
	if err := unix.Sethostname([]byte(name)); err != nil {
		return &NamespaceError{Op: "sethostname", Err: err}
	}
	return nil
}

// MakeMountTreePrivate stops mount propagation between the sandbox and the
// host in both directions. It must run before anything is mounted.
func MakeMountTreePrivate() error {
	if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return &NamespaceError{Op: "make-rprivate /", Err: err}
	}
	return nil
}

// Names lists the namespaces selected by flags, in /proc/<pid>/ns naming
func Names(flags uintptr) []string {
	var names []string
	for _, ns := range []struct {
		flag uintptr
		name string
	}{
		{unix.CLONE_NEWUTS, "uts"},
		{unix.CLONE_NEWPID, "pid"},
		{unix.CLONE_NEWNS, "mnt"},
		{unix.CLONE_NEWNET, "net"},
		{unix.CLONE_NEWIPC, "ipc"},
		{unix.CLONE_NEWUSER, "user"},
		{unix.CLONE_NEWCGROUP, "cgroup"},
	} {
		if flags&ns.flag == ns.flag {
			names = append(names, ns.name)
		}
	}
	return names
}
