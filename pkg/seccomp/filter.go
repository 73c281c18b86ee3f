// Package seccomp provides the assembled BPF program installed as the
// syscall filter of the sandbox
package seccomp

import (
	"golang.org/x/sys/unix"
)

// Filter is the BPF seccomp filter value
type Filter []unix.SockFilter

// SockFprog converts Filter to SockFprog for seccomp syscall. The result
// points into f, so f must stay reachable until the filter is installed.
func (f Filter) SockFprog() *unix.SockFprog {
	if len(f) == 0 {
		return &unix.SockFprog{}
	}
	return &unix.SockFprog{
		Len:    uint16(len(f)),
		Filter: &f[0],
	}
}
