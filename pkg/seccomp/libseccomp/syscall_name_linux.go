package libseccomp

import (
	"fmt"

	"github.com/elastic/go-seccomp-bpf/arch"
)

var info, errInfo = arch.GetInfo("")

// ToSyscallName convert syscallno to syscall name
func ToSyscallName(sysno uint) (string, error) {
	if errInfo != nil {
		return "", errInfo
	}
	n, ok := info.SyscallNumbers[int(sysno)]
	if !ok {
		return "", fmt.Errorf("syscall no %d does not exits", sysno)
	}
	return n, nil
}

// ToSyscallNumber convert syscall name to syscallno on the running architecture
func ToSyscallNumber(name string) (uint, error) {
	if errInfo != nil {
		return 0, errInfo
	}
	for no, n := range info.SyscallNumbers {
		if n == name {
			return uint(no), nil
		}
	}
	return 0, fmt.Errorf("syscall %q does not exist on %s", name, info.Name)
}

// SplitSupported separates the names known on the running architecture from
// the ones it lacks (e.g. open, fork or stat on arm64). Order is preserved.
func SplitSupported(names []string) (supported, unsupported []string, err error) {
	if errInfo != nil {
		return nil, nil, errInfo
	}
	known := make(map[string]bool, len(info.SyscallNumbers))
	for _, n := range info.SyscallNumbers {
		known[n] = true
	}
	for _, n := range names {
		if known[n] {
			supported = append(supported, n)
		} else {
			unsupported = append(unsupported, n)
		}
	}
	return supported, unsupported, nil
}

// ArchID returns the AUDIT_ARCH value the filter checks seccomp_data.arch against
func ArchID() (uint32, error) {
	if errInfo != nil {
		return 0, errInfo
	}
	return uint32(info.ID), nil
}
