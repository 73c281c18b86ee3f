package libseccomp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/bpf"

	"github.com/euclid-sandbox/euclid/pkg/seccomp"
)

const (
	retKillProcess = 0x80000000
	retAllow       = 0x7fff0000
)

// seccompData builds struct seccomp_data for the bpf VM. The VM loads words
// big-endian, so the fields are stored that way to read back unchanged.
func seccompData(t *testing.T, nr uint, arch uint32) []byte {
	t.Helper()
	b := make([]byte, 64)
	binary.BigEndian.PutUint32(b[0:], uint32(nr))
	binary.BigEndian.PutUint32(b[4:], arch)
	return b
}

func newVM(t *testing.T, f seccomp.Filter) *bpf.VM {
	t.Helper()
	vm, err := bpf.NewVM(Disassemble(f))
	require.NoError(t, err)
	return vm
}

func runName(t *testing.T, vm *bpf.VM, name string) uint32 {
	t.Helper()
	nr, err := ToSyscallNumber(name)
	require.NoError(t, err)
	arch, err := ArchID()
	require.NoError(t, err)
	ret, err := vm.Run(seccompData(t, nr, arch))
	require.NoError(t, err)
	return uint32(ret)
}

func TestDefaultFilterAllowsWhitelist(t *testing.T) {
	f, err := NewDefaultBuilder().Build()
	require.NoError(t, err)
	vm := newVM(t, f)

	allow, _, err := SplitSupported(DefaultAllow)
	require.NoError(t, err)
	require.NotEmpty(t, allow)
	for _, name := range allow {
		assert.Equal(t, uint32(retAllow), runName(t, vm, name), name)
	}
}

func TestDefaultFilterKillsOthers(t *testing.T) {
	f, err := NewDefaultBuilder().Build()
	require.NoError(t, err)
	vm := newVM(t, f)

	for _, name := range []string{"mount", "umount2", "ptrace", "reboot", "unshare", "setns", "pivot_root", "kill", "bpf", "epoll_pwait"} {
		assert.Equal(t, uint32(retKillProcess), runName(t, vm, name), name)
	}
}

func TestFilterRejectsForeignArch(t *testing.T) {
	f, err := NewDefaultBuilder().Build()
	require.NoError(t, err)
	vm := newVM(t, f)

	nr, err := ToSyscallNumber("read")
	require.NoError(t, err)
	arch, err := ArchID()
	require.NoError(t, err)
	ret, err := vm.Run(seccompData(t, nr, arch^0xffff))
	require.NoError(t, err)
	assert.NotEqual(t, retAllow, ret)
}

func TestSplitSupported(t *testing.T) {
	supported, unsupported, err := SplitSupported([]string{"read", "no_such_syscall", "write"})
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, supported)
	assert.Equal(t, []string{"no_such_syscall"}, unsupported)
}

func TestSyscallNameRoundTrip(t *testing.T) {
	nr, err := ToSyscallNumber("execve")
	require.NoError(t, err)
	name, err := ToSyscallName(nr)
	require.NoError(t, err)
	assert.Equal(t, "execve", name)

	_, err = ToSyscallNumber("no_such_syscall")
	assert.Error(t, err)
}

func TestBuildEmpty(t *testing.T) {
	b := Builder{Allow: []string{"no_such_syscall"}, Default: seccomp.ActionKill}
	_, err := b.Build()
	assert.Error(t, err)
}

func TestSockFprog(t *testing.T) {
	f, err := NewDefaultBuilder().Build()
	require.NoError(t, err)
	prog := f.SockFprog()
	assert.Equal(t, len(f), int(prog.Len))
	assert.Same(t, &f[0], prog.Filter)
}

func TestDescribe(t *testing.T) {
	f, err := NewDefaultBuilder().Build()
	require.NoError(t, err)
	allow, _, err := SplitSupported(DefaultAllow)
	require.NoError(t, err)

	described := make(map[string]bool)
	for _, ins := range Disassemble(f) {
		if name := Describe(ins); name != "" {
			described[name] = true
		}
	}
	for _, name := range allow {
		assert.True(t, described[name], name)
	}
	assert.Len(t, described, len(allow))

	arch, err := ArchID()
	require.NoError(t, err)
	assert.Empty(t, Describe(bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: arch}))
	assert.Empty(t, Describe(bpf.RetConstant{Val: retAllow}))
}

func TestToSeccompAction(t *testing.T) {
	assert.Equal(t, uint32(retAllow), uint32(ToSeccompAction(seccomp.ActionAllow)))
	assert.Equal(t, uint32(retKillProcess), uint32(ToSeccompAction(seccomp.ActionKill)))
	assert.Equal(t, "kill", seccomp.ActionKill.String())
	assert.Equal(t, "invalid", seccomp.Action(0).String())
}

// BenchmarkBuildDefaultFilter measures the startup cost of the whitelist
func BenchmarkBuildDefaultFilter(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewDefaultBuilder().Build()
	}
}
