package libseccomp

import (
	"errors"

	libseccomp "github.com/elastic/go-seccomp-bpf"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/euclid-sandbox/euclid/pkg/seccomp"
)

var errEmptyAllow = errors.New("seccomp: empty allow list")

// Builder is used to build the filter
type Builder struct {
	Allow   []string
	Default seccomp.Action
}

// NewDefaultBuilder creates the builder of the sandbox whitelist
func NewDefaultBuilder() *Builder {
	return &Builder{
		Allow:   DefaultAllow,
		Default: seccomp.ActionKill,
	}
}

// Build builds the filter. Names unknown on the running architecture are
// skipped, see SplitSupported.
func (b *Builder) Build() (seccomp.Filter, error) {
	allow, _, err := SplitSupported(b.Allow)
	if err != nil {
		return nil, err
	}
	if len(allow) == 0 {
		return nil, errEmptyAllow
	}
	policy := libseccomp.Policy{
		DefaultAction: ToSeccompAction(b.Default),
		Syscalls: []libseccomp.SyscallGroup{
			{
				Action: ToSeccompAction(seccomp.ActionAllow),
				Names:  allow,
			},
		},
	}
	program, err := policy.Assemble()
	if err != nil {
		return nil, err
	}
	return ExportBPF(program)
}

// ExportBPF convert libseccomp filter to kernel readable BPF content
func ExportBPF(filter []bpf.Instruction) (seccomp.Filter, error) {
	raw, err := bpf.Assemble(filter)
	if err != nil {
		return nil, err
	}
	return sockFilter(raw), nil
}

func sockFilter(raw []bpf.RawInstruction) []unix.SockFilter {
	filter := make([]unix.SockFilter, 0, len(raw))
	for _, instruction := range raw {
		filter = append(filter, unix.SockFilter{
			Code: instruction.Op,
			Jt:   instruction.Jt,
			Jf:   instruction.Jf,
			K:    instruction.K,
		})
	}
	return filter
}

// Disassemble converts the filter back into bpf instructions for display
func Disassemble(f seccomp.Filter) []bpf.Instruction {
	ret := make([]bpf.Instruction, 0, len(f))
	for _, s := range f {
		ret = append(ret, bpf.RawInstruction{Op: s.Code, Jt: s.Jt, Jf: s.Jf, K: s.K}.Disassemble())
	}
	return ret
}

// Describe names the syscall a compare instruction of the filter matches.
// It returns "" for every other instruction, the architecture check included.
func Describe(ins bpf.Instruction) string {
	j, ok := ins.(bpf.JumpIf)
	if !ok || (j.Cond != bpf.JumpEqual && j.Cond != bpf.JumpNotEqual) {
		return ""
	}
	if id, err := ArchID(); err == nil && j.Val == id {
		return ""
	}
	name, err := ToSyscallName(uint(j.Val))
	if err != nil {
		return ""
	}
	return name
}
