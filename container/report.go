package container

import (
	"fmt"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/euclid-sandbox/euclid/pkg/cgroup"
)

// ExitReport is how the sandboxed process ended
type ExitReport struct {
	Pid      int
	Exited   bool
	ExitCode int
	Signal   syscall.Signal

	// FilterViolation is set when the process was killed by SIGSYS, which
	// the syscall filter raises for any syscall outside the whitelist
	FilterViolation bool

	Usage cgroup.Usage
	RunID string
}

func classify(pid int, ws syscall.WaitStatus) *ExitReport {
	r := &ExitReport{Pid: pid}
	switch {
	case ws.Exited():
		r.Exited = true
		r.ExitCode = ws.ExitStatus()
	case ws.Signaled():
		r.Signal = ws.Signal()
		r.FilterViolation = r.Signal == syscall.SIGSYS
	}
	return r
}

func (r *ExitReport) String() string {
	switch {
	case r.Exited:
		return fmt.Sprintf("exited normally with code %d", r.ExitCode)
	case r.FilterViolation:
		return fmt.Sprintf("killed by signal %d (%v): syscall filter violation", int(r.Signal), r.Signal)
	default:
		return fmt.Sprintf("killed by signal %d (%v)", int(r.Signal), r.Signal)
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (r *ExitReport) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("pid", r.Pid)
	if r.Exited {
		enc.AddInt("exit_code", r.ExitCode)
	} else {
		enc.AddInt("signal", int(r.Signal))
		enc.AddBool("filter_violation", r.FilterViolation)
	}
	enc.AddDuration("cpu", r.Usage.CPU)
	enc.AddUint64("memory_peak", r.Usage.MemoryPeak)
	enc.AddUint64("oom_kills", r.Usage.OOMKills)
	return nil
}
