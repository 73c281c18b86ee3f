package container

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/euclid-sandbox/euclid/pkg/cgroup"
)

// exitStatus and signalStatus build wait statuses the way the kernel encodes them
func exitStatus(code int) syscall.WaitStatus {
	return syscall.WaitStatus(code << 8)
}

func signalStatus(sig syscall.Signal) syscall.WaitStatus {
	return syscall.WaitStatus(sig)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ws   syscall.WaitStatus
		want ExitReport
		str  string
	}{
		{
			name: "success",
			ws:   exitStatus(0),
			want: ExitReport{Pid: 7, Exited: true},
			str:  "exited normally with code 0",
		},
		{
			name: "not found",
			ws:   exitStatus(127),
			want: ExitReport{Pid: 7, Exited: true, ExitCode: 127},
			str:  "exited normally with code 127",
		},
		{
			name: "killed",
			ws:   signalStatus(syscall.SIGKILL),
			want: ExitReport{Pid: 7, Signal: syscall.SIGKILL},
			str:  "killed by signal 9 (killed)",
		},
		{
			name: "filter violation",
			ws:   signalStatus(syscall.SIGSYS),
			want: ExitReport{Pid: 7, Signal: syscall.SIGSYS, FilterViolation: true},
			str:  "killed by signal 31 (bad system call): syscall filter violation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := classify(7, tt.ws)
			assert.Equal(t, tt.want, *r)
			assert.Equal(t, tt.str, r.String())
		})
	}
}

func TestExitReportLogObject(t *testing.T) {
	r := &ExitReport{
		Pid:             7,
		Signal:          syscall.SIGSYS,
		FilterViolation: true,
		Usage:           cgroup.Usage{CPU: time.Millisecond, MemoryPeak: 4096},
	}
	enc := zapcore.NewMapObjectEncoder()
	assert.NoError(t, r.MarshalLogObject(enc))
	assert.Equal(t, 7, enc.Fields["pid"])
	assert.Equal(t, 31, enc.Fields["signal"])
	assert.Equal(t, true, enc.Fields["filter_violation"])
	assert.Equal(t, uint64(4096), enc.Fields["memory_peak"])
	assert.NotContains(t, enc.Fields, "exit_code")
}
