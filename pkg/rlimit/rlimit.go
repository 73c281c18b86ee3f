// Package rlimit provides data structure for resource limits applied by the
// sandbox entry through setrlimit before privileges are dropped.
package rlimit

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// RLimits defines the per-process limits applied inside the sandbox. They
// complement the cgroup limits which bound the whole process tree.
type RLimits struct {
	CPU         uint64 `yaml:"cpu"`      // in s
	CPUHard     uint64 `yaml:"cpuHard"`  // in s
	FileSize    uint64 `yaml:"fileSize"` // in bytes
	Stack       uint64 `yaml:"stack"`    // in bytes
	OpenFile    uint64 `yaml:"openFile"` // number of fds
	DisableCore bool   `yaml:"noCore"`   // set core to 0
}

// RLimit is the resource limits defined by Linux setrlimit
type RLimit struct {
	// Res is the resource type (e.g. unix.RLIMIT_CPU)
	Res int
	// Rlim is the limit applied to that resource
	Rlim unix.Rlimit
}

func getRlimit(cur, max uint64) unix.Rlimit {
	return unix.Rlimit{Cur: cur, Max: max}
}

// PrepareRLimit creates rlimit structures in the order they are applied
func (r *RLimits) PrepareRLimit() []RLimit {
	var ret []RLimit
	if r.CPU > 0 {
		cpuHard := r.CPUHard
		if cpuHard < r.CPU {
			cpuHard = r.CPU
		}
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_CPU,
			Rlim: getRlimit(r.CPU, cpuHard),
		})
	}
	if r.FileSize > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_FSIZE,
			Rlim: getRlimit(r.FileSize, r.FileSize),
		})
	}
	if r.Stack > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_STACK,
			Rlim: getRlimit(r.Stack, r.Stack),
		})
	}
	if r.OpenFile > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_NOFILE,
			Rlim: getRlimit(r.OpenFile, r.OpenFile),
		})
	}
	if r.DisableCore {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_CORE,
			Rlim: getRlimit(0, 0),
		})
	}
	return ret
}

// Apply sets every limit on the calling process. The first failure stops the
// sequence and is returned with the resource that was refused.
func Apply(rls []RLimit) error {
	for _, rl := range rls {
		rlim := rl.Rlim
		if err := unix.Setrlimit(rl.Res, &rlim); err != nil {
			return fmt.Errorf("setrlimit %s: %w", rl.name(), err)
		}
	}
	return nil
}

func (r RLimit) name() string {
	switch r.Res {
	case unix.RLIMIT_CPU:
		return "CPU"
	case unix.RLIMIT_FSIZE:
		return "File"
	case unix.RLIMIT_STACK:
		return "Stack"
	case unix.RLIMIT_NOFILE:
		return "OpenFile"
	case unix.RLIMIT_CORE:
		return "Core"
	}
	return fmt.Sprintf("Res(%d)", r.Res)
}

func (r RLimit) String() string {
	switch r.Res {
	case unix.RLIMIT_CPU:
		return fmt.Sprintf("CPU[%d s:%d s]", r.Rlim.Cur, r.Rlim.Max)
	case unix.RLIMIT_NOFILE:
		return fmt.Sprintf("OpenFile[%d:%d]", r.Rlim.Cur, r.Rlim.Max)
	}
	return fmt.Sprintf("%s[%s:%s]", r.name(), byteSize(r.Rlim.Cur), byteSize(r.Rlim.Max))
}

func (r RLimits) String() string {
	var sb strings.Builder
	sb.WriteString("RLimits[")
	for i, rl := range r.PrepareRLimit() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(rl.String())
	}
	sb.WriteString("]")
	return sb.String()
}

func byteSize(t uint64) string {
	switch {
	case t < 1<<10:
		return fmt.Sprintf("%d B", t)
	case t < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(t)/float64(1<<10))
	case t < 1<<30:
		return fmt.Sprintf("%.1f MiB", float64(t)/float64(1<<20))
	default:
		return fmt.Sprintf("%.1f GiB", float64(t)/float64(1<<30))
	}
}
