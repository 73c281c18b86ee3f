package cgroup

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/euclid-sandbox/euclid/pkg/config"
)

// CgroupV2 is a single group below a cgroup v2 root
type CgroupV2 struct {
	root string
	path string
}

// New returns the group root/name. Nothing is created until Configure.
func New(root, name string) *CgroupV2 {
	return &CgroupV2{
		root: root,
		path: path.Join(root, name),
	}
}

// Path returns the group directory
func (c *CgroupV2) Path() string {
	return c.path
}

// Configure enables the controllers on the root, creates the group and writes
// every limit of cfg. The first failing file aborts the whole operation.
func (c *CgroupV2) Configure(cfg *config.Config) error {
	if err := c.EnableControllers(&RequiredControllers); err != nil {
		return err
	}
	if err := mkdir(c.path); err != nil {
		return &CgroupConfigError{File: c.path, Err: err}
	}
	for _, set := range []func() error{
		func() error { return c.SetCPUBandwidth(cfg.CPU) },
		func() error { return c.SetMemoryLimit(cfg.MemoryMax) },
		func() error { return c.SetMemoryHigh(cfg.SoftMemoryLimit()) },
		func() error { return c.SetSwapLimit(cfg.SwapMax) },
		func() error { return c.SetProcLimit(cfg.PidsMax) },
	} {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

// EnableControllers writes "+a +b" to the root cgroup.subtree_control so
// that the controllers are available to the group
func (c *CgroupV2) EnableControllers(ct *Controllers) error {
	p := path.Join(c.root, cgroupSubtreeControl)
	if err := writeFile(p, []byte(ct.SubtreeControl())); err != nil {
		return &CgroupConfigError{File: p, Err: err}
	}
	return nil
}

// AddSelf moves the calling process into the group. The kernel reads "0" as
// the writing process.
func (c *CgroupV2) AddSelf() error {
	return c.WriteFile(cgroupProcs, []byte("0"))
}

// SetCPUBandwidth set cpu.max quota period
func (c *CgroupV2) SetCPUBandwidth(q config.CPUQuota) error {
	return c.WriteFile(cpuMax, []byte(q.String()))
}

// SetMemoryLimit memory.max
func (c *CgroupV2) SetMemoryLimit(l config.Limit) error {
	return c.WriteFile(memoryMax, []byte(l.String()))
}

// SetMemoryHigh memory.high
func (c *CgroupV2) SetMemoryHigh(l config.Limit) error {
	return c.WriteFile(memoryHigh, []byte(l.String()))
}

// SetSwapLimit memory.swap.max
func (c *CgroupV2) SetSwapLimit(l config.Limit) error {
	return c.WriteFile(memorySwapMax, []byte(l.String()))
}

// SetProcLimit pids.max
func (c *CgroupV2) SetProcLimit(l config.Limit) error {
	return c.WriteFile(pidsMax, []byte(l.String()))
}

// Usage is the accounting read back from the group after the sandbox exits
type Usage struct {
	CPU        time.Duration
	MemoryPeak uint64
	OOMKills   uint64
}

// Usage collects cpu.stat, memory.peak and memory.events. Files the kernel
// does not provide (memory.peak before 5.19) leave their field zero.
func (c *CgroupV2) Usage() (Usage, error) {
	var u Usage
	cpu, err := c.CPUUsage()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return u, err
	}
	u.CPU = cpu
	if u.MemoryPeak, err = c.MemoryMaxUsage(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return u, err
	}
	if u.OOMKills, err = c.OOMKills(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return u, err
	}
	return u, nil
}

// CPUUsage reads cpu.stat usage_usec
func (c *CgroupV2) CPUUsage() (time.Duration, error) {
	v, err := c.readKeyed(cpuStat, "usage_usec")
	return time.Duration(v) * time.Microsecond, err
}

// MemoryMaxUsage reads memory.peak
func (c *CgroupV2) MemoryMaxUsage() (uint64, error) {
	return c.ReadUint(memoryPeak)
}

// OOMKills reads the oom_kill counter of memory.events
func (c *CgroupV2) OOMKills() (uint64, error) {
	return c.readKeyed(memoryEvents, "oom_kill")
}

func (c *CgroupV2) readKeyed(filename, key string) (uint64, error) {
	b, err := c.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		parts := strings.Fields(s.Text())
		if len(parts) == 2 && parts[0] == key {
			return strconv.ParseUint(parts[1], 10, 64)
		}
	}
	return 0, os.ErrNotExist
}

// ReadUint read uint64 from given file
func (c *CgroupV2) ReadUint(filename string) (uint64, error) {
	b, err := c.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, err
	}
	return s, nil
}

// WriteFile writes a control file of the group and reports the file on failure
func (c *CgroupV2) WriteFile(name string, content []byte) error {
	p := path.Join(c.path, name)
	if err := writeFile(p, content); err != nil {
		return &CgroupConfigError{File: p, Err: err}
	}
	return nil
}

// ReadFile reads a control file of the group
func (c *CgroupV2) ReadFile(name string) ([]byte, error) {
	return readFile(path.Join(c.path, name))
}
