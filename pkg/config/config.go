// Package config defines the configuration record describing one sandbox
// run. The record is built once by the supervisor, validated, and then
// handed to the sandboxed process in encoded form.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/euclid-sandbox/euclid/pkg/logger"
	"github.com/euclid-sandbox/euclid/pkg/rlimit"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// hostNameMax is HOST_NAME_MAX on linux
const hostNameMax = 64

// Config describes the desired sandbox
type Config struct {
	// Hostname is visible inside the UTS namespace only
	Hostname string `yaml:"hostname"`

	// Rootfs is the read-only lower layer of the overlay
	Rootfs string `yaml:"rootfs"`

	// Command is executed inside the sandbox, first element is the executable
	Command []string `yaml:"command"`

	// Env is the environment of the command
	Env []string `yaml:"env"`

	// CPU is written to cpu.max
	CPU CPUQuota `yaml:"cpu"`

	// MemoryMax is written to memory.max
	MemoryMax Limit `yaml:"memoryMax"`

	// MemoryHigh is written to memory.high, zero derives it from MemoryMax
	MemoryHigh Limit `yaml:"memoryHigh"`

	// SwapMax is written to memory.swap.max
	SwapMax Limit `yaml:"swapMax"`

	// PidsMax is written to pids.max
	PidsMax Limit `yaml:"pidsMax"`

	// OverlayBase is where the scratch tmpfs holding the overlay is mounted
	OverlayBase string `yaml:"overlayBase"`

	// TmpfsSizeMB bounds the scratch tmpfs
	TmpfsSizeMB int `yaml:"tmpfsSize"`

	CgroupRoot string `yaml:"cgroupRoot"`
	CgroupName string `yaml:"cgroupName"`

	RLimits rlimit.RLimits `yaml:"rlimits"`
	Log     logger.Config  `yaml:"log"`

	// RunID correlates the supervisor and sandbox logs of one run
	RunID string `yaml:"-"`
}

// Default returns the configuration used when no file or flag overrides it
func Default() *Config {
	return &Config{
		Hostname: "euclid",
		Rootfs:   "/var/lib/euclid/rootfs",
		Command:  []string{"/bin/ls", "-l"},
		Env: []string{
			"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		},
		CPU:         CPUQuota{Runtime: 100000, Period: DefaultCPUPeriod},
		MemoryMax:   512000000,
		SwapMax:     0,
		PidsMax:     256,
		OverlayBase: "/tmp/euclid",
		TmpfsSizeMB: 64,
		CgroupRoot:  "/sys/fs/cgroup",
		CgroupName:  "euclid",
		RLimits:     rlimit.RLimits{DisableCore: true},
		Log:         logger.Config{Level: "info", Format: "console"},
	}
}

// Load reads a yaml file on top of the default configuration. The result is
// not validated since flags may still override it.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// SoftMemoryLimit returns memory.high: the explicit value if set, otherwise
// 90% of the hard limit
func (c *Config) SoftMemoryLimit() Limit {
	if c.MemoryHigh != 0 {
		return c.MemoryHigh
	}
	if c.MemoryMax < 0 {
		return Unlimited
	}
	// avoid overflowing on MemoryMax * 9
	return c.MemoryMax/10*9 + c.MemoryMax%10*9/10
}

// Validate checks the invariants every component relies on
func (c *Config) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return fmt.Errorf("%w: command is empty", ErrInvalid)
	}
	if c.Hostname == "" || len(c.Hostname) > hostNameMax {
		return fmt.Errorf("%w: hostname %q must have 1 to %d bytes", ErrInvalid, c.Hostname, hostNameMax)
	}
	for _, p := range []struct{ name, path string }{
		{"rootfs", c.Rootfs},
		{"overlay base", c.OverlayBase},
		{"cgroup root", c.CgroupRoot},
	} {
		if !filepath.IsAbs(p.path) {
			return fmt.Errorf("%w: %s %q is not an absolute path", ErrInvalid, p.name, p.path)
		}
	}
	if c.CgroupName == "" || c.CgroupName == "." || c.CgroupName == ".." || strings.ContainsRune(c.CgroupName, '/') {
		return fmt.Errorf("%w: cgroup name %q must be a single path element", ErrInvalid, c.CgroupName)
	}
	if c.TmpfsSizeMB <= 0 {
		return fmt.Errorf("%w: tmpfs size %d must be positive", ErrInvalid, c.TmpfsSizeMB)
	}
	if c.CPU.Runtime >= 0 && (c.CPU.Runtime == 0 || c.CPU.Period == 0) {
		return fmt.Errorf("%w: cpu quota %q needs a positive runtime and period", ErrInvalid, c.CPU)
	}
	for _, l := range []struct {
		name string
		v    Limit
	}{
		{"cpu runtime", c.CPU.Runtime},
		{"memory max", c.MemoryMax},
		{"memory high", c.MemoryHigh},
		{"swap max", c.SwapMax},
		{"pids max", c.PidsMax},
	} {
		if l.v < Unlimited {
			return fmt.Errorf("%w: %s %d is below -1", ErrInvalid, l.name, l.v)
		}
	}
	if soft := c.SoftMemoryLimit(); c.MemoryMax >= 0 && (soft < 0 || soft > c.MemoryMax) {
		return fmt.Errorf("%w: memory high %s exceeds memory max %s", ErrInvalid, soft, c.MemoryMax)
	}
	return nil
}
