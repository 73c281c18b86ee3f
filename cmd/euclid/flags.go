package main

import (
	"github.com/spf13/pflag"

	"github.com/euclid-sandbox/euclid/pkg/config"
)

// runFlags override the configuration file field by field, only when set
type runFlags struct {
	configPath string

	hostname    string
	rootfs      string
	overlayBase string
	tmpfsSize   int
	env         []string

	cpu        config.CPUQuota
	memory     config.Limit
	memoryHigh config.Limit
	swap       config.Limit
	pids       config.Limit

	cgroupRoot string
	cgroupName string

	logLevel  string
	logFormat string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&f.hostname, "hostname", "", "hostname inside the sandbox")
	fs.StringVar(&f.rootfs, "rootfs", "", "read-only image used as the overlay lower layer")
	fs.StringVar(&f.overlayBase, "overlay-base", "", "directory where the scratch tmpfs is mounted")
	fs.IntVar(&f.tmpfsSize, "tmpfs-size", 0, "scratch tmpfs size in MB")
	fs.StringArrayVarP(&f.env, "env", "e", nil, "environment of the command (KEY=VALUE), replaces the configured one")
	fs.Var(&f.cpu, "cpu", `cpu.max as "<runtime> <period>" or max`)
	fs.Var(&f.memory, "memory", "memory.max in bytes (k/m/g suffix) or max")
	fs.Var(&f.memoryHigh, "memory-high", "memory.high, defaults to 90% of --memory")
	fs.Var(&f.swap, "swap", "memory.swap.max or max")
	fs.Var(&f.pids, "pids", "pids.max or max")
	fs.StringVar(&f.cgroupRoot, "cgroup-root", "", "cgroup v2 mount point")
	fs.StringVar(&f.cgroupName, "cgroup-name", "", "name of the sandbox cgroup")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "console or json")
}

// load reads the configuration file, or the defaults, and applies the flags
// that were given on the command line
func (f *runFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	for _, o := range []struct {
		name  string
		apply func()
	}{
		{"hostname", func() { cfg.Hostname = f.hostname }},
		{"rootfs", func() { cfg.Rootfs = f.rootfs }},
		{"overlay-base", func() { cfg.OverlayBase = f.overlayBase }},
		{"tmpfs-size", func() { cfg.TmpfsSizeMB = f.tmpfsSize }},
		{"env", func() { cfg.Env = f.env }},
		{"cpu", func() { cfg.CPU = f.cpu }},
		{"memory", func() { cfg.MemoryMax = f.memory }},
		{"memory-high", func() { cfg.MemoryHigh = f.memoryHigh }},
		{"swap", func() { cfg.SwapMax = f.swap }},
		{"pids", func() { cfg.PidsMax = f.pids }},
		{"cgroup-root", func() { cfg.CgroupRoot = f.cgroupRoot }},
		{"cgroup-name", func() { cfg.CgroupName = f.cgroupName }},
		{"log-level", func() { cfg.Log.Level = f.logLevel }},
		{"log-format", func() { cfg.Log.Format = f.logFormat }},
	} {
		if fs.Changed(o.name) {
			o.apply()
		}
	}
	return cfg, nil
}
