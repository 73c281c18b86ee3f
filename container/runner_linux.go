package container

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"go.uber.org/zap"

	"github.com/euclid-sandbox/euclid/pkg/cgroup"
	"github.com/euclid-sandbox/euclid/pkg/config"
	"github.com/euclid-sandbox/euclid/pkg/harden"
	"github.com/euclid-sandbox/euclid/pkg/namespace"
)

// Runner creates the sandboxed process of one validated configuration
type Runner struct {
	Config *config.Config
	Logger *zap.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// process is the sandboxed process shared by the supervisor states
type process struct {
	cmd   *exec.Cmd
	syncW *os.File
	cfg   *config.Config
	log   *zap.Logger
}

// Created is a sandboxed process blocked on the synchronization pipe
type Created struct {
	p    *process
	done bool
}

// CgroupsConfigured is a sandboxed process whose cgroup is ready to join
type CgroupsConfigured struct {
	p    *process
	cg   *cgroup.CgroupV2
	done bool
}

// SignalSent is a released sandboxed process
type SignalSent struct {
	p    *process
	cg   *cgroup.CgroupV2
	done bool
}

// Start creates the sandboxed process and sends it the configuration. The
// process blocks until ReleaseSync. Cancelling ctx kills it.
func (r *Runner) Start(ctx context.Context) (*Created, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", r.Config.RunID))

	if err := harden.CheckThreading(); err != nil {
		return nil, &SpawnError{Op: "preflight", Err: err}
	}
	cfgR, cfgW, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Err: err}
	}
	syncR, syncW, err := os.Pipe()
	if err != nil {
		cfgR.Close()
		cfgW.Close()
		return nil, &SpawnError{Op: "pipe", Err: err}
	}

	cmd := r.command(ctx, cfgR, syncR)
	err = cmd.Start()
	// the read ends belong to the child now
	cfgR.Close()
	syncR.Close()
	if err != nil {
		cfgW.Close()
		syncW.Close()
		return nil, &SpawnError{Op: "clone", Err: err}
	}
	log.Info("sandbox spawned",
		zap.Int("pid", cmd.Process.Pid),
		zap.Strings("namespaces", namespace.Names(namespace.CloneFlags)))

	p := &process{cmd: cmd, syncW: syncW, cfg: r.Config, log: log}
	err = r.Config.Encode(cfgW)
	if cerr := cfgW.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		p.abort()
		return nil, &SpawnError{Op: "send config", Err: err}
	}
	return &Created{p: p}, nil
}

// command prepares the re-execution of this binary as the sandbox entry
func (r *Runner) command(ctx context.Context, cfgR, syncR *os.File) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "/proc/self/exe", initArg)
	// a nil Env would hand the supervisor environment to the command lookup
	cmd.Env = r.Config.Env
	if cmd.Env == nil {
		cmd.Env = []string{}
	}
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.ExtraFiles = []*os.File{cfgR, syncR}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: namespace.CloneFlags,
		Pdeathsig:  syscall.SIGKILL,
	}
	return cmd
}

// Pid is the process id of the sandboxed process in the supervisor namespace
func (c *Created) Pid() int {
	return c.p.cmd.Process.Pid
}

// ConfigureCgroups writes the limits to cg before the process may join it.
// On failure the sandboxed process is killed.
func (c *Created) ConfigureCgroups(cg *cgroup.CgroupV2) (*CgroupsConfigured, error) {
	if c.done {
		return nil, ErrStateConsumed
	}
	c.done = true

	p := c.p
	if err := cg.Configure(p.cfg); err != nil {
		p.abort()
		return nil, err
	}
	p.log.Info("cgroup configured",
		zap.String("path", cg.Path()),
		zap.Stringer("cpu", p.cfg.CPU),
		zap.Stringer("memory_max", p.cfg.MemoryMax),
		zap.Stringer("memory_high", p.cfg.SoftMemoryLimit()),
		zap.Stringer("swap_max", p.cfg.SwapMax),
		zap.Stringer("pids_max", p.cfg.PidsMax))
	return &CgroupsConfigured{p: p, cg: cg}, nil
}

// ReleaseSync writes the single byte that unblocks the sandboxed process
func (c *CgroupsConfigured) ReleaseSync() (*SignalSent, error) {
	if c.done {
		return nil, ErrStateConsumed
	}
	c.done = true

	p := c.p
	n, err := p.syncW.Write([]byte{0})
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		p.abort()
		return nil, &SyncError{Op: "release", Err: err}
	}
	if err := p.syncW.Close(); err != nil {
		p.log.Warn("close sync pipe", zap.Error(err))
	}
	p.log.Debug("sync released")
	return &SignalSent{p: p, cg: c.cg}, nil
}

// Wait blocks until the sandboxed process exits and collects its report
func (s *SignalSent) Wait() (*ExitReport, error) {
	if s.done {
		return nil, ErrStateConsumed
	}
	s.done = true

	p := s.p
	err := p.cmd.Wait()
	var eerr *exec.ExitError
	if err != nil && !errors.As(err, &eerr) {
		return nil, err
	}
	ws, ok := p.cmd.ProcessState.Sys().(syscall.WaitStatus)
	if !ok {
		return nil, errors.New("container: unexpected wait status")
	}
	r := classify(p.cmd.Process.Pid, ws)
	r.RunID = p.cfg.RunID
	if u, err := s.cg.Usage(); err != nil {
		p.log.Warn("read cgroup usage", zap.Error(err))
	} else {
		r.Usage = u
	}
	p.log.Info("sandbox exited", zap.Object("report", r), zap.Stringer("status", r))
	return r, nil
}

// abort kills and reaps a process that was never released
func (p *process) abort() {
	p.syncW.Close()
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.log.Warn("kill sandbox", zap.Error(err))
	}
	p.cmd.Wait()
}
