package container

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/euclid-sandbox/euclid/pkg/cgroup"
	"github.com/euclid-sandbox/euclid/pkg/config"
	"github.com/euclid-sandbox/euclid/pkg/harden"
	"github.com/euclid-sandbox/euclid/pkg/logger"
	"github.com/euclid-sandbox/euclid/pkg/namespace"
	"github.com/euclid-sandbox/euclid/pkg/rlimit"
	"github.com/euclid-sandbox/euclid/pkg/rootfs"
	"github.com/euclid-sandbox/euclid/pkg/seccomp/libseccomp"
)

// Init is called for the sandboxed process. It is a noop unless the process
// is pid 1 started with the container_init argument, otherwise it never
// returns: the process becomes the command or exits.
//
// Call it from an init function so that nothing else runs before it.
func Init() {
	// Notice: docker init is also 1, additional check for args[1] == init
	if os.Getpid() != 1 || len(os.Args) != 2 || os.Args[1] != initArg {
		return
	}

	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(fdWriter(unix.Stderr), "container_exit: panic: %v\n", err)
			os.Exit(ExitConstruction)
		}
	}()
	os.Exit(initSandbox())
}

// initSandbox returns the exit status when the command could not be executed.
//
// Only raw descriptors are used from here on. An *os.File on a pipe would
// start the runtime poller, whose epoll_pwait is not whitelisted and would
// kill the process between filter installation and exec.
func initSandbox() int {
	// capabilities, no_new_privs and exec apply to this thread
	runtime.LockOSThread()

	stderr := fdWriter(unix.Stderr)
	cfg, err := config.Decode(fdReader(configFd))
	unix.Close(configFd)
	if err != nil {
		fmt.Fprintf(stderr, "container_init: %v\n", err)
		return ExitConstruction
	}
	log, err := logger.NewWithSink(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "container_init: %v\n", err)
		return ExitConstruction
	}
	log = log.With(zap.String("run_id", cfg.RunID), zap.String("side", "sandbox"))

	if err := setup(cfg, log); err != nil {
		var eerr *harden.ExecError
		if errors.As(err, &eerr) {
			log.Error("command not started", zap.Error(err))
			return eerr.ExitCode()
		}
		log.Error("sandbox construction failed", zap.Error(err))
		return ExitConstruction
	}
	return ExitConstruction
}

// setup only returns on failure, on success the command replaces the process
func setup(cfg *config.Config, log *zap.Logger) error {
	// compiled before release so a bad whitelist never touches the cgroup
	filter, err := libseccomp.NewDefaultBuilder().Build()
	if err != nil {
		return &harden.HardeningError{Op: "build filter", Err: err}
	}

	if err := waitSync(); err != nil {
		return err
	}
	if err := cgroup.New(cfg.CgroupRoot, cfg.CgroupName).AddSelf(); err != nil {
		return err
	}

	if err := namespace.SetHostname(cfg.Hostname); err != nil {
		return err
	}
	if err := namespace.MakeMountTreePrivate(); err != nil {
		return err
	}
	if _, err := rootfs.Isolate(cfg); err != nil {
		return err
	}
	log.Debug("filesystem isolated", zap.String("root", cfg.Rootfs))

	rls := cfg.RLimits.PrepareRLimit()
	if err := rlimit.Apply(rls); err != nil {
		return fmt.Errorf("setrlimit: %w", err)
	}

	path, err := harden.ResolveCommand(cfg.Command[0])
	if err != nil {
		return err
	}
	if err := harden.DropAllCapabilities(); err != nil {
		return err
	}
	if err := harden.LockPrivilegeEscalation(); err != nil {
		return err
	}
	filtered, err := new(harden.Unconfined).InstallSyscallFilter(filter)
	if err != nil {
		return err
	}
	log.Debug("exec", zap.String("path", path), zap.Strings("args", cfg.Command[1:]))
	return filtered.Exec(path, cfg.Command, cfg.Env)
}

// waitSync blocks until the supervisor has configured the cgroup
func waitSync() error {
	defer unix.Close(syncFd)
	var buf [1]byte
	n, err := fdReader(syncFd).Read(buf[:])
	if err != nil {
		return &SyncError{Op: "wait", Err: err}
	}
	if n != 1 {
		return &SyncError{Op: "wait", Err: errors.New("no byte received")}
	}
	return nil
}
