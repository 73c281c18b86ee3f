package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/euclid-sandbox/euclid/container"
	"github.com/euclid-sandbox/euclid/pkg/cgroup"
	"github.com/euclid-sandbox/euclid/pkg/config"
	"github.com/euclid-sandbox/euclid/pkg/logger"
)

func newRunCmd() *cobra.Command {
	f := new(runFlags)
	cmd := &cobra.Command{
		Use:   "run [flags] [-- command [args...]]",
		Short: "Run a command in a new sandbox",
		Long: `Run a command in a new sandbox.

The command and its arguments replace the configured command. The exit
status is 0 whenever the sandbox was constructed, whatever the command
returned, and 1 when construction failed.

Examples:
  euclid run --rootfs /var/lib/euclid/rootfs -- /bin/sh -c "echo hi"
  euclid run -c euclid.yaml --memory 256m --pids 64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Command = args
			}
			return run(cmd, cfg)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	cfg.RunID = uuid.NewString()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", cfg.RunID))

	if err := preflight(cfg); err != nil {
		log.Error("preflight", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &container.Runner{
		Config: cfg,
		Logger: log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	created, err := r.Start(ctx)
	if err != nil {
		log.Error("start sandbox", zap.Error(err))
		return err
	}
	configured, err := created.ConfigureCgroups(cgroup.New(cfg.CgroupRoot, cfg.CgroupName))
	if err != nil {
		log.Error("configure cgroup", zap.Error(err))
		return err
	}
	sent, err := configured.ReleaseSync()
	if err != nil {
		log.Error("release sandbox", zap.Error(err))
		return err
	}
	report, err := sent.Wait()
	if err != nil {
		log.Error("wait sandbox", zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "euclid: sandbox %s\n", report)
	return nil
}

// preflight refuses hosts without a usable cgroup v2 hierarchy before any
// process is created
func preflight(cfg *config.Config) error {
	if t := cgroup.DetectType(cfg.CgroupRoot); t != cgroup.CgroupTypeV2 {
		return fmt.Errorf("cgroup: %s is %v, cgroup v2 is required", cfg.CgroupRoot, t)
	}
	return cgroup.CheckAvailable(cfg.CgroupRoot)
}
