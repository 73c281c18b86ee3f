// Package rootfs replaces the filesystem view of the sandboxed process: a
// tmpfs backed overlay above the read-only image becomes the new root, the
// host root is detached and /dev and /proc are mounted fresh.
//
// The steps are irreversible once the old root is detached, so each stage
// returns the value the next stage consumes.
package rootfs

import (
	"errors"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/euclid-sandbox/euclid/pkg/config"
	"github.com/euclid-sandbox/euclid/pkg/mount"
)

const (
	putOldDir = ".pivot_old"

	dirPerm    = 0755
	putOldPerm = 0700
)

// ErrStateConsumed is returned when a root state is transitioned twice
var ErrStateConsumed = errors.New("rootfs: state already consumed")

// Scratch is the tmpfs holding the writable overlay layers
type Scratch struct {
	Base string
}

// OverlayDirs are the overlayfs directories inside the scratch tmpfs
type OverlayDirs struct {
	Work, Upper, Merged string
}

// DualRoot is the state where the overlay is mounted but the host root is
// still the process root
type DualRoot struct {
	// Lower is the read-only image
	Lower string
	// Root is the merged overlay about to become /
	Root string

	consumed bool
}

// SingleRoot is the state after the host root was detached
type SingleRoot struct {
	Lower string

	mounted bool
}

// Isolate runs the whole pipeline for cfg. On success cfg.Rootfs points to
// the merged overlay the process now runs in.
func Isolate(cfg *config.Config) (*SingleRoot, error) {
	scratch, err := MountScratch(cfg.OverlayBase, cfg.TmpfsSizeMB)
	if err != nil {
		return nil, err
	}
	dirs, err := scratch.OverlayPaths()
	if err != nil {
		return nil, err
	}
	dual, err := dirs.MountOverlay(cfg.Rootfs)
	if err != nil {
		return nil, err
	}
	cfg.Rootfs = dual.Root

	single, err := dual.PivotRoot()
	if err != nil {
		return nil, err
	}
	if err := single.MountVirtual(); err != nil {
		return nil, err
	}
	return single, nil
}

// MountScratch creates base and mounts a tmpfs of sizeMB megabytes on it
func MountScratch(base string, sizeMB int) (*Scratch, error) {
	if err := mount.Mkdir(base, dirPerm); err != nil {
		return nil, fail(StepScratchDir, base, err)
	}
	if err := mount.NewBuilder().WithTmpfs(base, mount.TmpfsSize(sizeMB)).Mount(); err != nil {
		return nil, fail(StepScratchMount, base, err)
	}
	return &Scratch{Base: base}, nil
}

// OverlayPaths creates work, upper and merged below the scratch base
func (s *Scratch) OverlayPaths() (*OverlayDirs, error) {
	d := &OverlayDirs{
		Work:   filepath.Join(s.Base, "work"),
		Upper:  filepath.Join(s.Base, "upper"),
		Merged: filepath.Join(s.Base, "merged"),
	}
	for _, p := range []string{d.Work, d.Upper, d.Merged} {
		if err := mount.Mkdir(p, dirPerm); err != nil {
			return nil, fail(StepOverlayDir, p, err)
		}
	}
	return d, nil
}

// MountOverlay mounts lower (read-only) below upper at merged
func (d *OverlayDirs) MountOverlay(lower string) (*DualRoot, error) {
	data, err := mount.OverlayData(lower, d.Upper, d.Work)
	if err != nil {
		return nil, fail(StepOverlayOptions, lower, err)
	}
	if err := mount.NewBuilder().WithOverlay(d.Merged, data).Mount(); err != nil {
		return nil, fail(StepOverlayMount, d.Merged, err)
	}
	return &DualRoot{Lower: lower, Root: d.Merged}, nil
}

// PivotRoot makes Root the process root and detaches the old one. The state
// is consumed even if a step fails, since a partial switch cannot be retried.
func (r *DualRoot) PivotRoot() (*SingleRoot, error) {
	if r.consumed {
		return nil, ErrStateConsumed
	}
	r.consumed = true

	// pivot_root requires new_root to be a mount point
	if err := mount.NewBuilder().WithBind(r.Root, r.Root, false).Mount(); err != nil {
		return nil, fail(StepBindRoot, r.Root, err)
	}
	putOld := filepath.Join(r.Root, putOldDir)
	if err := mount.Mkdir(putOld, putOldPerm); err != nil {
		return nil, fail(StepPutOldDir, putOld, err)
	}
	if err := unix.PivotRoot(r.Root, putOld); err != nil {
		return nil, fail(StepPivotRoot, r.Root, err)
	}
	if err := unix.Chdir("/"); err != nil {
		return nil, fail(StepChdir, "/", err)
	}

	oldRoot := "/" + putOldDir
	if err := mount.Unmount(oldRoot, unix.MNT_DETACH); err != nil {
		return nil, fail(StepUnmountOld, oldRoot, err)
	}
	if err := unix.Rmdir(oldRoot); err != nil {
		return nil, fail(StepRemovePutOld, oldRoot, err)
	}
	return &SingleRoot{Lower: r.Lower}, nil
}

// MountVirtual mounts devtmpfs on /dev and a proc of the pid namespace on
// /proc, links the descriptor files of /dev and masks DefaultMaskPaths
func (r *SingleRoot) MountVirtual() error {
	if r.mounted {
		return ErrStateConsumed
	}
	r.mounted = true

	for _, v := range []struct {
		step Step
		b    *mount.Builder
		path string
	}{
		{StepMountDev, mount.NewBuilder().WithDevtmpfs("/dev"), "/dev"},
		{StepMountProc, mount.NewBuilder().WithProc("/proc"), "/proc"},
	} {
		if err := mount.Mkdir(v.path, dirPerm); err != nil {
			return fail(v.step, v.path, err)
		}
		if err := v.b.Mount(); err != nil {
			return fail(v.step, v.path, err)
		}
	}
	if err := symlinks(DefaultSymLinks); err != nil {
		return err
	}
	return maskPaths(DefaultMaskPaths)
}
