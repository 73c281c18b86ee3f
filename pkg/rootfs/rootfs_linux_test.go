package rootfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestStepString(t *testing.T) {
	assert.Equal(t, "mount(tmpfs)", StepScratchMount.String())
	assert.Equal(t, "pivot_root", StepPivotRoot.String())
	assert.Equal(t, "mount(proc)", StepMountProc.String())
	assert.Equal(t, "unknown", Step(0).String())
	assert.Equal(t, "unknown", Step(100).String())
	assert.Equal(t, "mask", StepMaskPath.String())
	assert.Len(t, stepToString, int(StepMaskPath)+1)
}

func TestFilesystemIsolationError(t *testing.T) {
	err := fail(StepOverlayMount, "/tmp/euclid/merged", unix.EINVAL)
	assert.Equal(t, "rootfs: mount(overlay) /tmp/euclid/merged: invalid argument", err.Error())
	assert.True(t, errors.Is(err, unix.EINVAL))

	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepOverlayMount, ferr.Step)

	assert.Equal(t, "rootfs: chdir: no such file or directory", fail(StepChdir, "", unix.ENOENT).Error())
}

func TestOverlayPaths(t *testing.T) {
	base := t.TempDir()
	s := &Scratch{Base: base}

	d, err := s.OverlayPaths()
	require.NoError(t, err)
	assert.Equal(t, &OverlayDirs{
		Work:   filepath.Join(base, "work"),
		Upper:  filepath.Join(base, "upper"),
		Merged: filepath.Join(base, "merged"),
	}, d)
	for _, p := range []string{d.Work, d.Upper, d.Merged} {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}

	// leftovers of an earlier run are accepted
	_, err = s.OverlayPaths()
	assert.NoError(t, err)
}

func TestOverlayPathsFailure(t *testing.T) {
	s := &Scratch{Base: filepath.Join(t.TempDir(), "missing")}
	_, err := s.OverlayPaths()
	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepOverlayDir, ferr.Step)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMountOverlayRejectsOptions(t *testing.T) {
	d := &OverlayDirs{Work: "/w", Upper: "/u", Merged: "/m"}
	_, err := d.MountOverlay("/images/a,b")
	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepOverlayOptions, ferr.Step)
}

func TestMountScratchUnprivileged(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root would mount on the host")
	}
	base := filepath.Join(t.TempDir(), "euclid")
	_, err := MountScratch(base, 64)
	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepScratchMount, ferr.Step)

	// the directory step ran before the mount was refused
	fi, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestPivotRootConsumesState(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root would switch the root of the test process")
	}
	r := &DualRoot{Lower: "/var/lib/euclid/rootfs", Root: t.TempDir()}
	_, err := r.PivotRoot()
	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepBindRoot, ferr.Step)

	_, err = r.PivotRoot()
	assert.ErrorIs(t, err, ErrStateConsumed)
}

func TestMountVirtualConsumesState(t *testing.T) {
	r := &SingleRoot{mounted: true}
	assert.ErrorIs(t, r.MountVirtual(), ErrStateConsumed)
}

func TestSymlinks(t *testing.T) {
	dir := t.TempDir()
	links := []SymbolicLink{
		{LinkPath: filepath.Join(dir, "fd"), Target: "/proc/self/fd"},
		{LinkPath: filepath.Join(dir, "stdin"), Target: "/proc/self/fd/0"},
	}
	require.NoError(t, symlinks(links))
	// an earlier run left them in place
	require.NoError(t, symlinks(links))

	target, err := os.Readlink(links[0].LinkPath)
	require.NoError(t, err)
	assert.Equal(t, "/proc/self/fd", target)

	err = symlinks([]SymbolicLink{{LinkPath: filepath.Join(dir, "missing", "fd"), Target: "/"}})
	var ferr *FilesystemIsolationError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StepSymlink, ferr.Step)
}

func TestMaskPathsMissing(t *testing.T) {
	assert.NoError(t, maskPaths([]string{filepath.Join(t.TempDir(), "missing")}))
}
