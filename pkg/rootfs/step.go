package rootfs

import "fmt"

// Step is the isolation step that failed
type Step int

// Step constants, in execution order
const (
	StepScratchDir Step = iota + 1
	StepScratchMount
	StepOverlayDir
	StepOverlayOptions
	StepOverlayMount
	StepBindRoot
	StepPutOldDir
	StepPivotRoot
	StepChdir
	StepUnmountOld
	StepRemovePutOld
	StepMountDev
	StepMountProc
	StepSymlink
	StepMaskPath
)

var stepToString = []string{
	"unknown",
	"mkdir(scratch)",
	"mount(tmpfs)",
	"mkdir(overlay)",
	"overlay(options)",
	"mount(overlay)",
	"mount(bind root)",
	"mkdir(put_old)",
	"pivot_root",
	"chdir",
	"umount(put_old)",
	"rmdir(put_old)",
	"mount(devtmpfs)",
	"mount(proc)",
	"symlink",
	"mask",
}

func (s Step) String() string {
	if s >= StepScratchDir && s <= StepMaskPath {
		return stepToString[s]
	}
	return "unknown"
}

// FilesystemIsolationError is the step, and the path it operated on, where
// isolation stopped
type FilesystemIsolationError struct {
	Step Step
	Path string
	Err  error
}

func (e *FilesystemIsolationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("rootfs: %s %s: %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("rootfs: %s: %v", e.Step, e.Err)
}

func (e *FilesystemIsolationError) Unwrap() error {
	return e.Err
}

func fail(s Step, path string, err error) error {
	return &FilesystemIsolationError{Step: s, Path: path, Err: err}
}
