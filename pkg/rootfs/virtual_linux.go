package rootfs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// SymbolicLink is a link created below /dev, which devtmpfs does not provide
type SymbolicLink struct {
	LinkPath string
	Target   string
}

// DefaultSymLinks are the standard descriptor links of /dev
var DefaultSymLinks = []SymbolicLink{
	{LinkPath: "/dev/fd", Target: "/proc/self/fd"},
	{LinkPath: "/dev/stdin", Target: "/proc/self/fd/0"},
	{LinkPath: "/dev/stdout", Target: "/proc/self/fd/1"},
	{LinkPath: "/dev/stderr", Target: "/proc/self/fd/2"},
}

// DefaultMaskPaths are host details under /proc and /sys hidden from the
// sandbox, the same set containerd masks by default
var DefaultMaskPaths = []string{
	"/proc/acpi",
	"/proc/asound",
	"/proc/kcore",
	"/proc/keys",
	"/proc/latency_stats",
	"/proc/timer_list",
	"/proc/timer_stats",
	"/proc/sched_debug",
	"/proc/scsi",
	"/sys/firmware",
}

func symlinks(links []SymbolicLink) error {
	for _, l := range links {
		if err := unix.Symlink(l.Target, l.LinkPath); err != nil && !errors.Is(err, unix.EEXIST) {
			return fail(StepSymlink, l.LinkPath, err)
		}
	}
	return nil
}

// maskPaths hides files behind /dev/null and directories behind an empty
// read-only tmpfs. Missing paths need no masking.
func maskPaths(paths []string) error {
	for _, p := range paths {
		err := unix.Mount("/dev/null", p, "", unix.MS_BIND, "")
		if errors.Is(err, unix.ENOTDIR) {
			err = unix.Mount("tmpfs", p, "tmpfs", unix.MS_RDONLY, "")
		}
		if err != nil && !errors.Is(err, unix.ENOENT) {
			return fail(StepMaskPath, p, err)
		}
	}
	return nil
}
