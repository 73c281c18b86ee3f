package mount

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mount calls mount syscall. The target must exist.
func (m *Mount) Mount() error {
	if err := unix.Mount(m.Source, m.Target, m.FsType, m.Flags, m.Data); err != nil {
		return fmt.Errorf("mount %v: %w", m, err)
	}
	// Read-only bind mount need to be remounted
	const bindRo = unix.MS_BIND | unix.MS_RDONLY
	if m.Flags&bindRo == bindRo {
		if err := unix.Mount("", m.Target, m.FsType, m.Flags|unix.MS_REMOUNT, m.Data); err != nil {
			return fmt.Errorf("remount %v: %w", m, err)
		}
	}
	return nil
}

// Mkdir creates a single directory, accepting one that already exists.
// It avoids os.Mkdir so no *os.File is created in the sandboxed process.
func Mkdir(path string, perm uint32) error {
	if err := unix.Mkdir(path, perm); err != nil && !errors.Is(err, unix.EEXIST) {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// Unmount detaches target, lazily when the flags ask for it
func Unmount(target string, flags int) error {
	if err := unix.Unmount(target, flags); err != nil {
		return &os.PathError{Op: "umount", Path: target, Err: err}
	}
	return nil
}
