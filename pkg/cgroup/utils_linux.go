package cgroup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// CgroupConfigError identifies the control file (or directory) that could not
// be configured
type CgroupConfigError struct {
	File string
	Err  error
}

func (e *CgroupConfigError) Error() string {
	return fmt.Sprintf("cgroup: %s: %v", e.File, e.Err)
}

func (e *CgroupConfigError) Unwrap() error {
	return e.Err
}

// DetectType detects the cgroup type mounted at root, empty root means the
// systemd default path
func DetectType(root string) CgroupType {
	if root == "" {
		root = basePath
	}
	// if /sys/fs/cgroup is mounted as CGROUPV2 or TMPFS (V1)
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		// ignore errors, defalting to CgroupV1
		return CgroupTypeV1
	}
	if st.Type == unix.CGROUP2_SUPER_MAGIC {
		return CgroupTypeV2
	}
	return CgroupTypeV1
}

// writeFile opens an existing control file write-only and writes content in
// a single write(2). A short write is reported as io.ErrShortWrite.
//
// It goes through raw file descriptors instead of os.File so that the
// sandboxed process never registers a descriptor with the runtime poller.
func writeFile(p string, content []byte) error {
	fd, err := unix.Open(p, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return &os.PathError{Op: "open", Path: p, Err: err}
	}
	n, err := unix.Write(fd, content)
	cerr := unix.Close(fd)
	switch {
	case err != nil:
		return &os.PathError{Op: "write", Path: p, Err: err}
	case n != len(content):
		return &os.PathError{Op: "write", Path: p, Err: io.ErrShortWrite}
	case cerr != nil:
		return &os.PathError{Op: "close", Path: p, Err: cerr}
	}
	return nil
}

func readFile(p string) ([]byte, error) {
	return os.ReadFile(p)
}

// mkdir creates a single directory, an existing one is accepted
func mkdir(p string) error {
	if err := unix.Mkdir(p, dirPerm); err != nil && !errors.Is(err, unix.EEXIST) {
		return &os.PathError{Op: "mkdir", Path: p, Err: err}
	}
	return nil
}
