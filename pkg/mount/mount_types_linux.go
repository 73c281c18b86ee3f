package mount

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Mount defines syscall for mount points
type Mount struct {
	Source, Target, FsType, Data string
	Flags                        uintptr
}

// IsBindMount returns true if it is a bind mount
func (m *Mount) IsBindMount() bool {
	return m.Flags&unix.MS_BIND == unix.MS_BIND
}

// IsReadOnly returns true if the mount is read-only
func (m *Mount) IsReadOnly() bool {
	return m.Flags&unix.MS_RDONLY == unix.MS_RDONLY
}

// IsTmpFs returns true if it is a tmpfs mount
func (m *Mount) IsTmpFs() bool {
	return m.FsType == "tmpfs"
}

// IsOverlay returns true if it is an overlayfs mount
func (m *Mount) IsOverlay() bool {
	return m.FsType == "overlay"
}

func (m Mount) String() string {
	switch {
	case m.IsBindMount():
		flag := "rw"
		if m.IsReadOnly() {
			flag = "ro"
		}
		kind := "bind"
		if m.Flags&unix.MS_REC == unix.MS_REC {
			kind = "rbind"
		}
		return fmt.Sprintf("%s[%s:%s:%s]", kind, m.Source, m.Target, flag)

	case m.IsTmpFs():
		if m.Data != "" {
			return fmt.Sprintf("tmpfs[%s:%s]", m.Target, m.Data)
		}
		return fmt.Sprintf("tmpfs[%s]", m.Target)

	case m.IsOverlay():
		return fmt.Sprintf("overlay[%s:%s]", m.Target, m.Data)

	case m.FsType == "devtmpfs":
		return fmt.Sprintf("devtmpfs[%s]", m.Target)

	case m.FsType == "proc":
		flag := "rw"
		if m.IsReadOnly() {
			flag = "ro"
		}
		return fmt.Sprintf("proc[%s]", flag)

	default:
		return fmt.Sprintf("mount[%s,%s:%s:%x,%s]", m.FsType, m.Source, m.Target, m.Flags, m.Data)
	}
}

// TmpfsSize is the tmpfs option bounding the filesystem to mb megabytes
func TmpfsSize(mb int) string {
	return "size=" + strconv.Itoa(mb) + "M"
}

// OverlayData is the overlayfs option string of a single lower layer.
// Overlayfs splits options on commas and lowerdir on colons, so paths
// containing either cannot be expressed.
func OverlayData(lower, upper, work string) (string, error) {
	for _, p := range []string{lower, upper, work} {
		if strings.ContainsAny(p, ",:") {
			return "", fmt.Errorf("overlay: invalid path %q", p)
		}
	}
	return "lowerdir=" + lower + ",upperdir=" + upper + ",workdir=" + work, nil
}
