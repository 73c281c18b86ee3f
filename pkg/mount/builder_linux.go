package mount

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Builder chains the mounts of one isolation step
type Builder struct {
	Mounts []Mount
}

// NewBuilder creates new mount builder instance
func NewBuilder() *Builder {
	return &Builder{}
}

// WithMount add single mount to builder
func (b *Builder) WithMount(m Mount) *Builder {
	b.Mounts = append(b.Mounts, m)
	return b
}

// WithBind adds a recursive bind mount to builder
func (b *Builder) WithBind(source, target string, readonly bool) *Builder {
	var flags uintptr = unix.MS_BIND | unix.MS_REC
	if readonly {
		flags |= unix.MS_RDONLY
	}
	return b.WithMount(Mount{
		Source: source,
		Target: target,
		FsType: "bind",
		Flags:  flags,
	})
}

// WithTmpfs add a tmpfs mount to builder
func (b *Builder) WithTmpfs(target, data string) *Builder {
	return b.WithMount(Mount{
		Source: "tmpfs",
		Target: target,
		FsType: "tmpfs",
		Data:   data,
	})
}

// WithOverlay adds an overlayfs mount with data from OverlayData
func (b *Builder) WithOverlay(target, data string) *Builder {
	return b.WithMount(Mount{
		Source: "overlay",
		Target: target,
		FsType: "overlay",
		Data:   data,
	})
}

// WithDevtmpfs adds the kernel maintained device filesystem
func (b *Builder) WithDevtmpfs(target string) *Builder {
	return b.WithMount(Mount{
		Source: "devtmpfs",
		Target: target,
		FsType: "devtmpfs",
	})
}

// WithProc add proc file system
func (b *Builder) WithProc(target string) *Builder {
	return b.WithMount(Mount{
		Source: "proc",
		Target: target,
		FsType: "proc",
	})
}

// Mount performs the mounts in order and stops at the first failure
func (b *Builder) Mount() error {
	for i := range b.Mounts {
		if err := b.Mounts[i].Mount(); err != nil {
			return err
		}
	}
	return nil
}

func (b Builder) String() string {
	var sb strings.Builder
	sb.WriteString("Mounts: ")
	for i, m := range b.Mounts {
		sb.WriteString(m.String())
		if i != len(b.Mounts)-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
