package container

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// fdReader reads an inherited descriptor with read(2)
type fdReader int

func (f fdReader) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(int(f), p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return 0, err
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

// fdWriter writes an inherited descriptor with write(2)
type fdWriter int

func (f fdWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(int(f), p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Sync implements zapcore.WriteSyncer, nothing is buffered
func (f fdWriter) Sync() error {
	return nil
}
