package namespace

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCloneFlags(t *testing.T) {
	assert.Equal(t, []string{"uts", "pid", "mnt", "net", "ipc"}, Names(CloneFlags))
	assert.Zero(t, CloneFlags&unix.CLONE_NEWUSER, "user namespace must not be requested")
	assert.Empty(t, Names(0))
}

func TestNamespaceError(t *testing.T) {
	err := error(&NamespaceError{Op: "sethostname", Err: unix.EPERM})
	assert.Equal(t, "namespace: sethostname: operation not permitted", err.Error())
	assert.True(t, errors.Is(err, unix.EPERM))

	var nerr *NamespaceError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "sethostname", nerr.Op)
}

func TestSetHostnameUnprivileged(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root would change the host name")
	}
	err := SetHostname("euclid")
	var nerr *NamespaceError
	require.ErrorAs(t, err, &nerr)
	assert.True(t, errors.Is(err, unix.EPERM))
}
