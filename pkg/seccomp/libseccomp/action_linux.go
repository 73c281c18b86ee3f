package libseccomp

import (
	libseccomp "github.com/elastic/go-seccomp-bpf"

	"github.com/euclid-sandbox/euclid/pkg/seccomp"
)

// ToSeccompAction convert action to libseccomp compatible action. Kill stops
// the whole process, not only the offending thread.
func ToSeccompAction(a seccomp.Action) libseccomp.Action {
	switch a {
	case seccomp.ActionAllow:
		return libseccomp.ActionAllow
	default:
		return libseccomp.ActionKillProcess
	}
}
