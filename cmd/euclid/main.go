// Command euclid runs one command inside a freshly constructed sandbox:
// separate namespaces, a cgroup v2 group, an overlay root over a read-only
// image and a syscall whitelist.
//
// Build it with CGO_ENABLED=0:
//
//	CGO_ENABLED=0 go build ./cmd/euclid
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/euclid-sandbox/euclid/container"
)

// container init
func init() {
	container.Init()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "euclid",
		Short:         "Minimal container runtime",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newFilterCmd())
	return root
}
