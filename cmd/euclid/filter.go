package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/euclid-sandbox/euclid/pkg/seccomp/libseccomp"
)

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter",
		Short: "Print the compiled syscall whitelist program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := libseccomp.NewDefaultBuilder()
			f, err := b.Build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, ins := range libseccomp.Disassemble(f) {
				if name := libseccomp.Describe(ins); name != "" {
					fmt.Fprintf(out, "%4d: %v\t# %s\n", i, ins, name)
					continue
				}
				fmt.Fprintf(out, "%4d: %v\n", i, ins)
			}
			fmt.Fprintf(out, "%d instructions, default action %v\n", len(f), b.Default)

			_, unsupported, err := libseccomp.SplitSupported(b.Allow)
			if err != nil {
				return err
			}
			if len(unsupported) > 0 {
				fmt.Fprintf(out, "not on this architecture: %s\n", strings.Join(unsupported, ", "))
			}
			return nil
		},
	}
}
