package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "useful v%s\n", Version)
			_, _ = fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
			_, _ = fmt.Fprintf(out, "  Build Date: %s\n", BuildDate)
			_, _ = fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		},
	}
}
