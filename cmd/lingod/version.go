package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"lingod/internal/provider/llama"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lingod %s (%s, llama runtime built: %t)\n", version, runtime.Version(), llama.Built())
		},
	}
}
