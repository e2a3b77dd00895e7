// Command shopctl runs operator tasks against the shop database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "shopctl",
		Short:        "Operator tasks for the shop backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(migrateCmd(), sweepCmd(), promoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
