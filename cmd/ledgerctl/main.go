// Command ledgerctl is the operator tool for the real-estate ledger. It
// applies journal migrations and inspects the replayed ledger offline.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Real-estate ledger operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		summaryCmd(),
		propertiesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
