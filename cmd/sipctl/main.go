package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "sipctl",
		Short:        "Operator tooling for SIP and payment reconciliation",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(reconcileAllCmd())
	rootCmd.AddCommand(manageCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
