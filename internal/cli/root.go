// Package cli implements the swimd command-line tool: boot a daemon, or
// drive a running one's HTTP inspection API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "http://127.0.0.1:7946", "base URL of a running swimd daemon's HTTP API")
}

var addrFlag string

var rootCmd = &cobra.Command{
	Use:   "swimd",
	Short: "SWIM membership and failure-detection cluster",
	Long: `swimd runs a cluster of gossiping nodes implementing the SWIM
protocol: each node probes a random peer, escalates through Suspected to
Failed on repeated timeout, and piggybacks its membership view on ordinary
probe traffic.`,
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
