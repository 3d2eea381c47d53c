package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(shutdownCmd)
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Shut down every node the running daemon has created",
	RunE:  runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	url := addrFlag + "/shutdown"
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	fmt.Fprintln(os.Stdout, "shutdown requested")
	return nil
}
