package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(helloCmd)
	helloCmd.Flags().Uint16("from", 0, "host id introducing itself")
	helloCmd.Flags().Uint16("to", 0, "host id to introduce to")
	helloCmd.MarkFlagRequired("from")
	helloCmd.MarkFlagRequired("to")
}

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Introduce one node to another via Router.SendApplication",
	RunE:  runHello,
}

func runHello(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetUint16("from")
	to, _ := cmd.Flags().GetUint16("to")

	url := fmt.Sprintf("%s/nodes/%d/hello/%d", addrFlag, from, to)
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	fmt.Fprintf(os.Stdout, "sent hello from %d to %d\n", from, to)
	return nil
}
