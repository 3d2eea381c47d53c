package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.Flags().Uint16("host", 0, "host id to print the membership view of")
	membersCmd.MarkFlagRequired("host")
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Print a host's membership view",
	RunE:  runMembers,
}

type nodeSnapshotJSON struct {
	Host         string            `json:"host"`
	SelfLiveness string            `json:"self_liveness"`
	Members      map[string]string `json:"members"`
}

func runMembers(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetUint16("host")

	url := fmt.Sprintf("%s/nodes/%d", addrFlag, host)
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("host %d is not known to the running daemon", host)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}

	var snap nodeSnapshotJSON
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Fprintf(os.Stdout, "%s (%s)\n", snap.Host, snap.SelfLiveness)
	peers := make([]string, 0, len(snap.Members))
	for h := range snap.Members {
		peers = append(peers, h)
	}
	sort.Strings(peers)
	for _, h := range peers {
		fmt.Fprintf(os.Stdout, "  %s: %s\n", h, snap.Members[h])
	}
	return nil
}
