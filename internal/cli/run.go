package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nodemesh/swimd/internal/api"
	"github.com/nodemesh/swimd/internal/daemon"
	"github.com/nodemesh/swimd/internal/domain"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "", "path to a TOML config file")
	runCmd.Flags().String("nodes", "", "comma-separated host ids to start immediately, e.g. 1,2,3")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot a daemon hosting a cluster's nodes and HTTP inspection API",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	nodesFlag, _ := cmd.Flags().GetString("nodes")

	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	cluster := daemon.NewCluster(cfg)

	hosts, err := parseHostList(nodesFlag)
	if err != nil {
		return err
	}
	cluster.Seed(hosts)

	server := api.NewServer(cluster.Router, cluster.Tracer, cfg.Observability.MetricsEnabled, cluster.RefreshMemberCount)

	httpServer := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stdout, "swimd listening on %s (nodes: %v)\n", cfg.API.Addr(), hosts)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCh:
		fmt.Fprintln(os.Stdout, "shutting down")
	}

	cluster.Shutdown()
	return httpServer.Close()
}

func parseHostList(raw string) ([]domain.Host, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	hosts := make([]domain.Host, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid host id %q: %w", p, err)
		}
		hosts = append(hosts, domain.Host(n))
	}
	return hosts, nil
}
