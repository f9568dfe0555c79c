package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/tokenpress/internal/http"
)

var healthAddr string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running tokenpressd server",
	Long: `Health queries the /health endpoint of a running tokenpressd and
reports its status. The address defaults to the server section of the
config file.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&healthAddr, "addr", "", "server address as host:port (default from config)")
}

func runHealth(cmd *cobra.Command, args []string) error {
	addr := healthAddr
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("tokenpressd unreachable at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tokenpressd at %s returned status %d", addr, resp.StatusCode)
	}

	var health httpapi.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "tokenpressd at %s: %s", addr, health.Status)
	if health.Version != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (version %s)", health.Version)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
