package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type daemonStatus struct {
	Running       bool   `json:"running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveJobs    int    `json:"active_jobs"`
	DatabasePath  string `json:"database_path"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var address string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bind := strings.TrimSpace(address)
			if bind == "" {
				bind = cfg.Paths.HTTPBind
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + bind + "/api/status")
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s: %w", bind, err)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read status response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintln(out, strings.TrimSpace(string(body)))
				return nil
			}

			var status daemonStatus
			if err := json.Unmarshal(body, &status); err != nil {
				return fmt.Errorf("decode status response: %w", err)
			}

			running := "no"
			if status.Running {
				running = "yes"
			}
			rows := [][]string{
				{"Running", running},
				{"Uptime", (time.Duration(status.UptimeSeconds) * time.Second).String()},
				{"Active jobs", fmt.Sprintf("%d", status.ActiveJobs)},
				{"Database", status.DatabasePath},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Daemon address (defaults to paths.http_bind)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
