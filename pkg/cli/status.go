package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// RunStatus handles the status command.
func RunStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)

	serverURL := fs.String("server-url", DefaultDashboardURL, "Dashboard API base URL")
	jsonOutput := fs.Bool("json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck status [flags]

Show status of a running edgedeck server.

Flags:
      --server-url   Dashboard API base URL (default: http://localhost:8788/__edgedeck)
      --json         Output in JSON format
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	client := NewClient(*serverURL)
	status, err := client.Status()
	if err != nil {
		return err
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Printf("Status:    %s\n", status.Status)
	if status.Version != "" {
		fmt.Printf("Version:   %s\n", status.Version)
	}
	fmt.Printf("Uptime:    %ds\n", status.Uptime)
	fmt.Printf("Captured:  %d request(s), %d log(s), %d subscriber(s)\n",
		status.Capture.Requests, status.Capture.Logs, status.Capture.Subscribers)
	fmt.Printf("Bindings:  %d database(s), %d kv, %d bucket(s), %d queue(s), %d actor(s)\n",
		status.Bindings.Databases, status.Bindings.KV, status.Bindings.Buckets,
		status.Bindings.Queues, status.Bindings.Actors)
	return nil
}
