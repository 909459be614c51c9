package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// RunLogs handles the logs command.
func RunLogs(args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)

	limit := fs.Int("limit", 100, "Number of entries to show")
	fs.IntVar(limit, "n", 100, "Number of entries to show (shorthand)")
	level := fs.String("level", "", "Filter by level (log, info, warn, error, debug)")
	source := fs.String("source", "", "Filter by source (worker, queue, actor, system, request)")
	clear := fs.Bool("clear", false, "Clear all logs")
	follow := fs.Bool("follow", false, "Stream logs in real-time (like tail -f)")
	fs.BoolVar(follow, "f", false, "Stream logs in real-time (shorthand)")
	serverURL := fs.String("server-url", DefaultDashboardURL, "Dashboard API base URL")
	jsonOutput := fs.Bool("json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck logs [flags]

View captured worker logs.

Flags:
  -n, --limit        Number of entries to show (default: 100)
      --level        Filter by level (log, info, warn, error, debug)
      --source       Filter by source (worker, queue, actor, system, request)
      --clear        Clear all logs
  -f, --follow       Stream logs in real-time (like tail -f)
      --server-url   Dashboard API base URL (default: http://localhost:8788/__edgedeck)
      --json         Output in JSON format

Examples:
  # Show recent logs
  edgedeck logs

  # Show last 20 entries
  edgedeck logs -n 20

  # Only errors
  edgedeck logs --level error

  # Stream logs in real-time
  edgedeck logs --follow

  # Clear logs
  edgedeck logs --clear
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	client := NewClient(*serverURL)

	if *clear {
		if err := client.ClearLogs(); err != nil {
			return err
		}
		fmt.Println("Cleared logs")
		return nil
	}

	if *follow {
		return followLogs(client, *level, *source, *jsonOutput)
	}

	entries, err := client.GetLogs(*limit)
	if err != nil {
		return err
	}
	entries = filterLogs(entries, *level, *source)

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No logs")
		return nil
	}
	for _, entry := range entries {
		printLogEntry(entry)
	}
	return nil
}

func filterLogs(entries []*telemetry.LogEntry, level, source string) []*telemetry.LogEntry {
	if level == "" && source == "" {
		return entries
	}
	filtered := make([]*telemetry.LogEntry, 0, len(entries))
	for _, e := range entries {
		if level != "" && e.Level != level {
			continue
		}
		if source != "" && e.Source != source {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func printLogEntry(e *telemetry.LogEntry) {
	timestamp := e.Timestamp.Format("15:04:05.000")
	line := fmt.Sprintf("%s  %-5s  [%s]  %s", timestamp, strings.ToUpper(e.Level), e.Source, e.Message)
	fmt.Println(line)
	if e.Data != nil {
		if data, err := json.Marshal(e.Data); err == nil && string(data) != "null" {
			fmt.Printf("           %s\n", data)
		}
	}
}

// followLogs attaches to the server's event stream and prints log events as
// they arrive until interrupted.
func followLogs(client *Client, level, source string, jsonOutput bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping log stream...")
		cancel()
	}()

	fmt.Println("Streaming logs (press Ctrl+C to stop)...")
	fmt.Println()

	return client.Stream(ctx, func(ev StreamEvent) {
		if ev.Name != "log" {
			return
		}
		var entry telemetry.LogEntry
		if err := json.Unmarshal(ev.Data, &entry); err != nil {
			return
		}
		if level != "" && entry.Level != level {
			return
		}
		if source != "" && entry.Source != source {
			return
		}
		if jsonOutput {
			fmt.Println(string(ev.Data))
			return
		}
		printLogEntry(&entry)
	})
}
