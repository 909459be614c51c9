package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// RunRequests handles the requests command.
func RunRequests(args []string) error {
	fs := flag.NewFlagSet("requests", flag.ContinueOnError)

	method := fs.String("method", "", "Filter by HTTP method")
	fs.StringVar(method, "m", "", "Filter by HTTP method (shorthand)")
	clear := fs.Bool("clear", false, "Clear all captured requests")
	verbose := fs.Bool("verbose", false, "Show headers and bodies")
	serverURL := fs.String("server-url", DefaultDashboardURL, "Dashboard API base URL")
	jsonOutput := fs.Bool("json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck requests [flags] [id]

View captured requests. With an id argument, show that request in full.

Flags:
  -m, --method       Filter by HTTP method
      --clear        Clear all captured requests
      --verbose      Show headers and bodies
      --server-url   Dashboard API base URL (default: http://localhost:8788/__edgedeck)
      --json         Output in JSON format

Examples:
  # Show captured requests
  edgedeck requests

  # Show one request in full
  edgedeck requests 01J8X2M4N5P6Q7R8S9T0V1W2X3

  # Only POST requests
  edgedeck requests -m POST

  # Clear the capture buffer
  edgedeck requests --clear
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	client := NewClient(*serverURL)

	if *clear {
		if err := client.ClearRequests(); err != nil {
			return err
		}
		fmt.Println("Cleared captured requests")
		return nil
	}

	if fs.NArg() > 0 {
		req, err := client.GetRequest(fs.Arg(0))
		if err != nil {
			return err
		}
		if *jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		}
		printVerboseRequest(req)
		return nil
	}

	requests, total, err := client.GetRequests()
	if err != nil {
		return err
	}
	if *method != "" {
		filtered := make([]*telemetry.CapturedRequest, 0, len(requests))
		for _, r := range requests {
			if r.Method == *method {
				filtered = append(filtered, r)
			}
		}
		requests = filtered
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(requests)
	}

	if len(requests) == 0 {
		fmt.Println("No captured requests")
		return nil
	}

	if *verbose {
		for _, r := range requests {
			printVerboseRequest(r)
		}
		return nil
	}

	fmt.Printf("%d request(s), %d total captured\n\n", len(requests), total)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tMETHOD\tPATH\tSTATUS\tDURATION\tID")
	for _, r := range requests {
		status := "pending"
		duration := "-"
		if r.Response != nil {
			status = fmt.Sprintf("%d", r.Response.Status)
			duration = fmt.Sprintf("%dms", r.Response.Duration)
		}
		path := r.Path
		if len(path) > 40 {
			path = path[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format("15:04:05"), r.Method, path, status, duration, r.ID)
	}
	return w.Flush()
}

func printVerboseRequest(r *telemetry.CapturedRequest) {
	if r.Response != nil {
		fmt.Printf("[%s] %s %s → %d (%dms)\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Method, r.Path,
			r.Response.Status, r.Response.Duration)
	} else {
		fmt.Printf("[%s] %s %s → (pending)\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Method, r.Path)
	}
	fmt.Printf("  ID: %s\n", r.ID)

	if len(r.Headers) > 0 {
		fmt.Println("  Request headers:")
		for key, value := range r.Headers {
			fmt.Printf("    %s: %s\n", key, value)
		}
	}
	if r.Body != "" {
		fmt.Printf("  Request body: %s\n", truncateBody(r.Body))
	}

	if r.Response != nil {
		if len(r.Response.Headers) > 0 {
			fmt.Println("  Response headers:")
			for key, value := range r.Response.Headers {
				fmt.Printf("    %s: %s\n", key, value)
			}
		}
		if r.Response.Body != "" {
			fmt.Printf("  Response body: %s\n", truncateBody(r.Response.Body))
		}
	}
	fmt.Println()
}

func truncateBody(body string) string {
	if len(body) > 200 {
		return body[:200] + "...(truncated)"
	}
	return body
}
