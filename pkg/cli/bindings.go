package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/edgedeck/edgedeck/pkg/config"
	"github.com/edgedeck/edgedeck/pkg/project"
)

// RunBindings handles the bindings command.
func RunBindings(args []string) error {
	fs := flag.NewFlagSet("bindings", flag.ContinueOnError)

	projectFile := fs.String("project", config.DefaultProjectFile, "Path to the project's edge.toml")
	remote := fs.Bool("remote", false, "Fetch the manifest from a running server instead of the local file")
	serverURL := fs.String("server-url", DefaultDashboardURL, "Dashboard API base URL")
	jsonOutput := fs.Bool("json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck bindings [flags]

Show the resource bindings a project declares.

Flags:
      --project      Path to the project's edge.toml (default: edge.toml)
      --remote       Fetch the manifest from a running server
      --server-url   Dashboard API base URL (default: http://localhost:8788/__edgedeck)
      --json         Output in JSON format

Examples:
  # Show bindings from the local project file
  edgedeck bindings

  # Ask a running server for its manifest
  edgedeck bindings --remote
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *remote {
		client := NewClient(*serverURL)
		manifest, err := client.GetBindings()
		if err != nil {
			return err
		}
		return printManifest(manifest)
	}

	cfg, err := project.Load(*projectFile)
	if err != nil {
		return err
	}
	bindings := project.Discover(cfg)

	if *jsonOutput {
		return printManifest(project.BuildManifest(bindings))
	}
	for _, line := range project.Summary(bindings) {
		fmt.Println(line)
	}
	return nil
}

func printManifest(m *project.Manifest) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
