package cli

import (
	"flag"
	"fmt"
	"os"
)

const starterProject = `# edge.toml
# Generated by: edgedeck init
#
# Declare the resource bindings your worker uses. edgedeck emulates each
# binding locally and shows its contents in the dashboard.

name = "worker"

[vars]
API_URL = "https://api.example.com"

[[kv_namespaces]]
binding = "CACHE"

[[databases]]
binding = "DB"
database_name = "app"

# [[buckets]]
# binding = "ASSETS"
# bucket_name = "assets"

# [[queues.producers]]
# binding = "JOBS"
# queue = "jobs"

# [[queues.consumers]]
# queue = "jobs"
# max_batch_size = 10
# max_batch_timeout = 5
# max_retries = 3

# [[actors]]
# binding = "COUNTER"
# class_name = "Counter"
`

const starterConfig = `# edgedeck.yaml
# Generated by: edgedeck init
#
# Start: edgedeck serve

port: 8788
upstreamUrl: http://localhost:8787

capture:
  maxRequests: 500
  maxLogs: 1000
`

// RunInit handles the init command for creating starter project and config
// files.
func RunInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)

	force := fs.Bool("force", false, "Overwrite existing files")
	projectOnly := fs.Bool("project-only", false, "Create only edge.toml")
	configOnly := fs.Bool("config-only", false, "Create only edgedeck.yaml")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck init [flags]

Create starter edge.toml and edgedeck.yaml files in the current directory.

Flags:
      --force          Overwrite existing files
      --project-only   Create only edge.toml
      --config-only    Create only edgedeck.yaml

Examples:
  # Create both starter files
  edgedeck init

  # Recreate the project file
  edgedeck init --project-only --force
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	var created []string
	if !*configOnly {
		path, err := writeStarter("edge.toml", starterProject, *force)
		if err != nil {
			return err
		}
		if path != "" {
			created = append(created, path)
		}
	}
	if !*projectOnly {
		path, err := writeStarter("edgedeck.yaml", starterConfig, *force)
		if err != nil {
			return err
		}
		if path != "" {
			created = append(created, path)
		}
	}

	for _, path := range created {
		fmt.Printf("Created %s\n", path)
	}
	if len(created) > 0 {
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  edgedeck serve")
		fmt.Println("  curl http://localhost:8788/__edgedeck/status")
	}
	return nil
}

func writeStarter(path, content string, force bool) (string, error) {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("Skipping %s: already exists (use --force to overwrite)\n", path)
		return "", nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
