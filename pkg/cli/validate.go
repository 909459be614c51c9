package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/edgedeck/edgedeck/pkg/config"
	"github.com/edgedeck/edgedeck/pkg/project"
)

// RunValidate handles the validate command.
func RunValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)

	projectFile := fs.String("project", config.DefaultProjectFile, "Path to the project's edge.toml")
	configFile := fs.String("config", "", "Also validate an edgedeck config file")
	fs.StringVar(configFile, "c", "", "Also validate a config file (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck validate [flags]

Check the project file for problems without starting the server.

Flags:
      --project   Path to the project's edge.toml (default: edge.toml)
  -c, --config    Also validate an edgedeck config file

Examples:
  # Validate the default project file
  edgedeck validate

  # Validate a specific project and config
  edgedeck validate --project apps/api/edge.toml -c edgedeck.yaml
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := project.Load(*projectFile)
	if err != nil {
		return err
	}
	bindings := project.Discover(cfg)

	problems := project.Validate(bindings)
	if len(problems) > 0 {
		fmt.Printf("%s: %d problem(s)\n", *projectFile, len(problems))
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("validation failed")
	}
	fmt.Printf("%s: OK\n", *projectFile)

	if *configFile != "" {
		if _, err := config.LoadFromFile(*configFile); err != nil {
			return fmt.Errorf("%s: %w", *configFile, err)
		}
		fmt.Printf("%s: OK\n", *configFile)
	}
	return nil
}
