// edgedeck CLI - Local development dashboard for edge workers
package main

import (
	"fmt"
	"os"

	"github.com/edgedeck/edgedeck/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Command represents a registered CLI command.
type Command struct {
	Name     string
	Short    string
	Category string
	Run      func(args []string) error
	Hidden   bool
}

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	ordered  []*Command
}

func newRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	r.ordered = append(r.ordered, cmd)
}

func (r *Registry) lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

func (r *Registry) isCommand(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// buildRegistry creates the command registry with all CLI commands.
func buildRegistry() *Registry {
	reg := newRegistry()

	// Core
	reg.register(&Command{Name: "serve", Short: "Start the proxy and dashboard (default command)", Category: "Core", Run: cli.RunServe})
	reg.register(&Command{Name: "init", Short: "Create starter edge.toml and edgedeck.yaml files", Category: "Core", Run: cli.RunInit})
	reg.register(&Command{Name: "validate", Short: "Check the project file without starting the server", Category: "Core", Run: cli.RunValidate})
	reg.register(&Command{Name: "status", Short: "Show status of a running edgedeck server", Category: "Core", Run: cli.RunStatus})

	// Project
	reg.register(&Command{Name: "bindings", Short: "Show the resource bindings a project declares", Category: "Project", Run: cli.RunBindings})

	// Telemetry
	reg.register(&Command{Name: "logs", Short: "View captured worker logs", Category: "Telemetry", Run: cli.RunLogs})
	reg.register(&Command{Name: "requests", Short: "View captured requests", Category: "Telemetry", Run: cli.RunRequests})

	// Utilities
	reg.register(&Command{
		Name: "version", Short: "Show version information", Category: "Utilities",
		Run: func(args []string) error {
			return cli.RunVersion(cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}, args)
		},
	})

	return reg
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	reg := buildRegistry()

	// Determine command and args
	command := ""
	var cmdArgs []string

	switch {
	case len(args) == 0:
		// No args at all, run serve
		command = "serve"
		cmdArgs = []string{}
	case args[0] == "" || args[0][0] == '-':
		first := args[0]
		// Flag passed directly (e.g., --help, --version, --port), handle global flags or run serve
		switch first {
		case "--help", "-h":
			printUsage(reg)
			return nil
		case "--version", "-v":
			return cli.RunVersion(cli.BuildInfo{
				Version:   Version,
				Commit:    Commit,
				BuildDate: BuildDate,
			}, nil)
		default:
			// Other flags, run serve with them
			command = "serve"
			cmdArgs = args
		}
	case reg.isCommand(args[0]):
		command = args[0]
		cmdArgs = args[1:]
	default:
		return fmt.Errorf("unknown command: %s\n\nRun 'edgedeck --help' for usage", args[0])
	}

	cmd, ok := reg.lookup(command)
	if !ok {
		return fmt.Errorf("unknown command: %s\n\nRun 'edgedeck --help' for usage", command)
	}
	return cmd.Run(cmdArgs)
}

func printUsage(reg *Registry) {
	fmt.Print("edgedeck - Local development dashboard for edge workers\n\n")
	fmt.Print("Usage:\n")
	fmt.Print("  edgedeck                       Start the proxy and dashboard with defaults\n")
	fmt.Print("  edgedeck <command> [flags]     Run a specific command\n")
	fmt.Print("  edgedeck --help                Show this help message\n\n")

	// Group commands by category in display order.
	categories := []string{"Core", "Project", "Telemetry", "Utilities"}

	groups := make(map[string][]*Command)
	for _, cmd := range reg.ordered {
		if !cmd.Hidden {
			groups[cmd.Category] = append(groups[cmd.Category], cmd)
		}
	}

	for _, cat := range categories {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		fmt.Printf("%s:\n", cat)
		for _, cmd := range cmds {
			fmt.Printf("  %-12s %s\n", cmd.Name, cmd.Short)
		}
		fmt.Println()
	}

	fmt.Print(`Global Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Examples:
  # Create starter files and start the server
  edgedeck init
  edgedeck serve

  # Forward to a runtime on another port
  edgedeck serve --upstream http://localhost:3000

  # Follow logs from another terminal
  edgedeck logs --follow

  # Inspect captured traffic
  edgedeck requests
  edgedeck requests <id>

Run 'edgedeck <command> --help' for more information on a command.
`)
}
