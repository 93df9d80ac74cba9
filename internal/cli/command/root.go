package command

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hcstate-go/internal/infra/buildinfo"
)

// App creates the CLI application writing to the process streams.
func App() *cli.App {
	return NewApp(os.Stdout, os.Stderr)
}

// NewApp creates the CLI application with explicit output streams.
func NewApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:                 "hc-state",
		Usage:                "Inspect the state of a Holochain conductor",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             Commands(),
		Writer:               stdout,
		ErrWriter:            stderr,
		EnableBashCompletion: true,
		Before: func(c *cli.Context) error {
			rt, err := newRuntime(c, stdout, stderr)
			if err != nil {
				return err
			}
			c.App.Metadata[runtimeKey] = rt
			return nil
		},
		After: func(c *cli.Context) error {
			if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
				return rt.Close()
			}
			return nil
		},
	}
	return app
}

// Commands returns every subcommand. The REPL reuses the same set.
func Commands() []*cli.Command {
	return []*cli.Command{
		ListDnasCommand(),
		ListCellIDsCommand(),
		ListActiveAppIDsCommand(),
		StateDumpCommand(),
		AppInfoCommand(),
		ZomeCallCommand(),
		GenAgentKeyCommand(),
		HashCommand(),
		CellCommand(),
		ConfigCommand(),
		ReplCommand(),
		VersionCommand(),
	}
}

// globalFlags returns the global CLI flags. Their values override the
// config file and HCSTATE_* environment variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Conductor host",
		},
		&cli.IntFlag{
			Name:    "admin-port",
			Aliases: []string{"f"},
			Usage:   "Admin interface port (default 4444)",
		},
		&cli.IntFlag{
			Name:    "app-port",
			Aliases: []string{"p"},
			Usage:   "App interface port (default 8888)",
		},
		&cli.StringFlag{
			Name:  "origin",
			Usage: "Origin header sent on connect",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "Connect with wss://",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "Extra CA certificates (PEM file or directory)",
		},
		&cli.StringFlag{
			Name:  "client-cert",
			Usage: "Client certificate for mutual TLS",
		},
		&cli.StringFlag{
			Name:  "client-key",
			Usage: "Client key for mutual TLS",
		},
		&cli.StringFlag{
			Name:  "app-token",
			Usage: "App interface authentication token (base64)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout (default 30s)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default ~/.hc-state/cli.yaml)",
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Named connection profile from the config file",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a spinner while waiting for the conductor",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write RPC metrics to this file on exit (Prometheus textfile format)",
		},
	}
}

// flagKeys maps global flags to config keys.
var flagKeys = map[string]string{
	"host":         "host",
	"admin-port":   "admin_port",
	"app-port":     "app_port",
	"origin":       "origin",
	"tls":          "tls",
	"ca-file":      "ca_file",
	"client-cert":  "client_cert",
	"client-key":   "client_key",
	"app-token":    "app_token",
	"timeout":      "timeout",
	"profile":      "profile",
	"output":       "default_output",
	"metrics-file": "metrics_file",
}

// flagOverrides collects the explicitly set global flags as config keys.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			out[key] = c.Value(name)
		}
	}
	if c.Bool("verbose") {
		out["log_level"] = "debug"
	}
	return out
}
