package command

import (
	"context"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hcstate-go/internal/cli/config"
	"github.com/yndnr/hcstate-go/internal/cli/repl"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
)

// ReplCommand returns the repl command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive session sharing one connection per interface",
		Description: "Lines take the same commands as the command line, without global flags.\n" +
			"Builtins: history, help, exit. Changes to the config file apply to the next line.",
		Action: runRepl,
	}
}

func runRepl(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	historyFile := rt.Config().HistoryFile
	if historyFile == "" {
		historyFile = config.DefaultHistoryPath()
	}

	session := repl.New(rt.execLine,
		repl.WithIO(c.App.Reader, rt.Stdout),
		repl.WithHistory(repl.NewHistory(historyFile, repl.DefaultHistorySize)),
		repl.WithCompleter(repl.NewCompleter(commandPaths(lineCommands())...)),
		repl.WithConfigReload(rt.ConfigPath, rt.Reload),
		repl.WithLogger(logger.Slog(rt.Logger)),
	)
	return session.Run(rt.Context())
}

// lineCommands is the command set available inside the REPL.
func lineCommands() []*cli.Command {
	var out []*cli.Command
	for _, cmd := range Commands() {
		if cmd.Name != "repl" {
			out = append(out, cmd)
		}
	}
	return out
}

// commandPaths lists names, aliases and "parent child" paths.
func commandPaths(cmds []*cli.Command) []string {
	var out []string
	for _, cmd := range cmds {
		for _, name := range cmd.Names() {
			out = append(out, name)
			for _, sub := range commandPaths(cmd.Subcommands) {
				out = append(out, name+" "+sub)
			}
		}
	}
	return out
}

// execLine runs one REPL line on the session's runtime. Each line gets its
// own request id.
func (rt *Runtime) execLine(ctx context.Context, out io.Writer, args []string) error {
	stdout, parent := rt.Stdout, rt.ctx
	rt.Stdout = out
	rt.ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	defer func() {
		rt.Stdout, rt.ctx = stdout, parent
	}()

	app := &cli.App{
		Name:           "hc-state",
		HideVersion:    true,
		Commands:       lineCommands(),
		Writer:         out,
		ErrWriter:      out,
		Metadata:       map[string]any{runtimeKey: rt},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	return app.RunContext(rt.ctx, append([]string{"hc-state"}, args...))
}
