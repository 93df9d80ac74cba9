package command

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/hcstate-go/internal/cli/config"
	"github.com/yndnr/hcstate-go/internal/cli/connection"
	"github.com/yndnr/hcstate-go/internal/cli/output"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/internal/infra/shutdown"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
	"github.com/yndnr/hcstate-go/internal/telemetry/metric"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

const runtimeKey = "runtime"

// shutdownTimeout bounds the close hooks run after a command.
const shutdownTimeout = 5 * time.Second

// Runtime is the state shared by the commands of one invocation, or by
// every line of a REPL session.
type Runtime struct {
	Stdout io.Writer
	Stderr io.Writer

	ConfigPath string
	Manager    *connection.Manager
	Metrics    *metric.Registry
	Logger     logger.Logger

	Wide     bool
	Progress bool

	mu        sync.RWMutex
	cfg       *config.CLIConfig
	format    output.Format
	overrides map[string]any

	ctx      context.Context
	stop     context.CancelFunc
	shutdown *shutdown.Handler
}

func newRuntime(c *cli.Context, stdout, stderr io.Writer) (*Runtime, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	overrides := flagOverrides(c)

	cfg, err := resolveConfig(path, overrides)
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(cfg.DefaultOutput)
	if err != nil {
		return nil, domain.ErrInvalidArgument.Wrap(err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "text", Output: stderr})
	if err != nil {
		return nil, err
	}
	reqID := logger.NewRequestID()

	rt := &Runtime{
		Stdout:     stdout,
		Stderr:     stderr,
		ConfigPath: path,
		Metrics:    metric.NewRegistry(),
		Logger:     log,
		Wide:       c.Bool("wide"),
		Progress:   c.Bool("progress"),
		cfg:        cfg,
		format:     format,
		overrides:  overrides,
		shutdown:   shutdown.NewHandler(shutdownTimeout),
	}
	connCfg, err := rt.connectionConfig(cfg)
	if err != nil {
		return nil, err
	}
	rt.Manager = connection.NewManager(connCfg)

	// Hooks run in reverse: connections close before metrics are written.
	if cfg.MetricsFile != "" {
		metricsFile := cfg.MetricsFile
		rt.shutdown.OnShutdown("metrics", func(context.Context) error {
			return rt.Metrics.WriteTextfile(metricsFile)
		})
	}
	rt.shutdown.OnShutdown("connections", func(context.Context) error {
		return rt.Manager.Close()
	})

	ctx, stop := rt.shutdown.Context(context.Background())
	ctx = logger.WithRequestID(logger.WithLogger(ctx, log), reqID)
	rt.ctx, rt.stop = ctx, stop

	logger.L(ctx).Debug("hc-state starting",
		"config", path,
		"admin_url", connCfg.AdminURL(),
		"app_url", connCfg.AppURL(),
	)
	return rt, nil
}

// resolveConfig loads the file at path and lays the flag overrides over
// it. The active profile sits between the two: flags still win.
func resolveConfig(path string, overrides map[string]any) (*config.CLIConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg, err = config.Merge(cfg, overrides); err != nil {
		return nil, err
	}
	if cfg, err = cfg.ApplyProfile(); err != nil {
		return nil, err
	}
	if cfg, err = config.Merge(cfg, overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (rt *Runtime) connectionConfig(cfg *config.CLIConfig) (connection.Config, error) {
	token, err := cfg.AppTokenBytes()
	if err != nil {
		return connection.Config{}, err
	}
	return connection.Config{
		Host:       cfg.Host,
		AdminPort:  cfg.AdminPort,
		AppPort:    cfg.AppPort,
		Origin:     cfg.Origin,
		TLS:        cfg.TLS,
		CAFile:     cfg.CAFile,
		ClientCert: cfg.ClientCert,
		ClientKey:  cfg.ClientKey,
		AppToken:   token,
		Timeout:    cfg.Timeout,
		Logger:     rt.Logger,
		Metrics:    rt.Metrics,
	}, nil
}

// Reload re-reads the config file, keeps the command-line overrides,
// and points the connection manager at the result.
func (rt *Runtime) Reload() error {
	rt.mu.RLock()
	overrides := rt.overrides
	rt.mu.RUnlock()

	cfg, err := resolveConfig(rt.ConfigPath, overrides)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.DefaultOutput)
	if err != nil {
		return domain.ErrConfigInvalid.Wrap(err)
	}
	connCfg, err := rt.connectionConfig(cfg)
	if err != nil {
		return err
	}

	if err := logger.SetLevel(rt.Logger, cfg.LogLevel); err != nil {
		return domain.ErrConfigInvalid.Wrap(err)
	}

	rt.mu.Lock()
	rt.cfg = cfg
	rt.format = format
	rt.mu.Unlock()
	return rt.Manager.Reconfigure(connCfg)
}

// Config returns the effective configuration.
func (rt *Runtime) Config() *config.CLIConfig {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.cfg
}

// Format returns the active output format.
func (rt *Runtime) Format() output.Format {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.format
}

// Context returns the invocation context. It is cancelled on SIGINT.
func (rt *Runtime) Context() context.Context {
	return rt.ctx
}

// Close runs the shutdown hooks once.
func (rt *Runtime) Close() error {
	defer rt.stop()
	return rt.shutdown.Run()
}

func runtimeFrom(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, errors.New("command runtime not initialized")
}

// Print renders data in the active format.
func (rt *Runtime) Print(data any) error {
	return output.NewFormatter(rt.Format(), rt.Wide).Format(rt.Stdout, data)
}

// PrintTable renders table in table mode and data otherwise.
func (rt *Runtime) PrintTable(table *output.Table, data any) error {
	if rt.Format() == output.FormatTable {
		return table.Render(rt.Stdout)
	}
	return rt.Print(data)
}

// spin shows a spinner on a terminal stderr while fn runs.
func (rt *Runtime) spin(label string, fn func() error) error {
	if !rt.Progress || !isTerminal(rt.Stderr) {
		return fn()
	}
	s := output.NewSpinner(rt.Stderr, label)
	s.Start()
	err := fn()
	s.Stop()
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withAdmin runs fn against the admin interface within one request
// timeout.
func (rt *Runtime) withAdmin(call string, fn func(context.Context, *connection.AdminClient) error) error {
	ctx, cancel := rt.Manager.CallContext(rt.ctx)
	defer cancel()
	return rt.spin(call, func() error {
		admin, err := rt.Manager.Admin(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, admin)
	})
}

// withApp runs fn against the app interface within one request timeout.
func (rt *Runtime) withApp(call string, fn func(context.Context, *connection.AppClient) error) error {
	ctx, cancel := rt.Manager.CallContext(rt.ctx)
	defer cancel()
	return rt.spin(call, func() error {
		app, err := rt.Manager.App(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, app)
	})
}

// resolveCell turns a CELL argument into a cell id. An index is looked up
// in the conductor's cell list; anything else is parsed as the pair form
// without contacting the conductor.
func (rt *Runtime) resolveCell(arg string) (holohash.CellID, error) {
	if _, ok := holohash.IsIndex(arg); !ok {
		cell, err := holohash.ParseCellIDText(arg)
		if err != nil {
			return holohash.CellID{}, domain.ErrInvalidArgument.WithDetailsf("cell %q: %v", arg, err).WithCause(err)
		}
		return cell, nil
	}

	var cell holohash.CellID
	err := rt.withAdmin("list_cell_ids", func(ctx context.Context, admin *connection.AdminClient) error {
		known, err := admin.ListCellIDs(ctx)
		if err != nil {
			return err
		}
		cell, err = holohash.ResolveCellID(arg, known)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetailsf("cell %s: %v", arg, err).WithCause(err)
		}
		return nil
	})
	return cell, err
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return domain.ErrMissingArgument.WithDetailsf("usage: %s %s", c.Command.HelpName, usage)
	}
	return nil
}
