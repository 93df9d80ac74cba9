package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"github.com/yndnr/hcstate-go/internal/infra/confloader"
)

// DefaultPrompt is shown before each line.
const DefaultPrompt = "hc-state> "

var builtins = []string{"exit", "quit", "help", "history"}

// Executor runs one command line, already split into words. out is where
// the command's output belongs while the session is active.
type Executor func(ctx context.Context, out io.Writer, args []string) error

// lineReader yields one input line at a time.
type lineReader interface {
	ReadLine() (string, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
	logger    *slog.Logger

	watchPath string
	reload    func() error
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithHistory sets the line history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCompleter sets the command vocabulary.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *REPL) {
		r.logger = l
	}
}

// WithConfigReload calls reload whenever the file at path changes while
// the session runs.
func WithConfigReload(path string, reload func() error) Option {
	return func(r *REPL) {
		r.watchPath = path
		r.reload = reload
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory("", DefaultHistorySize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads and executes lines until exit, EOF or ctx is done. Command
// errors are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		r.logger.Warn("history load failed", "error", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			r.logger.Warn("history save failed", "error", err)
		}
	}()

	lines, out, restore, err := r.open()
	if err != nil {
		return err
	}
	defer restore()

	if stop := r.watchConfig(); stop != nil {
		defer stop()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.history.Add(line)

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(out, "%4d  %s\n", i+1, entry)
			}
			continue
		}
		if !r.completer.Known(args[0]) {
			fmt.Fprintf(out, "error: unknown command %q (try \"help\")\n", args[0])
			continue
		}

		if err := r.exec(ctx, out, args); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// open picks a line editor for terminals and a plain scanner otherwise.
func (r *REPL) open() (lineReader, io.Writer, func(), error) {
	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, nil, err
		}
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, r.output}, r.prompt)
		t.History = r.history
		t.AutoCompleteCallback = r.completer.AutoComplete
		return t, t, func() { _ = term.Restore(fd, state) }, nil
	}

	return &promptScanner{
		scanner: bufio.NewScanner(r.input),
		out:     r.output,
		prompt:  r.prompt,
	}, r.output, func() {}, nil
}

// watchConfig starts the config watcher and returns its stop function,
// or nil when reload is not configured or the file cannot be watched.
func (r *REPL) watchConfig() func() {
	if r.watchPath == "" || r.reload == nil {
		return nil
	}
	path := r.watchPath
	stop, err := confloader.Watch(path, func() {
		if err := r.reload(); err != nil {
			r.logger.Error("config reload failed", "path", path, "error", err)
			return
		}
		r.logger.Info("config reloaded", "path", path)
	}, confloader.WatchLogger(r.logger))
	if err != nil {
		r.logger.Debug("config not watched", "path", path, "error", err)
		return nil
	}
	return func() { _ = stop() }
}

// promptScanner reads lines from a non-terminal input.
type promptScanner struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
}

func (p *promptScanner) ReadLine() (string, error) {
	fmt.Fprint(p.out, p.prompt)
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
