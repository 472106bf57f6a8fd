package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/services"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/tasks"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(in io.Reader, out io.Writer, question, detail string) (bool, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	getenv     func(string) string
	transport  http.RoundTripper
	sleep      tasks.Sleeper
	confirm    ConfirmFunc
	isTerminal func(io.Reader) bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // when nil, loaded from --config on first use
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Getenv     func(string) string
	Transport  http.RoundTripper // base transport for Discogs requests
	Sleep      tasks.Sleeper
	Confirm    ConfirmFunc
	IsTerminal func(io.Reader) bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Confirm == nil {
		opts.Confirm = ui.Confirm
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = isTerminal
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		getenv:     opts.Getenv,
		transport:  opts.Transport,
		sleep:      opts.Sleep,
		confirm:    opts.Confirm,
		isTerminal: opts.IsTerminal,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, collectionCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the injected config, or reads the file named by --config.
//
// A missing file falls back to the embedded defaults; a file that fails to parse is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.config != nil {
		return r.config, nil
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		r.config = shared.DefaultConfig()
		return r.config, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	r.config = config
	return r.config, nil
}

// collection builds the Discogs client for the run's credentials.
func (r *Runner) collection(config *shared.Config, rc *shared.RunConfig) (*services.DiscogsService, error) {
	return services.NewDiscogsServiceFromConfig(config, rc, services.APIOpts{Transport: r.transport})
}

func (r *Runner) engine(svc services.CollectionService, config *shared.Config, recorder tasks.RunRecorder) *tasks.Engine {
	return tasks.NewEngine(svc, tasks.EngineOpts{
		RetryDelay:  config.Sync.RetryDelay.Duration,
		MaxAttempts: config.Sync.MaxAttempts,
		Workers:     config.Sync.Workers,
		Sleep:       r.sleep,
		Logger:      shared.WithLogger(r.logger, "component", "engine"),
		Recorder:    recorder,
	})
}

// confirmRun asks before touching the collection unless --yes was given.
//
// Without a terminal there is nobody to ask, so the run is refused.
func (r *Runner) confirmRun(cmd *cli.Command, question, detail string) error {
	if cmd.Bool("yes") {
		return nil
	}
	if !r.isTerminal(r.input) {
		return fmt.Errorf("%w: stdin is not a terminal, pass --yes to proceed", shared.ErrNotConfirmed)
	}

	ok, err := r.confirm(r.input, r.output, question, detail)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotConfirmed
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func isTerminal(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
