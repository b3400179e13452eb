package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tbx/internal/services"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/desertthunder/tbx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The Trello client and journal database are created on first use so that commands
// which need neither (setup config, setup auth) work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	api        *services.APIService
	httpClient *http.Client
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service
	API        *services.APIService
	HTTPClient *http.Client
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		labelsCommand, cardsCommand, boardCommand, runsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file and applies global flag overrides before any command runs.
//
// A missing config file is only an error when --config was given explicitly.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	if token := cmd.String("token"); token != "" {
		r.config.Credentials.Token = token
	}
	if cookie := cmd.String("cookie"); cookie != "" {
		r.config.Credentials.Cookie = cookie
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}

	return ctx, nil
}

// client returns the HTTP client shared by the Trello services.
func (r *Runner) client() *http.Client {
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.Timeout()}
	}
	return r.httpClient
}

// trello returns the Trello service, creating it from the session credentials on first use.
//
// The token falls back to the dsc value of the session cookie.
func (r *Runner) trello() (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	creds := r.config.Credentials
	token := creds.Token
	if token == "" && creds.Cookie != "" {
		t, err := shared.TokenFromCookie(creds.Cookie)
		if err != nil {
			return nil, err
		}
		token = t
	}

	svc, err := services.NewTrelloService(r.config.Trello.BaseURL, token, creds.Cookie, r.client())
	if err != nil {
		return nil, fmt.Errorf("%w (run 'tbx setup auth' or set TBX_TOKEN)", err)
	}
	r.service = svc
	return svc, nil
}

// rawAPI returns the raw API client used by board raw.
func (r *Runner) rawAPI() *services.APIService {
	if r.api == nil {
		r.api = services.NewAPIService(r.config.Trello.BaseURL, r.config.Credentials.Cookie, r.client())
	}
	return r.api
}

// engine builds a bulk engine using the run flags of cmd, falling back to [run] settings.
func (r *Runner) engine(cmd *cli.Command) (*tasks.BulkEngine, error) {
	svc, err := r.trello()
	if err != nil {
		return nil, err
	}

	// Progress channels handed to the engine are always drained, so no update is dropped.
	opts := tasks.ExecutorOpts{
		Concurrency:      r.config.Run.Concurrency,
		RateLimit:        r.config.Run.RateLimit,
		BlockingProgress: true,
	}
	if cmd.IsSet("concurrency") {
		opts.Concurrency = cmd.Int("concurrency")
	}
	if cmd.IsSet("rate-limit") {
		opts.RateLimit = cmd.Float("rate-limit")
	}
	if opts.Concurrency < 0 || opts.RateLimit < 0 {
		return nil, fmt.Errorf("%w: concurrency and rate limit must not be negative", shared.ErrInvalidArgument)
	}

	return tasks.NewBulkEngine(svc, opts), nil
}

// journal returns the run journal database, opening it and applying migrations on first use.
func (r *Runner) journal() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the journal database, if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

// writeOutput writes data to the --output file of cmd, or to the runner output.
func (r *Runner) writeOutput(cmd *cli.Command, data []byte) error {
	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		r.logger.Info("output written", "path", path)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// exitError reports err through the logger and returns the process exit code.
//
// User aborts are not failures.
func exitError(logger *log.Logger, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, shared.ErrAborted) {
		logger.Warn("aborted, nothing was written")
		return 0
	}
	logger.Error("application error", "error", err)
	return 1
}
