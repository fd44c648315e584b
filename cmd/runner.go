package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/skyforgehq/playpub/internal/credentials"
	"github.com/skyforgehq/playpub/internal/pipeline"
	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthFunc exchanges a loaded credential for an authenticated HTTP client.
type AuthFunc func(ctx context.Context, cred *credentials.Credential) (*http.Client, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	logger       *log.Logger
	output       io.Writer
	authenticate AuthFunc
	api          pipeline.API
}

// RunnerOpts contains configuration options for creating a Runner.
//
// API, when set, bypasses credential loading and authentication entirely;
// it exists for tests that publish against a fake server.
type RunnerOpts struct {
	Config       *shared.Config
	Logger       *log.Logger
	Output       io.Writer
	Authenticate AuthFunc
	API          pipeline.API
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
	if opts.Authenticate == nil {
		opts.Authenticate = func(ctx context.Context, cred *credentials.Credential) (*http.Client, error) {
			return cred.Authenticate(ctx)
		}
	}

	return &Runner{
		config:       opts.Config,
		logger:       opts.Logger,
		output:       opts.Output,
		authenticate: opts.Authenticate,
		api:          opts.API,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		publishCommand, validateCommand, tracksCommand, editsCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the config named by the command's --config flag when it
// parses, falling back to the runner's startup config.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if cfg, err := shared.LoadConfig(path); err == nil {
		return cfg
	}
	return r.config
}

// publisherAPI loads the credential at credPath, authenticates, and returns
// a publishing API bound to the configured base URL.
func (r *Runner) publisherAPI(ctx context.Context, cfg *shared.Config, credPath string) (pipeline.API, error) {
	if r.api != nil {
		return r.api, nil
	}

	cred, err := credentials.Load(credPath)
	if err != nil {
		return nil, err
	}
	r.logger.Info("credential loaded", "account", cred.ClientEmail)

	httpClient, err := r.authenticate(ctx, cred)
	if err != nil {
		return nil, err
	}
	r.logger.Info("authenticated", "scope", credentials.PublisherScope)

	return publisher.NewClient(cfg.Publish.APIURL, httpClient), nil
}

// firstNonEmpty returns the first non-empty string, letting flag values
// override config values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
