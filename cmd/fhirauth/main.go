// FHIR Authentication Service
//
// This is the main entry point for the FHIR authentication service. It
// resolves the runtime configuration from the process environment (and an
// optional .env file), then serves the redirect and health endpoints.
//
// Run with --check to validate the environment and print a redacted summary
// of the resolved configuration without starting the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/fhir-auth-service/internal/api"
	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// defaultEnvFile is read when present; a missing file is not an error.
const defaultEnvFile = ".env"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], config.FromOS(), os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags.
type options struct {
	envFile string
	check   bool
	version bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("fhirauth", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.envFile, "env-file", defaultEnvFile, "dotenv file merged under the process environment")
	flagSet.BoolVar(&opts.check, "check", false, "validate configuration, print a redacted summary and exit")
	flagSet.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - environ: Process environment
//   - stdout, stderr: Output for --check, --version and warnings
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, environ config.Environment, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "fhirauth %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	env, err := environ.WithDotenv(opts.envFile)
	if err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	cfg, err := config.Resolve(ctx, env)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	if opts.check {
		for _, w := range cfg.Warnings {
			fmt.Fprintf(stderr, "warning: %s\n", w)
		}
		out, err := config.Summary(cfg)
		if err != nil {
			return fmt.Errorf("rendering configuration summary: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}

	return serve(ctx, cfg)
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.Logging, version)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Close()

	log.Info("starting FHIR authentication service",
		"version", version,
		"commit", commit,
		"build_date", date,
		"production", cfg.IsProduction,
	)
	for _, w := range cfg.Warnings {
		log.Warn("configuration warning", "detail", w)
	}

	server, err := api.New(api.Deps{
		Config:  cfg,
		Logger:  log.With("component", "api"),
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}
