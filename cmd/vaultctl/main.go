// Package main is the entry point for vaultctl, a command line client for
// Vault KV v2 secrets and health probes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/vaultkv/internal/config"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Process exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitUsage     = 2
	exitUnhealthy = 3
	exitNotFound  = 4
	exitProtocol  = 5
)

// cliFlags holds global command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	jsonOutput  bool
	showVersion bool
}

// streams groups the process input and output.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	stop()
	os.Exit(code)
}

// run executes one vaultctl invocation and returns the process exit code.
func run(ctx context.Context, args []string, std streams) int {
	flags, rest, err := parseFlags(args, std.err)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.showVersion {
		printVersion(std.out)
		return exitOK
	}

	if len(rest) == 0 {
		printUsage(std.err)
		return exitUsage
	}

	cmd, ok := lookupCommand(rest[0])
	if !ok {
		fmt.Fprintf(std.err, "unknown command %q\n\n", rest[0])
		printUsage(std.err)
		return exitUsage
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(std.err, "failed to load configuration: %v\n", err)
		return exitError
	}

	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(std.err, "failed to create logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	ctx = observability.ContextWithRequestID(ctx, uuid.NewString())

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", observability.Error(err))
		fmt.Fprintf(std.err, "failed to initialize: %v\n", err)
		return exitError
	}
	defer app.close()

	return cmd.run(ctx, app, rest[1:], commandIO{streams: std, json: flags.jsonOutput})
}

// parseFlags parses global flags and returns the remaining arguments.
func parseFlags(args []string, output io.Writer) (cliFlags, []string, error) {
	fs := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { printUsage(output) }

	configPath := fs.String("config", getEnvOrDefault("VAULTCTL_CONFIG_PATH", ""),
		"Path to configuration file")
	logLevel := fs.String("log-level", "",
		"Log level (debug, info, warn, error); overrides the configuration")
	logFormat := fs.String("log-format", "",
		"Log format (json, console); overrides the configuration")
	jsonOutput := fs.Bool("json", getEnvBool("VAULTCTL_JSON", false), "Print results as JSON")
	showVersion := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, nil, err
	}

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		jsonOutput:  *jsonOutput,
		showVersion: *showVersion,
	}, fs.Args(), nil
}

// loadConfig loads the configuration file and environment, then applies flag overrides.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}
	return cfg, nil
}

// initLogger creates the process logger.
func initLogger(cfg *config.Config) (observability.Logger, error) {
	return observability.NewLogger(cfg.LogConfig())
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "vaultctl version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// printUsage prints the command summary.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vaultctl [flags] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config string      Path to configuration file (env VAULTCTL_CONFIG_PATH)")
	fmt.Fprintln(w, "  -log-level string   Log level (debug, info, warn, error)")
	fmt.Fprintln(w, "  -log-format string  Log format (json, console)")
	fmt.Fprintln(w, "  -json               Print results as JSON (env VAULTCTL_JSON)")
	fmt.Fprintln(w, "  -version            Show version information")
}
