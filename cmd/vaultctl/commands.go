package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vyrodovalexey/vaultkv/internal/health"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

// commandIO carries the streams and output mode of a command.
type commandIO struct {
	streams
	json bool
}

// command is a vaultctl subcommand.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, app *application, args []string, cio commandIO) int
}

var commands = []command{
	{name: "get", summary: "Print the latest value of a secret", run: runGet},
	{name: "put", summary: "Write a secret value (use - to read it from stdin)", run: runPut},
	{name: "destroy", summary: "Delete all versions and metadata of a secret", run: runDestroy},
	{name: "health", summary: "Query and classify Vault health", run: runHealth},
	{name: "keygen", summary: "Generate an AES key and store it as a secret", run: runKeygen},
	{name: "key", summary: "Validate a stored secret as AES key material", run: runKey},
	{name: "serve", summary: "Serve health probes and metrics over HTTP", run: runServe},
}

// lookupCommand returns the command with the given name.
func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// newFlagSet creates a flag set for a subcommand writing errors to cio.err.
func newFlagSet(name, usage string, cio commandIO) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cio.err)
	fs.Usage = func() {
		fmt.Fprintf(cio.err, "Usage: vaultctl %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses subcommand flags and checks the positional argument count.
func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exitOK, false
		}
		return nil, exitUsage, false
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, exitUsage, false
	}
	return fs.Args(), exitOK, true
}

// secretOutput is the JSON form of a secret read.
type secretOutput struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Version int    `json:"version,omitempty"`
}

// writeOutput is the JSON form of a write acknowledgement.
type writeOutput struct {
	Key         string    `json:"key"`
	Version     int       `json:"version,omitempty"`
	CreatedTime time.Time `json:"created_time,omitzero"`
	StatusCode  int       `json:"status_code"`
}

// destroyOutput is the JSON form of a destroy acknowledgement.
type destroyOutput struct {
	Key        string `json:"key"`
	StatusCode int    `json:"status_code"`
}

// healthOutput is the JSON form of a health query.
type healthOutput struct {
	StatusCode     int                  `json:"status_code"`
	Classification string               `json:"classification"`
	Healthy        bool                 `json:"healthy"`
	Message        string               `json:"message"`
	Payload        *vault.HealthPayload `json:"payload,omitempty"`
}

func runGet(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("get", "<key>", cio)
	rest, code, ok := parseArgs(fs, args, 1)
	if !ok {
		return code
	}
	key := rest[0]

	var entry *vault.SecretEntry
	err := app.withRetry(ctx, vault.OpGetSecret, func(ctx context.Context) error {
		var err error
		entry, err = app.client.GetSecret(ctx, key)
		return err
	})
	if err != nil {
		return reportError(ctx, app, cio, err)
	}

	if cio.json {
		return writeJSON(cio, secretOutput{Key: entry.Key, Value: entry.Value, Version: entry.Version})
	}
	fmt.Fprintln(cio.out, entry.Value)
	return exitOK
}

func runPut(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("put", "<key> <value|->", cio)
	rest, code, ok := parseArgs(fs, args, 2)
	if !ok {
		return code
	}
	key, value := rest[0], rest[1]

	if value == "-" {
		data, err := io.ReadAll(cio.in)
		if err != nil {
			fmt.Fprintf(cio.err, "failed to read value from stdin: %v\n", err)
			return exitError
		}
		value = strings.TrimRight(string(data), "\r\n")
	}

	return putSecret(ctx, app, cio, key, value)
}

// putSecret writes value under key and prints the acknowledgement.
func putSecret(ctx context.Context, app *application, cio commandIO, key, value string) int {
	var result *vault.WriteResult
	err := app.withRetry(ctx, vault.OpSetSecret, func(ctx context.Context) error {
		var err error
		result, err = app.client.SetSecret(ctx, key, value)
		return err
	})
	if err != nil {
		return reportError(ctx, app, cio, err)
	}

	if cio.json {
		return writeJSON(cio, writeOutput{
			Key:         result.Key,
			Version:     result.Version,
			CreatedTime: result.CreatedTime,
			StatusCode:  result.StatusCode,
		})
	}
	if result.Version > 0 {
		fmt.Fprintf(cio.out, "Wrote %s (version %d)\n", result.Key, result.Version)
	} else {
		fmt.Fprintf(cio.out, "Wrote %s\n", result.Key)
	}
	return exitOK
}

func runDestroy(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("destroy", "<key>", cio)
	rest, code, ok := parseArgs(fs, args, 1)
	if !ok {
		return code
	}
	key := rest[0]

	var result *vault.DestroyResult
	err := app.withRetry(ctx, vault.OpDestroySecret, func(ctx context.Context) error {
		var err error
		result, err = app.client.DestroySecret(ctx, key)
		return err
	})
	if err != nil {
		return reportError(ctx, app, cio, err)
	}

	if cio.json {
		return writeJSON(cio, destroyOutput{Key: result.Key, StatusCode: result.StatusCode})
	}
	fmt.Fprintf(cio.out, "Destroyed %s\n", result.Key)
	return exitOK
}

func runHealth(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("health", "", cio)
	if _, code, ok := parseArgs(fs, args, 0); !ok {
		return code
	}

	var result *vault.HealthResult
	err := app.withRetry(ctx, vault.OpGetHealth, func(ctx context.Context) error {
		var err error
		result, err = app.client.GetHealth(ctx)
		return err
	})
	if err != nil {
		return reportError(ctx, app, cio, err)
	}

	message := result.Code.Description()
	if !result.Healthy() {
		message = health.UnhealthyMessage(result)
	}

	if cio.json {
		if code := writeJSON(cio, healthOutput{
			StatusCode:     result.StatusCode,
			Classification: result.Code.String(),
			Healthy:        result.Healthy(),
			Message:        message,
			Payload:        result.Payload,
		}); code != exitOK {
			return code
		}
	} else {
		fmt.Fprintln(cio.out, message)
	}

	if !result.Healthy() {
		return exitUnhealthy
	}
	return exitOK
}

// reportError logs err and prints it for the operator. The exit code
// distinguishes a missing secret and a malformed response from other failures.
func reportError(ctx context.Context, app *application, cio commandIO, err error) int {
	logger := app.logger.WithContext(ctx)

	if vault.IsNotFound(err) {
		logger.Debug("secret not found", observability.Error(err))
		fmt.Fprintf(cio.err, "Error: %v\n", err)
		return exitNotFound
	}

	if vault.IsProtocolError(err) {
		logger.Error("unexpected response from vault", observability.Error(err))
		fmt.Fprintf(cio.err, "Error: %v\n", err)
		return exitProtocol
	}

	logger.Error("vault operation failed", observability.Error(err))
	fmt.Fprintf(cio.err, "Error: %v\n", err)
	return exitError
}

// writeJSON prints v as indented JSON.
func writeJSON(cio commandIO, v any) int {
	encoder := json.NewEncoder(cio.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(cio.err, "failed to encode output: %v\n", err)
		return exitError
	}
	return exitOK
}
