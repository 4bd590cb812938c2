package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/shipwright/internal/app"
	"github.com/specialistvlad/shipwright/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Environment variables consulted when the matching flag is not set.
const (
	EnvToken      = "SHIPWRIGHT_GITHUB_TOKEN"
	EnvGitHubAuth = "GITHUB_TOKEN"
	EnvCI         = "CI"
)

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// A nil getenv reads the process environment.
func Parse(args []string, output io.Writer, getenv func(string) string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if getenv == nil {
		getenv = os.Getenv
	}
	flagSet := flag.NewFlagSet("shipwright", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Shipwright - builds, versions, packages and publishes an extension module.

Usage:
  shipwright [options] [TARGET...]

Arguments:
  TARGET
    One or more targets to run. Defaults to Package. Use -list to see them all.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaultConfiguration := string(config.Debug)
	if getenv(EnvCI) != "" {
		defaultConfiguration = string(config.Release)
	}

	configurationFlag := flagSet.String("configuration", defaultConfiguration, "Build configuration: 'Debug' or 'Release'. Release by default on CI.")
	tokenFlag := flagSet.String("github-token", "", "Hosting API token. Falls back to $"+EnvToken+" then $"+EnvGitHubAuth+".")
	rootFlag := flagSet.String("root", ".", "Module root directory.")
	projectFlag := flagSet.String("project", "", "Path to the build.hcl project file. Defaults to <root>/build.hcl when present.")
	workersFlag := flagSet.Int("workers", 1, "Number of targets allowed to run at once.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Abort the run after this long. 0 disables the limit.")
	continueFlag := flagSet.Bool("continue", false, "Keep running independent targets after a failure.")
	reportFlag := flagSet.String("report", "", "Write a YAML run report to this path.")
	planFlag := flagSet.Bool("plan", false, "Print the execution plan and exit.")
	listFlag := flagSet.Bool("list", false, "List all targets and exit.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colored summary output.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configuration, err := config.ParseConfiguration(*configurationFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	token := *tokenFlag
	for _, key := range []string{EnvToken, EnvGitHubAuth} {
		if token != "" {
			break
		}
		token = getenv(key)
	}
	slog.Debug("CLI parameter validation complete.", "has_token", token != "")

	cfg, err := app.NewConfig(app.Config{
		Root:              *rootFlag,
		ProjectFile:       *projectFlag,
		Configuration:     configuration,
		GitHubToken:       token,
		Targets:           flagSet.Args(),
		Workers:           *workersFlag,
		Timeout:           *timeoutFlag,
		ContinueOnFailure: *continueFlag,
		ReportPath:        *reportFlag,
		PlanOnly:          *planFlag,
		ListOnly:          *listFlag,
		NoColor:           *noColorFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "targets", cfg.Targets)
	return cfg, false, nil
}
