package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/config"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// configFlags maps flag names to the configuration keys they override.
var configFlags = map[string]string{
	"logs-level":          "logs.level",
	"logs-file":           "logs.file",
	"profile":             "profiler.enabled",
	"verbose":             "errors.format.verbose",
	"token":               "api.token",
	"username":            "login.username",
	"password":            "login.password",
	"strategy":            "login.strategy",
	"headless-no-sandbox": "browser.no_sandbox",
	"headless-path":       "browser.executable_path",
}

var (
	stateMu         sync.Mutex
	formatterConfig = errUtils.DefaultFormatterConfig()
	closeLogOutput  = func() error { return nil }
)

// RootCmd is the hcloud-projects command.
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hcloud-projects",
		Short: "Manage Hetzner Cloud projects from the command line",
		Long: `hcloud-projects logs in to the Hetzner Cloud console with account credentials, issues API tokens and ` +
			`creates, resolves and deletes projects by name.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			isHelpRequested := cmd.Name() == "help" || cmd.Flags().Changed("help")
			cmd.SilenceUsage = !isHelpRequested
			cmd.SilenceErrors = !isHelpRequested

			return initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to the config file (default: ./hcloud-projects.yaml or ~/.config/hcloud-projects/hcloud-projects.yaml)")
	pf.String("logs-level", "Info", "Log level: Trace, Debug, Info, Warning, Error, Off")
	pf.String("logs-file", log.FileStderr, "Log destination: /dev/stderr, /dev/stdout, /dev/null or a file path")
	pf.Bool("profile", false, "Print function timings to stderr on exit")
	pf.Bool("verbose", false, "Print error context and stack traces")
	pf.Duration("timeout", 0, "Overall timeout of the command (0 disables it)")

	root.AddCommand(
		newLoginCmd(),
		newCreateCmd(),
		newDeleteCmd(),
		newIDCmd(),
		newTokenCmd(),
		newListCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on interrupt by main.
func ExecuteContext(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// FormatterConfig returns the error formatting selected by the loaded configuration.
func FormatterConfig() errUtils.FormatterConfig {
	stateMu.Lock()
	defer stateMu.Unlock()
	return formatterConfig
}

// Cleanup flushes error reports, prints timings when profiling and closes the log file.
func Cleanup() {
	errUtils.CloseSentry()

	if perf.Enabled() {
		if err := perf.Report(os.Stderr); err != nil {
			log.Debug("Failed to print timings", "error", err)
		}
	}

	stateMu.Lock()
	closeFn := closeLogOutput
	closeLogOutput = func() error { return nil }
	stateMu.Unlock()

	if err := closeFn(); err != nil {
		log.Debug("Failed to close log file", "error", err)
	}
}

// initConfig loads the configuration for cmd, configures logging, profiling and Sentry, and stores the
// configuration in the command's context.
func initConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")

	flags := make(map[string]*pflag.Flag, len(configFlags))
	for name, key := range configFlags {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			flags[key] = flag
		}
	}

	cfg, err := config.LoadConfig(config.LoadOptions{ConfigFile: configFile, Flags: flags})
	if err != nil {
		return err
	}

	if err := setupLogger(cfg.Logs, cmd.ErrOrStderr()); err != nil {
		return err
	}

	if cfg.Profiler.Enabled {
		perf.Enable()
	}

	if err := errUtils.InitializeSentry(&cfg.Errors.Sentry); err != nil {
		log.Warn("Error reporting is disabled", "error", err)
	}

	stateMu.Lock()
	formatterConfig = errUtils.FormatterConfig{
		Verbose:       cfg.Errors.Format.Verbose,
		Color:         cfg.Errors.Format.Color,
		MaxLineLength: errUtils.DefaultMaxLineLength,
	}
	stateMu.Unlock()

	cmd.SetContext(withConfig(cmd.Context(), cfg))
	log.Trace("Configuration loaded", "command", cmd.CommandPath())
	return nil
}

// setupLogger replaces the default logger. The standard error stream is taken from the command so tests can
// capture it.
func setupLogger(logs schema.Logs, stderr io.Writer) error {
	level, err := log.ParseLogLevel(logs.Level)
	if err != nil {
		return errUtils.Build(err).WithExitCode(errUtils.ExitCodeUsage).Err()
	}

	var (
		output  io.Writer = stderr
		closeFn           = func() error { return nil }
	)
	if logs.File != "" && logs.File != log.FileStderr {
		output, closeFn, err = log.OpenOutput(logs.File)
		if err != nil {
			return err
		}
	}

	logger := log.New()
	logger.SetOutput(output)
	logger.SetLevel(level)
	log.SetDefault(logger)

	stateMu.Lock()
	previous := closeLogOutput
	closeLogOutput = closeFn
	stateMu.Unlock()

	return previous()
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *schema.Configuration) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the configuration loaded for the running command.
func configFrom(cmd *cobra.Command) *schema.Configuration {
	if cfg, ok := cmd.Context().Value(configKey{}).(*schema.Configuration); ok {
		return cfg
	}
	return &schema.Configuration{}
}

// operationContext applies --timeout to the command's context.
func operationContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
