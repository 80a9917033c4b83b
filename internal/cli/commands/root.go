package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/cli/config"
	"github.com/ai-guards/ai-guards/internal/cli/ui"
	"github.com/ai-guards/ai-guards/internal/logging"
	"github.com/ai-guards/ai-guards/internal/project"
	"github.com/ai-guards/ai-guards/internal/registry"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// ErrNotInitialized is returned by commands that need an ai-guards project
// when none is found.
var ErrNotInitialized = errors.New("ai-guards project not initialized")

type notInitializedError struct {
	dir string
}

func (e *notInitializedError) Error() string {
	return fmt.Sprintf("%s: no project found at or above %s", ErrNotInitialized, e.dir)
}

func (e *notInitializedError) Unwrap() error { return ErrNotInitialized }

// RuleNotFoundError is returned by `rules show` for an unknown id.
type RuleNotFoundError struct {
	ID          string
	Suggestions []string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule %q not found", e.ID)
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	fs         afero.Fs
	root       string
	configFile string
	logLevel   string
	noColor    bool
}

// app is the per-invocation state built from globalOptions.
type app struct {
	fs      afero.Fs
	dir     string
	root    string
	cfg     *config.Config
	logger  *zap.Logger
	store   *registry.Store
	noColor bool
}

// rootMode selects how newApp picks the project root.
type rootMode int

const (
	// discoverRoot walks up from the working directory and falls back to it.
	discoverRoot rootMode = iota
	// requireRoot walks up and fails with ErrNotInitialized when nothing is found.
	requireRoot
	// hereRoot uses the working directory as is.
	hereRoot
)

// newApp resolves the project root, loads configuration and builds the
// logger and registry store. --root, when given, replaces both the working
// directory and discovery.
func (o *globalOptions) newApp(mode rootMode) (*app, error) {
	dir := o.root
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	root := dir
	switch {
	case mode == hereRoot:
	case o.root != "":
		if mode == requireRoot && !project.IsInitialized(o.fs, root) {
			return nil, &notInitializedError{dir: dir}
		}
	default:
		if found, ok := project.FindProjectRoot(o.fs, dir); ok {
			root = found
		} else if mode == requireRoot {
			return nil, &notInitializedError{dir: dir}
		}
	}

	cfg, err := config.Load(root, o.configFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		NoColor: o.noColor,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved project", zap.String("dir", dir), zap.String("root", root))

	return &app{
		fs:      o.fs,
		dir:     dir,
		root:    root,
		cfg:     cfg,
		logger:  logger,
		store:   registry.NewStore(o.fs, root, logger),
		noColor: o.noColor,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(afero.NewOsFs())
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	opts := &globalOptions{fs: fs}

	rootCmd := &cobra.Command{
		Use:   "ai-guards",
		Short: "Manage AI coding rules and implementation plans",
		Long: `ai-guards keeps the rules that guide AI coding assistants in
.ai-guards/rules and indexes them into ai-guards.json.

Rules are markdown files with optional front matter:

  ---
  description: RPC service conventions
  globs: *.service.ts, *.rpc.ts
  alwaysApply: false
  ---

Rules with alwaysApply: true apply everywhere, rules with globs attach to
matching files and the rest are applied on request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", "", "Project root (skips discovery from the working directory)")
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: <root>/.ai-guards.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newPlanCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))
	rootCmd.AddCommand(newPlansCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the ai-guards version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("ai-guards version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		return err
	}
	return nil
}

func printError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	noColor := color.NoColor

	var notInit *notInitializedError
	var notFound *RuleNotFoundError
	switch {
	case errors.As(err, &notInit):
		fmt.Fprint(w, ui.NotInitialized(notInit.dir, noColor))
	case errors.As(err, &notFound):
		fmt.Fprint(w, ui.RuleNotFound(notFound.ID, notFound.Suggestions, noColor))
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(w, "Error: %v\n", err)
	}
}
