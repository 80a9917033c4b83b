package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/cli/ui"
	"github.com/ai-guards/ai-guards/internal/registry"
	"github.com/ai-guards/ai-guards/internal/rules"
	"github.com/ai-guards/ai-guards/internal/watch"
)

func newRulesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the rule registry",
		Long: `Manage the rule registry stored in ai-guards.json.

Rules live under .ai-guards/rules as .md or .markdown files. The registry
indexes each rule's id, path and type so assistants can pick the rules that
apply to the files they touch.`,
	}

	cmd.AddCommand(newRulesAddCommand(opts))
	cmd.AddCommand(newRulesSyncCommand(opts))
	cmd.AddCommand(newRulesListCommand(opts))
	cmd.AddCommand(newRulesShowCommand(opts))

	return cmd
}

func newRulesAddCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add FILE...",
		Short: "Add or update rules in the registry",
		Long: `Parse each rule file and insert or replace its registry entry.

Relative paths are resolved against the working directory. An entry with the
same id keeps its position in the registry.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(requireRoot)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.EnsureExists(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				path := arg
				if !filepath.IsAbs(path) {
					path = filepath.Join(a.dir, path)
				}

				meta, err := a.store.AddRule(path)
				if err != nil {
					return fmt.Errorf("failed to add rule %s: %w", arg, err)
				}
				ui.WriteSuccess(out, fmt.Sprintf("Added rule %s (%s)", meta.ID, meta.RuleType), a.noColor)
			}
			return nil
		},
	}
}

func newRulesSyncCommand(opts *globalOptions) *cobra.Command {
	var watchRules bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the registry from the rules directory",
		Long: `Scan .ai-guards/rules for rule files and rewrite ai-guards.json from
scratch. Files that cannot be read are reported and left out.

With --watch, the registry is rebuilt whenever a rule file changes until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(requireRoot)
			if err != nil {
				return err
			}
			defer a.close()

			if err := runSync(cmd, a); err != nil {
				return err
			}
			if !watchRules {
				return nil
			}
			return watchSync(cmd, a)
		},
	}

	cmd.Flags().BoolVarP(&watchRules, "watch", "w", false, "Keep running and sync on every rule change")

	return cmd
}

func runSync(cmd *cobra.Command, a *app) error {
	result, err := a.store.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync rule registry: %w", err)
	}
	reportFailures(cmd, a, result)
	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Registry synced: %d rule(s)", len(result.Registry.Rules)), a.noColor)
	return nil
}

func watchSync(cmd *cobra.Command, a *app) error {
	if err := a.fs.MkdirAll(a.store.RulesDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.NewRuleWatcher(a.store.RulesDir(), a.cfg.Watch.Debounce, a.logger, func(files []string) error {
		a.logger.Info("rules changed", zap.Strings("paths", files))
		return runSync(cmd, a)
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.Info("Watching "+a.store.RulesDir()+" for changes. Press Ctrl+C to stop.", a.noColor))

	<-ctx.Done()

	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	return nil
}

func reportFailures(cmd *cobra.Command, a *app, result registry.SyncResult) {
	if len(result.Failures) == 0 {
		return
	}
	paths := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		paths[i] = displayPath(a.root, f.Path)
	}
	fmt.Fprint(cmd.ErrOrStderr(), ui.SyncFailures(paths, a.noColor))
}

func newRulesListCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(requireRoot)
			if err != nil {
				return err
			}
			defer a.close()

			reg := a.store.Load()
			out := cmd.OutOrStdout()

			if asJSON {
				data, err := registry.Encode(reg)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			if len(reg.Rules) == 0 {
				fmt.Fprint(out, ui.Info("No rules registered. Add rules under .ai-guards/rules and run: ai-guards rules sync", a.noColor))
				return nil
			}

			table := ui.NewTable(out, []string{"ID", "TYPE", "PATH", "GLOBS"}, a.noColor)
			for _, meta := range reg.Rules {
				table.AddRow(meta.ID, string(meta.RuleType), meta.Path, strings.Join(meta.Globs, ", "))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the registry as JSON")

	return cmd
}

func newRulesShowCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one registered rule",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			a, err := opts.newApp(requireRoot)
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			defer a.close()
			return a.store.Load().IDs(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(requireRoot)
			if err != nil {
				return err
			}
			defer a.close()

			reg := a.store.Load()
			meta, ok := reg.Rule(args[0])
			if !ok {
				return &RuleNotFoundError{ID: args[0], Suggestions: ui.FindSimilar(args[0], reg.IDs(), nil)}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(meta, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			ui.Header(out, meta.ID, a.noColor)
			writeRule(out, meta, a.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entry as JSON")

	return cmd
}

func writeRule(out io.Writer, meta rules.RuleMeta, noColor bool) {
	kv := ui.NewKeyValueTable(out, noColor)
	kv.AddRow("Path", meta.Path)
	kv.AddRow("Type", string(meta.RuleType))
	if meta.Description != nil {
		kv.AddRow("Description", *meta.Description)
	}
	if meta.Globs != nil {
		kv.AddRow("Globs", strings.Join(meta.Globs, ", "))
	}
	if len(meta.FileExtensions) > 0 {
		kv.AddRow("Extensions", strings.Join(meta.FileExtensions, ", "))
	}
	if meta.AlwaysApply != nil {
		kv.AddRow("Always apply", strconv.FormatBool(*meta.AlwaysApply))
	}
	kv.Render()
}

// displayPath shortens path to be relative to root when it lies inside it.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
