package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/cli/ui"
	"github.com/ai-guards/ai-guards/internal/project"
	"github.com/ai-guards/ai-guards/internal/scaffold"
)

var errInitAborted = errors.New("init aborted")

func newInitCommand(opts *globalOptions) *cobra.Command {
	var (
		folder string
		force  bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize ai-guards in the current project",
		Long: `Create the ai-guards layout in the project root:

  .ai-guards/rules/{guidelines,security,general}
  .ai-guards/templates
  .plans (or the folder given with --folder)

A sample rule and template are written, then the rule registry is synced.
Existing files are kept unless --force is given.

Examples:
  ai-guards init
  ai-guards init --folder docs/plans
  ai-guards init --force --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(hereRoot)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("folder") {
				folder = a.cfg.Plans.Folder
			}
			if err := scaffold.ValidateFolderName(folder); err != nil {
				return err
			}

			if force && !yes && project.IsInitialized(a.fs, a.root) {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "Overwrite existing ai-guards files?",
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					return errInitAborted
				}
			}

			if !force && project.IsInitialized(a.fs, a.root) {
				fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("ai-guards is already initialized here; existing files are kept (use --force to overwrite)", a.noColor))
			}

			return runInit(cmd, a, scaffold.LayoutOptions{PlansFolder: folder, Force: force})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", project.PlansDir, "Plans folder, relative to the project root")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing sample files")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runInit(cmd *cobra.Command, a *app, layout scaffold.LayoutOptions) error {
	out := cmd.OutOrStdout()
	info := color.New(color.FgCyan)
	if a.noColor {
		info.DisableColor()
	}

	info.Fprintln(out, "Initializing ai-guards...")

	created, err := scaffold.WriteLayout(a.fs, a.root, layout)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	rel := make([]string, 0, len(created))
	for _, path := range created {
		if r, err := filepath.Rel(a.root, path); err == nil {
			path = r
		}
		rel = append(rel, filepath.ToSlash(path))
	}
	ui.List(out, rel, a.noColor)
	a.logger.Info("scaffolded project", zap.String("root", a.root), zap.Int("created", len(created)))

	result, err := a.store.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync rule registry: %w", err)
	}
	reportFailures(cmd, a, result)

	ui.WriteSuccess(out, fmt.Sprintf("ai-guards initialized with %d rule(s) indexed", len(result.Registry.Rules)), a.noColor)
	return nil
}
