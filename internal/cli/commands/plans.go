package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-guards/ai-guards/internal/project"
)

func newPlansCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Locate the plans folder and project root",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the resolved plans directory",
		Long: `Print the plans directory for the working directory.

A folder named in .ai-guards-config wins, then .plans, then the legacy
.ai-guards/plans. Parent directories are searched up to ` + fmt.Sprint(project.MaxSearchDepth) + ` levels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(hereRoot)
			if err != nil {
				return err
			}
			defer a.close()

			path, ok := project.FindPlansDirectory(a.fs, a.dir)
			if !ok {
				return &notInitializedError{dir: a.dir}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "root",
		Short: "Print the project root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(hereRoot)
			if err != nil {
				return err
			}
			defer a.close()

			root, ok := project.FindProjectRoot(a.fs, a.dir)
			if !ok {
				return &notInitializedError{dir: a.dir}
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	})

	return cmd
}
