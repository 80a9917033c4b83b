package commands

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/cli/ui"
	"github.com/ai-guards/ai-guards/internal/project"
	"github.com/ai-guards/ai-guards/internal/scaffold"
)

type planFlags struct {
	title             string
	author            string
	scope             string
	functionalReqs    []string
	nonFunctionalReqs []string
	guidelines        string
	threatModel       []string
	steps             []string
	noInput           bool
}

func newPlanCommand(opts *globalOptions) *cobra.Command {
	f := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a new implementation plan",
		Long: `Generate a plan document in the project's plans folder.

Fields not given as flags are asked for interactively. List flags may be
repeated, one item per flag.

Examples:
  ai-guards plan
  ai-guards plan --title "Add login flow" --scope "Dashboard sessions" \
    --req "Users can log in" --req "Users can log out" \
    --guidelines "bcrypt, gorilla/sessions" --step "Write handler" --no-input`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(discoverRoot)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("author") {
				f.author = a.cfg.Plans.Author
			}

			plan, err := collectPlan(cmd, f)
			if err != nil {
				return err
			}

			dir, ok := project.FindPlansDirectory(a.fs, a.dir)
			if !ok {
				dir = project.DefaultPlansPath(a.root, a.cfg.Plans.Folder)
				ui.WriteMessage(cmd.ErrOrStderr(), ui.MessageOptions{
					Level:        ui.LevelWarning,
					Problem:      "No plans directory found.",
					Consequence:  "Creating " + dir + ".",
					HelpCommands: []string{"Set up the project layout: ai-guards init"},
					NoColor:      a.noColor,
				})
			}

			path, err := scaffold.WritePlan(a.fs, dir, plan)
			if err != nil {
				return err
			}
			a.logger.Info("plan created", zap.String("id", plan.ID), zap.String("path", path))

			out := cmd.OutOrStdout()
			ui.WriteSuccess(out, "Plan created: "+plan.Filename(), a.noColor)
			kv := ui.NewKeyValueTable(out, a.noColor)
			kv.AddRow("Plan ID", plan.ID)
			kv.AddRow("Saved to", path)
			kv.Render()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.title, "title", "t", "", "Title for the plan")
	flags.StringVarP(&f.author, "author", "a", "", "Author of the plan (default from plans.author)")
	flags.StringVar(&f.scope, "scope", "", "Scope of the plan")
	flags.StringArrayVar(&f.functionalReqs, "req", nil, "Functional requirement (repeatable)")
	flags.StringArrayVar(&f.nonFunctionalReqs, "nfr", nil, "Non-functional requirement (repeatable)")
	flags.StringVar(&f.guidelines, "guidelines", "", "Guidelines and packages, comma separated")
	flags.StringArrayVar(&f.threatModel, "threat", nil, "Threat model entry (repeatable)")
	flags.StringArrayVar(&f.steps, "step", nil, "Execution plan step (repeatable)")
	flags.BoolVar(&f.noInput, "no-input", false, "Never prompt; fail if the title is missing")

	return cmd
}

// collectPlan builds a plan from flags, prompting for whatever is missing
// unless --no-input is set.
func collectPlan(cmd *cobra.Command, f *planFlags) (*scaffold.Plan, error) {
	changed := cmd.Flags().Changed
	title, scope := f.title, f.scope

	if !f.noInput {
		if title == "" {
			if err := survey.AskOne(&survey.Input{Message: "Title for the plan:"}, &title, survey.WithValidator(survey.Required)); err != nil {
				return nil, err
			}
		}
		if !changed("author") {
			if err := survey.AskOne(&survey.Input{Message: "Author of the plan:", Default: f.author}, &f.author); err != nil {
				return nil, err
			}
		}
		if scope == "" {
			if err := survey.AskOne(&survey.Input{Message: "Scope of the plan:"}, &scope, survey.WithValidator(survey.Required)); err != nil {
				return nil, err
			}
		}
	}

	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("plan title is required (use --title)")
	}

	plan := scaffold.NewPlan(title, f.author)
	plan.Scope = scope
	plan.FunctionalReqs = f.functionalReqs
	plan.NonFunctionalReqs = f.nonFunctionalReqs
	plan.Guidelines = scaffold.SplitCommas(f.guidelines)
	plan.ThreatModel = f.threatModel
	plan.ExecutionPlan = f.steps

	if f.noInput {
		return plan, nil
	}

	lists := []struct {
		flag    string
		message string
		target  *[]string
	}{
		{"req", "Functional requirements (one per line):", &plan.FunctionalReqs},
		{"nfr", "Non-functional requirements (one per line):", &plan.NonFunctionalReqs},
		{"threat", "Threat model stub (one per line):", &plan.ThreatModel},
		{"step", "Execution plan steps (one per line):", &plan.ExecutionPlan},
	}
	for _, l := range lists {
		if changed(l.flag) {
			continue
		}
		var text string
		if err := survey.AskOne(&survey.Multiline{Message: l.message}, &text); err != nil {
			return nil, err
		}
		*l.target = scaffold.SplitLines(text)
	}

	if !changed("guidelines") {
		var text string
		if err := survey.AskOne(&survey.Input{Message: "Guidelines & packages (comma separated):"}, &text); err != nil {
			return nil, err
		}
		plan.Guidelines = scaffold.SplitCommas(text)
	}

	return plan, nil
}
