package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/goal-forge/internal/app/goals"
	"github.com/PabloGalante/goal-forge/internal/domain"
)

func (c *cli) goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List and manage goals",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals in their saved order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gs, err := c.app.goals.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(gs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals yet. Add one with: goalforge goals add")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tINVESTED\tREMAINING\tESTIMATED")
			for _, g := range gs {
				t := g.Totals()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					g.ID, g.Name, g.Status.Normalized(),
					g.FormatEffort(t.Invested), g.FormatEffort(t.Remaining), g.FormatEffort(t.Total))
			}
			return tw.Flush()
		},
	}

	var progressType string
	add := &cobra.Command{
		Use:   "add <name> <estimated-effort>",
		Short: "Add a goal",
		Long: `Add a goal. Duration goals (--type dur) take the estimate in minutes;
count goals (--type cnt) take a plain count.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := parseNumber("estimated effort", args[1])
			if err != nil {
				return err
			}
			g, err := c.app.goals.Add(cmd.Context(), goals.AddInput{
				Name:            args[0],
				ProgressType:    progressType,
				EstimatedEffort: est,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&progressType, "type", "t", "dur", "progress type: dur or cnt")

	var (
		editName string
		editType string
		editEst  float64
	)
	edit := &cobra.Command{
		Use:   "edit <goal-id>",
		Short: "Change a goal's name, type or estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := goals.EditInput{Name: editName, ProgressType: editType}
			if cmd.Flags().Changed("estimate") {
				in.EstimatedEffort = &editEst
			}
			g, err := c.app.goals.Edit(cmd.Context(), domain.GoalID(args[0]), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", g.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&editName, "name", "", "new name")
	edit.Flags().StringVar(&editType, "type", "", "new progress type: dur or cnt")
	edit.Flags().Float64Var(&editEst, "estimate", 0, "new estimated effort")

	del := &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal and its ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.goals.Delete(cmd.Context(), domain.GoalID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <goal-id>...",
		Short: "Move the listed goals to the top, in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.GoalID, len(args))
			for i, a := range args {
				ids[i] = domain.GoalID(a)
			}
			return c.app.goals.Reorder(cmd.Context(), ids)
		},
	}

	cmd.AddCommand(list, add, edit, del, reorder,
		c.statusChangeCmd("start", "Start a goal so it accepts effort", (*goals.Service).Start),
		c.statusChangeCmd("pause", "Pause an active goal", (*goals.Service).Pause),
		c.statusChangeCmd("resume", "Resume a paused goal", (*goals.Service).Resume),
		c.statusChangeCmd("complete", "Mark a goal completed", (*goals.Service).Complete),
	)
	return cmd
}

// statusChange is a goals.Service transition taken as a method expression,
// since the service only exists once PersistentPreRunE has run.
type statusChange func(svc *goals.Service, ctx context.Context, id domain.GoalID) (*domain.Goal, error)

func (c *cli) statusChangeCmd(use, short string, change statusChange) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <goal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := change(c.app.goals, cmd.Context(), domain.GoalID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", g.Name, g.Status.Normalized())
			return nil
		},
	}
}

func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a number", s)}
	}
	return v, nil
}
