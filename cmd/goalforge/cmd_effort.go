package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/goal-forge/internal/app/effort"
	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
)

func (c *cli) effortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effort",
		Short: "Log and inspect effort",
	}

	var hours, minutes float64
	logCmd := &cobra.Command{
		Use:   "log <goal-id> <date|today> [effort]",
		Short: "Record effort for a day, replacing what was logged for that day",
		Long: `Record effort for a day. Logging the same day again replaces the earlier
value. Duration goals count minutes; use --hours and --minutes instead of
the effort argument to enter time. Past days cannot be logged.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := c.checkDate(args[1])
			if err != nil {
				return err
			}

			var amount float64
			switch {
			case len(args) == 3:
				if amount, err = parseNumber("effort", args[2]); err != nil {
					return err
				}
			case cmd.Flags().Changed("hours") || cmd.Flags().Changed("minutes"):
				amount = hours*60 + minutes
			default:
				return &domain.ValidationError{Field: "effort", Message: "give an effort value or --hours/--minutes"}
			}

			out, err := c.app.effort.Commit(cmd.Context(), effort.CommitInput{
				GoalID: domain.GoalID(args[0]),
				Date:   date,
				Effort: amount,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Goal == nil {
				fmt.Fprintln(w, "Effort saved. Run 'goalforge goals list' to see the updated totals.")
				return nil
			}
			fmt.Fprintf(w, "Logged %s on %s for %q: %s invested, %s remaining\n",
				out.Goal.FormatEffort(amount), date, out.Goal.Name,
				out.Goal.FormatEffort(out.Totals.Invested), out.Goal.FormatEffort(out.Totals.Remaining))
			return nil
		},
	}
	logCmd.Flags().Float64Var(&hours, "hours", 0, "hours spent (duration goals)")
	logCmd.Flags().Float64Var(&minutes, "minutes", 0, "minutes spent (duration goals)")

	show := &cobra.Command{
		Use:   "show <goal-id>",
		Short: "Print a goal's ledger and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.app.effort.Show(cmd.Context(), domain.GoalID(args[0]))
			if err != nil {
				return err
			}
			g, t := view.Goal, view.Totals

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s)\n", g.Name, g.Status.Normalized())
			for _, e := range g.ProgressCalendar {
				fmt.Fprintf(w, "  %s  %s\n", e.Date, g.FormatEffort(e.Effort))
			}
			fmt.Fprintf(w, "Invested %s of %s, %s remaining\n",
				g.FormatEffort(t.Invested), g.FormatEffort(t.Total), g.FormatEffort(t.Remaining))
			return nil
		},
	}

	cmd.AddCommand(logCmd, show)
	return cmd
}

// checkDate resolves "today" and refuses days before today in local time.
func (c *cli) checkDate(s string) (string, error) {
	today := c.now().Format(ledger.DateLayout)
	if s == "today" {
		return today, nil
	}
	if _, err := time.Parse(ledger.DateLayout, s); err != nil {
		return "", &domain.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if s < today {
		return "", &domain.ValidationError{Field: "date", Message: "cannot log effort for a past day"}
	}
	return s, nil
}
