package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"earnings-ledger/internal/util"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Month string // YYYY-MM, empty for the current month
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly statistics",
		Long: `Show statistics for one month.

Goal and debt totals use the daily goal in force now.

Examples:
  earnings-ledger stats
  earnings-ledger stats --month 2025-02 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Month, "month", "m", "", "month as YYYY-MM (default current month)")
	return cmd
}

func runStats(cmd *cobra.Command, opts *StatsOptions) error {
	out := opts.formatter(cmd)

	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	today := a.engine.Today()
	month := today
	if opts.Month != "" {
		if month, err = util.ParseMonth(opts.Month, a.engine.Location()); err != nil {
			return WrapExitError(ExitFailure, "invalid month", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := a.engine.MonthlyStatistics(ctx, month, today)
	if err != nil {
		return engineExit("compute statistics", err)
	}

	return out.Success(st, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Month\t%s\n", st.Month.Format("2006-01"))
		fmt.Fprintf(tw, "Daily goal\t%s\n", util.FormatAmount(st.DailyGoal))
		fmt.Fprintf(tw, "Days\t%d passed, %d tracked, %d missed\n", st.DaysPassed, st.DaysTracked, st.DaysMissed)
		fmt.Fprintf(tw, "Earned\t%s of %s\n", util.FormatAmount(st.TotalEarned), util.FormatAmount(st.TotalGoal))
		fmt.Fprintf(tw, "Debt\t%s\n", util.FormatAmount(st.TotalDebt))
		fmt.Fprintf(tw, "Expenses\t%s\n", util.FormatAmount(st.TotalExpenses))
		fmt.Fprintf(tw, "Net\t%s\n", util.FormatAmount(st.NetProfit))
		fmt.Fprintf(tw, "Average\t%s\n", util.FormatAmount(st.AverageDaily))
		fmt.Fprintf(tw, "Best / worst\t%s / %s\n", util.FormatAmount(st.BestDay), util.FormatAmount(st.WorstDay))
		_ = tw.Flush()
	})
}

// NewStreakCommand creates the streak command.
func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show how many days in a row ending today met the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			today := a.engine.Today()
			streak, err := a.engine.GoalStreak(ctx, today)
			if err != nil {
				return engineExit("compute streak", err)
			}

			data := map[string]any{"streak": streak, "today": today.Format("2006-01-02")}
			return out.Success(data, func(w io.Writer) {
				fmt.Fprintf(w, "%d day streak\n", streak)
			})
		},
	}
}
