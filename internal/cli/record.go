package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"earnings-ledger/internal/util"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Notes string
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <amount>",
		Short: "Record today's earning",
		Long: `Record today's earning.

Anything above the daily goal first pays the oldest empty days of
the current month, one goal per day, and only then goes to savings.

Examples:
  earnings-ledger record 28000
  earnings-ledger record 70000 --notes "market day"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Notes, "notes", "n", "", "free-text notes")
	return cmd
}

func runRecord(cmd *cobra.Command, opts *RecordOptions, raw string) error {
	out := opts.formatter(cmd)

	amount, err := util.ParseAmount(raw)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid amount", err)
	}

	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	plan, err := a.engine.RecordEarning(ctx, amount, opts.Notes, a.engine.Today())
	if err != nil {
		return engineExit("record earning", err)
	}

	return out.Success(plan, func(w io.Writer) {
		fmt.Fprintf(w, "Recorded %s for %s (goal %s)\n",
			util.FormatAmount(plan.Entry.Amount),
			plan.Entry.Date.Format("2006-01-02"),
			util.FormatAmount(plan.Entry.Goal))
		for _, p := range plan.Payments {
			fmt.Fprintf(w, "  paid %s toward %s\n", util.FormatAmount(p.Amount), p.Date.Format("2006-01-02"))
		}
		if plan.SavingsCredit.IsPositive() {
			fmt.Fprintf(w, "  saved %s, savings now %s\n", util.FormatAmount(plan.SavingsCredit), util.FormatAmount(plan.Savings))
		}
		if plan.Leftover.IsPositive() {
			fmt.Fprintf(w, "  %s left over after clearing all debt was not kept\n", util.FormatAmount(plan.Leftover))
		}
	})
}
