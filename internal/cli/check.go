package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tabletpos/internal/position"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	TabletID string // optional - specific tablet only
}

// CheckTabletResult holds the check result for a single tablet.
type CheckTabletResult struct {
	TabletID   string                `json:"tablet_id"`
	Consistent bool                  `json:"consistent"`
	UnitWrites int                   `json:"unit_writes"`
	NodeWrites int                   `json:"node_writes"`
	Units      []position.UnitChange `json:"units,omitempty"`
	Nodes      []position.NodeChange `json:"nodes,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Tablets       []CheckTabletResult `json:"tablets"`
	TotalTablets  int                 `json:"total_tablets"`
	AllConsistent bool                `json:"all_consistent"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report tablets whose derived fields are stale",
		Long: `Recompute every tablet without writing and report the rows whose stored
positions differ from the recomputed ones.

Exit codes:
  0 - Every tablet is consistent
  1 - At least one tablet has stale derived fields or violates integrity
  2 - Command error (database not found, unknown tablet, etc.)

Examples:
  tabletpos check
  tabletpos check --tablet BM-12345 --verbose
  tabletpos check --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TabletID, "tablet", "", "check specific tablet only")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rc := opts.newRecomputer(true)

	var reports []position.Report
	if opts.TabletID != "" {
		report, err := st.RecomputeTablet(ctx, rc, opts.TabletID)
		if err != nil {
			return reportRecomputeError(formatter, opts.TabletID, err)
		}
		reports = []position.Report{report}
	} else {
		reports, err = st.RecomputeAll(ctx, rc)
		if err != nil {
			return reportRecomputeError(formatter, failedTablet(ctx, st, reports), err)
		}
	}

	result := CheckResult{
		Tablets:       make([]CheckTabletResult, 0, len(reports)),
		TotalTablets:  len(reports),
		AllConsistent: true,
	}
	for _, r := range reports {
		tr := CheckTabletResult{
			TabletID:   r.TabletID,
			Consistent: r.Writes() == 0,
			UnitWrites: r.UnitWrites,
			NodeWrites: r.NodeWrites,
			Units:      r.Plan.Units,
			Nodes:      r.Plan.Nodes,
		}
		if !tr.Consistent {
			result.AllConsistent = false
		}
		result.Tablets = append(result.Tablets, tr)
	}

	if formatter.JSON() {
		return outputCheckJSON(formatter, result)
	}
	return outputCheckText(formatter, result, opts.Verbose)
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(formatter *OutputFormatter, result CheckResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllConsistent {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    CodeDrift,
			Message: "derived fields are stale",
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if !result.AllConsistent {
		// Drift = exit code 1
		return NewExitError(ExitFailure, "derived fields are stale")
	}
	return nil
}

// outputCheckText outputs the check result as text.
func outputCheckText(formatter *OutputFormatter, result CheckResult, verbose bool) error {
	w := formatter.Writer

	if result.TotalTablets == 0 {
		fmt.Fprintln(w, "No tablets found in database.")
		return nil
	}

	fmt.Fprintf(w, "Check Summary: %d tablet(s)\n", result.TotalTablets)
	fmt.Fprintln(w)

	for _, tablet := range result.Tablets {
		if tablet.Consistent {
			fmt.Fprintf(w, "✓ %s\n", tablet.TabletID)
			continue
		}

		fmt.Fprintf(w, "✗ %s: %d unit(s), %d node(s) stale\n", tablet.TabletID, tablet.UnitWrites, tablet.NodeWrites)
		if verbose {
			writePlanText(w, position.Plan{Units: tablet.Units, Nodes: tablet.Nodes})
		}
	}
	fmt.Fprintln(w)

	if result.AllConsistent {
		fmt.Fprintln(w, "✓ All tablets consistent")
		return nil
	}

	fmt.Fprintln(w, "✗ Stale derived fields found (run 'tabletpos recompute --all')")
	// Drift = exit code 1
	return NewExitError(ExitFailure, "derived fields are stale")
}
