package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/store"
)

// RecomputeOptions holds flags for the recompute command.
type RecomputeOptions struct {
	*RootOptions
	TabletID string
	All      bool
	DryRun   bool
}

// RecomputeResult holds the overall recompute result.
type RecomputeResult struct {
	Tablets     []position.Report `json:"tablets"`
	TotalWrites int               `json:"total_writes"`
	DryRun      bool              `json:"dry_run"`
}

// NewRecomputeCommand creates the recompute command.
func NewRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecomputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute derived position fields",
		Long: `Recompute object and character offsets, line numbers and discourse
ordinals of one tablet or of every tablet, writing back only the rows whose
values changed. Each tablet is recomputed in its own transaction.

Exit codes:
  0 - Recompute finished
  1 - A tablet violates row integrity (nothing written for it)
  2 - Command error (database not found, unknown tablet, etc.)

Examples:
  tabletpos recompute --tablet BM-12345
  tabletpos recompute --all --dry-run
  tabletpos recompute --all --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// --dry-run may also come from recompute.dry_run in the config
			opts.DryRun = opts.Config.Recompute.DryRun
			return runRecompute(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TabletID, "tablet", "", "recompute a single tablet")
	cmd.Flags().BoolVar(&opts.All, "all", false, "recompute every tablet")
	cmd.Flags().Bool("dry-run", false, "compute changes without writing them")
	cmd.MarkFlagsMutuallyExclusive("tablet", "all")
	cmd.MarkFlagsOneRequired("tablet", "all")

	return cmd
}

func runRecompute(ctx context.Context, opts *RecomputeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rc := opts.newRecomputer(opts.DryRun)

	var reports []position.Report
	if opts.All {
		reports, err = st.RecomputeAll(ctx, rc)
		if err != nil {
			return reportRecomputeError(formatter, failedTablet(ctx, st, reports), err)
		}
	} else {
		formatter.VerboseLog("Recomputing tablet %s", opts.TabletID)
		report, err := st.RecomputeTablet(ctx, rc, opts.TabletID)
		if err != nil {
			return reportRecomputeError(formatter, opts.TabletID, err)
		}
		reports = []position.Report{report}
	}

	result := RecomputeResult{Tablets: reports, DryRun: opts.DryRun}
	for _, r := range reports {
		result.TotalWrites += r.Writes()
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputRecomputeText(formatter.Writer, result, opts.Verbose)
	return nil
}

// failedTablet names the tablet RecomputeAll stopped at: the one after the
// last reported tablet in ID order.
func failedTablet(ctx context.Context, st *store.Store, done []position.Report) string {
	ids, err := st.ListTabletIDs(ctx)
	if err != nil || len(done) >= len(ids) {
		return ""
	}
	return ids[len(done)]
}

func reportRecomputeError(formatter *OutputFormatter, tabletID string, err error) error {
	exitErr := recomputeExitError(tabletID, err)
	if formatter.JSON() {
		if encErr := formatter.Error(errorCode(err), exitErr.Error(), map[string]string{"tablet_id": tabletID}); encErr != nil {
			return encErr
		}
	}
	return exitErr
}

// outputRecomputeText outputs the recompute result as text.
func outputRecomputeText(w io.Writer, result RecomputeResult, verbose bool) {
	if len(result.Tablets) == 0 {
		fmt.Fprintln(w, "No tablets found in database.")
		return
	}

	verb := "wrote"
	if result.DryRun {
		verb = "would write"
	}

	for _, r := range result.Tablets {
		fmt.Fprintf(w, "%s: %d unit(s), %d node(s), %s %d row(s)\n",
			r.TabletID, r.Units, r.Nodes, verb, r.Writes())
		if verbose {
			writePlanText(w, r.Plan)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Recompute Summary: %d tablet(s), %s %d row(s)\n", len(result.Tablets), verb, result.TotalWrites)
}

// writePlanText lists every changed row of a plan, old -> new.
func writePlanText(w io.Writer, plan position.Plan) {
	for _, c := range plan.Units {
		fmt.Fprintf(w, "  unit %s: %s -> %s\n", c.ID, formatUnitPositions(c.Old), formatUnitPositions(c.New))
	}
	for _, c := range plan.Nodes {
		fmt.Fprintf(w, "  node %s: %s -> %s\n", c.ID, formatNodeOrdinals(c.Old), formatNodeOrdinals(c.New))
	}
}
