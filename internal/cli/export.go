package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/tablet"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	TabletID string
}

// ExportResult is one tablet with its stored derived fields.
type ExportResult struct {
	Tablet  tablet.Tablet           `json:"tablet"`
	Units   []tablet.EpigraphicUnit `json:"units"`
	Markups []tablet.Markup         `json:"markups"`
	Nodes   []tablet.DiscourseNode  `json:"nodes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored rows and derived fields of a tablet",
		Long: `Print every epigraphic unit and discourse node of a tablet in stored
order with its derived position fields. Nothing is recomputed; run check to
find stale values.

Examples:
  tabletpos export --tablet BM-12345
  tabletpos export --tablet BM-12345 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TabletID, "tablet", "", "tablet to export (required)")
	_ = cmd.MarkFlagRequired("tablet")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := st.ReadTablet(ctx, opts.TabletID)
	if errors.Is(err, sql.ErrNoRows) {
		if formatter.JSON() {
			if encErr := formatter.Error(CodeNotFound, fmt.Sprintf("tablet %s not found", opts.TabletID), nil); encErr != nil {
				return encErr
			}
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("tablet %s not found", opts.TabletID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read tablet", err)
	}

	snap, err := position.Load(ctx, st, opts.TabletID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read rows", err)
	}

	result := ExportResult{Tablet: t, Units: snap.Units, Markups: snap.Markups, Nodes: snap.Nodes}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputExportText(formatter.Writer, result)
	return nil
}

// outputExportText prints one row per line with "-" for null fields.
func outputExportText(w io.Writer, result ExportResult) {
	fmt.Fprintf(w, "Tablet %s", result.Tablet.ID)
	if result.Tablet.Designation != "" {
		fmt.Fprintf(w, " (%s)", result.Tablet.Designation)
	}
	fmt.Fprintln(w)

	markups := position.IndexMarkups(result.Markups)

	fmt.Fprintf(w, "\nUnits: %d\n", len(result.Units))
	for _, u := range result.Units {
		fmt.Fprintf(w, "  %-12s %-18s %-10s %s", u.ID, u.Kind, u.Reading, formatUnitPositions(u.UnitPositions))
		for _, m := range markups[u.ID] {
			fmt.Fprintf(w, " [%s", m.Kind)
			if m.NumericValue.Valid {
				fmt.Fprintf(w, "=%d", m.NumericValue.Int64)
			}
			fmt.Fprint(w, "]")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nDiscourse nodes: %d\n", len(result.Nodes))
	for _, n := range result.Nodes {
		parent := n.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "  %-12s %-14s parent=%-10s %s\n", n.ID, n.Kind, parent, formatNodeOrdinals(n.NodeOrdinals))
	}
}

func formatUnitPositions(p tablet.UnitPositions) string {
	return fmt.Sprintf("obj=%s tab=%s lin=%s line=%s", p.ObjectOnTablet, p.CharOnTablet, p.CharOnLine, p.LineNumber)
}

func formatNodeOrdinals(o tablet.NodeOrdinals) string {
	return fmt.Sprintf("obj=%s word=%s child=%s", o.ObjectInText, o.WordOnTablet, o.ChildNum)
}
