package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tabletpos/internal/fixture"
	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	NoRecompute bool
}

// ImportTabletResult holds the import result for one fixture file.
type ImportTabletResult struct {
	File        string           `json:"file"`
	TabletID    string           `json:"tablet_id"`
	Designation string           `json:"designation,omitempty"`
	Units       int              `json:"units"`
	Markups     int              `json:"markups"`
	Nodes       int              `json:"nodes"`
	Recompute   *position.Report `json:"recompute,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <fixture>...",
		Short: "Import tablet fixtures and recompute them",
		Long: `Import tablets described in YAML (.yaml, .yml) or CUE (.cue) fixture files.

Each fixture is validated against the tablet schema, then written and
recomputed in one transaction (replacing any tablet with the same ID).
Rows without an id get a generated UUIDv7.

Exit codes:
  0 - All fixtures imported
  2 - Command error (invalid fixture, database not found, etc.)

Examples:
  tabletpos import tablets/bm-12345.yaml
  tabletpos import tablets/*.cue --no-recompute`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoRecompute, "no-recompute", false, "import rows without recomputing derived fields")

	return cmd
}

func runImport(ctx context.Context, opts *ImportOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	// Validate every fixture before touching the database
	fixtures := make([]*fixture.Fixture, len(paths))
	for i, path := range paths {
		f, err := fixture.Load(path)
		if err != nil {
			if formatter.JSON() {
				if encErr := formatter.Error(CodeFixture, err.Error(), map[string]string{"file": path}); encErr != nil {
					return encErr
				}
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid fixture %s", path), err)
		}
		fixtures[i] = f
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rc := opts.newRecomputer(false)
	results := make([]ImportTabletResult, 0, len(fixtures))

	for i, f := range fixtures {
		rows := f.Rows(fixture.UUIDv7Generator{})
		res := ImportTabletResult{
			File:        paths[i],
			TabletID:    rows.Tablet.ID,
			Designation: rows.Tablet.Designation,
			Units:       len(rows.Units),
			Markups:     len(rows.Markups),
			Nodes:       len(rows.Nodes),
		}

		if opts.NoRecompute {
			if err := fixture.Import(ctx, st, rows); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to import %s", paths[i]), err)
			}
		} else {
			// Rows and their derived fields commit together.
			var writeErr error
			report, err := st.EditTablet(ctx, rc, rows.Tablet.ID, func(tx *store.Tx) error {
				writeErr = fixture.WriteRows(ctx, tx, rows)
				return writeErr
			})
			if writeErr != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to import %s", paths[i]), writeErr)
			}
			if err != nil {
				return reportRecomputeError(formatter, rows.Tablet.ID, err)
			}
			res.Recompute = &report
		}
		formatter.VerboseLog("Imported %s from %s", rows.Tablet.ID, paths[i])
		results = append(results, res)
	}

	if formatter.JSON() {
		return formatter.Success(results)
	}

	w := formatter.Writer
	for _, r := range results {
		fmt.Fprintf(w, "✓ %s: %d unit(s), %d markup(s), %d node(s)", r.TabletID, r.Units, r.Markups, r.Nodes)
		if r.Recompute != nil {
			fmt.Fprintf(w, ", wrote %d row(s)", r.Recompute.Writes())
		}
		fmt.Fprintln(w)
	}
	return nil
}
