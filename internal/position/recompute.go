package position

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tabletpos/internal/tablet"
)

// Reader supplies the rows of one tablet in stored order.
//
// EpigraphicUnits must return units in physical sequence and DiscourseNodes
// in discourse sequence; the passes trust that order and nothing else.
type Reader interface {
	EpigraphicUnits(ctx context.Context, tabletID string) ([]tablet.EpigraphicUnit, error)
	Markups(ctx context.Context, tabletID string) ([]tablet.Markup, error)
	DiscourseNodes(ctx context.Context, tabletID string) ([]tablet.DiscourseNode, error)
}

// Writer accepts partial updates of derived fields keyed by row ID.
type Writer interface {
	UpdateUnitPositions(ctx context.Context, unitID string, p tablet.UnitPositions) error
	UpdateNodeOrdinals(ctx context.Context, nodeID string, o tablet.NodeOrdinals) error
}

// ReadWriter is the transaction-scoped view a recompute runs against.
type ReadWriter interface {
	Reader
	Writer
}

// Options configures a Recomputer.
type Options struct {
	// DryRun computes the plan but writes nothing.
	DryRun bool

	// Logger receives progress records. Defaults to slog.Default().
	Logger *slog.Logger
}

// Report summarizes one recompute of one tablet.
type Report struct {
	TabletID   string `json:"tablet_id"`
	Units      int    `json:"units"`
	Nodes      int    `json:"nodes"`
	UnitWrites int    `json:"unit_writes"`
	NodeWrites int    `json:"node_writes"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Plan       Plan   `json:"-"`
}

// Writes returns the number of rows the recompute wrote (or would write, in
// a dry run).
func (r Report) Writes() int {
	return r.UnitWrites + r.NodeWrites
}

// Recomputer brings one tablet's derived fields back in line with its row order.
type Recomputer struct {
	dryRun bool
	logger *slog.Logger
}

// New creates a Recomputer.
func New(opts Options) *Recomputer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Recomputer{dryRun: opts.DryRun, logger: logger}
}

// Load reads everything the passes need for one tablet in three bulk reads.
func Load(ctx context.Context, r Reader, tabletID string) (Snapshot, error) {
	units, err := r.EpigraphicUnits(ctx, tabletID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load units: %w", err)
	}
	markups, err := r.Markups(ctx, tabletID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load markups: %w", err)
	}
	nodes, err := r.DiscourseNodes(ctx, tabletID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load discourse nodes: %w", err)
	}
	return Snapshot{TabletID: tabletID, Units: units, Markups: markups, Nodes: nodes}, nil
}

// Recompute loads the tablet's rows through rw, recomputes every derived
// field and writes back only the rows that changed.
//
// rw must be scoped to a write transaction owned by the caller. On error
// nothing should be committed.
func (rc *Recomputer) Recompute(ctx context.Context, rw ReadWriter, tabletID string) (Report, error) {
	snap, err := Load(ctx, rw, tabletID)
	if err != nil {
		return Report{}, fmt.Errorf("recompute %s: %w", tabletID, err)
	}

	plan, err := Compute(snap)
	if err != nil {
		return Report{}, fmt.Errorf("recompute %s: %w", tabletID, err)
	}

	report := Report{
		TabletID:   tabletID,
		Units:      plan.UnitsScanned,
		Nodes:      plan.NodesScanned,
		UnitWrites: len(plan.Units),
		NodeWrites: len(plan.Nodes),
		DryRun:     rc.dryRun,
		Plan:       plan,
	}

	rc.logger.Debug("positions computed",
		"tablet", tabletID,
		"units", report.Units,
		"nodes", report.Nodes,
		"unit_writes", report.UnitWrites,
		"node_writes", report.NodeWrites,
	)

	if rc.dryRun || plan.Empty() {
		return report, nil
	}

	if err := plan.Apply(ctx, rw); err != nil {
		return Report{}, fmt.Errorf("recompute %s: %w", tabletID, err)
	}

	rc.logger.Info("positions written", "tablet", tabletID, "writes", report.Writes())
	return report, nil
}
