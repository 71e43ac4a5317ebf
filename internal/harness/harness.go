package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tabletpos/internal/fixture"
	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/store"
	"github.com/roach88/tabletpos/internal/tablet"
)

// GeneratedIDPrefix prefixes the IDs the harness generates for rows that a
// fixture or edit leaves unnamed.
const GeneratedIDPrefix = "gen-"

// Harness runs one scenario against one store.
type Harness struct {
	store  *store.Store
	rc     *position.Recomputer
	ids    *fixture.SequentialGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with sequential ID
// generation, so results are identical across runs.
//
// Execution flow:
//  1. Import the fixture
//  2. Recompute
//  3. Apply edits and recompute in one transaction
//  4. Recompute once more to measure idempotence
//  5. Evaluate assertions against the final rows
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store:  st,
		rc:     position.New(position.Options{Logger: logger}),
		ids:    fixture.NewSequentialGenerator(GeneratedIDPrefix),
		logger: logger,
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	if scenario.Fixture == nil {
		return nil, fmt.Errorf("scenario %s has no fixture", scenario.Name)
	}

	rows := scenario.Fixture.Rows(h.ids)
	tabletID := rows.Tablet.ID
	if err := fixture.Import(ctx, h.store, rows); err != nil {
		return nil, fmt.Errorf("failed to import fixture: %w", err)
	}

	result := NewResult()
	result.TabletID = tabletID

	initial, err := h.store.RecomputeTablet(ctx, h.rc, tabletID)
	if err != nil {
		return nil, fmt.Errorf("initial recompute: %w", err)
	}
	result.Initial = initial
	result.AfterEdits = initial

	if len(scenario.Edits) > 0 {
		after, err := h.store.EditTablet(ctx, h.rc, tabletID, func(tx *store.Tx) error {
			for i, e := range scenario.Edits {
				if err := h.applyEdit(ctx, tx, tabletID, e); err != nil {
					return fmt.Errorf("edits[%d] %s: %w", i, e.Op, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to apply edits: %w", err)
		}
		result.AfterEdits = after
	}

	rerun, err := h.store.RecomputeTablet(ctx, h.rc, tabletID)
	if err != nil {
		return nil, fmt.Errorf("rerun recompute: %w", err)
	}
	result.Rerun = rerun

	if result.Units, err = h.store.EpigraphicUnits(ctx, tabletID); err != nil {
		return nil, err
	}
	if result.Nodes, err = h.store.DiscourseNodes(ctx, tabletID); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario complete", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// applyEdit performs one edit inside tx.
func (h *Harness) applyEdit(ctx context.Context, tx *store.Tx, tabletID string, e Edit) error {
	switch e.Op {
	case EditInsertUnit:
		units, err := tx.EpigraphicUnits(ctx, tabletID)
		if err != nil {
			return err
		}
		seq, err := seqAfter(unitKeys(units, ""), e.After)
		if err != nil {
			return err
		}
		return tx.InsertUnit(ctx, tablet.EpigraphicUnit{
			ID:       h.idOrGenerate(e.ID),
			TabletID: tabletID,
			Seq:      seq,
			Kind:     tablet.UnitKind(e.Kind),
			Reading:  e.Reading,
		})

	case EditDeleteUnit:
		return tx.DeleteUnit(ctx, e.ID)

	case EditMoveUnit:
		units, err := tx.EpigraphicUnits(ctx, tabletID)
		if err != nil {
			return err
		}
		seq, err := seqAfter(unitKeys(units, e.ID), e.After)
		if err != nil {
			return err
		}
		return tx.MoveUnit(ctx, e.ID, seq)

	case EditAddMarkup:
		m := tablet.Markup{
			ID:     h.idOrGenerate(e.ID),
			UnitID: e.Unit,
			Kind:   tablet.MarkupKind(e.Kind),
		}
		if e.Value != nil {
			m.NumericValue = tablet.Int(*e.Value)
		}
		return tx.InsertMarkup(ctx, m)

	case EditRemoveMarkup:
		return tx.DeleteMarkup(ctx, e.ID)

	case EditInsertNode:
		nodes, err := tx.DiscourseNodes(ctx, tabletID)
		if err != nil {
			return err
		}
		seq, err := seqAfter(nodeKeys(nodes, ""), e.After)
		if err != nil {
			return err
		}
		return tx.InsertNode(ctx, tablet.DiscourseNode{
			ID:       h.idOrGenerate(e.ID),
			TabletID: tabletID,
			ParentID: e.Parent,
			Seq:      seq,
			Kind:     tablet.NodeKind(e.Kind),
		})

	case EditDeleteNode:
		return tx.DeleteNode(ctx, e.ID)

	case EditMoveNode:
		nodes, err := tx.DiscourseNodes(ctx, tabletID)
		if err != nil {
			return err
		}
		seq, err := seqAfter(nodeKeys(nodes, e.ID), e.After)
		if err != nil {
			return err
		}
		return tx.MoveNode(ctx, e.ID, seq, e.Parent)
	}

	return fmt.Errorf("unknown op %q", e.Op)
}

func (h *Harness) idOrGenerate(id string) string {
	if id != "" {
		return id
	}
	return h.ids.Generate()
}

// sortKey is a row's ID and seq, in stored order.
type sortKey struct {
	id  string
	seq float64
}

func unitKeys(units []tablet.EpigraphicUnit, skip string) []sortKey {
	keys := make([]sortKey, 0, len(units))
	for _, u := range units {
		if u.ID != skip {
			keys = append(keys, sortKey{id: u.ID, seq: u.Seq})
		}
	}
	return keys
}

func nodeKeys(nodes []tablet.DiscourseNode, skip string) []sortKey {
	keys := make([]sortKey, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != skip {
			keys = append(keys, sortKey{id: n.ID, seq: n.Seq})
		}
	}
	return keys
}

// seqAfter returns a seq that sorts directly after the row named after, or
// before every row when after is empty. keys must be in stored order.
func seqAfter(keys []sortKey, after string) (float64, error) {
	if after == "" {
		if len(keys) == 0 {
			return 1, nil
		}
		return keys[0].seq - 1, nil
	}

	for i, k := range keys {
		if k.id != after {
			continue
		}
		if i == len(keys)-1 {
			return k.seq + 1, nil
		}
		return (k.seq + keys[i+1].seq) / 2, nil
	}
	return 0, fmt.Errorf("after: no row %q", after)
}
