package position

import (
	"context"
	"fmt"

	"github.com/roach88/tabletpos/internal/tablet"
)

// Snapshot is every row of one tablet that the passes read, in stored order.
type Snapshot struct {
	TabletID string
	Units    []tablet.EpigraphicUnit
	Markups  []tablet.Markup
	Nodes    []tablet.DiscourseNode
}

// UnitChange is a unit whose derived positions differ from the stored ones.
type UnitChange struct {
	ID  string               `json:"id"`
	Old tablet.UnitPositions `json:"old"`
	New tablet.UnitPositions `json:"new"`
}

// NodeChange is a discourse node whose derived ordinals differ from the stored ones.
type NodeChange struct {
	ID  string              `json:"id"`
	Old tablet.NodeOrdinals `json:"old"`
	New tablet.NodeOrdinals `json:"new"`
}

// Plan lists the rows a recompute must write back.
type Plan struct {
	TabletID     string       `json:"tablet_id"`
	UnitsScanned int          `json:"units_scanned"`
	NodesScanned int          `json:"nodes_scanned"`
	Units        []UnitChange `json:"units"`
	Nodes        []NodeChange `json:"nodes"`
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.Units) == 0 && len(p.Nodes) == 0
}

// Writes returns the number of row updates the plan performs.
func (p Plan) Writes() int {
	return len(p.Units) + len(p.Nodes)
}

// Positions returns the recomputed positions of every unit in s, parallel to
// s.Units. It runs the offset and line passes only.
func Positions(s Snapshot) []tablet.UnitPositions {
	offsets := NumberOffsets(s.Units)
	lines := NumberLines(s.Units, IndexMarkups(s.Markups))

	out := make([]tablet.UnitPositions, len(s.Units))
	for i := range s.Units {
		out[i] = tablet.UnitPositions{
			ObjectOnTablet: offsets[i].ObjectOnTablet,
			CharOnTablet:   offsets[i].CharOnTablet,
			CharOnLine:     offsets[i].CharOnLine,
			LineNumber:     lines[i],
		}
	}
	return out
}

// Compute runs all three passes over s and returns the rows whose derived
// fields changed. It performs no I/O.
func Compute(s Snapshot) (Plan, error) {
	if err := CheckParents(s.TabletID, s.Nodes); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		TabletID:     s.TabletID,
		UnitsScanned: len(s.Units),
		NodesScanned: len(s.Nodes),
		Units:        []UnitChange{},
		Nodes:        []NodeChange{},
	}

	for i, p := range Positions(s) {
		u := s.Units[i]
		if !u.UnitPositions.Equal(p) {
			plan.Units = append(plan.Units, UnitChange{ID: u.ID, Old: u.UnitPositions, New: p})
		}
	}

	for i, o := range NumberDiscourse(s.Nodes) {
		n := s.Nodes[i]
		if !n.NodeOrdinals.Equal(o) {
			plan.Nodes = append(plan.Nodes, NodeChange{ID: n.ID, Old: n.NodeOrdinals, New: o})
		}
	}

	return plan, nil
}

// Apply writes every change in the plan. It stops at the first failure and
// returns it wrapped; the caller's transaction is expected to roll back.
func (p Plan) Apply(ctx context.Context, w Writer) error {
	for _, c := range p.Units {
		if err := w.UpdateUnitPositions(ctx, c.ID, c.New); err != nil {
			return fmt.Errorf("apply unit %s: %w", c.ID, err)
		}
	}
	for _, c := range p.Nodes {
		if err := w.UpdateNodeOrdinals(ctx, c.ID, c.New); err != nil {
			return fmt.Errorf("apply node %s: %w", c.ID, err)
		}
	}
	return nil
}
