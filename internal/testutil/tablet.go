// Package testutil provides row builders and an in-memory row store for tests.
package testutil

import (
	"context"
	"fmt"

	"github.com/roach88/tabletpos/internal/tablet"
)

// DefaultTablet is the tablet ID the builders use.
const DefaultTablet = "t1"

// Units builds units of the given kinds in physical order.
// IDs are u1, u2, ... and Seq follows the same numbering.
func Units(kinds ...tablet.UnitKind) []tablet.EpigraphicUnit {
	units := make([]tablet.EpigraphicUnit, len(kinds))
	for i, k := range kinds {
		units[i] = tablet.EpigraphicUnit{
			ID:       fmt.Sprintf("u%d", i+1),
			TabletID: DefaultTablet,
			Seq:      float64(i + 1),
			Kind:     k,
		}
	}
	return units
}

// Broken returns a broken markup on unitID.
func Broken(unitID string) tablet.Markup {
	return tablet.Markup{ID: "m-" + unitID + "-broken", UnitID: unitID, Kind: tablet.MarkupBroken}
}

// UndeterminedLines returns an undeterminedLines markup on unitID spanning n lines.
func UndeterminedLines(unitID string, n int64) tablet.Markup {
	return tablet.Markup{
		ID:           "m-" + unitID + "-lines",
		UnitID:       unitID,
		Kind:         tablet.MarkupUndeterminedLines,
		NumericValue: tablet.Int(n),
	}
}

// N describes one discourse node for Nodes.
type N struct {
	ID     string
	Parent string
	Kind   tablet.NodeKind
}

// Nodes builds discourse nodes in discourse order.
func Nodes(specs ...N) []tablet.DiscourseNode {
	nodes := make([]tablet.DiscourseNode, len(specs))
	for i, s := range specs {
		nodes[i] = tablet.DiscourseNode{
			ID:       s.ID,
			TabletID: DefaultTablet,
			ParentID: s.Parent,
			Seq:      float64(i + 1),
			Kind:     s.Kind,
		}
	}
	return nodes
}

// MemTablet is an in-memory position.ReadWriter over one tablet's rows.
// Writes update the rows in place and are counted.
type MemTablet struct {
	Units      []tablet.EpigraphicUnit
	MarkupRows []tablet.Markup
	Nodes      []tablet.DiscourseNode

	// UnitWrites and NodeWrites count successful updates.
	UnitWrites int
	NodeWrites int

	// FailWrite, when set, is returned by every update.
	FailWrite error
}

// EpigraphicUnits returns a copy of the units.
func (m *MemTablet) EpigraphicUnits(ctx context.Context, tabletID string) ([]tablet.EpigraphicUnit, error) {
	return append([]tablet.EpigraphicUnit(nil), m.Units...), nil
}

// Markups returns a copy of the markups.
func (m *MemTablet) Markups(ctx context.Context, tabletID string) ([]tablet.Markup, error) {
	return append([]tablet.Markup(nil), m.MarkupRows...), nil
}

// DiscourseNodes returns a copy of the nodes.
func (m *MemTablet) DiscourseNodes(ctx context.Context, tabletID string) ([]tablet.DiscourseNode, error) {
	return append([]tablet.DiscourseNode(nil), m.Nodes...), nil
}

// UpdateUnitPositions stores p on the unit with the given ID.
func (m *MemTablet) UpdateUnitPositions(ctx context.Context, unitID string, p tablet.UnitPositions) error {
	if m.FailWrite != nil {
		return m.FailWrite
	}
	for i := range m.Units {
		if m.Units[i].ID == unitID {
			m.Units[i].UnitPositions = p
			m.UnitWrites++
			return nil
		}
	}
	return fmt.Errorf("unit %s not found", unitID)
}

// UpdateNodeOrdinals stores o on the node with the given ID.
func (m *MemTablet) UpdateNodeOrdinals(ctx context.Context, nodeID string, o tablet.NodeOrdinals) error {
	if m.FailWrite != nil {
		return m.FailWrite
	}
	for i := range m.Nodes {
		if m.Nodes[i].ID == nodeID {
			m.Nodes[i].NodeOrdinals = o
			m.NodeWrites++
			return nil
		}
	}
	return fmt.Errorf("node %s not found", nodeID)
}

// ResetCounts zeroes the write counters.
func (m *MemTablet) ResetCounts() {
	m.UnitWrites = 0
	m.NodeWrites = 0
}
