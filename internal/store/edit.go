package store

import (
	"context"
	"fmt"

	"github.com/roach88/tabletpos/internal/tablet"
)

// The methods in this file stand in for the editing layer: they create,
// delete and reorder rows without touching derived columns. Any structural
// edit leaves the tablet stale until the next recompute.

// InsertTablet inserts a tablet row. Uses ON CONFLICT(id) DO UPDATE so
// re-importing a tablet refreshes its designation.
func (c conn) InsertTablet(ctx context.Context, t tablet.Tablet) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO tablets (id, designation)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET designation = excluded.designation
	`, t.ID, t.Designation)
	if err != nil {
		return fmt.Errorf("insert tablet %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTablet removes a tablet and, by cascade, all of its rows.
func (c conn) DeleteTablet(ctx context.Context, id string) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM tablets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tablet %s: %w", id, err)
	}
	return expectOneRow(result, "delete tablet", id)
}

// InsertUnit inserts an epigraphic unit including any derived values it carries.
func (c conn) InsertUnit(ctx context.Context, u tablet.EpigraphicUnit) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO epigraphic_units
		(id, tablet_id, seq, kind, reading, object_on_tablet, char_on_tablet, char_on_line, line_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.ID,
		u.TabletID,
		u.Seq,
		string(u.Kind),
		u.Reading,
		toNullInt(u.ObjectOnTablet),
		toNullInt(u.CharOnTablet),
		toNullInt(u.CharOnLine),
		toNullLine(u.LineNumber),
	)
	if err != nil {
		return fmt.Errorf("insert unit %s: %w", u.ID, err)
	}
	return nil
}

// DeleteUnit removes a unit and, by cascade, its markups.
func (c conn) DeleteUnit(ctx context.Context, id string) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM epigraphic_units WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete unit %s: %w", id, err)
	}
	return expectOneRow(result, "delete unit", id)
}

// MoveUnit changes a unit's physical sort key.
func (c conn) MoveUnit(ctx context.Context, id string, seq float64) error {
	result, err := c.q.ExecContext(ctx, `UPDATE epigraphic_units SET seq = ? WHERE id = ?`, seq, id)
	if err != nil {
		return fmt.Errorf("move unit %s: %w", id, err)
	}
	return expectOneRow(result, "move unit", id)
}

// InsertMarkup attaches a markup to a unit.
func (c conn) InsertMarkup(ctx context.Context, m tablet.Markup) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO markups (id, unit_id, kind, numeric_value)
		VALUES (?, ?, ?, ?)
	`, m.ID, m.UnitID, string(m.Kind), toNullInt(m.NumericValue))
	if err != nil {
		return fmt.Errorf("insert markup %s: %w", m.ID, err)
	}
	return nil
}

// DeleteMarkup removes a markup.
func (c conn) DeleteMarkup(ctx context.Context, id string) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM markups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete markup %s: %w", id, err)
	}
	return expectOneRow(result, "delete markup", id)
}

// InsertNode inserts a discourse node including any derived values it carries.
func (c conn) InsertNode(ctx context.Context, n tablet.DiscourseNode) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO discourse_nodes
		(id, tablet_id, parent_id, seq, kind, transcription, object_in_text, word_on_tablet, child_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID,
		n.TabletID,
		toNullString(n.ParentID),
		n.Seq,
		string(n.Kind),
		n.Transcription,
		toNullInt(n.ObjectInText),
		toNullInt(n.WordOnTablet),
		toNullInt(n.ChildNum),
	)
	if err != nil {
		return fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNode removes a discourse node and, by cascade, its subtree.
func (c conn) DeleteNode(ctx context.Context, id string) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM discourse_nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	return expectOneRow(result, "delete node", id)
}

// MoveNode changes a node's discourse sort key and parent. An empty parentID
// makes the node a root.
func (c conn) MoveNode(ctx context.Context, id string, seq float64, parentID string) error {
	result, err := c.q.ExecContext(ctx, `
		UPDATE discourse_nodes SET seq = ?, parent_id = ? WHERE id = ?
	`, seq, toNullString(parentID), id)
	if err != nil {
		return fmt.Errorf("move node %s: %w", id, err)
	}
	return expectOneRow(result, "move node", id)
}
