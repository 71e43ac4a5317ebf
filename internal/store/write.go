package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tabletpos/internal/tablet"
)

// ErrRowNotFound is returned when an update or edit targets a row ID that
// does not exist.
var ErrRowNotFound = errors.New("row not found")

// UpdateUnitPositions rewrites the derived position columns of one unit.
// Authored columns (seq, kind, reading) are left untouched.
func (c conn) UpdateUnitPositions(ctx context.Context, unitID string, p tablet.UnitPositions) error {
	result, err := c.q.ExecContext(ctx, `
		UPDATE epigraphic_units
		SET object_on_tablet = ?, char_on_tablet = ?, char_on_line = ?, line_number = ?
		WHERE id = ?
	`,
		toNullInt(p.ObjectOnTablet),
		toNullInt(p.CharOnTablet),
		toNullInt(p.CharOnLine),
		toNullLine(p.LineNumber),
		unitID,
	)
	if err != nil {
		return fmt.Errorf("update unit %s: %w", unitID, err)
	}
	return expectOneRow(result, "update unit", unitID)
}

// UpdateNodeOrdinals rewrites the derived ordinal columns of one discourse node.
func (c conn) UpdateNodeOrdinals(ctx context.Context, nodeID string, o tablet.NodeOrdinals) error {
	result, err := c.q.ExecContext(ctx, `
		UPDATE discourse_nodes
		SET object_in_text = ?, word_on_tablet = ?, child_num = ?
		WHERE id = ?
	`,
		toNullInt(o.ObjectInText),
		toNullInt(o.WordOnTablet),
		toNullInt(o.ChildNum),
		nodeID,
	)
	if err != nil {
		return fmt.Errorf("update node %s: %w", nodeID, err)
	}
	return expectOneRow(result, "update node", nodeID)
}

// expectOneRow turns a zero-row update into ErrRowNotFound.
func expectOneRow(result sql.Result, op, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrRowNotFound)
	}
	return nil
}
