package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tabletpos/internal/tablet"
)

// EpigraphicUnits returns every unit of a tablet in physical order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the tablet has no units.
func (c conn) EpigraphicUnits(ctx context.Context, tabletID string) ([]tablet.EpigraphicUnit, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, tablet_id, seq, kind, reading,
		       object_on_tablet, char_on_tablet, char_on_line, line_number
		FROM epigraphic_units
		WHERE tablet_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, tabletID)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []tablet.EpigraphicUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	return units, nil
}

// Markups returns every markup attached to a unit of the tablet, in a single
// query. Markups of one unit keep their id order.
func (c conn) Markups(ctx context.Context, tabletID string) ([]tablet.Markup, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT m.id, m.unit_id, m.kind, m.numeric_value
		FROM markups m
		JOIN epigraphic_units u ON m.unit_id = u.id
		WHERE u.tablet_id = ?
		ORDER BY u.seq ASC, m.unit_id COLLATE BINARY ASC, m.id COLLATE BINARY ASC
	`, tabletID)
	if err != nil {
		return nil, fmt.Errorf("query markups: %w", err)
	}
	defer rows.Close()

	markups := []tablet.Markup{}
	for rows.Next() {
		var m tablet.Markup
		var kind string
		var value sql.NullInt64
		if err := rows.Scan(&m.ID, &m.UnitID, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan markup: %w", err)
		}
		m.Kind = tablet.MarkupKind(kind)
		m.NumericValue = fromNullInt(value)
		markups = append(markups, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markups: %w", err)
	}

	return markups, nil
}

// DiscourseNodes returns every discourse node of a tablet in discourse order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
func (c conn) DiscourseNodes(ctx context.Context, tabletID string) ([]tablet.DiscourseNode, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, tablet_id, parent_id, seq, kind, transcription,
		       object_in_text, word_on_tablet, child_num
		FROM discourse_nodes
		WHERE tablet_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, tabletID)
	if err != nil {
		return nil, fmt.Errorf("query discourse nodes: %w", err)
	}
	defer rows.Close()

	nodes := []tablet.DiscourseNode{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discourse nodes: %w", err)
	}

	return nodes, nil
}

// ReadTablet retrieves a single tablet by ID.
// Returns sql.ErrNoRows if not found.
func (c conn) ReadTablet(ctx context.Context, id string) (tablet.Tablet, error) {
	var t tablet.Tablet
	err := c.q.QueryRowContext(ctx, `
		SELECT id, designation FROM tablets WHERE id = ?
	`, id).Scan(&t.ID, &t.Designation)
	if err != nil {
		return tablet.Tablet{}, err
	}
	return t, nil
}

// ListTabletIDs returns every tablet ID in binary order.
func (c conn) ListTabletIDs(ctx context.Context) ([]string, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id FROM tablets ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tablets: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tablet id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tablets: %w", err)
	}

	return ids, nil
}

// scanUnit scans a row into an EpigraphicUnit.
func scanUnit(rows *sql.Rows) (tablet.EpigraphicUnit, error) {
	var u tablet.EpigraphicUnit
	var kind string
	var obj, charTablet, charLine sql.NullInt64
	var line sql.NullFloat64

	if err := rows.Scan(
		&u.ID, &u.TabletID, &u.Seq, &kind, &u.Reading,
		&obj, &charTablet, &charLine, &line,
	); err != nil {
		return tablet.EpigraphicUnit{}, fmt.Errorf("scan unit: %w", err)
	}

	u.Kind = tablet.UnitKind(kind)
	u.ObjectOnTablet = fromNullInt(obj)
	u.CharOnTablet = fromNullInt(charTablet)
	u.CharOnLine = fromNullInt(charLine)
	if line.Valid {
		u.LineNumber = tablet.LineFromFloat(line.Float64)
	}
	return u, nil
}

// scanNode scans a row into a DiscourseNode.
func scanNode(rows *sql.Rows) (tablet.DiscourseNode, error) {
	var n tablet.DiscourseNode
	var kind string
	var parent sql.NullString
	var obj, word, child sql.NullInt64

	if err := rows.Scan(
		&n.ID, &n.TabletID, &parent, &n.Seq, &kind, &n.Transcription,
		&obj, &word, &child,
	); err != nil {
		return tablet.DiscourseNode{}, fmt.Errorf("scan discourse node: %w", err)
	}

	n.Kind = tablet.NodeKind(kind)
	n.ParentID = parent.String
	n.ObjectInText = fromNullInt(obj)
	n.WordOnTablet = fromNullInt(word)
	n.ChildNum = fromNullInt(child)
	return n, nil
}

func fromNullInt(v sql.NullInt64) tablet.NullInt {
	return tablet.NullInt{Int64: v.Int64, Valid: v.Valid}
}

func toNullInt(v tablet.NullInt) sql.NullInt64 {
	return sql.NullInt64{Int64: v.Int64, Valid: v.Valid}
}

func toNullLine(l tablet.LineNumber) sql.NullFloat64 {
	return sql.NullFloat64{Float64: l.Float64(), Valid: l.Valid}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
