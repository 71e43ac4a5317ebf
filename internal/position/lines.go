package position

import "github.com/roach88/tabletpos/internal/tablet"

// hundredthsPerLine is one whole line in LineNumber hundredths.
const hundredthsPerLine = 100

// MarkupIndex groups a tablet's markups by the unit they annotate.
// Build it once with IndexMarkups before numbering lines.
type MarkupIndex map[string][]tablet.Markup

// IndexMarkups groups markups by unit ID, preserving their order.
func IndexMarkups(markups []tablet.Markup) MarkupIndex {
	idx := make(MarkupIndex, len(markups))
	for _, m := range markups {
		idx[m.UnitID] = append(idx[m.UnitID], m)
	}
	return idx
}

// Has reports whether the unit carries a markup of the given kind.
func (idx MarkupIndex) Has(unitID string, kind tablet.MarkupKind) bool {
	for _, m := range idx[unitID] {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// Value returns the numeric value of the unit's first markup of the given
// kind. A missing markup or a null value reads as 0.
func (idx MarkupIndex) Value(unitID string, kind tablet.MarkupKind) int64 {
	for _, m := range idx[unitID] {
		if m.Kind == kind {
			if m.NumericValue.Valid {
				return m.NumericValue.Int64
			}
			return 0
		}
	}
	return 0
}

// lineState carries the line counter between units. current is in hundredths.
type lineState struct {
	current     int64
	brokenAreas int64
	inBroken    bool
}

// step assigns the unit's line number and returns the advanced state.
//
// A broken region resets the counter to a fractional sentinel (0.01 per
// broken run) so the lines following a break are numbered 1.0n, 2.0n, ...
// Consecutive broken regions with nothing between them share one sentinel.
func (s lineState) step(u tablet.EpigraphicUnit, markups MarkupIndex) (lineState, tablet.LineNumber) {
	switch u.Kind {
	case tablet.KindEpigraphicUnit, tablet.KindSection, tablet.KindColumn:
		return s, tablet.LineNumber{}

	case tablet.KindRegion:
		if markups.Has(u.ID, tablet.MarkupBroken) {
			if !s.inBroken {
				s.brokenAreas++
				s.current = s.brokenAreas
			}
			s.inBroken = true
		} else {
			s.inBroken = false
		}
		return s, tablet.LineNumber{}

	case tablet.KindLine:
		s.inBroken = false
		s.current += hundredthsPerLine
		return s, tablet.LineFromHundredths(s.current)

	case tablet.KindSign, tablet.KindNumber, tablet.KindSeparator, tablet.KindUndeterminedSigns:
		s.inBroken = false
		return s, tablet.LineFromHundredths(s.current)

	case tablet.KindUndeterminedLines:
		s.inBroken = false
		s.current += hundredthsPerLine
		assigned := tablet.LineFromHundredths(s.current)
		n := markups.Value(u.ID, tablet.MarkupUndeterminedLines)
		s.current += (n - 1) * hundredthsPerLine
		return s, assigned
	}

	s.inBroken = false
	return s, tablet.LineNumber{}
}

// NumberLines computes the line number of every unit, which must be in
// physical order. The result is parallel to units.
func NumberLines(units []tablet.EpigraphicUnit, markups MarkupIndex) []tablet.LineNumber {
	out := make([]tablet.LineNumber, len(units))
	var state lineState
	for i, u := range units {
		state, out[i] = state.step(u, markups)
	}
	return out
}
