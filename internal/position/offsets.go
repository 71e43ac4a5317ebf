package position

import "github.com/roach88/tabletpos/internal/tablet"

// Offsets is the physical-offset triple computed for one unit.
type Offsets struct {
	ObjectOnTablet tablet.NullInt
	CharOnTablet   tablet.NullInt
	CharOnLine     tablet.NullInt
}

// offsetState carries the running character counters between units.
type offsetState struct {
	charOnTablet int64
	charOnLine   int64
}

// step numbers the unit at index and returns the advanced state.
func (s offsetState) step(index int, kind tablet.UnitKind) (offsetState, Offsets) {
	out := Offsets{ObjectOnTablet: tablet.Int(int64(index + 1))}

	switch {
	case kind == tablet.KindLine:
		s.charOnLine = 0
	case kind.BearsCharacter():
		s.charOnTablet++
		s.charOnLine++
		out.CharOnTablet = tablet.Int(s.charOnTablet)
		out.CharOnLine = tablet.Int(s.charOnLine)
	}

	return s, out
}

// NumberOffsets computes the physical offsets of units, which must be in
// physical order. The result is parallel to units.
func NumberOffsets(units []tablet.EpigraphicUnit) []Offsets {
	out := make([]Offsets, len(units))
	var state offsetState
	for i, u := range units {
		state, out[i] = state.step(i, u.Kind)
	}
	return out
}
