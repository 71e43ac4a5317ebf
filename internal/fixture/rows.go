package fixture

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tabletpos/internal/tablet"
)

// Rows is a fixture converted to store rows. Derived fields are null.
type Rows struct {
	Tablet  tablet.Tablet
	Units   []tablet.EpigraphicUnit
	Markups []tablet.Markup
	Nodes   []tablet.DiscourseNode
}

// Rows converts f to store rows. Sort keys follow list position starting at
// 1, missing IDs come from gen, and text fields are NFC-normalized so that
// precomposed and combining spellings of the same reading compare equal.
//
// f is expected to have passed Validate.
func (f *Fixture) Rows(gen IDGenerator) Rows {
	tabletID := f.Tablet.ID
	rows := Rows{
		Tablet: tablet.Tablet{
			ID:          tabletID,
			Designation: norm.NFC.String(f.Tablet.Designation),
		},
		Units:   make([]tablet.EpigraphicUnit, 0, len(f.Units)),
		Markups: []tablet.Markup{},
		Nodes:   make([]tablet.DiscourseNode, 0, len(f.Discourse)),
	}

	for i, u := range f.Units {
		id := idOrGenerate(u.ID, gen)
		rows.Units = append(rows.Units, tablet.EpigraphicUnit{
			ID:       id,
			TabletID: tabletID,
			Seq:      float64(i + 1),
			Kind:     tablet.UnitKind(u.Kind),
			Reading:  norm.NFC.String(u.Reading),
		})
		for _, m := range u.Markups {
			markup := tablet.Markup{
				ID:     idOrGenerate(m.ID, gen),
				UnitID: id,
				Kind:   tablet.MarkupKind(m.Kind),
			}
			if m.Value != nil {
				markup.NumericValue = tablet.Int(*m.Value)
			}
			rows.Markups = append(rows.Markups, markup)
		}
	}

	for i, n := range f.Discourse {
		rows.Nodes = append(rows.Nodes, tablet.DiscourseNode{
			ID:            idOrGenerate(n.ID, gen),
			TabletID:      tabletID,
			ParentID:      n.Parent,
			Seq:           float64(i + 1),
			Kind:          tablet.NodeKind(n.Kind),
			Transcription: norm.NFC.String(n.Transcription),
		})
	}

	return rows
}

func idOrGenerate(id string, gen IDGenerator) string {
	if id != "" {
		return id
	}
	return gen.Generate()
}
