package tablet

// UnitKind identifies the physical role of an epigraphic unit.
// Values outside the declared constants are legal and take no part in numbering.
type UnitKind string

const (
	KindEpigraphicUnit    UnitKind = "epigraphicUnit"
	KindColumn            UnitKind = "column"
	KindSection           UnitKind = "section"
	KindLine              UnitKind = "line"
	KindSign              UnitKind = "sign"
	KindNumber            UnitKind = "number"
	KindSeparator         UnitKind = "separator"
	KindUndeterminedSigns UnitKind = "undeterminedSigns"
	KindUndeterminedLines UnitKind = "undeterminedLines"
	KindRegion            UnitKind = "region"
)

// BearsCharacter reports whether units of this kind are counted by the
// char-on-tablet and char-on-line offsets.
func (k UnitKind) BearsCharacter() bool {
	switch k {
	case KindSign, KindNumber, KindSeparator, KindUndeterminedSigns:
		return true
	}
	return false
}

// MarkupKind identifies the qualifier a markup annotation attaches to a unit.
type MarkupKind string

const (
	// MarkupBroken marks a region unit as a damaged or illegible stretch.
	MarkupBroken MarkupKind = "broken"

	// MarkupUndeterminedLines carries, in NumericValue, how many physical
	// lines an undeterminedLines unit stands for.
	MarkupUndeterminedLines MarkupKind = "undeterminedLines"
)

// NodeKind identifies a discourse node's grammatical role.
type NodeKind string

const (
	NodeDiscourseUnit NodeKind = "discourseUnit"
	NodeWord          NodeKind = "word"
	NodeNumber        NodeKind = "number"
)

// CountsAsWord reports whether nodes of this kind receive a word-on-tablet index.
func (k NodeKind) CountsAsWord() bool {
	return k == NodeWord || k == NodeNumber
}

// IsRoot reports whether nodes of this kind sit at the top of the discourse
// tree and therefore carry no sibling rank.
func (k NodeKind) IsRoot() bool {
	return k == NodeDiscourseUnit
}

// Tablet is the owner of a set of units and discourse nodes.
type Tablet struct {
	ID          string `json:"id"`
	Designation string `json:"designation,omitempty"`
}

// EpigraphicUnit is one physical element of a tablet transcription.
//
// Seq is the authored physical sort key maintained by the editing layer.
// Ties on Seq are broken by ID so row order is always total.
type EpigraphicUnit struct {
	ID       string   `json:"id"`
	TabletID string   `json:"tablet_id"`
	Seq      float64  `json:"seq"`
	Kind     UnitKind `json:"kind"`
	Reading  string   `json:"reading,omitempty"`

	UnitPositions
}

// UnitPositions holds the derived position fields of an epigraphic unit.
type UnitPositions struct {
	ObjectOnTablet NullInt    `json:"object_on_tablet"`
	CharOnTablet   NullInt    `json:"char_on_tablet"`
	CharOnLine     NullInt    `json:"char_on_line"`
	LineNumber     LineNumber `json:"line_number"`
}

// Equal reports whether every derived field matches.
func (p UnitPositions) Equal(o UnitPositions) bool {
	return p.ObjectOnTablet == o.ObjectOnTablet &&
		p.CharOnTablet == o.CharOnTablet &&
		p.CharOnLine == o.CharOnLine &&
		p.LineNumber == o.LineNumber
}

// Markup attaches a qualifier to one epigraphic unit.
type Markup struct {
	ID           string     `json:"id"`
	UnitID       string     `json:"unit_id"`
	Kind         MarkupKind `json:"kind"`
	NumericValue NullInt    `json:"numeric_value"`
}

// DiscourseNode is one node of the discourse tree for a tablet.
// ParentID is empty only for root nodes.
type DiscourseNode struct {
	ID            string   `json:"id"`
	TabletID      string   `json:"tablet_id"`
	ParentID      string   `json:"parent_id,omitempty"`
	Seq           float64  `json:"seq"`
	Kind          NodeKind `json:"kind"`
	Transcription string   `json:"transcription,omitempty"`

	NodeOrdinals
}

// NodeOrdinals holds the derived ordinal fields of a discourse node.
type NodeOrdinals struct {
	ObjectInText NullInt `json:"object_in_text"`
	WordOnTablet NullInt `json:"word_on_tablet"`
	ChildNum     NullInt `json:"child_num"`
}

// Equal reports whether every derived field matches.
func (o NodeOrdinals) Equal(p NodeOrdinals) bool {
	return o == p
}
