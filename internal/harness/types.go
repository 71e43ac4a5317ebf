package harness

import (
	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/tablet"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// TabletID is the tablet the scenario ran on.
	TabletID string `json:"tablet_id"`

	// Units and Nodes are the tablet's rows after the last recompute, in
	// stored order.
	Units []tablet.EpigraphicUnit `json:"units"`
	Nodes []tablet.DiscourseNode  `json:"nodes"`

	// Initial is the first recompute after import.
	Initial position.Report `json:"initial"`

	// AfterEdits is the recompute following the edits. It equals Initial
	// when the scenario has no edits.
	AfterEdits position.Report `json:"after_edits"`

	// Rerun is one more recompute with no changes in between.
	Rerun position.Report `json:"rerun"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// unitByID returns the unit with the given ID.
func (r *Result) unitByID(id string) (tablet.EpigraphicUnit, bool) {
	for _, u := range r.Units {
		if u.ID == id {
			return u, true
		}
	}
	return tablet.EpigraphicUnit{}, false
}

// nodeByID returns the node with the given ID.
func (r *Result) nodeByID(id string) (tablet.DiscourseNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return tablet.DiscourseNode{}, false
}
