package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/tabletpos/internal/tablet"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Rows     []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rows) > 0 {
		fmt.Fprintf(&buf, "\nRows:\n")
		for _, row := range e.Rows {
			fmt.Fprintf(&buf, "  %s\n", row)
		}
	}

	return buf.String()
}

// unitColumn renders one derived unit field.
func unitColumn(kind string, u tablet.EpigraphicUnit) string {
	switch kind {
	case AssertLineNumbers:
		return u.LineNumber.String()
	case AssertCharOnTablet:
		return u.CharOnTablet.String()
	case AssertCharOnLine:
		return u.CharOnLine.String()
	case AssertObjectOnTablet:
		return u.ObjectOnTablet.String()
	}
	return ""
}

// nodeColumn renders one derived node field.
func nodeColumn(kind string, n tablet.DiscourseNode) string {
	switch kind {
	case AssertObjectInText:
		return n.ObjectInText.String()
	case AssertWordOnTablet:
		return n.WordOnTablet.String()
	case AssertChildNum:
		return n.ChildNum.String()
	}
	return ""
}

// assertUnitColumn compares a unit field across all units, or across the
// units named in assertion.IDs.
func assertUnitColumn(result *Result, assertion Assertion) error {
	var actual []string
	if assertion.IDs == nil {
		for _, u := range result.Units {
			actual = append(actual, unitColumn(assertion.Type, u))
		}
	} else {
		for _, id := range assertion.IDs {
			u, ok := result.unitByID(id)
			if !ok {
				return &AssertionError{Type: assertion.Type, Expected: "unit " + id, Actual: "not found", Rows: renderUnits(result.Units)}
			}
			actual = append(actual, unitColumn(assertion.Type, u))
		}
	}
	return compareColumn(assertion, actual, renderUnits(result.Units))
}

// assertNodeColumn compares a node field across all nodes, or across the
// nodes named in assertion.IDs.
func assertNodeColumn(result *Result, assertion Assertion) error {
	var actual []string
	if assertion.IDs == nil {
		for _, n := range result.Nodes {
			actual = append(actual, nodeColumn(assertion.Type, n))
		}
	} else {
		for _, id := range assertion.IDs {
			n, ok := result.nodeByID(id)
			if !ok {
				return &AssertionError{Type: assertion.Type, Expected: "node " + id, Actual: "not found", Rows: renderNodes(result.Nodes)}
			}
			actual = append(actual, nodeColumn(assertion.Type, n))
		}
	}
	return compareColumn(assertion, actual, renderNodes(result.Nodes))
}

func compareColumn(assertion Assertion, actual, rows []string) error {
	expected := assertion.Expect
	if len(expected) == len(actual) {
		match := true
		for i := range expected {
			if expected[i] != actual[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: "[" + strings.Join(expected, " ") + "]",
		Actual:   "[" + strings.Join(actual, " ") + "]",
		Rows:     rows,
	}
}

// assertWrites checks the write counts of the recompute that followed the
// edits (or the initial recompute when there are none).
func assertWrites(result *Result, assertion Assertion) error {
	report := result.AfterEdits
	if assertion.Units != nil && *assertion.Units != report.UnitWrites ||
		assertion.Nodes != nil && *assertion.Nodes != report.NodeWrites {
		return &AssertionError{
			Type:     AssertWrites,
			Expected: fmt.Sprintf("units=%s nodes=%s", optInt(assertion.Units), optInt(assertion.Nodes)),
			Actual:   fmt.Sprintf("units=%d nodes=%d", report.UnitWrites, report.NodeWrites),
		}
	}
	return nil
}

// assertIdempotent checks that recomputing an already recomputed tablet
// writes nothing.
func assertIdempotent(result *Result) error {
	if result.Rerun.Writes() == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertIdempotent,
		Expected: "rerun writes=0",
		Actual:   fmt.Sprintf("rerun units=%d nodes=%d", result.Rerun.UnitWrites, result.Rerun.NodeWrites),
	}
}

func optInt(p *int) string {
	if p == nil {
		return "*"
	}
	return fmt.Sprint(*p)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLineNumbers, AssertCharOnTablet, AssertCharOnLine, AssertObjectOnTablet:
			err = assertUnitColumn(result, assertion)
		case AssertObjectInText, AssertWordOnTablet, AssertChildNum:
			err = assertNodeColumn(result, assertion)
		case AssertWrites:
			err = assertWrites(result, assertion)
		case AssertIdempotent:
			err = assertIdempotent(result)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
