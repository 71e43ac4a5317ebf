package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/tablet"
)

// renderUnits renders one line per unit:
//
//	u1 line obj=1 tab=- lin=- line=1
func renderUnits(units []tablet.EpigraphicUnit) []string {
	lines := make([]string, len(units))
	for i, u := range units {
		lines[i] = fmt.Sprintf("%s %s obj=%s tab=%s lin=%s line=%s",
			u.ID, u.Kind, u.ObjectOnTablet, u.CharOnTablet, u.CharOnLine, u.LineNumber)
	}
	return lines
}

// renderNodes renders one line per node:
//
//	w1 word parent=du1 obj=2 word=1 child=1
func renderNodes(nodes []tablet.DiscourseNode) []string {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		parent := n.ParentID
		if parent == "" {
			parent = "-"
		}
		lines[i] = fmt.Sprintf("%s %s parent=%s obj=%s word=%s child=%s",
			n.ID, n.Kind, parent, n.ObjectInText, n.WordOnTablet, n.ChildNum)
	}
	return lines
}

func renderReport(label string, r position.Report) string {
	return fmt.Sprintf("%s units=%d nodes=%d", label, r.UnitWrites, r.NodeWrites)
}

// Snapshot renders a result as the plain-text document stored in golden
// files. The format is stable: one row per line, null shown as "-".
func Snapshot(scenarioName string, result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", scenarioName)
	fmt.Fprintf(&buf, "tablet: %s\n", result.TabletID)
	buf.WriteString("units:\n")
	for _, line := range renderUnits(result.Units) {
		fmt.Fprintf(&buf, "  %s\n", line)
	}
	buf.WriteString("nodes:\n")
	for _, line := range renderNodes(result.Nodes) {
		fmt.Fprintf(&buf, "  %s\n", line)
	}
	buf.WriteString("writes:\n")
	fmt.Fprintf(&buf, "  %s\n", renderReport("initial", result.Initial))
	fmt.Fprintf(&buf, "  %s\n", renderReport("after_edits", result.AfterEdits))
	fmt.Fprintf(&buf, "  %s\n", renderReport("rerun", result.Rerun))

	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
