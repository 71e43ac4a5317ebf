package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/tablet"
)

func sampleResult() *Result {
	r := NewResult()
	r.TabletID = "t1"
	r.Units = []tablet.EpigraphicUnit{
		{ID: "u1", Kind: tablet.KindLine, UnitPositions: tablet.UnitPositions{
			ObjectOnTablet: tablet.Int(1), LineNumber: tablet.Line(1),
		}},
		{ID: "u2", Kind: tablet.KindSign, UnitPositions: tablet.UnitPositions{
			ObjectOnTablet: tablet.Int(2), CharOnTablet: tablet.Int(1), CharOnLine: tablet.Int(1), LineNumber: tablet.LineFromHundredths(101),
		}},
	}
	r.Nodes = []tablet.DiscourseNode{
		{ID: "du", Kind: tablet.NodeDiscourseUnit, NodeOrdinals: tablet.NodeOrdinals{ObjectInText: tablet.Int(1)}},
		{ID: "w1", ParentID: "du", Kind: tablet.NodeWord, NodeOrdinals: tablet.NodeOrdinals{
			ObjectInText: tablet.Int(2), WordOnTablet: tablet.Int(1), ChildNum: tablet.Int(1),
		}},
	}
	r.AfterEdits = position.Report{UnitWrites: 2, NodeWrites: 1}
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertLineNumbers, Expect: []string{"1", "1.01"}},
		{Type: AssertCharOnTablet, Expect: []string{"-", "1"}},
		{Type: AssertCharOnLine, IDs: []string{"u2"}, Expect: []string{"1"}},
		{Type: AssertObjectOnTablet, Expect: []string{"1", "2"}},
		{Type: AssertObjectInText, Expect: []string{"1", "2"}},
		{Type: AssertWordOnTablet, Expect: []string{"-", "1"}},
		{Type: AssertChildNum, IDs: []string{"w1", "du"}, Expect: []string{"1", "-"}},
		{Type: AssertWrites, Units: intPtr(2), Nodes: intPtr(1)},
		{Type: AssertWrites, Nodes: intPtr(1)},
		{Type: AssertIdempotent},
	})

	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"column mismatch", Assertion{Type: AssertChildNum, Expect: []string{"-", "2"}}, "Actual: [- 1]"},
		{"column length", Assertion{Type: AssertLineNumbers, Expect: []string{"1"}}, "Actual: [1 1.01]"},
		{"unknown unit id", Assertion{Type: AssertCharOnLine, IDs: []string{"u9"}, Expect: []string{"1"}}, "unit u9"},
		{"unknown node id", Assertion{Type: AssertWordOnTablet, IDs: []string{"w9"}, Expect: []string{"1"}}, "node w9"},
		{"writes", Assertion{Type: AssertWrites, Units: intPtr(0)}, "Expected: units=0 nodes=*"},
		{"unknown type", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.contains)
		})
	}
}

func TestAssertIdempotent_Fails(t *testing.T) {
	r := sampleResult()
	r.Rerun = position.Report{UnitWrites: 1}

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertIdempotent}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "rerun units=1 nodes=0")
}

func TestAssertionError_IncludesRows(t *testing.T) {
	err := &AssertionError{
		Type:     AssertLineNumbers,
		Expected: "[1]",
		Actual:   "[2]",
		Rows:     renderUnits(sampleResult().Units),
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: line_numbers")
	assert.Contains(t, msg, "  u1 line obj=1 tab=- lin=- line=1\n")
	assert.Contains(t, msg, "  u2 sign obj=2 tab=1 lin=1 line=1.01\n")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
