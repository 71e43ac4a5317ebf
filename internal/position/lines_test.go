package position

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabletpos/internal/tablet"
	"github.com/roach88/tabletpos/internal/testutil"
)

func lineStrings(lines []tablet.LineNumber) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func TestNumberLines_PlainLines(t *testing.T) {
	units := testutil.Units(
		tablet.KindEpigraphicUnit, tablet.KindColumn, tablet.KindLine, tablet.KindSign,
		tablet.KindSign, tablet.KindSection, tablet.KindLine, tablet.KindNumber,
	)

	got := NumberLines(units, nil)

	assert.Equal(t, []string{"-", "-", "1", "1", "1", "-", "2", "2"}, lineStrings(got))
}

func TestNumberLines_BrokenRegionStartsFractionalNumbering(t *testing.T) {
	units := testutil.Units(
		tablet.KindLine, tablet.KindSign, tablet.KindSign,
		tablet.KindLine, tablet.KindRegion, tablet.KindLine, tablet.KindSign,
	)
	markups := IndexMarkups([]tablet.Markup{testutil.Broken("u5")})

	got := NumberLines(units, markups)

	// The region itself carries no line; the line after it is 1' of break 1.
	assert.Equal(t, []string{"1", "1", "1", "2", "-", "1.01", "1.01"}, lineStrings(got))
}

func TestNumberLines_ThirdBrokenRunUsesThreeHundredths(t *testing.T) {
	units := testutil.Units(
		tablet.KindRegion, tablet.KindLine, tablet.KindSign, // u1-u3
		tablet.KindRegion, tablet.KindLine, tablet.KindSign, // u4-u6
		tablet.KindLine, tablet.KindSign, tablet.KindSign, // u7-u9
		tablet.KindLine, tablet.KindRegion, tablet.KindLine, tablet.KindSign, // u10-u13
	)
	markups := IndexMarkups([]tablet.Markup{
		testutil.Broken("u1"), testutil.Broken("u4"), testutil.Broken("u11"),
	})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{
		"-", "1.01", "1.01",
		"-", "1.02", "1.02",
		"2.02", "2.02", "2.02",
		"3.02", "-", "1.03", "1.03",
	}, lineStrings(got))
	assert.Equal(t, tablet.LineFromHundredths(103), got[11])
}

func TestNumberLines_ConsecutiveBrokenRegionsShareSentinel(t *testing.T) {
	units := testutil.Units(
		tablet.KindLine, tablet.KindRegion, tablet.KindRegion, tablet.KindLine,
		tablet.KindRegion, tablet.KindLine,
	)
	markups := IndexMarkups([]tablet.Markup{
		testutil.Broken("u2"), testutil.Broken("u3"), testutil.Broken("u5"),
	})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{"1", "-", "-", "1.01", "-", "1.02"}, lineStrings(got))
}

func TestNumberLines_UnbrokenRegionEndsBrokenRun(t *testing.T) {
	units := testutil.Units(tablet.KindRegion, tablet.KindRegion, tablet.KindRegion, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{testutil.Broken("u1"), testutil.Broken("u3")})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{"-", "-", "-", "1.02"}, lineStrings(got))
}

func TestNumberLines_StructuralUnitsKeepBrokenRun(t *testing.T) {
	units := testutil.Units(tablet.KindRegion, tablet.KindColumn, tablet.KindSection, tablet.KindRegion, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{testutil.Broken("u1"), testutil.Broken("u4")})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{"-", "-", "-", "-", "1.01"}, lineStrings(got))
}

func TestNumberLines_UnknownKindEndsBrokenRun(t *testing.T) {
	units := testutil.Units(tablet.KindRegion, "ruling", tablet.KindRegion, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{testutil.Broken("u1"), testutil.Broken("u3")})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{"-", "-", "-", "1.02"}, lineStrings(got))
}

func TestNumberLines_UndeterminedLinesConsumeSpan(t *testing.T) {
	units := testutil.Units(
		tablet.KindLine, tablet.KindLine, tablet.KindLine, tablet.KindLine, tablet.KindLine,
		tablet.KindUndeterminedLines, tablet.KindLine,
	)
	markups := IndexMarkups([]tablet.Markup{testutil.UndeterminedLines("u6", 3)})

	got := NumberLines(units, markups)

	assert.Equal(t, tablet.Line(5), got[4])
	assert.Equal(t, tablet.Line(6), got[5])
	assert.Equal(t, tablet.Line(9), got[6])
}

func TestNumberLines_UndeterminedLinesSingleSpan(t *testing.T) {
	units := testutil.Units(tablet.KindLine, tablet.KindUndeterminedLines, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{testutil.UndeterminedLines("u2", 1)})

	assert.Equal(t, []string{"1", "2", "3"}, lineStrings(NumberLines(units, markups)))
}

func TestNumberLines_UndeterminedLinesWithoutMarkup(t *testing.T) {
	units := testutil.Units(tablet.KindLine, tablet.KindUndeterminedLines, tablet.KindLine)

	// A missing count reads as 0: the span takes its own number and then
	// gives it back, so the next line repeats it.
	assert.Equal(t, []string{"1", "2", "2"}, lineStrings(NumberLines(units, nil)))

	nullValue := tablet.Markup{ID: "m", UnitID: "u2", Kind: tablet.MarkupUndeterminedLines}
	markups := IndexMarkups([]tablet.Markup{nullValue})
	assert.Equal(t, []string{"1", "2", "2"}, lineStrings(NumberLines(units, markups)))
}

func TestNumberLines_UndeterminedLinesEndBrokenRun(t *testing.T) {
	units := testutil.Units(tablet.KindRegion, tablet.KindUndeterminedLines, tablet.KindRegion, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{
		testutil.Broken("u1"), testutil.UndeterminedLines("u2", 2), testutil.Broken("u3"),
	})

	got := NumberLines(units, markups)

	assert.Equal(t, []string{"-", "1.01", "-", "1.02"}, lineStrings(got))
}

func TestNumberLines_MarkupOnOtherKindIgnored(t *testing.T) {
	units := testutil.Units(tablet.KindLine, tablet.KindSign, tablet.KindLine)
	markups := IndexMarkups([]tablet.Markup{testutil.Broken("u2"), testutil.UndeterminedLines("u3", 5)})

	assert.Equal(t, []string{"1", "1", "2"}, lineStrings(NumberLines(units, markups)))
}

// The sentinel is 0.01 per broken run, so the 100th run reaches 1.00 and the
// lines after it collide with whole line numbers. This pins that boundary.
func TestNumberLines_HundredthBrokenRunCollidesWithWholeLines(t *testing.T) {
	var kinds []tablet.UnitKind
	for i := 0; i < 100; i++ {
		kinds = append(kinds, tablet.KindRegion, tablet.KindLine)
	}
	units := testutil.Units(kinds...)

	var markups []tablet.Markup
	for i := 0; i < 100; i++ {
		markups = append(markups, testutil.Broken(units[2*i].ID))
	}

	got := NumberLines(units, IndexMarkups(markups))
	require.Len(t, got, 200)

	assert.Equal(t, tablet.LineFromHundredths(101), got[1])
	assert.Equal(t, tablet.LineFromHundredths(199), got[197])
	assert.Equal(t, tablet.Line(2), got[199])
	assert.True(t, got[199].IsWhole())
}

func TestNumberLines_WholeLinesStrictlyIncrease(t *testing.T) {
	kinds := []tablet.UnitKind{
		tablet.KindLine, tablet.KindSign, tablet.KindNumber, tablet.KindSeparator,
		tablet.KindUndeterminedSigns, tablet.KindUndeterminedLines, tablet.KindColumn,
		tablet.KindSection, tablet.KindRegion, "ruling",
	}
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 50; round++ {
		units := make([]tablet.UnitKind, 40)
		for i := range units {
			units[i] = kinds[rng.IntN(len(kinds))]
		}
		rows := testutil.Units(units...)

		var markups []tablet.Markup
		for _, u := range rows {
			if u.Kind == tablet.KindUndeterminedLines {
				markups = append(markups, testutil.UndeterminedLines(u.ID, int64(1+rng.IntN(4))))
			}
		}

		got := NumberLines(rows, IndexMarkups(markups))

		prev := tablet.LineNumber{}
		for i, u := range rows {
			if u.Kind != tablet.KindLine {
				continue
			}
			require.True(t, got[i].IsWhole(), "round %d unit %s", round, u.ID)
			if prev.Valid {
				require.Greater(t, got[i].Hundredths, prev.Hundredths, "round %d unit %s", round, u.ID)
			}
			prev = got[i]
		}
	}
}

func TestIndexMarkups(t *testing.T) {
	idx := IndexMarkups([]tablet.Markup{
		testutil.Broken("u1"),
		testutil.UndeterminedLines("u2", 4),
		{ID: "x", UnitID: "u2", Kind: "damaged"},
	})

	assert.True(t, idx.Has("u1", tablet.MarkupBroken))
	assert.False(t, idx.Has("u1", tablet.MarkupUndeterminedLines))
	assert.False(t, idx.Has("u9", tablet.MarkupBroken))
	assert.Equal(t, int64(4), idx.Value("u2", tablet.MarkupUndeterminedLines))
	assert.Equal(t, int64(0), idx.Value("u1", tablet.MarkupUndeterminedLines))
	assert.Len(t, idx["u2"], 2)
}
