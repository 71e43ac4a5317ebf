package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/bm-12345.yaml"

func TestImport_RecomputesTablet(t *testing.T) {
	db := testDB(t)

	out, _, err := executeRoot(t, "--db", db, "import", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bm-12345: 7 unit(s), 2 markup(s), 3 node(s), wrote 10 row(s)")

	// Re-importing replaces the rows; the recompute writes them all again.
	out, _, err = executeRoot(t, "--db", db, "import", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 10 row(s)")
}

func TestImport_InvalidFixture(t *testing.T) {
	out, _, err := executeRoot(t, "--db", testDB(t), "--format", "json", "import", "testdata/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid fixture testdata/invalid.yaml")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeFixture, resp.Error.Code)
}

func TestImport_RequiresArgument(t *testing.T) {
	_, _, err := executeRoot(t, "--db", testDB(t), "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestCheck_DriftThenRecompute(t *testing.T) {
	db := testDB(t)

	_, _, err := executeRoot(t, "--db", db, "import", "--no-recompute", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "check")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bm-12345: 7 unit(s), 3 node(s) stale")

	// A dry run reports the same writes and leaves the drift in place.
	out, _, err = executeRoot(t, "--db", db, "recompute", "--all", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "bm-12345: 7 unit(s), 3 node(s), would write 10 row(s)")

	_, _, err = executeRoot(t, "--db", db, "check")
	require.Error(t, err)

	out, _, err = executeRoot(t, "--db", db, "recompute", "--tablet", "bm-12345")
	require.NoError(t, err)
	assert.Contains(t, out, "Recompute Summary: 1 tablet(s), wrote 10 row(s)")

	out, _, err = executeRoot(t, "--db", db, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bm-12345")
	assert.Contains(t, out, "✓ All tablets consistent")
}

func TestCheck_VerboseListsChanges(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", "--no-recompute", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "--verbose", "check", "--tablet", "bm-12345")
	require.Error(t, err)
	assert.Contains(t, out, "  unit u4: obj=- tab=- lin=- line=- -> obj=4 tab=- lin=- line=-")
	assert.Contains(t, out, "  unit u5: obj=- tab=- lin=- line=- -> obj=5 tab=- lin=- line=1.01")
	assert.Contains(t, out, "  node w1: obj=- word=- child=- -> obj=2 word=1 child=1")
}

func TestCheck_JSON(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", "--no-recompute", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "--format", "json", "check")
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeDrift, resp.Error.Code)
	require.Len(t, resp.Data.Tablets, 1)
	assert.False(t, resp.Data.AllConsistent)
	assert.Equal(t, 7, resp.Data.Tablets[0].UnitWrites)
	assert.Len(t, resp.Data.Tablets[0].Units, 7)
}

func TestCheck_EmptyDatabase(t *testing.T) {
	out, _, err := executeRoot(t, "--db", testDB(t), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No tablets found in database.")
}

func TestRecompute_UnknownTablet(t *testing.T) {
	out, _, err := executeRoot(t, "--db", testDB(t), "--format", "json", "recompute", "--tablet", "t9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "tablet t9 not found")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, CodeNotFound, resp.Error.Code)
}

func TestRecompute_RequiresTabletOrAll(t *testing.T) {
	_, _, err := executeRoot(t, "--db", testDB(t), "recompute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of the flags in the group [tablet all] is required")

	_, _, err = executeRoot(t, "--db", testDB(t), "recompute", "--tablet", "t1", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "if any flags in the group [tablet all] are set none of the others can be")
}

func TestRecompute_DryRunFromEnv(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", "--no-recompute", fixturePath)
	require.NoError(t, err)

	t.Setenv("TABLETPOS_RECOMPUTE_DRY_RUN", "true")
	out, _, err := executeRoot(t, "--db", db, "recompute", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "would write 10 row(s)")
}

func TestRecompute_JSON(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", "--no-recompute", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "--format", "json", "recompute", "--all")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   RecomputeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 10, resp.Data.TotalWrites)
	require.Len(t, resp.Data.Tablets, 1)
	assert.Equal(t, "bm-12345", resp.Data.Tablets[0].TabletID)
	assert.Equal(t, 7, resp.Data.Tablets[0].Units)
}

func TestExport_Text(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "export", "--tablet", "bm-12345")
	require.NoError(t, err)

	assert.Contains(t, out, "Tablet bm-12345 (BM 12345)")
	assert.Contains(t, out, "Units: 7")
	assert.Contains(t, out, "obj=2 tab=1 lin=1 line=1")
	assert.Contains(t, out, "obj=4 tab=- lin=- line=- [broken]")
	assert.Contains(t, out, "obj=6 tab=- lin=- line=2.01 [undeterminedLines=3]")
	assert.Contains(t, out, "Discourse nodes: 3")
	assert.Contains(t, out, "parent=du1")
}

func TestExport_JSON(t *testing.T) {
	db := testDB(t)
	_, _, err := executeRoot(t, "--db", db, "import", fixturePath)
	require.NoError(t, err)

	out, _, err := executeRoot(t, "--db", db, "--format", "json", "export", "--tablet", "bm-12345")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "bm-12345", resp.Data.Tablet.ID)
	require.Len(t, resp.Data.Units, 7)
	assert.Equal(t, "5.01", resp.Data.Units[6].LineNumber.String())
	require.Len(t, resp.Data.Nodes, 3)
	assert.Equal(t, int64(2), resp.Data.Nodes[2].WordOnTablet.Int64)
}

func TestExport_UnknownTablet(t *testing.T) {
	_, _, err := executeRoot(t, "--db", testDB(t), "export", "--tablet", "t9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "tablet t9 not found")
}

func TestExport_RequiresTablet(t *testing.T) {
	_, _, err := executeRoot(t, "--db", testDB(t), "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
