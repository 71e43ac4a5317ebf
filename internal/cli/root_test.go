package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the root command with args and an isolated HOME.
func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// testDB returns a database path inside a fresh temp directory.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tablets.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tabletpos", cmd.Use)
	assert.Contains(t, cmd.Long, "line numbers")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"recompute", "check", "import", "export", "test", "config"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestRecomputeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	recomputeCmd, _, err := cmd.Find([]string{"recompute"})
	require.NoError(t, err)

	for _, name := range []string{"tablet", "all", "dry-run"} {
		assert.NotNil(t, recomputeCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestFormatValidation(t *testing.T) {
	_, _, err := executeRoot(t, "--format", "xml", "check", "--db", testDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestConfigFileSuppliesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+dbPath+"\n"), 0o644))

	out, _, err := executeRoot(t, "--config", cfgPath, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No tablets found")

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr, "check should open the database named in the config file")
}

func TestDBFlagOverridesEnv(t *testing.T) {
	envDB := testDB(t)
	flagDB := testDB(t)
	t.Setenv("TABLETPOS_DATABASE", envDB)

	_, _, err := executeRoot(t, "--db", flagDB, "check")
	require.NoError(t, err)

	_, statErr := os.Stat(flagDB)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(envDB)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := executeRoot(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestVerboseEnablesDebugLogs(t *testing.T) {
	_, stderr, err := executeRoot(t, "--verbose", "--db", testDB(t), "check")
	require.NoError(t, err)
	assert.Contains(t, stderr, "opened database")
}
