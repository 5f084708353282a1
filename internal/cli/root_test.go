package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "catlab", cmd.Use)
	assert.Contains(t, cmd.Long, "gas chromatograph")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"normalize", "analyze", "batch", "reactions", "instruments", "plan", "history", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestRecordSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{
		{"reactions", "list"},
		{"reactions", "show"},
		{"reactions", "add"},
		{"instruments", "list"},
		{"instruments", "show"},
	} {
		subCmd, _, err := cmd.Find(path)
		require.NoError(t, err, "%v should exist", path)
		assert.Equal(t, path[len(path)-1], subCmd.Name())
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

	baseFlag := cmd.PersistentFlags().Lookup("base")
	require.NotNil(t, baseFlag)
	assert.Equal(t, "", baseFlag.DefValue)
}

func TestNormalizeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	normalizeCmd, _, err := cmd.Find([]string{"normalize"})
	require.NoError(t, err)

	for _, name := range []string{"instrument", "mid", "back", "offset", "out"} {
		require.NotNil(t, normalizeCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	analyzeCmd, _, err := cmd.Find([]string{"analyze"})
	require.NoError(t, err)

	reactionFlag := analyzeCmd.Flags().Lookup("reaction")
	require.NotNil(t, reactionFlag)
	assert.Equal(t, "", reactionFlag.DefValue)

	csvFlag := analyzeCmd.Flags().Lookup("csv")
	require.NotNil(t, csvFlag)
	assert.Equal(t, "false", csvFlag.DefValue)

	require.NotNil(t, analyzeCmd.Flags().Lookup("report"))
}

func TestBatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	batchCmd, _, err := cmd.Find([]string{"batch"})
	require.NoError(t, err)

	cofeedFlag := batchCmd.Flags().Lookup("cofeed-instrument")
	require.NotNil(t, cofeedFlag)
	assert.Equal(t, "CoFeed", cofeedFlag.DefValue)

	hprFlag := batchCmd.Flags().Lookup("hpr-instrument")
	require.NotNil(t, hprFlag)
	assert.Equal(t, "HPR", hprFlag.DefValue)

	require.NotNil(t, batchCmd.Flags().Lookup("pattern"))
	require.NotNil(t, batchCmd.Flags().Lookup("newer-than"))
	require.NotNil(t, batchCmd.Flags().Lookup("workers"))
}

func TestPlanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	planCmd, _, err := cmd.Find([]string{"plan"})
	require.NoError(t, err)

	tempFlag := planCmd.Flags().Lookup("temp")
	require.NotNil(t, tempFlag)
	assert.Equal(t, "37", tempFlag.DefValue)

	flowFlag := planCmd.Flags().Lookup("flow")
	require.NotNil(t, flowFlag)
	assert.Equal(t, "26", flowFlag.DefValue)

	catalystFlag := planCmd.Flags().Lookup("catalyst")
	require.NotNil(t, catalystFlag)
	assert.Equal(t, "210", catalystFlag.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)

	require.NotNil(t, historyCmd.Flags().Lookup("reaction"))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "version", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "catlab v")
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, dataField(t, resp, "version"))
}
