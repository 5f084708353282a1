package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"catlab/internal/infrastructure"
)

// setupBase builds a minimal layout in a temp directory: one instrument
// record, one reaction record and the Antoine table.
func setupBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	writeRecord(t, filepath.Join(base, "library", "instruments", "CoFeed.json"), map[string]any{
		"Response_Factors": map[string]float64{
			"methanol": 1,
			"methane":  1,
		},
	})
	writeRecord(t, filepath.Join(base, "library", "reactions", "mth.json"), map[string]any{
		"feed": map[string]any{"compounds": []string{"methanol"}},
		"products": map[string]any{
			"c1": map[string]any{"compounds": []string{"methane"}},
		},
	})
	writeRecord(t, filepath.Join(base, "library", "antoine", "antoine_coef.json"), map[string]any{
		"methanol": map[string]any{
			"A": 8.08097, "B": 1582.271, "C": 239.726,
			"molar_mass": 32.04,
		},
	})

	return base
}

func writeRecord(t *testing.T, path string, record any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// writeCoFeedCSV writes a three-sample co-feed export. The parser drops the
// two header rows and the two trailing information rows.
func writeCoFeedCSV(t *testing.T, dir, name string) string {
	t.Helper()
	lines := []string{
		"Sample Time,Methanol,Methane,",
		"-,Front Signal,Front Signal,",
		"20240301 120000-01,inj,1,1000,10",
		"20240301 123000-02,inj,2,900,40",
		"20240301 130000-03,inj,3,800,80",
		"Instrument Method,mth.M",
		"Report Generated,03/02/2024",
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// execute runs the CLI once against a fresh command tree and returns what it
// printed. The logger singleton is reset so every test initializes its own.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON-format CLI response envelope.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// dataField digs one field out of a decoded response payload.
func dataField(t *testing.T, resp CLIResponse, key string) any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data[key]
}
