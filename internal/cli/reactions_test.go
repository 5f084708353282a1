package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionsList(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "list", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "mth")
}

func TestReactionsListEmpty(t *testing.T) {
	out, err := execute(t, "reactions", "list", "--base", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No reactions defined")
}

func TestReactionsShow(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "show", "mth", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Reaction: mth")
	assert.Contains(t, out, "methanol")
	assert.Contains(t, out, "c1: methane")
}

func TestReactionsShowUnknown(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "show", "nope", "--base", base)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "is not defined")
}

func TestReactionsAdd(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "add", "mto",
		"--feed", "methanol,dimethyl ether",
		"--product", "olefins=ethylene,propylene",
		"--product", "aromatics=benzene,toluene",
		"--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, `Added reaction "mto"`)
	assert.FileExists(t, filepath.Join(base, "library", "reactions", "mto.json"))

	// The new record round-trips through show.
	out, err = execute(t, "reactions", "show", "mto", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "olefins: ethylene, propylene")
	assert.Contains(t, out, "aromatics: benzene, toluene")
}

func TestReactionsAddDuplicate(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "add", "mth",
		"--feed", "methanol",
		"--product", "c1=methane",
		"--base", base)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "already exists")
}

func TestReactionsAddJSON(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "reactions", "add", "dme",
		"--feed", "methanol",
		"--product", "ethers=dimethyl ether",
		"--format", "json",
		"--base", base)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "dme", dataField(t, resp, "name"))
}

func TestBuildReactionSpec(t *testing.T) {
	spec, err := buildReactionSpec("mto",
		[]string{"methanol", "dimethyl ether"},
		[]string{"olefins=ethylene,propylene", "aromatics=benzene, toluene"})
	require.NoError(t, err)

	assert.Equal(t, "mto", spec.Name)
	assert.Equal(t, []string{"methanol", "dimethyl ether"}, spec.Feed.Compounds)
	assert.Equal(t, []string{"aromatics", "olefins"}, spec.GroupNames())
	assert.Equal(t, []string{"ethylene", "propylene"}, spec.ProductCompounds("olefins"))
	assert.Equal(t, []string{"benzene", "toluene"}, spec.ProductCompounds("aromatics"))
}

func TestBuildReactionSpec_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		products []string
	}{
		{"missing equals", []string{"olefins"}},
		{"empty group name", []string{"=ethylene"}},
		{"no compounds", []string{"olefins= , "}},
		{"repeated group", []string{"olefins=ethylene", "olefins=propylene"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildReactionSpec("mto", []string{"methanol"}, tt.products)
			require.Error(t, err)
		})
	}
}
