package library

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catlab/internal/config"
	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// setupTestStore creates a store over a temp library populated with fixtures.
func setupTestStore(t *testing.T) (*Store, *config.Paths) {
	t.Helper()

	tempDir := t.TempDir()
	paths := config.PathsFrom(tempDir)
	require.NoError(t, paths.EnsureDirectories())

	store := NewStore(paths, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	return store, paths
}

func writeRecord(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestStore_Reaction(t *testing.T) {
	store, paths := setupTestStore(t)
	ctx := context.Background()

	writeRecord(t, paths.GetReactionPath("mth"), map[string]interface{}{
		"feed": map[string]interface{}{"compounds": []string{"Methanol", "DME"}},
		"products": map[string]interface{}{
			"olefins":   map[string]interface{}{"compounds": []string{"Ethylene", "propylene"}},
			"aromatics": map[string]interface{}{"compounds": []string{"benzene", "toluene"}},
		},
	})

	tests := []struct {
		name     string
		reaction string
		wantErr  bool
		errType  apperrors.ErrorType
		validate func(*testing.T, *domain.ReactionSpec)
	}{
		{
			name:     "existing record with mixed-case compounds",
			reaction: "mth",
			validate: func(t *testing.T, spec *domain.ReactionSpec) {
				assert.Equal(t, "mth", spec.Name)
				assert.Equal(t, []string{"methanol", "dme"}, spec.Feed.Compounds)
				assert.Equal(t, []string{"ethylene", "propylene"}, spec.Products["olefins"].Compounds)
				assert.Equal(t, []string{"aromatics", "olefins"}, spec.GroupNames())
			},
		},
		{
			name:     "missing record is not defined",
			reaction: "does-not-exist",
			wantErr:  true,
			errType:  apperrors.ErrTypeConfig,
		},
		{
			name:     "path traversal name rejected",
			reaction: "../../etc/passwd",
			wantErr:  true,
			errType:  apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := store.Reaction(ctx, tt.reaction)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errType, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			tt.validate(t, spec)
		})
	}
}

func TestStore_Reaction_InvalidJSON(t *testing.T) {
	store, paths := setupTestStore(t)

	require.NoError(t, os.WriteFile(paths.GetReactionPath("broken"), []byte("{not json"), 0644))

	_, err := store.Reaction(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestStore_Reaction_FailsValidation(t *testing.T) {
	store, paths := setupTestStore(t)

	// Feed without compounds.
	writeRecord(t, paths.GetReactionPath("empty-feed"), map[string]interface{}{
		"feed":     map[string]interface{}{"compounds": []string{}},
		"products": map[string]interface{}{"olefins": map[string]interface{}{"compounds": []string{"ethylene"}}},
	})

	_, err := store.Reaction(context.Background(), "empty-feed")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestStore_AddReaction(t *testing.T) {
	store, paths := setupTestStore(t)
	ctx := context.Background()

	spec := &domain.ReactionSpec{
		Name: "propane-dehydrogenation",
		Feed: domain.CompoundGroup{Compounds: []string{"Propane"}},
		Products: map[string]domain.CompoundGroup{
			"olefins": {Compounds: []string{"Propylene"}},
		},
	}

	require.NoError(t, store.AddReaction(ctx, spec))
	assert.FileExists(t, paths.GetReactionPath("propane-dehydrogenation"))

	// The stored record round-trips with normalized compound names.
	loaded, err := store.Reaction(ctx, "propane-dehydrogenation")
	require.NoError(t, err)
	assert.Equal(t, []string{"propane"}, loaded.Feed.Compounds)
	assert.Equal(t, []string{"propylene"}, loaded.Products["olefins"].Compounds)

	// Adding under the same name is a conflict.
	err = store.AddReaction(ctx, spec)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicate(err))

	// Names that are not safe file stems are rejected.
	bad := &domain.ReactionSpec{
		Name: "../escape",
		Feed: domain.CompoundGroup{Compounds: []string{"methanol"}},
		Products: map[string]domain.CompoundGroup{
			"olefins": {Compounds: []string{"ethylene"}},
		},
	}
	err = store.AddReaction(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestStore_ListReactions(t *testing.T) {
	store, paths := setupTestStore(t)
	ctx := context.Background()

	names, err := store.ListReactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	writeRecord(t, paths.GetReactionPath("mth"), map[string]interface{}{
		"feed":     map[string]interface{}{"compounds": []string{"methanol"}},
		"products": map[string]interface{}{"olefins": map[string]interface{}{"compounds": []string{"ethylene"}}},
	})
	writeRecord(t, paths.GetReactionPath("cracking"), map[string]interface{}{
		"feed":     map[string]interface{}{"compounds": []string{"hexane"}},
		"products": map[string]interface{}{"light": map[string]interface{}{"compounds": []string{"propane"}}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(paths.ReactionsDir, "notes.txt"), []byte("x"), 0644))

	names, err = store.ListReactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cracking", "mth"}, names)
}

func TestStore_Instrument(t *testing.T) {
	store, paths := setupTestStore(t)
	ctx := context.Background()

	writeRecord(t, paths.GetInstrumentPath("co-feed"), map[string]interface{}{
		"Response_Factors": map[string]float64{
			"Methanol": 1.85,
			"ethylene": 1.0,
		},
	})
	writeRecord(t, paths.GetInstrumentPath("high-pressure"), map[string]interface{}{
		"Response_Factors": map[string]float64{"methanol": 1.85},
		"min_run_time":     30.0,
	})

	cfg, err := store.Instrument(ctx, "co-feed")
	require.NoError(t, err)
	assert.Equal(t, "co-feed", cfg.Name)
	assert.Equal(t, 1.85, cfg.ResponseFactors["methanol"])
	assert.Equal(t, 1.0, cfg.ResponseFactors["ethylene"])
	assert.Equal(t, domain.DefaultMinRunTime, cfg.RunTimeCutoff())

	hp, err := store.Instrument(ctx, "high-pressure")
	require.NoError(t, err)
	assert.Equal(t, 30.0, hp.RunTimeCutoff())

	_, err = store.Instrument(ctx, "unknown-rig")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotDefined(err))

	names, err := store.ListInstruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"co-feed", "high-pressure"}, names)
}

func TestStore_Antoine(t *testing.T) {
	store, paths := setupTestStore(t)
	ctx := context.Background()

	_, err := store.AntoineTable(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))

	writeRecord(t, paths.AntoineFile, map[string]interface{}{
		"Methanol": map[string]interface{}{
			"formula":    "CH3OH",
			"A":          8.08097,
			"B":          1582.271,
			"C":          239.726,
			"molar_mass": 32.04,
		},
		"water": map[string]interface{}{
			"A":          8.07131,
			"B":          1730.63,
			"C":          233.426,
			"t_min_c":    1.0,
			"t_max_c":    100.0,
			"molar_mass": 18.015,
		},
	})

	table, err := store.AntoineTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"methanol", "water"}, table.Compounds())

	rec, err := store.Antoine(ctx, "Methanol")
	require.NoError(t, err)
	assert.Equal(t, "methanol", rec.Compound)
	assert.Equal(t, 8.08097, rec.A)
	assert.True(t, rec.InRange(500)) // no range set

	water := table["water"]
	assert.True(t, water.InRange(37))
	assert.False(t, water.InRange(150))
	assert.False(t, water.InRange(-10))

	_, err = store.Antoine(ctx, "toluene")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotDefined(err))
}
