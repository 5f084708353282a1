package instrument

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catlab/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestParseAreaCell(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want float64
		ok   bool
	}{
		{name: "plain number", cell: "12.5", want: 12.5, ok: true},
		{name: "padded", cell: "  42  ", want: 42, ok: true},
		{name: "thousands separator", cell: "1,234.5", want: 1234.5, ok: true},
		{name: "empty reads as zero", cell: "", want: 0, ok: true},
		{name: "blank reads as zero", cell: "   ", want: 0, ok: true},
		{name: "negative", cell: "-3", want: -3, ok: true},
		{name: "text is rejected", cell: "n.d.", want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAreaCell(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 2.68, roundTo(2.678, 2))
	assert.Equal(t, -1.23, roundTo(-1.234, 2))
	assert.Equal(t, 3.1, roundTo(3.14, 1))
	assert.Equal(t, 7.0, roundTo(7, 2))
	assert.True(t, math.IsNaN(roundTo(math.NaN(), 2)))
}

func TestElapsedHours(t *testing.T) {
	seconds := []float64{1000, 4600, 8200}

	assert.Equal(t, []float64{0, 1, 2}, elapsedHours(seconds, 0))
	assert.Equal(t, []float64{0.5, 1.5, 2.5}, elapsedHours(seconds, 30))
	assert.Empty(t, elapsedHours(nil, 0))
}

func TestFinalizeRun(t *testing.T) {
	ctx := context.Background()

	t.Run("divides by response factors and clips negatives", func(t *testing.T) {
		areas := map[string][]float64{
			"a": {2, 4},
			"b": {-1, 3},
		}
		run, err := finalizeRun(ctx, testLogger(), "rig", []string{"rig.csv"},
			[]float64{0, 0.5}, []string{"a", "b"}, areas,
			map[string]float64{"a": 2})
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 2}, run.Areas["a"])
		assert.Equal(t, []float64{0, 3}, run.Areas["b"])
		assert.Equal(t, "rig", run.Instrument)
		assert.Equal(t, []string{"rig.csv"}, run.Sources)
	})

	t.Run("factor for an absent compound is skipped", func(t *testing.T) {
		run, err := finalizeRun(ctx, testLogger(), "rig", nil,
			[]float64{0, 1}, []string{"a"},
			map[string][]float64{"a": {4, 8}},
			map[string]float64{"a": 2, "ghost": 10})
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 4}, run.Areas["a"])
	})

	t.Run("rows that do not advance the index are dropped", func(t *testing.T) {
		run, err := finalizeRun(ctx, testLogger(), "rig", nil,
			[]float64{0, 0.5, 0.5, 1}, []string{"a"},
			map[string][]float64{"a": {1, 2, 3, 4}}, nil)
		require.NoError(t, err)

		assert.Equal(t, []float64{0, 0.5, 1}, run.TOS)
		assert.Equal(t, []float64{1, 2, 4}, run.Areas["a"])
	})

	t.Run("no rows is a parsing error", func(t *testing.T) {
		_, err := finalizeRun(ctx, testLogger(), "rig", nil,
			nil, []string{"a"}, map[string][]float64{"a": {}}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	})

	t.Run("misaligned columns fail validation", func(t *testing.T) {
		_, err := finalizeRun(ctx, testLogger(), "rig", nil,
			[]float64{0, 1}, []string{"a"},
			map[string][]float64{"a": {1}}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	})
}
