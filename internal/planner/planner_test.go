package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

func TestDefaultInputs(t *testing.T) {
	in := DefaultInputs()
	assert.Equal(t, 37.0, in.TemperatureC)
	assert.Equal(t, 26.0, in.TotalFlow)
	assert.Equal(t, 210.0, in.CatalystMassMg)
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		record domain.AntoineRecord
		in     Inputs
		want   domain.SetupPlan
	}{
		{
			// A - B/(T+C) comes out exactly zero, so Psat is atmospheric
			// pressure expressed in mbar.
			name:   "unit exponent",
			record: domain.AntoineRecord{Compound: "methanol", A: 2, B: 100, C: 13, MolarMass: 32.042},
			in:     Inputs{TemperatureC: 37, TotalFlow: 26, CatalystMassMg: 210},
			want: domain.SetupPlan{
				Compound:       "methanol",
				TemperatureC:   37,
				TotalFlow:      26,
				CatalystMassMg: 210,
				PsatMbar:       1.33322,
				CarrierFlow:    25.96534,
				ReactantFlow:   0.03466,
				MassFlow:       0.00269,
				WHSV:           0.01281,
				ContactTime:    4683.84075,
			},
		},
		{
			name:   "methanol at 40 C",
			record: domain.AntoineRecord{Compound: "methanol", A: 7.897, B: 1474.08, C: 229.13, MolarMass: 32.042},
			in:     Inputs{TemperatureC: 40, TotalFlow: 26, CatalystMassMg: 210},
			want: domain.SetupPlan{
				Compound:       "methanol",
				TemperatureC:   40,
				TotalFlow:      26,
				CatalystMassMg: 210,
				PsatMbar:       350.50861,
				CarrierFlow:    16.88678,
				ReactantFlow:   9.11322,
				MassFlow:       0.70767,
				WHSV:           3.36986,
				ContactTime:    17.80489,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.record, tt.in)
			require.NoError(t, err)
			assert.Equal(t, &tt.want, plan)
		})
	}
}

func TestPlan_TemperatureRange(t *testing.T) {
	tmin, tmax := 10.0, 30.0
	record := domain.AntoineRecord{
		Compound: "methanol", A: 7.897, B: 1474.08, C: 229.13,
		TminC: &tmin, TmaxC: &tmax, MolarMass: 32.042,
	}

	t.Run("inside range", func(t *testing.T) {
		_, err := Plan(record, Inputs{TemperatureC: 30, TotalFlow: 26, CatalystMassMg: 210})
		require.NoError(t, err)
	})

	t.Run("outside range", func(t *testing.T) {
		_, err := Plan(record, Inputs{TemperatureC: 37, TotalFlow: 26, CatalystMassMg: 210})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		assert.Contains(t, err.Error(), "methanol")
	})
}

func TestPlan_InputValidation(t *testing.T) {
	record := domain.AntoineRecord{Compound: "methanol", A: 7.897, B: 1474.08, C: 229.13, MolarMass: 32.042}

	tests := []struct {
		name string
		in   Inputs
	}{
		{name: "zero flow", in: Inputs{TemperatureC: 37, TotalFlow: 0, CatalystMassMg: 210}},
		{name: "negative flow", in: Inputs{TemperatureC: 37, TotalFlow: -5, CatalystMassMg: 210}},
		{name: "zero catalyst mass", in: Inputs{TemperatureC: 37, TotalFlow: 26, CatalystMassMg: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(record, tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestPlan_NoUptake(t *testing.T) {
	// Psat rounds to zero at this exponent: the whole flow bypasses the
	// compound and the space velocity degenerates.
	record := domain.AntoineRecord{Compound: "methanol", A: -10, B: 0, C: 0, MolarMass: 32.042}

	_, err := Plan(record, Inputs{TemperatureC: 37, TotalFlow: 26, CatalystMassMg: 210})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "uptake")
}
