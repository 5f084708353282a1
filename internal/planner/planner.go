// Package planner computes the feed setup for liquid-fed experiments from an
// Antoine vapour-pressure record: the saturator pressure at the chosen
// temperature, the carrier gas split, the reactant mass flow and the space
// velocity over the loaded catalyst.
package planner

import (
	"fmt"
	"math"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// Inputs are the operator-chosen bench conditions.
type Inputs struct {
	TemperatureC   float64
	TotalFlow      float64 // saturator feed, ml/min
	CatalystMassMg float64
}

// DefaultInputs returns the usual bench settings: 37 C saturator, 26 ml/min
// total flow, 210 mg catalyst.
func DefaultInputs() Inputs {
	return Inputs{TemperatureC: 37, TotalFlow: 26, CatalystMassMg: 210}
}

// Plan derives the full feed plan for one compound. Every step is rounded to
// five decimals before it feeds the next, so the printed intermediate values
// are exactly the ones the final numbers were derived from.
func Plan(record domain.AntoineRecord, in Inputs) (*domain.SetupPlan, error) {
	if in.TotalFlow <= 0 {
		return nil, apperrors.NewValidationError("total flow must be positive", nil)
	}
	if in.CatalystMassMg <= 0 {
		return nil, apperrors.NewValidationError("catalyst mass must be positive", nil)
	}
	if !record.InRange(in.TemperatureC) {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"%.1f C is outside the Antoine validity range for %s",
			in.TemperatureC, record.Compound), nil)
	}

	psat := round5(math.Pow(10, record.A-record.B/(in.TemperatureC+record.C)) * 1013.25 / 760)
	carrier := round5((1000 - psat) / 1000 * in.TotalFlow)
	reactant := round5(in.TotalFlow - carrier)
	// Ideal gas at 1000 mbar and 298 K: vapour ml/min to compound g/h.
	mass := round5(0.987 * reactant * 60 * record.MolarMass / (0.082 * 1000 * 298))
	whsv := round5(1000 * mass / in.CatalystMassMg)
	if whsv <= 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"no measurable %s uptake at %.1f C; raise the saturator temperature",
			record.Compound, in.TemperatureC), nil)
	}
	contact := round5(1 / whsv * 60)

	return &domain.SetupPlan{
		Compound:       record.Compound,
		TemperatureC:   in.TemperatureC,
		TotalFlow:      in.TotalFlow,
		CatalystMassMg: in.CatalystMassMg,
		PsatMbar:       psat,
		CarrierFlow:    carrier,
		ReactantFlow:   reactant,
		MassFlow:       mass,
		WHSV:           whsv,
		ContactTime:    contact,
	}, nil
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
