package domain

import "sort"

// AntoineRecord holds the Antoine vapour-pressure coefficients for one
// compound in the mmHg/Celsius form, log10(P) = A - B/(C + T), plus the molar
// mass needed to convert volumetric feed flow into mass flow.
type AntoineRecord struct {
	Compound  string   `json:"-" validate:"required"`
	Formula   string   `json:"formula,omitempty"`
	A         float64  `json:"A" validate:"required"`
	B         float64  `json:"B" validate:"required"`
	C         float64  `json:"C"`
	TminC     *float64 `json:"t_min_c,omitempty"`
	TmaxC     *float64 `json:"t_max_c,omitempty"`
	MolarMass float64  `json:"molar_mass" validate:"required,gt=0"`
}

// InRange reports whether the temperature lies inside the record's validity
// range. Records without a range accept any temperature.
func (a *AntoineRecord) InRange(tempC float64) bool {
	if a.TminC != nil && tempC < *a.TminC {
		return false
	}
	if a.TmaxC != nil && tempC > *a.TmaxC {
		return false
	}
	return true
}

// AntoineTable maps lower-case compound names to their coefficient records.
type AntoineTable map[string]AntoineRecord

// Compounds returns the table's compound names in sorted order.
func (t AntoineTable) Compounds() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetupPlan is the computed feed plan for one liquid-fed experiment: the
// saturator split of the carrier gas, the resulting reactant mass flow and the
// space velocity over the loaded catalyst.
type SetupPlan struct {
	Compound       string  `json:"compound"`
	TemperatureC   float64 `json:"temperature_c"`
	TotalFlow      float64 `json:"total_flow_ml_min"`
	CatalystMassMg float64 `json:"catalyst_mass_mg"`
	PsatMbar       float64 `json:"psat_mbar"`
	CarrierFlow    float64 `json:"carrier_flow_ml_min"`
	ReactantFlow   float64 `json:"reactant_flow_ml_min"`
	MassFlow       float64 `json:"mass_flow_g_h"`
	WHSV           float64 `json:"whsv_per_h"`
	ContactTime    float64 `json:"contact_time_min"`
}
