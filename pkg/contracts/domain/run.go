package domain

import (
	"fmt"
	"math"
	"sort"
)

// Run is a standardized chromatograph run: one row per retained injection,
// indexed by time-on-stream in hours. Column order is fixed at parse time so
// that exports and reports are deterministic.
type Run struct {
	Instrument string               `json:"instrument"`
	Sources    []string             `json:"sources"`
	TOS        []float64            `json:"tos_hours"`
	Compounds  []string             `json:"compounds"`
	Areas      map[string][]float64 `json:"areas"`
}

// Len returns the number of samples in the run.
func (r *Run) Len() int {
	return len(r.TOS)
}

// Column returns the corrected area series for a compound. The second return
// is false when the run has no such column.
func (r *Run) Column(name string) ([]float64, bool) {
	v, ok := r.Areas[name]
	return v, ok
}

// HasCompound reports whether the run carries a column for the compound.
func (r *Run) HasCompound(name string) bool {
	_, ok := r.Areas[name]
	return ok
}

// TotalAt sums every compound column at sample i.
func (r *Run) TotalAt(i int) float64 {
	var total float64
	for _, name := range r.Compounds {
		total += r.Areas[name][i]
	}
	return total
}

// SumAt sums the given compound columns at sample i. Compounds the run does
// not carry contribute zero.
func (r *Run) SumAt(i int, compounds []string) float64 {
	var sum float64
	for _, name := range compounds {
		if col, ok := r.Areas[name]; ok {
			sum += col[i]
		}
	}
	return sum
}

// Validate checks the structural invariants of a standardized run: aligned
// column lengths, a strictly increasing time index and non-negative areas.
func (r *Run) Validate() error {
	if len(r.Compounds) == 0 {
		return fmt.Errorf("run has no compound columns")
	}
	if len(r.Compounds) != len(r.Areas) {
		return fmt.Errorf("run has %d compounds but %d area columns", len(r.Compounds), len(r.Areas))
	}
	n := len(r.TOS)
	for _, name := range r.Compounds {
		col, ok := r.Areas[name]
		if !ok {
			return fmt.Errorf("compound %q has no area column", name)
		}
		if len(col) != n {
			return fmt.Errorf("compound %q has %d samples, index has %d", name, len(col), n)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				return fmt.Errorf("compound %q has NaN area at sample %d", name, i)
			}
			if v < 0 {
				return fmt.Errorf("compound %q has negative area %.2f at sample %d", name, v, i)
			}
		}
	}
	for i := 1; i < n; i++ {
		if r.TOS[i] <= r.TOS[i-1] {
			return fmt.Errorf("time index not strictly increasing at sample %d (%.2f after %.2f)", i, r.TOS[i], r.TOS[i-1])
		}
	}
	return nil
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	out := &Run{
		Instrument: r.Instrument,
		Sources:    append([]string(nil), r.Sources...),
		TOS:        append([]float64(nil), r.TOS...),
		Compounds:  append([]string(nil), r.Compounds...),
		Areas:      make(map[string][]float64, len(r.Areas)),
	}
	for name, col := range r.Areas {
		out.Areas[name] = append([]float64(nil), col...)
	}
	return out
}

// MissingCompounds returns, sorted, the compounds from the given list that the
// run does not carry.
func (r *Run) MissingCompounds(compounds []string) []string {
	var missing []string
	for _, name := range compounds {
		if !r.HasCompound(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
