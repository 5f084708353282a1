package domain

// DefaultMinRunTime is the bypass-injection cutoff in minutes for dual-detector
// rigs. Rows at or below it are reactor-bypass measurements, not reaction data.
const DefaultMinRunTime = 20.0

// InstrumentConfig is the per-rig calibration record. ResponseFactors maps a
// compound column to the divisor that converts raw detector area into a
// carbon-comparable area. The legacy JSON key spelling is preserved so existing
// records load unchanged.
type InstrumentConfig struct {
	Name            string             `json:"-" validate:"required"`
	ResponseFactors map[string]float64 `json:"Response_Factors" validate:"required,min=1,dive,gt=0"`
	MinRunTime      float64            `json:"min_run_time,omitempty" validate:"min=0"`
}

// RunTimeCutoff returns the configured bypass cutoff, or the default when the
// record does not set one.
func (c *InstrumentConfig) RunTimeCutoff() float64 {
	if c.MinRunTime > 0 {
		return c.MinRunTime
	}
	return DefaultMinRunTime
}
