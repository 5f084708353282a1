package domain

import "time"

// AnalysisRecord is one row of the analysis archive: the provenance of a
// completed parse-and-analyze invocation. Rows are write-once.
type AnalysisRecord struct {
	ID         string    `json:"id" db:"id" validate:"required,uuid"`
	Instrument string    `json:"instrument" db:"instrument" validate:"required"`
	Reaction   string    `json:"reaction" db:"reaction" validate:"required"`
	Sources    []string  `json:"sources" db:"sources" validate:"required,min=1"`
	Samples    int       `json:"samples" db:"samples" validate:"min=0"`
	FirstTOS   float64   `json:"first_tos_hours" db:"first_tos"`
	LastTOS    float64   `json:"last_tos_hours" db:"last_tos"`
	ReportPath string    `json:"report_path,omitempty" db:"report_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
