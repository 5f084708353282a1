package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catlab/pkg/contracts/domain"
)

// Record inserts one analysis row. A missing ID or CreatedAt is filled in
// before the insert. Uses ON CONFLICT(id) DO NOTHING for idempotency so a
// retried batch cannot double-log an analysis.
func (s *Store) Record(ctx context.Context, rec *domain.AnalysisRecord) error {
	if rec == nil {
		return fmt.Errorf("record analysis: nil record")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("record analysis: encode sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses
		(id, instrument, reaction, sources, samples, first_tos, last_tos, report_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Instrument,
		rec.Reaction,
		string(sources),
		rec.Samples,
		rec.FirstTOS,
		rec.LastTOS,
		rec.ReportPath,
		rec.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("record analysis: %w", err)
	}

	return nil
}
