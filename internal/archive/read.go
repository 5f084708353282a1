package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"catlab/pkg/contracts/domain"
)

const selectColumns = `id, instrument, reaction, sources, samples, first_tos, last_tos, report_path, created_at`

// List returns archived analyses, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM analyses
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ByReaction returns archived analyses for one reaction, newest first.
func (s *Store) ByReaction(ctx context.Context, reaction string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM analyses
		WHERE reaction = ?
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, reaction, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses for %s: %w", reaction, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Get retrieves a single analysis by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) Get(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM analyses
		WHERE id = ?
	`, id)

	return scanRecord(row)
}

func collectRecords(rows *sql.Rows) ([]domain.AnalysisRecord, error) {
	var records []domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []domain.AnalysisRecord{}
	}

	return records, nil
}

func scanRecord(sc interface{ Scan(dest ...any) error }) (domain.AnalysisRecord, error) {
	var (
		rec     domain.AnalysisRecord
		sources string
		created string
	)
	if err := sc.Scan(
		&rec.ID,
		&rec.Instrument,
		&rec.Reaction,
		&sources,
		&rec.Samples,
		&rec.FirstTOS,
		&rec.LastTOS,
		&rec.ReportPath,
		&created,
	); err != nil {
		return rec, err
	}

	if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
		return rec, fmt.Errorf("decode sources: %w", err)
	}

	t, err := time.Parse(createdAtLayout, created)
	if err != nil {
		return rec, fmt.Errorf("decode created_at: %w", err)
	}
	rec.CreatedAt = t

	return rec, nil
}
