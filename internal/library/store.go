package library

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"catlab/internal/config"
	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// Record names double as file names, so they are restricted to a safe charset.
var recordNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._ -]*$`)

// Store reads and writes the named JSON records that configure analyses:
// instrument calibrations, reaction definitions and the Antoine coefficient
// table. One record per file, the file stem is the record name.
type Store struct {
	paths    *config.Paths
	logger   *slog.Logger
	validate *validator.Validate
}

// NewStore creates a record store over the given library paths.
func NewStore(paths *config.Paths, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Store{
		paths:    paths,
		logger:   logger.With(slog.String("component", "library")),
		validate: v,
	}
}

// Reaction loads a reaction record by name.
func (s *Store) Reaction(ctx context.Context, name string) (*domain.ReactionSpec, error) {
	if !recordNameRe.MatchString(name) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid reaction name %q", name), nil)
	}

	path := s.paths.GetReactionPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotDefinedError("reaction", name)
		}
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read reaction record %s", path), err)
	}

	var spec domain.ReactionSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("reaction record %s is not valid JSON", path), err)
	}
	spec.Name = name
	normalizeReaction(&spec)

	if err := s.validate.Struct(&spec); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("reaction record %q failed validation", name), err)
	}

	s.logger.DebugContext(ctx, "loaded reaction record",
		slog.String("reaction", name),
		slog.Int("feed_compounds", len(spec.Feed.Compounds)),
		slog.Int("product_groups", len(spec.Products)))

	return &spec, nil
}

// AddReaction writes a new reaction record. A record under the same name is a
// conflict; existing records are never overwritten.
func (s *Store) AddReaction(ctx context.Context, spec *domain.ReactionSpec) error {
	if spec == nil {
		return apperrors.NewValidationError("reaction record is nil", nil)
	}
	if !recordNameRe.MatchString(spec.Name) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid reaction name %q", spec.Name), nil)
	}

	normalizeReaction(spec)
	if err := s.validate.Struct(spec); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("reaction record %q failed validation", spec.Name), err)
	}

	path := s.paths.GetReactionPath(spec.Name)
	if config.FileExists(path) {
		return apperrors.NewDuplicateError("reaction", spec.Name)
	}

	if err := os.MkdirAll(s.paths.ReactionsDir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create reactions directory", err)
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode reaction record %q", spec.Name), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write reaction record %s", path), err)
	}

	s.logger.InfoContext(ctx, "added reaction record",
		slog.String("reaction", spec.Name),
		slog.String("path", path))

	return nil
}

// ListReactions returns the names of all reaction records, sorted.
func (s *Store) ListReactions(ctx context.Context) ([]string, error) {
	return s.listRecords(s.paths.ReactionsDir)
}

// Instrument loads an instrument calibration record by name.
func (s *Store) Instrument(ctx context.Context, name string) (*domain.InstrumentConfig, error) {
	if !recordNameRe.MatchString(name) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid instrument name %q", name), nil)
	}

	path := s.paths.GetInstrumentPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotDefinedError("instrument", name)
		}
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read instrument record %s", path), err)
	}

	var cfg domain.InstrumentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("instrument record %s is not valid JSON", path), err)
	}
	cfg.Name = name
	normalizeInstrument(&cfg)

	if err := s.validate.Struct(&cfg); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("instrument record %q failed validation", name), err)
	}

	s.logger.DebugContext(ctx, "loaded instrument record",
		slog.String("instrument", name),
		slog.Int("response_factors", len(cfg.ResponseFactors)))

	return &cfg, nil
}

// ListInstruments returns the names of all instrument records, sorted.
func (s *Store) ListInstruments(ctx context.Context) ([]string, error) {
	return s.listRecords(s.paths.InstrumentsDir)
}

// AntoineTable loads the shared Antoine coefficient table.
func (s *Store) AntoineTable(ctx context.Context) (domain.AntoineTable, error) {
	data, err := os.ReadFile(s.paths.AntoineFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewConfigError("antoine coefficient table is not defined", err)
		}
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read antoine table %s", s.paths.AntoineFile), err)
	}

	var raw map[string]domain.AntoineRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewConfigError("antoine table is not valid JSON", err)
	}

	table := make(domain.AntoineTable, len(raw))
	for name, rec := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		rec.Compound = key
		if err := s.validate.Struct(&rec); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("antoine record %q failed validation", key), err)
		}
		table[key] = rec
	}

	s.logger.DebugContext(ctx, "loaded antoine table",
		slog.Int("compounds", len(table)))

	return table, nil
}

// Antoine loads a single compound's coefficient record.
func (s *Store) Antoine(ctx context.Context, compound string) (*domain.AntoineRecord, error) {
	table, err := s.AntoineTable(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := table[strings.ToLower(strings.TrimSpace(compound))]
	if !ok {
		return nil, apperrors.NewNotDefinedError("antoine record", compound)
	}
	return &rec, nil
}

// listRecords lists the JSON record names in a library directory. A missing
// directory is an empty library, not an error.
func (s *Store) listRecords(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to list records in %s", dir), err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// normalizeReaction lower-cases compound identifiers so they match the
// column names parsers produce.
func normalizeReaction(spec *domain.ReactionSpec) {
	spec.Feed.Compounds = lowerAll(spec.Feed.Compounds)
	for group, g := range spec.Products {
		g.Compounds = lowerAll(g.Compounds)
		spec.Products[group] = g
	}
}

func normalizeInstrument(cfg *domain.InstrumentConfig) {
	if len(cfg.ResponseFactors) == 0 {
		return
	}
	normalized := make(map[string]float64, len(cfg.ResponseFactors))
	for name, factor := range cfg.ResponseFactors {
		normalized[strings.ToLower(strings.TrimSpace(name))] = factor
	}
	cfg.ResponseFactors = normalized
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
