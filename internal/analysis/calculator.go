package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// Calculator turns a standardized run and a reaction definition into metric
// tables. It holds no state between calls.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a calculator logging through the given logger.
func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{logger: logger.With(slog.String("component", "analysis"))}
}

// Result bundles the outcome of one analysis.
type Result struct {
	Run         *domain.Run
	AreaSum     *domain.Table
	Conversion  *domain.Table
	Yield       *domain.Table
	Selectivity *domain.Table
}

// ReportTables returns the metric tables in report order. The run itself and
// the area-sum check are not part of the report; exporters render the run as
// its own sheet.
func (r *Result) ReportTables() []*domain.Table {
	return []*domain.Table{r.Conversion, r.Yield, r.Selectivity}
}

// Analyze computes every metric for the run under the given reaction. The
// reaction must only reference compounds the run carries.
func (c *Calculator) Analyze(ctx context.Context, run *domain.Run, reaction *domain.ReactionSpec) (*Result, error) {
	if run == nil || run.Len() == 0 {
		return nil, apperrors.NewValidationError("analysis requires a run with samples", nil)
	}
	if reaction == nil {
		return nil, apperrors.NewValidationError("analysis requires a reaction definition", nil)
	}
	if err := checkCompounds(run, reaction); err != nil {
		return nil, err
	}

	conversion := c.Conversion(run, reaction)
	result := &Result{
		Run:         run,
		AreaSum:     c.AreaSum(run),
		Conversion:  conversion,
		Yield:       c.Yield(run, reaction),
		Selectivity: c.selectivityFrom(run, reaction, conversion),
	}

	c.logger.InfoContext(ctx, "analysis computed",
		slog.String("reaction", reaction.Name),
		slog.String("instrument", run.Instrument),
		slog.Int("samples", run.Len()),
		slog.Int("product_groups", len(reaction.Products)))

	return result, nil
}

// AreaSum is the per-sample sum over every compound column, for checking that
// the carbon balance holds across the injections.
func (c *Calculator) AreaSum(run *domain.Run) *domain.Table {
	values := make([]float64, run.Len())
	for i := range values {
		values[i] = roundTo(run.TotalAt(i), 2)
	}
	return &domain.Table{
		Kind:    domain.TableAreaSum,
		TOS:     append([]float64(nil), run.TOS...),
		Columns: []domain.Series{{Name: "area", Values: values}},
	}
}

// Conversion is 100 x (1 - feed area / total area) per sample.
func (c *Calculator) Conversion(run *domain.Run, reaction *domain.ReactionSpec) *domain.Table {
	values := make([]float64, run.Len())
	for i := range values {
		feed := run.SumAt(i, reaction.Feed.Compounds)
		values[i] = roundTo(100*(1-safeDiv(feed, run.TotalAt(i))), 2)
	}
	return &domain.Table{
		Kind:    domain.TableConversion,
		TOS:     append([]float64(nil), run.TOS...),
		Columns: []domain.Series{{Name: "conv", Values: values}},
	}
}

// Yield is 100 x group area / total area per sample, one column per product
// group in name order.
func (c *Calculator) Yield(run *domain.Run, reaction *domain.ReactionSpec) *domain.Table {
	groups := reaction.GroupNames()
	columns := make([]domain.Series, 0, len(groups))
	for _, group := range groups {
		compounds := reaction.Products[group].Compounds
		values := make([]float64, run.Len())
		for i := range values {
			values[i] = roundTo(100*safeDiv(run.SumAt(i, compounds), run.TotalAt(i)), 2)
		}
		columns = append(columns, domain.Series{Name: group, Values: values})
	}
	return &domain.Table{
		Kind:    domain.TableYield,
		TOS:     append([]float64(nil), run.TOS...),
		Columns: columns,
	}
}

// Selectivity is the carbon fraction of a product group relative to the
// converted feed, per sample and group. A zero conversion yields NaN.
func (c *Calculator) Selectivity(run *domain.Run, reaction *domain.ReactionSpec) *domain.Table {
	return c.selectivityFrom(run, reaction, c.Conversion(run, reaction))
}

// selectivityFrom divides by the already rounded conversion so that the two
// tables agree with each other.
func (c *Calculator) selectivityFrom(run *domain.Run, reaction *domain.ReactionSpec, conversion *domain.Table) *domain.Table {
	conv := conversion.Columns[0].Values
	groups := reaction.GroupNames()
	columns := make([]domain.Series, 0, len(groups))
	for _, group := range groups {
		compounds := reaction.Products[group].Compounds
		values := make([]float64, run.Len())
		for i := range values {
			carbon := safeDiv(run.SumAt(i, compounds), run.TotalAt(i))
			values[i] = roundTo(100*safeDiv(carbon, conv[i]*1e-2), 2)
		}
		columns = append(columns, domain.Series{Name: group, Values: values})
	}
	return &domain.Table{
		Kind:    domain.TableSelectivity,
		TOS:     append([]float64(nil), run.TOS...),
		Columns: columns,
	}
}

// checkCompounds rejects reactions that reference compounds the run lacks.
func checkCompounds(run *domain.Run, reaction *domain.ReactionSpec) error {
	seen := make(map[string]bool)
	var refs []string
	add := func(compounds []string) {
		for _, name := range compounds {
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}
	}
	add(reaction.Feed.Compounds)
	for _, group := range reaction.GroupNames() {
		add(reaction.Products[group].Compounds)
	}

	if missing := run.MissingCompounds(refs); len(missing) > 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("reaction %q references compounds the run does not carry: %s",
				reaction.Name, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// safeDiv divides and maps a zero denominator to NaN instead of Inf.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
