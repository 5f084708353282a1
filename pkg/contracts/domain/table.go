package domain

// Series is one named column of a metric table. Values may be NaN where the
// metric is undefined (zero total area, zero conversion).
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// TableKind identifies the derived tables an analysis produces.
type TableKind string

const (
	TableRawData     TableKind = "Raw Data"
	TableConversion  TableKind = "Conversion"
	TableYield       TableKind = "Yield"
	TableSelectivity TableKind = "Selectivity"
	TableAreaSum     TableKind = "Area Sum"
)

// Table is a derived metric table sharing its source run's time index. Tables
// are recomputed whole; nothing mutates them after construction.
type Table struct {
	Kind    TableKind `json:"kind"`
	TOS     []float64 `json:"tos_hours"`
	Columns []Series  `json:"columns"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.TOS)
}

// Empty reports whether the table has nothing to show. Empty tables are
// skipped by exports.
func (t *Table) Empty() bool {
	return len(t.TOS) == 0 || len(t.Columns) == 0
}

// Column returns the series with the given name, or false when absent.
func (t *Table) Column(name string) (Series, bool) {
	for _, s := range t.Columns {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, s := range t.Columns {
		names[i] = s.Name
	}
	return names
}
