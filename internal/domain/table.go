package domain

// ColumnType is the storage type inferred for a table column.
type ColumnType string

const (
	ColumnTypeInteger ColumnType = "integer"
	ColumnTypeReal    ColumnType = "real"
	ColumnTypeText    ColumnType = "text"
)

// Numeric reports whether the column type participates in numeric
// aggregations.
func (t ColumnType) Numeric() bool {
	return t == ColumnTypeInteger || t == ColumnTypeReal
}

// ColumnStats holds basic statistics for a numeric column.
type ColumnStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}

// TableInfo describes a loaded table: schema, size and a preview.
type TableInfo struct {
	Name       string                 `json:"table_name"`
	Columns    []string               `json:"columns"`
	Types      map[string]ColumnType  `json:"types"`
	RowCount   int                    `json:"row_count"`
	SampleRows []map[string]any       `json:"sample_rows"`
	NullCounts map[string]int         `json:"null_counts"`
	Stats      map[string]ColumnStats `json:"statistics,omitempty"`
}

// NumericColumns returns the columns that carry numeric values, in
// schema order.
func (t *TableInfo) NumericColumns() []string {
	var cols []string
	for _, col := range t.Columns {
		if t.Types[col].Numeric() {
			cols = append(cols, col)
		}
	}
	return cols
}

// QueryResult is the bounded result set returned by the query tool.
type QueryResult struct {
	TableName        string           `json:"table_name"`
	Rows             []map[string]any `json:"rows"`
	Columns          []string         `json:"columns"`
	RowCount         int              `json:"row_count"`
	OriginalRowCount int              `json:"original_row_count"`
	Truncated        bool             `json:"truncated"`
}

// ChartSpec carries the data needed to render a chart client-side. The
// server never draws anything.
type ChartSpec struct {
	Type   string    `json:"chart_type"`
	Title  string    `json:"title,omitempty"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	// XValues is set for scatter charts, where both axes are numeric.
	XValues []float64 `json:"x_values,omitempty"`
	Values  []float64 `json:"values"`
}
