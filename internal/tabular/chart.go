package tabular

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stackmill/docent/internal/domain"
)

// Chart types accepted by the chart tool.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartPie       = "pie"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
)

var chartTypes = map[string]struct{}{
	ChartBar:       {},
	ChartLine:      {},
	ChartPie:       {},
	ChartScatter:   {},
	ChartHistogram: {},
}

// ChartParams describes one chart request. The result carries the data
// points only; rendering is up to the caller.
type ChartParams struct {
	Table       string         `json:"table_name"`
	Type        string         `json:"chart_type"`
	XColumn     string         `json:"x_column,omitempty"`
	YColumn     string         `json:"y_column,omitempty"`
	GroupBy     string         `json:"group_by,omitempty"`
	Aggregation string         `json:"aggregation,omitempty"`
	Filters     map[string]any `json:"filters,omitempty"`
	Title       string         `json:"title,omitempty"`
}

// Chart runs the query behind a chart request and shapes the rows into
// a ChartSpec. Grouped requests aggregate the y column per group; a
// histogram takes the raw values of a single column and leaves binning
// to the renderer.
func (l *Loader) Chart(ctx context.Context, params ChartParams) (*domain.ChartSpec, error) {
	chartType := strings.ToLower(strings.TrimSpace(params.Type))
	if chartType == "" {
		chartType = ChartBar
	}
	if _, ok := chartTypes[chartType]; !ok {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			fmt.Sprintf("invalid chart type %q", params.Type), domain.ErrInvalidChartType)
	}

	query := QueryParams{
		Table:   params.Table,
		Filters: params.Filters,
	}

	xCol := params.XColumn
	yCol := params.YColumn
	if params.GroupBy != "" {
		agg := params.Aggregation
		if agg == "" {
			agg = AggSum
		}
		query.GroupBy = []string{params.GroupBy}
		query.Aggregation = agg
		if yCol != "" {
			query.Columns = []string{yCol}
		}
		if xCol == "" {
			xCol = params.GroupBy
		}
		if agg == AggCount {
			yCol = "count"
		}
	} else {
		var cols []string
		if xCol != "" {
			cols = append(cols, xCol)
		}
		if yCol != "" {
			cols = append(cols, yCol)
		}
		query.Columns = cols
	}

	result, err := l.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	spec := &domain.ChartSpec{
		Type:   chartType,
		Title:  params.Title,
		XLabel: xCol,
		YLabel: yCol,
	}

	switch chartType {
	case ChartHistogram:
		col := firstNonEmpty(yCol, xCol)
		if col == "" {
			return nil, domain.NewDomainError(domain.ErrCodeValidation,
				"histogram requires a column")
		}
		spec.XLabel = col
		spec.YLabel = ""
		for _, row := range result.Rows {
			if v, ok := toFloat(row[col]); ok {
				spec.Values = append(spec.Values, v)
			}
		}

	case ChartScatter:
		if xCol == "" || yCol == "" {
			return nil, domain.NewDomainError(domain.ErrCodeValidation,
				"scatter requires both x_column and y_column")
		}
		for _, row := range result.Rows {
			x, okX := toFloat(row[xCol])
			y, okY := toFloat(row[yCol])
			if okX && okY {
				spec.XValues = append(spec.XValues, x)
				spec.Values = append(spec.Values, y)
			}
		}

	default:
		if yCol == "" {
			// Fall back to the first numeric column of the result.
			yCol = firstNumericColumn(result, xCol)
			if yCol == "" {
				return nil, domain.NewDomainError(domain.ErrCodeValidation,
					"no numeric column available for y-axis")
			}
			spec.YLabel = yCol
		}
		for _, row := range result.Rows {
			y, ok := toFloat(row[yCol])
			if !ok {
				continue
			}
			spec.Values = append(spec.Values, y)
			if xCol != "" {
				spec.Labels = append(spec.Labels, labelString(row[xCol]))
			}
		}
	}

	return spec, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstNumericColumn scans the result for a column whose first non-nil
// value parses as a number, skipping the x-axis column.
func firstNumericColumn(result *domain.QueryResult, skip string) string {
	for _, col := range result.Columns {
		if col == skip {
			continue
		}
		for _, row := range result.Rows {
			if row[col] == nil {
				continue
			}
			if _, ok := toFloat(row[col]); ok {
				return col
			}
			break
		}
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func labelString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
