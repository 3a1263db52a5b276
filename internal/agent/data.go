package agent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stackmill/docent/internal/llm"
	"github.com/stackmill/docent/internal/schema"
	"github.com/stackmill/docent/internal/tabular"
)

// DataAgentName identifies the data analysis agent in interaction logs.
const DataAgentName = "data_analyst"

const dataSearchResults = 5

const dataSystemPrompt = `You are a helpful data analyst assistant that answers questions about datasets and creates visualizations.

IMPORTANT: You will receive conversation history with previous questions and answers. Use this context to:
- Remember what tables and columns were discussed
- Understand follow-up questions in context
- Avoid repeating information already provided
- Build on previous analysis

You have access to tools that let you:
1. Search for relevant tables based on questions
2. Get schema information about tables
3. Query data from tables
4. Create charts and visualizations

When a user asks a question:
1. Review the conversation history to understand context
2. First, use search_tables to find relevant tables (unless you already know from context)
3. Use get_table_schema to understand the table structure (if needed)
4. ALWAYS use query_data first to get the actual data and answer the question with numbers/facts
5. If the user explicitly asks for a chart/graph/visualization, ALSO use create_chart after providing the data
6. If the user asks "what are" or "show me" without mentioning chart, provide the data first, then optionally suggest a chart

IMPORTANT: Answer questions with actual data first. Don't just say "I created a chart" - provide the actual numbers in your response. Charts are visual aids; provide the data first, then create a chart if the user explicitly asks for one.

For queries, translate natural language to appropriate operations:
- "average" or "mean" -> aggregation='mean'
- "sum" or "total" -> aggregation='sum'
- "count" -> aggregation='count'
- "maximum" or "max" -> aggregation='max'
- "minimum" or "min" -> aggregation='min'
- "group by" or "per" -> use group_by parameter
- Filter conditions -> use filters parameter

Chart creation rules:
- Chart types: 'bar' (for comparisons like "sales by region"), 'line' (for trends over time), 'pie' (for distributions), 'scatter' (for relationships), 'histogram' (for distributions)
- For "total X per Y" or "X by Y" -> chart_type='bar', x_column=Y, y_column=X, group_by=Y, aggregation='sum'
- For "average X per Y" -> chart_type='bar', x_column=Y, y_column=X, group_by=Y, aggregation='mean'
- For time series or trends -> use 'line'
- For relationships -> use 'scatter'

Always provide clear, accurate answers based on the actual data.
If you need to see sample data, use query_data with a limit to preview rows.
Format numbers appropriately (e.g., round to 2 decimal places for averages).
When creating charts, ALWAYS call the create_chart tool - don't just describe it!`

// NewDataAgent builds an agent that answers questions over loaded
// tables using schema search, SQL-backed queries, and chart specs.
func NewDataAgent(client *llm.Client, loader *tabular.Loader, indexer *schema.Indexer) *Agent {
	searchTables := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "search_tables",
			Description: "Search for tables relevant to a natural language question",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {
						"type": "string",
						"description": "Natural language description of the data needed."
					}
				},
				"required": ["query"],
				"additionalProperties": false
			}`),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var params struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid search_tables arguments: %w", err)
			}
			return indexer.SearchTables(params.Query, dataSearchResults), nil
		},
	}

	getTableSchema := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "get_table_schema",
			Description: "Get columns, types, sample rows, and statistics for a table",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {
						"type": "string",
						"description": "Name of the table."
					}
				},
				"required": ["table_name"],
				"additionalProperties": false
			}`),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var params struct {
				Table string `json:"table_name"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid get_table_schema arguments: %w", err)
			}
			info, err := loader.Info(ctx, params.Table)
			if err != nil {
				return unknownTablePayload(loader, params.Table), nil
			}
			return info, nil
		},
	}

	queryData := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "query_data",
			Description: "Query a table with optional filters, projection, and group-by aggregation",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {
						"type": "string",
						"description": "Name of the table to query."
					},
					"columns": {
						"type": "array",
						"items": {"type": "string"},
						"description": "Columns to return. Omit for all columns."
					},
					"filters": {
						"type": "object",
						"description": "Map of column to value, or column to an operator map such as {\">\": 100}. Operators: > < >= <= == !=."
					},
					"aggregation": {
						"type": "string",
						"enum": ["sum", "mean", "count", "max", "min"],
						"description": "Aggregation function to apply."
					},
					"group_by": {
						"type": "array",
						"items": {"type": "string"},
						"description": "Columns to group by when aggregating."
					},
					"limit": {
						"type": "integer",
						"description": "Maximum rows to return. Defaults to 100."
					}
				},
				"required": ["table_name"],
				"additionalProperties": false
			}`),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var params tabular.QueryParams
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid query_data arguments: %w", err)
			}
			if !loader.Has(params.Table) {
				return unknownTablePayload(loader, params.Table), nil
			}
			return loader.Query(ctx, params)
		},
	}

	listTables := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "list_tables",
			Description: "List all loaded tables",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {},
				"additionalProperties": false
			}`),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return loader.Tables(), nil
		},
	}

	createChart := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "create_chart",
			Description: "Create a chart specification from table data",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"table_name": {
						"type": "string",
						"description": "Name of the table."
					},
					"chart_type": {
						"type": "string",
						"enum": ["bar", "line", "pie", "scatter", "histogram"],
						"description": "Type of chart to create."
					},
					"x_column": {
						"type": "string",
						"description": "Column for the x-axis."
					},
					"y_column": {
						"type": "string",
						"description": "Column for the y-axis."
					},
					"group_by": {
						"type": "string",
						"description": "Column to group by."
					},
					"aggregation": {
						"type": "string",
						"enum": ["sum", "mean", "count", "max", "min"],
						"description": "Aggregation function when grouping. Defaults to sum."
					},
					"filters": {
						"type": "object",
						"description": "Filters to apply before charting."
					},
					"title": {
						"type": "string",
						"description": "Chart title."
					}
				},
				"required": ["table_name", "chart_type"],
				"additionalProperties": false
			}`),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var params tabular.ChartParams
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid create_chart arguments: %w", err)
			}
			if !loader.Has(params.Table) {
				return unknownTablePayload(loader, params.Table), nil
			}
			return loader.Chart(ctx, params)
		},
	}

	return New(DataAgentName, dataSystemPrompt, client,
		searchTables, getTableSchema, queryData, listTables, createChart)
}

// unknownTablePayload tells the model which tables exist so it can
// retry with a valid name instead of giving up.
func unknownTablePayload(loader *tabular.Loader, table string) map[string]any {
	return map[string]any{
		"error":            fmt.Sprintf("table %q not found", table),
		"available_tables": loader.Tables(),
	}
}
