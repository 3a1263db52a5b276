package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stackmill/docent/internal/agent"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/llm"
	"github.com/stackmill/docent/internal/schema"
	"github.com/stackmill/docent/internal/tabular"
	"github.com/stackmill/docent/internal/telemetry"
)

// DataService owns the loaded tables, their schema index, and the data
// analysis agent.
type DataService struct {
	loader  *tabular.Loader
	indexer *schema.Indexer
	client  *llm.Client
	logger  *interactionlog.Logger
	pool    *pgxpool.Pool
}

// DataAskOutput is one answered data question. Charts collects every
// chart spec the agent produced during the run.
type DataAskOutput struct {
	Answer   string              `json:"answer"`
	Charts   []domain.ChartSpec  `json:"charts,omitempty"`
	LogFile  string              `json:"log_file,omitempty"`
	Messages []domain.LogMessage `json:"messages,omitempty"`
}

// NewDataService creates a new DataService instance. The pool is
// optional; without it only CSV sources are available.
func NewDataService(loader *tabular.Loader, indexer *schema.Indexer, client *llm.Client, logger *interactionlog.Logger, pool *pgxpool.Pool) *DataService {
	return &DataService{
		loader:  loader,
		indexer: indexer,
		client:  client,
		logger:  logger,
		pool:    pool,
	}
}

// Tables lists the loaded tables.
func (s *DataService) Tables() []string {
	return s.loader.Tables()
}

// TableDocs returns the indexed schema summaries.
func (s *DataService) TableDocs() []schema.TableDoc {
	return s.indexer.Docs()
}

// Info describes one loaded table.
func (s *DataService) Info(ctx context.Context, name string) (*domain.TableInfo, error) {
	return s.loader.Info(ctx, name)
}

// LoadCSV loads a CSV file and refreshes the schema index.
func (s *DataService) LoadCSV(ctx context.Context, path, name string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "DataService.LoadCSV", telemetry.SpanAttributes{
		Table:     name,
		Operation: "load_csv",
	})
	defer span.End()

	table, err := s.loader.LoadCSV(ctx, path, name)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	if err := s.indexer.IndexTables(ctx); err != nil {
		return "", err
	}
	return table, nil
}

// ListSourceTables lists the tables available in the external
// database.
func (s *DataService) ListSourceTables(ctx context.Context) ([]string, error) {
	if s.pool == nil {
		return nil, domain.ErrDatabaseNotConnected
	}
	return tabular.NewPostgresSource(s.pool).ListTables(ctx)
}

// ImportTable copies a table from the external database and refreshes
// the schema index.
func (s *DataService) ImportTable(ctx context.Context, table string, limit int) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "DataService.ImportTable", telemetry.SpanAttributes{
		Table:     table,
		Operation: "import_table",
	})
	defer span.End()

	if s.pool == nil {
		return "", domain.ErrDatabaseNotConnected
	}

	name, err := tabular.NewPostgresSource(s.pool).LoadTable(ctx, s.loader, table, limit)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	if err := s.indexer.IndexTables(ctx); err != nil {
		return "", err
	}
	return name, nil
}

// Query runs one structured query.
func (s *DataService) Query(ctx context.Context, params tabular.QueryParams) (*domain.QueryResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DataService.Query", telemetry.SpanAttributes{
		Table:     params.Table,
		Operation: "query",
	})
	defer span.End()

	result, err := s.loader.Query(ctx, params)
	if err != nil {
		span.SetError(err)
	}
	return result, err
}

// Chart builds one chart spec.
func (s *DataService) Chart(ctx context.Context, params tabular.ChartParams) (*domain.ChartSpec, error) {
	ctx, span := telemetry.StartSpan(ctx, "DataService.Chart", telemetry.SpanAttributes{
		Table:     params.Table,
		Operation: "chart",
	})
	defer span.End()

	spec, err := s.loader.Chart(ctx, params)
	if err != nil {
		span.SetError(err)
	}
	return spec, err
}

// Ask runs the data agent over the loaded tables.
func (s *DataService) Ask(ctx context.Context, question string, history []domain.LogMessage, source domain.LogSource) (*DataAskOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DataService.Ask", telemetry.SpanAttributes{
		Agent:     agent.DataAgentName,
		Operation: "ask",
	})
	defer span.End()

	if len(s.loader.Tables()) == 0 {
		return nil, domain.ErrAgentNotReady
	}
	if source == "" {
		source = domain.LogSourceUser
	}

	dataAgent := agent.NewDataAgent(s.client, s.loader, s.indexer)
	result, err := dataAgent.Run(ctx, question, history)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	output := &DataAskOutput{
		Answer:   result.Answer,
		Charts:   extractCharts(result.Messages),
		Messages: result.Messages,
	}
	if s.logger != nil {
		path, err := s.logger.Write(dataAgent.Record(result.Messages, source))
		if err != nil {
			log.Printf("data: failed to write interaction log: %v", err)
		} else {
			output.LogFile = path
		}
	}
	return output, nil
}

// extractCharts pulls chart specs out of create_chart tool returns in
// the transcript.
func extractCharts(messages []domain.LogMessage) []domain.ChartSpec {
	var charts []domain.ChartSpec
	for _, m := range messages {
		if m.Role != domain.RoleTool || m.ToolName != "create_chart" {
			continue
		}
		var spec domain.ChartSpec
		if err := json.Unmarshal([]byte(m.Content), &spec); err != nil || spec.Type == "" {
			continue
		}
		charts = append(charts, spec)
	}
	return charts
}
