package service

import (
	"context"
	"io"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/eval"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/telemetry"
)

// EvalService judges logged interactions and produces synthetic test
// traffic for the docs agent.
type EvalService struct {
	reader    *interactionlog.Reader
	judge     *eval.Judge
	generator *eval.QuestionGenerator
	assistant *AssistantService
	ingest    *IngestService
}

// EvalInput selects which logs to judge.
type EvalInput struct {
	Agent  string           `json:"agent,omitempty"`
	Source domain.LogSource `json:"source,omitempty"`
	Limit  int              `json:"limit,omitempty"`
}

// EvalOutput pairs judged results with their aggregate report.
type EvalOutput struct {
	Results []domain.EvalResult `json:"results"`
	Report  *domain.EvalReport  `json:"report"`
}

// NewEvalService creates a new EvalService instance
func NewEvalService(reader *interactionlog.Reader, judge *eval.Judge, generator *eval.QuestionGenerator, assistant *AssistantService, ingest *IngestService) *EvalService {
	return &EvalService{
		reader:    reader,
		judge:     judge,
		generator: generator,
		assistant: assistant,
		ingest:    ingest,
	}
}

// CountLogs returns how many records match the input, so callers can
// size progress reporting before evaluating.
func (s *EvalService) CountLogs(input EvalInput) (int, error) {
	records, err := s.loadRecords(input)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Evaluate judges every matching log record.
func (s *EvalService) Evaluate(ctx context.Context, input EvalInput, progress func()) (*EvalOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "EvalService.Evaluate", telemetry.SpanAttributes{
		Agent:     input.Agent,
		Operation: "evaluate",
	})
	defer span.End()

	records, err := s.loadRecords(input)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	results, err := s.judge.EvaluateAll(ctx, records, progress)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &EvalOutput{
		Results: results,
		Report:  eval.BuildReport(results),
	}, nil
}

func (s *EvalService) loadRecords(input EvalInput) ([]*domain.LogRecord, error) {
	records, err := s.reader.List(interactionlog.Filter{
		Agent:  input.Agent,
		Source: input.Source,
	})
	if err != nil {
		return nil, err
	}
	if input.Limit > 0 && len(records) > input.Limit {
		records = records[:input.Limit]
	}
	return records, nil
}

// WriteCSV renders judged results as CSV.
func (s *EvalService) WriteCSV(w io.Writer, results []domain.EvalResult) error {
	return eval.WriteCSV(w, results)
}

// GenerateQuestions produces test questions from the indexed chunks.
func (s *EvalService) GenerateQuestions(ctx context.Context, numQuestions int) ([]string, error) {
	return s.generator.Generate(ctx, s.ingest.Chunks(), numQuestions)
}

// RunGenerated asks the docs agent each generated question, logging
// the interactions as ai-generated so they can be judged later.
func (s *EvalService) RunGenerated(ctx context.Context, numQuestions int, progress func()) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "EvalService.RunGenerated", telemetry.SpanAttributes{
		Operation: "run_generated",
	})
	defer span.End()

	questions, err := s.GenerateQuestions(ctx, numQuestions)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	answered := 0
	for _, question := range questions {
		if _, err := s.assistant.Ask(ctx, question, nil, domain.LogSourceAIGenerated); err != nil {
			if ctx.Err() != nil {
				return answered, ctx.Err()
			}
			continue
		}
		answered++
		if progress != nil {
			progress()
		}
	}
	return answered, nil
}
