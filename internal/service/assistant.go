package service

import (
	"context"
	"log"

	"github.com/stackmill/docent/internal/agent"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/llm"
	"github.com/stackmill/docent/internal/telemetry"
)

// AssistantService answers documentation questions with the docs agent
// and records every interaction.
type AssistantService struct {
	client *llm.Client
	ingest *IngestService
	logger *interactionlog.Logger
}

// AskOutput is one answered question with its transcript and log file.
type AskOutput struct {
	Answer   string              `json:"answer"`
	LogFile  string              `json:"log_file,omitempty"`
	Messages []domain.LogMessage `json:"messages,omitempty"`
}

// NewAssistantService creates a new AssistantService instance
func NewAssistantService(client *llm.Client, ingest *IngestService, logger *interactionlog.Logger) *AssistantService {
	return &AssistantService{
		client: client,
		ingest: ingest,
		logger: logger,
	}
}

// Ask runs the docs agent over the current index. A failed log write
// does not fail the answer.
func (s *AssistantService) Ask(ctx context.Context, question string, history []domain.LogMessage, source domain.LogSource) (*AskOutput, error) {
	owner, repo := s.ingest.Repo()
	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Ask", telemetry.SpanAttributes{
		Repo:      owner + "/" + repo,
		Agent:     agent.DocsAgentName,
		Operation: "ask",
	})
	defer span.End()

	if !s.ingest.Ready() {
		return nil, domain.ErrAgentNotReady
	}
	if source == "" {
		source = domain.LogSourceUser
	}
	if source != domain.LogSourceUser && source != domain.LogSourceAIGenerated {
		return nil, domain.ErrInvalidLogSource
	}

	docsAgent := agent.NewDocsAgent(s.client, s.ingest.Index(), owner, repo)
	result, err := docsAgent.Run(ctx, question, history)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	output := &AskOutput{Answer: result.Answer, Messages: result.Messages}
	if s.logger != nil {
		record := docsAgent.Record(result.Messages, source)
		path, err := s.logger.Write(record)
		if err != nil {
			log.Printf("assistant: failed to write interaction log: %v", err)
		} else {
			output.LogFile = path
		}
	}
	return output, nil
}
