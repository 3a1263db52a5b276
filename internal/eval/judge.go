package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/llm"
)

const judgeSystemPrompt = `Use this checklist to evaluate the quality of an AI agent's answer (<ANSWER>) to a user question (<QUESTION>).
We also include the entire log (<LOG>) for analysis.

For each item, check if the condition is met.

Checklist:

- instructions_follow: The agent followed the user's instructions (in <INSTRUCTIONS>)
- instructions_avoid: The agent avoided doing things it was told not to do
- answer_relevant: The response directly addresses the user's question
- answer_clear: The answer is clear and correct
- answer_citations: The response includes proper citations or sources when required
- completeness: The response is complete and covers all key aspects of the request
- tool_call_search: Is the search tool invoked?

Respond with a JSON object:
{"checklist": [{"check_name": "...", "justification": "...", "check_pass": true}], "summary": "..."}

Output true/false for each check and provide a short explanation for your judgment.`

const judgeUserPromptFormat = `<INSTRUCTIONS>%s</INSTRUCTIONS>
<QUESTION>%s</QUESTION>
<ANSWER>%s</ANSWER>
<LOG>%s</LOG>`

// Judge scores logged interactions against a fixed checklist using an
// LLM.
type Judge struct {
	client *llm.Client
}

func NewJudge(client *llm.Client) *Judge {
	return &Judge{client: client}
}

// Evaluate judges one record. The transcript is simplified before it
// goes into the prompt.
func (j *Judge) Evaluate(ctx context.Context, record *domain.LogRecord) (*domain.EvalChecklist, error) {
	if len(record.Messages) == 0 {
		return nil, domain.ErrNoLogRecords
	}

	simplified, err := json.Marshal(simplifyMessages(record.Messages))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transcript: %w", err)
	}

	userPrompt := fmt.Sprintf(judgeUserPromptFormat,
		record.SystemPrompt, record.Question(), record.Answer(), simplified)

	var checklist domain.EvalChecklist
	if err := j.client.CompleteJSON(ctx, judgeSystemPrompt, userPrompt, &checklist); err != nil {
		return nil, fmt.Errorf("judge failed on %s: %w", record.LogFile, err)
	}
	if len(checklist.Checks) == 0 {
		return nil, fmt.Errorf("judge returned an empty checklist for %s", record.LogFile)
	}
	return &checklist, nil
}

// EvaluateAll judges every record, skipping ones that fail, and calls
// progress after each record when set.
func (j *Judge) EvaluateAll(ctx context.Context, records []*domain.LogRecord, progress func()) ([]domain.EvalResult, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoLogRecords
	}

	results := make([]domain.EvalResult, 0, len(records))
	for _, record := range records {
		checklist, err := j.Evaluate(ctx, record)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("eval: skipping %s: %v", record.LogFile, err)
		} else {
			results = append(results, domain.EvalResult{Record: record, Checklist: checklist})
		}
		if progress != nil {
			progress()
		}
	}
	return results, nil
}
