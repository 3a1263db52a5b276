package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/llm"
)

const questionGeneratorPrompt = `You are helping to create test questions for an AI agent that answers questions about documentation.

Based on the provided content, generate realistic questions that users might ask.

The questions should:

- Be natural and varied in style
- Range from simple to complex
- Include both specific technical questions and general questions

Generate one question for each record.

Respond with a JSON object: {"questions": ["...", "..."]}`

// QuestionGenerator produces synthetic test questions from document
// samples so agents can be evaluated without real user traffic.
type QuestionGenerator struct {
	client *llm.Client
}

func NewQuestionGenerator(client *llm.Client) *QuestionGenerator {
	return &QuestionGenerator{client: client}
}

// Generate samples up to numQuestions chunks and asks the model for
// one question per sampled chunk.
func (g *QuestionGenerator) Generate(ctx context.Context, chunks []domain.Chunk, numQuestions int) ([]string, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrIndexEmpty
	}
	if numQuestions <= 0 {
		numQuestions = 10
	}

	sample := sampleContents(chunks, numQuestions)
	prompt, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sample documents: %w", err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := g.client.CompleteJSON(ctx, questionGeneratorPrompt, string(prompt), &out); err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}
	return out.Questions, nil
}

func sampleContents(chunks []domain.Chunk, n int) []string {
	if n > len(chunks) {
		n = len(chunks)
	}
	picked := rand.Perm(len(chunks))[:n]
	out := make([]string, n)
	for i, idx := range picked {
		out[i] = chunks[idx].Content
	}
	return out
}
