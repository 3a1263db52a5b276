package agent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/index"
	"github.com/stackmill/docent/internal/llm"
)

// DocsAgentName identifies the documentation agent in interaction logs.
const DocsAgentName = "gh_agent"

const docsSearchResults = 5

const docsSystemPromptTemplate = `You are a helpful assistant that answers questions about documentation.

Use the search tool to find relevant information from the course materials before answering questions.

If you can find specific information through search, use it to provide accurate answers.

Always include references by citing the filename of the source material you used.
Replace it with the full path to the GitHub repository:
"https://github.com/%s/%s/blob/main/"
Format: [LINK TITLE](FULL_GITHUB_LINK)

If the search doesn't return relevant results, let the user know and provide general guidance.`

// NewDocsAgent builds an agent that answers questions over an indexed
// documentation corpus, citing sources as GitHub links into the given
// repository.
func NewDocsAgent(client *llm.Client, idx *index.Index, owner, repo string) *Agent {
	searchTool := Tool{
		Definition: openai.FunctionDefinition{
			Name:        "search",
			Description: "Search the documentation index for relevant material",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {
						"type": "string",
						"description": "Search query text to look up in the documentation."
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
				return nil, fmt.Errorf("invalid search arguments: %w", err)
			}

			hits := idx.Search(params.Query, docsSearchResults)
			results := make([]domain.Chunk, 0, len(hits))
			for _, hit := range hits {
				if chunk, ok := hit.Payload.(domain.Chunk); ok {
					results = append(results, chunk)
				}
			}
			return results, nil
		},
	}

	prompt := fmt.Sprintf(docsSystemPromptTemplate, owner, repo)
	return New(DocsAgentName, prompt, client, searchTool)
}
