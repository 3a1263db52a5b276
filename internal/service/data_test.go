package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/llm"
	"github.com/stackmill/docent/internal/schema"
	"github.com/stackmill/docent/internal/tabular"
)

func toolCallResponse(id, name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{
					{
						ID:       id,
						Type:     openai.ToolTypeFunction,
						Function: openai.FunctionCall{Name: name, Arguments: arguments},
					},
				},
			}},
		},
	}
}

func newTestDataService(t *testing.T, api *mockChatAPI) *DataService {
	t.Helper()

	loader, err := tabular.NewLoader()
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })

	logger, err := interactionlog.NewLogger(t.TempDir())
	require.NoError(t, err)

	indexer := schema.NewIndexer(loader)
	return NewDataService(loader, indexer, llm.NewClientWithAPI(api, ""), logger, nil)
}

func loadSalesCSV(t *testing.T, svc *DataService) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales.csv")
	csv := "region,amount\nnorth,100\nsouth,150\nnorth,200\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	name, err := svc.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, "sales", name)
}

func TestDataLoadCSVIndexesSchema(t *testing.T) {
	svc := newTestDataService(t, new(mockChatAPI))
	loadSalesCSV(t, svc)

	assert.Equal(t, []string{"sales"}, svc.Tables())

	docs := svc.TableDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, "sales", docs[0].TableName)

	info, err := svc.Info(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, 3, info.RowCount)
}

func TestDataQueryAndChart(t *testing.T) {
	svc := newTestDataService(t, new(mockChatAPI))
	loadSalesCSV(t, svc)

	result, err := svc.Query(context.Background(), tabular.QueryParams{
		Table:       "sales",
		Columns:     []string{"amount"},
		Aggregation: "sum",
		GroupBy:     []string{"region"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)

	spec, err := svc.Chart(context.Background(), tabular.ChartParams{
		Table:       "sales",
		Type:        "bar",
		YColumn:     "amount",
		GroupBy:     "region",
		Aggregation: "sum",
	})
	require.NoError(t, err)
	assert.Len(t, spec.Values, 2)
}

func TestDataAskNotReady(t *testing.T) {
	svc := newTestDataService(t, new(mockChatAPI))

	_, err := svc.Ask(context.Background(), "total amount?", nil, "")
	assert.ErrorIs(t, err, domain.ErrAgentNotReady)
}

func TestDataAskCollectsCharts(t *testing.T) {
	api := new(mockChatAPI)
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(toolCallResponse("call_1", "create_chart",
			`{"table_name":"sales","chart_type":"bar","y_column":"amount","group_by":"region"}`), nil).Once()
	api.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(answerResponse("north leads with 300"), nil).Once()

	svc := newTestDataService(t, api)
	loadSalesCSV(t, svc)

	out, err := svc.Ask(context.Background(), "bar chart of amount by region", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "north leads with 300", out.Answer)
	require.Len(t, out.Charts, 1)
	assert.Equal(t, "bar", out.Charts[0].Type)
	assert.NotEmpty(t, out.LogFile)
}

func TestDataSourceTablesWithoutPool(t *testing.T) {
	svc := newTestDataService(t, new(mockChatAPI))

	_, err := svc.ListSourceTables(context.Background())
	assert.ErrorIs(t, err, domain.ErrDatabaseNotConnected)

	_, err = svc.ImportTable(context.Background(), "orders", 0)
	assert.ErrorIs(t, err, domain.ErrDatabaseNotConnected)
}
