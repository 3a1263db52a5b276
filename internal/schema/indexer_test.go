package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/tabular"
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()

	loader, err := tabular.NewLoader()
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })

	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := loader.LoadCSV(context.Background(), path, "")
		require.NoError(t, err)
	}

	write("employees.csv", "name,department,salary\nalice,engineering,120000\nbob,marketing,90000\n")
	write("orders.csv", "order_id,amount,status\n1,250.5,shipped\n2,99.0,pending\n")

	indexer := NewIndexer(loader)
	require.NoError(t, indexer.IndexTables(context.Background()))
	return indexer
}

func TestIndexTables(t *testing.T) {
	indexer := newTestIndexer(t)

	docs := indexer.Docs()
	require.Len(t, docs, 2)

	byName := make(map[string]TableDoc)
	for _, doc := range docs {
		byName[doc.TableName] = doc
	}

	employees, ok := byName["employees"]
	require.True(t, ok)
	assert.Equal(t, "name, department, salary", employees.Columns)
	assert.Contains(t, employees.ColumnTypes, "salary: integer")
	assert.Contains(t, employees.Description, "Table with 2 rows")
	assert.Contains(t, employees.Description, "Numeric columns: salary")
	assert.Contains(t, employees.SampleData, "Row 1:")
	assert.Equal(t, 2, employees.RowCount)
	require.NotNil(t, employees.Info)
}

func TestSearchTables(t *testing.T) {
	indexer := newTestIndexer(t)

	results := indexer.SearchTables("employee salary by department", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "employees", results[0].TableName)

	results = indexer.SearchTables("order amount status", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "orders", results[0].TableName)
}

func TestSearchTablesNoMatch(t *testing.T) {
	indexer := newTestIndexer(t)

	results := indexer.SearchTables("zebra telescope", 5)
	assert.Empty(t, results)
}

func TestTableInfo(t *testing.T) {
	indexer := newTestIndexer(t)

	info, err := indexer.TableInfo("orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", info.Name)
	assert.Equal(t, 2, info.RowCount)

	_, err = indexer.TableInfo("missing")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}

func TestIndexNamedSubset(t *testing.T) {
	indexer := newTestIndexer(t)

	require.NoError(t, indexer.IndexTables(context.Background(), "orders"))
	docs := indexer.Docs()
	require.Len(t, docs, 1)
	assert.Equal(t, "orders", docs[0].TableName)
}
