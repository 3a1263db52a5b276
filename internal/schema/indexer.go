package schema

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/index"
	"github.com/stackmill/docent/internal/tabular"
)

// TableDoc is the searchable summary built for one loaded table.
type TableDoc struct {
	TableName   string            `json:"table_name"`
	Columns     string            `json:"columns"`
	ColumnTypes string            `json:"column_types"`
	Description string            `json:"description"`
	SampleData  string            `json:"sample_data"`
	RowCount    int               `json:"row_count"`
	Info        *domain.TableInfo `json:"-"`
}

// Indexer keeps a lexical index over table schemas and sample rows so
// an agent can find the right table from a natural language question.
type Indexer struct {
	loader *tabular.Loader

	mu   sync.RWMutex
	idx  *index.Index
	docs []TableDoc
}

func NewIndexer(loader *tabular.Loader) *Indexer {
	return &Indexer{
		loader: loader,
		idx:    index.New([]string{"table_name", "columns", "description", "sample_data"}),
	}
}

// IndexTables rebuilds the index from the named tables, or from every
// loaded table when none are named. A table that fails to describe is
// logged and skipped.
func (x *Indexer) IndexTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		tables = x.loader.Tables()
	}

	docs := make([]TableDoc, 0, len(tables))
	for _, name := range tables {
		info, err := x.loader.Info(ctx, name)
		if err != nil {
			log.Printf("schema: skipping table %s: %v", name, err)
			continue
		}
		docs = append(docs, buildTableDoc(info))
	}

	indexDocs := make([]index.Doc, len(docs))
	for i, doc := range docs {
		indexDocs[i] = index.Doc{
			Fields: map[string]string{
				"table_name":  doc.TableName,
				"columns":     doc.Columns,
				"description": doc.Description,
				"sample_data": doc.SampleData,
			},
			Payload: doc,
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs = docs
	x.idx.Fit(indexDocs)
	return nil
}

// SearchTables returns the table summaries most relevant to the query.
func (x *Indexer) SearchTables(query string, numResults int) []TableDoc {
	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := x.idx.Search(query, numResults)
	out := make([]TableDoc, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hit.Payload.(TableDoc))
	}
	return out
}

// TableInfo returns the full info for an indexed table.
func (x *Indexer) TableInfo(name string) (*domain.TableInfo, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, doc := range x.docs {
		if doc.TableName == name {
			return doc.Info, nil
		}
	}
	return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound,
		fmt.Sprintf("table %q not found in index", name), domain.ErrTableNotFound)
}

// Docs returns the current table summaries.
func (x *Indexer) Docs() []TableDoc {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]TableDoc, len(x.docs))
	copy(out, x.docs)
	return out
}

func buildTableDoc(info *domain.TableInfo) TableDoc {
	types := make([]string, len(info.Columns))
	for i, col := range info.Columns {
		types[i] = fmt.Sprintf("%s: %s", col, info.Types[col])
	}

	return TableDoc{
		TableName:   info.Name,
		Columns:     strings.Join(info.Columns, ", "),
		ColumnTypes: strings.Join(types, ", "),
		Description: describeTable(info),
		SampleData:  formatSampleData(info),
		RowCount:    info.RowCount,
		Info:        info,
	}
}

func describeTable(info *domain.TableInfo) string {
	parts := []string{
		fmt.Sprintf("Table with %d rows", info.RowCount),
		"Columns: " + strings.Join(info.Columns, ", "),
	}

	numeric := info.NumericColumns()
	if len(numeric) > 0 {
		parts = append(parts, "Numeric columns: "+strings.Join(numeric, ", "))
	}

	var text []string
	for _, col := range info.Columns {
		if !info.Types[col].Numeric() {
			text = append(text, col)
		}
	}
	if len(text) > 0 {
		parts = append(parts, "Text columns: "+strings.Join(text, ", "))
	}

	return strings.Join(parts, ". ")
}

// formatSampleData renders up to three sample rows, five columns each,
// as a single string for indexing.
func formatSampleData(info *domain.TableInfo) string {
	if len(info.SampleRows) == 0 {
		return "No sample data"
	}

	cols := info.Columns
	if len(cols) > 5 {
		cols = cols[:5]
	}

	rows := info.SampleRows
	if len(rows) > 3 {
		rows = rows[:3]
	}

	formatted := make([]string, len(rows))
	for i, row := range rows {
		pairs := make([]string, len(cols))
		for j, col := range cols {
			pairs[j] = fmt.Sprintf("%s: %v", col, row[col])
		}
		formatted[i] = fmt.Sprintf("Row %d: %s", i+1, strings.Join(pairs, ", "))
	}
	return strings.Join(formatted, " | ")
}
