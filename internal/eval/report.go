package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/stackmill/docent/internal/domain"
)

// WriteCSV renders judged results as a spreadsheet with one row per
// interaction and one column per check.
func WriteCSV(w io.Writer, results []domain.EvalResult) error {
	writer := csv.NewWriter(w)

	header := append([]string{"file", "question", "answer"}, domain.CheckNames...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, result := range results {
		row := []string{
			filepath.Base(result.Record.LogFile),
			result.Record.Question(),
			result.Record.Answer(),
		}
		for _, name := range domain.CheckNames {
			pass, ok := result.Checklist.Passed(name)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatBool(pass))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
