package eval

import (
	"path/filepath"

	"github.com/stackmill/docent/internal/domain"
)

// BuildReport aggregates judged results into per-check pass rates and
// a failure list. Checks the judge never produced do not count against
// the rate.
func BuildReport(results []domain.EvalResult) *domain.EvalReport {
	report := &domain.EvalReport{
		Total:     len(results),
		PassRates: make(map[string]float64, len(domain.CheckNames)),
	}

	counts := make(map[string]int, len(domain.CheckNames))
	passes := make(map[string]int, len(domain.CheckNames))

	for _, result := range results {
		var failed []string
		for _, name := range domain.CheckNames {
			pass, ok := result.Checklist.Passed(name)
			if !ok {
				continue
			}
			counts[name]++
			if pass {
				passes[name]++
			} else {
				failed = append(failed, name)
			}
		}
		if len(failed) > 0 {
			report.Failures = append(report.Failures, domain.EvalFailure{
				LogFile:      filepath.Base(result.Record.LogFile),
				Question:     result.Record.Question(),
				FailedChecks: failed,
			})
		}
	}

	for _, name := range domain.CheckNames {
		if counts[name] > 0 {
			report.PassRates[name] = float64(passes[name]) / float64(counts[name])
		}
	}
	return report
}
