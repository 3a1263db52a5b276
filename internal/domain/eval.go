package domain

// Checklist item names used by the judge. The set is fixed so pass
// rates stay comparable across runs.
const (
	CheckInstructionsFollow = "instructions_follow"
	CheckInstructionsAvoid  = "instructions_avoid"
	CheckAnswerRelevant     = "answer_relevant"
	CheckAnswerClear        = "answer_clear"
	CheckAnswerCitations    = "answer_citations"
	CheckCompleteness       = "completeness"
	CheckToolCallSearch     = "tool_call_search"
)

// CheckNames lists the checklist in report order.
var CheckNames = []string{
	CheckInstructionsFollow,
	CheckInstructionsAvoid,
	CheckAnswerRelevant,
	CheckAnswerClear,
	CheckAnswerCitations,
	CheckCompleteness,
	CheckToolCallSearch,
}

// EvalCheck is a single judged criterion with its justification.
type EvalCheck struct {
	Name          string `json:"check_name"`
	Justification string `json:"justification"`
	Pass          bool   `json:"check_pass"`
}

// EvalChecklist is the judge's verdict for one interaction.
type EvalChecklist struct {
	Checks  []EvalCheck `json:"checklist"`
	Summary string      `json:"summary"`
}

// Passed returns the verdict for a named check, and whether the judge
// produced it at all.
func (c *EvalChecklist) Passed(name string) (bool, bool) {
	for _, check := range c.Checks {
		if check.Name == name {
			return check.Pass, true
		}
	}
	return false, false
}

// EvalResult pairs a log record with its judged checklist.
type EvalResult struct {
	Record    *LogRecord     `json:"record"`
	Checklist *EvalChecklist `json:"checklist"`
}

// EvalReport aggregates checklist verdicts across many interactions.
type EvalReport struct {
	Total     int                `json:"total"`
	PassRates map[string]float64 `json:"pass_rates"`
	Failures  []EvalFailure      `json:"failures,omitempty"`
}

// EvalFailure lists the checks one interaction failed.
type EvalFailure struct {
	LogFile      string   `json:"log_file"`
	Question     string   `json:"question"`
	FailedChecks []string `json:"failed_checks"`
}
