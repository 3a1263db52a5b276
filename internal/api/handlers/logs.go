package handlers

import (
	"net/http"

	"github.com/stackmill/docent/internal/api"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/interactionlog"
)

type LogReader interface {
	List(filter interactionlog.Filter) ([]*domain.LogRecord, error)
}

type LogHandler struct {
	reader LogReader
}

func NewLogHandler(reader LogReader) *LogHandler {
	return &LogHandler{reader: reader}
}

type LogEntry struct {
	LogFile  string           `json:"log_file"`
	Agent    string           `json:"agent"`
	Source   domain.LogSource `json:"source"`
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Model    string           `json:"model"`
	Messages int              `json:"messages"`
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := interactionlog.Filter{
		Agent:  r.URL.Query().Get("agent"),
		Source: domain.LogSource(r.URL.Query().Get("source")),
	}

	records, err := h.reader.List(filter)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	entries := make([]LogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, LogEntry{
			LogFile:  rec.LogFile,
			Agent:    rec.AgentName,
			Source:   rec.Source,
			Question: rec.Question(),
			Answer:   rec.Answer(),
			Model:    rec.Model,
			Messages: len(rec.Messages),
		})
	}

	api.Success(w, http.StatusOK, entries)
}
