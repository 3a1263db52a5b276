// Package interactionlog persists agent transcripts as JSON files so
// they can be replayed and evaluated later.
package interactionlog

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stackmill/docent/internal/domain"
)

// DefaultDir is used when no logs directory is configured.
const DefaultDir = "logs"

// Logger writes interaction records into a directory, one file per
// interaction.
type Logger struct {
	dir string
}

func NewLogger(dir string) (*Logger, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory %q: %w", dir, err)
	}
	return &Logger{dir: dir}, nil
}

func (l *Logger) Dir() string {
	return l.dir
}

// Write stores one record as pretty-printed JSON. The filename embeds
// the agent name, the timestamp of the last message, and a random
// suffix to avoid collisions.
func (l *Logger) Write(record *domain.LogRecord) (string, error) {
	ts := time.Now()
	if n := len(record.Messages); n > 0 && !record.Messages[n-1].Timestamp.IsZero() {
		ts = record.Messages[n-1].Timestamp
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate log filename: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.json",
		record.AgentName, ts.Format("20060102_150405"), hex.EncodeToString(suffix))
	path := filepath.Join(l.dir, filename)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize log record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return path, nil
}

// Reader loads interaction records back from a logs directory.
type Reader struct {
	dir string
}

func NewReader(dir string) *Reader {
	if dir == "" {
		dir = DefaultDir
	}
	return &Reader{dir: dir}
}

// Filter narrows which records List returns. A zero Filter matches
// everything.
type Filter struct {
	// Agent matches records whose agent name contains this substring.
	Agent string
	// Source matches records with exactly this source.
	Source domain.LogSource
}

// Load reads one record and stamps it with its path.
func (r *Reader) Load(path string) (*domain.LogRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file %q: %w", path, err)
	}

	var record domain.LogRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse log file %q: %w", path, err)
	}
	record.LogFile = path
	return &record, nil
}

// List loads every matching record, skipping files that fail to parse.
func (r *Reader) List(filter Filter) ([]*domain.LogRecord, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	var records []*domain.LogRecord
	for _, path := range paths {
		record, err := r.Load(path)
		if err != nil {
			log.Printf("interactionlog: skipping %s: %v", path, err)
			continue
		}
		if filter.Agent != "" && !strings.Contains(record.AgentName, filter.Agent) {
			continue
		}
		if filter.Source != "" && record.Source != filter.Source {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
