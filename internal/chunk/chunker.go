package chunk

import (
	"strings"

	"github.com/stackmill/docent/internal/domain"
)

// Config controls sliding-window chunking.
type Config struct {
	Size int
	Step int
}

// DefaultConfig provides sane defaults for chunking.
func DefaultConfig() Config {
	return Config{
		Size: 2000,
		Step: 1000,
	}
}

// Span is one window over a source string.
type Span struct {
	Start   int
	Content string
}

// SlidingWindow splits seq into overlapping windows. Windows start at
// multiples of step; the final window is clipped at the end of the
// sequence. Offsets are rune-based so multibyte text never splits
// mid-character.
func SlidingWindow(seq string, size, step int) ([]Span, error) {
	if size <= 0 || step <= 0 {
		return nil, domain.ErrInvalidChunkParams
	}

	runes := []rune(seq)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	spans := make([]Span, 0, n/step+1)
	for i := 0; i < n; i += step {
		end := i + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: i, Content: string(runes[i:end])})
		if i+size >= n {
			break
		}
	}

	return spans, nil
}

// SplitParagraphs splits text on blank lines. Whitespace-only
// paragraphs are dropped.
func SplitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range splitBlankLines(strings.TrimSpace(text)) {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

func splitBlankLines(text string) []string {
	lines := strings.Split(text, "\n")
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks
}
