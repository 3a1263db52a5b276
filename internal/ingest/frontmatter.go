package ingest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a markdown file into its YAML frontmatter
// and body. Files without a leading "---" block, or with frontmatter
// that fails to parse, are returned whole with nil metadata.
func ParseFrontmatter(raw string) (body string, meta map[string]any) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return raw, nil
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		return raw, nil
	}

	head := strings.Join(lines[1:closing], "\n")
	meta = map[string]any{}
	if err := yaml.Unmarshal([]byte(head), &meta); err != nil {
		return raw, nil
	}
	if len(meta) == 0 {
		meta = nil
	}

	body = strings.Join(lines[closing+1:], "\n")
	return strings.TrimLeft(body, "\n"), meta
}
