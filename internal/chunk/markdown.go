package chunk

import (
	"fmt"
	"regexp"
	"strings"
)

// SplitMarkdownSections splits markdown text on headers of the given
// level (1 for #, 2 for ##, ...). Each section keeps its header line;
// text before the first header is ignored. Deeper headers stay inside
// their parent section.
func SplitMarkdownSections(text string, level int) []string {
	if level < 1 {
		level = 2
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`(?m)^(#{%d} )(.+)$`, level))
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]string, 0, len(matches))
	for i, m := range matches {
		header := strings.TrimSpace(text[m[0]:m[1]])

		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(text[bodyStart:bodyEnd])

		if body == "" {
			sections = append(sections, header)
			continue
		}
		sections = append(sections, header+"\n\n"+body)
	}

	return sections
}
