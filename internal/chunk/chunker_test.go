package chunk

import (
	"strings"
	"testing"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindow_Basic(t *testing.T) {
	seq := strings.Repeat("a", 10)

	spans, err := SlidingWindow(seq, 4, 2)
	require.NoError(t, err)

	// Starts at 0, 2, 4, 6; the window starting at 6 reaches the end.
	require.Len(t, spans, 4)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, "aaaa", spans[0].Content)
	assert.Equal(t, 6, spans[3].Start)
	assert.Equal(t, "aaaa", spans[3].Content)
}

func TestSlidingWindow_ClipsFinalWindow(t *testing.T) {
	spans, err := SlidingWindow("abcdefg", 5, 3)
	require.NoError(t, err)

	require.Len(t, spans, 2)
	assert.Equal(t, "abcde", spans[0].Content)
	assert.Equal(t, 3, spans[1].Start)
	assert.Equal(t, "defg", spans[1].Content)
}

func TestSlidingWindow_ShorterThanSize(t *testing.T) {
	spans, err := SlidingWindow("abc", 100, 50)
	require.NoError(t, err)

	require.Len(t, spans, 1)
	assert.Equal(t, "abc", spans[0].Content)
}

func TestSlidingWindow_Empty(t *testing.T) {
	spans, err := SlidingWindow("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestSlidingWindow_RejectsNonPositiveParams(t *testing.T) {
	for _, tc := range []struct{ size, step int }{
		{0, 10},
		{10, 0},
		{-1, 10},
		{10, -1},
	} {
		_, err := SlidingWindow("text", tc.size, tc.step)
		assert.ErrorIs(t, err, domain.ErrInvalidChunkParams)
	}
}

func TestSlidingWindow_MultibyteSafe(t *testing.T) {
	seq := strings.Repeat("日本語テキスト", 3)
	runes := []rune(seq)

	spans, err := SlidingWindow(seq, 5, 3)
	require.NoError(t, err)

	for _, span := range spans {
		end := span.Start + 5
		if end > len(runes) {
			end = len(runes)
		}
		assert.Equal(t, string(runes[span.Start:end]), span.Content)
	}
}

func TestSplitParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond one\nspans two lines.\n\n\n  \nThird."

	paragraphs := SplitParagraphs(text)

	require.Len(t, paragraphs, 3)
	assert.Equal(t, "First paragraph.", paragraphs[0])
	assert.Equal(t, "Second one\nspans two lines.", paragraphs[1])
	assert.Equal(t, "Third.", paragraphs[2])
}

func TestSplitParagraphs_Empty(t *testing.T) {
	assert.Empty(t, SplitParagraphs(""))
	assert.Empty(t, SplitParagraphs("   \n\n  \n"))
}

const sampleMarkdown = `# Introduction

Intro text.

## Getting Started

Some content here.

### Details

Nested subsection stays with its parent.

## Conclusion
`

func TestSplitMarkdownSections_Level2(t *testing.T) {
	sections := SplitMarkdownSections(sampleMarkdown, 2)

	require.Len(t, sections, 2)
	assert.True(t, strings.HasPrefix(sections[0], "## Getting Started"))
	assert.Contains(t, sections[0], "### Details")
	assert.Equal(t, "## Conclusion", sections[1])
}

func TestSplitMarkdownSections_Level1(t *testing.T) {
	sections := SplitMarkdownSections(sampleMarkdown, 1)

	require.Len(t, sections, 1)
	assert.True(t, strings.HasPrefix(sections[0], "# Introduction"))
	assert.Contains(t, sections[0], "## Conclusion")
}

func TestSplitMarkdownSections_NoHeaders(t *testing.T) {
	assert.Empty(t, SplitMarkdownSections("just plain text\nwith no headers", 2))
}

func TestDocuments_SkipsEmptyAndTagsMethod(t *testing.T) {
	docs := []domain.Document{
		{Filename: "a.md", Content: strings.Repeat("x", 30), Meta: map[string]any{"title": "A"}},
		{Filename: "empty.md", Content: ""},
	}

	chunks, err := Documents(docs, Config{Size: 20, Step: 10})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, "a.md", c.Filename)
		assert.Equal(t, "sliding_window", c.Method)
		assert.Equal(t, "A", c.Meta["title"])
	}
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 10, chunks[1].Start)
	assert.Equal(t, 20, chunks[2].Start)
}

func TestDocumentsBySection(t *testing.T) {
	docs := []domain.Document{{Filename: "doc.md", Content: sampleMarkdown}}

	chunks := DocumentsBySection(docs, 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "section_level_2", chunks[0].Method)
}

func TestDocumentsByParagraph(t *testing.T) {
	docs := []domain.Document{{Filename: "doc.md", Content: "one\n\ntwo"}}

	chunks := DocumentsByParagraph(docs)

	require.Len(t, chunks, 2)
	assert.Equal(t, "paragraph", chunks[0].Method)
	assert.Equal(t, "one", chunks[0].Content)
}
