package domain

// Document represents a single markdown file pulled from a repository
// archive. Meta holds whatever frontmatter the file carried.
type Document struct {
	Filename string         `json:"filename"`
	Content  string         `json:"content"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// ChunkMethod identifies how a chunk was produced.
type ChunkMethod string

const (
	ChunkMethodSlidingWindow ChunkMethod = "sliding_window"
	ChunkMethodParagraph     ChunkMethod = "paragraph"
	ChunkMethodSection       ChunkMethod = "section"
)

// Chunk is a fragment of a Document prepared for indexing.
type Chunk struct {
	Filename string         `json:"filename"`
	Content  string         `json:"content"`
	Start    int            `json:"start"`
	Method   string         `json:"method"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// SearchFields returns the chunk as a flat field map for the lexical
// index. Frontmatter values are included so titles and tags are
// searchable alongside the body.
func (c *Chunk) SearchFields() map[string]string {
	fields := map[string]string{
		"content":  c.Content,
		"filename": c.Filename,
	}
	for key, value := range c.Meta {
		if s, ok := value.(string); ok {
			fields[key] = s
		}
	}
	return fields
}
