package chunk

import (
	"fmt"

	"github.com/stackmill/docent/internal/domain"
)

// Documents chunks every document with a sliding window. Documents
// with empty content are skipped.
func Documents(docs []domain.Document, cfg Config) ([]domain.Chunk, error) {
	if cfg.Size == 0 && cfg.Step == 0 {
		cfg = DefaultConfig()
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		spans, err := SlidingWindow(doc.Content, cfg.Size, cfg.Step)
		if err != nil {
			return nil, err
		}
		for _, span := range spans {
			chunks = append(chunks, domain.Chunk{
				Filename: doc.Filename,
				Content:  span.Content,
				Start:    span.Start,
				Method:   string(domain.ChunkMethodSlidingWindow),
				Meta:     doc.Meta,
			})
		}
	}
	return chunks, nil
}

// DocumentsByParagraph chunks every document on blank lines.
func DocumentsByParagraph(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		for _, paragraph := range SplitParagraphs(doc.Content) {
			chunks = append(chunks, domain.Chunk{
				Filename: doc.Filename,
				Content:  paragraph,
				Method:   string(domain.ChunkMethodParagraph),
				Meta:     doc.Meta,
			})
		}
	}
	return chunks
}

// DocumentsBySection chunks every document on markdown headers of the
// given level. The method tag records the level, e.g. section_level_2.
func DocumentsBySection(docs []domain.Document, level int) []domain.Chunk {
	method := fmt.Sprintf("%s_level_%d", domain.ChunkMethodSection, level)

	var chunks []domain.Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		for _, section := range SplitMarkdownSections(doc.Content, level) {
			chunks = append(chunks, domain.Chunk{
				Filename: doc.Filename,
				Content:  section,
				Method:   method,
				Meta:     doc.Meta,
			})
		}
	}
	return chunks
}

// WholeDocuments wraps unchunked documents as single chunks so the
// index can treat both forms uniformly.
func WholeDocuments(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Filename: doc.Filename,
			Content:  doc.Content,
			Meta:     doc.Meta,
		})
	}
	return chunks
}
