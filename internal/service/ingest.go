package service

import (
	"context"
	"sync"

	"github.com/stackmill/docent/internal/chunk"
	"github.com/stackmill/docent/internal/domain"
	"github.com/stackmill/docent/internal/index"
	"github.com/stackmill/docent/internal/ingest"
	"github.com/stackmill/docent/internal/telemetry"
)

// IngestService downloads repository documentation, chunks it, and
// maintains the search index the docs agent answers from.
type IngestService struct {
	downloader *ingest.Downloader
	chunkCfg   chunk.Config

	mu     sync.RWMutex
	idx    *index.Index
	chunks []domain.Chunk
	owner  string
	repo   string
}

// IngestInput selects a repository and how its files are split.
type IngestInput struct {
	Owner  string
	Repo   string
	Branch string
	// Method is one of the chunking methods, or empty to index whole
	// files.
	Method       string
	SectionLevel int
	Size         int
	Step         int
}

// IngestOutput summarizes one completed ingest.
type IngestOutput struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// NewIngestService creates a new IngestService instance
func NewIngestService(downloader *ingest.Downloader, chunkCfg chunk.Config) *IngestService {
	return &IngestService{
		downloader: downloader,
		chunkCfg:   chunkCfg,
		idx:        newDocsIndex(),
	}
}

func newDocsIndex() *index.Index {
	return index.New([]string{"content", "filename"})
}

// Ingest downloads a repository and rebuilds the index from its
// markdown files.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		Repo:      input.Owner + "/" + input.Repo,
		Operation: "ingest",
	})
	defer span.End()

	docs, err := s.downloader.ReadRepoData(ctx, input.Owner, input.Repo, input.Branch)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	chunks, err := s.splitDocuments(docs, input)
	if err != nil {
		return nil, err
	}

	indexDocs := make([]index.Doc, len(chunks))
	for i, c := range chunks {
		indexDocs[i] = index.Doc{Fields: c.SearchFields(), Payload: c}
	}

	idx := newDocsIndex()
	idx.Fit(indexDocs)

	s.mu.Lock()
	s.idx = idx
	s.chunks = chunks
	s.owner = input.Owner
	s.repo = input.Repo
	s.mu.Unlock()

	branch := input.Branch
	if branch == "" {
		branch = "main"
	}
	return &IngestOutput{
		Owner:     input.Owner,
		Repo:      input.Repo,
		Branch:    branch,
		Documents: len(docs),
		Chunks:    len(chunks),
	}, nil
}

func (s *IngestService) splitDocuments(docs []domain.Document, input IngestInput) ([]domain.Chunk, error) {
	switch input.Method {
	case string(domain.ChunkMethodSlidingWindow):
		cfg := s.chunkCfg
		if input.Size > 0 {
			cfg.Size = input.Size
		}
		if input.Step > 0 {
			cfg.Step = input.Step
		}
		return chunk.Documents(docs, cfg)
	case string(domain.ChunkMethodParagraph):
		return chunk.DocumentsByParagraph(docs), nil
	case string(domain.ChunkMethodSection):
		level := input.SectionLevel
		if level <= 0 {
			level = 2
		}
		return chunk.DocumentsBySection(docs, level), nil
	case "":
		return chunk.WholeDocuments(docs), nil
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			"unknown chunking method: "+input.Method)
	}
}

// Search queries the current index.
func (s *IngestService) Search(query string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.idx.Len() == 0 {
		return nil, domain.ErrIndexEmpty
	}
	if limit <= 0 {
		limit = 5
	}

	hits := s.idx.Search(query, limit)
	out := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		if c, ok := hit.Payload.(domain.Chunk); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Ready reports whether an ingest has populated the index.
func (s *IngestService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Len() > 0
}

// Index returns the current search index.
func (s *IngestService) Index() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Repo returns the owner and name of the last ingested repository.
func (s *IngestService) Repo() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner, s.repo
}

// Chunks returns the indexed chunks.
func (s *IngestService) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}
