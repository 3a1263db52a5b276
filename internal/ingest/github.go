// Package ingest downloads repository archives and turns their
// markdown files into documents ready for chunking and indexing.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/stackmill/docent/internal/domain"
)

const (
	// DefaultBaseURL is the GitHub archive endpoint. Archives are
	// fetched as {base}/{owner}/{repo}/zip/refs/heads/{branch}.
	DefaultBaseURL = "https://codeload.github.com"

	defaultTimeout = 60 * time.Second

	// maxArchiveBytes caps how much of an archive response we buffer.
	maxArchiveBytes = 256 << 20
)

// Downloader fetches repository archives over HTTP.
type Downloader struct {
	baseURL    string
	httpClient *http.Client
}

// NewDownloader creates a Downloader for the given archive base URL.
// An empty baseURL falls back to the GitHub codeload endpoint.
func NewDownloader(baseURL string) *Downloader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Downloader{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ArchiveURL returns the download URL for a repository branch.
func (d *Downloader) ArchiveURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/zip/refs/heads/%s", d.baseURL, owner, repo, branch)
}

// ReadRepoData downloads a repository archive and parses every .md and
// .mdx file into a Document. Files that fail to parse are logged and
// skipped. Branch defaults to main.
func (d *Downloader) ReadRepoData(ctx context.Context, owner, repo, branch string) ([]domain.Document, error) {
	if owner == "" || repo == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if branch == "" {
		branch = "main"
	}

	url := d.ArchiveURL(owner, repo, branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "repository archive download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDomainError(domain.ErrCodeUpstream,
			fmt.Sprintf("repository archive download failed: status %d for %s/%s@%s", resp.StatusCode, owner, repo, branch))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive body: %w", err)
	}

	return parseArchive(body)
}

func parseArchive(data []byte) ([]domain.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	var docs []domain.Document
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		lower := strings.ToLower(file.Name)
		if !strings.HasSuffix(lower, ".md") && !strings.HasSuffix(lower, ".mdx") {
			continue
		}

		content, err := readZipFile(file)
		if err != nil {
			log.Printf("ingest: skipping %s: %v", file.Name, err)
			continue
		}

		body, meta := ParseFrontmatter(content)
		docs = append(docs, domain.Document{
			Filename: stripArchiveRoot(file.Name),
			Content:  body,
			Meta:     meta,
		})
	}

	return docs, nil
}

func readZipFile(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	// Invalid UTF-8 sequences are tolerated; downstream consumers only
	// ever slice on rune boundaries.
	return string(data), nil
}

// stripArchiveRoot removes the leading "<repo>-<branch>/" element that
// GitHub prepends to every path inside the archive.
func stripArchiveRoot(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
