package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stackmill/docent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func archiveServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()

	archive := buildArchive(t, files)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/docs/zip/refs/heads/main" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(archive)
	}))
}

func TestReadRepoData_ParsesMarkdownWithFrontmatter(t *testing.T) {
	srv := archiveServer(t, map[string]string{
		"docs-main/README.md":      "---\ntitle: Readme\ntags:\n  - intro\n---\n\n# Hello\n\nBody text.",
		"docs-main/guide/faq.mdx":  "Plain body, no frontmatter.",
		"docs-main/assets/logo.go": "package ignored",
	})
	defer srv.Close()

	d := NewDownloader(srv.URL)
	docs, err := d.ReadRepoData(context.Background(), "acme", "docs", "")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byName := map[string]domain.Document{}
	for _, doc := range docs {
		byName[doc.Filename] = doc
	}

	readme, ok := byName["README.md"]
	require.True(t, ok, "archive root element should be stripped")
	assert.Equal(t, "Readme", readme.Meta["title"])
	assert.Equal(t, "# Hello\n\nBody text.", readme.Content)

	faq := byName["guide/faq.mdx"]
	assert.Nil(t, faq.Meta)
	assert.Equal(t, "Plain body, no frontmatter.", faq.Content)
}

func TestReadRepoData_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(srv.URL)
	_, err := d.ReadRepoData(context.Background(), "acme", "missing", "main")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}

func TestReadRepoData_MissingOwner(t *testing.T) {
	d := NewDownloader("")
	_, err := d.ReadRepoData(context.Background(), "", "repo", "main")
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestArchiveURL(t *testing.T) {
	d := NewDownloader("")
	assert.Equal(t,
		"https://codeload.github.com/DataTalksClub/faq/zip/refs/heads/main",
		d.ArchiveURL("DataTalksClub", "faq", "main"))
}

func TestParseFrontmatter(t *testing.T) {
	body, meta := ParseFrontmatter("---\ntitle: Test\nid: 42\n---\n\nContent here.")
	assert.Equal(t, "Content here.", body)
	assert.Equal(t, "Test", meta["title"])
	assert.Equal(t, 42, meta["id"])
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	raw := "# Just markdown\n\nNo metadata."
	body, meta := ParseFrontmatter(raw)
	assert.Equal(t, raw, body)
	assert.Nil(t, meta)
}

func TestParseFrontmatter_Unclosed(t *testing.T) {
	raw := "---\ntitle: broken\nno closing delimiter"
	body, meta := ParseFrontmatter(raw)
	assert.Equal(t, raw, body)
	assert.Nil(t, meta)
}

func TestParseFrontmatter_MalformedYAML(t *testing.T) {
	raw := "---\n\t{not yaml\n---\nbody"
	body, meta := ParseFrontmatter(raw)
	assert.Equal(t, raw, body)
	assert.Nil(t, meta)
}

func TestParseFrontmatter_CRLF(t *testing.T) {
	body, meta := ParseFrontmatter("---\r\ntitle: Windows\r\n---\r\nline one\r\nline two")
	assert.Equal(t, "Windows", meta["title"])
	assert.Equal(t, "line one\nline two", body)
}
