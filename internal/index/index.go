// Package index provides a minimal in-memory lexical search index.
// It plays the role an embedded search library would: fit a batch of
// documents once, then answer keyword queries with TF-IDF scoring.
package index

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "to": {}, "for": {}, "with": {}, "by": {},
	"in": {}, "on": {}, "at": {}, "from": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "it": {}, "this": {}, "that": {}, "these": {}, "those": {}, "we": {}, "our": {}, "you": {},
	"your": {}, "i": {}, "me": {}, "my": {}, "us": {}, "them": {}, "they": {}, "their": {}, "do": {},
	"does": {}, "did": {}, "what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "which": {}, "can": {},
	"could": {}, "should": {}, "would": {}, "may": {}, "might": {}, "will": {}, "shall": {},
}

// Doc is one indexable document: named text fields plus an opaque
// payload returned on hits.
type Doc struct {
	Fields  map[string]string
	Payload any
}

// Hit is a scored search result.
type Hit struct {
	Score   float64
	Payload any
}

type posting struct {
	doc int
	tf  float64
}

type fieldIndex struct {
	postings map[string][]posting
	docFreq  map[string]int
}

// Index is an in-memory inverted index over named text fields.
// Fit replaces the whole corpus; Search is safe for concurrent use
// once Fit has returned.
type Index struct {
	mu     sync.RWMutex
	fields []string
	boosts map[string]float64
	byName map[string]*fieldIndex
	docs   []Doc
}

// New creates an index over the given text fields. Boosts default
// to 1.0 per field and can be overridden per query.
func New(textFields []string) *Index {
	boosts := make(map[string]float64, len(textFields))
	for _, f := range textFields {
		boosts[f] = 1.0
	}
	return &Index{
		fields: append([]string(nil), textFields...),
		boosts: boosts,
	}
}

// Fit indexes the documents, replacing any previous corpus.
func (idx *Index) Fit(docs []Doc) {
	byName := make(map[string]*fieldIndex, len(idx.fields))
	for _, field := range idx.fields {
		byName[field] = &fieldIndex{
			postings: make(map[string][]posting),
			docFreq:  make(map[string]int),
		}
	}

	for docID, doc := range docs {
		for _, field := range idx.fields {
			fi := byName[field]
			tokens := tokenize(doc.Fields[field])
			if len(tokens) == 0 {
				continue
			}

			counts := make(map[string]int, len(tokens))
			for _, tok := range tokens {
				counts[tok]++
			}
			for tok, count := range counts {
				fi.postings[tok] = append(fi.postings[tok], posting{
					doc: docID,
					tf:  float64(count) / float64(len(tokens)),
				})
				fi.docFreq[tok]++
			}
		}
	}

	idx.mu.Lock()
	idx.byName = byName
	idx.docs = append([]Doc(nil), docs...)
	idx.mu.Unlock()
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search returns up to numResults documents ranked by TF-IDF score.
func (idx *Index) Search(query string, numResults int) []Hit {
	return idx.SearchWithBoosts(query, numResults, nil)
}

// SearchWithBoosts searches with per-field boost overrides.
func (idx *Index) SearchWithBoosts(query string, numResults int, boosts map[string]float64) []Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if numResults <= 0 || len(idx.docs) == 0 {
		return nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	n := float64(len(idx.docs))
	scores := make(map[int]float64)

	for _, field := range idx.fields {
		fi := idx.byName[field]
		boost := idx.boosts[field]
		if override, ok := boosts[field]; ok {
			boost = override
		}
		if boost == 0 {
			continue
		}

		for _, tok := range tokens {
			df := fi.docFreq[tok]
			if df == 0 {
				continue
			}
			idf := math.Log(1 + n/float64(df))
			for _, p := range fi.postings[tok] {
				scores[p.doc] += p.tf * idf * boost
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{Score: score, Payload: idx.docs[docID].Payload})
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > numResults {
		hits = hits[:numResults]
	}
	return hits
}

func tokenize(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, ok := stopwords[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
