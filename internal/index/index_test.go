package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIndex() *Index {
	idx := New([]string{"content", "title"})
	idx.Fit([]Doc{
		{
			Fields:  map[string]string{"title": "Course Enrollment", "content": "You can still join the course after the start date and submit homework."},
			Payload: "enrollment",
		},
		{
			Fields:  map[string]string{"title": "Homework Submission", "content": "Homework is submitted through the platform before the deadline."},
			Payload: "homework",
		},
		{
			Fields:  map[string]string{"title": "Getting Help", "content": "Ask questions in the community channel."},
			Payload: "help",
		},
	})
	return idx
}

func TestSearch_RanksRelevantFirst(t *testing.T) {
	idx := fixtureIndex()

	hits := idx.Search("join the course", 5)

	require.NotEmpty(t, hits)
	assert.Equal(t, "enrollment", hits[0].Payload)
}

func TestSearch_LimitsResults(t *testing.T) {
	idx := fixtureIndex()

	hits := idx.Search("homework course community", 2)
	assert.Len(t, hits, 2)
}

func TestSearch_NoMatch(t *testing.T) {
	idx := fixtureIndex()

	assert.Empty(t, idx.Search("kubernetes", 5))
}

func TestSearch_StopwordOnlyQuery(t *testing.T) {
	idx := fixtureIndex()

	assert.Empty(t, idx.Search("the and of", 5))
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := New([]string{"content"})
	assert.Empty(t, idx.Search("anything", 5))
	assert.Equal(t, 0, idx.Len())
}

func TestSearchWithBoosts_FieldWeighting(t *testing.T) {
	idx := New([]string{"content", "title"})
	idx.Fit([]Doc{
		{Fields: map[string]string{"title": "deadline policy", "content": "general rules"}, Payload: "title-match"},
		{Fields: map[string]string{"title": "other", "content": "deadline deadline deadline"}, Payload: "content-match"},
	})

	boosted := idx.SearchWithBoosts("deadline", 2, map[string]float64{"title": 10.0, "content": 0.1})
	require.Len(t, boosted, 2)
	assert.Equal(t, "title-match", boosted[0].Payload)

	unboosted := idx.SearchWithBoosts("deadline", 2, map[string]float64{"title": 0, "content": 1.0})
	require.NotEmpty(t, unboosted)
	assert.Equal(t, "content-match", unboosted[0].Payload)
}

func TestFit_ReplacesCorpus(t *testing.T) {
	idx := fixtureIndex()
	require.Equal(t, 3, idx.Len())

	idx.Fit([]Doc{{Fields: map[string]string{"content": "fresh corpus only"}, Payload: "fresh"}})

	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Search("homework", 5))
	hits := idx.Search("fresh corpus", 5)
	require.Len(t, hits, 1)
	assert.Equal(t, "fresh", hits[0].Payload)
}
