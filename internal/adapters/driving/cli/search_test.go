package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

func searchResult(title, heading, text string, score float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			Title:   title,
			URL:     "https://example.org/doc",
			Heading: heading,
			Text:    text,
		},
		Score: score,
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	withServices(t, Services{Retriever: &fakeRetriever{}})

	_, err := executeCommand(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.RetrievedChunk{
		searchResult("Grant Deadlines", "Funding", "The deadline moved to October.", 0.91),
	}}
	withServices(t, Services{Retriever: retriever})

	out, err := executeCommand(t, "search", "deadline")

	require.NoError(t, err)
	assert.Equal(t, "deadline", retriever.lastQuery)
	assert.Equal(t, 10, retriever.lastTopK)
	assert.Contains(t, out, "Grant Deadlines (0.91)")
	assert.Contains(t, out, "Section: Funding")
	assert.Contains(t, out, "The deadline moved to October.")
}

func TestSearchCmd_Limit(t *testing.T) {
	retriever := &fakeRetriever{}
	withServices(t, Services{Retriever: retriever})
	t.Cleanup(func() { searchLimit = 10 })

	_, err := executeCommand(t, "search", "deadline", "--limit", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, retriever.lastTopK)
}

func TestSearchCmd_URLFilter(t *testing.T) {
	retriever := &fakeRetriever{}
	withServices(t, Services{Retriever: retriever})
	t.Cleanup(func() { searchURL = "" })

	_, err := executeCommand(t, "search", "deadline", "--url", "https://example.org/doc")

	require.NoError(t, err)
	assert.Equal(t, "https://example.org/doc", retriever.lastURL)
}

func TestSearchCmd_NoResults(t *testing.T) {
	withServices(t, Services{Retriever: &fakeRetriever{}})

	out, err := executeCommand(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.RetrievedChunk{
		searchResult("Grant Deadlines", "", "text", 0.5),
	}}
	withServices(t, Services{Retriever: retriever})
	t.Cleanup(func() { searchJSON = false })

	out, err := executeCommand(t, "search", "deadline", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "Grant Deadlines"`)
	assert.Contains(t, out, `"Score": 0.5`)
}

func TestSearchCmd_ErrorsWithoutServices(t *testing.T) {
	withServices(t, Services{})

	_, err := executeCommand(t, "search", "deadline")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "a b", makeSnippet("  a \n b "))

	long := ""
	for range 40 {
		long += "abcdefghi "
	}
	snippet := makeSnippet(long)
	assert.LessOrEqual(t, len(snippet), 163)
	assert.Contains(t, snippet, "...")
}
