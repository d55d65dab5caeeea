package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReadable_FindsArticleBody(t *testing.T) {
	got := ExtractReadable(articleTestPage, "http://example.com/news/bridge")

	require.True(t, got.HasContent())
	assert.NotEmpty(t, got.Title)
	assert.NotEmpty(t, got.StructuredContent)
	assert.NotEmpty(t, got.PlainContent)
}

func TestExtractReadable_EmptyFragment(t *testing.T) {
	got := ExtractReadable("", "http://example.com/empty")
	assert.False(t, got.HasContent())
}

func TestExtractReadable_BadURLDoesNotPanic(t *testing.T) {
	got := ExtractReadable(articleTestPage, "http://exa mple.com/%zz")
	assert.False(t, got.HasContent())
}
