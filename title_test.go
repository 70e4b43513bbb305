package epubtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titleOf(t *testing.T, body string) (tagTitle, bool) {
	t.Helper()
	store := loadTestStore(t, newFakeBook(fakeDoc{"c.xhtml", xhtml(body)}))
	return extractTitle(store.Get("c.xhtml").tree, testMarker)
}

func TestExtractTitle_Heading(t *testing.T) {
	got, ok := titleOf(t, `<h2>Chapter One</h2><p>Hello.</p>`)
	require.True(t, ok)
	assert.Equal(t, "Chapter_One", got.title)
	require.NotNil(t, got.heading)
	assert.Equal(t, "h2", headingTag(got))
}

func TestExtractTitle_FirstHeadingInDocumentOrder(t *testing.T) {
	for body, want := range map[string]string{
		`<div><h3>Part Three</h3></div><h1>Book Title</h1>`: "Part_Three",
		`<h2>Part One</h2><h1>Chapter Three</h1>`:           "Part_One",
	} {
		got, ok := titleOf(t, body)
		require.True(t, ok, body)
		assert.Equal(t, want, got.title, body)
	}
}

func TestExtractTitle_ParagraphFallback(t *testing.T) {
	got, ok := titleOf(t, `<p>Once upon a time</p><p>  </p><p>in a forest</p><p>far away</p>`)
	require.True(t, ok)
	assert.Equal(t, "Once_upon_a_time_in", got.title)
	assert.Nil(t, got.heading)
}

func TestExtractTitle_SingleParagraph(t *testing.T) {
	got, ok := titleOf(t, `<p>短い</p>`)
	require.True(t, ok)
	assert.Equal(t, "短い", got.title)
}

func TestExtractTitle_EmptyHeadingFallsBackToParagraphs(t *testing.T) {
	got, ok := titleOf(t, `<h1>***</h1><p>Opening words</p>`)
	require.True(t, ok)
	assert.Equal(t, "Opening_words", got.title)
	assert.Nil(t, got.heading)
}

func TestExtractTitle_None(t *testing.T) {
	_, ok := titleOf(t, `<div><img src="cover.jpg"/></div>`)
	assert.False(t, ok)
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces", "Chapter One", "Chapter_One"},
		{"punctuation", "Chapter 1: The Beginning!", "Chapter_1_The_Beginning"},
		{"surrounding whitespace", "  \tPrologue \n", "Prologue"},
		{"marker", "Part" + testMarker + "Two", "Part_BRKTwo"},
		{"cjk", "第一章　開始", "第一章_開始"},
		{"underscore kept", "a_b c", "a_b_c"},
		{"only symbols", "※※※", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.input, ""))
		})
	}
}

func TestSanitizeTitle_ReplacesMarker(t *testing.T) {
	assert.Equal(t, "Part_Two", SanitizeTitle("Part"+testMarker+"Two", testMarker))
}

func headingTag(t tagTitle) string {
	return t.heading.Nodes[0].Data
}
