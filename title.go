package epubtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	headingSelector = "h1, h2, h3, h4, h5, h6"

	// paragraphTitleRunes caps titles built from paragraph text.
	paragraphTitleRunes = 20
)

// nonWordPattern matches everything a title may not contain.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s\p{Z}]`)

// tagTitle is the result of the heading/paragraph heuristic.
type tagTitle struct {
	title string

	// heading is the element the title came from, nil for paragraph titles.
	heading *goquery.Selection
}

// extractTitle derives a chapter title from the document markup: the first
// heading in document order, else the first two non-empty paragraphs joined
// by an underscore and cut to 20 runes. ok is false when neither exists.
func extractTitle(tree *goquery.Document, breakMarker string) (tagTitle, bool) {
	if h := tree.Find(headingSelector).First(); h.Length() > 0 {
		if text := strings.TrimSpace(h.Text()); text != "" {
			if title := SanitizeTitle(text, breakMarker); title != "" {
				return tagTitle{title: title, heading: h}, true
			}
		}
	}

	var paragraphs []string
	tree.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < 2
	})
	if len(paragraphs) == 0 {
		return tagTitle{}, false
	}
	joined := []rune(strings.Join(paragraphs, "_"))
	if len(joined) > paragraphTitleRunes {
		joined = joined[:paragraphTitleRunes]
	}
	title := SanitizeTitle(string(joined), breakMarker)
	return tagTitle{title: title}, title != ""
}

// SanitizeTitle turns free text into a file-name friendly identifier: the
// break marker becomes a space, everything but letters, digits, marks,
// underscores and whitespace is dropped, and whitespace runs become single
// underscores.
func SanitizeTitle(title, breakMarker string) string {
	if breakMarker != "" {
		title = strings.ReplaceAll(title, breakMarker, " ")
	}
	title = nonWordPattern.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(title), "_")
}
