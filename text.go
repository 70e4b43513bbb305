package epubtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipTags hold content that is never read aloud.
var skipTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// urlPattern matches scheme-qualified URLs and mailto:/news: addresses. URL
// bodies are ASCII only, so adjacent CJK text is never swallowed, and a URL
// does not end on sentence punctuation. A news: address needs a dotted group
// name so prose like "News:" survives.
var urlPattern = regexp.MustCompile(`(?i)` +
	`(?:https?|ftps?|gopher|telnet|nntp)://[A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]*[A-Za-z0-9/#=&_~%+\-]` +
	`|\bmailto:[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]*[A-Za-z0-9]` +
	`|\bnews:[A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)+`)

// plainText concatenates the text nodes below the document body in
// document order. Source whitespace, including newlines, is kept as is;
// the normalizer decides what it means.
func plainText(tree *goquery.Document) string {
	root := tree.Find("body").First()
	if root.Length() == 0 {
		root = tree.Selection
	}
	var sb strings.Builder
	for _, n := range root.Nodes {
		writeText(&sb, n)
	}
	return sb.String()
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.DataAtom] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
}

// stripURLs removes every URL-shaped token from text in one pass.
func stripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}
