package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// loadTOC picks the TOC source, nav document for ePub 3 and NCX otherwise
// (or as the ePub 3 fallback), and records failures as warnings. A book
// without a usable TOC ends up with an empty, non-nil slice.
func (b *Book) loadTOC() {
	spineIndex := make(map[string]int, len(b.spine))
	for i, si := range b.spine {
		if si.Href != "" {
			spineIndex[si.Href] = i
		}
	}

	var toc []TOCItem
	var ok bool
	if strings.HasPrefix(b.pkg.Version, "3") {
		toc, ok = b.readNavTOC()
	}
	if !ok {
		toc, ok = b.readNCXTOC()
	}
	if !ok {
		b.toc = []TOCItem{}
		return
	}
	assignSpineIndices(toc, spineIndex)
	b.toc = toc
}

func (b *Book) readNavTOC() ([]TOCItem, bool) {
	var nav *manifestItem
	for _, it := range b.pkg.Manifest.Items {
		if hasToken(it.Properties, "nav") {
			nav = b.manifest[it.ID]
			break
		}
	}
	if nav == nil {
		return nil, false
	}
	navPath := joinOPFPath(b.opfDir, nav.Href)
	data, err := b.ReadFile(navPath)
	if err != nil {
		b.warnf("failed to read nav document: %v", err)
		return nil, false
	}
	toc, err := parseNavDocument(data, navPath)
	if err != nil {
		b.warnf("failed to parse nav document: %v", err)
		return nil, false
	}
	return toc, true
}

func (b *Book) readNCXTOC() ([]TOCItem, bool) {
	ncx, ok := b.manifest[b.pkg.Spine.Toc]
	if !ok {
		return nil, false
	}
	ncxPath := joinOPFPath(b.opfDir, ncx.Href)
	data, err := b.ReadFile(ncxPath)
	if err != nil {
		b.warnf("failed to read NCX file: %v", err)
		return nil, false
	}
	toc, err := parseNCX(data, ncxPath)
	if err != nil {
		b.warnf("failed to parse NCX file: %v", err)
		return nil, false
	}
	return toc, true
}

func assignSpineIndices(items []TOCItem, spineIndex map[string]int) {
	for i := range items {
		if idx, ok := spineIndex[hrefWithoutFragment(items[i].Href)]; ok && items[i].Href != "" {
			items[i].SpineIndex = idx
		}
		assignSpineIndices(items[i].Children, spineIndex)
	}
}

// hrefWithoutFragment returns href with any "#fragment" removed.
func hrefWithoutFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if f == token {
			return true
		}
	}
	return false
}

// TOCTitles flattens the TOC into a map from document path (fragment
// removed) to the first entry title pointing at it.
func (b *Book) TOCTitles() map[string]string {
	titles := make(map[string]string)
	var walk func([]TOCItem)
	walk = func(items []TOCItem) {
		for _, it := range items {
			if p := hrefWithoutFragment(it.Href); p != "" && it.Title != "" {
				if _, seen := titles[p]; !seen {
					titles[p] = it.Title
				}
			}
			walk(it.Children)
		}
	}
	walk(b.toc)
	return titles
}

type ncxDocument struct {
	XMLName xml.Name   `xml:"ncx"`
	Points  []ncxPoint `xml:"navMap>navPoint"`
}

type ncxPoint struct {
	Label string `xml:"navLabel>text"`
	Src   struct {
		Value string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxPoint `xml:"navPoint"`
}

// parseNCX decodes an ePub 2 NCX file. Hrefs are resolved relative to
// ncxPath so they match spine paths.
func parseNCX(data []byte, ncxPath string) ([]TOCItem, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(replaceHTMLEntities(stripBOM(data)), &doc); err != nil {
		return nil, fmt.Errorf("epub: parse NCX: %w", err)
	}
	return ncxItems(doc.Points, ncxPath), nil
}

func ncxItems(points []ncxPoint, ncxPath string) []TOCItem {
	if len(points) == 0 {
		return nil
	}
	items := make([]TOCItem, 0, len(points))
	for _, p := range points {
		item := TOCItem{Title: strings.TrimSpace(p.Label), SpineIndex: -1}
		if src := strings.TrimSpace(p.Src.Value); src != "" {
			item.Href = resolveRelativePath(ncxPath, src)
		}
		item.Children = ncxItems(p.Children, ncxPath)
		items = append(items, item)
	}
	return items
}

// parseNavDocument extracts the epub:type="toc" list of an ePub 3 nav
// document.
func parseNavDocument(data []byte, navPath string) ([]TOCItem, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("epub: parse nav document: %w", err)
	}
	nav := findNode(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Nav && hasToken(attr(n, "epub:type"), "toc")
	})
	if nav == nil {
		return nil, nil
	}
	ol := findNode(nav, func(n *html.Node) bool { return n.DataAtom == atom.Ol })
	if ol == nil {
		return nil, nil
	}
	return navList(ol, navPath), nil
}

func navList(ol *html.Node, navPath string) []TOCItem {
	var items []TOCItem
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		item := TOCItem{SpineIndex: -1}
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.A:
				if item.Href == "" {
					if href := attr(c, "href"); href != "" {
						item.Href = resolveRelativePath(navPath, href)
					}
					item.Title = strings.TrimSpace(nodeText(c))
				}
			case atom.Span:
				if item.Title == "" {
					item.Title = strings.TrimSpace(nodeText(c))
				}
			case atom.Ol:
				item.Children = navList(c, navPath)
			}
		}
		items = append(items, item)
	}
	return items
}

// findNode returns the first element below n (depth-first) matching fn.
func findNode(n *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && fn(c) {
			return c
		}
		if found := findNode(c, fn); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
