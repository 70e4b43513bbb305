package epubtext

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/simp-lee/epubtext/epub"
)

// Book is the part of an opened ePub package the engine reads from.
// *epub.Book implements it.
type Book interface {
	Spine() []epub.SpineItem
	ReadFile(name string) ([]byte, error)
	Metadata() epub.Metadata
	TOCTitles() map[string]string
}

// Document is one reading-order content document held by a Store.
type Document struct {
	// FileID is the basename of the document's manifest path. It is the key
	// footnote references use to address the document.
	FileID string

	// Href is the ZIP-internal path of the document.
	Href string

	// Lang is the xml:lang or lang attribute of the root element.
	Lang string

	tree     *goquery.Document
	consumed bool
}

// Consumed reports whether the document tree has been released.
func (d *Document) Consumed() bool { return d.consumed }

// Store owns the parsed trees of one book's reading-order documents.
type Store struct {
	docs  map[string]*Document
	order []string
}

// LoadStore parses every spine item that is a content document and
// sanitizes it. A spine entry without a manifest item or an unreadable
// document fails the whole book with a *PackageError.
func LoadStore(book Book, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	spine := book.Spine()
	s := &Store{
		docs:  make(map[string]*Document, len(spine)),
		order: make([]string, 0, len(spine)),
	}

	for _, item := range spine {
		if !item.InManifest {
			return nil, &PackageError{Op: "spine", Path: item.IDRef, Err: epub.ErrMissingManifestItem}
		}
		if !item.IsDocument() {
			logger.Debug("skipping non-document spine item",
				zap.String("href", item.Href), zap.String("media_type", item.MediaType))
			continue
		}

		id := path.Base(item.Href)
		if _, dup := s.docs[id]; dup {
			logger.Warn("duplicate document file id, keeping the first", zap.String("href", item.Href))
			continue
		}

		data, err := book.ReadFile(item.Href)
		if err != nil {
			return nil, &PackageError{Op: "read", Path: item.Href, Err: err}
		}
		tree, err := parseDocument(data)
		if err != nil {
			return nil, &PackageError{Op: "parse", Path: item.Href, Err: err}
		}
		sanitize(tree)

		s.docs[id] = &Document{
			FileID: id,
			Href:   item.Href,
			Lang:   documentLang(tree),
			tree:   tree,
		}
		s.order = append(s.order, id)
	}
	return s, nil
}

// Order returns the file ids in reading order.
func (s *Store) Order() []string {
	return append([]string(nil), s.order...)
}

// Get returns the document for fileID, or nil when it is unknown or its
// tree has been released.
func (s *Store) Get(fileID string) *Document {
	d := s.docs[fileID]
	if d == nil || d.consumed {
		return nil
	}
	return d
}

// Release drops the tree of fileID. Later Gets return nil.
func (s *Store) Release(fileID string) {
	if d := s.docs[fileID]; d != nil {
		d.tree = nil
		d.consumed = true
	}
}

// selfClosingPattern matches XHTML self-closed elements that HTML5 does not
// treat as void. Left alone, <a id="n1"/> would swallow everything after it.
var selfClosingPattern = regexp.MustCompile(
	`(?is)<(a|span|div|p|i|b|em|strong|sup|sub|script|style|title|td|th|li|section|aside)\b([^>]*?)\s*/>`)

// parseDocument parses XHTML content with the HTML5 parser.
func parseDocument(data []byte) (*goquery.Document, error) {
	data = selfClosingPattern.ReplaceAll(data, []byte(`<$1$2></$1>`))
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

func documentLang(tree *goquery.Document) string {
	root := tree.Find("html").First()
	for _, key := range []string{"xml:lang", "lang"} {
		if v, ok := root.Attr(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
