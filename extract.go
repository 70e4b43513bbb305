package epubtext

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/simp-lee/epubtext/epub"
)

// Chapter is one emitted unit of text.
type Chapter struct {
	Title  string
	Text   string
	FileID string
	Index  int // 1-based position among emitted chapters
}

// BookInfo is the book-level metadata passed through to the caller.
type BookInfo struct {
	Title    string
	Authors  []string
	Language string
}

// BookInfoOf reads the title, authors and language from the package
// metadata. Missing titles and authors read as "Untitled" and "Unknown".
func BookInfoOf(book Book) BookInfo {
	md := book.Metadata()
	info := BookInfo{Title: "Untitled"}
	if len(md.Titles) > 0 {
		info.Title = md.Titles[0]
	}
	for _, a := range md.Authors {
		info.Authors = append(info.Authors, a.Name)
	}
	if len(info.Authors) == 0 {
		info.Authors = []string{"Unknown"}
	}
	if len(md.Language) > 0 {
		info.Language = md.Language[0]
	}
	return info
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScriptConverter replaces the OpenCC converter that is otherwise
// built on first use for each book.
func WithScriptConverter(c ScriptConverter) Option {
	return func(e *Extractor) { e.converter = c }
}

// Extractor turns ePub packages into chapters. It holds no per-book state
// and may be reused.
type Extractor struct {
	cfg       Config
	logger    *zap.Logger
	converter ScriptConverter
}

// NewExtractor returns an Extractor for cfg. The configuration is validated
// by Extract, before any document is read.
func NewExtractor(cfg Config, opts ...Option) *Extractor {
	e := &Extractor{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile opens the ePub at path and extracts its chapters.
func (e *Extractor) ExtractFile(ctx context.Context, path, marker string) ([]Chapter, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	book, err := epub.Open(path)
	if err != nil {
		return nil, &PackageError{Op: "open", Path: path, Err: err}
	}
	defer book.Close()
	for _, w := range book.Warnings() {
		e.logger.Warn("epub warning", zap.String("path", path), zap.String("warning", w))
	}
	return e.Extract(ctx, book, marker)
}

// Extract produces the chapters of book in reading order, using marker as
// the paragraph break token.
//
// All documents are loaded and titled, and every footnote is resolved,
// before the first document is turned into text and released. A footnote
// pointing forward in the book therefore always finds its target.
func (e *Extractor) Extract(ctx context.Context, book Book, marker string) ([]Chapter, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := LoadStore(book, e.logger)
	if err != nil {
		return nil, err
	}
	order := store.Order()

	titles := e.titles(store, book, marker)

	if e.cfg.footnotesEnabled() {
		resolver := newFootnoteResolver(store, e.cfg, e.logger)
		for _, id := range order {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			resolver.resolve(store.Get(id))
		}
	}

	var bookLang string
	if md := book.Metadata(); len(md.Language) > 0 {
		bookLang = md.Language[0]
	}
	converter := e.converter
	announced := false

	chapters := make([]Chapter, 0, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := store.Get(id)
		t, ok := titles[id]
		if !ok {
			e.logger.Debug("no title, skipping document", zap.String("href", doc.Href))
			store.Release(id)
			continue
		}

		text, err := e.chapterText(doc, t, marker)
		if err != nil {
			return nil, err
		}

		if lang := e.sourceLanguage(doc, bookLang); NeedsSimplified(lang, e.cfg.VoiceLocale) {
			if converter == nil {
				if converter, err = NewScriptConverter(); err != nil {
					return nil, err
				}
			}
			if !announced {
				e.logger.Info("converting Traditional Chinese to Simplified",
					zap.String("language", lang), zap.String("voice", e.cfg.VoiceLocale))
				announced = true
			}
			if text, err = converter.Convert(text); err != nil {
				return nil, fmt.Errorf("epubtext: convert %s: %w", doc.Href, err)
			}
		}

		store.Release(id)
		chapters = append(chapters, Chapter{
			Title:  t.title,
			Text:   text,
			FileID: id,
			Index:  len(chapters) + 1,
		})
	}
	e.logger.Debug("extraction finished",
		zap.Int("documents", len(order)), zap.Int("chapters", len(chapters)))
	return chapters, nil
}

// titles computes the title of every document according to the title mode.
// Documents without a title are absent from the result.
func (e *Extractor) titles(store *Store, book Book, marker string) map[string]tagTitle {
	mode := e.cfg.titleMode()
	var toc map[string]string
	if mode != TitleTag {
		toc = book.TOCTitles()
	}

	titles := make(map[string]tagTitle)
	for _, id := range store.Order() {
		doc := store.Get(id)
		if mode != TitleTag {
			if title := SanitizeTitle(toc[doc.Href], marker); title != "" {
				titles[id] = tagTitle{title: title}
				continue
			}
			if mode == TitleTOC {
				continue
			}
		}
		if t, ok := extractTitle(doc.tree, marker); ok {
			titles[id] = t
		}
	}
	return titles
}

// chapterText turns a resolved document into normalized text. The heading
// the title came from is not repeated in the body.
func (e *Extractor) chapterText(doc *Document, t tagTitle, marker string) (string, error) {
	if t.heading != nil {
		t.heading.Remove()
	}
	text := plainText(doc.tree)
	if e.cfg.footnotesEnabled() {
		text = stripURLs(text)
	}
	text = neutralizeMarker(text, marker)
	text = norm.NFC.String(text)

	return Normalize(text, e.cfg.NewlineMode, marker)
}

// neutralizeMarker replaces every occurrence of marker in source text with a
// space until none is left. Replacing can leave a new occurrence behind when
// the marker is whitespace.
func neutralizeMarker(text, marker string) string {
	if marker == "" || marker == " " {
		return text
	}
	for strings.Contains(text, marker) {
		text = strings.ReplaceAll(text, marker, " ")
	}
	return text
}

func (e *Extractor) sourceLanguage(doc *Document, bookLang string) string {
	switch {
	case e.cfg.SourceLanguage != "":
		return e.cfg.SourceLanguage
	case doc.Lang != "":
		return doc.Lang
	}
	return bookLang
}
