package epubtext

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// citationPattern matches anchor text that already reads as a word
// ("Note 1", "注释") instead of a bare marker like "1" or "[2]".
var citationPattern = regexp.MustCompile(`\p{L}{2,}`)

// decorativeRunes are stripped from transplanted note text.
const decorativeRunes = "[]【】〔〕〖〗（）()<>《》「」*＊†‡§¶※#＃^•·◎○●◆◇■□▲△▼▽★☆↩↑⇧"

// NoteFraming is the text spliced around a transplanted footnote.
type NoteFraming struct {
	Prefix string
	Suffix string
}

var (
	framingSimplified  = NoteFraming{Prefix: " （注解：", Suffix: " 回到正文） "}
	framingTraditional = NoteFraming{Prefix: " （註解：", Suffix: " 回到正文） "}
	framingDefault     = NoteFraming{Prefix: " (Note: ", Suffix: " Note End.) "}
)

// FramingFor returns the note framing for a voice locale or voice name.
func FramingFor(voiceLocale string) NoteFraming {
	switch localeScript(voiceLocale) {
	case "Hans":
		return framingSimplified
	case "Hant":
		return framingTraditional
	}
	return framingDefault
}

// footnoteAnchor is a marker element found in a document together with the
// location its href points at.
type footnoteAnchor struct {
	source     *goquery.Selection
	text       string
	targetFile string
	targetID   string
}

// footnoteResolver removes or transplants footnotes across the documents of
// one store.
type footnoteResolver struct {
	store      *Store
	transplant bool
	framing    NoteFraming
	maxAscent  int
	logger     *zap.Logger
}

func newFootnoteResolver(store *Store, cfg Config, logger *zap.Logger) *footnoteResolver {
	return &footnoteResolver{
		store:      store,
		transplant: cfg.FootnoteTransplant,
		framing:    FramingFor(cfg.VoiceLocale),
		maxAscent:  cfg.maxAscent(),
		logger:     logger,
	}
}

// resolve processes every fragment anchor of doc in document order. Anchors
// are collected up front; one whose href was stripped or that was detached
// by an earlier clearing is skipped.
func (r *footnoteResolver) resolve(doc *Document) {
	anchors := doc.tree.Find("a[href]")
	anchors.Each(func(_ int, a *goquery.Selection) {
		if !attached(a.Nodes[0]) {
			return
		}
		anchor, ok := r.anchorFor(doc, a)
		if !ok {
			return
		}
		r.apply(anchor)
	})
}

// anchorFor decides whether a is a footnote marker worth resolving.
func (r *footnoteResolver) anchorFor(doc *Document, a *goquery.Selection) (footnoteAnchor, bool) {
	href, ok := a.Attr("href")
	if !ok {
		return footnoteAnchor{}, false
	}
	file, fragment, found := strings.Cut(href, "#")
	if !found || fragment == "" {
		return footnoteAnchor{}, false
	}
	if u, err := url.Parse(href); err != nil || u.Scheme != "" {
		return footnoteAnchor{}, false
	}

	text := a.Text()
	if citationPattern.MatchString(text) {
		return footnoteAnchor{}, false
	}
	if strings.TrimSpace(text) == "" && a.Find("img, image").Length() == 0 {
		return footnoteAnchor{}, false
	}

	targetFile := doc.FileID
	if file != "" {
		if decoded, err := url.PathUnescape(file); err == nil {
			file = decoded
		}
		targetFile = path.Base(file)
	}
	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}
	return footnoteAnchor{source: a, text: text, targetFile: targetFile, targetID: fragment}, true
}

// apply resolves one anchor. Unresolvable anchors are left untouched.
func (r *footnoteResolver) apply(anchor footnoteAnchor) {
	target, ok := r.locate(anchor)
	if !ok {
		r.logger.Debug("footnote target not found",
			zap.String("file", anchor.targetFile), zap.String("id", anchor.targetID))
		return
	}

	target, ok = r.ascend(anchor, target)
	if !ok {
		r.logger.Debug("footnote target left unresolved",
			zap.String("file", anchor.targetFile), zap.String("id", anchor.targetID))
		return
	}

	// Links inside the note must not be picked up as markers later on.
	target.Find("a[href]").RemoveAttr("href")
	if target.Is("a") {
		target.RemoveAttr("href")
	}

	replacement := ""
	if r.transplant {
		if body := noteBody(target.Text(), anchor.text); containsHan(body) {
			replacement = r.framing.Prefix + body + r.framing.Suffix
		}
	}
	anchor.source.Empty()
	if replacement != "" {
		anchor.source.SetText(replacement)
	}
	target.Empty()
}

// locate finds the single element addressed by the anchor.
func (r *footnoteResolver) locate(anchor footnoteAnchor) (*goquery.Selection, bool) {
	doc := r.store.Get(anchor.targetFile)
	if doc == nil {
		return nil, false
	}
	match := func(attr string) *goquery.Selection {
		return doc.tree.Find("[" + attr + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr(attr)
			return v == anchor.targetID
		})
	}
	target := match("id")
	if target.Length() == 0 {
		// Older books address notes with <a name="...">.
		target = match("name").Filter("a")
	}
	if target.Length() != 1 {
		return nil, false
	}
	return target, true
}

// ascend climbs from a target whose text is only the marker itself (the
// anchor reflected back) to the first ancestor carrying more. The climb
// never goes above the body, so the body itself can become the target. A
// climb longer than maxAscent, or a target that contains the anchor, is
// reported as unresolved.
func (r *footnoteResolver) ascend(anchor footnoteAnchor, target *goquery.Selection) (*goquery.Selection, bool) {
	marker := strings.TrimSpace(anchor.text)
	for depth := 0; strings.TrimSpace(target.Text()) == marker; depth++ {
		if depth >= r.maxAscent {
			return nil, false
		}
		parent := target.Parent()
		if parent.Length() == 0 || isTreeRoot(parent.Nodes[0]) {
			break
		}
		target = parent
	}
	if target.Nodes[0] == anchor.source.Nodes[0] || target.Contains(anchor.source.Nodes[0]) {
		return nil, false
	}
	return target, true
}

// noteBody removes the leading marker and decorative symbols from a note's
// text. Only a leading marker is removed so that numbers inside the note
// survive.
func noteBody(text, marker string) string {
	body := strings.TrimSpace(text)
	marker = strings.TrimSpace(marker)
	if marker != "" && strings.HasPrefix(body, marker) {
		body = body[len(marker):]
	} else if core := strings.Trim(marker, decorativeRunes+" "); core != "" {
		if lead := strings.TrimLeft(body, decorativeRunes+" "); strings.HasPrefix(lead, core) {
			body = lead[len(core):]
		}
	}
	body = strings.Map(func(r rune) rune {
		if strings.ContainsRune(decorativeRunes, r) {
			return -1
		}
		return r
	}, body)
	return strings.TrimSpace(body)
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// attached reports whether n still hangs off a document node.
func attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

func isTreeRoot(n *html.Node) bool {
	return n.Type == html.DocumentNode || (n.Type == html.ElementNode && n.DataAtom == atom.Html)
}
