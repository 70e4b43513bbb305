package epubtext

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simp-lee/epubtext/epub"
)

const testMarker = " @BRK#"

// fakeBook is an in-memory Book. Documents live under OEBPS/.
type fakeBook struct {
	spine    []epub.SpineItem
	files    map[string]string
	metadata epub.Metadata
	toc      map[string]string
	reads    int
}

type fakeDoc struct {
	name string
	body string
}

func newFakeBook(docs ...fakeDoc) *fakeBook {
	b := &fakeBook{files: make(map[string]string), toc: make(map[string]string)}
	for i, d := range docs {
		href := "OEBPS/" + d.name
		b.spine = append(b.spine, epub.SpineItem{
			IDRef:      fmt.Sprintf("item%d", i+1),
			Href:       href,
			MediaType:  "application/xhtml+xml",
			Linear:     true,
			InManifest: true,
		})
		b.files[href] = d.body
	}
	return b
}

func (b *fakeBook) Spine() []epub.SpineItem { return b.spine }

func (b *fakeBook) ReadFile(name string) ([]byte, error) {
	b.reads++
	data, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, epub.ErrFileNotFound)
	}
	return []byte(data), nil
}

func (b *fakeBook) Metadata() epub.Metadata { return b.metadata }

func (b *fakeBook) TOCTitles() map[string]string { return b.toc }

// xhtml wraps body markup in a minimal XHTML document.
func xhtml(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head><body>` + body + `</body></html>`
}

func loadTestStore(t *testing.T, book Book) *Store {
	t.Helper()
	store, err := LoadStore(book, nil)
	require.NoError(t, err)
	return store
}

// docText returns the current body text of a stored document.
func docText(t *testing.T, store *Store, fileID string) string {
	t.Helper()
	doc := store.Get(fileID)
	require.NotNil(t, doc, fileID)
	return plainText(doc.tree)
}

// writeTestEPub writes an ePub 2 file holding docs in spine order and returns
// its path. toc maps document names to NCX labels.
// escapeHref percent-encodes a file name the way packaging tools write
// manifest hrefs.
func escapeHref(name string) string {
	return (&url.URL{Path: name}).EscapedPath()
}

func writeTestEPub(t *testing.T, lang string, toc map[string]string, docs ...fakeDoc) string {
	t.Helper()
	var manifest, spine, points strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&manifest, `<item id="d%d" href="%s" media-type="application/xhtml+xml"/>`, i, escapeHref(d.name))
		fmt.Fprintf(&spine, `<itemref idref="d%d"/>`, i)
	}
	names := make([]string, 0, len(toc))
	for name := range toc {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		fmt.Fprintf(&points, `<navPoint id="p%d"><navLabel><text>%s</text></navLabel><content src="%s"/></navPoint>`,
			i, toc[name], escapeHref(name))
	}

	files := map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
<rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Test Book</dc:title><dc:creator>Jane Doe</dc:creator><dc:language>` + lang + `</dc:language>
</metadata>
<manifest><item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + manifest.String() + `</manifest>
<spine toc="ncx">` + spine.String() + `</spine>
</package>`,
		"OEBPS/toc.ncx": `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>` + points.String() + `</navMap></ncx>`,
	}
	for _, d := range docs {
		files["OEBPS/"+d.name] = d.body
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte(files["mimetype"]))
	require.NoError(t, err)
	delete(files, "mimetype")

	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w, err := zw.Create(k)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[k]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "book.epub")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
