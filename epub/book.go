package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
)

// expectedMimetype is the required content of the "mimetype" entry.
const expectedMimetype = "application/epub+zip"

// Book is an opened ePub package. Use Open or NewReader to create one.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	zip      *zip.Reader
	index    archiveIndex
	closer   io.Closer // non-nil only when created via Open
	opfPath  string
	opfDir   string
	pkg      *opfPackage
	manifest map[string]*manifestItem
	spine    []SpineItem
	metadata Metadata
	toc      []TOCItem
	warnings []string
}

// Open opens the ePub file at path. The caller must Close the Book.
func Open(path string) (*Book, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", path, err)
	}
	b, err := newBook(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return b, nil
}

// NewReader reads an ePub from r. The caller owns r; Close only releases
// internal state.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", err)
	}
	return newBook(zr, nil)
}

func newBook(zr *zip.Reader, closer io.Closer) (*Book, error) {
	b := &Book{
		zip:    zr,
		index:  newArchiveIndex(zr),
		closer: closer,
	}
	b.checkMimetype()

	opfPath, err := locateOPF(zr, b.index)
	if err != nil {
		return nil, err
	}
	b.opfPath = opfPath
	b.opfDir = path.Dir(opfPath)

	obfuscated, err := inspectEncryption(b.index)
	if err != nil {
		return nil, err
	}
	if obfuscated {
		b.warnf("font obfuscation detected; obfuscated fonts may not render correctly")
	}

	data, err := b.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read OPF %s: %w", opfPath, ErrInvalidEPub)
	}
	pkg, err := parseOPF(data)
	if err != nil {
		return nil, err
	}
	b.pkg = pkg
	b.manifest = manifestIndex(pkg)
	b.spine = buildSpine(pkg, b.manifest, b.opfDir)
	b.metadata = extractMetadata(pkg)
	b.loadTOC()

	return b, nil
}

// checkMimetype records a warning when the first entry is not a
// "mimetype" file holding application/epub+zip. Many readers accept such
// books, so it is not fatal.
func (b *Book) checkMimetype() {
	if len(b.zip.File) == 0 {
		b.warnf("empty ZIP archive; mimetype entry missing")
		return
	}
	first := b.zip.File[0]
	if first.Name != "mimetype" {
		b.warnf("first ZIP entry is not %q", "mimetype")
		return
	}
	data, err := readEntry(first)
	if err != nil {
		b.warnf("cannot read mimetype entry: %v", err)
		return
	}
	if string(data) != expectedMimetype {
		b.warnf("unexpected mimetype: %q", string(data))
	}
}

func (b *Book) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// Close releases the underlying file when the Book came from Open. It is
// idempotent.
func (b *Book) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// ReadFile returns the bytes of a ZIP entry with any UTF-8 BOM removed.
// Lookup falls back to a case-insensitive match.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f := b.index.lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}
	data, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	return stripBOM(data), nil
}

// Spine returns the reading order, including itemrefs that did not resolve
// against the manifest.
func (b *Book) Spine() []SpineItem {
	return append([]SpineItem(nil), b.spine...)
}

// Metadata returns the Dublin Core metadata.
func (b *Book) Metadata() Metadata {
	return copyMetadata(b.metadata)
}

// TOC returns the table of contents tree.
func (b *Book) TOC() []TOCItem {
	return copyTOCItems(b.toc)
}

// Warnings returns the non-fatal problems met while opening the book.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

func copyTOCItems(in []TOCItem) []TOCItem {
	if in == nil {
		return nil
	}
	out := make([]TOCItem, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Children = copyTOCItems(in[i].Children)
	}
	return out
}
