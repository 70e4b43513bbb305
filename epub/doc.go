// Package epub reads the package structure of ePub 2 and ePub 3 files.
//
// It locates the OPF through META-INF/container.xml, decodes the manifest,
// spine and Dublin Core metadata, parses the table of contents (nav document
// or NCX) and rejects DRM-protected archives with [ErrDRMProtected].
//
// The reader does not interpret document content. It hands out the spine in
// reading order together with raw document bytes, which is what the chapter
// extraction engine in the parent package consumes:
//
//	book, err := epub.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer book.Close()
//
//	for _, item := range book.Spine() {
//	    data, _ := book.ReadFile(item.Href)
//	    fmt.Println(item.Href, len(data))
//	}
//
// Lookups into the archive are case-insensitive as a fallback, entries are
// read with a decompression limit, and paths escaping the archive root are
// refused.
package epub
