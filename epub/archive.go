package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize caps the decompressed size of a single ZIP entry (zip bomb
// guard). Chapter documents are far below it.
const maxEntrySize int64 = 256 * 1024 * 1024

// archiveIndex resolves ZIP entry names, exact match first and then
// case-insensitively. The first entry wins on duplicate names.
type archiveIndex struct {
	exact map[string]*zip.File
	lower map[string]*zip.File
}

func newArchiveIndex(zr *zip.Reader) archiveIndex {
	idx := archiveIndex{
		exact: make(map[string]*zip.File, len(zr.File)),
		lower: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, ok := idx.exact[f.Name]; !ok {
			idx.exact[f.Name] = f
		}
		key := strings.ToLower(f.Name)
		if _, ok := idx.lower[key]; !ok {
			idx.lower[key] = f
		}
	}
	return idx
}

func (idx archiveIndex) lookup(name string) *zip.File {
	if f, ok := idx.exact[name]; ok {
		return f
	}
	return idx.lower[strings.ToLower(name)]
}

// resolveRelativePath resolves href against the directory of basePath. Both
// are ZIP-internal, slash-separated paths. An empty string is returned when
// the result would be absolute or escape the archive root.
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	cleaned := path.Clean(path.Join(path.Dir(basePath), href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

// isSafePath reports whether p stays inside the archive root.
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	return !strings.HasPrefix(cleaned, "/") && cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// readEntry reads a ZIP entry with the default size limit.
func readEntry(f *zip.File) ([]byte, error) {
	return readEntryLimit(f, maxEntrySize)
}

// readEntryLimit reads a ZIP entry, refusing unsafe names and entries whose
// declared or actual decompressed size exceeds limit.
func readEntryLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epub: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("epub: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// The declared size can be forged; read one byte past the limit to tell.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("epub: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("epub: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}
	return data, nil
}
