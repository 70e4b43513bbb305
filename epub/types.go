package epub

// Metadata holds the Dublin Core fields extracted from the OPF file. The
// extraction engine passes them through to downstream collaborators (audio
// tagging) without reprocessing.
type Metadata struct {
	// Version is the ePub specification version (e.g., "2.0", "3.0").
	Version string

	// Titles contains all dc:title values. The first entry is the primary title.
	Titles []string

	// Authors contains all dc:creator entries with their roles and file-as values.
	Authors []Author

	// Language contains all dc:language values (BCP 47 tags, e.g., "en", "zh-TW").
	Language []string

	// Publisher is the first non-empty dc:publisher value.
	Publisher string

	// Description is the first non-empty dc:description value.
	Description string
}

// Author represents a dc:creator entry with optional file-as and role attributes.
type Author struct {
	Name   string
	FileAs string
	Role   string
}

// TOCItem is a single entry in the table of contents.
type TOCItem struct {
	// Title is the display text of the entry.
	Title string

	// Href is the ZIP-internal target, possibly with a fragment
	// (e.g., "OEBPS/chapter01.xhtml#section2").
	Href string

	// Children contains nested entries.
	Children []TOCItem

	// SpineIndex is the index of the spine item Href points into, or -1.
	SpineIndex int
}

// SpineItem is one entry of the OPF spine, i.e. one unit of the linear
// reading order.
type SpineItem struct {
	// IDRef is the idref attribute of the <itemref> element.
	IDRef string

	// Href is the ZIP-internal path of the referenced manifest item. It is
	// empty when the manifest has no item for IDRef.
	Href string

	// MediaType is the MIME type declared by the manifest.
	MediaType string

	// Linear is false for itemrefs marked linear="no".
	Linear bool

	// InManifest reports whether IDRef resolved to a manifest item.
	InManifest bool
}

// IsDocument reports whether the spine item is an (X)HTML content document
// rather than an image, stylesheet or other resource.
func (s SpineItem) IsDocument() bool {
	switch s.MediaType {
	case "application/xhtml+xml", "text/html", "application/xml", "text/xml", "":
		return s.Href != ""
	}
	return false
}

// manifestItem represents an entry in the OPF <manifest> element.
type manifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}
