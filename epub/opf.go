package epub

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfManifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfMetadata struct {
	Titles       []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators     []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages    []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Publishers   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Descriptions []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ description"`
	Metas        []opfMeta      `xml:"meta"`
}

// opfDCElement carries the ePub 2 opf:* attributes directly; ePub 3 moves
// them into <meta refines="#id">.
type opfDCElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	FileAs string `xml:"file-as,attr"`
	Role   string `xml:"role,attr"`
}

type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Value    string `xml:",chardata"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// htmlEntities maps the HTML named entities that show up in real-world OPF
// and NCX files to their code points. encoding/xml only knows the five XML
// entities.
var htmlEntities = map[string]rune{
	"nbsp": 160, "mdash": 8212, "ndash": 8211, "hellip": 8230,
	"lsquo": 8216, "rsquo": 8217, "ldquo": 8220, "rdquo": 8221,
	"copy": 169, "reg": 174, "trade": 8482, "bull": 8226, "middot": 183,
	"eacute": 233, "egrave": 232, "ecirc": 234, "euml": 235,
	"aacute": 225, "agrave": 224, "acirc": 226, "auml": 228,
	"iacute": 237, "igrave": 236, "icirc": 238, "iuml": 239,
	"oacute": 243, "ograve": 242, "ocirc": 244, "ouml": 246,
	"uacute": 250, "ugrave": 249, "ucirc": 251, "uuml": 252,
	"ntilde": 241, "ccedil": 231, "times": 215, "divide": 247,
	"deg": 176, "para": 182, "sect": 167, "laquo": 171, "raquo": 187,
	"iexcl": 161, "iquest": 191,
}

var namedEntityPattern = regexp.MustCompile(`&([A-Za-z]+);`)

// replaceHTMLEntities rewrites known HTML named entities (case-insensitive)
// as numeric character references. Unknown names, including the XML ones,
// are left alone.
func replaceHTMLEntities(data []byte) []byte {
	return namedEntityPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := strings.ToLower(string(m[1 : len(m)-1]))
		if r, ok := htmlEntities[name]; ok {
			return []byte("&#" + strconv.Itoa(int(r)) + ";")
		}
		return m
	})
}

// parseOPF decodes the package document. A missing version defaults to 2.0.
func parseOPF(data []byte) (*opfPackage, error) {
	data = replaceHTMLEntities(stripBOM(data))

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

// manifestIndex builds the id → item lookup for the manifest.
func manifestIndex(pkg *opfPackage) map[string]*manifestItem {
	byID := make(map[string]*manifestItem, len(pkg.Manifest.Items))
	for _, it := range pkg.Manifest.Items {
		byID[it.ID] = &manifestItem{
			ID:         it.ID,
			Href:       it.Href,
			MediaType:  strings.TrimSpace(it.MediaType),
			Properties: it.Properties,
		}
	}
	return byID
}

// buildSpine resolves each itemref against the manifest. Hrefs are turned
// into ZIP-internal paths relative to opfDir. Unresolved itemrefs are kept
// with InManifest=false so callers can decide how fatal that is.
func buildSpine(pkg *opfPackage, manifest map[string]*manifestItem, opfDir string) []SpineItem {
	items := make([]SpineItem, 0, len(pkg.Spine.ItemRefs))
	for _, ref := range pkg.Spine.ItemRefs {
		si := SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no",
		}
		if mi, ok := manifest[ref.IDRef]; ok {
			si.InManifest = true
			si.Href = joinOPFPath(opfDir, mi.Href)
			si.MediaType = mi.MediaType
		}
		items = append(items, si)
	}
	return items
}

// joinOPFPath resolves a manifest href against the OPF directory. Hrefs are
// URLs, so percent-escapes are decoded to match the ZIP entry names; an href
// that does not decode is used as written.
func joinOPFPath(opfDir, href string) string {
	if href == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if opfDir == "." || opfDir == "" {
		return path.Clean(href)
	}
	return path.Join(opfDir, href)
}
