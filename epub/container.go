package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// containerPath is the well-known location of container.xml.
const containerPath = "META-INF/container.xml"

// opfMediaType is the media type a rootfile must carry to be preferred.
const opfMediaType = "application/oebps-package+xml"

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// locateOPF returns the ZIP path of the package document. container.xml is
// authoritative; archives without one fall back to the first *.opf entry.
func locateOPF(zr *zip.Reader, idx archiveIndex) (string, error) {
	f := idx.lookup(containerPath)
	if f == nil {
		for _, zf := range zr.File {
			if strings.HasSuffix(strings.ToLower(zf.Name), ".opf") {
				return zf.Name, nil
			}
		}
		return "", fmt.Errorf("epub: no OPF file found in archive: %w", ErrInvalidEPub)
	}

	data, err := readEntry(f)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}

	// Prefer the rootfile declaring the OPF media type, otherwise take the
	// first one with a usable path.
	var first string
	for _, rf := range c.RootFiles {
		p := strings.TrimSpace(rf.FullPath)
		if p == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), opfMediaType) {
			return p, nil
		}
		if first == "" {
			first = p
		}
	}
	if first == "" {
		return "", fmt.Errorf("epub: container.xml has no usable rootfile: %w", ErrInvalidEPub)
	}
	return first, nil
}
