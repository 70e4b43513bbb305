package epub

import (
	"strings"
	"testing"
)

const testOPF3 = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Caf&eacute; Stories</dc:title>
    <dc:creator id="c1">Lu Xun</dc:creator>
    <meta refines="#c1" property="file-as">Lu, Xun</meta>
    <meta refines="#c1" property="role">aut</meta>
    <dc:language>zh-Hant</dc:language>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="c1"/></spine>
</package>`

func TestParseOPF_V3(t *testing.T) {
	pkg, err := parseOPF([]byte(testOPF3))
	if err != nil {
		t.Fatalf("parseOPF() error = %v", err)
	}
	if pkg.Version != "3.0" {
		t.Errorf("Version = %q, want 3.0", pkg.Version)
	}

	md := extractMetadata(pkg)
	if md.Titles[0] != "Café Stories" {
		t.Errorf("Titles[0] = %q", md.Titles[0])
	}
	if a := md.Authors[0]; a.FileAs != "Lu, Xun" || a.Role != "aut" {
		t.Errorf("refined author = %+v", a)
	}
}

func TestParseOPF_VersionDefault(t *testing.T) {
	pkg, err := parseOPF([]byte(`<package><manifest/><spine/></package>`))
	if err != nil {
		t.Fatalf("parseOPF() error = %v", err)
	}
	if pkg.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", pkg.Version)
	}
}

func TestParseOPF_InvalidXML(t *testing.T) {
	_, err := parseOPF([]byte(`<package><manifest>`))
	if err == nil || !strings.Contains(err.Error(), "parse OPF") {
		t.Fatalf("parseOPF() error = %v, want parse OPF error", err)
	}
}

func TestReplaceHTMLEntities(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello&nbsp;World", "Hello&#160;World"},
		{"&LDQUO;quoted&rdquo;", "&#8220;quoted&#8221;"},
		{"&amp; &lt; &gt; &quot; &apos;", "&amp; &lt; &gt; &quot; &apos;"},
		{"&unknown;", "&unknown;"},
	}
	for _, tt := range tests {
		if got := string(replaceHTMLEntities([]byte(tt.in))); got != tt.want {
			t.Errorf("replaceHTMLEntities(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinOPFPath(t *testing.T) {
	tests := []struct {
		dir, href, want string
	}{
		{"OEBPS", "text/a.xhtml", "OEBPS/text/a.xhtml"},
		{".", "a.xhtml", "a.xhtml"},
		{"OEBPS/text", "../a.xhtml", "OEBPS/a.xhtml"},
		{"OEBPS", "", ""},
		{"OEBPS", "text/%E6%AD%A3%20%E6%96%87.xhtml", "OEBPS/text/正 文.xhtml"},
		{"OEBPS", "100%.xhtml", "OEBPS/100%.xhtml"},
	}
	for _, tt := range tests {
		if got := joinOPFPath(tt.dir, tt.href); got != tt.want {
			t.Errorf("joinOPFPath(%q, %q) = %q, want %q", tt.dir, tt.href, got, tt.want)
		}
	}
}
