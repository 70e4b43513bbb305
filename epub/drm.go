package epub

import (
	"encoding/xml"
	"strings"
)

const (
	encryptionPath = "META-INF/encryption.xml"
	// sinfPath only exists in Apple FairPlay protected books.
	sinfPath = "META-INF/sinf.xml"
)

// Font obfuscation is not DRM; the text documents stay readable.
var fontObfuscation = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

type encryptionXML struct {
	XMLName xml.Name `xml:"encryption"`
	Data    []struct {
		Method struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
		KeyInfo struct {
			Inner string `xml:",innerxml"`
		} `xml:"KeyInfo"`
	} `xml:"EncryptedData"`
}

// inspectEncryption classifies META-INF/encryption.xml. It returns
// ErrDRMProtected for anything other than font obfuscation, and reports
// whether obfuscated fonts were seen.
func inspectEncryption(idx archiveIndex) (obfuscatedFonts bool, err error) {
	if idx.lookup(sinfPath) != nil {
		return false, ErrDRMProtected
	}
	f := idx.lookup(encryptionPath)
	if f == nil {
		return false, nil
	}
	data, err := readEntry(f)
	if err != nil {
		return false, err
	}

	var enc encryptionXML
	if err := xml.Unmarshal(stripBOM(data), &enc); err != nil {
		// Unparseable encryption descriptors are treated as protected.
		return false, ErrDRMProtected
	}
	for _, d := range enc.Data {
		if fontObfuscation[strings.TrimSpace(d.Method.Algorithm)] {
			obfuscatedFonts = true
			continue
		}
		// ADEPT, LCP and anything unknown encrypt content documents.
		return false, ErrDRMProtected
	}
	return obfuscatedFonts, nil
}
