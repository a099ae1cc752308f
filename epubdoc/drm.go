package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
)

// ErrDRMProtected is returned for books whose content documents are
// encrypted. Font obfuscation alone does not count as DRM.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")

// encryptionXML mirrors META-INF/encryption.xml.
type encryptionXML struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		EncryptionMethod struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
		CipherData struct {
			CipherReference struct {
				URI string `xml:"URI,attr"`
			} `xml:"CipherReference"`
		} `xml:"CipherData"`
	} `xml:"EncryptedData"`
}

// checkDRM rejects archives with encrypted content documents.
func checkDRM(zr *zip.Reader) error {
	for _, f := range zr.File {
		switch f.Name {
		case "META-INF/rights.xml":
			// Adobe ADEPT marker.
			return ErrDRMProtected
		case "META-INF/encryption.xml":
			data, err := readZipFile(zr, f.Name)
			if err != nil {
				return ErrDRMProtected
			}
			var enc encryptionXML
			if err := xml.Unmarshal(data, &enc); err != nil {
				return ErrDRMProtected
			}
			for _, ed := range enc.EncryptedData {
				if isFontObfuscation(ed.EncryptionMethod.Algorithm) {
					continue
				}
				if isContentURI(ed.CipherData.CipherReference.URI) {
					return ErrDRMProtected
				}
			}
		}
	}
	return nil
}

func isFontObfuscation(algorithm string) bool {
	return strings.Contains(algorithm, "obfuscation") &&
		(strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org"))
}

func isContentURI(uri string) bool {
	uri = strings.ToLower(uri)
	for _, suffix := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, suffix) {
			return true
		}
	}
	return false
}
