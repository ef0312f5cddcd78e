package epubmd

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

const (
	encryptionFilePath = "META-INF/encryption.xml"

	// sinfFilePath indicates Apple FairPlay DRM.
	sinfFilePath = "META-INF/sinf.xml"
)

// Font obfuscation algorithms encrypt embedded fonts only; the text stays readable.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true, // IDPF
	"http://ns.adobe.com/pdf/enc#RC":     true, // Adobe
}

type xmlEncryption struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		EncryptionMethod struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
	} `xml:"EncryptedData"`
}

// checkDRM inspects META-INF/encryption.xml and META-INF/sinf.xml.
//
// Returns:
//   - (false, nil)             – no encryption descriptor, or an empty one
//   - (true,  nil)             – only font obfuscation entries
//   - (false, ErrDRMProtected) – anything else is encrypted
func checkDRM(zr *zip.Reader) (fontObfuscation bool, err error) {
	if findEntry(zr, sinfFilePath) != nil {
		return false, ErrDRMProtected
	}

	f := findEntry(zr, encryptionFilePath)
	if f == nil {
		return false, nil
	}

	data, err := readEntry(f)
	if err != nil {
		return false, err
	}
	data = stripBOM(data)
	if strings.TrimSpace(string(data)) == "" {
		return false, nil
	}

	var enc xmlEncryption
	if err := xml.Unmarshal(data, &enc); err != nil {
		// Unreadable descriptor: assume the worst.
		return false, ErrDRMProtected
	}

	for _, ed := range enc.EncryptedData {
		if !fontObfuscationAlgorithms[ed.EncryptionMethod.Algorithm] {
			return false, ErrDRMProtected
		}
		fontObfuscation = true
	}
	return fontObfuscation, nil
}
