package epubmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// encryptionXML builds an encryption descriptor with one EncryptedData
// element per algorithm.
func encryptionXML(algorithms ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container"
            xmlns:enc="http://www.w3.org/2001/04/xmlenc#">`)
	for _, alg := range algorithms {
		b.WriteString(`
  <enc:EncryptedData>
    <enc:EncryptionMethod Algorithm="` + alg + `"/>
    <enc:CipherData><enc:CipherReference URI="OEBPS/item"/></enc:CipherData>
  </enc:EncryptedData>`)
	}
	b.WriteString("\n</encryption>")
	return b.String()
}

func TestCheckDRM(t *testing.T) {
	const (
		idpfFonts  = "http://www.idpf.org/2008/embedding"
		adobeFonts = "http://ns.adobe.com/pdf/enc#RC"
		aes128     = "http://www.w3.org/2001/04/xmlenc#aes128-cbc"
	)

	tests := []struct {
		name              string
		files             map[string]string
		wantFontObfuscate bool
		wantErr           error
	}{
		{
			name:  "no encryption.xml",
			files: map[string]string{"chap1.xhtml": "<p>x</p>"},
		},
		{
			name:              "font obfuscation only",
			files:             map[string]string{"META-INF/encryption.xml": encryptionXML(idpfFonts, adobeFonts)},
			wantFontObfuscate: true,
		},
		{
			name:    "content encryption",
			files:   map[string]string{"META-INF/encryption.xml": encryptionXML(aes128)},
			wantErr: ErrDRMProtected,
		},
		{
			name:    "content encryption mixed with fonts",
			files:   map[string]string{"META-INF/encryption.xml": encryptionXML(idpfFonts, aes128)},
			wantErr: ErrDRMProtected,
		},
		{
			name:  "descriptor without entries",
			files: map[string]string{"META-INF/encryption.xml": encryptionXML()},
		},
		{
			name:  "zero-byte descriptor",
			files: map[string]string{"META-INF/encryption.xml": ""},
		},
		{
			name:    "unparseable descriptor",
			files:   map[string]string{"META-INF/encryption.xml": "<encryption><oops"},
			wantErr: ErrDRMProtected,
		},
		{
			name:    "Apple FairPlay sinf",
			files:   map[string]string{"META-INF/sinf.xml": "<sinf/>"},
			wantErr: ErrDRMProtected,
		},
		{
			name:              "case insensitive descriptor path",
			files:             map[string]string{"meta-inf/Encryption.xml": encryptionXML(idpfFonts)},
			wantFontObfuscate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zr := buildTestZip(t, tt.files)
			gotFont, gotErr := checkDRM(zr)

			if gotErr != tt.wantErr {
				t.Errorf("checkDRM() error = %v, want %v", gotErr, tt.wantErr)
			}
			if gotFont != tt.wantFontObfuscate {
				t.Errorf("checkDRM() fontObfuscation = %v, want %v", gotFont, tt.wantFontObfuscate)
			}
		})
	}
}

func TestNewReader_DRMProtected(t *testing.T) {
	data := buildTestZipBytes(t, testEPubEntries(
		zipEntry{"META-INF/encryption.xml", encryptionXML("http://www.w3.org/2001/04/xmlenc#aes256-cbc")},
		zipEntry{"chap1.xhtml", "<p>ciphertext</p>"},
	))

	_, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("NewReader() error = %v, want ErrDRMProtected", err)
	}
}

func TestNewReader_FontObfuscationWarning(t *testing.T) {
	a := buildTestArchive(t,
		zipEntry{"META-INF/encryption.xml", encryptionXML("http://www.idpf.org/2008/embedding")},
		zipEntry{"chap1.xhtml", "<p>text</p>"},
	)
	defer a.Close()

	warnings := a.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "font obfuscation") {
		t.Errorf("Warnings() = %v, want one font obfuscation warning", warnings)
	}
}
