package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(doc.String())); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, "First paragraph", "Second paragraph")

	text, err := ExtractDOCX(data)
	if err != nil {
		t.Fatalf("ExtractDOCX returned error: %v", err)
	}

	want := "First paragraph\nSecond paragraph"
	if text != want {
		t.Errorf("ExtractDOCX = %q, want %q", text, want)
	}
}

func TestExtractDOCXNotAZip(t *testing.T) {
	if _, err := ExtractDOCX([]byte("definitely not a zip")); err == nil {
		t.Errorf("ExtractDOCX accepted non-zip input")
	}
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/styles.xml")
	f.Write([]byte("<styles/>"))
	zw.Close()

	if _, err := ExtractDOCX(buf.Bytes()); err == nil {
		t.Errorf("ExtractDOCX accepted archive without document.xml")
	}
}

func TestExtractTXT(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain utf8", []byte("hello world"), "hello world"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("with bom")...), "with bom"},
		{"crlf normalised", []byte("line one\r\nline two\r\n"), "line one\nline two"},
		{"blank lines dropped", []byte("a\n\n\n b \n"), "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTXT(tt.input)
			if err != nil {
				t.Fatalf("ExtractTXT returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractTXT = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTXTEmpty(t *testing.T) {
	if _, err := ExtractTXT(nil); err == nil {
		t.Errorf("ExtractTXT accepted empty input")
	}
}

func TestExtractTXTWhitespaceOnly(t *testing.T) {
	got, err := ExtractTXT([]byte("   \n\t\n  "))
	if err != nil {
		t.Fatalf("ExtractTXT returned error: %v", err)
	}
	if got != "" {
		t.Errorf("ExtractTXT = %q, want empty string", got)
	}
}

func TestExtractDispatchUnsupported(t *testing.T) {
	e := New(nil)
	if _, err := e.Extract(context.Background(), []byte("data"), "image/png"); err == nil {
		t.Errorf("Extract accepted unsupported content type")
	}
}

func TestExtractDispatchTXT(t *testing.T) {
	e := New(nil)
	got, err := e.Extract(context.Background(), []byte("some text"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != "some text" {
		t.Errorf("Extract = %q, want %q", got, "some text")
	}
}

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"application/pdf", MimePDF},
		{"application/x-pdf", MimePDF},
		{"application/docx", MimeDOCX},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml", MimeDOCX},
		{"text/plain; charset=utf-8", MimeTXT},
		{"application/txt", MimeTXT},
		{"image/png", "image/png"},
	}

	for _, tt := range tests {
		if got := NormalizeContentType(tt.input); got != tt.want {
			t.Errorf("NormalizeContentType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDetermineContentType(t *testing.T) {
	if got := DetermineContentType("essay.pdf", "application/octet-stream"); got != MimePDF {
		t.Errorf("DetermineContentType by extension = %q, want %q", got, MimePDF)
	}
	if got := DetermineContentType("notes", "text/plain"); got != "text/plain" {
		t.Errorf("DetermineContentType fallback = %q, want header value", got)
	}
}

func TestIsSupportedContentType(t *testing.T) {
	for _, ct := range []string{MimePDF, MimeDOCX, MimeTXT, "application/docx"} {
		if !IsSupportedContentType(ct) {
			t.Errorf("IsSupportedContentType(%q) = false, want true", ct)
		}
	}
	if IsSupportedContentType("application/msword") {
		t.Errorf("IsSupportedContentType accepted legacy .doc type")
	}
}
