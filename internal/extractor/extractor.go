// Package extractor turns uploaded document bytes into plain UTF-8 text.
//
// Three strategies sit behind one entry point: plain text is decoded
// in-process, DOCX is unpacked in-process, and PDF is handed to an isolated
// worker process so a crashing or hanging parser cannot take the host down
// with it.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

// Extractor dispatches extraction by declared MIME type.
type Extractor struct {
	pdf *WorkerExtractor
}

func New(pdf *WorkerExtractor) *Extractor {
	return &Extractor{pdf: pdf}
}

// Extract returns the text content of data, or an error if the format is
// unsupported or the document cannot be parsed.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	switch NormalizeContentType(contentType) {
	case MimeTXT:
		return ExtractTXT(data)
	case MimeDOCX:
		return ExtractDOCX(data)
	case MimePDF:
		return e.pdf.Extract(ctx, data)
	default:
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
}

// DetermineContentType resolves a MIME type from the filename extension,
// falling back to the multipart header value browsers supply.
func DetermineContentType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeTXT
	}
	return headerContentType
}

// IsSupportedContentType reports whether the pipeline accepts this MIME type.
func IsSupportedContentType(contentType string) bool {
	switch NormalizeContentType(contentType) {
	case MimePDF, MimeDOCX, MimeTXT:
		return true
	}
	return false
}

// NormalizeContentType collapses the MIME variants browsers send for the
// three supported formats onto their canonical types.
func NormalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.wordprocessingml",
		"application/docx",
		"application/x-docx":
		return MimeDOCX
	case "text/plain", "text/txt", "application/txt", "application/x-txt":
		return MimeTXT
	case "application/pdf", "application/x-pdf":
		return MimePDF
	}

	return ct
}
