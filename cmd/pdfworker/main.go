// pdfworker is the isolated PDF extraction process. The host writes the
// document base64-encoded to stdin; on success the worker prints
// {"text": "..."} to stdout and exits 0, on failure it prints
// {"error": "..."} to stderr and exits 1.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

type result struct {
	Text string `json:"text"`
}

type failure struct {
	Error string `json:"error"`
}

func main() {
	encoded, err := io.ReadAll(os.Stdin)
	if err != nil {
		fail(fmt.Sprintf("failed to read stdin: %v", err))
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		fail(fmt.Sprintf("failed to decode input: %v", err))
	}

	text, err := extractPDF(data)
	if err != nil {
		fail(err.Error())
	}

	if err := json.NewEncoder(os.Stdout).Encode(result{Text: text}); err != nil {
		fail(fmt.Sprintf("failed to write result: %v", err))
	}
}

func fail(msg string) {
	json.NewEncoder(os.Stderr).Encode(failure{Error: msg})
	os.Exit(1)
}

func extractPDF(data []byte) (string, error) {
	// The library panics on some malformed inputs; that is exactly what
	// this process boundary exists to absorb.
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprintf("pdf parser crashed: %v", r))
		}
	}()

	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extractedText := strings.TrimSpace(textBuilder.String())

	if extractedText == "" {
		return "", fmt.Errorf("no text could be extracted from PDF")
	}

	return extractedText, nil
}
