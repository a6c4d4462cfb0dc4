// Package extract turns uploaded report files into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat means the file type cannot be handled at all.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtractionFailed means a supported file yielded no usable text.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Text extracts plain text from an uploaded report. PDF and plain-text
// files are supported. The caller supplies the sniffed MIME type.
func Text(mimeType string, r io.Reader) (string, error) {
	switch normalizeMime(mimeType) {
	case "application/pdf":
		return pdfText(r)
	case "text/plain":
		return plainText(r)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
}

func normalizeMime(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	switch m {
	case "application/x-pdf":
		return "application/pdf"
	case "text/plain", "text/plain; charset=utf-8":
		return "text/plain"
	}
	return m
}

func plainText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read: %v", ErrExtractionFailed, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: file contains no text", ErrExtractionFailed)
	}
	return text, nil
}

func pdfText(r io.Reader) (string, error) {
	// The PDF reader needs random access, so buffer the whole file.
	// Uploads are size-capped at the handler.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read: %v", ErrExtractionFailed, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parse pdf: %v", ErrExtractionFailed, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the report.
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: pdf contains no extractable text", ErrExtractionFailed)
	}
	return text, nil
}
