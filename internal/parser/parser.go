// Package parser extracts plain text from raw document bytes based on the
// declared media type. Spreadsheets are serialized sheet-by-sheet with
// domain.SheetMarker boundary lines so the chunker can segment them per row.
package parser

import (
	"fmt"
	"strings"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// Declared media types accepted by Parse.
const (
	MediaPDF  = "application/pdf"
	MediaDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaXLS  = "application/vnd.ms-excel"
	MediaCSV  = "text/csv"
	MediaText = "text/plain"
)

// Supported reports whether the declared media type has an extractor.
func Supported(mediaType string) bool {
	switch normalize(mediaType) {
	case MediaPDF, MediaDOCX, MediaXLSX, MediaXLS, MediaCSV:
		return true
	}
	return strings.HasPrefix(normalize(mediaType), "text/")
}

// Parse extracts text from data according to the declared media type.
// Returns domain.ErrUnsupportedFormat for unknown types and
// domain.ErrEmptyContent when extraction yields only whitespace (image-only
// scans, empty sheets).
func Parse(data []byte, mediaType string) (string, error) {
	var (
		text string
		err  error
	)

	switch mt := normalize(mediaType); {
	case mt == MediaPDF:
		text, err = extractPDF(data)
	case mt == MediaDOCX:
		text, err = extractDOCX(data)
	case mt == MediaXLSX:
		text, err = extractXLSX(data)
	case mt == MediaXLS:
		text, err = extractLegacyExcel(data)
	case mt == MediaCSV:
		text, err = extractCSV(data)
	case strings.HasPrefix(mt, "text/"):
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mediaType)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}

// normalize strips parameters like "; charset=utf-8" from a declared type.
func normalize(mediaType string) string {
	mt, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// sheetHeader renders the boundary line emitted before each sheet's rows.
func sheetHeader(name string) string {
	return domain.SheetMarker + name + " ==="
}
