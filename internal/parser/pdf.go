package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// extractPDF pulls the text layer out of a PDF. A structurally broken file is
// a validation failure, not a provider error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrUnsupportedFormat, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrEmptyContent, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrEmptyContent, err)
	}
	return buf.String(), nil
}
