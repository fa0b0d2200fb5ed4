package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// documentXML mirrors the paragraph/run/text nesting of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// extractDOCX opens the DOCX zip container and joins the text runs of
// word/document.xml, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", domain.ErrUnsupportedFormat, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %v", domain.ErrUnsupportedFormat, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %v", domain.ErrUnsupportedFormat, err)
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("%w: parse document.xml: %v", domain.ErrUnsupportedFormat, err)
		}

		var b strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				b.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, t := range run.Text {
					b.WriteString(t.Content)
				}
			}
		}
		return b.String(), nil
	}

	return "", fmt.Errorf("%w: docx has no word/document.xml", domain.ErrUnsupportedFormat)
}
