package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

const rowDelimiter = " | "

// oleMagic is the compound-file header of legacy BIFF .xls files.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// zipMagic is the header of any OOXML container.
var zipMagic = []byte{0x50, 0x4B}

// extractXLSX serializes a workbook sheet-by-sheet: a boundary line per
// sheet, then one delimited line per row.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: open workbook: %v", domain.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	var b strings.Builder
	hasRows := false
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("%w: read sheet %s: %v", domain.ErrUnsupportedFormat, sheet, err)
		}

		b.WriteString(sheetHeader(sheet))
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, rowDelimiter))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
			hasRows = true
		}
	}
	if !hasRows {
		// Boundary lines alone carry no content; let Parse flag it empty.
		return "", nil
	}
	return b.String(), nil
}

// extractLegacyExcel handles the application/vnd.ms-excel declared type,
// which browsers attach to three different byte layouts: real OOXML
// workbooks, CSV exports, and true legacy BIFF files. The first two are
// parsed by sniffing the header; BIFF is rejected.
func extractLegacyExcel(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return extractXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return "", fmt.Errorf("%w: legacy binary .xls is not supported, re-save as .xlsx or .csv",
			domain.ErrUnsupportedFormat)
	default:
		return extractCSV(data)
	}
}

// extractCSV serializes a CSV file as a single sheet.
func extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var b strings.Builder
	b.WriteString(sheetHeader("CSV"))
	b.WriteString("\n")
	hasRows := false

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse csv: %v", domain.ErrUnsupportedFormat, err)
		}
		line := strings.TrimSpace(strings.Join(record, rowDelimiter))
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
		hasRows = true
	}
	if !hasRows {
		return "", nil
	}
	return b.String(), nil
}
