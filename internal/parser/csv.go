package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dmallory42/semchunk/internal/doctree"
)

// CSVParser handles CSV files.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := doctree.NewRoot()
	if len(records) == 0 {
		return root, nil
	}

	// First row is headers.
	headers := records[0]

	// Group rows into batches of 20 for manageable sections.
	const batchSize = 20
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += batchSize {
		end := i + batchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		section := root.AddChild(&doctree.Node{
			Kind:  doctree.KindHeader,
			Level: 1,
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, skip header
		})
		section.AddChild(&doctree.Node{
			Kind:  doctree.KindContent,
			Level: 1,
			Text:  strings.TrimSpace(text.String()),
		})
	}

	return root, nil
}
