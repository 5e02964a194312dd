package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVEngine renders CSV files. Rows are grouped into fixed-size pages,
// each page repeating the header row for context.
type CSVEngine struct{}

// rowsPerPage keeps one page of a wide spreadsheet readable.
const rowsPerPage = 20

func (e *CSVEngine) Open(name string, data []byte) (Document, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := strings.TrimSuffix(name, ".csv")
	if len(records) == 0 {
		return newTextDocument(title, nil, []string{""}), nil
	}

	headers := records[0]
	dataRows := records[1:]

	var pages []string
	for i := 0; i < len(dataRows) || i == 0; i += rowsPerPage {
		end := i + rowsPerPage
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range dataRows[i:end] {
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
		pages = append(pages, text.String())

		if len(dataRows) == 0 {
			break
		}
	}

	return newTextDocument(title, nil, pages), nil
}
