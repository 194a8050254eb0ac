package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/msanjurjo/fundlens/internal/models"
)

// Portfolio CSV rows are isin;name;value. Two dialects circulate: the
// European export ("ISIN;Nombre;Valor", '.' thousands and ',' decimal) and
// the plain-float export ("isin;name;value"). The header label of the value
// column is the only reliable dialect marker, so parsing sniffs it there.

const (
	csvHeaderPlain    = "value"
	csvHeaderEuropean = "valor"
)

// ParsePositionsCSV parses a portfolio CSV in either dialect into positions.
func ParsePositionsCSV(r io.Reader) ([]models.CSVPosition, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("expected 3 columns (isin;name;value), got %d", len(header))
	}

	var european bool
	switch strings.ToLower(strings.TrimSpace(header[2])) {
	case csvHeaderEuropean:
		european = true
	case csvHeaderPlain:
		european = false
	default:
		return nil, fmt.Errorf("unrecognized value column label %q", header[2])
	}

	var positions []models.CSVPosition
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		// An empty ISIN is a bad row, not a bad file: it parses through
		// and the importer skips it with a warning.
		isin := strings.ToUpper(strings.TrimSpace(record[0]))

		valueStr := strings.TrimSpace(record[2])
		var value float64
		if european {
			value, err = parseEuropeanDecimal(valueStr)
		} else {
			value, err = strconv.ParseFloat(valueStr, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid value %q", rowNum, valueStr)
		}

		positions = append(positions, models.CSVPosition{
			ISIN:  isin,
			Name:  strings.TrimSpace(record[1]),
			Value: value,
		})
	}

	return positions, nil
}

// WritePositionsCSV writes positions in the requested dialect.
func WritePositionsCSV(w io.Writer, positions []models.CSVPosition, european bool) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	header := []string{"isin", "name", "value"}
	if european {
		header = []string{"ISIN", "Nombre", "Valor"}
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range positions {
		value := strconv.FormatFloat(p.Value, 'f', 2, 64)
		if european {
			value = strings.ReplaceAll(value, ".", ",")
		}
		if err := writer.Write([]string{p.ISIN, p.Name, value}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// parseEuropeanDecimal parses "1.234,56" style numbers: '.' is a thousands
// separator, ',' the decimal mark.
func parseEuropeanDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
