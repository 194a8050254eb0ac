package handlers

import (
	"math"
	"strings"
	"testing"

	"github.com/msanjurjo/fundlens/internal/models"
)

func TestParsePositionsCSVPlainDialect(t *testing.T) {
	input := "isin;name;value\n" +
		"US0378331005;Apple Fund;1234.56\n" +
		"ie00b4l5y983;iShares Core MSCI World;987.1\n"

	positions, err := ParsePositionsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].ISIN != "US0378331005" || positions[0].Value != 1234.56 {
		t.Errorf("unexpected first position: %+v", positions[0])
	}
	if positions[1].ISIN != "IE00B4L5Y983" {
		t.Errorf("ISINs must be upper-cased, got %q", positions[1].ISIN)
	}
}

func TestParsePositionsCSVEuropeanDialect(t *testing.T) {
	input := "ISIN;Nombre;Valor\n" +
		"ES0000000001;Fondo Global;1.234,56\n" +
		"ES0000000002;Fondo Renta Fija;987,10\n"

	positions, err := ParsePositionsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if math.Abs(positions[0].Value-1234.56) > 1e-9 {
		t.Errorf("expected 1234.56 from '1.234,56', got %.4f", positions[0].Value)
	}
	if math.Abs(positions[1].Value-987.10) > 1e-9 {
		t.Errorf("expected 987.10 from '987,10', got %.4f", positions[1].Value)
	}
}

func TestParsePositionsCSVUnknownHeader(t *testing.T) {
	input := "isin;name;amount\nUS0378331005;Apple Fund;100\n"
	if _, err := ParsePositionsCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for an unrecognized value column label")
	}
}

func TestParsePositionsCSVBadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad value", "isin;name;value\nUS0378331005;Apple Fund;not-a-number\n"},
		{"too few columns", "isin;name\nUS0378331005;Apple Fund\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePositionsCSV(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestParsePositionsCSVEmptyISINRowParsesThrough(t *testing.T) {
	// A missing ISIN only invalidates that row; the importer skips it with
	// a warning instead of the whole file failing.
	input := "isin;name;value\n;Nameless;100\nUS0378331005;Apple Fund;50\n"

	positions, err := ParsePositionsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].ISIN != "" {
		t.Errorf("expected empty ISIN preserved, got %q", positions[0].ISIN)
	}
}

func TestWritePositionsCSVBothDialects(t *testing.T) {
	positions := parsedFixture(t, "isin;name;value\nUS0378331005;Apple Fund;1234.56\n")

	var plain strings.Builder
	if err := WritePositionsCSV(&plain, positions, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plain.String(); got != "isin;name;value\nUS0378331005;Apple Fund;1234.56\n" {
		t.Errorf("unexpected plain output:\n%s", got)
	}

	var european strings.Builder
	if err := WritePositionsCSV(&european, positions, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := european.String(); got != "ISIN;Nombre;Valor\nUS0378331005;Apple Fund;1234,56\n" {
		t.Errorf("unexpected European output:\n%s", got)
	}
}

func TestCSVRoundTripAcrossDialects(t *testing.T) {
	positions := parsedFixture(t,
		"ISIN;Nombre;Valor\nES0000000001;Fondo Global;1.234,56\n")

	var out strings.Builder
	if err := WritePositionsCSV(&out, positions, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reparsed, err := ParsePositionsCSV(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(reparsed[0].Value-1234.56) > 1e-9 {
		t.Errorf("value changed across dialects: %.4f", reparsed[0].Value)
	}
}

func parsedFixture(t *testing.T, input string) []models.CSVPosition {
	t.Helper()
	positions, err := ParsePositionsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("fixture parse failed: %v", err)
	}
	return positions
}
