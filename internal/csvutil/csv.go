// Package csvutil parses the comma delimited, double-quote escaped
// files accepted by the bulk endpoints. Header cells are normalized
// (lowercased, whitespace removed) so callers can look up columns
// regardless of how the merchant typed them.
package csvutil

import (
	"errors"
	"strings"
)

var ErrEmptyCSV = errors.New("CSV file is empty or missing header row")

// Row maps a normalized header to the trimmed cell value. Missing
// trailing cells are present with an empty value.
type Row map[string]string

// Parse splits raw CSV text into rows in file order. No type coercion
// or deduplication happens here; that is the caller's job.
func Parse(raw string) ([]Row, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		return nil, ErrEmptyCSV
	}

	headers := parseLine(lines[0])
	for i, h := range headers {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := parseLine(line)
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// NormalizeHeader lowercases a header cell and strips all whitespace.
func NormalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		switch r {
		case ' ', '\t', '\r', '\n':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseLine scans one line with an inside-quotes flag so commas can
// appear inside quoted fields. A doubled quote inside a quoted field
// is a literal quote.
func parseLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(strings.TrimRight(line, "\r"))
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case char == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}

	result = append(result, strings.TrimSpace(current.String()))
	return result
}
