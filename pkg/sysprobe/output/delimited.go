package output

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// TSVFormatter formats each section as tab-separated values with a
// header row. Sections are separated by a blank line.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Report) error {
	for i, s := range sections(r, false) {
		if i > 0 {
			w.WriteString("\n")
		}
		w.WriteString(strings.Join(s.header, "\t"))
		w.WriteString("\n")
		for _, row := range s.rows {
			w.WriteString(strings.Join(row, "\t"))
			w.WriteString("\n")
		}
	}
	return nil
}

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
}

var _ Formatter = (*TSVFormatter)(nil)

// CSVFormatter formats each section as RFC 4180 comma-separated values.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Report) error {
	for i, s := range sections(r, false) {
		if i > 0 {
			w.WriteString("\n")
		}
		writer := csv.NewWriter(w)
		if err := writer.Write(s.header); err != nil {
			return err
		}
		if err := writer.WriteAll(s.rows); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

var _ Formatter = (*CSVFormatter)(nil)
