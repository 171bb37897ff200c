package output

import (
	"bytes"
	"fmt"
	"strings"
)

// PlainFormatter writes one line per row with fields separated by single
// spaces, for piping into other tools. Headers and titles are omitted.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	for _, s := range sections(r, false) {
		for _, row := range s.rows {
			fmt.Fprintln(w, strings.Join(row, " "))
		}
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
