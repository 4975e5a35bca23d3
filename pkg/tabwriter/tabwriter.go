// Package tabwriter renders aligned tables with an upper-cased header row.
package tabwriter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const (
	minWidth = 6
	tabWidth = 4
	padding  = 3
	padChar  = ' '
)

type Writer struct {
	out    io.Writer
	header []string
	rows   [][]string
}

func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) SetHeader(header []string) {
	w.header = make([]string, len(header))
	for i, col := range header {
		w.header[i] = strings.ToUpper(col)
	}
}

// Append adds a row; every cell is formatted with fmt.Sprint.
func (w *Writer) Append(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	w.rows = append(w.rows, row)
}

func (w *Writer) Render() error {
	tw := tabwriter.NewWriter(w.out, minWidth, tabWidth, padding, padChar, 0)
	if len(w.header) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(w.header, "\t")); err != nil {
			return err
		}
	}
	for _, row := range w.rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
