package pipeproto

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/stoap/result"
)

// FormatCell renders one result cell as the fixed-shape response
// record: type;found;value;path;;zero;
//
// type is always 1 (numeric); found is 0 or 1; value is the decimal
// double at 15 significant digits, or empty when not found; the
// trailing ";;0;" is a fixed suffix the client ignores.
func FormatCell(c result.Cell) string {
	found := "0"
	value := ""
	if c.Found {
		found = "1"
		value = strconv.FormatFloat(c.Value, 'g', 15, 64)
	}
	return fmt.Sprintf("1;%s;%s;%s;;0;", found, value, c.Path.String())
}

// WriteCells writes one response record per cell, each terminated by
// a newline, in order.
func WriteCells(w io.Writer, cells []result.Cell) error {
	for _, c := range cells {
		if _, err := io.WriteString(w, FormatCell(c)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteError writes the single plain-text error line the client sees
// when a request fails at the boundary.
func WriteError(w io.Writer, msg string) error {
	_, err := io.WriteString(w, "Error: "+msg+"\n")
	return err
}
