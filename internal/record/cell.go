// Package record defines the value types flowing through the pipeline: raw
// spreadsheet cells and rows, canonical records and rejected rows.
package record

import (
	"strconv"
	"strings"
)

// Kind tags the content of a Cell.
type Kind int

const (
	// Empty is a blank cell.
	Empty Kind = iota
	// Text is a string cell.
	Text
	// Number is a numeric cell as typed by the spreadsheet.
	Number
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "empty"
	}
}

// Cell is one untyped spreadsheet value.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
}

// TextCell builds a text cell.
func TextCell(s string) Cell {
	return Cell{Kind: Text, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(n float64) Cell {
	return Cell{Kind: Number, Number: n}
}

// EmptyCell builds a blank cell.
func EmptyCell() Cell {
	return Cell{}
}

// CellFromString builds a text cell, or an empty one for blank input.
func CellFromString(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return EmptyCell()
	}
	return TextCell(s)
}

// IsBlank reports whether the cell is empty or holds only whitespace.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case Text:
		return strings.TrimSpace(c.Text) == ""
	case Number:
		return false
	default:
		return true
	}
}

// String renders the cell as text.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// RawRow is one data row aligned to the header order. Index is the row's
// position among the data rows of its source, starting at 0.
type RawRow struct {
	Index int
	Cells []Cell
}

// Cell returns the cell at position i, or an empty cell when the row is
// shorter than the header.
func (r RawRow) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return EmptyCell()
	}
	return r.Cells[i]
}

// IsBlank reports whether every cell of the row is blank.
func (r RawRow) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Strings renders every cell as text.
func (r RawRow) Strings() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.String()
	}
	return out
}
