// Package grid models a decoded spreadsheet sheet as a 2-D array of typed
// cells. Cells are a tagged variant (string | number | empty) so downstream
// heuristics can distinguish numeric content from free text without
// re-parsing.
package grid

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrBadWorkbook   = errors.New("workbook cannot be decoded")
	ErrEmptyWorkbook = errors.New("workbook contains no sheets")
)

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one spreadsheet cell. Number is valid only when Kind is CellNumber;
// Text always carries the original display text.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// String returns the display text of the cell, trimmed.
func (c Cell) String() string {
	return c.Text
}

// IsBlank reports whether the cell holds no usable value.
func (c Cell) IsBlank() bool {
	return c.Kind == CellEmpty || strings.TrimSpace(c.Text) == ""
}

// Grid is a row-major 2-D array of cells, one per sheet.
type Grid [][]Cell

// Cell returns the cell at (row, col), or an empty cell when the coordinates
// fall outside the ragged row bounds.
func (g Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Cell{}
	}
	return g[row][col]
}

// Sheet pairs a sheet name with its decoded grid.
type Sheet struct {
	Name string
	Grid Grid
}

// DecodeWorkbook decodes raw XLSX bytes into one grid per sheet, in workbook
// order. Raw cell values are requested so dates arrive as serial numbers
// rather than locale-formatted strings.
func DecodeWorkbook(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadWorkbook, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrEmptyWorkbook
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		g := make(Grid, len(rows))
		for i, row := range rows {
			cells := make([]Cell, len(row))
			for j, raw := range row {
				cells[j] = classifyCell(raw)
			}
			g[i] = cells
		}
		sheets = append(sheets, Sheet{Name: name, Grid: g})
	}
	return sheets, nil
}

// classifyCell turns a raw excelize cell string into a typed cell.
func classifyCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Text: trimmed, Number: n}
	}
	return Cell{Kind: CellString, Text: trimmed}
}

// ColumnLetter returns the spreadsheet letter for a zero-based column index,
// e.g. 0 -> "A", 26 -> "AA".
func ColumnLetter(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return ""
	}
	return name
}
