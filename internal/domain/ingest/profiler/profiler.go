// Package profiler extracts per-sheet column names and value samples. The
// profiles exist so an operator can point the manual reference override at a
// column of an unclassified sheet; they are never used by automatic
// extraction.
package profiler

import (
	"strings"

	"github.com/vloginova/finledger/internal/domain/ingest/grid"
)

// maxDistinctValues bounds the per-column sample. This is a sampling bound,
// not a correctness requirement.
const maxDistinctValues = 300

// Profile describes one sheet: its deduplicated column labels and up to
// maxDistinctValues distinct non-blank values per column, in first-seen order.
type Profile struct {
	Sheet   string              `json:"sheet"`
	Columns []string            `json:"columns"`
	Values  map[string][]string `json:"valuesByColumn"`
}

// ProfileSheet builds the profile for one grid given its header row index.
// Blank header cells get a synthetic "Колонка <letter>" label; repeated header
// texts are disambiguated by appending the spreadsheet column letter.
func ProfileSheet(g grid.Grid, sheetName string, headerRow int) Profile {
	p := Profile{Sheet: sheetName, Values: make(map[string][]string)}
	if headerRow >= len(g) {
		return p
	}

	seen := make(map[string]bool)
	for i, cell := range g[headerRow] {
		name := strings.TrimSpace(cell.Text)
		if name == "" {
			name = "Колонка " + grid.ColumnLetter(i)
		}
		if seen[name] {
			name = name + " (" + grid.ColumnLetter(i) + ")"
		}
		seen[name] = true
		p.Columns = append(p.Columns, name)

		p.Values[name] = sampleColumn(g, headerRow+1, i)
	}
	return p
}

func sampleColumn(g grid.Grid, startRow, col int) []string {
	values := make([]string, 0)
	distinct := make(map[string]bool)
	for row := startRow; row < len(g); row++ {
		v := strings.TrimSpace(g.Cell(row, col).Text)
		if v == "" || distinct[v] {
			continue
		}
		distinct[v] = true
		values = append(values, v)
		if len(values) >= maxDistinctValues {
			break
		}
	}
	return values
}
