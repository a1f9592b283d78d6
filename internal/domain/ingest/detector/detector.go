// Package detector locates the header row inside a raw sheet grid and
// classifies the sheet as a cash journal, bank journal, reference sheet or
// unknown. Classification tries the sheet name first and falls back to the
// header content. The keyword tables are ordered; order is the tie-break and
// must not be rearranged.
package detector

import (
	"strings"

	"github.com/vloginova/finledger/internal/domain/ingest/grid"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// Classification is the per-sheet detection result.
type Classification struct {
	HeaderRow int
	Headers   []string
	Type      ledger.SheetType
}

// headerSearchDepth bounds the header-row scan.
const headerSearchDepth = 10

// Domain terms that mark a header cell. Scoring: 2 points per keyword cell,
// 0.5 per non-numeric cell longer than one character.
var headerKeywords = []string{
	"дата",
	"сумма",
	"статья",
	"контрагент",
	"кошел",
	"назначение",
	"приход",
	"расход",
	"аналитика",
	"документ",
	"филиал",
	"месяц",
	"группа",
	"комментар",
}

// Sheet-name markers, checked as ordered groups; the first group with a hit
// decides the type.
var nameMarkers = []struct {
	typ     ledger.SheetType
	markers []string
}{
	{ledger.SheetReference, []string{"справочник", "справ."}},
	{ledger.SheetCashJournal, []string{"касс", "наличн"}},
	{ledger.SheetBankJournal, []string{"банк", "расчетн", "р/с"}},
}

// Classify detects the header row and sheet type for one grid.
// Pure function of the grid and the sheet name.
func Classify(g grid.Grid, sheetName string) Classification {
	headerRow := FindHeaderRow(g)
	headers := normalizedHeaders(g, headerRow)

	typ := classifyByName(sheetName)
	if typ == ledger.SheetUnknown {
		typ = classifyByHeaders(headers)
	}

	return Classification{HeaderRow: headerRow, Headers: rawHeaders(g, headerRow), Type: typ}
}

// FindHeaderRow scores the first rows of the grid and returns the index of
// the best-looking header row. Ties keep the earliest row; an empty grid
// yields 0.
func FindHeaderRow(g grid.Grid) int {
	best := 0
	bestScore := 0.0

	limit := len(g)
	if limit > headerSearchDepth {
		limit = headerSearchDepth
	}
	for i := 0; i < limit; i++ {
		score := 0.0
		for _, cell := range g[i] {
			if cell.IsBlank() {
				continue
			}
			text := NormalizeText(cell.Text)
			if containsAny(text, headerKeywords) {
				score += 2
			}
			if cell.Kind != grid.CellNumber && len([]rune(text)) > 1 {
				score += 0.5
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func classifyByName(sheetName string) ledger.SheetType {
	name := NormalizeText(sheetName)
	for _, group := range nameMarkers {
		if containsAny(name, group.markers) {
			return group.typ
		}
	}
	return ledger.SheetUnknown
}

// classifyByHeaders tests ordered predicates over the concatenated headers:
// reference patterns first, then cash, then bank, then looser single-keyword
// heuristics.
func classifyByHeaders(headers []string) ledger.SheetType {
	joined := strings.Join(headers, "|")

	switch {
	case strings.Contains(joined, "статья ддс") && strings.Contains(joined, "группа"),
		strings.Contains(joined, "справочник контрагент"),
		strings.Contains(joined, "статья") && strings.Contains(joined, "вид деятельности"):
		return ledger.SheetReference
	case strings.Contains(joined, "кошел"),
		strings.Contains(joined, "дата оплаты") && strings.Contains(joined, "сумма"):
		return ledger.SheetCashJournal
	case strings.Contains(joined, "аналитика дт"),
		strings.Contains(joined, "аналитика кт"),
		strings.Contains(joined, "дата поступления") && strings.Contains(joined, "сумма"):
		return ledger.SheetBankJournal
	case strings.Contains(joined, "дата") && strings.Contains(joined, "сумма") && strings.Contains(joined, "статья"):
		return ledger.SheetCashJournal
	}
	return ledger.SheetUnknown
}

func rawHeaders(g grid.Grid, headerRow int) []string {
	if headerRow >= len(g) {
		return nil
	}
	headers := make([]string, len(g[headerRow]))
	for i, cell := range g[headerRow] {
		headers[i] = strings.TrimSpace(cell.Text)
	}
	return headers
}

func normalizedHeaders(g grid.Grid, headerRow int) []string {
	raw := rawHeaders(g, headerRow)
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = NormalizeText(h)
	}
	return headers
}

// NormalizeText lowercases, folds ё to е and collapses runs of whitespace.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
