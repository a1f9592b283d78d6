// Package reference extracts the article-of-cash-flow dictionary and the
// counterparty dictionary from a sheet classified as a reference sheet. The
// two column families are independent: a sheet may carry either or both.
package reference

import (
	"strings"

	"github.com/vloginova/finledger/internal/domain/ingest/detector"
	"github.com/vloginova/finledger/internal/domain/ingest/grid"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// Result holds everything a reference sheet contributed.
type Result struct {
	Articles       []ledger.ArticleDDS
	Counterparties []ledger.CounterpartyRef
}

// Parse reads a reference grid below the given header row. Duplicate names
// keep the first occurrence.
func Parse(g grid.Grid, headerRow int) Result {
	var res Result
	if headerRow >= len(g) {
		return res
	}

	headers := make([]string, len(g[headerRow]))
	for i, cell := range g[headerRow] {
		headers[i] = detector.NormalizeText(cell.Text)
	}

	articleCol := findHeader(headers, "статья")
	groupCol := findHeader(headers, "группа")
	activityCol := findHeader(headers, "вид деятельности")
	commentCol := findHeader(headers, "комментар")
	counterpartyCol := findCounterpartyColumn(headers)

	if articleCol >= 0 {
		seen := make(map[string]bool)
		for row := headerRow + 1; row < len(g); row++ {
			name := strings.TrimSpace(g.Cell(row, articleCol).Text)
			if name == "" {
				continue
			}
			key := detector.NormalizeText(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			res.Articles = append(res.Articles, ledger.ArticleDDS{
				Name:         name,
				Group:        strings.TrimSpace(g.Cell(row, groupCol).Text),
				ActivityType: strings.TrimSpace(g.Cell(row, activityCol).Text),
				Comment:      strings.TrimSpace(g.Cell(row, commentCol).Text),
			})
		}
	}

	if counterpartyCol >= 0 {
		seen := make(map[string]bool)
		for row := headerRow + 1; row < len(g); row++ {
			name := strings.TrimSpace(g.Cell(row, counterpartyCol).Text)
			if name == "" {
				continue
			}
			// A value naming the reference itself is a sub-header or
			// label row, not an entry.
			if strings.Contains(detector.NormalizeText(name), "справочник") {
				continue
			}
			key := detector.NormalizeText(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			res.Counterparties = append(res.Counterparties, ledger.CounterpartyRef{Name: name})
		}
	}

	return res
}

// findCounterpartyColumn prefers a header explicitly naming the counterparty
// reference, then falls back to the first header mentioning counterparties.
func findCounterpartyColumn(headers []string) int {
	if col := findHeader(headers, "справочник контрагент"); col >= 0 {
		return col
	}
	return findHeader(headers, "контрагент")
}

func findHeader(headers []string, keyword string) int {
	for i, h := range headers {
		if strings.Contains(h, keyword) {
			return i
		}
	}
	return -1
}
