package ledger

import "time"

// Filter restricts a transaction set along the reporting dimensions. All
// populated dimensions are AND-combined; an empty slice means no restriction
// on that dimension. DateTo is inclusive to the end of its day.
type Filter struct {
	DateFrom       time.Time `json:"dateFrom"`
	DateTo         time.Time `json:"dateTo"`
	Articles       []string  `json:"articles"`
	Branches       []string  `json:"branches"`
	Counterparties []string  `json:"counterparties"`
	Sheets         []string  `json:"sheets"`
	Direction      Direction `json:"direction"` // empty = both directions
}

// Apply returns the transactions matching the filter, preserving order.
func Apply(txs []Transaction, f Filter) []Transaction {
	articles := toSet(f.Articles)
	branches := toSet(f.Branches)
	counterparties := toSet(f.Counterparties)
	sheets := toSet(f.Sheets)

	var dateTo time.Time
	if !f.DateTo.IsZero() {
		y, m, d := f.DateTo.Date()
		dateTo = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), f.DateTo.Location())
	}

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !f.DateFrom.IsZero() && tx.Date.Before(f.DateFrom) {
			continue
		}
		if !dateTo.IsZero() && tx.Date.After(dateTo) {
			continue
		}
		if f.Direction != "" && tx.Direction != f.Direction {
			continue
		}
		if !inSet(articles, tx.Article) || !inSet(branches, tx.Branch) ||
			!inSet(counterparties, tx.Counterparty) || !inSet(sheets, tx.Sheet) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// inSet treats a nil set as "no restriction".
func inSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
