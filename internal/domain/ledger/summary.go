package ledger

import "sort"

// Summary is the aggregate view the reporting layer renders.
type Summary struct {
	TotalInKopecks  int64        `json:"totalInKopecks"`
	TotalOutKopecks int64        `json:"totalOutKopecks"`
	NetKopecks      int64        `json:"netKopecks"`
	Count           int          `json:"count"`
	ByArticle       []GroupTotal `json:"byArticle"`
	ByBranch        []GroupTotal `json:"byBranch"`
}

// GroupTotal is one rollup row of a summary.
type GroupTotal struct {
	Key         string `json:"key"`
	InKopecks   int64  `json:"inKopecks"`
	OutKopecks  int64  `json:"outKopecks"`
	Transaction int    `json:"transactions"`
}

// Summarize computes totals over an already-filtered transaction set.
// Rollup rows are sorted by descending absolute turnover, then by key.
func Summarize(txs []Transaction) Summary {
	s := Summary{Count: len(txs)}
	byArticle := make(map[string]*GroupTotal)
	byBranch := make(map[string]*GroupTotal)

	for _, tx := range txs {
		if tx.Direction == DirectionIn {
			s.TotalInKopecks += tx.AmountKopecks
		} else {
			s.TotalOutKopecks += tx.AmountKopecks
		}
		accumulate(byArticle, tx.Article, tx)
		accumulate(byBranch, tx.Branch, tx)
	}
	s.NetKopecks = s.TotalInKopecks - s.TotalOutKopecks
	s.ByArticle = sortedTotals(byArticle)
	s.ByBranch = sortedTotals(byBranch)
	return s
}

func accumulate(groups map[string]*GroupTotal, key string, tx Transaction) {
	g, ok := groups[key]
	if !ok {
		g = &GroupTotal{Key: key}
		groups[key] = g
	}
	if tx.Direction == DirectionIn {
		g.InKopecks += tx.AmountKopecks
	} else {
		g.OutKopecks += tx.AmountKopecks
	}
	g.Transaction++
}

func sortedTotals(groups map[string]*GroupTotal) []GroupTotal {
	out := make([]GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		ti := out[i].InKopecks + out[i].OutKopecks
		tj := out[j].InKopecks + out[j].OutKopecks
		if ti != tj {
			return ti > tj
		}
		return out[i].Key < out[j].Key
	})
	return out
}
