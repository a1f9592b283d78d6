// Package extractor turns classified journal grids into canonical
// transactions. Column lookup is keyword-driven: each semantic field has an
// ordered candidate list and the first matching header wins; a field whose
// candidates all miss resolves to index -1 and defaults to empty/zero.
package extractor

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vloginova/finledger/internal/domain/ingest/detector"
	"github.com/vloginova/finledger/internal/domain/ingest/grid"
	"github.com/vloginova/finledger/internal/domain/ingest/parser"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// Sequence issues process-unique transaction ids: a timestamp salt taken at
// construction plus a monotonic counter.
type Sequence struct {
	salt    int64
	counter atomic.Int64
}

// NewSequence creates an id sequence salted with the current time.
func NewSequence() *Sequence {
	return &Sequence{salt: time.Now().UnixMilli()}
}

// Next returns the next unique transaction id.
func (s *Sequence) Next() string {
	return fmt.Sprintf("tx-%d-%d", s.salt, s.counter.Add(1))
}

// Ordered column candidates per semantic field. Earlier candidates are more
// specific and must stay first.
var (
	dateCandidates         = []string{"дата оплаты", "дата поступления", "дата"}
	amountCandidates       = []string{"сумма в рублях", "сумма"}
	articleCandidates      = []string{"статья дохода", "статья расхода", "статья ддс", "статья"}
	walletCandidates       = []string{"кошел"}
	counterpartyCandidates = []string{"контрагент"}
	noteCandidates         = []string{"назначение платежа", "назначение", "комментар", "примечан", "основание"}
	branchCandidates       = []string{"филиал", "подразделение", "клиника"}
	accrualCandidates      = []string{"месяц начислен", "месяц"}
	documentCandidates     = []string{"номер документа", "№ документа", "документ"}
	debitCandidates        = []string{"аналитика дт"}
	creditCandidates       = []string{"аналитика кт"}
)

// Keywords deciding direction, used on dictionary group text and as the
// fallback heuristic over the article name itself.
var (
	incomeGroupKeywords  = []string{"поступлен", "доход"}
	expenseGroupKeywords = []string{"выбыти", "расход"}
	incomeTextKeywords   = []string{"поступлен", "доход", "взнос", "получен"}
)

// ExtractCash extracts transactions from a cash journal sheet.
func ExtractCash(g grid.Grid, sheetName, source string, articles []ledger.ArticleDDS, headerRow int, seq *Sequence) []ledger.Transaction {
	headers := normalizedHeaders(g, headerRow)
	cols := journalColumns{
		date:         findColumn(headers, dateCandidates),
		amount:       findColumn(headers, amountCandidates),
		article:      findColumn(headers, articleCandidates),
		wallet:       findColumn(headers, walletCandidates),
		counterparty: findColumn(headers, counterpartyCandidates),
		note:         findColumn(headers, noteCandidates),
		branch:       findColumn(headers, branchCandidates),
		accrual:      findColumn(headers, accrualCandidates),
		document:     findColumn(headers, documentCandidates),
	}
	return extractRows(g, sheetName, source, ledger.SheetCashJournal, articles, headerRow, cols, seq)
}

// ExtractBank extracts transactions from a bank journal sheet. The
// counterparty is read from the debit analytics column for outflows and the
// credit analytics column for inflows, mirroring double-entry bookkeeping.
func ExtractBank(g grid.Grid, sheetName, source string, articles []ledger.ArticleDDS, headerRow int, seq *Sequence) []ledger.Transaction {
	headers := normalizedHeaders(g, headerRow)
	cols := journalColumns{
		date:     findColumn(headers, dateCandidates),
		amount:   findColumn(headers, amountCandidates),
		article:  findColumn(headers, articleCandidates),
		wallet:   findColumn(headers, walletCandidates),
		note:     findColumn(headers, noteCandidates),
		branch:   findColumn(headers, branchCandidates),
		accrual:  findColumn(headers, accrualCandidates),
		document: findColumn(headers, documentCandidates),
		debit:    findColumn(headers, debitCandidates),
		credit:   findColumn(headers, creditCandidates),
		bank:     true,
	}
	// Plain counterparty column as a fallback when the sheet lacks
	// analytics columns.
	cols.counterparty = findColumn(headers, counterpartyCandidates)
	return extractRows(g, sheetName, source, ledger.SheetBankJournal, articles, headerRow, cols, seq)
}

// ExtractFallback handles sheets that classified as neither journal type nor
// reference. It proceeds only when at least a date or an amount column is
// resolvable; otherwise the sheet stays unknown and yields nothing.
func ExtractFallback(g grid.Grid, sheetName, source string, articles []ledger.ArticleDDS, headerRow int, seq *Sequence) []ledger.Transaction {
	headers := normalizedHeaders(g, headerRow)
	cols := journalColumns{
		date:         findColumn(headers, dateCandidates),
		amount:       findColumn(headers, amountCandidates),
		article:      findColumn(headers, articleCandidates),
		wallet:       findColumn(headers, walletCandidates),
		counterparty: findColumn(headers, counterpartyCandidates),
		note:         findColumn(headers, noteCandidates),
		branch:       findColumn(headers, branchCandidates),
		accrual:      findColumn(headers, accrualCandidates),
		document:     findColumn(headers, documentCandidates),
	}
	if cols.date < 0 && cols.amount < 0 {
		return nil
	}
	return extractRows(g, sheetName, source, ledger.SheetUnknown, articles, headerRow, cols, seq)
}

type journalColumns struct {
	date, amount, article int
	wallet, counterparty  int
	note, branch          int
	accrual, document     int
	debit, credit         int
	bank                  bool
}

func extractRows(g grid.Grid, sheetName, source string, typ ledger.SheetType, articles []ledger.ArticleDDS, headerRow int, cols journalColumns, seq *Sequence) []ledger.Transaction {
	var txs []ledger.Transaction
	for row := headerRow + 1; row < len(g); row++ {
		date := parser.ParseDate(cellAt(g, row, cols.date))
		amount := parser.ParseAmount(cellAt(g, row, cols.amount))
		article := textAt(g, row, cols.article)

		// Blank separators, repeated headers and subtotal rows are not
		// transactions.
		if date.IsZero() && amount == 0 && article == "" {
			continue
		}
		if amount == 0 {
			continue
		}

		direction := directionFor(article, articles)
		if amount < 0 {
			amount = -amount
		}

		counterparty := textAt(g, row, cols.counterparty)
		if cols.bank {
			if direction == ledger.DirectionOut {
				if v := textAt(g, row, cols.debit); v != "" {
					counterparty = v
				}
			} else if v := textAt(g, row, cols.credit); v != "" {
				counterparty = v
			}
		}

		txs = append(txs, ledger.Transaction{
			ID:              seq.Next(),
			Date:            date,
			Source:          source,
			Sheet:           sheetName,
			SheetType:       typ,
			Wallet:          textAt(g, row, cols.wallet),
			AmountKopecks:   amount,
			Direction:       direction,
			Note:            textAt(g, row, cols.note),
			Branch:          textAt(g, row, cols.branch),
			Counterparty:    counterparty,
			CounterpartyRaw: counterparty,
			Article:         article,
			AccrualMonth:    textAt(g, row, cols.accrual),
			Document:        textAt(g, row, cols.document),
		})
	}
	return txs
}

// directionFor infers the flow direction for an article. A dictionary hit is
// authoritative only when its group text matches exactly one of the two group
// keyword families; otherwise the keyword heuristic over the article text
// decides. No article text at all defaults to out.
func directionFor(article string, dict []ledger.ArticleDDS) ledger.Direction {
	norm := detector.NormalizeText(article)
	if norm == "" {
		return ledger.DirectionOut
	}

	for _, a := range dict {
		if detector.NormalizeText(a.Name) != norm {
			continue
		}
		group := detector.NormalizeText(a.Group)
		isIncome := containsAny(group, incomeGroupKeywords)
		isExpense := containsAny(group, expenseGroupKeywords)
		if isIncome && !isExpense {
			return ledger.DirectionIn
		}
		if isExpense && !isIncome {
			return ledger.DirectionOut
		}
		break
	}

	if containsAny(norm, incomeTextKeywords) {
		return ledger.DirectionIn
	}
	return ledger.DirectionOut
}

// findColumn returns the index of the first header matching the earliest
// possible candidate, or -1.
func findColumn(headers []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, h := range headers {
			if strings.Contains(h, candidate) {
				return i
			}
		}
	}
	return -1
}

func normalizedHeaders(g grid.Grid, headerRow int) []string {
	if headerRow >= len(g) {
		return nil
	}
	headers := make([]string, len(g[headerRow]))
	for i, cell := range g[headerRow] {
		headers[i] = detector.NormalizeText(cell.Text)
	}
	return headers
}

func cellAt(g grid.Grid, row, col int) grid.Cell {
	if col < 0 {
		return grid.Cell{}
	}
	return g.Cell(row, col)
}

func textAt(g grid.Grid, row, col int) string {
	return strings.TrimSpace(cellAt(g, row, col).Text)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
