// Package ledger defines the canonical transaction model shared by the
// ingestion pipeline, the counterparty resolver and the reporting surface.
package ledger

import "time"

// SheetType classifies a spreadsheet sheet after detection.
type SheetType string

const (
	SheetCashJournal SheetType = "cash_journal"
	SheetBankJournal SheetType = "bank_journal"
	SheetReference   SheetType = "reference"
	SheetUnknown     SheetType = "unknown"
)

// Direction is the money flow direction of a transaction.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Transaction is the canonical unit of record produced by extraction.
// AmountKopecks is always non-negative; the sign lives in Direction.
// Counterparty starts as the raw cell text and is replaced by the resolver
// during the resolution pass; CounterpartyRaw keeps the original.
type Transaction struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Source          string    `json:"source"`
	Sheet           string    `json:"sheet"`
	SheetType       SheetType `json:"sheetType"`
	Wallet          string    `json:"wallet"`
	AmountKopecks   int64     `json:"amountKopecks"`
	Direction       Direction `json:"direction"`
	Note            string    `json:"note"`
	Branch          string    `json:"branch"`
	Counterparty    string    `json:"counterparty"`
	CounterpartyRaw string    `json:"counterpartyRaw"`
	Article         string    `json:"article"`
	AccrualMonth    string    `json:"accrualMonth"`
	Document        string    `json:"document"`
}

// SheetSummary is the per-sheet ingestion outcome reported to the caller.
type SheetSummary struct {
	Name     string    `json:"name"`
	Type     SheetType `json:"classifiedType"`
	RowCount int       `json:"rowCount"`
}

// ArticleDDS is one row of the article-of-cash-flow dictionary, loaded from
// reference sheets. Entries are never mutated after load.
type ArticleDDS struct {
	Name         string `json:"name"`
	Group        string `json:"group"`
	ActivityType string `json:"activityType"`
	Comment      string `json:"comment"`
}

// CounterpartyRef is a raw display-name entry from a reference sheet or a
// manually configured column.
type CounterpartyRef struct {
	Name string `json:"name"`
}
