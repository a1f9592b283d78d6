// Package repository provides data access for ingested sources and their
// extracted transactions. Resolved counterparty names are deliberately not
// persisted: the resolution pass is recomputed in memory on every change.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vloginova/finledger/internal/domain/ingest/profiler"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// SourceRecord is the persisted state of one loaded workbook source.
type SourceRecord struct {
	ID             uuid.UUID                `db:"id"`
	Name           string                   `db:"name"`
	Status         string                   `db:"status"` // "ready", "failed"
	ErrorMessage   string                   `db:"error_message"`
	Sheets         []ledger.SheetSummary    `db:"sheets"`
	Articles       []ledger.ArticleDDS      `db:"articles"`
	Counterparties []ledger.CounterpartyRef `db:"counterparties"`
	Profiles       []profiler.Profile       `db:"profiles"`
	CreatedAt      time.Time                `db:"created_at"`
}

// LedgerRepository defines persistence operations for sources and
// transactions.
type LedgerRepository interface {
	// SaveSource upserts a source and replaces its extracted transactions.
	SaveSource(ctx context.Context, src *SourceRecord, txs []ledger.Transaction) error
	// DeleteSource removes a source and its transactions.
	DeleteSource(ctx context.Context, id uuid.UUID) error
	// ListSources returns all persisted sources in load order.
	ListSources(ctx context.Context) ([]*SourceRecord, error)
	// ListTransactions returns the extracted transactions of one source in
	// insertion order.
	ListTransactions(ctx context.Context, sourceID uuid.UUID) ([]ledger.Transaction, error)
}
