package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vloginova/finledger/internal/domain/ledger"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresLedgerRepository implements LedgerRepository using PostgreSQL.
type PostgresLedgerRepository struct {
	db DB
}

// NewPostgresLedgerRepository creates a new PostgreSQL-backed repository.
func NewPostgresLedgerRepository(db DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

const upsertSourceQuery = `
	INSERT INTO sources (id, name, status, error_message, sheets, articles, counterparties, profiles)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, status = EXCLUDED.status,
		error_message = EXCLUDED.error_message, sheets = EXCLUDED.sheets,
		articles = EXCLUDED.articles, counterparties = EXCLUDED.counterparties,
		profiles = EXCLUDED.profiles
`

const deleteSourceTransactionsQuery = `DELETE FROM transactions WHERE source_id = $1`

const insertTransactionQuery = `
	INSERT INTO transactions (
		id, source_id, date, sheet, sheet_type, wallet, amount_kopecks,
		direction, note, branch, counterparty_raw, article, accrual_month, document
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

// SaveSource upserts the source row and replaces its transactions, all in one
// database transaction.
func (r *PostgresLedgerRepository) SaveSource(ctx context.Context, src *SourceRecord, txs []ledger.Transaction) error {
	payload, err := marshalSourcePayload(src)
	if err != nil {
		return err
	}

	dbtx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	if _, err := dbtx.Exec(ctx, upsertSourceQuery,
		src.ID, src.Name, src.Status, src.ErrorMessage,
		payload.sheets, payload.articles, payload.counterparties, payload.profiles,
	); err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	if _, err := dbtx.Exec(ctx, deleteSourceTransactionsQuery, src.ID); err != nil {
		return fmt.Errorf("failed to clear source transactions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(insertTransactionQuery,
			tx.ID, src.ID, tx.Date, tx.Sheet, string(tx.SheetType), tx.Wallet,
			tx.AmountKopecks, string(tx.Direction), tx.Note, tx.Branch,
			tx.CounterpartyRaw, tx.Article, tx.AccrualMonth, tx.Document,
		)
	}
	if batch.Len() > 0 {
		results := dbtx.SendBatch(ctx, batch)
		for range txs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert transaction: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

const deleteSourceQuery = `DELETE FROM sources WHERE id = $1`

// DeleteSource removes a source; its transactions go with it via the foreign
// key cascade.
func (r *PostgresLedgerRepository) DeleteSource(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteSourceQuery, id); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}

const listSourcesQuery = `
	SELECT id, name, status, error_message, sheets, articles, counterparties, profiles, created_at
	FROM sources
	ORDER BY created_at, id
`

// ListSources returns all persisted sources in load order.
func (r *PostgresLedgerRepository) ListSources(ctx context.Context) ([]*SourceRecord, error) {
	rows, err := r.db.Query(ctx, listSourcesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var records []*SourceRecord
	for rows.Next() {
		var rec SourceRecord
		var sheets, articles, counterparties, profiles []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Status, &rec.ErrorMessage,
			&sheets, &articles, &counterparties, &profiles, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if err := unmarshalSourcePayload(&rec, sheets, articles, counterparties, profiles); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

const listTransactionsQuery = `
	SELECT id, date, sheet, sheet_type, wallet, amount_kopecks, direction,
	       note, branch, counterparty_raw, article, accrual_month, document
	FROM transactions
	WHERE source_id = $1
	ORDER BY seq
`

// ListTransactions returns one source's extracted transactions in insertion
// order. Counterparty comes back as the raw value; resolution happens in
// memory.
func (r *PostgresLedgerRepository) ListTransactions(ctx context.Context, sourceID uuid.UUID) ([]ledger.Transaction, error) {
	rows, err := r.db.Query(ctx, listTransactionsQuery, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var sheetType, direction string
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Sheet, &sheetType, &tx.Wallet,
			&tx.AmountKopecks, &direction, &tx.Note, &tx.Branch,
			&tx.CounterpartyRaw, &tx.Article, &tx.AccrualMonth, &tx.Document); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.SheetType = ledger.SheetType(sheetType)
		tx.Direction = ledger.Direction(direction)
		tx.Counterparty = tx.CounterpartyRaw
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

type sourcePayload struct {
	sheets, articles, counterparties, profiles []byte
}

func marshalSourcePayload(src *SourceRecord) (*sourcePayload, error) {
	var p sourcePayload
	var err error
	if p.sheets, err = json.Marshal(src.Sheets); err != nil {
		return nil, fmt.Errorf("failed to marshal sheets: %w", err)
	}
	if p.articles, err = json.Marshal(src.Articles); err != nil {
		return nil, fmt.Errorf("failed to marshal articles: %w", err)
	}
	if p.counterparties, err = json.Marshal(src.Counterparties); err != nil {
		return nil, fmt.Errorf("failed to marshal counterparties: %w", err)
	}
	if p.profiles, err = json.Marshal(src.Profiles); err != nil {
		return nil, fmt.Errorf("failed to marshal profiles: %w", err)
	}
	return &p, nil
}

func unmarshalSourcePayload(rec *SourceRecord, sheets, articles, counterparties, profiles []byte) error {
	for _, field := range []struct {
		data []byte
		dst  any
	}{
		{sheets, &rec.Sheets},
		{articles, &rec.Articles},
		{counterparties, &rec.Counterparties},
		{profiles, &rec.Profiles},
	} {
		if len(field.data) == 0 {
			continue
		}
		if err := json.Unmarshal(field.data, field.dst); err != nil {
			return fmt.Errorf("failed to decode source payload: %w", err)
		}
	}
	return nil
}
