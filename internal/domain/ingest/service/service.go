// Package service orchestrates the ingestion session: decoding workbooks,
// classifying sheets, extracting transactions and reference entries, and
// running the counterparty resolution pass over the unified transaction set.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vloginova/finledger/internal/domain/counterparty/resolver"
	"github.com/vloginova/finledger/internal/domain/ingest/detector"
	"github.com/vloginova/finledger/internal/domain/ingest/extractor"
	"github.com/vloginova/finledger/internal/domain/ingest/grid"
	"github.com/vloginova/finledger/internal/domain/ingest/profiler"
	"github.com/vloginova/finledger/internal/domain/ingest/reference"
	"github.com/vloginova/finledger/internal/domain/ledger"
	"github.com/vloginova/finledger/internal/domain/ledger/repository"
	"github.com/vloginova/finledger/pkg/observability"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrColumnNotFound = errors.New("column not found in sheet profile")
)

// SourceStatus is the lifecycle state of a loaded source.
type SourceStatus string

const (
	StatusReady  SourceStatus = "ready"
	StatusFailed SourceStatus = "failed"
)

// Source is one loaded workbook with everything extracted from it. A failed
// source keeps only its name and error message; it never contributes to the
// unified set.
type Source struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	Status         SourceStatus             `json:"status"`
	Error          string                   `json:"error,omitempty"`
	Sheets         []ledger.SheetSummary    `json:"sheets"`
	Transactions   []ledger.Transaction     `json:"-"`
	Articles       []ledger.ArticleDDS      `json:"articles"`
	Counterparties []ledger.CounterpartyRef `json:"counterparties"`
	Profiles       []profiler.Profile       `json:"profiles"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// IngestService owns the session of loaded sources. The pipeline itself is
// single-threaded; the mutex only guards the source list against concurrent
// HTTP callers.
type IngestService struct {
	logger *slog.Logger
	repo   repository.LedgerRepository // nil = in-memory session only

	mu      sync.Mutex
	sources []*Source
	seq     *extractor.Sequence
}

// NewIngestService creates a new ingestion session.
func NewIngestService(repo repository.LedgerRepository, logger *slog.Logger) *IngestService {
	return &IngestService{
		logger: logger,
		repo:   repo,
		seq:    extractor.NewSequence(),
	}
}

// Restore loads previously persisted sources back into the session.
func (s *IngestService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	records, err := s.repo.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore sources: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		src := &Source{
			ID:             rec.ID,
			Name:           rec.Name,
			Status:         SourceStatus(rec.Status),
			Error:          rec.ErrorMessage,
			Sheets:         rec.Sheets,
			Articles:       rec.Articles,
			Counterparties: rec.Counterparties,
			Profiles:       rec.Profiles,
			CreatedAt:      rec.CreatedAt,
		}
		if src.Status == StatusReady {
			txs, err := s.repo.ListTransactions(ctx, rec.ID)
			if err != nil {
				return fmt.Errorf("failed to restore transactions for %q: %w", rec.Name, err)
			}
			src.Transactions = txs
		}
		s.sources = append(s.sources, src)
	}
	s.logger.Info("session restored", "sources", len(s.sources))
	return nil
}

// AddSource decodes and ingests one workbook. Structural failures (bad bytes,
// zero sheets) produce a failed source rather than aborting the session;
// per-row defects never fail a source at all.
func (s *IngestService) AddSource(ctx context.Context, name string, data []byte) (*Source, error) {
	src := s.processWorkbook(name, data)

	s.mu.Lock()
	s.sources = append(s.sources, src)
	s.mu.Unlock()

	observability.SourcesIngested.WithLabelValues(string(src.Status)).Inc()
	if src.Status == StatusFailed {
		s.logger.Warn("source failed", "source", name, "error", src.Error)
	} else {
		s.logger.Info("source ingested",
			"source", name,
			"sheets", len(src.Sheets),
			"transactions", len(src.Transactions),
			"articles", len(src.Articles),
			"counterparties", len(src.Counterparties),
		)
	}

	if err := s.persist(ctx, src); err != nil {
		return src, err
	}
	return src, nil
}

// RemoveSource drops a source and triggers recomputation of the unified set
// on the next read.
func (s *IngestService) RemoveSource(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	found := false
	kept := s.sources[:0]
	for _, src := range s.sources {
		if src.ID == id {
			found = true
			continue
		}
		kept = append(kept, src)
	}
	s.sources = kept
	s.mu.Unlock()

	if !found {
		return ErrSourceNotFound
	}
	if s.repo != nil {
		if err := s.repo.DeleteSource(ctx, id); err != nil {
			return err
		}
	}
	s.logger.Info("source removed", "id", id)
	return nil
}

// Sources returns a snapshot of the loaded sources in load order.
func (s *IngestService) Sources() []*Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Transactions returns the unified transaction list over all ready sources
// with the counterparty resolution pass applied. The dictionary is rebuilt
// from scratch on every call because membership is global across sources.
func (s *IngestService) Transactions() []ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	dict := s.buildDictionaryLocked()
	var out []ledger.Transaction
	for _, src := range s.sources {
		if src.Status != StatusReady {
			continue
		}
		for _, tx := range src.Transactions {
			resolved := dict.Resolve(tx.CounterpartyRaw)
			observability.Resolutions.WithLabelValues(resolutionOutcome(dict, resolved)).Inc()
			tx.Counterparty = resolved
			out = append(out, tx)
		}
	}
	return out
}

// Articles returns the merged article dictionary, first occurrence winning on
// duplicate names.
func (s *IngestService) Articles() []ledger.ArticleDDS {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergedArticlesLocked()
}

// Counterparties returns the merged counterparty reference entries, first
// occurrence winning.
func (s *IngestService) Counterparties() []ledger.CounterpartyRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ledger.CounterpartyRef
	seen := make(map[string]bool)
	for _, src := range s.sources {
		if src.Status != StatusReady {
			continue
		}
		for _, ref := range src.Counterparties {
			key := detector.NormalizeText(ref.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ref)
		}
	}
	return out
}

// AddManualReferences extracts the distinct values of one profiled column and
// registers them as reference entries on the source, bypassing automatic
// reference-sheet detection. kind is "counterparty" or "article". Returns the
// number of entries added.
func (s *IngestService) AddManualReferences(ctx context.Context, sourceID uuid.UUID, sheet, column, kind string) (int, error) {
	s.mu.Lock()
	src := s.findSourceLocked(sourceID)
	if src == nil {
		s.mu.Unlock()
		return 0, ErrSourceNotFound
	}

	values, ok := profiledValues(src, sheet, column)
	if !ok {
		s.mu.Unlock()
		return 0, ErrColumnNotFound
	}

	added := 0
	if kind == "article" {
		seen := make(map[string]bool, len(src.Articles))
		for _, a := range src.Articles {
			seen[detector.NormalizeText(a.Name)] = true
		}
		for _, v := range values {
			key := detector.NormalizeText(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			src.Articles = append(src.Articles, ledger.ArticleDDS{Name: v})
			added++
		}
	} else {
		seen := make(map[string]bool, len(src.Counterparties))
		for _, ref := range src.Counterparties {
			seen[detector.NormalizeText(ref.Name)] = true
		}
		for _, v := range values {
			key := detector.NormalizeText(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			src.Counterparties = append(src.Counterparties, ledger.CounterpartyRef{Name: v})
			added++
		}
	}
	s.mu.Unlock()

	if err := s.persist(ctx, src); err != nil {
		return added, err
	}
	s.logger.Info("manual references added", "source", src.Name, "sheet", sheet, "column", column, "kind", kind, "added", added)
	return added, nil
}

// processWorkbook runs the full pipeline over one workbook: decode, classify
// every sheet, parse reference sheets first, then extract journals with the
// combined article dictionary.
func (s *IngestService) processWorkbook(name string, data []byte) *Source {
	src := &Source{
		ID:        uuid.New(),
		Name:      name,
		Status:    StatusReady,
		CreatedAt: time.Now().UTC(),
	}

	sheets, err := grid.DecodeWorkbook(data)
	if err != nil {
		src.Status = StatusFailed
		src.Error = err.Error()
		return src
	}

	type classified struct {
		sheet grid.Sheet
		class detector.Classification
	}
	classes := make([]classified, 0, len(sheets))
	for _, sheet := range sheets {
		class := detector.Classify(sheet.Grid, sheet.Name)
		observability.SheetsClassified.WithLabelValues(string(class.Type)).Inc()
		classes = append(classes, classified{sheet: sheet, class: class})

		src.Sheets = append(src.Sheets, ledger.SheetSummary{
			Name:     sheet.Name,
			Type:     class.Type,
			RowCount: len(sheet.Grid),
		})
		src.Profiles = append(src.Profiles, profiler.ProfileSheet(sheet.Grid, sheet.Name, class.HeaderRow))
	}

	// Reference sheets first so their articles steer direction inference
	// for journals in the same workbook.
	for _, c := range classes {
		if c.class.Type != ledger.SheetReference {
			continue
		}
		res := reference.Parse(c.sheet.Grid, c.class.HeaderRow)
		src.Articles = append(src.Articles, res.Articles...)
		src.Counterparties = append(src.Counterparties, res.Counterparties...)
	}

	articles := s.articlesForExtraction(src.Articles)

	for _, c := range classes {
		var txs []ledger.Transaction
		switch c.class.Type {
		case ledger.SheetCashJournal:
			txs = extractor.ExtractCash(c.sheet.Grid, c.sheet.Name, name, articles, c.class.HeaderRow, s.seq)
		case ledger.SheetBankJournal:
			txs = extractor.ExtractBank(c.sheet.Grid, c.sheet.Name, name, articles, c.class.HeaderRow, s.seq)
		case ledger.SheetUnknown:
			txs = extractor.ExtractFallback(c.sheet.Grid, c.sheet.Name, name, articles, c.class.HeaderRow, s.seq)
		}
		src.Transactions = append(src.Transactions, txs...)
	}

	observability.TransactionsExtracted.Add(float64(len(src.Transactions)))
	return src
}

// articlesForExtraction combines the articles already loaded in the session
// with the ones found in the workbook being processed.
func (s *IngestService) articlesForExtraction(own []ledger.ArticleDDS) []ledger.ArticleDDS {
	s.mu.Lock()
	existing := s.mergedArticlesLocked()
	s.mu.Unlock()

	combined := make([]ledger.ArticleDDS, 0, len(existing)+len(own))
	combined = append(combined, existing...)
	combined = append(combined, own...)
	return combined
}

func (s *IngestService) mergedArticlesLocked() []ledger.ArticleDDS {
	var out []ledger.ArticleDDS
	seen := make(map[string]bool)
	for _, src := range s.sources {
		if src.Status != StatusReady {
			continue
		}
		for _, a := range src.Articles {
			key := detector.NormalizeText(a.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

func (s *IngestService) buildDictionaryLocked() *resolver.Dictionary {
	refs := make([][]ledger.CounterpartyRef, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Status != StatusReady {
			continue
		}
		refs = append(refs, src.Counterparties)
	}
	return resolver.Build(refs)
}

func (s *IngestService) findSourceLocked(id uuid.UUID) *Source {
	for _, src := range s.sources {
		if src.ID == id {
			return src
		}
	}
	return nil
}

func profiledValues(src *Source, sheet, column string) ([]string, bool) {
	for _, p := range src.Profiles {
		if p.Sheet != sheet {
			continue
		}
		values, ok := p.Values[column]
		return values, ok
	}
	return nil, false
}

func (s *IngestService) persist(ctx context.Context, src *Source) error {
	if s.repo == nil {
		return nil
	}
	rec := &repository.SourceRecord{
		ID:             src.ID,
		Name:           src.Name,
		Status:         string(src.Status),
		ErrorMessage:   src.Error,
		Sheets:         src.Sheets,
		Articles:       src.Articles,
		Counterparties: src.Counterparties,
		Profiles:       src.Profiles,
		CreatedAt:      src.CreatedAt,
	}
	if err := s.repo.SaveSource(ctx, rec, src.Transactions); err != nil {
		return fmt.Errorf("failed to persist source %q: %w", src.Name, err)
	}
	return nil
}

func resolutionOutcome(dict *resolver.Dictionary, resolved string) string {
	switch {
	case resolved == "":
		return observability.OutcomeEmpty
	case resolved == resolver.NotInDictionary:
		return observability.OutcomeNotFound
	case !dict.HasReferences():
		return observability.OutcomeFallback
	default:
		return observability.OutcomeMatched
	}
}
