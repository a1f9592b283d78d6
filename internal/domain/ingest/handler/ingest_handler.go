// Package handler exposes the ingestion session over HTTP. It is a thin
// shell: every decision lives in the service and the domain packages.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vloginova/finledger/internal/domain/ingest/service"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// maxUploadBytes bounds a single workbook upload.
const maxUploadBytes = 64 << 20

// IngestHandler serves the source and transaction endpoints.
type IngestHandler struct {
	svc    *service.IngestService
	logger *slog.Logger
}

// NewIngestHandler creates a new handler.
func NewIngestHandler(svc *service.IngestService, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, logger: logger}
}

// UploadSource handles POST /v1/sources: a multipart workbook upload with an
// optional display name.
func (h *IngestHandler) UploadSource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	src, err := h.svc.AddSource(r.Context(), name, data)
	if err != nil {
		h.logger.Error("failed to persist source", "source", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to persist source")
		return
	}

	status := http.StatusCreated
	if src.Status == service.StatusFailed {
		// The source is recorded with its error; the upload itself is
		// still answered, matching the per-source failure model.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, src)
}

// ListSources handles GET /v1/sources.
func (h *IngestHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Sources())
}

// DeleteSource handles DELETE /v1/sources/{id}.
func (h *IngestHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source id")
		return
	}
	if err := h.svc.RemoveSource(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrSourceNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		h.logger.Error("failed to remove source", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove source")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type manualReferenceRequest struct {
	Sheet  string `json:"sheetName"`
	Column string `json:"columnName"`
	Kind   string `json:"kind"` // "counterparty" (default) or "article"
}

// AddManualReferences handles POST /v1/sources/{id}/references: the escape
// hatch for reference sheets the detector failed to classify.
func (h *IngestHandler) AddManualReferences(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source id")
		return
	}
	var req manualReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		req.Kind = "counterparty"
	}
	if req.Kind != "counterparty" && req.Kind != "article" {
		writeError(w, http.StatusBadRequest, "kind must be counterparty or article")
		return
	}

	added, err := h.svc.AddManualReferences(r.Context(), id, req.Sheet, req.Column, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSourceNotFound):
			writeError(w, http.StatusNotFound, "source not found")
		case errors.Is(err, service.ErrColumnNotFound):
			writeError(w, http.StatusNotFound, "column not found")
		default:
			h.logger.Error("failed to add manual references", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to add references")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

// ListTransactions handles GET /v1/transactions with the filter dimensions as
// query parameters.
func (h *IngestHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs := ledger.Apply(h.svc.Transactions(), filter)
	writeJSON(w, http.StatusOK, txs)
}

// Report handles GET /v1/report: aggregate totals over the filtered set.
func (h *IngestHandler) Report(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary := ledger.Summarize(ledger.Apply(h.svc.Transactions(), filter))
	writeJSON(w, http.StatusOK, summary)
}

// ListArticles handles GET /v1/articles.
func (h *IngestHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Articles())
}

// ListCounterparties handles GET /v1/counterparties.
func (h *IngestHandler) ListCounterparties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Counterparties())
}

func filterFromQuery(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.Filter{
		Articles:       q["article"],
		Branches:       q["branch"],
		Counterparties: q["counterparty"],
		Sheets:         q["sheet"],
	}

	if v := q.Get("dateFrom"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("dateFrom must be YYYY-MM-DD")
		}
		f.DateFrom = t
	}
	if v := q.Get("dateTo"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("dateTo must be YYYY-MM-DD")
		}
		f.DateTo = t
	}
	switch v := q.Get("direction"); v {
	case "", "all":
	case string(ledger.DirectionIn), string(ledger.DirectionOut):
		f.Direction = ledger.Direction(v)
	default:
		return f, errors.New("direction must be in, out or all")
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
