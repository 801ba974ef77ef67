package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/model"
	"github.com/erazemk/bodega/internal/returns"
	"github.com/erazemk/bodega/internal/saleslog"
)

// RecordsHandler serves the tracked photo records and the return and
// sales-total operations built on them.
type RecordsHandler struct {
	Index     *index.Index
	Returns   *returns.Processor
	Sales     *saleslog.Log
	SaleGroup string
}

type markReturnRequest struct {
	PhotoID string               `json:"fotoId"`
	Items   []model.ReturnedItem `json:"productos_devueltos"`
}

// List handles GET /api/records. The estado and fecha query parameters
// filter by status and submission date.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("estado")
	switch status {
	case "", model.StatusPending, model.StatusConfirmed, model.StatusReturned:
	default:
		jsonError(w, http.StatusBadRequest, "invalid estado")
		return
	}

	records, err := h.Index.ListByStatus(status)
	if err != nil {
		slog.Error("listing records", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	if date := r.URL.Query().Get("fecha"); date != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Date == date {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.Before(records[j].SubmittedAt)
	})
	if records == nil {
		records = []model.Record{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// MarkReturn handles POST /api/mark-return.
func (h *RecordsHandler) MarkReturn(w http.ResponseWriter, r *http.Request) {
	var req markReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chatID, messageID, ok := parsePhotoID(req.PhotoID)
	if !ok {
		jsonError(w, http.StatusBadRequest, "fotoId required")
		return
	}

	initiator := "dashboard"
	if claims := GetClaims(r.Context()); claims != nil {
		initiator = claims.Username
	}

	rec, err := h.Returns.MarkReturned(r.Context(), chatID, messageID, initiator, req.Items)
	switch {
	case errors.Is(err, index.ErrNotFound):
		jsonError(w, http.StatusNotFound, "record not found")
		return
	case errors.Is(err, index.ErrAlreadyReturned):
		jsonError(w, http.StatusConflict, "record already returned")
		return
	case errors.Is(err, index.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, "record is not confirmed")
		return
	case err != nil:
		slog.Error("marking return", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark return")
		return
	}

	jsonResponse(w, http.StatusOK, rec)
}

// Total handles GET /api/total. The fecha query parameter defaults to
// today; grupo defaults to the configured sales group.
func (h *RecordsHandler) Total(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("grupo")
	if group == "" {
		group = h.SaleGroup
	}
	date := r.URL.Query().Get("fecha")
	if date == "" {
		date = saleslog.Today()
	}

	summary, err := h.Sales.ComputeTotal(group, date)
	if err != nil {
		slog.Error("computing total", "group", group, "date", date, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute total")
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}

// parsePhotoID splits a "{chatID}_{messageID}" photo ID.
func parsePhotoID(id string) (int64, int, bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 {
		return 0, 0, false
	}
	chatID, err := strconv.ParseInt(id[:i], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	messageID, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, 0, false
	}
	return chatID, messageID, true
}
