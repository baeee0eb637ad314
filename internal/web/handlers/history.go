package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/metrics"
	"github.com/jusunglee/kyrlat/internal/transliteration"
)

type HistoryHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewHistoryHandler(repo db.Repository, log *slog.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, log: log}
}

type historyResponse struct {
	ID        int64  `json:"id"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	Romanized string `json:"romanized"`
	ASCII     bool   `json:"ascii"`
	Source    string `json:"source"`
	Hits      int64  `json:"hits"`
	CreatedAt string `json:"created_at"`
	LastSeen  string `json:"last_seen"`
}

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type listResponse struct {
	Data       []historyResponse `json:"data"`
	Pagination paginationMeta    `json:"pagination"`
}

func toHistoryResponse(rom db.Romanization) historyResponse {
	return historyResponse{
		ID:        rom.ID,
		Language:  rom.Language,
		Text:      rom.Input,
		Romanized: rom.Output,
		ASCII:     rom.ASCII,
		Source:    rom.Source,
		Hits:      rom.Hits,
		CreatedAt: rom.CreatedAt.Format(time.RFC3339),
		LastSeen:  rom.LastSeen.Format(time.RFC3339),
	}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	language := q.Get("language")
	if language != "" {
		lang, err := transliteration.ParseLanguage(language)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unsupported language: "+language)
			return
		}
		language = lang.Code()
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	if page-1 > math.MaxInt32/limit {
		writeError(w, http.StatusBadRequest, "page out of range")
		return
	}
	offset := (page - 1) * limit

	total, err := h.repo.CountRomanizations(r.Context(), language)
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting romanizations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	roms, err := h.repo.ListRecentRomanizations(r.Context(), db.ListRecentParams{
		Language: language,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing romanizations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]historyResponse, 0, len(roms))
	for _, rom := range roms {
		data = append(data, toHistoryResponse(rom))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: data,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rom, err := h.repo.GetRomanizationByID(r.Context(), id)
	if err != nil {
		if db.IsNoRows(err) {
			writeError(w, http.StatusNotFound, "romanization not found")
			return
		}
		h.log.ErrorContext(r.Context(), "getting romanization", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(rom))
}

// Prune deletes history rows not seen within older_than (default 30 days).
func (h *HistoryHandler) Prune(w http.ResponseWriter, r *http.Request) {
	olderThan := 30 * 24 * time.Hour
	if v := r.URL.Query().Get("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "invalid older_than duration")
			return
		}
		olderThan = d
	}

	deleted, err := h.repo.DeleteRomanizationsOlderThan(r.Context(), time.Now().Add(-olderThan))
	if err != nil {
		h.log.ErrorContext(r.Context(), "pruning romanizations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.HistoryPruned.Add(float64(deleted))

	h.log.InfoContext(r.Context(), "pruned romanization history", "deleted", deleted, "older_than", olderThan)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
