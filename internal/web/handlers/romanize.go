package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/samber/lo"
)

// MaxBatchTexts caps the number of texts in one batch request.
const MaxBatchTexts = 100

// Romanizer is the part of romanizer.Romanizer the handlers use.
type Romanizer interface {
	Romanize(ctx context.Context, req romanizer.Request) (romanizer.Result, error)
	RomanizeBatch(ctx context.Context, lang transliteration.Language, texts []string, ascii bool, source string) ([]romanizer.Result, error)
}

type RomanizeHandler struct {
	romanizer Romanizer
	log       *slog.Logger
}

func NewRomanizeHandler(r Romanizer, log *slog.Logger) *RomanizeHandler {
	return &RomanizeHandler{romanizer: r, log: log}
}

type romanizeRequest struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	ASCII    bool   `json:"ascii"`
}

type romanizeResponse struct {
	Language  string `json:"language"`
	Text      string `json:"text"`
	Romanized string `json:"romanized"`
	ASCII     bool   `json:"ascii,omitempty"`
	HistoryID int64  `json:"history_id,omitempty"`
}

type batchRequest struct {
	Language string   `json:"language"`
	Texts    []string `json:"texts"`
	ASCII    bool     `json:"ascii"`
}

type batchResponse struct {
	Language string             `json:"language"`
	Results  []romanizeResponse `json:"results"`
}

type languageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func toRomanizeResponse(res romanizer.Result) romanizeResponse {
	return romanizeResponse{
		Language:  res.Language.Code(),
		Text:      res.Input,
		Romanized: res.Output,
		ASCII:     res.ASCII,
		HistoryID: res.HistoryID,
	}
}

func (h *RomanizeHandler) Romanize(w http.ResponseWriter, r *http.Request) {
	var req romanizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lang, ok := parseLanguage(w, req.Language)
	if !ok {
		return
	}

	res, err := h.romanizer.Romanize(r.Context(), romanizer.Request{
		Language: lang,
		Text:     req.Text,
		ASCII:    req.ASCII,
		Source:   "web",
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "romanizing text", "language", lang.Code(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toRomanizeResponse(res))
}

func (h *RomanizeHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lang, ok := parseLanguage(w, req.Language)
	if !ok {
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts is required")
		return
	}
	if len(req.Texts) > MaxBatchTexts {
		writeError(w, http.StatusBadRequest, "too many texts")
		return
	}

	results, err := h.romanizer.RomanizeBatch(r.Context(), lang, req.Texts, req.ASCII, "web")
	if err != nil {
		h.log.ErrorContext(r.Context(), "romanizing batch", "language", lang.Code(), "count", len(req.Texts), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Language: lang.Code(),
		Results:  lo.Map(results, func(res romanizer.Result, _ int) romanizeResponse { return toRomanizeResponse(res) }),
	})
}

func (h *RomanizeHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lo.Map(transliteration.Languages(), func(l transliteration.Language, _ int) languageResponse {
		return languageResponse{Code: l.Code(), Name: l.String()}
	}))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parseLanguage(w http.ResponseWriter, s string) (transliteration.Language, bool) {
	if s == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return 0, false
	}
	lang, err := transliteration.ParseLanguage(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported language: "+s)
		return 0, false
	}
	return lang, true
}
