package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"promenade/repositories"
	"promenade/services"
)

const defaultSearchLimit = 20

// HistoryHandler exposes the persisted chat history over plain HTTP,
// next to the websocket endpoint.
type HistoryHandler struct {
	log     *slog.Logger
	service services.IPresenceService
}

func NewHistoryHandler(log *slog.Logger, service services.IPresenceService) *HistoryHandler {
	return &HistoryHandler{log: log, service: service}
}

type historyMessage struct {
	From        string    `json:"from"`
	DisplayName string    `json:"displayName"`
	Message     string    `json:"message"`
	Lang        string    `json:"lang,omitempty"`
	At          time.Time `json:"at"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

type searchResponse struct {
	Messages []historyMessage `json:"messages"`
	Total    uint64           `json:"total"`
}

// List serves GET /history?cursor=..., newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := h.service.History(cursor)
	if err != nil {
		h.log.Error("History read failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, historyResponse{
		Messages: toHistoryMessages(messages),
		Cursor:   next,
	})
}

// Search serves GET /history/search?q=...&limit=N over the full-text index.
func (h *HistoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, total, err := h.service.Search(r.Context(), terms, limit)
	if err != nil {
		h.log.Error("History search failed", "error", err)
		http.Error(w, "search unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, searchResponse{
		Messages: toHistoryMessages(messages),
		Total:    total,
	})
}

func toHistoryMessages(messages []repositories.StoredMessage) []historyMessage {
	return lo.Map(messages, func(m repositories.StoredMessage, _ int) historyMessage {
		return historyMessage{
			From:        m.From,
			DisplayName: m.DisplayName,
			Message:     m.Content,
			Lang:        m.Lang,
			At:          m.At,
		}
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(body)
}
