// Package admin exposes the administrative surface: configuration
// management, end-to-end verification of both upstream APIs, and talk-id
// mapping maintenance.
package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/makkaizou"
	"github.com/wizlab/line-ai-bridge/internal/talk"
)

// BotInfoClient fetches the bot's own LINE profile.
type BotInfoClient interface {
	GetBotInfo(ctx context.Context) (*lineapi.BotInfo, error)
}

// StatusChecker probes the AI backend's status endpoint.
type StatusChecker interface {
	CheckStatus(ctx context.Context) makkaizou.Status
}

// Mappings covers the administrative operations on the identity mapping.
type Mappings interface {
	ListByGroup(ctx context.Context, groupID string) ([]talk.Mapping, error)
	ListByUser(ctx context.Context, userID string) ([]talk.Mapping, error)
	Delete(ctx context.Context, groupID, userID string) (bool, error)
}

type Handler struct {
	cfg   config.Store
	line  BotInfoClient
	ai    StatusChecker
	talks Mappings
}

func NewHandler(cfg config.Store, line BotInfoClient, ai StatusChecker, talks Mappings) *Handler {
	return &Handler{cfg: cfg, line: line, ai: ai, talks: talks}
}

// secretKeys are masked in config listings.
var secretKeys = map[string]bool{
	config.KeyChannelSecret:   true,
	config.KeyAccessToken:     true,
	config.KeyMakkaizouAPIKey: true,
}

type configEntry struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// HandleShowConfig lists all configuration entries with secrets masked.
func (h *Handler) HandleShowConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := h.cfg.All(r.Context())
	if err != nil {
		http.Error(w, "config read error", http.StatusInternalServerError)
		return
	}

	out := make([]configEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, configEntry{
			Key:         e.Key,
			Value:       maskValue(e.Key, e.Value),
			Description: e.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// HandleSetConfig creates or updates one configuration entry.
func (h *Handler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	var payload configEntry
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if payload.Key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	if err := h.cfg.Set(r.Context(), payload.Key, payload.Value, payload.Description); err != nil {
		http.Error(w, "config write error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type verifyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HandleVerify checks both upstream APIs with the current configuration.
// When the LINE check succeeds it backfills bot_name and
// line_bot_user_id if they are still unset.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lineResult := verifyResult{}
	var botInfo *lineapi.BotInfo
	info, err := h.line.GetBotInfo(ctx)
	if err != nil {
		lineResult.Error = err.Error()
	} else {
		lineResult.Success = true
		botInfo = info
		h.backfillBotIdentity(ctx, info)
	}

	status := h.ai.CheckStatus(ctx)
	makkaizouResult := verifyResult{Success: status.Status != "error"}
	if !makkaizouResult.Success {
		makkaizouResult.Error = status.Message
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"line":           lineResult,
		"botInfo":        botInfo,
		"makkaizou":      makkaizouResult,
		"status":         status,
		"overallSuccess": lineResult.Success && makkaizouResult.Success,
	})
}

func (h *Handler) backfillBotIdentity(ctx context.Context, info *lineapi.BotInfo) {
	if name, err := h.cfg.Get(ctx, config.KeyBotName); err == nil && name == "" {
		_ = h.cfg.Set(ctx, config.KeyBotName, info.DisplayName, "The name of the bot for mention detection")
	}
	if id, err := h.cfg.Get(ctx, config.KeyBotUserID); err == nil && id == "" {
		_ = h.cfg.Set(ctx, config.KeyBotUserID, info.UserID, "The LINE user ID of the bot")
	}
}

// HandleListMappings lists mappings by group_id or user_id.
func (h *Handler) HandleListMappings(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	userID := r.URL.Query().Get("user_id")

	var (
		mappings []talk.Mapping
		err      error
	)
	switch {
	case groupID != "":
		mappings, err = h.talks.ListByGroup(r.Context(), groupID)
	case userID != "":
		mappings, err = h.talks.ListByUser(r.Context(), userID)
	default:
		http.Error(w, "missing group_id or user_id", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "mapping read error", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, map[string]any{
			"groupId":   m.GroupID,
			"userId":    m.UserID,
			"talkId":    m.TalkID,
			"createdAt": m.CreatedAt,
			"lastUsed":  m.LastUsed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"mappings": out})
}

// HandleDeleteMapping removes the mapping for a (group, user) pair.
func (h *Handler) HandleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	userID := r.URL.Query().Get("user_id")
	if groupID == "" || userID == "" {
		http.Error(w, "missing group_id or user_id", http.StatusBadRequest)
		return
	}

	deleted, err := h.talks.Delete(r.Context(), groupID, userID)
	if err != nil {
		http.Error(w, "mapping delete error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func maskValue(key, value string) string {
	if !secretKeys[key] {
		return value
	}
	if value == "" {
		return "Not set"
	}
	if len(value) <= 4 {
		return "********"
	}
	return "********" + value[len(value)-4:]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
