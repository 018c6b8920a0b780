package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/logging"
)

// Handler terminates the inbound webhook. The POST contract is: a
// non-empty request always gets 200 {"status":"ok"} so the platform
// never retries delivery, no matter what failed internally.
type Handler struct {
	svc *Service
	cfg config.Store
	log *logging.Logger
}

func NewHandler(svc *Service, cfg config.Store, log *logging.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, log: log}
}

// HandleWebhook handles webhook deliveries from the LINE platform.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error(ctx, logging.UnknownError, fmt.Sprintf("Unhandled error in webhook handler: %v", rec), map[string]any{
				"stack": string(debug.Stack()),
			})
			writeAck(w)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error(ctx, logging.ProcessingError, "Error reading webhook body: "+err.Error(), nil)
		writeAck(w)
		return
	}

	// Preflight-style probes carry no body and need no processing.
	if len(body) == 0 {
		writeAck(w)
		return
	}

	h.log.Debug(ctx, "Received webhook", "bytes", len(body))

	if !h.validSignature(ctx, r, body) {
		h.log.Error(ctx, logging.ValidationError, "Invalid signature", map[string]any{
			"payload": string(body),
		})
		writeAck(w)
		return
	}

	var hook Body
	if err := json.Unmarshal(body, &hook); err != nil {
		h.log.Error(ctx, logging.ProcessingError, "Error processing webhook: "+err.Error(), map[string]any{
			"payload": string(body),
		})
		writeAck(w)
		return
	}

	h.svc.HandleEvents(ctx, hook.Events)
	writeAck(w)
}

// HandleHealth answers the GET liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "message": "webhook is working"})
}

// validSignature checks the request signature against the configured
// channel secret. The signature is accepted from the header or, for
// transports that flatten headers into parameters, the query string.
func (h *Handler) validSignature(ctx context.Context, r *http.Request, body []byte) bool {
	secret, err := h.cfg.Get(ctx, config.KeyChannelSecret)
	if err != nil {
		h.log.Error(ctx, logging.ValidationError, "Error validating signature: "+err.Error(), nil)
		return false
	}

	// No channel secret means signature validation is skipped entirely.
	if secret == "" {
		h.log.Warn("No channel secret configured, skipping signature validation")
		return true
	}

	signature := r.Header.Get("X-Line-Signature")
	if signature == "" {
		signature = r.URL.Query().Get("x-line-signature")
	}
	if signature == "" {
		h.log.Error(ctx, logging.ValidationError, "No signature provided", nil)
		return false
	}

	return lineapi.VerifySignature(secret, body, signature)
}

func writeAck(w http.ResponseWriter) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
