package webhook

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/line/webhook", h.HandleHealth)
	r.Post("/line/webhook", h.HandleWebhook)
}
