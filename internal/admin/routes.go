package admin

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/config", h.HandleShowConfig)
		r.Put("/config", h.HandleSetConfig)
		r.Get("/verify", h.HandleVerify)
		r.Get("/mappings", h.HandleListMappings)
		r.Delete("/mappings", h.HandleDeleteMapping)
	})
}
