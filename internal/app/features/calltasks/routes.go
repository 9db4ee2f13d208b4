// internal/app/features/calltasks/routes.go
package calltasks

import (
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the call-task endpoints (typically at "/calltasks").
// Access decisions are made per neighborhood by taskassign.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/stats", h.ServeStats)
		pr.Get("/overview", h.ServeOverview)
		pr.Post("/delete", h.HandleDelete)
		pr.Post("/{id}/status", h.HandleStatus)
	})

	return r
}
