// internal/app/features/citizens/routes.go
package citizens

import (
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the citizen endpoints (typically at "/citizens").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/upload_csv", h.HandleUpload)
		pr.Post("/{nationalID}/edit", h.HandleEdit)
	})

	return r
}
