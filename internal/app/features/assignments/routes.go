// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts assignment administration (typically at "/assignments").
// District assignments are super-admin only; neighborhood assignments are
// open to district admins within their districts.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/districts", h.ServeDistricts)
		pr.Post("/districts", h.HandleAssignDistrict)
		pr.Post("/districts/delete", h.HandleUnassignDistrict)

		pr.Get("/neighborhoods", h.ServeNeighborhoods)
		pr.Post("/neighborhoods", h.HandleAssignNeighborhood)
		pr.Post("/neighborhoods/delete", h.HandleUnassignNeighborhood)
	})

	return r
}
