// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned when no credential is presented.
var ErrUnauthenticated = errors.New("no credential presented")

// Identity is the resolved caller of a request.
type Identity struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	// Districts is set for district admins.
	Districts []string `json:"districts,omitempty"`
	// Neighborhood is set for neighborhood users.
	Neighborhood string `json:"neighborhood,omitempty"`
}

func (i Identity) IsSuperAdmin() bool    { return i.Role == RoleSuperAdmin }
func (i Identity) IsDistrictAdmin() bool { return i.Role == RoleDistrictAdmin }

// AdministersDistrict reports whether the identity holds an assignment for d.
func (i Identity) AdministersDistrict(d string) bool {
	for _, x := range i.Districts {
		if x == d {
			return true
		}
	}
	return false
}

// DistrictLookup returns the districts an identity administers.
type DistrictLookup interface {
	DistrictsByNationalID(ctx context.Context, nationalID string) ([]string, error)
}

// NeighborhoodLookup returns the neighborhood an identity handles, or
// mongo.ErrNoDocuments.
type NeighborhoodLookup interface {
	GetByNationalID(ctx context.Context, nationalID string) (models.NeighborhoodAssignment, error)
}

// Resolver maps a credential to an Identity.
type Resolver struct {
	superAdmins   map[string]struct{}
	districts     DistrictLookup
	neighborhoods NeighborhoodLookup
}

// NewResolver builds a Resolver. superAdminIDs is the configured allow-list.
func NewResolver(superAdminIDs []string, districts DistrictLookup, neighborhoods NeighborhoodLookup) *Resolver {
	set := make(map[string]struct{}, len(superAdminIDs))
	for _, id := range superAdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &Resolver{superAdmins: set, districts: districts, neighborhoods: neighborhoods}
}

// IsSuperAdminID reports whether nationalID is on the allow-list.
func (r *Resolver) IsSuperAdminID(nationalID string) bool {
	_, ok := r.superAdmins[nationalID]
	return ok
}

// Resolve determines the role of nationalID. The first matching rule wins:
// allow-list, then district assignments, then neighborhood assignment.
// Everyone else is a plain member.
func (r *Resolver) Resolve(ctx context.Context, nationalID, name string) (Identity, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return Identity{}, ErrUnauthenticated
	}
	id := Identity{NationalID: nationalID, Name: name, Role: RoleMember}

	if r.IsSuperAdminID(nationalID) {
		id.Role = RoleSuperAdmin
		return id, nil
	}

	districts, err := r.districts.DistrictsByNationalID(ctx, nationalID)
	if err != nil {
		return Identity{}, err
	}
	if len(districts) > 0 {
		id.Role = RoleDistrictAdmin
		id.Districts = districts
		return id, nil
	}

	a, err := r.neighborhoods.GetByNationalID(ctx, nationalID)
	switch {
	case err == nil && a.Neighborhood != "":
		id.Role = RoleNeighborhoodUser
		id.Neighborhood = a.Neighborhood
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return Identity{}, err
	}
	return id, nil
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores id in the request context.
func WithIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// FromRequest returns the resolved Identity and whether one is present.
func FromRequest(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok && id.NationalID != ""
}

// Middleware resolves the signed-in session user into an Identity on every
// request. Requests without a session pass through untouched; lookup failures
// answer 500 rather than downgrading the caller.
func (r *Resolver) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if _, ok := FromRequest(req); ok {
				next.ServeHTTP(w, req)
				return
			}
			u, ok := auth.CurrentUser(req)
			if !ok {
				next.ServeHTTP(w, req)
				return
			}
			id, err := r.Resolve(req.Context(), u.NationalID, u.Name)
			if err != nil {
				logger.Error("identity resolution failed",
					zap.String("national_id", u.NationalID),
					zap.Error(err))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"kind": "storage", "message": "could not resolve identity"},
				})
				return
			}
			next.ServeHTTP(w, WithIdentity(req, id))
		})
	}
}

// IsSuperAdmin reports whether the current request's identity is a super-admin.
func IsSuperAdmin(r *http.Request) bool {
	id, ok := FromRequest(r)
	return ok && id.IsSuperAdmin()
}

// HasAnyRole reports whether the current request's identity has any of roles.
func HasAnyRole(r *http.Request, roles ...Role) bool {
	id, ok := FromRequest(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if id.Role == want {
			return true
		}
	}
	return false
}
