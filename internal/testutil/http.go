package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Well-known identities used across handler tests.
const (
	SuperAdminID = "11111111110"
	DistrictID   = "22222222220"
	AssigneeID   = "33333333330"
	MemberID     = "44444444440"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithUser injects a signed-in user, bypassing the session middleware.
func WithUser(r *http.Request, nationalID, name string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{NationalID: nationalID, Name: name})
}

// NewFormRequest builds a url-encoded POST request.
func NewFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// WithIdentity injects both the session user and the resolved identity, as
// the auth and authz middleware would.
func WithIdentity(r *http.Request, id authz.Identity) *http.Request {
	r = WithUser(r, id.NationalID, id.Name)
	return authz.WithIdentity(r, id)
}

// Identities used by handler tests. The district admin administers "Merkez",
// the assignee handles "Yönetim".
var (
	SuperAdmin    = authz.Identity{NationalID: SuperAdminID, Name: "Süper Yönetici", Role: authz.RoleSuperAdmin}
	DistrictAdmin = authz.Identity{NationalID: DistrictID, Name: "İlçe Sorumlusu", Role: authz.RoleDistrictAdmin, Districts: []string{"Merkez"}}
	Assignee      = authz.Identity{NationalID: AssigneeID, Name: "Mahalle Sorumlusu", Role: authz.RoleNeighborhoodUser, Neighborhood: "Yönetim"}
	Member        = authz.Identity{NationalID: MemberID, Name: "Üye", Role: authz.RoleMember}
)
