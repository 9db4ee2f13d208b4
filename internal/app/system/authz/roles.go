// internal/app/system/authz/roles.go
package authz

// Role is the privilege tier of an identity. It is derived on every request
// from the super-admin allow-list and the assignment collections.
type Role string

const (
	RoleSuperAdmin       Role = "superadmin"
	RoleDistrictAdmin    Role = "district_admin"
	RoleNeighborhoodUser Role = "neighborhood_user"
	RoleMember           Role = "member"
)

// Privileged reports whether the role grants any access scope.
func (r Role) Privileged() bool {
	return r == RoleSuperAdmin || r == RoleDistrictAdmin || r == RoleNeighborhoodUser
}
