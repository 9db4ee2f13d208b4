// Package scopepolicy computes which neighborhoods an identity may read and
// write.
//
// Authorization rules:
//   - Super-admins can read and write every neighborhood
//   - District admins can read and write the neighborhoods whose citizens
//     belong to a district they administer
//   - Neighborhood users can read and write exactly their neighborhood
//   - Plain members have an empty scope
//
// Read and write scopes are the same set.
package scopepolicy

import (
	"context"

	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
)

// Scope is the set of neighborhoods an identity may access.
type Scope struct {
	// All is true for super-admins; Neighborhoods is then unset.
	All bool `json:"all"`
	// Districts is set for district admins.
	Districts []string `json:"districts,omitempty"`
	// Neighborhoods lists the accessible neighborhoods when All is false.
	Neighborhoods []string `json:"neighborhoods"`
}

// Empty reports whether the scope grants nothing.
func (s Scope) Empty() bool {
	return !s.All && len(s.Neighborhoods) == 0
}

// Includes reports whether neighborhood is inside the scope.
func (s Scope) Includes(neighborhood string) bool {
	if neighborhood == "" {
		return false
	}
	if s.All {
		return true
	}
	for _, n := range s.Neighborhoods {
		if n == neighborhood {
			return true
		}
	}
	return false
}

// Filter returns the neighborhood restriction for store queries: nil means
// unrestricted, a non-nil empty slice matches nothing.
func (s Scope) Filter() []string {
	if s.All {
		return nil
	}
	if s.Neighborhoods == nil {
		return []string{}
	}
	return s.Neighborhoods
}

// NeighborhoodSource lists neighborhoods belonging to districts.
type NeighborhoodSource interface {
	DistinctNeighborhoods(ctx context.Context, districts []string) ([]string, error)
}

// IndexSource supplies the neighborhood -> district index.
type IndexSource interface {
	Get(ctx context.Context) (*districtindex.Index, error)
}

// Policy evaluates scopes against current citizen data.
type Policy struct {
	hoods NeighborhoodSource
	index IndexSource
}

func New(hoods NeighborhoodSource, index IndexSource) *Policy {
	return &Policy{hoods: hoods, index: index}
}

// Calculate returns the scope of id.
func (p *Policy) Calculate(ctx context.Context, id authz.Identity) (Scope, error) {
	switch id.Role {
	case authz.RoleSuperAdmin:
		return Scope{All: true}, nil
	case authz.RoleDistrictAdmin:
		hoods, err := p.hoods.DistinctNeighborhoods(ctx, id.Districts)
		if err != nil {
			return Scope{}, err
		}
		ix, err := p.index.Get(ctx)
		if err != nil {
			return Scope{}, err
		}
		// Same rule as CanWriteNeighborhood: conflicting neighborhoods drop out.
		owned := make([]string, 0, len(hoods))
		for _, h := range hoods {
			if d, ok := ix.DistrictOf(h); ok && id.AdministersDistrict(d) {
				owned = append(owned, h)
			}
		}
		return Scope{Districts: id.Districts, Neighborhoods: owned}, nil
	case authz.RoleNeighborhoodUser:
		if id.Neighborhood == "" {
			return Scope{Neighborhoods: []string{}}, nil
		}
		return Scope{Neighborhoods: []string{id.Neighborhood}}, nil
	default:
		return Scope{Neighborhoods: []string{}}, nil
	}
}

// CanWriteNeighborhood reports whether id may create, change or delete data
// of neighborhood. For district admins the neighborhood must map to exactly
// one district and that district must be administered by id.
func (p *Policy) CanWriteNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error) {
	if neighborhood == "" {
		return false, nil
	}
	switch id.Role {
	case authz.RoleSuperAdmin:
		return true, nil
	case authz.RoleDistrictAdmin:
		ix, err := p.index.Get(ctx)
		if err != nil {
			return false, err
		}
		d, ok := ix.DistrictOf(neighborhood)
		if !ok {
			return false, nil
		}
		return id.AdministersDistrict(d), nil
	case authz.RoleNeighborhoodUser:
		return id.Neighborhood == neighborhood, nil
	default:
		return false, nil
	}
}

// CanReadNeighborhood has the same rules as CanWriteNeighborhood.
func (p *Policy) CanReadNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error) {
	return p.CanWriteNeighborhood(ctx, id, neighborhood)
}

// CanManageDistricts reports whether id may add or remove district assignments.
func CanManageDistricts(id authz.Identity) bool {
	return id.IsSuperAdmin()
}
