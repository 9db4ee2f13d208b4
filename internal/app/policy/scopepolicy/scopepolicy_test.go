package scopepolicy_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCitizens struct {
	pairs []citizenstore.NeighborhoodDistrict
	err   error
}

func (f *fakeCitizens) DistinctNeighborhoods(_ context.Context, districts []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, d := range districts {
		want[d] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range f.pairs {
		if want[p.District] && !seen[p.Neighborhood] {
			seen[p.Neighborhood] = true
			out = append(out, p.Neighborhood)
		}
	}
	return out, nil
}

func (f *fakeCitizens) NeighborhoodDistricts(context.Context) ([]citizenstore.NeighborhoodDistrict, error) {
	return f.pairs, f.err
}

func newPolicy(pairs ...citizenstore.NeighborhoodDistrict) (*scopepolicy.Policy, *fakeCitizens) {
	src := &fakeCitizens{pairs: pairs}
	return scopepolicy.New(src, districtindex.NewCache(src, 0, nil)), src
}

var (
	superAdmin = authz.Identity{NationalID: "11111111110", Role: authz.RoleSuperAdmin}
	merkezAdm  = authz.Identity{NationalID: "22222222220", Role: authz.RoleDistrictAdmin, Districts: []string{"Merkez"}}
	assignee   = authz.Identity{NationalID: "33333333330", Role: authz.RoleNeighborhoodUser, Neighborhood: "Yönetim"}
	member     = authz.Identity{NationalID: "44444444440", Role: authz.RoleMember}
)

func TestCalculate(t *testing.T) {
	p, _ := newPolicy(
		citizenstore.NeighborhoodDistrict{Neighborhood: "Yönetim", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Çarşı", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Bahçe", District: "Kuzey"},
	)
	ctx := context.Background()

	s, err := p.Calculate(ctx, superAdmin)
	require.NoError(t, err)
	assert.True(t, s.All)
	assert.Nil(t, s.Filter())
	assert.True(t, s.Includes("anything"))

	s, err = p.Calculate(ctx, merkezAdm)
	require.NoError(t, err)
	got := append([]string(nil), s.Neighborhoods...)
	sort.Strings(got)
	assert.Equal(t, []string{"Yönetim", "Çarşı"}, got)
	assert.False(t, s.Includes("Bahçe"))

	s, err = p.Calculate(ctx, assignee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Yönetim"}, s.Neighborhoods)

	s, err = p.Calculate(ctx, member)
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Filter())
	assert.Len(t, s.Filter(), 0)
}

func TestCalculate_MatchesNeighborhoodChecks(t *testing.T) {
	p, _ := newPolicy(
		citizenstore.NeighborhoodDistrict{Neighborhood: "Yönetim", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Sınır", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Sınır", District: "Kuzey"},
	)
	ctx := context.Background()

	s, err := p.Calculate(ctx, merkezAdm)
	require.NoError(t, err)
	assert.Equal(t, []string{"Yönetim"}, s.Neighborhoods)
	assert.False(t, s.Includes("Sınır"))

	for _, h := range s.Neighborhoods {
		ok, err := p.CanReadNeighborhood(ctx, merkezAdm, h)
		require.NoError(t, err)
		assert.True(t, ok, h)
	}
}

func TestCalculate_DistrictWithoutCitizens(t *testing.T) {
	p, _ := newPolicy()
	s, err := p.Calculate(context.Background(), merkezAdm)
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Filter())
}

func TestCanWriteNeighborhood(t *testing.T) {
	p, _ := newPolicy(
		citizenstore.NeighborhoodDistrict{Neighborhood: "Yönetim", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Bahçe", District: "Kuzey"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Sınır", District: "Merkez"},
		citizenstore.NeighborhoodDistrict{Neighborhood: "Sınır", District: "Kuzey"},
	)
	ctx := context.Background()

	tests := []struct {
		name string
		id   authz.Identity
		hood string
		want bool
	}{
		{"superadmin any", superAdmin, "Bahçe", true},
		{"superadmin empty", superAdmin, "", false},
		{"district own", merkezAdm, "Yönetim", true},
		{"district other", merkezAdm, "Bahçe", false},
		{"district unknown", merkezAdm, "Yok", false},
		{"district conflict fails closed", merkezAdm, "Sınır", false},
		{"assignee own", assignee, "Yönetim", true},
		{"assignee other", assignee, "Bahçe", false},
		{"member", member, "Yönetim", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.CanWriteNeighborhood(ctx, tt.id, tt.hood)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			read, err := p.CanReadNeighborhood(ctx, tt.id, tt.hood)
			require.NoError(t, err)
			assert.Equal(t, got, read)
		})
	}
}

func TestCanWriteNeighborhood_IndexError(t *testing.T) {
	p, src := newPolicy()
	src.err = errors.New("db down")
	_, err := p.CanWriteNeighborhood(context.Background(), merkezAdm, "Yönetim")
	assert.Error(t, err)

	// roles that do not need the index are unaffected
	ok, err := p.CanWriteNeighborhood(context.Background(), assignee, "Yönetim")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestCanManageDistricts(t *testing.T) {
	assert.True(t, scopepolicy.CanManageDistricts(superAdmin))
	assert.False(t, scopepolicy.CanManageDistricts(merkezAdm))
}
