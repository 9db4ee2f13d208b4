// Package districtindex maintains the neighborhood -> district map derived
// from citizen records.
//
// Every neighborhood is expected to belong to exactly one district. When the
// citizen data shows a neighborhood under more than one district, the index
// records the conflict and DistrictOf reports the neighborhood as unknown so
// that district-level access checks fail closed.
package districtindex

import (
	"context"
	"sort"
	"time"

	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultTTL is how long a built index is reused when no invalidation arrives.
const DefaultTTL = 5 * time.Minute

const indexKey = "neighborhood_district_index"

// Source supplies the observed (neighborhood, district) pairs.
type Source interface {
	NeighborhoodDistricts(ctx context.Context) ([]citizenstore.NeighborhoodDistrict, error)
}

// Index is an immutable snapshot of the derived map.
type Index struct {
	districtOf map[string]string
	conflicts  map[string][]string
}

// Build derives an Index from pairs. Empty neighborhoods are ignored.
func Build(pairs []citizenstore.NeighborhoodDistrict) *Index {
	seen := make(map[string]map[string]struct{})
	for _, p := range pairs {
		if p.Neighborhood == "" {
			continue
		}
		if seen[p.Neighborhood] == nil {
			seen[p.Neighborhood] = make(map[string]struct{})
		}
		seen[p.Neighborhood][p.District] = struct{}{}
	}

	ix := &Index{
		districtOf: make(map[string]string, len(seen)),
		conflicts:  make(map[string][]string),
	}
	for n, ds := range seen {
		if len(ds) == 1 {
			for d := range ds {
				ix.districtOf[n] = d
			}
			continue
		}
		list := make([]string, 0, len(ds))
		for d := range ds {
			list = append(list, d)
		}
		sort.Strings(list)
		ix.conflicts[n] = list
	}
	return ix
}

// DistrictOf returns the district that owns neighborhood. ok is false when the
// neighborhood is unknown or maps to more than one district.
func (ix *Index) DistrictOf(neighborhood string) (district string, ok bool) {
	if ix == nil {
		return "", false
	}
	district, ok = ix.districtOf[neighborhood]
	return district, ok
}

// Districts returns every district neighborhood has been observed under:
// one entry normally, several on a conflict, none when it is unknown.
func (ix *Index) Districts(neighborhood string) []string {
	if ix == nil {
		return nil
	}
	if d, ok := ix.districtOf[neighborhood]; ok {
		return []string{d}
	}
	return ix.conflicts[neighborhood]
}

// Conflicts returns neighborhoods observed under more than one district.
func (ix *Index) Conflicts() map[string][]string {
	if ix == nil {
		return nil
	}
	return ix.conflicts
}

// Cache builds the Index on demand and keeps it for a TTL.
type Cache struct {
	src Source
	c   *cache.Cache
	log *zap.Logger
}

// NewCache returns a Cache backed by src. ttl <= 0 uses DefaultTTL.
func NewCache(src Source, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		src: src,
		c:   cache.New(ttl, 2*ttl),
		log: log,
	}
}

// Get returns the cached Index, rebuilding it when missing or expired.
func (c *Cache) Get(ctx context.Context) (*Index, error) {
	if v, ok := c.c.Get(indexKey); ok {
		return v.(*Index), nil
	}

	pairs, err := c.src.NeighborhoodDistricts(ctx)
	if err != nil {
		return nil, err
	}
	ix := Build(pairs)
	for n, ds := range ix.Conflicts() {
		c.log.Warn("neighborhood belongs to more than one district",
			zap.String("neighborhood", n),
			zap.Strings("districts", ds))
	}
	c.c.Set(indexKey, ix, cache.DefaultExpiration)
	return ix, nil
}

// Invalidate drops the cached Index; the next Get rebuilds it.
func (c *Cache) Invalidate() {
	c.c.Delete(indexKey)
}
