// internal/app/store/citizens/citizenstore.go
package citizenstore

import (
	"context"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/system/paging"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("citizens")}
}

// normalizePhone trims the phone; blank phones are stored as absent.
func normalizePhone(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Upsert inserts or updates a citizen keyed by national ID.
// It reports whether a new document was created.
func (s *Store) Upsert(ctx context.Context, c models.Citizen) (bool, error) {
	now := time.Now().UTC()
	name := strings.TrimSpace(c.FullName)

	set := bson.M{
		"full_name":    name,
		"full_name_ci": text.Fold(name),
		"district":     strings.TrimSpace(c.District),
		"neighborhood": strings.TrimSpace(c.Neighborhood),
		"duty":         strings.TrimSpace(c.Duty),
		"updated_at":   now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"national_id": c.NationalID, "created_at": now},
	}
	if p := normalizePhone(c.Phone); p != nil {
		set["phone"] = *p
	} else {
		update["$unset"] = bson.M{"phone": ""}
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"national_id": c.NationalID},
		update,
		options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetByNationalID returns mongo.ErrNoDocuments if the citizen does not exist.
func (s *Store) GetByNationalID(ctx context.Context, nationalID string) (*models.Citizen, error) {
	var c models.Citizen
	if err := s.c.FindOne(ctx, bson.M{"national_id": nationalID}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CitizenUpdate holds the admin-editable fields of a citizen.
type CitizenUpdate struct {
	FullName string
	Phone    *string
	Duty     string
}

// Update edits a citizen. Returns mongo.ErrNoDocuments if nothing matched.
func (s *Store) Update(ctx context.Context, nationalID string, upd CitizenUpdate) error {
	name := strings.TrimSpace(upd.FullName)
	set := bson.M{
		"full_name":    name,
		"full_name_ci": text.Fold(name),
		"duty":         strings.TrimSpace(upd.Duty),
		"updated_at":   time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if p := normalizePhone(upd.Phone); p != nil {
		set["phone"] = *p
	} else {
		update["$unset"] = bson.M{"phone": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"national_id": nationalID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter selects citizens. A nil Neighborhoods slice means no
// neighborhood restriction; an empty non-nil slice matches nothing.
type ListFilter struct {
	Neighborhoods []string
	Search        string // folded prefix match on full name
	WithPhoneOnly bool
}

func (f ListFilter) bson() bson.M {
	q := bson.M{}
	if f.Neighborhoods != nil {
		q["neighborhood"] = bson.M{"$in": f.Neighborhoods}
	}
	if s := text.Fold(strings.TrimSpace(f.Search)); s != "" {
		q["full_name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(s)}
	}
	if f.WithPhoneOnly {
		q["phone"] = bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
	}
	return q
}

const listSortField = "full_name_ci"

// List returns one page of citizens matching f, ordered by folded name.
func (s *Store) List(ctx context.Context, f ListFilter, pg paging.Request) ([]models.Citizen, paging.Page, error) {
	ks := paging.ConfigureKeyset(pg)
	if f.Neighborhoods != nil && len(f.Neighborhoods) == 0 {
		return nil, paging.Page{Limit: ks.Limit}, nil
	}

	q := f.bson()
	if win := ks.Window(listSortField); win != nil {
		if cond, ok := q[listSortField]; ok {
			// Search and cursor both constrain full_name_ci.
			delete(q, listSortField)
			q["$and"] = bson.A{bson.M{listSortField: cond}, win}
		} else {
			maps.Copy(q, win)
		}
	}
	find := options.Find()
	ks.ApplyToFind(find, listSortField)

	cur, err := s.c.Find(ctx, q, find)
	if err != nil {
		return nil, paging.Page{}, err
	}
	defer cur.Close(ctx)

	var out []models.Citizen
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Page{}, err
	}
	out, page := paging.Finish(ks, out,
		func(c models.Citizen) string { return c.FullNameCI },
		func(c models.Citizen) primitive.ObjectID { return c.ID })
	return out, page, nil
}

// DistinctNeighborhoods returns the neighborhoods whose citizens belong to any
// of the given districts.
func (s *Store) DistinctNeighborhoods(ctx context.Context, districts []string) ([]string, error) {
	if len(districts) == 0 {
		return nil, nil
	}
	vals, err := s.c.Distinct(ctx, "neighborhood", bson.M{"district": bson.M{"$in": districts}})
	if err != nil {
		return nil, err
	}
	return toStrings(vals), nil
}

// NeighborhoodDistrict is one observed (neighborhood, district) pairing.
type NeighborhoodDistrict struct {
	Neighborhood string `bson:"neighborhood"`
	District     string `bson:"district"`
}

// NeighborhoodDistricts returns every distinct (neighborhood, district) pair.
func (s *Store) NeighborhoodDistricts(ctx context.Context) ([]NeighborhoodDistrict, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"neighborhood": "$neighborhood", "district": "$district"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"neighborhood": "$_id.neighborhood",
			"district":     "$_id.district",
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []NeighborhoodDistrict
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleEligible draws up to n random citizens of the neighborhood that have a
// phone and whose national ID is not in exclude. Sampling is without
// replacement.
func (s *Store) SampleEligible(ctx context.Context, neighborhood string, exclude []string, n int) ([]models.Citizen, error) {
	if n <= 0 {
		return nil, nil
	}
	match := ListFilter{Neighborhoods: []string{neighborhood}, WithPhoneOnly: true}.bson()
	if len(exclude) > 0 {
		match["national_id"] = bson.M{"$nin": exclude}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Citizen
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toStrings(vals []interface{}) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
