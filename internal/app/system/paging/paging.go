// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in a page.
const PageSize = 50

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 200

// Request is a keyset page request. At most one of Before and After is set.
type Request struct {
	Limit  int
	Before string
	After  string
}

// ParseRequest reads limit, before and after from the query string. A
// missing or invalid limit uses PageSize; larger values are capped.
func ParseRequest(r *http.Request) Request {
	req := Request{
		Limit:  PageSize,
		Before: strings.TrimSpace(query.Get(r, "before")),
		After:  strings.TrimSpace(query.Get(r, "after")),
	}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			req.Limit = n
		}
	}
	return req.normalized()
}

func (p Request) normalized() Request {
	if p.Limit <= 0 {
		p.Limit = PageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Before != "" {
		p.After = ""
	}
	return p
}

// Page describes where a returned slice sits. Prev and Next are cursors for
// the neighbouring pages and are empty when there is none.
type Page struct {
	Limit   int    `json:"limit"`
	HasPrev bool   `json:"has_prev"`
	HasNext bool   `json:"has_next"`
	Prev    string `json:"prev,omitempty"`
	Next    string `json:"next,omitempty"`
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // ascending, "gt" cursor
	Backward                  // descending, "lt" cursor
)

// Keyset is a decoded page request ready to apply to a query.
type Keyset struct {
	Request
	Direction Direction
	SortOrder int
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset decodes the cursor of p. An undecodable cursor is treated
// as absent, which restarts from the first page.
func ConfigureKeyset(p Request) Keyset {
	p = p.normalized()
	ks := Keyset{Request: p, Direction: Forward, SortOrder: 1}
	switch {
	case p.Before != "":
		ks.Direction = Backward
		ks.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(p.Before); ok {
			ks.Cursor = &c
		}
	case p.After != "":
		if c, ok := wafflemongo.DecodeCursor(p.After); ok {
			ks.Cursor = &c
		}
	}
	return ks
}

// ApplyToFind sorts on sortField then _id and fetches one extra row to
// detect a following page.
func (ks Keyset) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: ks.SortOrder},
		{Key: "_id", Value: ks.SortOrder},
	}).SetLimit(int64(ks.Limit + 1))
}

// Window returns the cursor condition to merge into the filter, or nil.
func (ks Keyset) Window(sortField string) bson.M {
	if ks.Cursor == nil {
		return nil
	}
	dir := "gt"
	if ks.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, ks.Cursor.CI, ks.Cursor.ID)
}

// Finish restores display order, trims the look-ahead row and builds the
// cursors. keyFn and idFn extract the sort key and _id of a row.
func Finish[T any](ks Keyset, rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) ([]T, Page) {
	if ks.Direction == Backward {
		Reverse(rows)
	}
	page := Page{Limit: ks.Limit}
	if ks.Direction == Backward {
		if len(rows) > ks.Limit {
			rows = rows[1:]
			page.HasPrev = true
		}
		page.HasNext = true
	} else {
		if len(rows) > ks.Limit {
			rows = rows[:ks.Limit]
			page.HasNext = true
		}
		page.HasPrev = ks.After != ""
	}
	if len(rows) > 0 {
		first, last := rows[0], rows[len(rows)-1]
		if page.HasPrev {
			page.Prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
		}
		if page.HasNext {
			page.Next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
		}
	}
	return rows, page
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
