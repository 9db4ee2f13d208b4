// Package citizenimport writes pre-scanned CSV rows into the citizens
// collection. It is shared by the upload endpoint and the admin CLI.
package citizenimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/csvutil"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/mahallehub/internal/app/system/invalidate"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store reads and stores citizens keyed by national ID.
type Store interface {
	// GetByNationalID returns mongo.ErrNoDocuments for an unknown citizen.
	GetByNationalID(ctx context.Context, nationalID string) (*models.Citizen, error)
	Upsert(ctx context.Context, c models.Citizen) (created bool, err error)
}

// IndexSource supplies the neighborhood -> district index.
type IndexSource interface {
	Get(ctx context.Context) (*districtindex.Index, error)
}

// Summary reports what one import did.
type Summary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	// Skipped lists rows outside the importer's districts, including rows
	// that would move a citizen or a neighborhood out of another district.
	Skipped []csvutil.RowError `json:"skipped"`
	// Failed lists rows that hit a storage error.
	Failed []csvutil.RowError `json:"failed"`
}

// Importer applies rows to the store and signals a citizen change.
type Importer struct {
	store    Store
	index    IndexSource
	notifier invalidate.Notifier
	log      *zap.Logger
}

// New builds an Importer. index may be nil, in which case restricted imports
// only check the stored citizen's district.
func New(store Store, index IndexSource, notifier invalidate.Notifier, logger *zap.Logger) *Importer {
	if notifier == nil {
		notifier = invalidate.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, index: index, notifier: notifier, log: logger}
}

// Run upserts rows. A nil districts slice allows every row. Otherwise a row
// is written only when its district is in districts, the stored citizen (if
// any) belongs to one of them, and its neighborhood is not recorded under
// any other district. The rest are reported as skipped.
//
// Rows are written one at a time; a storage error on one row does not stop
// the others. The invalidation signal fires once if anything was written.
func (im *Importer) Run(ctx context.Context, rows []csvutil.CitizenCSVRow, districts []string) Summary {
	allowed := map[string]bool{}
	for _, d := range districts {
		allowed[d] = true
	}

	sum := Summary{Skipped: []csvutil.RowError{}, Failed: []csvutil.RowError{}}

	var ix *districtindex.Index
	if districts != nil && im.index != nil {
		var err error
		ix, err = im.index.Get(ctx)
		if err != nil {
			im.log.Error("citizen import: load district index", zap.Error(err))
			for _, row := range rows {
				sum.Failed = append(sum.Failed, csvutil.RowError{Line: row.Line, NationalID: row.NationalID, Reason: "storage error"})
			}
			return sum
		}
	}

	for _, row := range rows {
		if districts != nil {
			reason, err := im.restricted(ctx, row, allowed, ix)
			if err != nil {
				im.log.Error("citizen import: load existing citizen",
					zap.Int("line", row.Line),
					zap.String("national_id", row.NationalID),
					zap.Error(err))
				sum.Failed = append(sum.Failed, csvutil.RowError{Line: row.Line, NationalID: row.NationalID, Reason: "storage error"})
				continue
			}
			if reason != "" {
				sum.Skipped = append(sum.Skipped, csvutil.RowError{Line: row.Line, NationalID: row.NationalID, Reason: reason})
				continue
			}
		}

		c := models.Citizen{
			NationalID:   row.NationalID,
			FullName:     row.FullName,
			District:     row.District,
			Neighborhood: row.Neighborhood,
			Duty:         htmlsanitize.PlainText(row.Duty),
		}
		if p := strings.TrimSpace(row.Phone); p != "" {
			c.Phone = &p
		}

		created, err := im.store.Upsert(ctx, c)
		if err != nil {
			im.log.Error("citizen upsert failed",
				zap.Int("line", row.Line),
				zap.String("national_id", row.NationalID),
				zap.Error(err))
			sum.Failed = append(sum.Failed, csvutil.RowError{Line: row.Line, NationalID: row.NationalID, Reason: "storage error"})
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
	}

	if sum.Created+sum.Updated > 0 {
		im.notifier.CitizensChanged(ctx, "citizens imported")
	}
	im.log.Info("citizen import finished",
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", len(sum.Skipped)),
		zap.Int("failed", len(sum.Failed)))
	return sum
}

// restricted returns a non-empty reason when row falls outside allowed.
func (im *Importer) restricted(ctx context.Context, row csvutil.CitizenCSVRow, allowed map[string]bool, ix *districtindex.Index) (string, error) {
	if !allowed[row.District] {
		return fmt.Sprintf("district %q is outside your districts", row.District), nil
	}
	for _, d := range ix.Districts(row.Neighborhood) {
		if !allowed[d] {
			return fmt.Sprintf("neighborhood %q belongs to district %q", row.Neighborhood, d), nil
		}
	}

	existing, err := im.store.GetByNationalID(ctx, row.NationalID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !allowed[existing.District] {
		return fmt.Sprintf("citizen belongs to district %q", existing.District), nil
	}
	return "", nil
}
