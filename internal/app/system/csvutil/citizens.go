// internal/app/system/csvutil/citizens.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
)

// ErrTooManyRows is returned when the file exceeds MaxRows data rows.
var ErrTooManyRows = fmt.Errorf("csv has more than %d rows", MaxRows)

// Column order of a citizen import file.
var citizenColumns = []string{"national_id", "full_name", "phone", "district", "neighborhood", "duty"}

// CitizenCSVRow is the normalized row produced by PreScanCitizensCSV.
type CitizenCSVRow struct {
	Line         int    `json:"line"`
	NationalID   string `json:"national_id" validate:"required,nationalid"`
	FullName     string `json:"full_name" validate:"notblank,max=200"`
	Phone        string `json:"phone" validate:"max=32"`
	District     string `json:"district" validate:"max=120"`
	Neighborhood string `json:"neighborhood" validate:"notblank,max=120"`
	Duty         string `json:"duty" validate:"max=500"`
}

// RowError describes one rejected line.
type RowError struct {
	Line       int    `json:"line"`
	NationalID string `json:"national_id,omitempty"`
	Reason     string `json:"reason"`
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")))
	switch first {
	case "national_id", "national id", "tc", "tc kimlik no", "tckn":
		return true
	}
	return false
}

// PreScanCitizensCSV reads all rows from r, skips a header if present and
// validates each row. It returns either the normalized rows or the list of bad
// rows (capped at MaxReportedErrors). It never writes to a DB; it's safe to
// call before any mutations.
func PreScanCitizensCSV(r io.Reader) (rows []CitizenCSVRow, rowErrs []RowError, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[string]int)
	line := 0
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		line++
		if e != nil {
			var perr *csv.ParseError
			if errors.As(e, &perr) {
				rowErrs = append(rowErrs, RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, e
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if blank(rec) {
			continue
		}
		if len(rows)+len(rowErrs) >= MaxRows {
			return nil, nil, ErrTooManyRows
		}

		row := normalize(rec, line)
		if verr := inputval.Struct(row); verr != nil {
			rowErrs = append(rowErrs, RowError{Line: line, NationalID: row.NationalID, Reason: verr.Error()})
			continue
		}
		if prev, dup := seen[row.NationalID]; dup {
			rowErrs = append(rowErrs, RowError{
				Line: line, NationalID: row.NationalID,
				Reason: fmt.Sprintf("national_id repeats line %d", prev),
			})
			continue
		}
		seen[row.NationalID] = line
		rows = append(rows, row)
	}

	if len(rowErrs) > 0 {
		if len(rowErrs) > MaxReportedErrors {
			rowErrs = rowErrs[:MaxReportedErrors]
		}
		return nil, rowErrs, nil
	}
	return rows, nil, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func normalize(rec []string, line int) CitizenCSVRow {
	get := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	return CitizenCSVRow{
		Line:         line,
		NationalID:   strings.TrimPrefix(get(0), "\ufeff"),
		FullName:     get(1),
		Phone:        get(2),
		District:     get(3),
		Neighborhood: get(4),
		Duty:         get(5),
	}
}

// CitizenColumns returns the expected column order.
func CitizenColumns() []string {
	return append([]string(nil), citizenColumns...)
}
