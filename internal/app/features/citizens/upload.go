// internal/app/features/citizens/upload.go
package citizens

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/citizenimport"
	"github.com/dalemusser/mahallehub/internal/app/system/csvutil"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
)

type uploadResponse struct {
	citizenimport.Summary
	Columns []string `json:"columns"`
}

type rejectedResponse struct {
	Error   apierrors.Detail   `json:"error"`
	Rows    []csvutil.RowError `json:"rows"`
	Columns []string           `json:"columns"`
}

// HandleUpload handles POST /citizens/upload_csv with a multipart "csv" file.
// The whole file is validated before anything is written; one bad row
// rejects the upload. District admins may only import rows of their own
// districts; other rows are skipped and reported.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
		return
	}
	if !id.IsSuperAdmin() && !id.IsDistrictAdmin() {
		apierrors.Unauthorized(w, r, "only administrators can import citizens")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	file, _, err := r.FormFile("csv")
	if err != nil {
		msg := "csv file is required"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "csv file is too large; maximum size is 5 MB"
		}
		apierrors.Validation(w, msg)
		return
	}
	defer file.Close()

	rows, rowErrs, err := csvutil.PreScanCitizensCSV(file)
	switch {
	case errors.Is(err, csvutil.ErrTooManyRows):
		apierrors.Validation(w, err.Error())
		return
	case err != nil:
		apierrors.Validation(w, "could not read csv file")
		return
	case len(rowErrs) > 0:
		apierrors.WriteJSON(w, http.StatusBadRequest, rejectedResponse{
			Error:   apierrors.Detail{Kind: taskassign.KindValidation, Message: "csv contains invalid rows; nothing was imported"},
			Rows:    rowErrs,
			Columns: csvutil.CitizenColumns(),
		})
		return
	}

	var districts []string
	if !id.IsSuperAdmin() {
		districts = id.Districts
		if districts == nil {
			districts = []string{}
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "citizens import")
	defer cancel()

	sum := h.Importer.Run(ctx, rows, districts)
	h.AuditLog.CitizensImported(ctx, r, actor(id), sum.Created, sum.Updated, len(sum.Skipped))

	apierrors.WriteJSON(w, http.StatusOK, uploadResponse{Summary: sum, Columns: csvutil.CitizenColumns()})
}
