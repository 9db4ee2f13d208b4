package errors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) apierrors.Detail {
	t.Helper()
	var b struct {
		Error apierrors.Detail `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("bad json %q: %v", rec.Body.String(), err)
	}
	return b.Error
}

func TestFromError(t *testing.T) {
	signedIn := testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.MemberID, "Üye")
	anon := httptest.NewRequest("GET", "/", nil)

	tests := []struct {
		name     string
		r        *http.Request
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", signedIn, fmt.Errorf("%w: neighborhood is required", taskassign.ErrValidation), 400, "validation"},
		{"invalid status", signedIn, taskassign.ErrInvalidStatus, 400, "invalid_status"},
		{"not found", signedIn, taskassign.ErrNotFound, 404, "not_found"},
		{"soft empty", signedIn, taskassign.ErrNoEligibleCitizens, 200, "no_eligible_citizens"},
		{"forbidden", signedIn, taskassign.ErrUnauthorized, 403, "unauthorized"},
		{"unauthenticated", anon, taskassign.ErrUnauthorized, 401, "unauthorized"},
		{"storage", signedIn, fmt.Errorf("%w: secret driver text", taskassign.ErrStorage), 500, "storage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			apierrors.FromError(rec, tt.r, zap.NewNop(), "op", tt.err)
			if rec.Code != tt.wantCode {
				t.Errorf("code: got %d, want %d", rec.Code, tt.wantCode)
			}
			d := decode(t, rec)
			if d.Kind != tt.wantKind {
				t.Errorf("kind: got %q, want %q", d.Kind, tt.wantKind)
			}
			if strings.Contains(d.Message, "secret driver text") {
				t.Error("storage details leaked into the response")
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	apierrors.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("code=%d ct=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(rec.Body.String()) != `{"n":1}` {
		t.Errorf("body: %q", rec.Body.String())
	}
}
