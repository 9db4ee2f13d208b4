package health

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConflictCounter reports neighborhoods recorded under more than one
// district.
type ConflictCounter interface {
	Conflicts() int
}

type Handler struct {
	Client *mongo.Client
	Index  ConflictCounter
	Log    *zap.Logger
}

// NewHandler builds the health handler. index may be nil.
func NewHandler(client *mongo.Client, index ConflictCounter, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Index: index, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	// DistrictConflicts is informational; conflicts do not fail the check.
	DistrictConflicts *int   `json:"district_conflicts,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Serve handles GET /health: 200 with {"status":"ok","database":"connected"}
// when MongoDB answers a ping, 503 otherwise.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		apierrors.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Message:  "Database unavailable",
		})
		return
	}

	resp := healthResponse{Status: "ok", Database: "connected"}
	if h.Index != nil {
		n := h.Index.Conflicts()
		resp.DistrictConflicts = &n
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}
