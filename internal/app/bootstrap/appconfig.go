// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything the
// call-task domain needs lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // e.g. mongodb://localhost:27017
	MongoDatabase string

	// Session management configuration
	SessionKey    string // signs session cookies and derives the CSRF key
	SessionName   string // cookie name (default: mahallehub-session)
	SessionDomain string // blank means current host

	// SuperAdminIDs is the allow-list of national IDs with unrestricted scope.
	SuperAdminIDs []string

	// DefaultTaskCount is used when a create request omits the count.
	DefaultTaskCount int
	// TaskUpdateScopeCheck makes status updates require write scope on the
	// task's neighborhood. Off by default.
	TaskUpdateScopeCheck bool
	// DistrictIndexTTL bounds how long the neighborhood -> district index is
	// cached between invalidations.
	DistrictIndexTTL time.Duration

	Audit    auditlog.Config
	Timeouts timeouts.Config
}
