// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
// Each value is "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only)
// or "off" (disabled).
type Config struct {
	// Auth covers login, logout and password events.
	Auth string
	// Admin covers assignment changes and citizen imports or edits.
	Admin string
	// Tasks covers call-task creation, status changes and deletion.
	Tasks string
}

// Uniform returns a Config using the same setting for every category.
func Uniform(setting string) Config {
	return Config{Auth: setting, Admin: setting, Tasks: setting}
}

// Actor identifies who performed an action.
type Actor struct {
	ID   string
	Name string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	case audit.CategoryTasks:
		return l.config.Tasks
	default:
		return "all"
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) fromRequest(r *http.Request, category, eventType string, actor Actor) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, actor Actor) {
	l.Log(ctx, l.fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, actor))
}

// LoginFailed logs a rejected login. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, attemptedID, reason string) {
	e := l.fromRequest(r, audit.CategoryAuth, eventType, Actor{})
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_national_id": attemptedID}
	l.Log(ctx, e)
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, actor Actor) {
	l.Log(ctx, l.fromRequest(r, audit.CategoryAuth, audit.EventLogout, actor))
}

// PasswordSet logs an account provisioning or password reset.
func (l *Logger) PasswordSet(ctx context.Context, actor Actor, nationalID string, created bool) {
	e := l.fromRequest(nil, audit.CategoryAuth, audit.EventPasswordSet, actor)
	e.Details = map[string]string{
		"national_id": nationalID,
		"created":     strconv.FormatBool(created),
	}
	l.Log(ctx, e)
}

// --- Admin Events ---

// DistrictAssigned logs a new district assignment.
func (l *Logger) DistrictAssigned(ctx context.Context, r *http.Request, actor Actor, nationalID, district string) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventDistrictAssigned, actor)
	e.Details = map[string]string{"national_id": nationalID, "district": district}
	l.Log(ctx, e)
}

// DistrictUnassigned logs the removal of a district assignment.
func (l *Logger) DistrictUnassigned(ctx context.Context, r *http.Request, actor Actor, nationalID, district string) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventDistrictUnassigned, actor)
	e.Details = map[string]string{"national_id": nationalID, "district": district}
	l.Log(ctx, e)
}

// NeighborhoodAssigned logs a neighborhood assignment (new or replaced).
func (l *Logger) NeighborhoodAssigned(ctx context.Context, r *http.Request, actor Actor, nationalID, neighborhood string) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventNeighborhoodAssigned, actor)
	e.Details = map[string]string{"national_id": nationalID, "neighborhood": neighborhood}
	l.Log(ctx, e)
}

// NeighborhoodUnassigned logs the removal of a neighborhood assignment.
func (l *Logger) NeighborhoodUnassigned(ctx context.Context, r *http.Request, actor Actor, nationalID string) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventNeighborhoodUnassigned, actor)
	e.Details = map[string]string{"national_id": nationalID}
	l.Log(ctx, e)
}

// CitizensImported logs a CSV import summary.
func (l *Logger) CitizensImported(ctx context.Context, r *http.Request, actor Actor, created, updated, skipped int) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventCitizensImported, actor)
	e.Details = map[string]string{
		"created": strconv.Itoa(created),
		"updated": strconv.Itoa(updated),
		"skipped": strconv.Itoa(skipped),
	}
	l.Log(ctx, e)
}

// CitizenUpdated logs an admin edit of a citizen.
func (l *Logger) CitizenUpdated(ctx context.Context, r *http.Request, actor Actor, nationalID string) {
	e := l.fromRequest(r, audit.CategoryAdmin, audit.EventCitizenUpdated, actor)
	e.Details = map[string]string{"national_id": nationalID}
	l.Log(ctx, e)
}

// --- Task Events ---

// TasksCreated logs one engine run.
func (l *Logger) TasksCreated(ctx context.Context, r *http.Request, actor Actor, neighborhood, week, batchID string, created, failed int) {
	e := l.fromRequest(r, audit.CategoryTasks, audit.EventTasksCreated, actor)
	e.Details = map[string]string{
		"neighborhood": neighborhood,
		"week":         week,
		"batch_id":     batchID,
		"created":      strconv.Itoa(created),
		"failed":       strconv.Itoa(failed),
	}
	l.Log(ctx, e)
}

// TaskStatusChanged logs a status transition.
func (l *Logger) TaskStatusChanged(ctx context.Context, r *http.Request, actor Actor, taskID, from, to string) {
	e := l.fromRequest(r, audit.CategoryTasks, audit.EventTaskStatusChanged, actor)
	e.Details = map[string]string{"task_id": taskID, "from": from, "to": to}
	l.Log(ctx, e)
}

// TasksDeleted logs a bulk delete for one neighborhood and week.
func (l *Logger) TasksDeleted(ctx context.Context, r *http.Request, actor Actor, neighborhood, week string, deleted int64) {
	e := l.fromRequest(r, audit.CategoryTasks, audit.EventTasksDeleted, actor)
	e.Details = map[string]string{
		"neighborhood": neighborhood,
		"week":         week,
		"deleted":      strconv.FormatInt(deleted, 10),
	}
	l.Log(ctx, e)
}
