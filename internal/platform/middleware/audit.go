package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/platform/auth"
)

// AuditEntry records who touched which patient data, when and from where.
type AuditEntry struct {
	UserID     string
	Resource   string
	ResourceID string
	PatientID  string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every authenticated /api/ request touching patient data as a
// "phi_access" event. Auth endpoints are not audited. If a recorder is given
// entries are also passed to it; recorder failures are logged, never returned.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: status,
				UserID:     auth.UserIDFromContext(req.Context()),
				Action:     httpMethodToAction(req.Method),
			}
			if rid, ok := c.Get(requestIDKey).(string); ok {
				entry.RequestID = rid
			}
			entry.Resource, entry.ResourceID = extractResource(path)
			entry.PatientID = extractPatientID(c)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("phi_access")

			return err
		}
	}
}

func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/api/auth/")
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource returns the first segment after /api/ and, when present,
// the id that follows it. Admin routes are keyed by their second segment:
//
//	/api/visits/<id>             -> visits, <id>
//	/api/admin/nurses/<id>/role  -> nurses, <id>
func extractResource(path string) (resource, id string) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/"), "/"), "/")
	if len(segments) > 0 && segments[0] == "admin" {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return "unknown", ""
	}
	resource = segments[0]
	if len(segments) > 1 && isUUIDLike(segments[1]) {
		id = segments[1]
	}
	return resource, id
}

// extractPatientID finds a patient id in /api/patients/<id>, the
// /api/admin/patients/<id> variant, or a patient_id query parameter.
func extractPatientID(c echo.Context) string {
	path := c.Request().URL.Path
	for _, prefix := range []string{"/api/patients/", "/api/admin/patients/"} {
		if strings.HasPrefix(path, prefix) {
			seg := strings.SplitN(strings.TrimPrefix(path, prefix), "/", 2)[0]
			if isUUIDLike(seg) {
				return seg
			}
		}
	}
	if segs := strings.Split(path, "/"); len(segs) >= 5 && segs[3] == "patient" && isUUIDLike(segs[4]) {
		// /api/visits/patient/<id>, /api/interventions/patient/<id>, ...
		return segs[4]
	}
	if p := c.QueryParam("patient_id"); isUUIDLike(p) {
		return p
	}
	return ""
}

func isUUIDLike(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
