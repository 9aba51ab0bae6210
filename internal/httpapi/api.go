// Package httpapi exposes the application over a JSON HTTP API. It is
// the surface the (externally rendered) UI talks to.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amestudio/agencydesk/internal/ai"
	"github.com/amestudio/agencydesk/internal/calendar"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/notify"
	"github.com/amestudio/agencydesk/internal/store"
)

// Server holds the handlers' dependencies. Assistant and calendar may
// be nil when the corresponding integration is not configured.
type Server struct {
	store     store.Store
	center    *notify.Center
	assistant *ai.Assistant
	calendar  *calendar.Client
	calCfg    model.CalendarConfig
	digestCfg model.DigestConfig
	log       *logrus.Logger
	now       func() time.Time
}

// NewServer creates the API server.
func NewServer(
	s store.Store,
	center *notify.Center,
	assistant *ai.Assistant,
	cal *calendar.Client,
	calCfg model.CalendarConfig,
	digestCfg model.DigestConfig,
	log *logrus.Logger,
) *Server {
	return &Server{
		store:     s,
		center:    center,
		assistant: assistant,
		calendar:  cal,
		calCfg:    calCfg,
		digestCfg: digestCfg,
		log:       log,
		now:       time.Now,
	}
}

// session identifies the authenticated user. Authentication itself is
// delegated to the identity provider in front of this API; the user id
// arrives in a trusted header.
func (s *Server) session(r *http.Request) notify.Session {
	return notify.Session{UserID: r.Header.Get("X-User-ID")}
}

// requireSession short-circuits requests without a user id before any
// store access is attempted.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (notify.Session, bool) {
	sess := s.session(r)
	if sess.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "missing user session",
		})
		return sess, false
	}
	return sess, true
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure reports a failed write operation as a result value, not
// an HTTP error page: callers handle the user-facing messaging.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeSuccess reports a successful write operation.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	body := map[string]interface{}{"success": true}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, http.StatusOK, body)
}
