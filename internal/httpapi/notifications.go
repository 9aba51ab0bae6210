package httpapi

import "net/http"

// getNotifications returns the cached notification state without
// recomputing it. The error flag lets the UI distinguish an empty list
// from a failed fetch.
func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	body := map[string]interface{}{
		"notifications": s.center.Results(),
		"unread_count":  s.center.UnreadCount(),
		"loading":       s.center.IsLoading(),
	}
	if err := s.center.LastError(); err != nil {
		body["fetch_failed"] = true
	}

	writeJSON(w, http.StatusOK, body)
}

// refreshNotifications recomputes the notification set for the session
// and returns the new state. A fetch failure degrades to an empty set
// rather than an error response.
func (s *Server) refreshNotifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	s.center.Refresh(r.Context(), sess)
	s.getNotifications(w, r)
}

// acknowledgeNotifications zeroes the unread counter. The list itself
// is kept until the next refresh.
func (s *Server) acknowledgeNotifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	s.center.Acknowledge()
	writeSuccess(w, nil)
}
