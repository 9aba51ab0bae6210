package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/amestudio/agencydesk/internal/ai"
)

func (s *Server) assistantMessage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if s.assistant == nil {
		writeFailure(w, http.StatusConflict, "assistant is not configured")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.assistant.Ask(r.Context(), body.Message)
	if err != nil {
		writeFailure(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply": reply,
	})
}

func (s *Server) assistantReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if s.assistant == nil {
		writeFailure(w, http.StatusConflict, "assistant is not configured")
		return
	}

	s.assistant.Reset()
	writeSuccess(w, nil)
}

func (s *Server) suggestContent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if s.assistant == nil {
		writeFailure(w, http.StatusConflict, "assistant is not configured")
		return
	}

	var body struct {
		Brief string `json:"brief"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Brief == "" {
		writeFailure(w, http.StatusBadRequest, "brief is required")
		return
	}

	suggestion, err := s.assistant.SuggestContent(r.Context(), body.Brief)
	if err != nil {
		writeFailure(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestion": suggestion,
	})
}

// upcomingTasks exposes the assistant's upcoming-tasks tool directly.
// The response is success-shaped even on an internal failure; the
// summary then describes the error.
func (s *Server) upcomingTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	result := ai.UpcomingTasks(r.Context(), s.store, s.now())
	writeJSON(w, http.StatusOK, result)
}
