package httpapi

import (
	"net/http"

	"github.com/amestudio/agencydesk/internal/digest"
	"github.com/amestudio/agencydesk/internal/duewindow"
	"github.com/amestudio/agencydesk/internal/model"
)

// digestHorizonDays covers today plus two more days, matching the
// assistant's upcoming-tasks horizon.
const digestHorizonDays = 2

// sendDigest composes the upcoming-task email digest and ships it to
// the configured recipients. Attempt-once; there is no outbox.
func (s *Server) sendDigest(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if !s.digestCfg.Enabled {
		writeFailure(w, http.StatusConflict, "email digest is not configured")
		return
	}

	tasks, err := duewindow.Select(r.Context(), s.store, duewindow.Params{
		Now:         s.now(),
		HorizonDays: digestHorizonDays,
		Statuses:    model.ActiveStatuses,
	})
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	msg, err := digest.Build(s.digestCfg.From, s.digestCfg.To, tasks, s.now())
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := digest.Send(s.digestCfg.SMTPAddr, s.digestCfg.From, s.digestCfg.To, msg); err != nil {
		writeFailure(w, http.StatusBadGateway, err.Error())
		return
	}

	writeSuccess(w, map[string]interface{}{
		"recipients": len(s.digestCfg.To),
		"tasks":      len(tasks),
	})
}
