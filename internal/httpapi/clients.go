package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/amestudio/agencydesk/internal/model"
)

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid client document")
		return
	}

	created, err := s.store.CreateClient(r.Context(), client)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, created)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	clients, err := s.store.GetClients(r.Context())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(clients),
		"clients": clients,
	})
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	client, err := s.store.GetClientByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, client)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	var client model.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid client document")
		return
	}
	client.ID = r.PathValue("id")

	if err := s.store.UpdateClient(r.Context(), client); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if err := s.store.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}
