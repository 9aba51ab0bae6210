package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	var inv model.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid invoice document")
		return
	}

	created, err := s.store.CreateInvoice(r.Context(), inv)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, created)
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	q := r.URL.Query()
	filter := store.InvoiceFilter{}
	if clientID := q.Get("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	invoices, err := s.store.GetInvoices(r.Context(), filter)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(invoices),
		"invoices": invoices,
	})
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	inv, err := s.store.GetInvoiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) updateInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	var inv model.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid invoice document")
		return
	}
	inv.ID = r.PathValue("id")

	if err := s.store.UpdateInvoice(r.Context(), inv); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) payInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if err := s.store.MarkInvoicePaid(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}
