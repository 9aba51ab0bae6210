package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amestudio/agencydesk/internal/calendar"
	"github.com/amestudio/agencydesk/internal/docmap"
	"github.com/amestudio/agencydesk/internal/duewindow"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

// taskSchema declares which fields of an incoming task document carry
// timestamps. Everything else passes through untouched.
var taskSchema = docmap.Schema{
	"due_date":   docmap.Timestamp(),
	"alert_date": docmap.Timestamp(),
}

// decodeTaskDoc reads the request body as a loosely typed document and
// normalizes its timestamp fields.
func decodeTaskDoc(r *http.Request) (map[string]interface{}, error) {
	var doc map[string]interface{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return docmap.Normalize(doc, taskSchema), nil
}

func docString(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func docTime(doc map[string]interface{}, key string) (time.Time, bool) {
	if v, ok := doc[key].(time.Time); ok {
		return v, true
	}
	return time.Time{}, false
}

// taskFromDoc builds a model.Task from a normalized document.
func (s *Server) taskFromDoc(r *http.Request, doc map[string]interface{}) (model.Task, string) {
	task := model.Task{
		Name:        docString(doc, "name"),
		Description: docString(doc, "description"),
		AssignedTo:  docString(doc, "assigned_to"),
		Priority:    docString(doc, "priority"),
		Status:      docString(doc, "status"),
	}

	if due, ok := docTime(doc, "due_date"); ok {
		task.DueDate = due
	}
	if alert, ok := docTime(doc, "alert_date"); ok {
		task.AlertDate = &alert
	}

	// The client reference is denormalized: resolve the name from the
	// canonical record so a stale display name can never be written.
	if clientID := docString(doc, "client_id"); clientID != "" {
		client, err := s.store.GetClientByID(r.Context(), clientID)
		if err != nil {
			return model.Task{}, "unknown client: " + clientID
		}
		task.ClientID = &client.ID
		task.ClientName = &client.Name
	}

	return task, ""
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	doc, err := decodeTaskDoc(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid task document: "+err.Error())
		return
	}

	task, msg := s.taskFromDoc(r, doc)
	if msg != "" {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateTask(r.Context(), task)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, created)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	q := r.URL.Query()
	filter := store.TaskFilter{SortBy: "due_date"}

	if statuses := q.Get("status"); statuses != "" {
		filter.Statuses = strings.Split(statuses, ",")
	}
	if clientID := q.Get("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if assigned := q.Get("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if search := q.Get("q"); search != "" {
		filter.Query = &search
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if days, err := strconv.Atoi(q.Get("due_within")); err == nil && days >= 0 {
		from, to := duewindow.Window(s.now(), days)
		filter.DueFrom = &from
		filter.DueTo = &to
	}

	tasks, err := s.store.GetTasks(r.Context(), filter)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	task, err := s.store.GetTaskByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	doc, err := decodeTaskDoc(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid task document: "+err.Error())
		return
	}

	task, msg := s.taskFromDoc(r, doc)
	if msg != "" {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}
	task.ID = r.PathValue("id")

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.GetTaskByID(r.Context(), task.ID)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, updated)
}

func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.UpdateTaskStatus(r.Context(), r.PathValue("id"), body.Status); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) setTaskAlert(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	doc, err := decodeTaskDoc(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alertDate, ok := docTime(doc, "alert_date")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "alert_date must be a valid timestamp")
		return
	}

	if err := s.store.SetTaskAlert(r.Context(), r.PathValue("id"), alertDate); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) clearTaskAlert(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if err := s.store.ClearTaskAlert(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) pushTaskToCalendar(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}

	if s.calendar == nil {
		writeFailure(w, http.StatusConflict, "calendar integration is not configured")
		return
	}

	task, err := s.store.GetTaskByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, http.StatusNotFound, err.Error())
		return
	}

	duration := time.Duration(s.calCfg.EventDurationMin) * time.Minute
	event, err := calendar.BuildEvent(*task, s.calCfg.TimeZone, duration)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted, err := s.calendar.Insert(r.Context(), s.calCfg.CalendarID, event)
	if err != nil {
		writeFailure(w, http.StatusBadGateway, err.Error())
		return
	}

	writeSuccess(w, inserted)
}
