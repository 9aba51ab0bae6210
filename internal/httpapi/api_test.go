package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/amestudio/agencydesk/internal/httpapi"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/notify"
	"github.com/amestudio/agencydesk/internal/store"
	"github.com/amestudio/agencydesk/tests/testutil"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestAPI wires a server around an in-memory store. Assistant and
// calendar stay unconfigured.
func newTestAPI(t *testing.T) (*store.SQLiteStore, http.Handler) {
	t.Helper()

	s := testutil.NewTestStore(t)
	center := notify.NewCenter(s, discardLogger())
	srv := httpapi.NewServer(s, center, nil, nil, model.CalendarConfig{}, model.DigestConfig{}, discardLogger())
	return s, srv.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestMissingSessionShortCircuits(t *testing.T) {
	_, h := newTestAPI(t)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPost, "/api/notifications/refresh"},
		{http.MethodGet, "/api/tools/upcoming-tasks"},
	} {
		rec := doRequest(t, h, route.method, route.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != false || body["error"] != "missing user session" {
			t.Fatalf("%s %s: unexpected body %v", route.method, route.path, body)
		}
	}
}

func TestCreateTask_NormalizesTimestampFormats(t *testing.T) {
	s, h := newTestAPI(t)

	// Epoch millis and an ISO string in the same document.
	payload := `{
		"name": "Publicar reel",
		"due_date": "2026-09-01T10:00:00Z",
		"alert_date": 1756719000000
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/tasks", "ana", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	data := body["data"].(map[string]interface{})
	id := data["id"].(string)

	task, err := s.GetTaskByID(context.Background(), id)
	if err != nil {
		t.Fatalf("loading created task: %v", err)
	}
	if task.DueDate.IsZero() {
		t.Fatal("expected due date persisted")
	}
	if task.AlertDate == nil {
		t.Fatal("expected epoch-millis alert date persisted")
	}
	if task.Status != model.StatusPending || task.Priority != model.PriorityMedium {
		t.Fatalf("expected defaults applied, got %q/%q", task.Status, task.Priority)
	}
}

func TestCreateTask_FailureIsResultShaped(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", "ana",
		`{"name": "Sin fecha"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body)
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Fatalf("expected a failure message, got %v", body)
	}
}

func TestCreateTask_RejectsUnknownClient(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks", "ana",
		`{"name": "x", "due_date": "2026-09-01T10:00:00Z", "client_id": "nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg, _ := body["message"].(string); !strings.Contains(msg, "unknown client") {
		t.Fatalf("expected unknown-client message, got %v", body)
	}
}

func TestCreateTask_ResolvesClientNameFromCanonicalRecord(t *testing.T) {
	s, h := newTestAPI(t)

	client := testutil.MustCreateClient(t, s, model.Client{Name: "Viajes Eltra"})

	payload := fmt.Sprintf(
		`{"name": "Campaña verano", "due_date": "2026-09-01T10:00:00Z", "client_id": %q}`,
		client.ID)
	rec := doRequest(t, h, http.MethodPost, "/api/tasks", "ana", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["client_name"] != "Viajes Eltra" {
		t.Fatalf("expected client name resolved from the record, got %v", data["client_name"])
	}
}

func TestListTasks_DueWithinFilter(t *testing.T) {
	s, h := newTestAPI(t)

	testutil.MustCreateTask(t, s, model.Task{Name: "cercana", DueDate: testutil.DueIn(12)})
	testutil.MustCreateTask(t, s, model.Task{Name: "lejana", DueDate: testutil.DueIn(24 * 10)})

	rec := doRequest(t, h, http.MethodGet, "/api/tasks?due_within=2", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Fatalf("expected 1 task within 2 days, got %v", body["count"])
	}
}

func TestTaskAlertEndpoints(t *testing.T) {
	s, h := newTestAPI(t)

	task := testutil.MustCreateTask(t, s, model.Task{
		Name: "Con alerta", DueDate: testutil.DueIn(48),
	})

	rec := doRequest(t, h, http.MethodPut, "/api/tasks/"+task.ID+"/alert", "ana",
		`{"alert_date": "2026-09-01T09:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("setting alert: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	loaded, err := s.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if loaded.AlertDate == nil || loaded.AlertFired {
		t.Fatalf("expected unfired alert set, got date=%v fired=%v",
			loaded.AlertDate, loaded.AlertFired)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/tasks/"+task.ID+"/alert", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clearing alert: expected 200, got %d", rec.Code)
	}

	loaded, err = s.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if loaded.AlertDate != nil || loaded.AlertFired {
		t.Fatal("expected alert fully cleared")
	}
}

func TestNoTaskDeleteRoute(t *testing.T) {
	s, h := newTestAPI(t)

	task := testutil.MustCreateTask(t, s, model.Task{
		Name: "Permanente", DueDate: testutil.DueIn(24),
	})

	rec := doRequest(t, h, http.MethodDelete, "/api/tasks/"+task.ID, "ana", "")
	if rec.Code != http.StatusMethodNotAllowed && rec.Code != http.StatusNotFound {
		t.Fatalf("expected task delete to be unroutable, got %d", rec.Code)
	}
}

func TestNotificationsFlow(t *testing.T) {
	s, h := newTestAPI(t)

	testutil.MustCreateTask(t, s, model.Task{
		Name: "Para la campana", DueDate: testutil.DueIn(2),
	})

	rec := doRequest(t, h, http.MethodPost, "/api/notifications/refresh", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["unread_count"] != float64(1) {
		t.Fatalf("expected unread 1 after refresh, got %v", body["unread_count"])
	}
	if _, failed := body["fetch_failed"]; failed {
		t.Fatalf("unexpected fetch_failed flag: %v", body)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/notifications/ack", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ack: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/notifications", "ana", "")
	body = decodeBody(t, rec)
	if body["unread_count"] != float64(0) {
		t.Fatalf("expected unread 0 after ack, got %v", body["unread_count"])
	}
	if len(body["notifications"].([]interface{})) != 1 {
		t.Fatalf("expected results kept after ack, got %v", body["notifications"])
	}
}

func TestUpcomingTasksEndpoint(t *testing.T) {
	s, h := newTestAPI(t)

	testutil.MustCreateTask(t, s, model.Task{
		Name: "Próxima", DueDate: testutil.DueIn(4),
	})

	rec := doRequest(t, h, http.MethodGet, "/api/tools/upcoming-tasks", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["summary"] != "1 tarea(s) próxima(s) encontrada(s)." {
		t.Fatalf("unexpected summary %v", body["summary"])
	}
	if len(body["tasks"].([]interface{})) != 1 {
		t.Fatalf("expected one task, got %v", body["tasks"])
	}
}

func TestAssistantUnconfigured(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assistant/messages", "ana",
		`{"message": "hola"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when assistant is unconfigured, got %d", rec.Code)
	}
}

func TestCalendarUnconfigured(t *testing.T) {
	s, h := newTestAPI(t)

	task := testutil.MustCreateTask(t, s, model.Task{
		Name: "Sin calendario", DueDate: testutil.DueIn(24),
	})

	rec := doRequest(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/calendar", "ana", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when calendar is unconfigured, got %d", rec.Code)
	}
}

func TestDigestUnconfigured(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doRequest(t, h, http.MethodPost, "/api/digest/send", "ana", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when digest is unconfigured, got %d", rec.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doRequest(t, h, http.MethodGet, "/api/tasks", "ana", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header on every response")
	}
}
