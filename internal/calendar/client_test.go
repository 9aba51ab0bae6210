package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(baseURL string) *Client {
	c := NewClient(func() (string, error) { return "test-token", nil })
	c.baseURL = baseURL
	return c
}

func TestInsert_PostsEventWithBearerToken(t *testing.T) {
	var gotPath, gotAuth string
	var gotEvent Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotEvent); err != nil {
			t.Errorf("decoding event: %v", err)
		}
		json.NewEncoder(w).Encode(InsertedEvent{
			ID: "evt1", Status: "confirmed", HTMLLink: "https://cal/evt1",
		})
	}))
	defer srv.Close()

	event := Event{
		Summary: "Llamada de seguimiento",
		Start:   EventDateTime{DateTime: "2026-09-02T11:00:00+02:00", TimeZone: "Europe/Madrid"},
		End:     EventDateTime{DateTime: "2026-09-02T11:30:00+02:00", TimeZone: "Europe/Madrid"},
	}

	inserted, err := testClient(srv.URL).Insert(context.Background(), "primary", event)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if gotPath != "/calendars/primary/events" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotEvent.Summary != event.Summary {
		t.Fatalf("expected event payload forwarded, got %+v", gotEvent)
	}
	if inserted.ID != "evt1" || inserted.Status != "confirmed" {
		t.Fatalf("unexpected acknowledgment %+v", inserted)
	}
}

func TestInsert_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "Invalid Credentials"},
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Insert(context.Background(), "primary", Event{})
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
}

func TestInsert_FailsWhenTokenUnavailable(t *testing.T) {
	c := NewClient(func() (string, error) {
		return "", context.DeadlineExceeded
	})

	if _, err := c.Insert(context.Background(), "primary", Event{}); err == nil {
		t.Fatal("expected error when token lookup fails")
	}
}
