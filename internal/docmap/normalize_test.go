package docmap

import (
	"reflect"
	"testing"
	"time"
)

var testSchema = Schema{
	"due_date":   Timestamp(),
	"alert_date": Timestamp(),
	"items": Nested(Schema{
		"created_at": Timestamp(),
	}),
}

func TestNormalize_ConvertsTextualTimestamps(t *testing.T) {
	rec := map[string]interface{}{
		"name":     "Entrega web",
		"due_date": "2026-09-01T10:00:00Z",
	}

	out := Normalize(rec, testSchema)

	due, ok := out["due_date"].(time.Time)
	if !ok {
		t.Fatalf("expected due_date to be time.Time, got %T", out["due_date"])
	}
	want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("expected %v, got %v", want, due)
	}
	if out["name"] != "Entrega web" {
		t.Fatalf("expected non-schema field to pass through, got %v", out["name"])
	}
}

func TestNormalize_ConvertsEpochValues(t *testing.T) {
	sec := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	rec := map[string]interface{}{
		"due_date":   float64(sec.Unix()),
		"alert_date": sec.UnixMilli(),
	}
	out := Normalize(rec, testSchema)

	if got := out["due_date"].(time.Time); !got.Equal(sec) {
		t.Fatalf("epoch seconds: expected %v, got %v", sec, got)
	}
	if got := out["alert_date"].(time.Time); !got.Equal(sec) {
		t.Fatalf("epoch millis: expected %v, got %v", sec, got)
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	rec := map[string]interface{}{
		"name":       "Campaña otoño",
		"due_date":   "2026-09-01 10:00:00",
		"alert_date": nil,
		"items": []interface{}{
			map[string]interface{}{"created_at": "2026-08-28", "label": "a"},
			"scalar stays put",
		},
	}

	once := Normalize(rec, testSchema)
	twice := Normalize(once, testSchema)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected normalize to be idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestNormalize_DescendsIntoNestedRecords(t *testing.T) {
	rec := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"created_at": "2026-08-28T09:30:00Z"},
		},
	}

	out := Normalize(rec, testSchema)

	items := out["items"].([]interface{})
	nested := items[0].(map[string]interface{})
	if _, ok := nested["created_at"].(time.Time); !ok {
		t.Fatalf("expected nested created_at to be converted, got %T", nested["created_at"])
	}
}

func TestNormalize_PassesThroughMalformedValues(t *testing.T) {
	rec := map[string]interface{}{
		"due_date":   "not a date",
		"alert_date": true,
	}

	out := Normalize(rec, testSchema)

	if out["due_date"] != "not a date" {
		t.Fatalf("expected malformed string to pass through, got %v", out["due_date"])
	}
	if out["alert_date"] != true {
		t.Fatalf("expected bool to pass through, got %v", out["alert_date"])
	}
}

func TestNormalize_NilRecord(t *testing.T) {
	if out := Normalize(nil, testSchema); out != nil {
		t.Fatalf("expected nil record to stay nil, got %v", out)
	}
}
