package alert_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amestudio/agencydesk/internal/alert"
	"github.com/amestudio/agencydesk/internal/calendar"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/tests/testutil"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakePusher records inserted events and optionally fails every call.
type fakePusher struct {
	mu     sync.Mutex
	events []calendar.Event
	fail   bool
}

func (p *fakePusher) Insert(
	ctx context.Context,
	calendarID string,
	event calendar.Event,
) (*calendar.InsertedEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return nil, errors.New("calendar unavailable")
	}
	p.events = append(p.events, event)
	return &calendar.InsertedEvent{ID: "evt", Status: "confirmed"}, nil
}

func (p *fakePusher) inserted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestFireDueAlerts_DeliversAndMarksFired(t *testing.T) {
	s := testutil.NewTestStore(t)
	pusher := &fakePusher{}
	sched := alert.NewScheduler(s, pusher, discardLogger(), alert.Config{
		CalendarID: "primary",
		TimeZone:   "UTC",
	})

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := testutil.MustCreateTask(t, s, model.Task{
		Name: "Recordatorio entrega", DueDate: testutil.DueIn(24), AlertDate: &past,
	})
	notYet := testutil.MustCreateTask(t, s, model.Task{
		Name: "Más tarde", DueDate: testutil.DueIn(24), AlertDate: &future,
	})

	fired, err := sched.FireDueAlerts(context.Background(), now)
	if err != nil {
		t.Fatalf("firing alerts: %v", err)
	}

	if fired != 1 {
		t.Fatalf("expected 1 alert fired, got %d", fired)
	}
	if pusher.inserted() != 1 {
		t.Fatalf("expected 1 calendar event, got %d", pusher.inserted())
	}

	loaded, err := s.GetTaskByID(context.Background(), due.ID)
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if !loaded.AlertFired {
		t.Fatal("expected alert marked fired")
	}

	untouched, err := s.GetTaskByID(context.Background(), notYet.ID)
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if untouched.AlertFired {
		t.Fatal("future alert must not fire")
	}

	// A second sweep finds nothing left to do.
	fired, err = sched.FireDueAlerts(context.Background(), now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if fired != 0 {
		t.Fatalf("expected no refiring, got %d", fired)
	}
}

func TestFireDueAlerts_MarksFiredEvenWhenDeliveryFails(t *testing.T) {
	s := testutil.NewTestStore(t)
	pusher := &fakePusher{fail: true}
	sched := alert.NewScheduler(s, pusher, discardLogger(), alert.Config{
		CalendarID: "primary",
		TimeZone:   "UTC",
	})

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Minute)
	task := testutil.MustCreateTask(t, s, model.Task{
		Name: "Entrega sin calendario", DueDate: testutil.DueIn(24), AlertDate: &past,
	})

	fired, err := sched.FireDueAlerts(context.Background(), now)
	if err != nil {
		t.Fatalf("firing alerts: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected the alert marked fired despite delivery failure, got %d", fired)
	}

	loaded, err := s.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	if !loaded.AlertFired {
		t.Fatal("delivery failure must not leave the alert unfired")
	}
}

func TestFireDueAlerts_NilPusher(t *testing.T) {
	s := testutil.NewTestStore(t)
	sched := alert.NewScheduler(s, nil, discardLogger(), alert.Config{})

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Minute)
	testutil.MustCreateTask(t, s, model.Task{
		Name: "Sin calendario configurado", DueDate: testutil.DueIn(24), AlertDate: &past,
	})

	fired, err := sched.FireDueAlerts(context.Background(), now)
	if err != nil {
		t.Fatalf("firing alerts: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected 1 alert fired without a pusher, got %d", fired)
	}
}

func TestScheduler_TriggerRunsSweep(t *testing.T) {
	s := testutil.NewTestStore(t)
	pusher := &fakePusher{}
	sched := alert.NewScheduler(s, pusher, discardLogger(), alert.Config{
		CalendarID:    "primary",
		TimeZone:      "UTC",
		SweepInterval: time.Hour,
	})

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Minute)
	testutil.MustCreateTask(t, s, model.Task{
		Name: "Barrido manual", DueDate: testutil.DueIn(24), AlertDate: &past,
	})

	sched.Start()
	defer sched.Stop()
	sched.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, fired := sched.LastSweep(); fired >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweep never fired the due alert")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
