// Package alert sweeps for task alerts whose moment has arrived and
// delivers them as calendar events.
package alert

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amestudio/agencydesk/internal/calendar"
	"github.com/amestudio/agencydesk/internal/store"
)

// sweepTimeout bounds a single sweep, including its calendar calls.
const sweepTimeout = 30 * time.Second

// Pusher delivers a calendar event. Satisfied by *calendar.Client.
type Pusher interface {
	Insert(ctx context.Context, calendarID string, event calendar.Event) (*calendar.InsertedEvent, error)
}

// Config holds the scheduler's delivery settings.
type Config struct {
	CalendarID    string
	TimeZone      string
	EventDuration time.Duration
	SweepInterval time.Duration
}

// Scheduler periodically scans the store for unfired alerts that are
// due and pushes each one to the calendar. Delivery is attempt-once:
// an alert is marked fired whether or not the calendar call succeeded,
// matching the application-wide no-retry policy.
type Scheduler struct {
	store  store.Store
	pusher Pusher
	log    *logrus.Logger
	cfg    Config

	triggerCh chan struct{}
	stopCh    chan struct{}

	mu        sync.Mutex
	running   bool
	lastSweep time.Time
	fired     int
}

// NewScheduler creates an alert scheduler. pusher may be nil, in which
// case alerts are marked fired without calendar delivery.
func NewScheduler(s store.Store, pusher Pusher, log *logrus.Logger, cfg Config) *Scheduler {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	return &Scheduler{
		store:     s,
		pusher:    pusher,
		log:       log,
		cfg:       cfg,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the sweep loop. Subsequent calls are no-ops.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()
}

// Stop halts the sweep loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

// Trigger requests an immediate sweep without blocking.
func (s *Scheduler) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// LastSweep returns when the previous sweep finished and how many
// alerts it has fired in total.
func (s *Scheduler) LastSweep() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSweep, s.fired
}

// loop runs sweeps on the configured interval and on manual triggers.
func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		case <-s.triggerCh:
			s.sweep()
		}
	}
}

// sweep runs one FireDueAlerts pass with a bounded context.
func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	fired, err := s.FireDueAlerts(ctx, time.Now())
	if err != nil {
		s.log.WithError(err).Warn("alert sweep failed")
	}

	s.mu.Lock()
	s.lastSweep = time.Now()
	s.fired += fired
	s.mu.Unlock()
}

// FireDueAlerts finds active tasks whose alert moment has arrived and
// has not fired, pushes each to the calendar, and marks them fired.
// Per-task failures are logged and do not abort the sweep. Returns the
// number of alerts marked fired.
func (s *Scheduler) FireDueAlerts(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.store.GetPendingAlerts(ctx, now)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, task := range tasks {
		entry := s.log.WithFields(logrus.Fields{
			"task_id":   task.ID,
			"task_name": task.Name,
		})

		if s.pusher != nil {
			event, err := calendar.BuildEvent(task, s.cfg.TimeZone, s.cfg.EventDuration)
			if err != nil {
				entry.WithError(err).Warn("building calendar event failed")
			} else if _, err := s.pusher.Insert(ctx, s.cfg.CalendarID, event); err != nil {
				entry.WithError(err).Warn("calendar delivery failed")
			}
		}

		if err := s.store.MarkAlertFired(ctx, task.ID); err != nil {
			entry.WithError(err).Warn("marking alert fired failed")
			continue
		}
		fired++
		entry.Info("alert fired")
	}

	return fired, nil
}
