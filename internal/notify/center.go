// Package notify holds the session-scoped notification state backing
// the UI bell: the last computed set of due-soon tasks and an unread
// counter.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amestudio/agencydesk/internal/duewindow"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

// bellHorizonDays is the forward horizon used for the notification
// bell: today plus one more day.
const bellHorizonDays = 1

// Session identifies the authenticated user a refresh runs for.
// Authentication itself is handled upstream; an empty UserID means no
// session.
type Session struct {
	UserID string
}

// Center caches the last due-window selection and an unread counter.
// It is an explicit dependency handed to its consumers, not a hidden
// singleton, and Refresh/Acknowledge are its only mutators.
type Center struct {
	store store.Store
	log   *logrus.Logger
	now   func() time.Time

	mu      sync.Mutex
	results []model.Task
	unread  int
	loading bool
	lastErr error

	// seq orders concurrent refreshes: only the most recently started
	// one may publish its outcome, so a slow stale response cannot
	// clobber a fresher one.
	seq uint64
}

// NewCenter creates a notification center reading from s.
func NewCenter(s store.Store, log *logrus.Logger) *Center {
	return &Center{
		store: s,
		log:   log,
		now:   time.Now,
	}
}

// Refresh recomputes the notification set for the given session. With
// no session it clears the state. A store failure degrades to an empty
// set: the error is logged and retained for inspection via LastError,
// never returned. Stale concurrent refreshes are discarded.
func (c *Center) Refresh(ctx context.Context, session Session) {
	c.mu.Lock()
	if session.UserID == "" {
		// The clear is itself the most recent refresh: bumping seq makes
		// any fetch still in flight stale, so it cannot republish after
		// the state has been cleared.
		c.seq++
		c.results = nil
		c.unread = 0
		c.lastErr = nil
		c.loading = false
		c.mu.Unlock()
		return
	}

	c.seq++
	mySeq := c.seq
	c.loading = true
	c.mu.Unlock()

	tasks, err := duewindow.Select(ctx, c.store, duewindow.Params{
		Now:         c.now(),
		HorizonDays: bellHorizonDays,
		Statuses:    model.ActiveStatuses,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if mySeq != c.seq {
		// A newer refresh has started; its outcome wins.
		return
	}
	c.loading = false

	if err != nil {
		c.log.WithError(err).WithField("user_id", session.UserID).
			Warn("notification refresh failed")
		c.results = nil
		c.unread = 0
		c.lastErr = err
		return
	}

	c.results = tasks
	c.unread = len(tasks)
	c.lastErr = nil
}

// Acknowledge zeroes the unread counter. The result list is deliberately
// left intact so it stays visible until the next Refresh; if the
// underlying tasks still match the window, that Refresh restores the
// unread count.
func (c *Center) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unread = 0
}

// Results returns a copy of the last computed notification list.
func (c *Center) Results() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Task, len(c.results))
	copy(out, c.results)
	return out
}

// UnreadCount returns the current unread counter.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// IsLoading reports whether a refresh is in flight.
func (c *Center) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the error from the most recent refresh, or nil.
// It lets the UI distinguish "no notifications" from "fetch failed".
func (c *Center) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
