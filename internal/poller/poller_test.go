package poller

import (
	"context"
	"errors"
	"time"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type fakeClock struct {
	jobs      map[string]func()
	times     map[string]time.Time
	periods   map[string]time.Duration
	cancelled []string
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		jobs:    map[string]func(){},
		times:   map[string]time.Time{},
		periods: map[string]time.Duration{},
	}
}

func (c *fakeClock) Once(key string, at time.Time, fn func()) error {
	if _, ok := c.jobs[key]; ok {
		return errors.New("duplicate key")
	}
	c.jobs[key] = fn
	c.times[key] = at
	return nil
}

func (c *fakeClock) Every(key string, period time.Duration, fn func()) error {
	if _, ok := c.jobs[key]; ok {
		return errors.New("duplicate key")
	}
	c.jobs[key] = fn
	c.periods[key] = period
	return nil
}

func (c *fakeClock) Cancel(key string) {
	delete(c.jobs, key)
	delete(c.times, key)
	delete(c.periods, key)
	c.cancelled = append(c.cancelled, key)
}

type fakeNotifier struct {
	sent []domain.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, notification domain.Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

type fakeCalendarSource struct {
	entries []domain.CalendarEntry
	rsvps   map[string]int
	err     error
}

func (s *fakeCalendarSource) CalendarEvents(_ context.Context) ([]domain.CalendarEntry, error) {
	return s.entries, s.err
}

func (s *fakeCalendarSource) EventRSVPs(_ context.Context, id string) (int, error) {
	return s.rsvps[id], nil
}

type fakePollSource struct {
	threads []domain.VotingThread
	err     error
}

func (s *fakePollSource) VotingThreads(_ context.Context) ([]domain.VotingThread, error) {
	return s.threads, s.err
}

type fakePlayerSource struct {
	count int
	err   error
}

func (s *fakePlayerSource) PlayerCount(_ context.Context) (int, error) {
	return s.count, s.err
}
