// Package reminder turns newly ingested records into one-shot timer jobs and
// enforces the at-most-once delivery contract when those jobs fire.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

const rate = 0.1

// Clock is the slice of the timer service the scheduler needs.
type Clock interface {
	Once(key string, at time.Time, fn func()) error
	Cancel(key string)
}

type Scheduler struct {
	logger   *zap.Logger
	statsd   statsd.ClientInterface
	clock    Clock
	events   domain.EventRegistry
	polls    domain.PollRegistry
	notifier domain.Notifier

	intervals []domain.Interval
	now       func() time.Time
}

func NewScheduler(logger *zap.Logger, statsdClient statsd.ClientInterface, clock Clock, events domain.EventRegistry, polls domain.PollRegistry, notifier domain.Notifier, intervals []domain.Interval) *Scheduler {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &Scheduler{
		logger:    logger,
		statsd:    statsdClient,
		clock:     clock,
		events:    events,
		polls:     polls,
		notifier:  notifier,
		intervals: intervals,
		now:       time.Now,
	}
}

func (s *Scheduler) Intervals() []domain.Interval {
	return s.intervals
}

// ScheduleEvent registers one-shot reminders for every configured lead time
// whose fire time is still ahead of us. An event discovered too close to its
// start silently skips the lead times that have already elapsed; their flags
// stay false and the event is only swept once every *scheduled* reminder has
// fired — or the feed stops reporting it.
func (s *Scheduler) ScheduleEvent(ev domain.Event) {
	for _, interval := range s.intervals {
		fireAt := ev.StartsAt.Add(-interval.Duration())
		if !fireAt.After(s.now()) {
			s.logger.Debug("lead time already elapsed, not scheduling",
				zap.String("event#id", ev.ID),
				zap.String("interval", interval.Label))
			continue
		}

		id, label := ev.ID, interval.Label
		key := eventReminderKey(id, label)

		if err := s.clock.Once(key, fireAt, func() { s.fireEventReminder(id, label) }); err != nil {
			s.logger.Error("failed to schedule reminder",
				zap.Error(err),
				zap.String("event#id", id),
				zap.String("interval", label))
			continue
		}

		s.logger.Info("scheduled reminder",
			zap.String("event#id", id),
			zap.String("interval", label),
			zap.Time("at", fireAt))
	}
}

// CancelEvent drops any reminders still pending for the event.
func (s *Scheduler) CancelEvent(ev domain.Event) {
	for _, interval := range s.intervals {
		s.clock.Cancel(eventReminderKey(ev.ID, interval.Label))
	}
}

// fireEventReminder is the timer callback. The record is looked up fresh by
// id: it may have been removed since scheduling, and the (id, label) flag may
// already be set. Either way the reminder must not go out twice.
func (s *Scheduler) fireEventReminder(id, label string) {
	ev, ok := s.events.MarkReminderFired(id, label)
	if !ok {
		_ = s.statsd.Incr("sentinel.reminders.stale", []string{}, rate)
		return
	}

	_ = s.statsd.Incr("sentinel.reminders.fired", []string{fmt.Sprintf("interval:%s", label)}, 1.0)

	n := domain.Notification{
		Channel: domain.EventsChannel,
		Kind:    domain.EventReminderNotification,
		Title:   ev.Title,
		Body:    fmt.Sprintf("%s begins %s", ev.Title, humanize.Time(ev.StartsAt)),
		URL:     ev.URL,
	}

	if err := s.notifier.Notify(context.Background(), n); err != nil {
		// at-most-once: the flag stays set, we never retry
		s.logger.Error("failed to deliver reminder",
			zap.Error(err),
			zap.String("event#id", id),
			zap.String("interval", label))
		_ = s.statsd.Incr("sentinel.notify.errors", []string{}, 1.0)
	}
}

// SchedulePollClose registers the one-shot "poll closed" announcement for the
// poll's fixed close date. A close date already behind us is left alone; the
// next poll tick will sweep the record.
func (s *Scheduler) SchedulePollClose(p domain.Poll) {
	if !p.ClosesAt.After(s.now()) {
		return
	}

	id := p.ID

	if err := s.clock.Once(pollCloseKey(id), p.ClosesAt, func() { s.firePollClosed(id) }); err != nil {
		s.logger.Error("failed to schedule poll close", zap.Error(err), zap.Int64("poll#id", id))
	}
}

// CancelPoll drops a pending close announcement.
func (s *Scheduler) CancelPoll(p domain.Poll) {
	s.clock.Cancel(pollCloseKey(p.ID))
}

func (s *Scheduler) firePollClosed(id int64) {
	p, ok := s.polls.Get(id)
	if !ok {
		return
	}

	_ = s.statsd.Incr("sentinel.polls.closed", []string{}, 1.0)

	n := domain.Notification{
		Channel: domain.PollsChannel,
		Kind:    domain.PollClosedNotification,
		Title:   p.Question,
		Body:    fmt.Sprintf("Voting has closed: %s", p.Question),
		URL:     p.URL,
	}

	if err := s.notifier.Notify(context.Background(), n); err != nil {
		s.logger.Error("failed to deliver poll close", zap.Error(err), zap.Int64("poll#id", id))
		_ = s.statsd.Incr("sentinel.notify.errors", []string{}, 1.0)
	}
}

func eventReminderKey(id, label string) string {
	return fmt.Sprintf("reminder:%s:%s", id, label)
}

func pollCloseKey(id int64) string {
	return fmt.Sprintf("poll:closed:%d", id)
}
