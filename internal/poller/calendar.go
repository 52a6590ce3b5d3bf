package poller

import (
	"context"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/reminder"
)

const calendarJobKey = "poller:calendar"

type calendarPoller struct {
	logger *zap.Logger
	statsd statsd.ClientInterface
	clock  Clock

	source    domain.CalendarSource
	events    domain.EventRegistry
	scheduler *reminder.Scheduler

	refresh time.Duration
	now     func() time.Time
}

// NewCalendarPoller watches the upstream calendar feed. New upcoming events
// are ingested and their reminders scheduled; known events have attendance
// refreshed; events that disappear from the feed, or whose reminders have all
// fired, are dropped.
func NewCalendarPoller(logger *zap.Logger, statsdClient statsd.ClientInterface, clock Clock, source domain.CalendarSource, events domain.EventRegistry, scheduler *reminder.Scheduler, refresh time.Duration) Poller {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &calendarPoller{
		logger:    logger,
		statsd:    statsdClient,
		clock:     clock,
		source:    source,
		events:    events,
		scheduler: scheduler,
		refresh:   refresh,
		now:       time.Now,
	}
}

func (p *calendarPoller) Start() error {
	p.logger.Info("starting calendar poller", zap.Duration("refresh", p.refresh))
	return p.clock.Every(calendarJobKey, p.refresh, p.runTick)
}

func (p *calendarPoller) Stop() {
	p.clock.Cancel(calendarJobKey)
}

func (p *calendarPoller) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p.tick(ctx)
}

func (p *calendarPoller) tick(ctx context.Context) {
	now := p.now()
	start := now

	defer func() {
		_ = p.statsd.Histogram("sentinel.poller.calendar.latency", float64(time.Since(start).Milliseconds()), []string{}, 0.1)
	}()

	listing, err := p.source.CalendarEvents(ctx)
	if err != nil {
		p.logger.Error("failed to fetch calendar", zap.Error(err))
		_ = p.statsd.Incr("sentinel.poller.calendar.errors", []string{}, 1.0)
		return
	}

	seen := make(map[string]bool, len(listing))

	for _, entry := range listing {
		// the feed is sorted soonest first; everything from the first
		// past entry onward has already started
		if !entry.StartsAt.After(now) {
			break
		}

		seen[entry.ID] = true

		if p.events.Has(entry.ID) {
			p.refreshKnown(ctx, entry)
			continue
		}

		p.ingest(ctx, entry)
	}

	// anything we track but the feed no longer lists as upcoming is gone:
	// started, cancelled or deleted upstream
	for _, ev := range p.events.List() {
		if seen[ev.ID] {
			continue
		}

		p.scheduler.CancelEvent(ev)
		p.events.Remove(ev.ID)
		p.logger.Info("event left the feed, removed", zap.String("event#id", ev.ID))
	}

	_ = p.statsd.Gauge("sentinel.events.tracked", float64(len(p.events.List())), []string{}, 1.0)
}

func (p *calendarPoller) refreshKnown(ctx context.Context, entry domain.CalendarEntry) {
	if entry.HasRSVP {
		if source, ok := p.source.(domain.RSVPSource); ok {
			count, err := source.EventRSVPs(ctx, entry.ID)
			if err != nil {
				p.logger.Error("failed to refresh attendance",
					zap.Error(err),
					zap.String("event#id", entry.ID))
			} else {
				p.events.UpdateRSVPs(entry.ID, entry.RSVPLimit, count)
			}
		}
	}

	if p.events.RemoveIfOld(entry.ID) {
		p.logger.Debug("event fully reminded, removed", zap.String("event#id", entry.ID))
	}
}

func (p *calendarPoller) ingest(ctx context.Context, entry domain.CalendarEntry) {
	ev := domain.Event{
		ID:        entry.ID,
		Title:     entry.Title,
		StartsAt:  entry.StartsAt,
		URL:       entry.URL,
		ImageURL:  domain.ImageFromDescription(entry.Description),
		Group:     domain.GroupFromTitle(entry.Title),
		RSVPLimit: entry.RSVPLimit,
		Reminders: domain.ReminderFlags(p.scheduler.Intervals()),
	}

	if entry.HasRSVP {
		if source, ok := p.source.(domain.RSVPSource); ok {
			count, err := source.EventRSVPs(ctx, entry.ID)
			if err != nil {
				p.logger.Error("failed to fetch attendance",
					zap.Error(err),
					zap.String("event#id", entry.ID))
			} else {
				ev.RSVPCount = count
			}
		}
	}

	if err := ev.Validate(); err != nil {
		p.logger.Warn("skipping malformed calendar entry",
			zap.Error(err),
			zap.String("event#id", entry.ID))
		return
	}

	if !p.events.Add(ev) {
		return
	}

	_ = p.statsd.Incr("sentinel.events.ingested", []string{}, 1.0)
	p.logger.Info("ingested event",
		zap.String("event#id", ev.ID),
		zap.String("title", ev.Title),
		zap.Time("starts_at", ev.StartsAt))

	p.scheduler.ScheduleEvent(ev)
}
