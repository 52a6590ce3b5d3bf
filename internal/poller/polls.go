package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/reminder"
)

const pollsJobKey = "poller:polls"

type pollsPoller struct {
	logger *zap.Logger
	statsd statsd.ClientInterface
	clock  Clock

	source    domain.PollSource
	polls     domain.PollRegistry
	notifier  domain.Notifier
	scheduler *reminder.Scheduler

	refresh time.Duration
	now     func() time.Time
}

// NewPollsPoller watches the voting thread listing. A thread with a known
// classification tag becomes a tracked poll: its opening is announced, a close
// announcement is scheduled for the window deadline, and vote tallies are
// refreshed until the window passes.
func NewPollsPoller(logger *zap.Logger, statsdClient statsd.ClientInterface, clock Clock, source domain.PollSource, polls domain.PollRegistry, notifier domain.Notifier, scheduler *reminder.Scheduler, refresh time.Duration) Poller {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &pollsPoller{
		logger:    logger,
		statsd:    statsdClient,
		clock:     clock,
		source:    source,
		polls:     polls,
		notifier:  notifier,
		scheduler: scheduler,
		refresh:   refresh,
		now:       time.Now,
	}
}

func (p *pollsPoller) Start() error {
	p.logger.Info("starting polls poller", zap.Duration("refresh", p.refresh))
	return p.clock.Every(pollsJobKey, p.refresh, p.runTick)
}

func (p *pollsPoller) Stop() {
	p.clock.Cancel(pollsJobKey)
}

func (p *pollsPoller) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p.tick(ctx)
}

func (p *pollsPoller) tick(ctx context.Context) {
	now := p.now()

	threads, err := p.source.VotingThreads(ctx)
	if err != nil {
		p.logger.Error("failed to fetch voting threads", zap.Error(err))
		_ = p.statsd.Incr("sentinel.poller.polls.errors", []string{}, 1.0)
		return
	}

	seen := make(map[int64]bool, len(threads))

	for _, thread := range threads {
		seen[thread.ID] = true

		if p.polls.Has(thread.ID) {
			p.polls.UpdateVotes(thread.ID, thread.VotesYes, thread.VotesNo)
			if p.polls.RemoveIfClosed(thread.ID, now) {
				p.logger.Debug("poll window passed, removed", zap.Int64("poll#id", thread.ID))
			}
			continue
		}

		p.ingest(ctx, thread, now)
	}

	// A poll leaves tracking only once its window passes. Threads that drop
	// out of the listing stay tracked: listing gaps are transient, and a
	// still-open poll that resurfaced would otherwise be announced again.
	for _, poll := range p.polls.List() {
		if seen[poll.ID] {
			continue
		}

		if p.polls.RemoveIfClosed(poll.ID, now) {
			p.logger.Debug("poll window passed, removed", zap.Int64("poll#id", poll.ID))
		}
	}

	_ = p.statsd.Gauge("sentinel.polls.tracked", float64(len(p.polls.List())), []string{}, 1.0)
}

func (p *pollsPoller) ingest(ctx context.Context, thread domain.VotingThread, now time.Time) {
	rule, err := domain.RuleForTag(thread.Tag)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownPollTag) {
			p.logger.Error("failed to classify voting thread", zap.Error(err), zap.Int64("poll#id", thread.ID))
			return
		}

		// not every thread with a poll is community business
		p.logger.Debug("skipping unclassified voting thread",
			zap.Int64("poll#id", thread.ID),
			zap.String("tag", thread.Tag))
		return
	}

	poll := domain.Poll{
		ID:       thread.ID,
		Rule:     rule,
		Question: thread.Question,
		URL:      thread.URL,
		OpenedAt: thread.FirstPostAt,
		ClosesAt: thread.FirstPostAt.Add(time.Duration(rule.WindowDays) * 24 * time.Hour),
		VotesYes: thread.VotesYes,
		VotesNo:  thread.VotesNo,
	}

	if err := poll.Validate(); err != nil {
		p.logger.Warn("skipping malformed voting thread", zap.Error(err), zap.Int64("poll#id", thread.ID))
		return
	}

	// threads whose window already passed are stale listing noise
	if poll.ClosedAt(now) {
		return
	}

	if !p.polls.Add(poll) {
		return
	}

	_ = p.statsd.Incr("sentinel.polls.ingested", []string{fmt.Sprintf("type:%s", rule.Type)}, 1.0)
	p.logger.Info("ingested poll",
		zap.Int64("poll#id", poll.ID),
		zap.String("type", rule.Type.String()),
		zap.Time("closes_at", poll.ClosesAt))

	n := domain.Notification{
		Channel: domain.PollsChannel,
		Kind:    domain.PollOpenedNotification,
		Title:   poll.Question,
		Body:    fmt.Sprintf("A new %s vote is open until %s: %s", rule.Type, poll.ClosesAt.Format("Jan 2"), poll.Question),
		URL:     poll.URL,
	}

	if err := p.notifier.Notify(ctx, n); err != nil {
		p.logger.Error("failed to announce poll", zap.Error(err), zap.Int64("poll#id", poll.ID))
	}

	p.scheduler.SchedulePollClose(poll)
}
