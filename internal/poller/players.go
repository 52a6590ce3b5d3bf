package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

const playersJobKey = "poller:players"

type playersPoller struct {
	logger *zap.Logger
	statsd statsd.ClientInterface
	clock  Clock

	source   domain.PlayerCountSource
	alarms   domain.AlarmRegistry
	notifier domain.Notifier

	refresh time.Duration
}

// NewPlayersPoller watches the live player count and pages every user whose
// alarm threshold it satisfies. A tripped alarm is consumed: the user must
// register again to be paged again.
func NewPlayersPoller(logger *zap.Logger, statsdClient statsd.ClientInterface, clock Clock, source domain.PlayerCountSource, alarms domain.AlarmRegistry, notifier domain.Notifier, refresh time.Duration) Poller {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &playersPoller{
		logger:   logger,
		statsd:   statsdClient,
		clock:    clock,
		source:   source,
		alarms:   alarms,
		notifier: notifier,
		refresh:  refresh,
	}
}

func (p *playersPoller) Start() error {
	p.logger.Info("starting players poller", zap.Duration("refresh", p.refresh))
	return p.clock.Every(playersJobKey, p.refresh, p.runTick)
}

func (p *playersPoller) Stop() {
	p.clock.Cancel(playersJobKey)
}

func (p *playersPoller) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p.tick(ctx)
}

func (p *playersPoller) tick(ctx context.Context) {
	count, err := p.source.PlayerCount(ctx)
	if err != nil {
		p.logger.Error("failed to fetch player count", zap.Error(err))
		_ = p.statsd.Incr("sentinel.poller.players.errors", []string{}, 1.0)
		return
	}

	_ = p.statsd.Gauge("sentinel.players.online", float64(count), []string{}, 1.0)

	for _, alarm := range p.alarms.Filter(count) {
		n := domain.Notification{
			Channel:    domain.PlayersChannel,
			Kind:       domain.AlarmNotification,
			Title:      "Player count alarm",
			Body:       fmt.Sprintf("%d players are on the server", count),
			Recipients: []string{alarm.User},
		}

		// the alarm is consumed only once the page went out; a failed
		// send keeps it registered for the next tick
		if err := p.notifier.Notify(ctx, n); err != nil {
			p.logger.Error("failed to deliver alarm",
				zap.Error(err),
				zap.String("alarm#user", alarm.User))
			continue
		}

		p.alarms.Remove(alarm.User)

		_ = p.statsd.Incr("sentinel.alarms.tripped", []string{}, 1.0)
		p.logger.Info("alarm tripped",
			zap.String("alarm#user", alarm.User),
			zap.Int("threshold", alarm.Threshold),
			zap.Int("count", count))
	}
}
