package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/opentelemetry-go-contrib/launcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/api"
	"github.com/taskforce-ops/sentinel/internal/clock"
	"github.com/taskforce-ops/sentinel/internal/cmdutil"
	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/forums"
	"github.com/taskforce-ops/sentinel/internal/gameserver"
	"github.com/taskforce-ops/sentinel/internal/ics"
	"github.com/taskforce-ops/sentinel/internal/matcher"
	"github.com/taskforce-ops/sentinel/internal/notifier"
	"github.com/taskforce-ops/sentinel/internal/poller"
	"github.com/taskforce-ops/sentinel/internal/registry"
	"github.com/taskforce-ops/sentinel/internal/reminder"
	"github.com/taskforce-ops/sentinel/internal/singleton"
)

const (
	defaultRefreshHours    = 1
	defaultGroupExpiry     = 8 * time.Hour
	defaultAlertTimes      = "30 minutes,2 hours,1 day"
	playersRefreshInterval = time.Minute

	leaderKey     = "sentinel:leader"
	leaderTimeout = 90 * time.Second
	leaderWait    = 5 * time.Minute
)

func BotCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Args:  cobra.ExactArgs(0),
		Short: "Watches the community feeds and delivers notifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := 4000
			if os.Getenv("PORT") != "" {
				port, _ = strconv.Atoi(os.Getenv("PORT"))
			}

			logger := cmdutil.NewLogger(false)
			defer func() { _ = logger.Sync() }()

			if os.Getenv("HONEYCOMB_API_KEY") != "" {
				bsp := honeycomb.NewBaggageSpanProcessor()

				shutdown, err := launcher.ConfigureOpenTelemetry(
					launcher.WithSpanProcessor(bsp),
				)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			statsd, err := cmdutil.NewStatsdClient()
			if err != nil {
				return err
			}
			defer func() { _ = statsd.Close() }()

			redis, err := cmdutil.NewRedisClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = redis.Close() }()

			guard := singleton.New(redis, leaderTimeout)
			lock, err := guard.WaitAcquire(ctx, leaderKey, leaderWait)
			if err != nil {
				return fmt.Errorf("another instance is already running: %w", err)
			}

			intervals, err := domain.ParseIntervals(envOr("ALERT_TIMES", defaultAlertTimes))
			if err != nil {
				return err
			}

			refresh := time.Duration(envInt("HOURS_TO_REFRESH", defaultRefreshHours)) * time.Hour

			expiry := defaultGroupExpiry
			if hours := envInt("GROUP_EXPIRY_HOURS", 0); hours > 0 {
				expiry = time.Duration(hours) * time.Hour
			}

			events := registry.NewEvents()
			polls := registry.NewPolls()
			groups := registry.NewGroups()
			alarms := registry.NewAlarms()

			var notify domain.Notifier
			if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
				notify = notifier.NewWebhook(logger, statsd, url)
			} else {
				logger.Info("no webhook configured, logging notifications")
				notify = notifier.NewLog(logger)
			}

			timers := clock.NewService(logger)
			scheduler := reminder.NewScheduler(logger, statsd, timers, events, polls, notify, intervals)

			lfg := matcher.NewService(logger, statsd, timers, groups, notify, expiry)

			var pollers []poller.Poller

			var forumsClient *forums.Client
			if base := os.Getenv("FORUMS_API_BASE"); base != "" {
				forumsClient = forums.NewClient(base, os.Getenv("FORUMS_API_TOKEN"), statsd)
				pollers = append(pollers, poller.NewPollsPoller(logger, statsd, timers, forumsClient, polls, notify, scheduler, refresh))
			}

			var calendar domain.CalendarSource
			if url := os.Getenv("CALENDAR_URL"); isICSURL(url) {
				calendar = ics.NewSource(url)
			} else {
				if url != "" {
					logger.Warn("ignoring CALENDAR_URL, only .ics feeds are supported", zap.String("url", url))
				}
				if forumsClient != nil {
					calendar = forumsClient
				}
			}

			if calendar != nil {
				pollers = append(pollers, poller.NewCalendarPoller(logger, statsd, timers, calendar, events, scheduler, refresh))
			}

			if url := os.Getenv("PLAYER_COUNT_URL"); url != "" {
				players := gameserver.NewClient(url)
				pollers = append(pollers, poller.NewPlayersPoller(logger, statsd, timers, players, alarms, notify, playersRefreshInterval))
			}

			for _, p := range pollers {
				if err := p.Start(); err != nil {
					return err
				}
			}

			// keep leadership alive while we run
			if err := timers.Every("leader:refresh", leaderTimeout/3, func() {
				if err := lock.Refresh(context.Background()); err != nil {
					logger.Error("lost the leader lock", zap.Error(err))
				}
			}); err != nil {
				return err
			}

			srv := api.NewAPI(logger, statsd, events, polls, groups, alarms, lfg).Server(port)
			go func() { _ = srv.ListenAndServe() }()

			logger.Info("started bot", zap.Int("port", port), zap.Duration("refresh", refresh))

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = srv.Shutdown(shutdownCtx)

			for _, p := range pollers {
				p.Stop()
			}
			timers.Stop()

			_ = lock.Release(shutdownCtx)

			return nil
		},
	}

	return cmd
}

// isICSURL reports whether the URL points at an iCalendar feed rather than
// a forums calendar.
func isICSURL(url string) bool {
	return strings.HasSuffix(strings.ToLower(url), ".ics")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}
