// Package matcher is the looking-for-group service: it owns group and flight
// lifecycle on top of the registry, announces fills, and expires stale
// postings through one-shot timers.
package matcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/dustin/go-humanize/english"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

// Clock is the slice of the timer service the matcher needs.
type Clock interface {
	Once(key string, at time.Time, fn func()) error
	Cancel(key string)
}

type Service struct {
	logger *zap.Logger
	statsd statsd.ClientInterface
	clock  Clock

	groups   domain.GroupRegistry
	notifier domain.Notifier

	expiry time.Duration
	now    func() time.Time
}

func NewService(logger *zap.Logger, statsdClient statsd.ClientInterface, clock Clock, groups domain.GroupRegistry, notifier domain.Notifier, expiry time.Duration) *Service {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &Service{
		logger:   logger,
		statsd:   statsdClient,
		clock:    clock,
		groups:   groups,
		notifier: notifier,
		expiry:   expiry,
		now:      time.Now,
	}
}

// CreateGroup registers a posting and arms its expiry timer. The posting
// disappears on its own once the expiry window passes without a fill.
func (s *Service) CreateGroup(ctx context.Context, owner, name string, needed int) (domain.Group, error) {
	g := domain.Group{
		Owner:     owner,
		Name:      name,
		Needed:    needed,
		CreatedAt: s.now(),
	}

	if err := g.Validate(); err != nil {
		return domain.Group{}, err
	}

	g, err := s.groups.CreateGroup(g)
	if err != nil {
		return domain.Group{}, err
	}

	id := g.ID
	if err := s.clock.Once(groupExpiryKey(id), g.CreatedAt.Add(s.expiry), func() { s.expireGroup(id) }); err != nil {
		s.logger.Error("failed to arm group expiry", zap.Error(err), zap.Int64("group#id", id))
	}

	_ = s.statsd.Incr("sentinel.groups.created", []string{}, 1.0)
	s.logger.Info("group posted",
		zap.Int64("group#id", g.ID),
		zap.String("group#owner", g.Owner),
		zap.Int("needed", g.Needed))

	return g, nil
}

// CreateFlight registers a pickup flight posting with the same expiry
// handling as groups.
func (s *Service) CreateFlight(ctx context.Context, owner, game, details string, departsAt time.Time) (domain.Flight, error) {
	f := domain.Flight{
		Owner:     owner,
		Game:      strings.ToUpper(game),
		Details:   details,
		DepartsAt: departsAt,
		CreatedAt: s.now(),
	}

	if err := f.Validate(); err != nil {
		return domain.Flight{}, err
	}

	f, err := s.groups.CreateFlight(f)
	if err != nil {
		return domain.Flight{}, err
	}

	id := f.ID
	if err := s.clock.Once(flightExpiryKey(id), f.CreatedAt.Add(s.expiry), func() { s.expireFlight(id) }); err != nil {
		s.logger.Error("failed to arm flight expiry", zap.Error(err), zap.Int64("flight#id", id))
	}

	_ = s.statsd.Incr("sentinel.flights.created", []string{}, 1.0)
	s.logger.Info("flight posted",
		zap.Int64("flight#id", f.ID),
		zap.String("flight#owner", f.Owner),
		zap.String("game", f.Game))

	return f, nil
}

// JoinGroup adds user to the posting. The join that reaches the fill target
// announces the roster to everyone involved; the registry has already retired
// the posting by then, so no join can slip in during the announcement.
func (s *Service) JoinGroup(ctx context.Context, id int64, user string) (domain.Group, error) {
	g, filled, ok := s.groups.JoinGroup(id, user)
	if !ok {
		return domain.Group{}, domain.ErrNotFound
	}

	if !filled {
		return g, nil
	}

	recipients := append([]string{g.Owner}, g.Found...)

	n := domain.Notification{
		Channel: domain.GroupsChannel,
		Kind:    domain.GroupFilledNotification,
		Title:   g.Name,
		Body: fmt.Sprintf("%s found %s for %s: %s",
			g.Owner,
			english.Plural(g.Needed, "player", ""),
			g.Name,
			strings.Join(g.Found, ", ")),
		Recipients: recipients,
	}

	s.clock.Cancel(groupExpiryKey(id))

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("failed to announce filled group", zap.Error(err), zap.Int64("group#id", id))
	}

	_ = s.statsd.Incr("sentinel.groups.filled", []string{}, 1.0)
	s.logger.Info("group filled", zap.Int64("group#id", id))

	return g, nil
}

// JoinFlight adds user to the flight's passenger list. Flights have no fill
// target; the posting stays up until it expires or is deleted.
func (s *Service) JoinFlight(ctx context.Context, id int64, user string) (domain.Flight, error) {
	f, ok := s.groups.JoinFlight(id, user)
	if !ok {
		return domain.Flight{}, domain.ErrNotFound
	}

	return f, nil
}

// DeleteGroup takes down the posting, owner only.
func (s *Service) DeleteGroup(ctx context.Context, id int64, requester string) error {
	if err := s.groups.DeleteGroup(id, requester); err != nil {
		return err
	}

	s.clock.Cancel(groupExpiryKey(id))
	return nil
}

// DeleteFlight takes down the posting, owner only.
func (s *Service) DeleteFlight(ctx context.Context, id int64, requester string) error {
	if err := s.groups.DeleteFlight(id, requester); err != nil {
		return err
	}

	s.clock.Cancel(flightExpiryKey(id))
	return nil
}

func (s *Service) expireGroup(id int64) {
	if !s.groups.RemoveGroup(id) {
		return
	}

	_ = s.statsd.Incr("sentinel.groups.expired", []string{}, 1.0)
	s.logger.Info("group expired unfilled", zap.Int64("group#id", id))
}

func (s *Service) expireFlight(id int64) {
	if !s.groups.RemoveFlight(id) {
		return
	}

	_ = s.statsd.Incr("sentinel.flights.expired", []string{}, 1.0)
	s.logger.Info("flight expired", zap.Int64("flight#id", id))
}

func groupExpiryKey(id int64) string {
	return fmt.Sprintf("group:expire:%d", id)
}

func flightExpiryKey(id int64) string {
	return fmt.Sprintf("flight:expire:%d", id)
}
