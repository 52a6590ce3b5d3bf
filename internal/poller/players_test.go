package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/registry"
)

func testPlayersPoller(t *testing.T, source *fakePlayerSource) (*playersPoller, *fakeClock, *fakeNotifier, domain.AlarmRegistry) {
	t.Helper()

	clock := newFakeClock()
	notifier := &fakeNotifier{}
	alarms := registry.NewAlarms()

	p := NewPlayersPoller(zap.NewNop(), nil, clock, source, alarms, notifier, time.Minute).(*playersPoller)

	return p, clock, notifier, alarms
}

func TestPlayersPoller_Tick(t *testing.T) {
	t.Parallel()

	t.Run("pages satisfied alarms and consumes them", func(t *testing.T) {
		t.Parallel()

		source := &fakePlayerSource{count: 25}
		p, _, notifier, alarms := testPlayersPoller(t, source)

		alarms.Register("grizzly", 20)
		alarms.Register("sledge", 30)

		p.tick(context.Background())

		require.Len(t, notifier.sent, 1)
		n := notifier.sent[0]
		assert.Equal(t, domain.PlayersChannel, n.Channel)
		assert.Equal(t, domain.AlarmNotification, n.Kind)
		assert.Equal(t, []string{"grizzly"}, n.Recipients)
		assert.Contains(t, n.Body, "25")

		// tripped alarm is gone, untripped one still waiting
		assert.Equal(t, 1, alarms.Count())

		p.tick(context.Background())
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("threshold equal to count trips", func(t *testing.T) {
		t.Parallel()

		source := &fakePlayerSource{count: 20}
		p, _, notifier, alarms := testPlayersPoller(t, source)

		alarms.Register("grizzly", 20)
		p.tick(context.Background())

		assert.Len(t, notifier.sent, 1)
		assert.Zero(t, alarms.Count())
	})

	t.Run("delivery failure keeps the alarm for the next tick", func(t *testing.T) {
		t.Parallel()

		source := &fakePlayerSource{count: 25}
		p, _, notifier, alarms := testPlayersPoller(t, source)
		notifier.err = errors.New("webhook down")

		alarms.Register("grizzly", 20)
		p.tick(context.Background())

		// registration survives the failed page
		assert.Equal(t, 1, alarms.Count())

		notifier.err = nil
		p.tick(context.Background())

		require.Len(t, notifier.sent, 2)
		assert.Equal(t, []string{"grizzly"}, notifier.sent[1].Recipients)
		assert.Zero(t, alarms.Count())
	})

	t.Run("fetch failure leaves alarms waiting", func(t *testing.T) {
		t.Parallel()

		source := &fakePlayerSource{count: 25, err: errors.New("server unreachable")}
		p, _, notifier, alarms := testPlayersPoller(t, source)

		alarms.Register("grizzly", 20)
		p.tick(context.Background())

		assert.Empty(t, notifier.sent)
		assert.Equal(t, 1, alarms.Count())
	})
}

func TestPlayersPoller_StartStop(t *testing.T) {
	t.Parallel()

	p, clock, _, _ := testPlayersPoller(t, &fakePlayerSource{})

	require.NoError(t, p.Start())
	assert.Contains(t, clock.jobs, "poller:players")
	assert.Equal(t, time.Minute, clock.periods["poller:players"])

	p.Stop()
	assert.NotContains(t, clock.jobs, "poller:players")
}
