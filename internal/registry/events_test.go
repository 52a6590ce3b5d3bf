package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/registry"
)

func newEvent(id, title string) domain.Event {
	return domain.Event{
		ID:       id,
		Title:    title,
		StartsAt: time.Now().Add(6 * time.Hour),
		Reminders: map[string]bool{
			"30 minutes": false,
			"2 hours":    false,
		},
	}
}

func TestEventsAddIsFirstWriteWins(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()

	require.True(t, events.Add(newEvent("100", "UOA3 Op")))
	assert.True(t, events.Has("100"))

	dup := newEvent("100", "renamed")
	assert.False(t, events.Add(dup))

	list := events.List()
	require.Len(t, list, 1)
	assert.Equal(t, "UOA3 Op", list[0].Title)
}

func TestEventsAddRejectsEmptyID(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()

	assert.False(t, events.Add(newEvent("", "no id")))
	assert.Empty(t, events.List())
}

func TestEventsListInsertionOrder(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("3", "third"))
	events.Add(newEvent("1", "first"))
	events.Add(newEvent("2", "second"))

	list := events.List()
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
	assert.Equal(t, "second", list[2].Title)
}

func TestEventsMarkReminderFired(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("100", "UOA3 Op"))

	ev, ok := events.MarkReminderFired("100", "2 hours")
	require.True(t, ok)
	assert.True(t, ev.Reminders["2 hours"])
	assert.False(t, ev.Reminders["30 minutes"])

	// second mark for the same label is refused
	_, ok = events.MarkReminderFired("100", "2 hours")
	assert.False(t, ok)

	// unknown label and unknown id are refused
	_, ok = events.MarkReminderFired("100", "1 day")
	assert.False(t, ok)
	_, ok = events.MarkReminderFired("999", "2 hours")
	assert.False(t, ok)
}

func TestEventsRemoveIfOld(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("100", "UOA3 Op"))

	assert.False(t, events.RemoveIfOld("100"))

	events.MarkReminderFired("100", "30 minutes")
	assert.False(t, events.RemoveIfOld("100"))

	events.MarkReminderFired("100", "2 hours")
	assert.True(t, events.RemoveIfOld("100"))

	// idempotent on absent id
	assert.False(t, events.RemoveIfOld("100"))
	assert.False(t, events.Has("100"))
}

func TestEventsRemove(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("100", "UOA3 Op"))

	assert.True(t, events.Remove("100"))
	assert.False(t, events.Remove("100"))

	// re-adding after removal produces a single listing entry
	events.Add(newEvent("100", "UOA3 Op again"))
	assert.Len(t, events.List(), 1)
}

func TestEventsUpdateRSVPs(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("100", "UOA3 Op"))

	require.True(t, events.UpdateRSVPs("100", 40, 12))

	list := events.List()
	require.Len(t, list, 1)
	assert.Equal(t, 40, list[0].RSVPLimit)
	assert.Equal(t, 12, list[0].RSVPCount)

	assert.False(t, events.UpdateRSVPs("999", 1, 1))
}

func TestEventsListReturnsCopies(t *testing.T) {
	t.Parallel()

	events := registry.NewEvents()
	events.Add(newEvent("100", "UOA3 Op"))

	list := events.List()
	list[0].Reminders["2 hours"] = true

	_, ok := events.MarkReminderFired("100", "2 hours")
	assert.True(t, ok, "mutating a listed copy must not touch stored state")
}
