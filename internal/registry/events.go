// Package registry holds the process-wide in-memory stores for events, polls,
// groups and alarms. The upstream feeds are the source of truth; these stores
// only track what the bot has already seen and acted on, so nothing here is
// persisted. Every mutating operation is atomic behind the store's mutex
// because timer callbacks run on their own goroutines.
package registry

import (
	"sync"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type eventRegistry struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	order  []string
}

func NewEvents() domain.EventRegistry {
	return &eventRegistry{
		events: map[string]*domain.Event{},
	}
}

func (r *eventRegistry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.events[id]
	return ok
}

func (r *eventRegistry) Get(id string) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		return domain.Event{}, false
	}

	return copyEvent(ev), true
}

// Add stores the event unless the id is already present: first write wins, so
// a feed reporting the same event across many ticks never resets reminder
// state. Events without an id are never stored.
func (r *eventRegistry) Add(ev domain.Event) bool {
	if ev.ID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[ev.ID]; ok {
		return false
	}

	r.events[ev.ID] = &ev
	r.order = append(r.order, ev.ID)
	return true
}

// List returns the stored events in insertion order.
func (r *eventRegistry) List() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]domain.Event, 0, len(r.events))
	for _, id := range r.order {
		if ev, ok := r.events[id]; ok {
			list = append(list, copyEvent(ev))
		}
	}

	return list
}

func (r *eventRegistry) UpdateRSVPs(id string, limit, count int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		return false
	}

	ev.RSVPLimit = limit
	ev.RSVPCount = count
	return true
}

// MarkReminderFired flips the reminder flag for (id, label) and returns the
// updated event. It returns false when the event is gone or the label already
// fired, which is how at-most-once delivery is enforced at fire time.
func (r *eventRegistry) MarkReminderFired(id, label string) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		return domain.Event{}, false
	}

	fired, ok := ev.Reminders[label]
	if !ok || fired {
		return domain.Event{}, false
	}

	ev.Reminders[label] = true
	return copyEvent(ev), true
}

// RemoveIfOld deletes the event once every reminder has fired. Safe to call
// repeatedly and for absent ids.
func (r *eventRegistry) RemoveIfOld(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok || !ev.AllRemindersFired() {
		return false
	}

	delete(r.events, id)
	r.order = removeID(r.order, id)
	return true
}

func (r *eventRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return false
	}

	delete(r.events, id)
	r.order = removeID(r.order, id)
	return true
}

// removeID prunes an id from an insertion-order slice so that a later re-add
// of the same id cannot produce duplicate listings.
func removeID[T comparable](order []T, id T) []T {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}

	return order
}

func copyEvent(ev *domain.Event) domain.Event {
	dup := *ev
	dup.Reminders = make(map[string]bool, len(ev.Reminders))
	for label, fired := range ev.Reminders {
		dup.Reminders[label] = fired
	}

	return dup
}
