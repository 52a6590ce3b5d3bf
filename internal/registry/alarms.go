package registry

import (
	"sync"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type alarmRegistry struct {
	mu     sync.Mutex
	alarms map[string]int
	order  []string
}

func NewAlarms() domain.AlarmRegistry {
	return &alarmRegistry{
		alarms: map[string]int{},
	}
}

// Register stores the user's threshold, overwriting any previous one. The
// return value tells the caller whether an existing alarm was overridden.
func (r *alarmRegistry) Register(user string, threshold int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.alarms[user]
	if !existed {
		r.order = append(r.order, user)
	}
	r.alarms[user] = threshold
	return existed
}

func (r *alarmRegistry) Filter(current int) []domain.Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.Alarm
	for _, user := range r.order {
		threshold, ok := r.alarms[user]
		if ok && threshold <= current {
			matched = append(matched, domain.Alarm{User: user, Threshold: threshold})
		}
	}

	return matched
}

func (r *alarmRegistry) Remove(user string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alarms[user]; !ok {
		return false
	}

	delete(r.alarms, user)
	r.order = removeID(r.order, user)
	return true
}

func (r *alarmRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.alarms)
}
