package registry

import (
	"sync"
	"time"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type pollRegistry struct {
	mu    sync.Mutex
	polls map[int64]*domain.Poll
	order []int64
}

func NewPolls() domain.PollRegistry {
	return &pollRegistry{
		polls: map[int64]*domain.Poll{},
	}
}

func (r *pollRegistry) Has(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.polls[id]
	return ok
}

func (r *pollRegistry) Get(id int64) (domain.Poll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.polls[id]
	if !ok {
		return domain.Poll{}, false
	}

	return *p, true
}

func (r *pollRegistry) Add(p domain.Poll) bool {
	if p.ID == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[p.ID]; ok {
		return false
	}

	r.polls[p.ID] = &p
	r.order = append(r.order, p.ID)
	return true
}

func (r *pollRegistry) List() []domain.Poll {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]domain.Poll, 0, len(r.polls))
	for _, id := range r.order {
		if p, ok := r.polls[id]; ok {
			list = append(list, *p)
		}
	}

	return list
}

func (r *pollRegistry) UpdateVotes(id int64, yes, no int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.polls[id]
	if !ok {
		return false
	}

	p.VotesYes = yes
	p.VotesNo = no
	return true
}

// RemoveIfClosed deletes the poll once its close date has passed. The close
// date itself never changes, so the check is lazy: the poll lingers until the
// next tick looks at it.
func (r *pollRegistry) RemoveIfClosed(id int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.polls[id]
	if !ok || !p.ClosedAt(now) {
		return false
	}

	delete(r.polls, id)
	r.order = removeID(r.order, id)
	return true
}

func (r *pollRegistry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; !ok {
		return false
	}

	delete(r.polls, id)
	r.order = removeID(r.order, id)
	return true
}
