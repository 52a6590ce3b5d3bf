package registry

import (
	"sync"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type groupRegistry struct {
	mu      sync.Mutex
	nextID  int64
	groups  map[int64]*domain.Group
	flights map[int64]*domain.Flight
	gOrder  []int64
	fOrder  []int64
}

func NewGroups() domain.GroupRegistry {
	return &groupRegistry{
		nextID:  1,
		groups:  map[int64]*domain.Group{},
		flights: map[int64]*domain.Flight{},
	}
}

// CreateGroup assigns the next id and stores the group. A user owns at most
// one active group; flights are tracked independently.
func (r *groupRegistry) CreateGroup(g domain.Group) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.groups {
		if existing.Owner == g.Owner {
			return domain.Group{}, domain.ErrAlreadyLooking
		}
	}

	g.ID = r.nextID
	r.nextID++

	r.groups[g.ID] = &g
	r.gOrder = append(r.gOrder, g.ID)
	return copyGroup(&g), nil
}

func (r *groupRegistry) CreateFlight(f domain.Flight) (domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.flights {
		if existing.Owner == f.Owner {
			return domain.Flight{}, domain.ErrAlreadyLooking
		}
	}

	f.ID = r.nextID
	r.nextID++

	r.flights[f.ID] = &f
	r.fOrder = append(r.fOrder, f.ID)
	return copyFlight(&f), nil
}

// JoinGroup appends the user to the group. Duplicate joins by the same user
// are deliberately not rejected; a user may hold more than one slot. The
// filling join also retires the group under the same lock, so no later join
// can land in it while its fill is being announced.
func (r *groupRegistry) JoinGroup(id int64, user string) (domain.Group, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[id]
	if !ok {
		return domain.Group{}, false, false
	}

	g.Found = append(g.Found, user)

	filled := len(g.Found) == g.Needed
	if filled {
		delete(r.groups, id)
		r.gOrder = removeID(r.gOrder, id)
	}

	return copyGroup(g), filled, true
}

func (r *groupRegistry) JoinFlight(id int64, user string) (domain.Flight, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flights[id]
	if !ok {
		return domain.Flight{}, false
	}

	f.Found = append(f.Found, user)
	return copyFlight(f), true
}

func (r *groupRegistry) DeleteGroup(id int64, requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	if g.Owner != requester {
		return domain.ErrNotOwner
	}

	delete(r.groups, id)
	r.gOrder = removeID(r.gOrder, id)
	return nil
}

func (r *groupRegistry) DeleteFlight(id int64, requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flights[id]
	if !ok {
		return domain.ErrNotFound
	}
	if f.Owner != requester {
		return domain.ErrNotOwner
	}

	delete(r.flights, id)
	r.fOrder = removeID(r.fOrder, id)
	return nil
}

func (r *groupRegistry) RemoveGroup(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[id]; !ok {
		return false
	}

	delete(r.groups, id)
	r.gOrder = removeID(r.gOrder, id)
	return true
}

func (r *groupRegistry) RemoveFlight(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flights[id]; !ok {
		return false
	}

	delete(r.flights, id)
	r.fOrder = removeID(r.fOrder, id)
	return true
}

func (r *groupRegistry) Groups() []domain.Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]domain.Group, 0, len(r.groups))
	for _, id := range r.gOrder {
		if g, ok := r.groups[id]; ok {
			list = append(list, copyGroup(g))
		}
	}

	return list
}

func (r *groupRegistry) Flights() []domain.Flight {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]domain.Flight, 0, len(r.flights))
	for _, id := range r.fOrder {
		if f, ok := r.flights[id]; ok {
			list = append(list, copyFlight(f))
		}
	}

	return list
}

func copyGroup(g *domain.Group) domain.Group {
	dup := *g
	dup.Found = append([]string(nil), g.Found...)
	return dup
}

func copyFlight(f *domain.Flight) domain.Flight {
	dup := *f
	dup.Found = append([]string(nil), f.Found...)
	return dup
}
