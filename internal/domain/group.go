package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Group is a looking-for-group record with a fill target. Once Found reaches
// Needed the group is filled: it is retired on the spot and the participants
// are notified.
type Group struct {
	ID        int64
	Owner     string
	Name      string
	Needed    int
	Found     []string
	CreatedAt time.Time
}

func (g *Group) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Owner, validation.Required),
		validation.Field(&g.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&g.Needed, validation.Required, validation.Min(1)),
	)
}

// Flight is a pickup flight record. Flights have no fill target and never
// fill; they only expire or get deleted by their owner.
type Flight struct {
	ID        int64
	Owner     string
	Game      string
	Details   string
	DepartsAt time.Time
	Found     []string
	CreatedAt time.Time
}

func (f *Flight) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Owner, validation.Required),
		validation.Field(&f.Game, validation.Required, validation.In("BMS", "DCS")),
	)
}

type GroupRegistry interface {
	CreateGroup(g Group) (Group, error)
	CreateFlight(f Flight) (Flight, error)

	// JoinGroup appends user to the group's participants. ok is false when
	// the id does not exist; filled is true exactly when this join reached
	// the group's fill target, and the filling join also removes the group
	// so that no subsequent join can land in it.
	JoinGroup(id int64, user string) (g Group, filled bool, ok bool)
	JoinFlight(id int64, user string) (f Flight, ok bool)

	DeleteGroup(id int64, requester string) error
	DeleteFlight(id int64, requester string) error

	RemoveGroup(id int64) bool
	RemoveFlight(id int64) bool

	Groups() []Group
	Flights() []Flight
}
