package domain

import "context"

// Alarm is a player-count threshold registration. A user has at most one
// alarm; re-registering overwrites the threshold.
type Alarm struct {
	User      string
	Threshold int
}

type AlarmRegistry interface {
	// Register stores the alarm, returning true when an existing alarm for
	// the same user was overridden.
	Register(user string, threshold int) bool
	// Filter returns every alarm whose threshold is satisfied by the
	// current player count.
	Filter(current int) []Alarm
	Remove(user string) bool
	Count() int
}

// PlayerCountSource reports the live player count on the community's game
// server.
type PlayerCountSource interface {
	PlayerCount(ctx context.Context) (int, error)
}
