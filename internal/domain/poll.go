package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type PollType int64

const (
	RegularPoll PollType = iota
	OfficerPoll
	AddonPoll
	CharterPoll
	RemovalPoll
)

func (pt PollType) String() string {
	switch pt {
	case RegularPoll:
		return "regular"
	case OfficerPoll:
		return "officer"
	case AddonPoll:
		return "addon"
	case CharterPoll:
		return "charter"
	case RemovalPoll:
		return "removal"
	}

	return "unknown"
}

// PollRule classifies a voting thread: the fraction of yes votes required to
// pass and how long the poll stays open.
type PollRule struct {
	Type       PollType
	PassRatio  float64
	WindowDays int
}

var pollRules = map[string]PollRule{
	"REGULAR": {RegularPoll, 2.0 / 3.0, 7},
	"OFFICER": {OfficerPoll, 1.0 / 2.0, 14},
	"ADDON":   {AddonPoll, 3.0 / 4.0, 14},
	"CHARTER": {CharterPoll, 3.0 / 4.0, 14},
	"REMOVAL": {RemovalPoll, 2.0 / 3.0, 14},
}

// RuleForTag resolves a thread tag to its classification rule. A tag with no
// rule is a configuration problem for that one thread, not a fatal condition.
func RuleForTag(tag string) (PollRule, error) {
	rule, ok := pollRules[strings.ToUpper(tag)]
	if !ok {
		return PollRule{}, fmt.Errorf("%w: %q", ErrUnknownPollTag, tag)
	}

	return rule, nil
}

// Poll is a voting thread observed on the forums. ClosesAt is fixed at
// creation and never recomputed.
type Poll struct {
	ID       int64
	Rule     PollRule
	Question string
	URL      string

	OpenedAt time.Time
	ClosesAt time.Time

	VotesYes int64
	VotesNo  int64
}

func (p *Poll) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Question, validation.Required),
		validation.Field(&p.ClosesAt, validation.Required),
	)
}

func (p *Poll) ClosedAt(now time.Time) bool {
	return now.After(p.ClosesAt)
}

// Passing reports whether the current tally satisfies the rule's ratio.
func (p *Poll) Passing() bool {
	total := p.VotesYes + p.VotesNo
	if total == 0 {
		return false
	}

	return float64(p.VotesYes)/float64(total) >= p.Rule.PassRatio
}

type PollRegistry interface {
	Has(id int64) bool
	Get(id int64) (Poll, bool)
	Add(p Poll) bool
	List() []Poll
	UpdateVotes(id int64, yes, no int64) bool
	RemoveIfClosed(id int64, now time.Time) bool
	Remove(id int64) bool
}

// PollSource produces the upstream voting thread listing.
type PollSource interface {
	VotingThreads(ctx context.Context) ([]VotingThread, error)
}

// VotingThread is a raw voting thread entity, before classification.
type VotingThread struct {
	ID          int64
	Tag         string
	Question    string
	URL         string
	FirstPostAt time.Time
	VotesYes    int64
	VotesNo     int64
}
