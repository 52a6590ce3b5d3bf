package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Event is a calendar event observed on the community's upstream feed.
type Event struct {
	ID       string
	Title    string
	StartsAt time.Time
	URL      string
	ImageURL string

	// Group is the target audience tag derived from the title; empty means
	// the event is open to everyone.
	Group string

	RSVPLimit int
	RSVPCount int

	// Reminders maps each configured lead-time label to whether that
	// reminder has already fired.
	Reminders map[string]bool
}

func (e *Event) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&e.StartsAt, validation.Required),
	)
}

func (e *Event) AllRemindersFired() bool {
	for _, fired := range e.Reminders {
		if !fired {
			return false
		}
	}

	return true
}

// ReminderFlags builds the reminders map for a freshly observed event: every
// configured label present, none fired.
func ReminderFlags(intervals []Interval) map[string]bool {
	flags := make(map[string]bool, len(intervals))
	for _, interval := range intervals {
		flags[interval.Label] = false
	}

	return flags
}

var groupTags = []struct {
	prefix string
	tag    string
}{
	{"uoa3", "UOA3"},
	{"arma 3", "UOA3"},
	{"event: arma 3", "UOA3"},
	{"uoaf", "UOAF"},
	{"event: uoaf", "UOAF"},
	{"uotc", "UOTC"},
}

// GroupFromTitle maps an event title prefix to the player group it targets.
// Unrecognized titles belong to no particular group.
func GroupFromTitle(title string) string {
	title = strings.ToLower(title)
	for _, gt := range groupTags {
		if strings.HasPrefix(title, gt.prefix) {
			return gt.tag
		}
	}

	return ""
}

var imageExp = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)

// ImageFromDescription pulls the first embedded image URL out of the event's
// HTML description, if one is present.
func ImageFromDescription(html string) string {
	matches := imageExp.FindStringSubmatch(html)
	if len(matches) != 2 {
		return ""
	}

	return matches[1]
}

type EventRegistry interface {
	Has(id string) bool
	Get(id string) (Event, bool)
	Add(ev Event) bool
	List() []Event
	UpdateRSVPs(id string, limit, count int) bool
	MarkReminderFired(id, label string) (Event, bool)
	RemoveIfOld(id string) bool
	Remove(id string) bool
}

// CalendarSource produces the upstream calendar listing.
//
// Entries are expected to be ordered by start time, soonest first; consumers
// stop at the first entry that is already in the past. Sources that cannot
// guarantee the ordering must filter past entries themselves.
type CalendarSource interface {
	CalendarEvents(ctx context.Context) ([]CalendarEntry, error)
}

// RSVPSource is optionally implemented by calendar sources that expose
// attendance information for individual events.
type RSVPSource interface {
	EventRSVPs(ctx context.Context, id string) (int, error)
}

// CalendarEntry is a raw calendar listing entity, before ingestion.
type CalendarEntry struct {
	ID          string
	Title       string
	StartsAt    time.Time
	URL         string
	Description string
	HasRSVP     bool
	RSVPLimit   int
}
