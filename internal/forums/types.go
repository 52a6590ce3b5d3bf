package forums

import (
	"strconv"
	"time"

	"github.com/valyala/fastjson"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

// NewCalendarListing parses the calendar feed payload. Entities the forums
// return in a shape we cannot use (no id, unparsable start date) are dropped
// individually rather than failing the whole listing.
func NewCalendarListing(val *fastjson.Value) ([]domain.CalendarEntry, error) {
	results := val.GetArray("results")
	if results == nil {
		return nil, ErrMalformedResponse
	}

	entries := make([]domain.CalendarEntry, 0, len(results))

	for _, result := range results {
		entry, ok := newCalendarEntry(result)
		if !ok {
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func newCalendarEntry(val *fastjson.Value) (domain.CalendarEntry, bool) {
	id := val.GetInt64("id")
	if id == 0 {
		return domain.CalendarEntry{}, false
	}

	startsAt, err := time.Parse(time.RFC3339, string(val.GetStringBytes("start")))
	if err != nil {
		return domain.CalendarEntry{}, false
	}

	return domain.CalendarEntry{
		ID:          strconv.FormatInt(id, 10),
		Title:       string(val.GetStringBytes("title")),
		StartsAt:    startsAt,
		URL:         string(val.GetStringBytes("url")),
		Description: string(val.GetStringBytes("description")),
		HasRSVP:     val.GetBool("rsvp"),
		RSVPLimit:   val.GetInt("rsvpLimit"),
	}, true
}

// NewVotingThreadListing parses the voting thread payload.
func NewVotingThreadListing(val *fastjson.Value) ([]domain.VotingThread, error) {
	results := val.GetArray("results")
	if results == nil {
		return nil, ErrMalformedResponse
	}

	threads := make([]domain.VotingThread, 0, len(results))

	for _, result := range results {
		thread, ok := newVotingThread(result)
		if !ok {
			continue
		}

		threads = append(threads, thread)
	}

	return threads, nil
}

func newVotingThread(val *fastjson.Value) (domain.VotingThread, bool) {
	id := val.GetInt64("id")
	if id == 0 {
		return domain.VotingThread{}, false
	}

	firstPostAt, err := time.Parse(time.RFC3339, string(val.GetStringBytes("firstPost", "date")))
	if err != nil {
		return domain.VotingThread{}, false
	}

	// classification lives in the first tag, falling back to the title prefix
	tag := ""
	if tags := val.GetArray("tags"); len(tags) > 0 {
		tag = string(tags[0].GetStringBytes())
	}
	if tag == "" {
		tag = string(val.GetStringBytes("prefix"))
	}

	thread := domain.VotingThread{
		ID:          id,
		Tag:         tag,
		Question:    string(val.GetStringBytes("poll", "title")),
		URL:         string(val.GetStringBytes("url")),
		FirstPostAt: firstPostAt,
	}

	if questions := val.GetArray("poll", "questions"); len(questions) > 0 {
		thread.VotesYes = questions[0].GetInt64("options", "Yes")
		thread.VotesNo = questions[0].GetInt64("options", "No")
	}

	return thread, true
}
