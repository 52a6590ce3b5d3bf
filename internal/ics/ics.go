// Package ics is an alternate calendar source for communities that publish
// their event calendar as an iCalendar feed instead of the forums API.
// Entries are normalized into the same shape the forums client produces,
// filtered to upcoming entries and sorted soonest-first, which is the
// ordering the poller depends on.
package ics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type Source struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewSource(url string) *Source {
	return NewSourceWithHTTPClient(url, &http.Client{Timeout: 15 * time.Second})
}

// NewSourceWithHTTPClient is used by tests to swap the transport out.
func NewSourceWithHTTPClient(url string, client *http.Client) *Source {
	return &Source{url: url, client: client, now: time.Now}
}

func (s *Source) CalendarEvents(ctx context.Context) ([]domain.CalendarEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching ics feed: %d", resp.StatusCode)
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, err
	}

	var entries []domain.CalendarEntry

	// Feeds commonly carry the community's whole history. Consumers only
	// look at upcoming entries, so everything already started is dropped
	// here rather than pushed downstream.
	now := s.now()

	for _, ve := range cal.Events() {
		entry, ok := newEntry(ve)
		if !ok {
			continue
		}
		if !entry.StartsAt.After(now) {
			continue
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartsAt.Before(entries[j].StartsAt)
	})

	return entries, nil
}

func newEntry(ve *ical.VEvent) (domain.CalendarEntry, bool) {
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return domain.CalendarEntry{}, false
	}

	startsAt, err := ve.GetStartAt()
	if err != nil {
		return domain.CalendarEntry{}, false
	}

	entry := domain.CalendarEntry{
		ID:       uid.Value,
		StartsAt: startsAt,
	}

	if summary := ve.GetProperty(ical.ComponentPropertySummary); summary != nil {
		entry.Title = summary.Value
	}
	if desc := ve.GetProperty(ical.ComponentPropertyDescription); desc != nil {
		entry.Description = desc.Value
	}
	if url := ve.GetProperty(ical.ComponentPropertyUrl); url != nil {
		entry.URL = url.Value
	}

	return entry, true
}
