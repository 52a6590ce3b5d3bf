package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

func TestEventValidate(t *testing.T) {
	t.Parallel()

	starts := time.Now().Add(time.Hour)

	tt := map[string]struct {
		event domain.Event
		valid bool
	}{
		"valid event":  {domain.Event{ID: "1824", Title: "UOA3 Joint Op", StartsAt: starts}, true},
		"missing id":   {domain.Event{Title: "UOA3 Joint Op", StartsAt: starts}, false},
		"missing date": {domain.Event{ID: "1824", Title: "UOA3 Joint Op"}, false},
	}

	for scenario, tc := range tt {
		tc := tc

		t.Run(scenario, func(t *testing.T) {
			t.Parallel()

			err := tc.event.Validate()

			if tc.valid {
				require.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestGroupFromTitle(t *testing.T) {
	t.Parallel()

	tt := map[string]struct {
		title string
		want  string
	}{
		"arma tag":        {"UOA3 Sunday Operation", "UOA3"},
		"arma long form":  {"Arma 3: Beach Assault", "UOA3"},
		"flight tag":      {"uoaf night sortie", "UOAF"},
		"training":        {"UOTC Basic Rifleman", "UOTC"},
		"no tag":          {"Community Movie Night", ""},
		"tag not prefix":  {"Sunday UOA3 Operation", ""},
	}

	for scenario, tc := range tt {
		tc := tc

		t.Run(scenario, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, domain.GroupFromTitle(tc.title))
		})
	}
}

func TestImageFromDescription(t *testing.T) {
	t.Parallel()

	html := `<p>Briefing</p><img class="bbc_img" src="https://cdn.example.org/op.png" alt=""><img src="https://cdn.example.org/two.png">`
	assert.Equal(t, "https://cdn.example.org/op.png", domain.ImageFromDescription(html))

	assert.Equal(t, "", domain.ImageFromDescription("<p>no image here</p>"))
}

func TestAllRemindersFired(t *testing.T) {
	t.Parallel()

	intervals, err := domain.ParseIntervals("30 minutes,2 hours")
	require.NoError(t, err)

	ev := domain.Event{Reminders: domain.ReminderFlags(intervals)}
	assert.False(t, ev.AllRemindersFired())

	ev.Reminders["30 minutes"] = true
	assert.False(t, ev.AllRemindersFired())

	ev.Reminders["2 hours"] = true
	assert.True(t, ev.AllRemindersFired())
}
