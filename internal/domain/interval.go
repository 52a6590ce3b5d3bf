package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type IntervalUnit int64

const (
	IntervalMinute IntervalUnit = iota
	IntervalHour
	IntervalDay
)

func (iu IntervalUnit) Duration() time.Duration {
	switch iu {
	case IntervalMinute:
		return time.Minute
	case IntervalHour:
		return time.Hour
	case IntervalDay:
		return 24 * time.Hour
	}

	return 0
}

// Interval is a configured reminder lead time, parsed from a label such as
// "30 minutes", "2 hours" or "1 day". The label is the identity callers key
// reminder state by, so it is preserved verbatim.
type Interval struct {
	Label  string
	Amount int
	Unit   IntervalUnit
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.Amount) * i.Unit.Duration()
}

func ParseInterval(label string) (Interval, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("%w: %q", ErrBadInterval, label)
	}

	amount, err := strconv.Atoi(parts[0])
	if err != nil || amount <= 0 {
		return Interval{}, fmt.Errorf("%w: %q", ErrBadInterval, label)
	}

	var unit IntervalUnit
	switch {
	case strings.HasPrefix(parts[1], "minute"):
		unit = IntervalMinute
	case strings.HasPrefix(parts[1], "hour"):
		unit = IntervalHour
	case strings.HasPrefix(parts[1], "day"):
		unit = IntervalDay
	default:
		return Interval{}, fmt.Errorf("%w: %q", ErrBadInterval, label)
	}

	return Interval{Label: label, Amount: amount, Unit: unit}, nil
}

// ParseIntervals parses a comma separated list of lead-time labels, the shape
// the ALERT_TIMES environment variable arrives in. Any bad label fails the
// whole list; lead times are startup configuration and a typo should be loud.
func ParseIntervals(csv string) ([]Interval, error) {
	var intervals []Interval

	for _, label := range strings.Split(csv, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		interval, err := ParseInterval(label)
		if err != nil {
			return nil, err
		}

		intervals = append(intervals, interval)
	}

	return intervals, nil
}
