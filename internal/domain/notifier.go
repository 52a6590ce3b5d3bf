package domain

import "context"

// Channel selects the destination a notification is delivered to. The mapping
// from channel to a concrete destination (webhook URL, chat channel id) is the
// notifier implementation's concern.
type Channel string

const (
	EventsChannel  Channel = "events"
	PollsChannel   Channel = "polls"
	GroupsChannel  Channel = "groups"
	PlayersChannel Channel = "players"
)

type NotificationKind int64

const (
	EventReminderNotification NotificationKind = iota
	PollOpenedNotification
	PollClosedNotification
	GroupFilledNotification
	AlarmNotification
)

func (nk NotificationKind) String() string {
	switch nk {
	case EventReminderNotification:
		return "event_reminder"
	case PollOpenedNotification:
		return "poll_opened"
	case PollClosedNotification:
		return "poll_closed"
	case GroupFilledNotification:
		return "group_filled"
	case AlarmNotification:
		return "alarm"
	}

	return "unknown"
}

type Notification struct {
	Channel Channel
	Kind    NotificationKind
	Title   string
	Body    string
	URL     string

	// Recipients are user handles to address directly, when the
	// notification targets specific users rather than a whole channel.
	Recipients []string
}

// Notifier delivers a notification. Callers treat a failed delivery as
// logged-and-done: reminders are at-most-once, never retried.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
