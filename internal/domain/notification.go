package domain

import "time"

type NotificationType string

const NotificationWorktime NotificationType = "worktime"

// NotificationKind names the event a worktime notification reports.
type NotificationKind string

const (
	NotifyStart    NotificationKind = "start"
	NotifyStop     NotificationKind = "stop"
	NotifyAutoStop NotificationKind = "auto_stop"
)

type Notification struct {
	ID              string
	UserID          string
	Title           string
	Message         string
	Type            NotificationType
	Kind            NotificationKind
	RelatedEntityID string
	Read            bool
	CreatedAt       time.Time
}
