package entities

import "time"

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationDrivePosted         NotificationType = "drive_posted"
	NotificationDriveApproved       NotificationType = "drive_approved"
	NotificationDriveRejected       NotificationType = "drive_rejected"
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationApplicationStatus   NotificationType = "application_status"
	NotificationDeadlineReminder    NotificationType = "deadline_reminder"
	NotificationProfileUpdate       NotificationType = "profile_update"
	NotificationSystemUpdate        NotificationType = "system_update"
	NotificationPlacementSuccess    NotificationType = "placement_success"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationDrivePosted:         {},
	NotificationDriveApproved:       {},
	NotificationDriveRejected:       {},
	NotificationApplicationReceived: {},
	NotificationApplicationStatus:   {},
	NotificationDeadlineReminder:    {},
	NotificationProfileUpdate:       {},
	NotificationSystemUpdate:        {},
	NotificationPlacementSuccess:    {},
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

// Notification is an in-app message for a placement portal user
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"isRead"`
	CreatedAt time.Time         `json:"createdAt"`
	ActionURL string            `json:"actionUrl,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
