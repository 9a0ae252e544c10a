package models

import "time"

// Notification type constants
const (
	NotificationTypeCirculoReply   = "CIRCULO_REPLY"
	NotificationTypePrayerApproved = "PRAYER_APPROVED"
	NotificationTypeMemberRemoved  = "MEMBER_REMOVED"
)

// Notification status constants
const (
	NotificationStatusRead   = "READ"
	NotificationStatusUnread = "UNREAD"
)

// Notification is an entry of a user's in-app inbox.
type Notification struct {
	Notification_ID      string    `json:"notificationId"`
	User_ID              string    `json:"userId"`
	Notification_Type    string    `json:"notificationType"`
	Notification_Message string    `json:"notificationMessage"`
	Notification_Status  string    `json:"notificationStatus"`
	Target_Circulo_ID    *string   `json:"targetCirculoId,omitempty"`
	Target_Post_ID       *string   `json:"targetPostId,omitempty"`
	Target_Prayer_ID     *string   `json:"targetPrayerId,omitempty"`
	Datetime_Create      time.Time `json:"datetimeCreate"`
	Created_By           string    `json:"createdBy,omitempty"`
}
