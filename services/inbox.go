package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/OraComigo/models"
)

// MaxInboxSize caps each user's inbox; the oldest entries fall off.
const MaxInboxSize = 100

// Inbox receives in-app notifications from the Notifier.
type Inbox interface {
	AddNotification(ctx context.Context, n models.Notification) (*models.Notification, error)
}

// AddNotification files n at the head of its user's inbox as unread.
func (s *Store) AddNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	var out *models.Notification
	err := s.insert(ctx, func() error {
		if _, err := s.userLocked(n.User_ID); err != nil {
			return err
		}

		entry := n
		entry.Notification_ID = s.ids.NewID("notif")
		entry.Notification_Status = models.NotificationStatusUnread
		entry.Datetime_Create = s.clock.Now()

		inbox := slices.Insert(s.inbox[n.User_ID], 0, &entry)
		if len(inbox) > MaxInboxSize {
			clear(inbox[MaxInboxSize:])
			inbox = slices.Clip(inbox[:MaxInboxSize])
		}
		s.inbox[n.User_ID] = inbox

		copied := entry
		out = &copied
		return nil
	})
	return out, err
}

// ListNotifications returns the user's inbox, newest first.
func (s *Store) ListNotifications(userID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0, len(s.inbox[userID]))
	for _, n := range s.inbox[userID] {
		out = append(out, *n)
	}
	return out
}

// ToggleNotificationStatus flips a notification between read and unread. Only
// the owner's inbox is searched, so other users' entries read as NotFound.
func (s *Store) ToggleNotificationStatus(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	var out *models.Notification
	err := s.insert(ctx, func() error {
		n, err := s.notificationLocked(userID, notificationID)
		if err != nil {
			return err
		}
		if n.Notification_Status == models.NotificationStatusRead {
			n.Notification_Status = models.NotificationStatusUnread
		} else {
			n.Notification_Status = models.NotificationStatusRead
		}
		copied := *n
		out = &copied
		return nil
	})
	return out, err
}

func (s *Store) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return s.insert(ctx, func() error {
		if _, err := s.notificationLocked(userID, notificationID); err != nil {
			return err
		}
		s.inbox[userID] = slices.DeleteFunc(s.inbox[userID], func(n *models.Notification) bool {
			return n.Notification_ID == notificationID
		})
		return nil
	})
}

// MarkAllNotificationsRead returns how many notifications changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	updated := 0
	err := s.insert(ctx, func() error {
		for _, n := range s.inbox[userID] {
			if n.Notification_Status == models.NotificationStatusUnread {
				n.Notification_Status = models.NotificationStatusRead
				updated++
			}
		}
		return nil
	})
	return updated, err
}

func (s *Store) notificationLocked(userID, notificationID string) (*models.Notification, error) {
	idx := slices.IndexFunc(s.inbox[userID], func(n *models.Notification) bool {
		return n.Notification_ID == notificationID
	})
	if idx < 0 {
		return nil, fmt.Errorf("notification %s: %w", notificationID, models.ErrNotFound)
	}
	return s.inbox[userID][idx], nil
}
