package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
)

const (
	NotificationTypeReply          = "circulo_reply"
	NotificationTypePrayerApproved = "prayer_approved"

	replyDebounceWindow = 5 * time.Minute
)

var ErrEmailUnavailable = errors.New("email service unavailable")

// Notifier fans domain events out to push and email. Either channel may be
// nil, in which case that channel is skipped.
type Notifier struct {
	push  *PushNotificationService
	email *EmailService
	inbox Inbox
	now   func() time.Time

	mu       sync.Mutex
	debounce map[string]time.Time
}

func NewNotifier(push *PushNotificationService, email *EmailService) *Notifier {
	return &Notifier{
		push:     push,
		email:    email,
		now:      time.Now,
		debounce: make(map[string]time.Time),
	}
}

// WithInbox makes the notifier also file in-app notifications.
func (n *Notifier) WithInbox(inbox Inbox) *Notifier {
	n.inbox = inbox
	return n
}

// record files an inbox entry; failures are logged and never block delivery.
func (n *Notifier) record(ctx context.Context, entry models.Notification) {
	if n.inbox == nil {
		return
	}
	if _, err := n.inbox.AddNotification(ctx, entry); err != nil {
		log.Warn().Err(err).Str("user_id", entry.User_ID).Str("type", entry.Notification_Type).Msg("Failed to record notification")
	}
}

// shouldSendDebounced reports whether a notification for the same type, user
// and entity was not sent within window. Entries older than a day are dropped.
func (n *Notifier) shouldSendDebounced(notifType, targetUserID, entityID string, window time.Duration) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	for key, at := range n.debounce {
		if now.Sub(at) > 24*time.Hour {
			delete(n.debounce, key)
		}
	}

	key := notifType + "|" + targetUserID + "|" + entityID
	if last, ok := n.debounce[key]; ok && now.Sub(last) < window {
		return false
	}
	n.debounce[key] = now
	return true
}

// NotifyAuthorOfReply tells the author of the post that was replied to.
// Self-replies and bursts of replies on the same post are not notified.
func (n *Notifier) NotifyAuthorOfReply(ctx context.Context, circulo *models.Circulo, reply *models.Post, parentAuthorID string) {
	if n == nil || circulo == nil || reply == nil || reply.Parent_Post_ID == nil {
		return
	}
	if parentAuthorID == "" || parentAuthorID == reply.Author_ID {
		return
	}
	if !n.shouldSendDebounced(NotificationTypeReply, parentAuthorID, *reply.Parent_Post_ID, replyDebounceWindow) {
		return
	}

	body := fmt.Sprintf("%s respondeu à sua publicação", reply.Author_Name)
	postID := *reply.Parent_Post_ID
	n.record(ctx, models.Notification{
		User_ID:              parentAuthorID,
		Notification_Type:    models.NotificationTypeCirculoReply,
		Notification_Message: fmt.Sprintf("%s em %s", body, circulo.Name),
		Target_Circulo_ID:    &circulo.Circulo_ID,
		Target_Post_ID:       &postID,
		Created_By:           reply.Author_ID,
	})

	if n.push == nil {
		return
	}
	payload := NotificationPayload{
		Title: circulo.Name,
		Body:  body,
		Data: map[string]string{
			"type":      NotificationTypeReply,
			"circuloId": circulo.Circulo_ID,
			"postId":    postID,
			"replyId":   reply.Post_ID,
		},
	}

	if err := n.push.SendNotificationToUser(ctx, parentAuthorID, payload); err != nil {
		log.Warn().Err(err).Str("user_id", parentAuthorID).Msg("Failed to send reply push notification")
	}
}

// NotifyAuthorOfPrayerApproved tells the author of a reviewed submission that
// it is now published.
func (n *Notifier) NotifyAuthorOfPrayerApproved(ctx context.Context, prayer *models.Prayer, editorID string) {
	if n == nil || prayer == nil || prayer.Author_ID == editorID {
		return
	}

	body := fmt.Sprintf("Sua oração \"%s\" foi aprovada", prayer.Title)
	n.record(ctx, models.Notification{
		User_ID:              prayer.Author_ID,
		Notification_Type:    models.NotificationTypePrayerApproved,
		Notification_Message: body,
		Target_Prayer_ID:     &prayer.Prayer_ID,
		Created_By:           editorID,
	})

	if n.push == nil {
		return
	}
	payload := NotificationPayload{
		Title: "Oração publicada",
		Body:  body,
		Data: map[string]string{
			"type":     NotificationTypePrayerApproved,
			"prayerId": prayer.Prayer_ID,
		},
	}

	if err := n.push.SendNotificationToUser(ctx, prayer.Author_ID, payload); err != nil {
		log.Warn().Err(err).Str("user_id", prayer.Author_ID).Msg("Failed to send prayer approved push notification")
	}
}

func (n *Notifier) SendWelcome(user *models.User) {
	if n == nil || n.email == nil || user == nil {
		return
	}
	if err := n.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
		log.Warn().Err(err).Str("user_id", user.User_ID).Msg("Failed to send welcome email")
	}
}

func (n *Notifier) NotifyMemberRemoved(user *models.User, circulo *models.Circulo) {
	if n == nil || user == nil || circulo == nil {
		return
	}

	n.record(context.Background(), models.Notification{
		User_ID:              user.User_ID,
		Notification_Type:    models.NotificationTypeMemberRemoved,
		Notification_Message: fmt.Sprintf("Você foi removido do círculo \"%s\"", circulo.Name),
		Target_Circulo_ID:    &circulo.Circulo_ID,
	})

	if n.email == nil {
		return
	}
	if err := n.email.SendRemovedFromCirculoEmail(user.Email, user.Name, circulo.Name); err != nil {
		log.Warn().Err(err).Str("user_id", user.User_ID).Msg("Failed to send removed from circulo email")
	}
}

// SendPasswordReset delivers a reset code. Unlike the other notifications it is
// synchronous: the caller cannot proceed without the email.
func (n *Notifier) SendPasswordReset(user *models.User, code string) error {
	if n == nil || n.email == nil {
		return ErrEmailUnavailable
	}
	return n.email.SendPasswordResetEmail(user.Email, code, user.Name)
}
