package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/OraComigo/models"
)

var ErrNoPushTokens = errors.New("no push tokens registered")

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushTokenSource is the part of the store the push service reads tokens from.
type PushTokenSource interface {
	PushTokens(userID string) []models.PushToken
	RemovePushTokens(ctx context.Context, tokens []string) error
}

type PushNotificationService struct {
	fcmClient messageSender
	tokens    PushTokenSource
}

type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Badge    string            `json:"badge,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

// InitPushNotificationService connects to FCM with the service account file,
// or with Application Default Credentials when no path is given. It returns
// nil when Firebase cannot be initialised.
func InitPushNotificationService(ctx context.Context, serviceAccountPath string, tokens PushTokenSource) *PushNotificationService {
	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		log.Error().Err(err).Bool("service_account", serviceAccountPath != "").Msg("Failed to initialize Firebase app")
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get Firebase messaging client")
		return nil
	}

	log.Info().Msg("Push notification service initialized successfully with FCM")
	return NewPushNotificationService(client, tokens)
}

func NewPushNotificationService(client messageSender, tokens PushTokenSource) *PushNotificationService {
	return &PushNotificationService{fcmClient: client, tokens: tokens}
}

func (s *PushNotificationService) SendNotificationToUser(ctx context.Context, userID string, payload NotificationPayload) error {
	if s == nil || s.fcmClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	tokens := s.tokens.PushTokens(userID)
	if len(tokens) == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNoPushTokens)
	}

	var stale []string
	for _, token := range tokens {
		err := s.sendToToken(ctx, token, payload)
		if err == nil {
			continue
		}
		log.Warn().Err(err).Str("user_id", userID).Str("platform", token.Platform).Msg("Failed to send notification to token")
		if messaging.IsRegistrationTokenNotRegistered(err) {
			stale = append(stale, token.Push_Token)
		}
	}

	if err := s.tokens.RemovePushTokens(ctx, stale); err != nil {
		log.Error().Err(err).Int("tokens", len(stale)).Msg("Failed to remove stale push tokens")
	}
	return nil
}

func (s *PushNotificationService) sendToToken(ctx context.Context, pushToken models.PushToken, payload NotificationPayload) error {
	message := &messaging.Message{
		Token: pushToken.Push_Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	switch pushToken.Platform {
	case "ios":
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: payload.Title,
						Body:  payload.Body,
					},
					Sound: payload.Sound,
				},
			},
		}
		if payload.Badge != "" {
			if badgeNum, err := strconv.Atoi(payload.Badge); err == nil {
				message.APNS.Payload.Aps.Badge = &badgeNum
			}
		}
		if payload.Priority == "high" {
			message.APNS.Headers = map[string]string{
				"apns-priority": "10",
			}
		}
	case "android":
		message.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Title: payload.Title,
				Body:  payload.Body,
				Sound: payload.Sound,
			},
			Priority: "normal",
		}
		if payload.Priority == "high" {
			message.Android.Priority = "high"
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// FCM error codes are checked by type assertion, so the error is returned as is
	response, err := s.fcmClient.Send(ctx, message)
	if err != nil {
		return err
	}

	log.Debug().Str("message_id", response).Str("platform", pushToken.Platform).Msg("Sent FCM notification")
	return nil
}
