package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NotificationService delivers push notifications to pet owners.
type NotificationService interface {
	NotifyOwner(ctx context.Context, ownerID, title, body string, data map[string]string) error
}

// OwnerTopic is the FCM topic an owner's devices subscribe to.
func OwnerTopic(ownerID string) string {
	return "owner-" + ownerID
}

// MessageSender is the part of *messaging.Client used here.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotificationService sends pushes through Firebase Cloud Messaging.
type FCMNotificationService struct {
	client MessageSender
	logger *zap.Logger
}

// NewFCMNotificationService initializes the Firebase app from a service account file.
func NewFCMNotificationService(ctx context.Context, credentialsFile string, logger *zap.Logger) (*FCMNotificationService, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return NewFCMNotificationServiceWithClient(client, logger), nil
}

func NewFCMNotificationServiceWithClient(client MessageSender, logger *zap.Logger) *FCMNotificationService {
	return &FCMNotificationService{client: client, logger: logger.Named("fcm")}
}

func (s *FCMNotificationService) NotifyOwner(ctx context.Context, ownerID, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: OwnerTopic(ownerID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyOwner: failed to send to %s: %w", msg.Topic, err)
	}
	s.logger.Debug("Push sent", zap.String("topic", msg.Topic), zap.String("messageId", id))
	return nil
}

// LogNotificationService only logs. It is used when Firebase is not configured.
type LogNotificationService struct {
	logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	return &LogNotificationService{logger: logger.Named("notifications")}
}

func (s *LogNotificationService) NotifyOwner(_ context.Context, ownerID, title, body string, data map[string]string) error {
	s.logger.Info("Push notification",
		zap.String("topic", OwnerTopic(ownerID)),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("data", data),
	)
	return nil
}
