package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/arnold/lifesync-api/internal/tracker"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const pushTimeout = 10 * time.Second

type messageSender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// PushService sends deadline reminders via Firebase Cloud Messaging.
type PushService struct {
	client messageSender
	log    *zap.SugaredLogger
}

// Global push service instance
var Push = &PushService{log: zap.NewNop().Sugar()}

// InitPush initializes the Firebase push notification service.
// Push stays disabled when no service account is configured or Firebase
// cannot be reached; this is never fatal.
func InitPush(serviceAccountPath string, log *zap.SugaredLogger) {
	Push = &PushService{log: log}
	if serviceAccountPath == "" {
		log.Info("FCM: No service account configured, push notifications disabled")
		return
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Warnw("FCM: Failed to initialize Firebase app", "error", err)
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warnw("FCM: Failed to get messaging client", "error", err)
		return
	}

	Push.client = client
	log.Info("FCM: Push notifications enabled")
}

func (p *PushService) Enabled() bool {
	return p.client != nil
}

// NotifyAlerts sends one reminder per alert to the device token in the
// background. No-op if push is not configured or no device is registered.
func (p *PushService) NotifyAlerts(token, lang string, alerts []tracker.Alert) {
	if p.client == nil || token == "" || len(alerts) == 0 {
		return
	}

	msgs := make([]*messaging.Message, 0, len(alerts))
	for _, a := range alerts {
		msgs = append(msgs, reminderMessage(token, lang, a))
	}

	go func() {
		for _, msg := range msgs {
			ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
			_, err := p.client.Send(ctx, msg)
			cancel()
			if err != nil {
				p.log.Warnw("FCM: Failed to send reminder", "goalId", msg.Data["goalId"], "error", err)
			}
		}
	}()
}

func reminderMessage(token, lang string, a tracker.Alert) *messaging.Message {
	title, body := msgReminderCriticalTitle, msgReminderCriticalBody
	if a.Kind == tracker.AlertFrozen {
		title, body = msgReminderFrozenTitle, msgReminderFrozenBody
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: message(lang, title),
			Body:  fmt.Sprintf(message(lang, body), a.Title),
		},
		Data: map[string]string{
			"goalId": a.GoalID,
			"kind":   string(a.Kind),
		},
	}
}
