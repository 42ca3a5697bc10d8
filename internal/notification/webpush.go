package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"power-status-backend/internal/logger"
	"power-status-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WebPushNotifier pushes changes to the browsers subscribed to the place.
type WebPushNotifier struct {
	db       *gorm.DB
	payloads *PayloadBuilder
	webpush  *webpush.Options
	sender   NotificationSender
	log      logger.Logger
}

// NewWebPushNotifier creates a web push subscriber.
func NewWebPushNotifier(db *gorm.DB, payloads *PayloadBuilder, webpushOptions *webpush.Options, log logger.Logger) *WebPushNotifier {
	return &WebPushNotifier{
		db:       db,
		payloads: payloads,
		webpush:  webpushOptions,
		sender:   &WebPushSender{}, // Use the real sender by default
		log:      log,
	}
}

// Name implements Subscriber.
func (n *WebPushNotifier) Name() string { return "webpush" }

// Notify implements Subscriber. Failures of single endpoints are logged and
// do not fail the whole change.
func (n *WebPushNotifier) Notify(ctx context.Context, change Change) error {
	var subscriptions []model.PushSubscription
	err := n.db.WithContext(ctx).
		Joins("JOIN subscription_place_mapping spm ON spm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("spm.place_id = ?", change.PlaceID).
		Find(&subscriptions).Error
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions for place %s: %w", change.PlaceID, err)
	}

	if len(subscriptions) == 0 {
		return nil
	}

	payload, err := n.payloads.Build(ctx, change.PlaceID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	n.log.Debug("sending push notifications", "place_id", change.PlaceID, "count", len(subscriptions))
	for _, sub := range subscriptions {
		n.sendNotification(ctx, sub, body)
	}
	return nil
}

// sendNotification sends a single web push notification.
func (n *WebPushNotifier) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := n.sender.Send(payload, wpSub, n.webpush)
	if err != nil {
		n.log.Warn("failed to send push notification", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed.
	if resp.StatusCode == http.StatusGone {
		n.log.Info("push subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := n.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			n.log.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
