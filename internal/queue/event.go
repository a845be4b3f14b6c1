// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/spark-meetup/internal/notification"
)

// DefaultQueueName is the durable queue notifications are published to.
const DefaultQueueName = "notifications.email"

// NotificationEvent is published whenever the API wants an email sent. It
// carries the fully resolved template data so the consumer never needs the
// primary database.
type NotificationEvent struct {
	Message     notification.Message `json:"message"`
	PublishedAt string               `json:"published_at"`
}

func encodeEvent(msg notification.Message, now time.Time) ([]byte, error) {
	return json.Marshal(NotificationEvent{Message: msg, PublishedAt: now.UTC().Format(time.RFC3339)})
}

func decodeEvent(body []byte) (NotificationEvent, error) {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Message.To == "" || ev.Message.Kind == "" {
		return ev, fmt.Errorf("incomplete notification event")
	}
	return ev, nil
}
