// Package notification defines the outbound messages the platform sends and
// the transports that deliver them.
package notification

import (
	"context"
	"log/slog"
)

// Kind selects the template a message is rendered with.
type Kind string

const (
	KindEventApproved         Kind = "event_approved"
	KindRegistrationConfirmed Kind = "registration_confirmed"
	KindEventConfirmed        Kind = "event_confirmed"
	KindPasswordReset         Kind = "password_reset"
	KindPasswordChanged       Kind = "password_changed"
	KindAnnouncement          Kind = "announcement"
)

// Data is the union of template fields. Each kind reads the subset it needs.
type Data struct {
	RecipientName    string `json:"recipient_name,omitempty"`
	EventTitle       string `json:"event_title,omitempty"`
	EventDate        string `json:"event_date,omitempty"`
	EventTimeRange   string `json:"event_time_range,omitempty"`
	Fee              int64  `json:"fee,omitempty"`
	ParticipantCount int    `json:"participant_count,omitempty"`
	ResetLink        string `json:"reset_link,omitempty"`
	ChangedAt        string `json:"changed_at,omitempty"`
	Subject          string `json:"subject,omitempty"`
	Content          string `json:"content,omitempty"`
	EventURL         string `json:"event_url,omitempty"`
}

// Message is one notification addressed to a single recipient.
type Message struct {
	To   string `json:"to"`
	Kind Kind   `json:"kind"`
	Data Data   `json:"data"`
}

// Dispatcher hands a message to a delivery transport.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// LogDispatcher writes messages to a logger instead of delivering them. It
// is the default transport for development.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	subject, _, err := Render(msg, "SPARK")
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "notification logged", "to", msg.To, "kind", string(msg.Kind), "subject", subject)
	return nil
}
