package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/notification"
)

// notify hands msg to d and reports whether the dispatcher accepted it.
// Failures are logged and never returned.
func notify(ctx context.Context, d notification.Dispatcher, logger *slog.Logger, msg notification.Message) bool {
	if d == nil || strings.TrimSpace(msg.To) == "" {
		return false
	}
	if err := d.Dispatch(ctx, msg); err != nil {
		logger.WarnContext(ctx, "notification not delivered",
			"kind", string(msg.Kind),
			"error", err,
		)
		return false
	}
	return true
}

func eventData(name string, e model.Event) notification.Data {
	return notification.Data{
		RecipientName:  name,
		EventTitle:     e.Title,
		EventDate:      e.Date,
		EventTimeRange: e.TimeRange,
		Fee:            e.Fee,
	}
}
