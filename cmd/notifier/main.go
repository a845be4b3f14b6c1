// Command notifier drains the notification queue and delivers each message
// by SMTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/spark-meetup/internal/config"
	"github.com/iliyamo/spark-meetup/internal/logging"
	"github.com/iliyamo/spark-meetup/internal/notification"
	"github.com/iliyamo/spark-meetup/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	var delivery notification.Dispatcher = notification.LogDispatcher{Logger: logger}
	if cfg.Notify.SMTPHost != "" {
		delivery = notification.NewSMTPDispatcher(notification.SMTPConfigFrom(cfg.Notify))
	} else {
		logger.Warn("SMTP_HOST not set; notifications are only logged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := &queue.Consumer{
		URL:      cfg.Notify.BrokerURL(),
		Queue:    cfg.Notify.Queue,
		Delivery: delivery,
		Logger:   logger,
	}
	logger.Info("notifier started", "queue", cfg.Notify.Queue)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}
