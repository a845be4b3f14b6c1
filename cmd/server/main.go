package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/spark-meetup/internal/config"
	"github.com/iliyamo/spark-meetup/internal/database"
	"github.com/iliyamo/spark-meetup/internal/handler"
	"github.com/iliyamo/spark-meetup/internal/logging"
	"github.com/iliyamo/spark-meetup/internal/middleware"
	"github.com/iliyamo/spark-meetup/internal/notification"
	"github.com/iliyamo/spark-meetup/internal/queue"
	"github.com/iliyamo/spark-meetup/internal/repository"
	"github.com/iliyamo/spark-meetup/internal/router"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(database.Options{
		Driver: cfg.DB.Driver,
		User:   cfg.DB.User,
		Pass:   cfg.DB.Pass,
		Host:   cfg.DB.Host,
		Port:   cfg.DB.Port,
		Name:   cfg.DB.Name,
		Path:   cfg.DB.SQLitePath,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db, cfg.DB.Driver)
	cancel()
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and response cache disabled", "addr", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	services := buildServices(cfg, db, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Resolver:  services.auth,
		DB:        db,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		Cache:     cfg.Cache,
		Auth:      handler.NewAuthHandler(services.auth),
		Events:    handler.NewEventHandler(services.events),
		Slots:     handler.NewSlotHandler(services.slots),
		Reviews:   handler.NewReviewHandler(services.reviews),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "db", cfg.DB.Driver, "notify", cfg.Notify.Transport)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return e.Shutdown(shutdownCtx)
}

type services struct {
	auth    *service.AuthService
	events  *service.EventService
	slots   *service.SlotService
	reviews *service.ReviewService
}

func buildServices(cfg config.Config, db *sql.DB, logger *slog.Logger) services {
	now := time.Now
	withTx := func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		return database.WithTx(ctx, db, fn)
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	reviews := repository.NewReviewRepo(db)
	slots := repository.NewSlotRepo(db)
	dispatcher := buildDispatcher(cfg.Notify, logger)

	deps := service.EventDeps{
		Events:        events,
		Registrations: registrations,
		Reviews:       reviews,
		Users:         users,
		Participants:  service.NewParticipantService(repository.NewParticipantRepo(db), now, logger),
		Slots:         slots,
		WithTx:        withTx,
		Dispatcher:    dispatcher,
		FrontendURL:   cfg.FrontendURL,
	}
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3Store(cfg.Storage)
		if err != nil {
			logger.Warn("document storage disabled", "error", err)
		} else {
			deps.Documents = store
		}
	}

	return services{
		auth: service.NewAuthService(users, repository.NewTokenRepo(db), repository.NewResetTokenRepo(db), withTx, dispatcher, service.AuthOptions{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
			ResetTokenTTL:  cfg.ResetTokenTTL,
			FrontendURL:    cfg.FrontendURL,
		}, now, logger),
		events:  service.NewEventService(deps, now, logger),
		slots:   service.NewSlotService(slots, now, logger),
		reviews: service.NewReviewService(reviews, events, registrations, now, logger),
	}
}

// buildDispatcher picks the notification transport. amqp hands messages to
// the notifier process; smtp sends inline; log only records them.
func buildDispatcher(cfg config.NotifyConfig, logger *slog.Logger) notification.Dispatcher {
	switch strings.ToLower(cfg.Transport) {
	case "amqp":
		return queue.NewPublisher(cfg.BrokerURL(), cfg.Queue, logger)
	case "smtp":
		return notification.NewSMTPDispatcher(notification.SMTPConfigFrom(cfg))
	default:
		return notification.LogDispatcher{Logger: logger}
	}
}
