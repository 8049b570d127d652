// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/controller"
	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/router"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Init DB
	database, err := db.Open(cfg.DB(logger))
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("✅ Connected to database", "driver", database.Driver())

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx, database)
		cancel()
		if err != nil {
			return err
		}
	}

	events, closeEvents, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	userRepo := &repository.UserRepository{DB: database}
	contactRepo := &repository.ContactRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}

	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	authService := &service.AuthService{UserRepo: userRepo, Tokens: jwt, Events: events}
	contactService := &service.ContactService{ContactRepo: contactRepo, Events: events}
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		Events:       events,
	}

	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	defer limiter.Stop()

	h := router.New(router.Deps{
		Auth:        &controller.AuthController{AuthService: authService},
		Contacts:    &controller.ContactController{ContactService: contactService},
		Campaigns:   &controller.CampaignController{CampaignService: campaignService},
		Tokens:      jwt,
		Limiter:     limiter,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher sends events to RabbitMQ when AMQP_URL is set. Otherwise they
// stay in process and are only logged.
func newPublisher(cfg *config.Config, logger *slog.Logger) (queue.Publisher, func(), error) {
	if cfg.AMQPURL != "" {
		p, err := queue.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("📡 Publishing events to RabbitMQ", "exchange", cfg.AMQPExchange)
		return p, func() { _ = p.Close() }, nil
	}

	q := queue.NewInMemoryQueue(logger)
	q.Subscribe(queue.AllTopics, queue.LogSubscriber(logger))
	return q, func() { _ = q.Close() }, nil
}
