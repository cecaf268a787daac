package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/admission"
	"github.com/gdg-garage/crawl-registration-api/internal/auth"
	"github.com/gdg-garage/crawl-registration-api/internal/availability"
	"github.com/gdg-garage/crawl-registration-api/internal/capacity"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/gdg-garage/crawl-registration-api/internal/database"
	"github.com/gdg-garage/crawl-registration-api/internal/export"
	"github.com/gdg-garage/crawl-registration-api/internal/handlers"
	"github.com/gdg-garage/crawl-registration-api/internal/locks"
	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
	"github.com/gdg-garage/crawl-registration-api/internal/ratelimit"
	"github.com/gdg-garage/crawl-registration-api/internal/reminders"
	"github.com/gdg-garage/crawl-registration-api/internal/reporting"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(context.Background())

	schedule := cfg.Schedule()
	cat := catalog.New(db, schedule)
	legacy := capacity.NewLegacyCounter(db)
	ledger := capacity.NewLedger(legacy, capacity.NewEventScopedCounter(db, schedule))

	locker, err := locks.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize admission lock: %v", err)
	}
	mail, err := mailer.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	var alerts notifier.Notifier
	discordNotifier, err := notifier.NewDiscordNotifier(cfg)
	if err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	} else {
		alerts = discordNotifier
	}

	authHandler := auth.NewAuthHandler(cfg)
	controller := admission.New(db, cat, legacy, locker, admission.Options{
		EmailDomain:      cfg.AllowedEmailDomain,
		DayCapacity:      cfg.DayCapacity,
		AdminEmail:       cfg.AdminEmail,
		EventTime:        cfg.EventTime,
		EventDescription: cfg.EventDescription,
	}, logger)

	registrationHandler := handlers.NewRegistrationHandler(controller, notifier.NewDispatcher(mail, alerts, logger), logger)
	h := handlers.Handlers{
		Public:       handlers.NewPublicHandler(cat, availability.New(cat, legacy, ledger, cfg.DefaultCapacity, cfg.DayCapacity), logger),
		Registration: registrationHandler,
		Admin: handlers.NewAdminHandler(
			authHandler,
			reporting.New(db, cat, authHandler, cfg.DefaultCapacity),
			reminders.New(db, cat, mail, authHandler, cfg.EventTime, cfg.ReminderInterval, logger),
			cat,
			export.New(schedule),
			cfg,
			logger,
		),
	}
	if cfg.RegisterRatePerMinute > 0 {
		h.Limiter = ratelimit.PerMinute(cfg.RegisterRatePerMinute)
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	// Let in-flight confirmation emails finish.
	registrationHandler.Wait()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
