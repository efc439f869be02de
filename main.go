package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fichaje/client"
	"fichaje/config"
	"fichaje/dashboard"
	"fichaje/database"
	"fichaje/handlers"
	"fichaje/logger"
	"fichaje/middleware"
	"fichaje/models"
	"fichaje/reminder"
	"fichaje/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.Log

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Session store
	var store session.Store
	switch cfg.SessionStore {
	case "memory":
		store = session.NewMemoryStore()
		log.Warn("using in-memory session store, sessions are lost on restart")
	default:
		if err := database.Init(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = session.NewGormStore(database.GetDB())
	}

	templates, err := handlers.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	api := client.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	states := dashboard.NewRegistry(api, log)
	reminders := reminder.New(cfg.ReminderInterval, cfg.HTTPTimeout, store, states, api, reminder.LogNotifier{Log: log}, log)
	sessions := session.NewManager(store, api, states, reminders, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, templates, sessions, states)
	clockHandler := handlers.NewClockHandler(cfg, templates, sessions, states)
	statusHandler := handlers.NewStatusHandler(api, states, reminders, cfg.HTTPTimeout)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/healthz", statusHandler.Health)
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(store))

		r.Post("/logout", authHandler.Logout)
		r.Get("/change-password", authHandler.ChangePasswordPage)
		r.Post("/change-password", authHandler.ChangePassword)
		r.Post("/push-token", authHandler.SavePushToken)

		r.Get("/dashboard", clockHandler.Dashboard)
		r.Post("/fichar", clockHandler.Clock)
		r.Post("/fichar-nfc", clockHandler.ClockNFC)
		r.Get("/fichajes", clockHandler.HistoryPage)
		r.Get("/fichajes/export.csv", clockHandler.ExportCSV)
		r.Get("/resumen", clockHandler.SummaryPage)
		r.Get("/incidencias", clockHandler.IncidencesPage)
		r.Post("/incidencias", clockHandler.CreateIncidence)
		r.Get("/recordatorio", clockHandler.ReminderPoll)

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/admin/estado", statusHandler.Overview)
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s, backend %s", cfg.ServerPort, api.BaseURL())
		serverDone <- server.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server stopped: %v", err)
		}
	case sig := <-osSignals:
		log.Infof("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}

	reminders.Stop()
	log.Info("Shutdown complete")
}
