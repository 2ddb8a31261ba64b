package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"agora/internal/adapters/httpapi"
	"agora/internal/application"
	"agora/internal/config"
	"agora/internal/infrastructure/database"
	"agora/internal/infrastructure/i18n"
	"agora/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Database initialization error: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Migration error: %v", err)
	}

	eventRepo := database.NewEventRepository(pool)
	participantRepo := database.NewParticipantRepository(pool)
	translator := i18n.NewTranslator(cfg.DefaultLocale)

	participantSvc := application.NewParticipantService(participantRepo, eventRepo, translator)
	eventSvc := application.NewEventService(eventRepo, participantRepo)
	attendanceSvc := application.NewAttendanceService(eventRepo, participantSvc, translator, nil)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Events:       eventSvc,
		Participants: participantSvc,
		Attendance:   attendanceSvc,
		Auth:         httpapi.NewAuth(cfg.JWTSecret),
		Metrics:      metrics.New(registry),
		Registry:     registry,
		Health:       pool.Ping,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("✅ HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Shutdown error: %v", err)
	}
	log.Println("✅ Server stopped.")
}
