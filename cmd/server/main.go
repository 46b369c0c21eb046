package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/slimepool/internal/api"
	"github.com/playmatatu/slimepool/internal/api/handlers"
	"github.com/playmatatu/slimepool/internal/config"
	"github.com/playmatatu/slimepool/internal/database"
	"github.com/playmatatu/slimepool/internal/migrations"
	"github.com/playmatatu/slimepool/internal/players"
	"github.com/playmatatu/slimepool/internal/redis"
	"github.com/playmatatu/slimepool/internal/session"
	"github.com/playmatatu/slimepool/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Println("Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	playerRepo := players.NewRepository(db)
	manager := session.NewManager(
		session.NewRedisStore(rdb, time.Duration(cfg.SnapshotTTLMinutes)*time.Minute),
		playerRepo,
		session.NewRedisPublisher(rdb),
	)

	reaper := session.NewReaper(rdb, manager, time.Duration(cfg.SessionIdleSeconds)*time.Second)
	reaper.Start(ctx, time.Duration(cfg.IdleWorkerPollInterval)*time.Second)

	hub := ws.NewHub(manager, reaper)
	go hub.Run(ctx)
	ws.StartEventSubscriber(ctx, rdb, hub)

	runner := session.NewRunner(manager, cfg.BroadcastHz, cfg.TicksPerFrame(), func(s *session.Session, f session.Frame) {
		hub.BroadcastFrame(s.ID, f)
	})
	go runner.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, cfg, &handlers.Sessions{
		Manager: manager,
		Players: playerRepo,
		Reaper:  reaper,
		Frames:  hub,
	}, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting Slime Pool server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// keep live games resumable across restarts
	for _, s := range manager.Active() {
		if err := manager.Evict(shutdownCtx, s.ID); err != nil {
			log.Printf("Failed to persist session %s: %v", s.ID, err)
		}
	}
}
