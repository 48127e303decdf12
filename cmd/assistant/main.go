package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aymounosbedoui82-commits/lamis/internal/api"
	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
	"github.com/aymounosbedoui82-commits/lamis/internal/config"
	"github.com/aymounosbedoui82-commits/lamis/internal/db"
	"github.com/aymounosbedoui82-commits/lamis/internal/notify"
	redisclient "github.com/aymounosbedoui82-commits/lamis/internal/redis"
	"github.com/aymounosbedoui82-commits/lamis/internal/reminder"
	"github.com/aymounosbedoui82-commits/lamis/internal/temporal"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("assistant starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s poll_interval=%s", cfg.Env, cfg.HTTPPort, cfg.PollInterval)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 10*time.Second)
	err = db.EnsureSchema(schemaCtx, pgPool)
	cancelSchema()
	if err != nil {
		log.Fatalf("schema bootstrap error: %v", err)
	}

	// Connect Redis; the dispatch claim is optional for a single replica
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	repo := appointment.NewPgRepository(pgPool)
	extractor := temporal.NewExtractor()
	svc := appointment.NewService(repo, extractor, reminder.Plan)

	var gateway notify.Sender
	if cfg.TelegramToken != "" {
		gateway = notify.NewTelegramGateway(cfg.TelegramToken, cfg.TelegramAPIBase)
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, notifications go to the process log")
		gateway = notify.LogGateway{}
	}
	bridge := notify.NewBridge(gateway, cfg.GatewayQueueSize)

	claimer := redisclient.NewRedisReminderClaimer(rdb, cfg.DispatchLockTTL)
	dispatcher := reminder.NewDispatcher(repo, bridge, claimer, reminder.Options{
		PollInterval:   cfg.PollInterval,
		HandoffTimeout: cfg.HandoffTimeout,
		BatchLimit:     cfg.DueBatchLimit,
	})

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(rootCtx)

	// The bridge goroutine is the gateway's owning execution context.
	g.Go(func() error {
		return bridge.Run(gCtx)
	})

	g.Go(func() error {
		return dispatcher.Run(gCtx)
	})

	g.Go(func() error {
		log.Printf("http server listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("assistant exited with error: %v", err)
	}

	log.Println("assistant shut down cleanly")
}
