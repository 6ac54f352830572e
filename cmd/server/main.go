package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kleanly/kleanly-api/internal/config"
	"github.com/kleanly/kleanly-api/internal/database"
	"github.com/kleanly/kleanly-api/internal/notify"
	"github.com/kleanly/kleanly-api/internal/queue"
	"github.com/kleanly/kleanly-api/internal/router"
	"github.com/kleanly/kleanly-api/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: .env not loaded: %v", err)
	}
	cfg := config.Load()
	ncfg := config.LoadNotifyConfig()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channels := &notify.Channels{
		Email: notify.NewEmailSender(ncfg.SendGridAPIKey, ncfg.FromEmail),
		Push:  notify.NewPushSender(ncfg.ExpoPushURL, &http.Client{Timeout: ncfg.Timeout}),
	}
	var sink notify.Notifier = channels
	if ncfg.Transport == config.TransportAMQP {
		sink = queue.NewPublisher(ncfg.AMQPURL, ncfg.Queue)
		consumer := queue.NewConsumer(ncfg.AMQPURL, ncfg.Queue, channels, ncfg.Timeout)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("notify-consumer: stopped: %v", err)
			}
		}()
	}
	dispatcher := notify.NewDispatcher(sink, ncfg.Timeout)

	e := router.New(router.Deps{
		Config:    cfg,
		RateLimit: config.LoadRateLimitConfig(),
		DB:        db,
		Redis:     rdb,
		Tokens:    utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL),
		Notify:    dispatcher,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s, notify=%s)", addr, cfg.Env, cfg.DBDriver, ncfg.Transport)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	dispatcher.Wait()
}
