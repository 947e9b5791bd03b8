package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anish-yen/barber-app/internal/cache"
	"github.com/anish-yen/barber-app/internal/config"
	"github.com/anish-yen/barber-app/internal/db"
	"github.com/anish-yen/barber-app/internal/events"
	"github.com/anish-yen/barber-app/internal/httpapi"
	"github.com/anish-yen/barber-app/internal/metrics"
	"github.com/anish-yen/barber-app/internal/notify"
	"github.com/anish-yen/barber-app/internal/schedule"
	"github.com/anish-yen/barber-app/internal/service"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BARBER_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := time.LoadLocation(cfg.Shop.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Shop.Timezone).Msg("invalid shop timezone")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := buildNotifier(cfg, &logger)
	trigger := notify.NewTrigger(database, notifier, cfg.Shop.NotifyPosition, &logger)

	var dispatcher notify.Dispatcher
	if rdb != nil {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		dispatcher = notify.NewAsynqDispatcher(client, &logger)
		go startAsynqServer(ctx, redisOpt, trigger, &logger)
	} else {
		dispatcher = notify.NewInlineDispatcher(trigger, &logger)
	}

	bus := events.NewBus()
	bus.Subscribe(events.TopicQueueChanged, func(e events.Event) {
		dispatcher.QueueChanged(e.EntryID)
	})

	statusCache := cache.NewStatusCache(rdb, cfg.StatusCacheTTL())
	bus.Subscribe(events.TopicScheduleChanged, func(events.Event) {
		statusCache.Invalidate(context.Background())
	})

	waitlist := service.NewWaitlist(database, database, schedule.SystemClock{}, loc, bus, statusCache, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	httpapi.NewHandler(waitlist, &logger).Register(e)

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("timezone", cfg.Shop.Timezone).Msg("waitlist server started")
	if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) notify.Notifier {
	if !cfg.Notifications.Enabled {
		// Sends fail with ErrNotConfigured; the trigger downgrades that to
		// a warning and the queue keeps moving.
		return notify.NewResendNotifier("", "")
	}

	var inner notify.Notifier
	switch cfg.Notifications.Provider {
	case "telegram":
		tg, err := notify.NewTelegramNotifier(cfg.Notifications.Telegram.BotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier")
		}
		inner = tg
	default:
		inner = notify.NewResendNotifier(cfg.Notifications.Resend.APIKey, cfg.Notifications.Resend.From)
	}
	return notify.NewRateLimited(inner, cfg.Notifications.RatePerSecond, cfg.Notifications.RateBurst)
}

func startAsynqServer(ctx context.Context, redisOpt asynq.RedisClientOpt, trigger *notify.Trigger, logger *zerolog.Logger) {
	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 5})

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TypeNotifyCheck, notify.NewNotifyCheckHandler(trigger))

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()
	if err := srv.Run(mux); err != nil {
		logger.Error().Err(err).Msg("asynq server error")
	}
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
