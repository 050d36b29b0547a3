package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/config"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/notify"
	"github.com/anisjkb/deed/internal/obs"
	"github.com/anisjkb/deed/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLoggerWithConfig(obs.LogConfig{
		Format: envOrDefault("OBS_LOG_FORMAT", "auto"),
		Level:  envOrDefault("OBS_LOG_LEVEL", "info"),
		File:   envOrDefault("OBS_LOG_FILE", ""),
	}).With().Str("env", cfg.AppEnv).Str("component", "worker").Logger()

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the worker")
	}

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "deed")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	resilience.MustRegisterMetrics(metricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, db.ConnectConfig{
		URL:             cfg.DatabaseURL,
		ApplicationName: cfg.AppName + "-worker",
		MaxConns:        int32(cfg.WorkerConcurrency + 1),
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	worker := &notify.Worker{
		Leads:    db.New(pool),
		Mail:     mailer(cfg, logger),
		To:       cfg.LeadsNotifyEmail,
		Location: cfg.Location,
		Logger:   logger,
	}
	if worker.To == "" {
		logger.Warn().Msg("LEADS_NOTIFY_EMAIL not set: notifications will be skipped")
	}

	mux := asynq.NewServeMux()
	worker.Register(mux)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{notify.QueueName: 1},
		Logger:      asynqLogger{l: logger},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			d := resilience.Backoff(15*time.Second, n+1, 0.2)
			if d > 30*time.Minute {
				d = 30 * time.Minute
			}
			return d
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error().Err(err).Str("type", task.Type()).Int("retry", retried).Int("max_retry", maxRetry).Msg("task failed")
		}),
		ShutdownTimeout: 20 * time.Second,
	})

	if addr := envOrDefault("WORKER_METRICS_ADDR", ""); addr != "" {
		go serveMetrics(addr, logger)
	}

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
	<-ctx.Done()
	logger.Info().Msg("worker stopping")
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func mailer(cfg *config.Config, logger zerolog.Logger) common.Mailer {
	if cfg.SMTPAddr == "" {
		logger.Warn().Msg("SMTP_ADDR not set: lead notifications are logged, not mailed")
		return notify.LogSender{Logger: logger}
	}
	return resilience.Sender{
		Next: notify.SMTPSender{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		},
		Breaker:     resilience.NewBreaker(5, 0.5, time.Minute).WithTarget("smtp").WithLogger(logger),
		MaxAttempts: 3,
		BaseBackoff: 500 * time.Millisecond,
		Jitter:      0.2,
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info().Str("addr", addr).Msg("worker metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct{ l zerolog.Logger }

func (a asynqLogger) Debug(args ...any) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal().Msg(fmt.Sprint(args...)) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
