package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dermassist/skin-triage-platform/cmd/mainconfig"
	"github.com/dermassist/skin-triage-platform/internal/api/router"
	"github.com/dermassist/skin-triage-platform/internal/appointments"
	"github.com/dermassist/skin-triage-platform/internal/classifier"
	appconfig "github.com/dermassist/skin-triage-platform/internal/config"
	"github.com/dermassist/skin-triage-platform/internal/hospital"
	"github.com/dermassist/skin-triage-platform/internal/imagestore"
	"github.com/dermassist/skin-triage-platform/internal/inference"
	"github.com/dermassist/skin-triage-platform/internal/messaging"
	"github.com/dermassist/skin-triage-platform/internal/notify"
	"github.com/dermassist/skin-triage-platform/internal/observability/metrics"
	"github.com/dermassist/skin-triage-platform/internal/predictions"
	"github.com/dermassist/skin-triage-platform/internal/risk"
	"github.com/dermassist/skin-triage-platform/internal/speech"
	"github.com/dermassist/skin-triage-platform/internal/triage"
	"github.com/dermassist/skin-triage-platform/internal/users"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting skin-triage-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: Postgres when a database is configured, in-memory
	// otherwise so the server still comes up for local development.
	var (
		usersRepo users.Repository
		predRepo  predictions.Repository
		apptRepo  appointments.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		usersRepo = users.NewPostgresRepository(pool)
		predRepo = predictions.NewPostgresRepository(pool)
		apptRepo = appointments.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		usersRepo = users.NewInMemoryRepository()
		predRepo = predictions.NewInMemoryRepository()
		apptRepo = appointments.NewInMemoryRepository()
	}

	// Redis-backed idempotency cache for classification results (optional).
	var cache *predictions.ResultCache
	if cfg.ResultCacheEnable && cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		cache = predictions.NewResultCache(redis.NewClient(opts), cfg.ResultCacheTTL, logger)
	}

	// Classifier behind the inference server.
	infClient := inference.NewClient(cfg.InferenceURL, cfg.InferenceTimeout, logger)
	adapter := classifier.NewAdapter(infClient.Loader(), cfg.DefaultInputSize, logger)
	if cfg.ModelPath != "" {
		if err := adapter.LoadModel(cfg.ModelPath); err != nil {
			logger.Error("initial model load failed", "error", err, "path", cfg.ModelPath)
		}
	} else {
		logger.Warn("MODEL_PATH not set, classifier starts without a model")
	}

	// Image archive: S3 when a bucket is configured, local disk otherwise.
	var images imagestore.Store
	if cfg.ImageBucket != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		images = imagestore.NewS3Store(s3.NewFromConfig(awsCfg), cfg.ImageBucket, logger)
	} else {
		images = imagestore.NewLocalStore(cfg.UploadDir, logger)
	}

	// Hospital booking gateway (optional).
	var booker triage.Booker
	if cfg.HospitalAPIURL != "" {
		booker = hospital.NewClient(cfg.HospitalAPIURL, cfg.HospitalTimeout, logger)
	} else {
		logger.Warn("HOSPITAL_API_URL not set, bookings will be recorded without a hospital reference")
	}

	// Patient notifications: Twilio SMS/WhatsApp plus spoken confirmation.
	var sender messaging.Sender
	twilio := messaging.NewTwilioSender(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioFromNumber,
		cfg.TwilioWhatsAppFrom,
		logger,
	)
	if twilio.Configured() {
		sender = twilio
	} else {
		logger.Warn("Twilio credentials not set, patient messaging disabled")
	}
	var synthesizer speech.Synthesizer
	if cfg.TTSEndpoint != "" {
		synthesizer = speech.NewHTTPSynthesizer(cfg.TTSEndpoint, cfg.TTSDir, cfg.TTSTimeout, logger)
	}
	dispatcher := notify.NewDispatcher(sender, synthesizer, logger)

	// Triage pipeline and handlers.
	policy := risk.NewPolicy(cfg.ConcernLabels, cfg.RiskThreshold)
	triageMetrics := metrics.NewTriageMetrics(nil)
	svc := triage.NewService(adapter, policy, predRepo, apptRepo, booker, dispatcher, cache, images, triageMetrics, logger)
	triageHandler := triage.NewHandler(svc, usersRepo, predRepo, apptRepo, adapter, cfg.ModelDir, cfg.MaxUploadBytes, logger)

	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set, authenticated endpoints will reject all requests")
	}
	tokens := users.NewVerificationTokens(cfg.VerifyTokenSecret, cfg.VerifyTokenTTL)
	var mailer users.VerificationMailer
	if m := users.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger); m != nil {
		mailer = m
	}
	usersHandler := users.NewHandler(usersRepo, tokens, mailer, cfg.AuthJWTSecret, cfg.PublicBaseURL, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		UsersHandler:   usersHandler,
		TriageHandler:  triageHandler,
		AuthSecret:     cfg.AuthJWTSecret,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
