package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pg-onboarding-api/internal/application/notification"
	"github.com/pg-onboarding-api/internal/application/profile"
	"github.com/pg-onboarding-api/internal/application/upload"
	"github.com/pg-onboarding-api/internal/application/verification"
	"github.com/pg-onboarding-api/internal/config"
	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/infrastructure/awsconf"
	"github.com/pg-onboarding-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/pg-onboarding-api/internal/infrastructure/jwt"
	mongoinfra "github.com/pg-onboarding-api/internal/infrastructure/mongo"
	"github.com/pg-onboarding-api/internal/infrastructure/redislock"
	s3infra "github.com/pg-onboarding-api/internal/infrastructure/s3"
	"github.com/pg-onboarding-api/internal/infrastructure/smtp"
	"github.com/pg-onboarding-api/internal/infrastructure/sns"
	"github.com/pg-onboarding-api/internal/pkg/keylock"
	transporthttp "github.com/pg-onboarding-api/internal/transport/http"
	"github.com/pg-onboarding-api/internal/transport/http/handler"
	appmiddleware "github.com/pg-onboarding-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	readiness := map[string]handler.Pinger{}

	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		return err
	}
	endpoint := awsconf.Endpoint(cfg)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, endpoint)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	readiness["dynamodb"] = handler.PingFunc(dynamo.TableCheck(dynamoClient, cfg.DynamoTables.Profiles))

	// Verification record store.
	var records verification.RecordStore
	switch cfg.VerificationStore {
	case config.StoreMongo:
		client, err := mongoinfra.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		records = mongoinfra.NewVerificationRepo(db)
		readiness["mongodb"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
	default:
		records = dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications)
	}

	// Issuance lock: Redis across replicas, in-process otherwise.
	var locker verification.Locker = keylock.New()
	if cfg.RedisAddr != "" {
		rdb := redislock.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		locker = redislock.New(rdb)
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		slog.Info("using redis issuance lock", "addr", cfg.RedisAddr)
	}

	tables := cfg.DynamoTables
	stores := profile.Stores{
		Profiles:     dynamo.NewDocumentRepo[domain.Profile](dynamoClient, tables.Profiles, "Basic details"),
		Professional: dynamo.NewDocumentRepo[domain.ProfessionalDetails](dynamoClient, tables.ProfessionalDetails, "Professional details"),
		Bank:         dynamo.NewDocumentRepo[domain.BankDetails](dynamoClient, tables.BankDetails, "Bank details"),
		Emergency:    dynamo.NewDocumentRepo[domain.EmergencyContact](dynamoClient, tables.EmergencyContacts, "Emergency contact"),
		Documents:    dynamo.NewDocumentRepo[domain.Documents](dynamoClient, tables.Documents, "Documents"),
		KYC:          dynamo.NewDocumentRepo[domain.KYC](dynamoClient, tables.KYC, "KYC"),
	}

	// Delivery senders. Mobile falls back to a log-only sender when SNS is off.
	senders := map[domain.Channel]notification.Sender{
		domain.ChannelEmail:  notification.NewEmailSender(smtp.NewMailer(cfg)),
		domain.ChannelMobile: notification.LogSender{},
	}
	if cfg.SNSEnabled {
		sms := sns.NewSender(awsCfg, cfg.SNSRegion, endpoint)
		senders[domain.ChannelMobile] = notification.NewSMSSender(sms, stores.Profiles)
	}
	dispatcher := notification.NewDispatcher(senders, cfg.Dispatch)

	verifySvc := verification.NewService(verification.Deps{
		Store:      records,
		Locker:     locker,
		Dispatcher: dispatcher,
		Config:     cfg.OTP,
	})
	profileSvc := profile.NewService(stores, verifySvc)

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, endpoint), cfg.S3BucketName)
	uploadSvc := upload.NewService(s3Store, dynamo.NewFileRepo(dynamoClient, tables.Files))

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("load jwt keys: %w", err)
	}

	// 1 request/second, burst of 5, per client IP.
	otpLimiter := appmiddleware.NewRateLimiter(rate.Limit(1), 5)
	defer otpLimiter.Stop()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Verification: verifySvc,
		Profile:      profileSvc,
		Upload:       uploadSvc,
		Verifier:     jwtProvider,
		OTPLimiter:   otpLimiter,
		Readiness:    readiness,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "verification_store", cfg.VerificationStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	// Drain pending deliveries after the last request has been served.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		slog.Warn("dispatcher did not drain", "err", err, "stats", dispatcher.Stats())
	}
	slog.Info("server stopped")
	return nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
