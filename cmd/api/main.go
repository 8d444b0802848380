package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shortloop/shortloop/internal/config"
	"github.com/shortloop/shortloop/internal/infrastructure/db"
	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"github.com/shortloop/shortloop/internal/infrastructure/telemetry"
	"github.com/shortloop/shortloop/internal/processing/links"
	"github.com/shortloop/shortloop/internal/ratelimit"
	mongoStorage "github.com/shortloop/shortloop/internal/storage/mongo"
	redisStorage "github.com/shortloop/shortloop/internal/storage/redis"
	"github.com/shortloop/shortloop/internal/stream/kafka"
	httpTransport "github.com/shortloop/shortloop/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	linkRepo, err := mongoStorage.NewLinksRepository(bootCtx, mongoConn.Database)
	bootCancel()
	if err != nil {
		logger.Fatal("Failed to initialize links repository", zap.Error(err))
	}

	redisClient, err := redisStorage.New(redisStorage.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	var publisher links.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		logger.Info("Kafka click publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.ClickTopic),
		)
	} else {
		logger.Warn("Kafka disabled, click events will be dropped")
	}

	resolver := links.NewResolver(linkRepo, redisClient)
	redirectSvc := links.NewRedirectServiceWithOptions(resolver, publisher, links.RedirectOptions{
		ClickTopic: cfg.Kafka.ClickTopic,
		AsyncClick: true,
	})
	linkSvc := links.NewService(linkRepo, links.NewCryptoCodeGenerator(), cfg.Shortener.CodeLength)
	limiter := ratelimit.NewFixedWindowLimiter(redisClient)

	router := httpTransport.NewRouter(cfg, httpTransport.RouterDeps{
		LinkService:     linkSvc,
		RedirectService: redirectSvc,
		Limiter:         limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
