package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/valuation/internal/valuation/application"
	"github.com/wyfcoding/valuation/internal/valuation/domain"
	"github.com/wyfcoding/valuation/internal/valuation/interfaces/consumer"
	httpserver "github.com/wyfcoding/valuation/internal/valuation/interfaces/http"
	"github.com/wyfcoding/valuation/pkg/config"
	"github.com/wyfcoding/valuation/pkg/logger"
	"github.com/wyfcoding/valuation/pkg/metrics"
	"github.com/wyfcoding/valuation/pkg/middleware"
	"github.com/wyfcoding/valuation/pkg/mq"
)

var configPath = flag.String("config", "configs/valuation/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 3. Metrics
	metricsImpl := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := metricsImpl.Register(); err != nil {
			slog.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
	}

	// 4. Universe & Application
	universe := assembleUniverse(cfg)
	serviceFacade := application.NewValuationService(universe)

	// 5. Interfaces
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware(), middleware.GinLoggingMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(middleware.GinMetricsMiddleware(metricsImpl))
	}

	httpHandler := httpserver.NewValuationHandler(serviceFacade, metricsImpl)
	httpHandler.RegisterRoutes(r.Group("/"))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	// 6. Start
	g, ctx := errgroup.WithContext(context.Background())

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Kafka consumer 仅在配置了 broker 时启动
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg := mq.KafkaConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			SessionTimeout: cfg.Kafka.SessionTimeout,
			MaxRetries:     cfg.Kafka.MaxRetries,
			RetryBackoff:   cfg.Kafka.RetryBackoff,
		}

		kafkaConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.PriceTopic)
		if err != nil {
			slog.Error("failed to create kafka consumer", "error", err)
			os.Exit(1)
		}
		defer kafkaConsumer.Close()

		producer, err := mq.NewProducer(kafkaCfg)
		if err != nil {
			slog.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		dlq := mq.NewDeadLetterQueue(producer, cfg.Kafka.DeadLetterTopic)

		eventHandler := consumer.NewMarketPriceHandler(serviceFacade, dlq, metricsImpl)
		g.Go(func() error {
			slog.Info("market price consumer starting", "topic", cfg.Kafka.PriceTopic)
			return eventHandler.Run(ctx, kafkaConsumer)
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}

// assembleUniverse 按配置装配估值全集
// 配置里的每个行情名注册为 SimpleQuote，指数与现金流由嵌入方登记
func assembleUniverse(cfg *config.Config) *application.Universe {
	universe := application.NewUniverse()
	for name, value := range cfg.Valuation.Quotes {
		universe.RegisterQuote(domain.NewSimpleQuote(name, value))
	}
	return universe
}
