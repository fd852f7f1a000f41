package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fiapx/fiapx-animate-service/internal/domain/port"
	"github.com/fiapx/fiapx-animate-service/internal/infra/animator"
	"github.com/fiapx/fiapx-animate-service/internal/infra/config"
	"github.com/fiapx/fiapx-animate-service/internal/infra/ffmpeg"
	"github.com/fiapx/fiapx-animate-service/internal/infra/httpserver"
	"github.com/fiapx/fiapx-animate-service/internal/infra/imaging"
	"github.com/fiapx/fiapx-animate-service/internal/infra/metrics"
	"github.com/fiapx/fiapx-animate-service/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-animate-service/internal/infra/tracing"
	"github.com/fiapx/fiapx-animate-service/internal/infra/workspace"
	"github.com/fiapx/fiapx-animate-service/internal/usecase"
	"github.com/fiapx/fiapx-animate-service/pkg/logger"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting fiapx-animate-service", zap.String("version", Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing is optional
	if cfg.JaegerEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, Version)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	layout, err := workspace.New(cfg.TempDir, cfg.OutputDir)
	fatalOnErr(err, "resolve workspace")
	fatalOnErr(layout.Ensure(), "create workspace directories")
	log.Info("workspace ready",
		zap.String("temp_dir", layout.TempDir),
		zap.String("output_dir", layout.OutputDir),
	)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, Version, log)

	// Status events are optional
	var statusPub port.StatusPublisher
	if cfg.RabbitMQURL != "" {
		rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
		fatalOnErr(err, "connect to rabbitmq")
		defer rmqConn.Close()

		pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create rabbitmq publisher")
		defer pub.Close()

		statusPub = rabbitmq.NewStatusPublisher(pub, cfg.RabbitMQStatusRoutingKey)
		log.Info("publishing generation status",
			zap.String("exchange", cfg.RabbitMQExchange),
			zap.String("routing_key", cfg.RabbitMQStatusRoutingKey),
		)
	}

	// Infra adapters
	images := imaging.NewNormalizer(cfg.NormalizeSize, cfg.MaxImagePixels)
	videos := ffmpeg.NewNormalizer(ffmpeg.NormalizerConfig{
		Size:        cfg.NormalizeSize,
		FPS:         cfg.NormalizeFPS,
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
	}, log)
	gen := animator.NewAnimator(animator.Config{
		Program:     cfg.AnimatorProgram,
		BaseArgs:    cfg.AnimatorArgs,
		Dir:         cfg.AnimatorWorkDir,
		Timeout:     cfg.AnimatorTimeout,
		StderrLimit: cfg.AnimatorStderrLimit,
	}, layout, log)

	// Use case
	uc := usecase.NewAnimateUseCase(
		images, videos, gen, statusPub,
		layout,
		log,
		usecase.AnimateConfig{
			MaxConcurrent: cfg.MaxConcurrentGenerations,
			QueueTimeout:  cfg.GenerationQueueTimeout,
		},
	)

	gin.SetMode(cfg.GinMode)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		OutputDir:      layout.OutputDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Version:        Version,
	}, uc, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}
	cancel()

	// In-flight generations keep running until the drain timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown", zap.Error(err))
	}
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("fiapx-animate-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
