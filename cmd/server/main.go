package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"earnings_summary/internal/app/config"
	"earnings_summary/internal/app/di"
	"earnings_summary/internal/app/router"
	"earnings_summary/internal/feature/summary/adapters/gemini"
	"earnings_summary/internal/feature/summary/adapters/pdf"
	"earnings_summary/internal/feature/summary/adapters/tokenizer"
	summaryhandler "earnings_summary/internal/feature/summary/transport/handler"
	"earnings_summary/internal/feature/summary/usecase"
	infrahttp "earnings_summary/internal/platform/http"
	platformhandler "earnings_summary/internal/platform/http/handler"
	"earnings_summary/internal/platform/logging"
	"earnings_summary/internal/platform/metrics"
	infraredis "earnings_summary/internal/platform/redis"
	"earnings_summary/internal/shared/ratelimiter"
)

func main() {
	ctx := context.Background()

	// 設定（.env → 環境変数）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Redis（任意。使えない場合はメモリ上のストアで動作）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	}); err != nil {
		slog.Warn("Redis unavailable. Using in-memory cache and upload store.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Adapters
	generator, err := gemini.NewGeminiGenerator(ctx, cfg.APIKey, cfg.GeminiModel, infrahttp.NewHTTPClient(cfg.GeminiTimeout))
	if err != nil {
		log.Fatalf("failed to create Gemini client: %v", err)
	}
	truncator, err := tokenizer.NewBPETruncator()
	if err != nil {
		log.Fatalf("failed to load tokenizer: %v", err)
	}
	extractor := pdf.NewDocconvExtractor()
	if err := pdf.CheckRuntime(); err != nil {
		slog.Error("PDF extraction unavailable; every /upload-pdf request will fail until poppler-utils is installed", "error", err)
	}

	summaryMetrics, err := metrics.NewSummaryMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Usecase
	summaryUC := usecase.NewSummaryUsecase(generator, truncator, extractor, di.NewUploadStore(rdb), usecase.Config{
		UploadTTL: cfg.UploadTTL,
		Metrics:   summaryMetrics,
		Limiter:   ratelimiter.NewRateLimiter(cfg.GeminiRPM, time.Minute),
	})

	// Handler
	summaryH := summaryhandler.NewSummaryHandler(summaryUC, cfg.MaxUploadBytes)
	var ping platformhandler.PingFunc
	if rdb != nil {
		ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthH := platformhandler.NewHealthHandler(di.Backend(rdb), ping)

	// ルータ生成
	r := router.NewRouter(summaryH, healthH, router.Options{
		CacheStore:         di.NewCacheStore(rdb),
		CacheTTL:           cfg.CacheTTL,
		MaxMultipartMemory: cfg.MaxUploadBytes,
	})

	slog.Info("starting server", "addr", cfg.Addr(), "model", generator.Model(), "backend", di.Backend(rdb))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
