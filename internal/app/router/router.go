package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	summaryhandler "earnings_summary/internal/feature/summary/transport/handler"
	"earnings_summary/internal/platform/cache"
	platformhandler "earnings_summary/internal/platform/http/handler"
)

// Options はルータ生成時の任意設定です。
type Options struct {
	CacheStore         cache.Store // nilの場合はレスポンスキャッシュ無効
	CacheTTL           time.Duration
	MaxMultipartMemory int64
}

func NewRouter(summary *summaryhandler.SummaryHandler, health *platformhandler.HealthHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), summaryhandler.Recovery())
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// アップロードフォーム
	r.GET("/", summary.Index)
	r.POST("/upload-pdf", summary.UploadPDF)

	// 要約結果はパス＋クエリ単位でキャッシュ
	cached := r.Group("/")
	cached.Use(cache.ResponseCache(opts.CacheStore, opts.CacheTTL, "summary"))
	{
		cached.GET("/summary", summary.Summary)
		cached.POST("/earnings_transcript_summary", summary.EarningsTranscriptSummary)
	}

	return r
}
