// Package usecase はsummaryフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"earnings_summary/internal/feature/summary/domain/entity"
)

// ContentGenerator はプロンプトからテキストを生成するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ContentGenerator interface {
	// Generate はプロンプトを送信し、モデルの応答テキストを返します。
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextPreprocessor はテキストをトークン上限内に整形します。
type TextPreprocessor interface {
	// Preprocess は整形・切り詰め済みのテキストを返します。
	Preprocess(text string, maxTokens int) (string, error)
	// Count はテキストのトークン数を返します。
	Count(text string) int
}

// TextExtractor はPDFバイト列からテキストを抽出します。
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// UploadStore はアップロードから要約取得までのデータを呼び出し元ごとに保持します。
type UploadStore interface {
	Save(ctx context.Context, upload *entity.Upload) error
	// Find は期限切れまたは存在しない場合にdomain.ErrUploadNotFoundを返します。
	Find(ctx context.Context, token string) (*entity.Upload, error)
	Delete(ctx context.Context, token string) error
}

// MetricsRecorder は要約処理のメトリクスを記録します。
type MetricsRecorder interface {
	RecordRequest(source, outcome string)
	RecordDuration(d time.Duration)
	RecordSection(category string, detected bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, string) {}
func (nopMetrics) RecordDuration(time.Duration) {}
func (nopMetrics) RecordSection(string, bool) {}

// RateLimiter はモデル呼び出しの頻度を制限します。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

type nopLimiter struct{}

func (nopLimiter) Wait(context.Context) error { return nil }
