package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/domain/entity"
)

const (
	// TranscriptMaxTokens はプロンプトに含めるトランスクリプトのトークン上限です。
	TranscriptMaxTokens = 20000
	// SectionMaxTokens はカテゴリごとの要約本文のトークン上限です。
	SectionMaxTokens = 256
	// DefaultUploadTTL はアップロードデータの既定の保持期間です。
	DefaultUploadTTL = 10 * time.Minute
)

const (
	// SourcePDF はPDFアップロード経由のリクエストを表すメトリクスラベルです。
	SourcePDF = "pdf"
	// SourceJSON はJSON送信経由のリクエストを表すメトリクスラベルです。
	SourceJSON = "json"
)

// SummaryInput は要約生成の入力です。
type SummaryInput struct {
	CompanyName    string
	TranscriptText string
	PromptSuffix   string // 空の場合はDefaultPromptSuffix
	Source         string // メトリクス用ラベル（SourcePDF / SourceJSON）
}

// Config はsummaryUsecaseの任意設定です。
type Config struct {
	UploadTTL time.Duration
	Metrics   MetricsRecorder
	Limiter   RateLimiter // nilの場合は制限なし
}

// summaryUsecase はトランスクリプト要約のビジネスロジックを提供します。
type summaryUsecase struct {
	generator    ContentGenerator
	preprocessor TextPreprocessor
	extractor    TextExtractor
	uploads      UploadStore
	metrics      MetricsRecorder
	limiter      RateLimiter
	uploadTTL    time.Duration
	newToken     func() string
}

// NewSummaryUsecase はsummaryUsecaseの新しいインスタンスを生成します。
func NewSummaryUsecase(gen ContentGenerator, pre TextPreprocessor, ext TextExtractor, uploads UploadStore, cfg Config) *summaryUsecase {
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = DefaultUploadTTL
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Limiter == nil {
		cfg.Limiter = nopLimiter{}
	}
	return &summaryUsecase{
		generator:    gen,
		preprocessor: pre,
		extractor:    ext,
		uploads:      uploads,
		metrics:      cfg.Metrics,
		limiter:      cfg.Limiter,
		uploadTTL:    cfg.UploadTTL,
		newToken:     uuid.NewString,
	}
}

// CheckTranscriptLength は整形前のトランスクリプトのトークン数が上限を超えていないか検証します。
func (u *summaryUsecase) CheckTranscriptLength(text string) error {
	if n := u.preprocessor.Count(text); n > TranscriptMaxTokens {
		u.metrics.RecordRequest(SourceJSON, "rejected")
		return fmt.Errorf("%w: %d > %d", domain.ErrTranscriptTooLong, n, TranscriptMaxTokens)
	}
	return nil
}

// Summarize はトランスクリプトをモデルに送り、応答をカテゴリごとの要約に変換します。
// モデル呼び出しは1回だけで、失敗時はdomain.ErrGenerationFailedを返します。
func (u *summaryUsecase) Summarize(ctx context.Context, in SummaryInput) (*entity.Summary, error) {
	source := in.Source
	if source == "" {
		source = SourceJSON
	}

	if in.CompanyName == "" {
		u.metrics.RecordRequest(source, "rejected")
		return nil, domain.ErrMissingData
	}

	transcript, err := u.preprocessor.Preprocess(in.TranscriptText, TranscriptMaxTokens)
	if err != nil {
		u.metrics.RecordRequest(source, "rejected")
		return nil, fmt.Errorf("preprocess transcript: %w", err)
	}

	prompt := BuildPrompt(transcript, in.PromptSuffix)

	if err := u.limiter.Wait(ctx); err != nil {
		u.metrics.RecordRequest(source, "error")
		return nil, fmt.Errorf("wait for rate limit: %w", err)
	}

	started := time.Now()
	reply, err := u.generator.Generate(ctx, prompt)
	u.metrics.RecordDuration(time.Since(started))
	if err != nil {
		slog.Error("summary generation failed", "company", in.CompanyName, "error", err)
		u.metrics.RecordRequest(source, "generation_error")
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if reply == "" {
		slog.Error("model returned an empty reply", "company", in.CompanyName)
		u.metrics.RecordRequest(source, "generation_error")
		return nil, domain.ErrGenerationFailed
	}

	sections := ParseSections(reply)
	summary := &entity.Summary{
		CompanyName: in.CompanyName,
		Sections:    make(map[string]string, len(sections)),
	}

	for _, c := range entity.Categories {
		body, ok := sections[c.Key]
		u.metrics.RecordSection(c.Key, ok)
		if !ok {
			continue
		}

		short, err := u.preprocessor.Preprocess(body, SectionMaxTokens)
		switch {
		case errors.Is(err, domain.ErrEmptyInput):
			short = ""
		case err != nil:
			u.metrics.RecordRequest(source, "error")
			return nil, fmt.Errorf("preprocess %s section: %w", c.Key, err)
		}
		summary.Sections[c.Key] = short
	}

	u.metrics.RecordRequest(source, "success")
	return summary, nil
}

// UploadPDF はPDFからテキストを抽出し、呼び出し元ごとのトークンで保存します。
// 返却されるUpload.Tokenを使ってSummarizeUploadを呼び出します。
func (u *summaryUsecase) UploadPDF(ctx context.Context, companyName string, data []byte) (*entity.Upload, error) {
	if companyName == "" {
		return nil, domain.ErrMissingData
	}

	raw, err := u.extractor.Extract(ctx, data)
	if err != nil {
		u.metrics.RecordRequest(SourcePDF, "rejected")
		return nil, fmt.Errorf("extract pdf for %q: %w", companyName, err)
	}

	text, err := u.preprocessor.Preprocess(raw, TranscriptMaxTokens)
	if err != nil {
		u.metrics.RecordRequest(SourcePDF, "rejected")
		return nil, fmt.Errorf("preprocess pdf text for %q: %w", companyName, err)
	}

	now := time.Now()
	upload := &entity.Upload{
		Token:       u.newToken(),
		CompanyName: companyName,
		Text:        text,
		CreatedAt:   now,
		ExpiresAt:   now.Add(u.uploadTTL),
	}
	if err := u.uploads.Save(ctx, upload); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return upload, nil
}

// SummarizeUpload はUploadPDFで保存したデータを読み出して要約します。
// トークンが不明・期限切れ、またはデータが不完全な場合はdomain.ErrMissingDataを返します。
func (u *summaryUsecase) SummarizeUpload(ctx context.Context, token string) (*entity.Summary, error) {
	if token == "" {
		return nil, domain.ErrMissingData
	}

	upload, err := u.uploads.Find(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrMissingData, err)
		}
		return nil, fmt.Errorf("find upload: %w", err)
	}
	if !upload.IsComplete() {
		return nil, domain.ErrMissingData
	}

	return u.Summarize(ctx, SummaryInput{
		CompanyName:    upload.CompanyName,
		TranscriptText: upload.Text,
		Source:         SourcePDF,
	})
}
