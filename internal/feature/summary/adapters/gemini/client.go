// Package gemini はGoogle Gemini APIを使用した要約生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"earnings_summary/internal/feature/summary/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// ErrEmptyResponse はモデルがテキストを返さなかった場合のエラーです。
var ErrEmptyResponse = errors.New("gemini returned no text")

// GeminiGenerator はGoogle Gemini APIでプロンプトからテキストを生成します。
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// GeminiGeneratorがContentGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.ContentGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator はAPIキーでGemini APIに接続するGeminiGeneratorを生成します。
// httpClientがnilの場合はgenaiの既定クライアントを使用します。
func NewGeminiGenerator(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Model は使用中のモデル名を返します。
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate はプロンプトを1回だけ送信し、応答テキストを返します。リトライは行いません。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
